package events

import "time"

const (
	SubjectTicketCreated       = "comanda.tickets.created"
	SubjectTicketStatusChanged = "comanda.tickets.status_changed"
	SubjectTicketPrinted       = "comanda.tickets.printed"
)

type TicketEventMetadata struct {
	EventType    string    `json:"event_type"`
	OccurredAt   time.Time `json:"occurred_at"`
	TicketID     string    `json:"ticket_id"`
	TicketKind   string    `json:"ticket_kind"`
	TicketNumber string    `json:"ticket_number"`
	OrderID      string    `json:"order_id"`

	// Denormalized for kitchen display consumers.
	OrderNumber string `json:"order_number,omitempty"`
	Location    string `json:"location,omitempty"`
}

type TicketCreatedEvent struct {
	TicketEventMetadata
	Status    string `json:"status"`
	ItemCount int    `json:"item_count"`
	Notes     string `json:"notes,omitempty"`
}

type TicketStatusChangedEvent struct {
	TicketEventMetadata
	NewStatus      string     `json:"new_status"`
	PreviousStatus string     `json:"previous_status"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	ServedAt       *time.Time `json:"served_at,omitempty"`
}

type TicketPrintedEvent struct {
	TicketEventMetadata
	PrintedAt *time.Time `json:"printed_at,omitempty"`
}
