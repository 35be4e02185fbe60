package domain

import "time"

type TicketKind string

const (
	TicketKindKitchen TicketKind = "kitchen"
	TicketKindBar     TicketKind = "bar"
)

// ParseTicketKind maps external kind identifiers ("kitchen"/"kot",
// "bar"/"bot") onto a TicketKind.
func ParseTicketKind(s string) (TicketKind, error) {
	switch s {
	case "kitchen", "kot":
		return TicketKindKitchen, nil
	case "bar", "bot":
		return TicketKindBar, nil
	}
	return "", ErrInvalidTicketKind
}

// Prefix returns the human-readable ticket number prefix for the kind.
func (k TicketKind) Prefix() string {
	if k == TicketKindBar {
		return "BOT"
	}
	return "KOT"
}

// MenuType returns the menu type a ticket of this kind may claim.
func (k TicketKind) MenuType() MenuType {
	if k == TicketKindBar {
		return MenuTypeBar
	}
	return MenuTypeFood
}

type TicketStatus string

const (
	TicketStatusPending   TicketStatus = "pending"
	TicketStatusPreparing TicketStatus = "preparing"
	TicketStatusReady     TicketStatus = "ready"
	TicketStatusServed    TicketStatus = "served"
)

var ticketStatusRank = map[TicketStatus]int{
	TicketStatusPending:   0,
	TicketStatusPreparing: 1,
	TicketStatusReady:     2,
	TicketStatusServed:    3,
}

// ValidTicketStatus reports whether s is a known ticket status.
func ValidTicketStatus(s TicketStatus) bool {
	_, ok := ticketStatusRank[s]
	return ok
}

// CanTransition reports whether a ticket may move from one status to
// another. Transitions are monotonic forward-only; skipping intermediate
// states is allowed, going backward (or standing still) is not.
func CanTransition(from, to TicketStatus) bool {
	fromRank, okFrom := ticketStatusRank[from]
	toRank, okTo := ticketStatusRank[to]
	return okFrom && okTo && toRank > fromRank
}

// Ticket is a kitchen or bar order ticket. Created once per generation call
// per kind, only when at least one eligible item exists. Never mutated
// except status/timestamp transitions and the set-once PrintedAt.
type Ticket struct {
	ID      string
	Kind    TicketKind
	Number  string
	OrderID string

	// Denormalized for display on the printed ticket and kitchen screens.
	OrderNumber  string
	CustomerName string
	Location     string

	ItemCount int
	Notes     string
	Status    TicketStatus

	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	ServedAt    *time.Time
	PrintedAt   *time.Time
}

// ApplyStatus validates and applies a forward transition, stamping the
// timestamp that belongs to the new status.
func (t *Ticket) ApplyStatus(status TicketStatus, now time.Time) error {
	if !ValidTicketStatus(status) {
		return ErrInvalidTransition
	}
	if !CanTransition(t.Status, status) {
		return ErrInvalidTransition
	}
	t.Status = status
	switch status {
	case TicketStatusPreparing:
		t.StartedAt = &now
	case TicketStatusReady:
		t.CompletedAt = &now
	case TicketStatusServed:
		t.ServedAt = &now
	}
	return nil
}
