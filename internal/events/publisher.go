package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/lamesahq/comanda/internal/domain"
)

// Publisher is the raw message sink, satisfied by NATSPublisher.
type Publisher interface {
	Publish(ctx context.Context, subject string, msg []byte) error
}

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) Publish(_ context.Context, subject string, msg []byte) error {
	return p.conn.Publish(subject, msg)
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}

// TicketPublisher maps ticket lifecycle transitions onto JSON events.
// Publishing is best-effort; failures are logged and never surface to the
// ticket pipeline.
type TicketPublisher struct {
	pub    Publisher
	logger *log.Logger
}

func NewTicketPublisher(pub Publisher, logger *log.Logger) *TicketPublisher {
	if logger == nil {
		logger = log.Default()
	}
	return &TicketPublisher{pub: pub, logger: logger}
}

func (t *TicketPublisher) TicketCreated(ctx context.Context, ticket domain.Ticket) {
	t.publish(ctx, SubjectTicketCreated, TicketCreatedEvent{
		TicketEventMetadata: metadata(SubjectTicketCreated, ticket, ticket.CreatedAt),
		Status:              string(ticket.Status),
		ItemCount:           ticket.ItemCount,
		Notes:               ticket.Notes,
	})
}

func (t *TicketPublisher) TicketStatusChanged(ctx context.Context, ticket domain.Ticket, previous domain.TicketStatus) {
	t.publish(ctx, SubjectTicketStatusChanged, TicketStatusChangedEvent{
		TicketEventMetadata: metadata(SubjectTicketStatusChanged, ticket, latestStamp(ticket)),
		NewStatus:           string(ticket.Status),
		PreviousStatus:      string(previous),
		StartedAt:           ticket.StartedAt,
		CompletedAt:         ticket.CompletedAt,
		ServedAt:            ticket.ServedAt,
	})
}

func (t *TicketPublisher) TicketPrinted(ctx context.Context, ticket domain.Ticket) {
	occurred := ticket.CreatedAt
	if ticket.PrintedAt != nil {
		occurred = *ticket.PrintedAt
	}
	t.publish(ctx, SubjectTicketPrinted, TicketPrintedEvent{
		TicketEventMetadata: metadata(SubjectTicketPrinted, ticket, occurred),
		PrintedAt:           ticket.PrintedAt,
	})
}

func (t *TicketPublisher) publish(ctx context.Context, subject string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		t.logger.Printf("WARN: marshal %s event: %v", subject, err)
		return
	}
	if err := t.pub.Publish(ctx, subject, payload); err != nil {
		t.logger.Printf("WARN: publish %s: %v", subject, err)
	}
}

func latestStamp(ticket domain.Ticket) time.Time {
	for _, at := range []*time.Time{ticket.ServedAt, ticket.CompletedAt, ticket.StartedAt} {
		if at != nil {
			return *at
		}
	}
	return ticket.CreatedAt
}

func metadata(eventType string, ticket domain.Ticket, occurredAt time.Time) TicketEventMetadata {
	return TicketEventMetadata{
		EventType:    eventType,
		OccurredAt:   occurredAt,
		TicketID:     ticket.ID,
		TicketKind:   string(ticket.Kind),
		TicketNumber: ticket.Number,
		OrderID:      ticket.OrderID,
		OrderNumber:  ticket.OrderNumber,
		Location:     ticket.Location,
	}
}
