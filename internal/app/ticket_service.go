package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/lamesahq/comanda/internal/clock"
	"github.com/lamesahq/comanda/internal/domain"
	"github.com/lamesahq/comanda/internal/printing"
)

type TicketRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error)
	ListOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	CreateTicket(ctx context.Context, ticket domain.Ticket) error
	ClaimItems(ctx context.Context, kind domain.TicketKind, itemIDs []string, ticketID string) error
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
	GetTicket(ctx context.Context, kind domain.TicketKind, ticketID string) (domain.Ticket, error)
	GetTicketForUpdate(ctx context.Context, kind domain.TicketKind, ticketID string) (domain.Ticket, error)
	UpdateTicketStatus(ctx context.Context, ticket domain.Ticket) error
	MarkTicketPrinted(ctx context.Context, kind domain.TicketKind, ticketID string, at time.Time) (bool, error)
	ListClaimedItems(ctx context.Context, kind domain.TicketKind, ticketID string) ([]domain.OrderItem, error)
	ListAutoPrintConfigs(ctx context.Context, branchID string, role domain.PrinterRole) ([]domain.PrinterConfig, error)
}

// Dispatcher delivers formatted ticket content to one printer. It never
// fails the calling operation; all transport problems resolve into the
// result value.
type Dispatcher interface {
	Dispatch(ctx context.Context, cfg domain.PrinterConfig, payload []byte) printing.DispatchResult
}

// TicketEvents receives lifecycle notifications for kitchen display
// consumers. Implementations are best-effort and must not block.
type TicketEvents interface {
	TicketCreated(ctx context.Context, ticket domain.Ticket)
	TicketStatusChanged(ctx context.Context, ticket domain.Ticket, previous domain.TicketStatus)
	TicketPrinted(ctx context.Context, ticket domain.Ticket)
}

type noopEvents struct{}

func (noopEvents) TicketCreated(context.Context, domain.Ticket)                            {}
func (noopEvents) TicketStatusChanged(context.Context, domain.Ticket, domain.TicketStatus) {}
func (noopEvents) TicketPrinted(context.Context, domain.Ticket)                            {}

const numberMintAttempts = 3

type TicketService struct {
	repo       TicketRepository
	dispatcher Dispatcher
	events     TicketEvents
	clock      clock.Clock
	logger     *log.Logger

	dispatches sync.WaitGroup
}

type TicketServiceOption func(*TicketService)

// WithTicketEvents wires a lifecycle event publisher.
func WithTicketEvents(ev TicketEvents) TicketServiceOption {
	return func(s *TicketService) {
		if ev != nil {
			s.events = ev
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger *log.Logger) TicketServiceOption {
	return func(s *TicketService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewTicketService(repo TicketRepository, dispatcher Dispatcher, clk clock.Clock, opts ...TicketServiceOption) *TicketService {
	svc := &TicketService{
		repo:       repo,
		dispatcher: dispatcher,
		events:     noopEvents{},
		clock:      clk,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type GenerateTicketsResult struct {
	KOTGenerated  bool
	BOTGenerated  bool
	KitchenTicket *domain.Ticket
	BarTicket     *domain.Ticket
	Message       string
}

// GenerateTickets partitions the order's unclaimed items into kitchen and
// bar batches and creates one ticket per non-empty batch. Ticket insert and
// item claims commit atomically under a row lock on the order, so a
// concurrent call either sees nothing left to claim or fails with
// ErrClaimConflict. Printing fans out after commit and never affects the
// returned outcome.
func (s *TicketService) GenerateTickets(ctx context.Context, orderID string) (GenerateTicketsResult, error) {
	var (
		order      domain.Order
		created    []ticketBatch
		totalItems int
	)
	now := s.clock.Now()

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		order, err = s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}

		items, err := s.repo.ListOrderItems(txCtx, orderID)
		if err != nil {
			return err
		}
		totalItems = len(items)

		kitchenEligible, barEligible := PartitionItems(items)

		for _, batch := range []struct {
			kind  domain.TicketKind
			items []domain.OrderItem
		}{
			{domain.TicketKindKitchen, kitchenEligible},
			{domain.TicketKindBar, barEligible},
		} {
			if len(batch.items) == 0 {
				continue
			}
			ticket, err := s.createTicket(txCtx, order, batch.kind, batch.items, now)
			if err != nil {
				return err
			}
			created = append(created, ticketBatch{ticket: ticket, items: batch.items})
		}

		if len(created) > 0 && domain.OrderStatusAdvances(order.Status, domain.OrderStatusConfirmed) {
			if err := s.repo.UpdateOrderStatus(txCtx, order.ID, domain.OrderStatusConfirmed); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return GenerateTicketsResult{}, err
	}

	result := GenerateTicketsResult{}
	var parts []string
	for i := range created {
		t := created[i].ticket
		switch t.Kind {
		case domain.TicketKindKitchen:
			result.KOTGenerated = true
			result.KitchenTicket = &created[i].ticket
		case domain.TicketKindBar:
			result.BOTGenerated = true
			result.BarTicket = &created[i].ticket
		}
		parts = append(parts, fmt.Sprintf("%s %s generated (%d items)", t.Kind.Prefix(), t.Number, t.ItemCount))
	}

	if len(created) == 0 {
		if totalItems == 0 {
			result.Message = "no tickets generated: order has no items"
		} else {
			result.Message = "no tickets generated: all items already ticketed"
		}
		return result, nil
	}

	for i := range created {
		s.events.TicketCreated(ctx, created[i].ticket)
	}

	queued := s.dispatchBatches(order, created)
	if queued > 0 {
		parts = append(parts, fmt.Sprintf("queued for %d printer(s)", queued))
	}
	result.Message = strings.Join(parts, "; ")
	return result, nil
}

type ticketBatch struct {
	ticket domain.Ticket
	items  []domain.OrderItem
}

func (s *TicketService) createTicket(ctx context.Context, order domain.Order, kind domain.TicketKind, items []domain.OrderItem, now time.Time) (domain.Ticket, error) {
	ticket := domain.Ticket{
		ID:           newRowID(),
		Kind:         kind,
		OrderID:      order.ID,
		OrderNumber:  order.Number,
		CustomerName: order.CustomerName,
		Location:     orderLocation(order),
		ItemCount:    len(items),
		Notes:        order.Notes,
		Status:       domain.TicketStatusPending,
		CreatedAt:    now,
	}

	for attempt := 0; attempt < numberMintAttempts; attempt++ {
		ticket.Number = mintTicketNumber(kind, now)
		err := s.repo.CreateTicket(ctx, ticket)
		if err == nil {
			break
		}
		if err == domain.ErrTicketNumberConflict && attempt < numberMintAttempts-1 {
			continue
		}
		return domain.Ticket{}, err
	}

	itemIDs := make([]string, len(items))
	for i, item := range items {
		itemIDs[i] = item.ID
	}
	if err := s.repo.ClaimItems(ctx, kind, itemIDs, ticket.ID); err != nil {
		return domain.Ticket{}, err
	}
	return ticket, nil
}

func orderLocation(order domain.Order) string {
	if order.TableNumber != "" {
		return "Table " + order.TableNumber
	}
	if order.RoomNumber != "" {
		return "Room " + order.RoomNumber
	}
	return ""
}

// dispatchBatches looks up the enabled auto-print printers for each created
// ticket and hands delivery to background goroutines. The order-level lock
// is already released; a slow or dead printer only shows up in printer
// status and logs. Returns the number of dispatches queued.
func (s *TicketService) dispatchBatches(order domain.Order, batches []ticketBatch) int {
	queued := 0
	for _, batch := range batches {
		// Config lookup stays on the request path so the result message
		// can say how many printers were targeted.
		configs, err := s.repo.ListAutoPrintConfigs(context.Background(), order.BranchID, domain.RoleForKind(batch.ticket.Kind))
		if err != nil {
			s.logger.Printf("WARN: list printers for %s %s: %v", batch.ticket.Kind, batch.ticket.Number, err)
			continue
		}
		if len(configs) == 0 {
			continue
		}

		doc := ticketDocument(batch.ticket, batch.items)
		for _, cfg := range configs {
			// Layout follows the target printer's paper, so each config
			// gets its own render.
			doc.Width = printing.ColumnsForPaperWidth(cfg.PaperWidth)
			payload := doc.ESCPOS()
			queued++
			s.dispatches.Add(1)
			go s.dispatchOne(cfg, batch.ticket, payload)
		}
	}
	return queued
}

func (s *TicketService) dispatchOne(cfg domain.PrinterConfig, ticket domain.Ticket, payload []byte) {
	defer s.dispatches.Done()

	timeout := cfg.ConnectionTimeout
	if timeout <= 0 {
		timeout = printing.DefaultTimeout
	}
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(attempts)*timeout+time.Second)
	defer cancel()

	res := s.dispatcher.Dispatch(ctx, cfg, payload)
	if !res.Success {
		s.logger.Printf("WARN: print %s %s on %s failed after %d attempt(s): %s",
			ticket.Kind, ticket.Number, cfg.Name, res.Attempts, res.Message)
		return
	}

	printedAt := s.clock.Now()
	if first, err := s.repo.MarkTicketPrinted(ctx, ticket.Kind, ticket.ID, printedAt); err != nil {
		s.logger.Printf("WARN: mark %s %s printed: %v", ticket.Kind, ticket.Number, err)
	} else if first {
		ticket.PrintedAt = &printedAt
		s.events.TicketPrinted(ctx, ticket)
	}
}

// Wait blocks until all in-flight print dispatches finish. Used on
// shutdown and in tests.
func (s *TicketService) Wait() {
	s.dispatches.Wait()
}

func ticketDocument(ticket domain.Ticket, items []domain.OrderItem) printing.TicketDocument {
	doc := printing.TicketDocument{
		Kind:         string(ticket.Kind),
		TicketNumber: ticket.Number,
		OrderNumber:  ticket.OrderNumber,
		CustomerName: ticket.CustomerName,
		Location:     ticket.Location,
		OrderNotes:   ticket.Notes,
		CreatedAt:    ticket.CreatedAt,
	}
	for _, item := range items {
		doc.Items = append(doc.Items, printing.TicketItem{
			Name:     item.DishName,
			Quantity: item.Quantity,
			Notes:    item.SpecialInstructions,
		})
	}
	return doc
}

// UpdateTicketStatus applies a forward-only status transition, stamps the
// matching timestamp and advances the owning order when the new ticket
// status maps onto an order status ahead of the current one.
func (s *TicketService) UpdateTicketStatus(ctx context.Context, kind domain.TicketKind, ticketID string, status domain.TicketStatus) (domain.Ticket, error) {
	now := s.clock.Now()
	var (
		updated  domain.Ticket
		previous domain.TicketStatus
	)

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		ticket, err := s.repo.GetTicketForUpdate(txCtx, kind, ticketID)
		if err != nil {
			return err
		}
		previous = ticket.Status

		if err := ticket.ApplyStatus(status, now); err != nil {
			return err
		}
		if err := s.repo.UpdateTicketStatus(txCtx, ticket); err != nil {
			return err
		}

		if orderStatus, ok := orderStatusFor(status); ok {
			order, err := s.repo.GetOrderForUpdate(txCtx, ticket.OrderID)
			if err != nil {
				return err
			}
			if domain.OrderStatusAdvances(order.Status, orderStatus) {
				if err := s.repo.UpdateOrderStatus(txCtx, order.ID, orderStatus); err != nil {
					return err
				}
			}
		}

		updated = ticket
		return nil
	})
	if err != nil {
		return domain.Ticket{}, err
	}

	s.events.TicketStatusChanged(ctx, updated, previous)
	return updated, nil
}

func orderStatusFor(status domain.TicketStatus) (domain.OrderStatus, bool) {
	switch status {
	case domain.TicketStatusPreparing:
		return domain.OrderStatusPreparing, true
	case domain.TicketStatusReady:
		return domain.OrderStatusReady, true
	case domain.TicketStatusServed:
		return domain.OrderStatusServed, true
	}
	return "", false
}

// MarkPrinted stamps printedAt once. Calling it again is a no-op, not an
// error; the returned ticket reflects the stored state either way.
func (s *TicketService) MarkPrinted(ctx context.Context, kind domain.TicketKind, ticketID string) (domain.Ticket, error) {
	first, err := s.repo.MarkTicketPrinted(ctx, kind, ticketID, s.clock.Now())
	if err != nil {
		return domain.Ticket{}, err
	}

	ticket, err := s.repo.GetTicket(ctx, kind, ticketID)
	if err != nil {
		return domain.Ticket{}, err
	}
	if first {
		s.events.TicketPrinted(ctx, ticket)
	}
	return ticket, nil
}

// TicketPreview renders the monospace preview text for a stored ticket,
// used by the browser reprint view.
func (s *TicketService) TicketPreview(ctx context.Context, kind domain.TicketKind, ticketID string) (string, error) {
	ticket, err := s.repo.GetTicket(ctx, kind, ticketID)
	if err != nil {
		return "", err
	}
	items, err := s.repo.ListClaimedItems(ctx, kind, ticketID)
	if err != nil {
		return "", err
	}
	return ticketDocument(ticket, items).Preview(), nil
}
