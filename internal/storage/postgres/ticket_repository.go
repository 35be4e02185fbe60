package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lamesahq/comanda/internal/domain"
)

type TicketRepository struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

func (r *TicketRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// GetOrderForUpdate locks the order row, serializing concurrent ticket
// generation per order while leaving other orders untouched.
func (r *TicketRepository) GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error) {
	const query = `
SELECT id, number, branch_id, table_number, room_number, customer_name, notes, status, created_at
FROM orders
WHERE id = $1
FOR UPDATE`

	var o domain.Order
	err := r.queryRow(ctx, query, orderID).Scan(
		&o.ID, &o.Number, &o.BranchID, &o.TableNumber, &o.RoomNumber,
		&o.CustomerName, &o.Notes, &o.Status, &o.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Order{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// ListOrderItems returns the order's items in creation order; ticket item
// numbering depends on this ordering being stable.
func (r *TicketRepository) ListOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	const query = `
SELECT id, order_id, dish_id, dish_name, quantity, special_instructions, menu_type,
       kitchen_ticket_id, bar_ticket_id, created_at
FROM order_items
WHERE order_id = $1
ORDER BY created_at, id`

	rows, err := r.query(ctx, query, orderID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list order items: %w", err)
	}
	return scanItems(rows)
}

// CreateTicket inserts the ticket row. Inside an ambient transaction the
// INSERT runs under a savepoint, so a unique violation on the ticket number
// leaves the transaction usable and the caller can re-mint and retry.
func (r *TicketRepository) CreateTicket(ctx context.Context, t domain.Ticket) error {
	const stmt = `
INSERT INTO tickets (id, kind, number, order_id, order_number, customer_name, location,
                     item_count, notes, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	args := []any{
		t.ID, t.Kind, t.Number, t.OrderID, t.OrderNumber, t.CustomerName, t.Location,
		t.ItemCount, t.Notes, t.Status, t.CreatedAt,
	}

	if tx := txFromContext(ctx); tx != nil {
		sp, err := tx.Begin(ctx)
		if err != nil {
			return fmt.Errorf("create ticket savepoint: %w", err)
		}
		if _, err := sp.Exec(ctx, stmt, args...); err != nil {
			_ = sp.Rollback(ctx)
			return mapCreateTicketError(err)
		}
		if err := sp.Commit(ctx); err != nil {
			return fmt.Errorf("create ticket: %w", err)
		}
		return nil
	}

	if _, err := r.pool.Exec(ctx, stmt, args...); err != nil {
		return mapCreateTicketError(err)
	}
	return nil
}

func mapCreateTicketError(err error) error {
	if isUniqueViolation(err) {
		return domain.ErrTicketNumberConflict
	}
	if isInvalidUUID(err) {
		return domain.ErrInvalidID
	}
	return fmt.Errorf("create ticket: %w", err)
}

// ClaimItems sets the claim column for the given kind on every item that is
// still unclaimed. A short row count means another transaction claimed some
// of the items first; the caller must roll back.
func (r *TicketRepository) ClaimItems(ctx context.Context, kind domain.TicketKind, itemIDs []string, ticketID string) error {
	column, err := claimColumn(kind)
	if err != nil {
		return err
	}
	stmt := fmt.Sprintf(`UPDATE order_items SET %s = $1 WHERE id = ANY($2) AND %s IS NULL`, column, column)

	tag, err := r.exec(ctx, stmt, ticketID, itemIDs)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("claim items: %w", err)
	}
	if tag.RowsAffected() != int64(len(itemIDs)) {
		return domain.ErrClaimConflict
	}
	return nil
}

func (r *TicketRepository) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	const stmt = `UPDATE orders SET status = $1 WHERE id = $2`
	tag, err := r.exec(ctx, stmt, status, orderID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

const ticketColumns = `id, kind, number, order_id, order_number, customer_name, location,
       item_count, notes, status, created_at, started_at, completed_at, served_at, printed_at`

func (r *TicketRepository) GetTicket(ctx context.Context, kind domain.TicketKind, ticketID string) (domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id = $1 AND kind = $2`, ticketColumns)
	return r.scanTicket(r.queryRow(ctx, query, ticketID, kind))
}

func (r *TicketRepository) GetTicketForUpdate(ctx context.Context, kind domain.TicketKind, ticketID string) (domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id = $1 AND kind = $2 FOR UPDATE`, ticketColumns)
	return r.scanTicket(r.queryRow(ctx, query, ticketID, kind))
}

func (r *TicketRepository) scanTicket(row pgx.Row) (domain.Ticket, error) {
	var t domain.Ticket
	err := row.Scan(
		&t.ID, &t.Kind, &t.Number, &t.OrderID, &t.OrderNumber, &t.CustomerName, &t.Location,
		&t.ItemCount, &t.Notes, &t.Status, &t.CreatedAt,
		&t.StartedAt, &t.CompletedAt, &t.ServedAt, &t.PrintedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Ticket{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Ticket{}, domain.ErrTicketNotFound
		}
		return domain.Ticket{}, fmt.Errorf("get ticket: %w", err)
	}
	return t, nil
}

func (r *TicketRepository) UpdateTicketStatus(ctx context.Context, t domain.Ticket) error {
	const stmt = `
UPDATE tickets
SET status = $1, started_at = $2, completed_at = $3, served_at = $4
WHERE id = $5 AND kind = $6`

	tag, err := r.exec(ctx, stmt, t.Status, t.StartedAt, t.CompletedAt, t.ServedAt, t.ID, t.Kind)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update ticket status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

// MarkTicketPrinted sets printed_at only when it is still null. The bool
// reports whether this call was the one that set it.
func (r *TicketRepository) MarkTicketPrinted(ctx context.Context, kind domain.TicketKind, ticketID string, at time.Time) (bool, error) {
	const stmt = `UPDATE tickets SET printed_at = $1 WHERE id = $2 AND kind = $3 AND printed_at IS NULL`
	tag, err := r.exec(ctx, stmt, at, ticketID, kind)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("mark ticket printed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListClaimedItems returns the items a ticket claimed, in creation order.
func (r *TicketRepository) ListClaimedItems(ctx context.Context, kind domain.TicketKind, ticketID string) ([]domain.OrderItem, error) {
	column, err := claimColumn(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
SELECT id, order_id, dish_id, dish_name, quantity, special_instructions, menu_type,
       kitchen_ticket_id, bar_ticket_id, created_at
FROM order_items
WHERE %s = $1
ORDER BY created_at, id`, column)

	rows, err := r.query(ctx, query, ticketID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list claimed items: %w", err)
	}
	return scanItems(rows)
}

func (r *TicketRepository) ListAutoPrintConfigs(ctx context.Context, branchID string, role domain.PrinterRole) ([]domain.PrinterConfig, error) {
	const query = `
SELECT id, branch_id, role, name, host, port, enabled, auto_print,
       connection_timeout_ms, retry_attempts, paper_width, connection_status, error_message, updated_at
FROM printer_configs
WHERE branch_id = $1 AND role = $2 AND enabled AND auto_print
ORDER BY name, id`

	rows, err := r.query(ctx, query, branchID, role)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list auto-print configs: %w", err)
	}
	defer rows.Close()

	var configs []domain.PrinterConfig
	for rows.Next() {
		cfg, err := scanPrinterConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("scan printer config: %w", err)
		}
		configs = append(configs, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list auto-print configs: %w", err)
	}
	return configs, nil
}

func scanItems(rows pgx.Rows) ([]domain.OrderItem, error) {
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.DishID, &it.DishName, &it.Quantity,
			&it.SpecialInstructions, &it.MenuType,
			&it.KitchenTicketID, &it.BarTicketID, &it.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return items, nil
}

func claimColumn(kind domain.TicketKind) (string, error) {
	switch kind {
	case domain.TicketKindKitchen:
		return "kitchen_ticket_id", nil
	case domain.TicketKindBar:
		return "bar_ticket_id", nil
	}
	return "", domain.ErrInvalidTicketKind
}

func (r *TicketRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *TicketRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *TicketRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
