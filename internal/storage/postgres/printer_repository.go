package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lamesahq/comanda/internal/domain"
)

// PrinterRepository reads printer configurations and records their
// connection status. Connection settings themselves are owned by
// configuration management.
type PrinterRepository struct {
	pool *pgxpool.Pool
}

func NewPrinterRepository(pool *pgxpool.Pool) *PrinterRepository {
	return &PrinterRepository{pool: pool}
}

func (r *PrinterRepository) GetPrinterConfig(ctx context.Context, configID string) (domain.PrinterConfig, error) {
	const query = `
SELECT id, branch_id, role, name, host, port, enabled, auto_print,
       connection_timeout_ms, retry_attempts, paper_width, connection_status, error_message, updated_at
FROM printer_configs
WHERE id = $1`

	cfg, err := scanPrinterConfig(r.pool.QueryRow(ctx, query, configID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.PrinterConfig{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.PrinterConfig{}, domain.ErrPrinterNotFound
		}
		return domain.PrinterConfig{}, fmt.Errorf("get printer config: %w", err)
	}
	return cfg, nil
}

func (r *PrinterRepository) UpdatePrinterStatus(ctx context.Context, configID string, status domain.ConnectionStatus, errorMessage string) error {
	const stmt = `
UPDATE printer_configs
SET connection_status = $1, error_message = $2, updated_at = NOW()
WHERE id = $3`

	tag, err := r.pool.Exec(ctx, stmt, status, errorMessage, configID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update printer status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPrinterNotFound
	}
	return nil
}

func scanPrinterConfig(row pgx.Row) (domain.PrinterConfig, error) {
	var (
		cfg       domain.PrinterConfig
		timeoutMS int
	)
	err := row.Scan(
		&cfg.ID, &cfg.BranchID, &cfg.Role, &cfg.Name, &cfg.Host, &cfg.Port,
		&cfg.Enabled, &cfg.AutoPrint,
		&timeoutMS, &cfg.RetryAttempts, &cfg.PaperWidth,
		&cfg.ConnectionStatus, &cfg.ErrorMessage, &cfg.UpdatedAt,
	)
	if err != nil {
		return domain.PrinterConfig{}, err
	}
	cfg.ConnectionTimeout = time.Duration(timeoutMS) * time.Millisecond
	return cfg, nil
}
