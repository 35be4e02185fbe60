package printing

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lamesahq/comanda/internal/domain"
)

// DefaultTimeout bounds a single connection attempt when the printer
// configuration does not set one.
const DefaultTimeout = 5 * time.Second

// Transport performs one delivery attempt.
type Transport interface {
	Send(host string, port int, payload []byte, timeout time.Duration) error
}

// StatusRecorder persists the connection status of a printer configuration
// after a dispatch attempt.
type StatusRecorder interface {
	UpdatePrinterStatus(ctx context.Context, configID string, status domain.ConnectionStatus, errorMessage string) error
}

type DispatchResult struct {
	Success  bool
	Attempts int
	Message  string
}

// Dispatcher wraps a Transport with per-configuration retries and status
// bookkeeping. Dispatch resolves every failure into the result value; a bad
// printer can never crash or block ticket generation.
type Dispatcher struct {
	transport Transport
	statuses  StatusRecorder
	logger    *log.Logger
}

func NewDispatcher(transport Transport, statuses StatusRecorder, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{
		transport: transport,
		statuses:  statuses,
		logger:    logger,
	}
}

// Dispatch attempts delivery up to cfg.RetryAttempts times (minimum 1),
// each attempt a fresh connection with the configured timeout. On the first
// success it records the printer as connected and clears the stored error;
// when all attempts fail it records the last failure.
func (d *Dispatcher) Dispatch(ctx context.Context, cfg domain.PrinterConfig, payload []byte) (result DispatchResult) {
	defer func() {
		if r := recover(); r != nil {
			result = DispatchResult{
				Attempts: result.Attempts,
				Message:  fmt.Sprintf("dispatch panic: %v", r),
			}
			d.recordStatus(cfg.ID, domain.ConnectionStatusError, result.Message)
		}
	}()

	timeout := cfg.ConnectionTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result.Attempts = attempt
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		err := d.transport.Send(cfg.Host, cfg.Port, payload, timeout)
		if err == nil {
			d.recordStatus(cfg.ID, domain.ConnectionStatusConnected, "")
			result.Success = true
			result.Message = fmt.Sprintf("delivered to %s:%d on attempt %d", cfg.Host, cfg.Port, attempt)
			return result
		}

		lastErr = err
		d.logger.Printf("WARN: printer %s attempt %d/%d: %v", cfg.Name, attempt, attempts, err)
	}

	result.Message = lastErr.Error()
	d.recordStatus(cfg.ID, domain.ConnectionStatusError, result.Message)
	return result
}

func (d *Dispatcher) recordStatus(configID string, status domain.ConnectionStatus, msg string) {
	if d.statuses == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := d.statuses.UpdatePrinterStatus(ctx, configID, status, msg); err != nil {
		d.logger.Printf("WARN: update printer %s status: %v", configID, err)
	}
}
