package app

import (
	"context"
	"fmt"
	"time"

	"github.com/lamesahq/comanda/internal/domain"
	"github.com/lamesahq/comanda/internal/printing"
)

type PrinterRepository interface {
	GetPrinterConfig(ctx context.Context, configID string) (domain.PrinterConfig, error)
	UpdatePrinterStatus(ctx context.Context, configID string, status domain.ConnectionStatus, errorMessage string) error
}

// ConnectionProber opens and closes a connection without sending a payload.
type ConnectionProber interface {
	TestConnection(host string, port int, timeout time.Duration) error
}

type PrinterService struct {
	repo   PrinterRepository
	prober ConnectionProber
}

func NewPrinterService(repo PrinterRepository, prober ConnectionProber) *PrinterService {
	return &PrinterService{repo: repo, prober: prober}
}

type TestPrinterResult struct {
	Success bool
	Message string
}

// TestPrinter probes the printer's endpoint and persists the outcome on the
// configuration row. A failed probe is a normal result, not an error.
func (s *PrinterService) TestPrinter(ctx context.Context, configID string) (TestPrinterResult, error) {
	cfg, err := s.repo.GetPrinterConfig(ctx, configID)
	if err != nil {
		return TestPrinterResult{}, err
	}

	if !cfg.Enabled {
		return TestPrinterResult{Success: false, Message: "printer is disabled"}, nil
	}

	timeout := cfg.ConnectionTimeout
	if timeout <= 0 {
		timeout = printing.DefaultTimeout
	}

	if err := s.prober.TestConnection(cfg.Host, cfg.Port, timeout); err != nil {
		msg := err.Error()
		if updateErr := s.repo.UpdatePrinterStatus(ctx, cfg.ID, domain.ConnectionStatusError, msg); updateErr != nil {
			return TestPrinterResult{}, updateErr
		}
		return TestPrinterResult{Success: false, Message: msg}, nil
	}

	if err := s.repo.UpdatePrinterStatus(ctx, cfg.ID, domain.ConnectionStatusConnected, ""); err != nil {
		return TestPrinterResult{}, err
	}
	return TestPrinterResult{
		Success: true,
		Message: fmt.Sprintf("connected to %s:%d", cfg.Host, cfg.Port),
	}, nil
}
