package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lamesahq/comanda/internal/domain"
)

type fakePrinterRepo struct {
	configs map[string]domain.PrinterConfig
	status  domain.ConnectionStatus
	message string
	updates int
}

func (f *fakePrinterRepo) GetPrinterConfig(_ context.Context, configID string) (domain.PrinterConfig, error) {
	cfg, ok := f.configs[configID]
	if !ok {
		return domain.PrinterConfig{}, domain.ErrPrinterNotFound
	}
	return cfg, nil
}

func (f *fakePrinterRepo) UpdatePrinterStatus(_ context.Context, _ string, status domain.ConnectionStatus, errorMessage string) error {
	f.updates++
	f.status = status
	f.message = errorMessage
	return nil
}

type fakeProber struct {
	err     error
	timeout time.Duration
}

func (f *fakeProber) TestConnection(_ string, _ int, timeout time.Duration) error {
	f.timeout = timeout
	return f.err
}

func TestPrinterService_TestPrinter(t *testing.T) {
	t.Parallel()

	cfg := domain.PrinterConfig{
		ID: "printer-1", BranchID: "branch-1", Role: domain.PrinterRoleKOT, Name: "Kitchen Pass",
		Host: "10.0.0.5", Port: 9100, Enabled: true, ConnectionTimeout: 2 * time.Second,
	}

	t.Run("reachable printer recorded as connected", func(t *testing.T) {
		repo := &fakePrinterRepo{configs: map[string]domain.PrinterConfig{cfg.ID: cfg}}
		svc := NewPrinterService(repo, &fakeProber{})

		res, err := svc.TestPrinter(context.Background(), cfg.ID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !res.Success {
			t.Fatalf("expected success, got %q", res.Message)
		}
		if res.Message != "connected to 10.0.0.5:9100" {
			t.Fatalf("unexpected message %q", res.Message)
		}
		if repo.status != domain.ConnectionStatusConnected || repo.message != "" {
			t.Fatalf("expected connected status persisted, got %s %q", repo.status, repo.message)
		}
	})

	t.Run("unreachable printer recorded as error", func(t *testing.T) {
		repo := &fakePrinterRepo{configs: map[string]domain.PrinterConfig{cfg.ID: cfg}}
		svc := NewPrinterService(repo, &fakeProber{err: errors.New("connection refused")})

		res, err := svc.TestPrinter(context.Background(), cfg.ID)
		if err != nil {
			t.Fatalf("probe failure is a result, not an error: %v", err)
		}
		if res.Success {
			t.Fatalf("expected failure result")
		}
		if res.Message != "connection refused" {
			t.Fatalf("unexpected message %q", res.Message)
		}
		if repo.status != domain.ConnectionStatusError || repo.message != "connection refused" {
			t.Fatalf("expected error status persisted, got %s %q", repo.status, repo.message)
		}
	})

	t.Run("disabled printer is not probed", func(t *testing.T) {
		disabled := cfg
		disabled.Enabled = false
		repo := &fakePrinterRepo{configs: map[string]domain.PrinterConfig{cfg.ID: disabled}}
		prober := &fakeProber{}
		svc := NewPrinterService(repo, prober)

		res, err := svc.TestPrinter(context.Background(), cfg.ID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Success || res.Message != "printer is disabled" {
			t.Fatalf("unexpected result %+v", res)
		}
		if repo.updates != 0 {
			t.Fatalf("expected no status update for disabled printer")
		}
	})

	t.Run("unset timeout falls back to the default", func(t *testing.T) {
		zero := cfg
		zero.ConnectionTimeout = 0
		repo := &fakePrinterRepo{configs: map[string]domain.PrinterConfig{cfg.ID: zero}}
		prober := &fakeProber{}
		svc := NewPrinterService(repo, prober)

		if _, err := svc.TestPrinter(context.Background(), cfg.ID); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if prober.timeout != 5*time.Second {
			t.Fatalf("expected default timeout, got %v", prober.timeout)
		}
	})

	t.Run("unknown printer", func(t *testing.T) {
		repo := &fakePrinterRepo{configs: map[string]domain.PrinterConfig{}}
		svc := NewPrinterService(repo, &fakeProber{})

		_, err := svc.TestPrinter(context.Background(), "missing")
		if err != domain.ErrPrinterNotFound {
			t.Fatalf("expected ErrPrinterNotFound, got %v", err)
		}
	})
}
