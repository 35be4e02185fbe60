package printing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lamesahq/comanda/internal/domain"
)

type fakeTransport struct {
	calls    int
	failures int
	err      error
}

func (f *fakeTransport) Send(host string, port int, payload []byte, timeout time.Duration) error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return nil
}

type panicTransport struct{}

func (panicTransport) Send(string, int, []byte, time.Duration) error {
	panic("printer driver bug")
}

type fakeStatusRecorder struct {
	status  domain.ConnectionStatus
	message string
	calls   int
}

func (f *fakeStatusRecorder) UpdatePrinterStatus(_ context.Context, _ string, status domain.ConnectionStatus, errorMessage string) error {
	f.calls++
	f.status = status
	f.message = errorMessage
	return nil
}

func TestDispatcher_Dispatch(t *testing.T) {
	t.Parallel()

	cfg := domain.PrinterConfig{
		ID: "printer-1", Name: "Kitchen Pass",
		Host: "10.0.0.5", Port: 9100,
		Enabled: true, RetryAttempts: 3, ConnectionTimeout: time.Second,
	}
	payload := []byte("ticket")

	t.Run("first attempt succeeds", func(t *testing.T) {
		transport := &fakeTransport{}
		statuses := &fakeStatusRecorder{}
		d := NewDispatcher(transport, statuses, nil)

		res := d.Dispatch(context.Background(), cfg, payload)
		if !res.Success {
			t.Fatalf("expected success, got %q", res.Message)
		}
		if res.Attempts != 1 {
			t.Fatalf("expected 1 attempt, got %d", res.Attempts)
		}
		if statuses.status != domain.ConnectionStatusConnected || statuses.message != "" {
			t.Fatalf("expected connected status with empty message, got %s %q", statuses.status, statuses.message)
		}
	})

	t.Run("retries until a send succeeds", func(t *testing.T) {
		transport := &fakeTransport{failures: 2, err: errors.New("connection refused")}
		statuses := &fakeStatusRecorder{}
		d := NewDispatcher(transport, statuses, nil)

		res := d.Dispatch(context.Background(), cfg, payload)
		if !res.Success {
			t.Fatalf("expected success after retries, got %q", res.Message)
		}
		if res.Attempts != 3 {
			t.Fatalf("expected 3 attempts, got %d", res.Attempts)
		}
		if statuses.status != domain.ConnectionStatusConnected {
			t.Fatalf("expected connected status, got %s", statuses.status)
		}
	})

	t.Run("all attempts fail", func(t *testing.T) {
		transport := &fakeTransport{failures: 5, err: errors.New("connection refused")}
		statuses := &fakeStatusRecorder{}
		d := NewDispatcher(transport, statuses, nil)

		res := d.Dispatch(context.Background(), cfg, payload)
		if res.Success {
			t.Fatalf("expected failure")
		}
		if res.Attempts != 3 {
			t.Fatalf("expected 3 attempts, got %d", res.Attempts)
		}
		if transport.calls != 3 {
			t.Fatalf("expected 3 sends, got %d", transport.calls)
		}
		if statuses.status != domain.ConnectionStatusError || statuses.message == "" {
			t.Fatalf("expected error status with message, got %s %q", statuses.status, statuses.message)
		}
	})

	t.Run("zero retry attempts still dispatches once", func(t *testing.T) {
		zero := cfg
		zero.RetryAttempts = 0
		transport := &fakeTransport{}
		d := NewDispatcher(transport, &fakeStatusRecorder{}, nil)

		res := d.Dispatch(context.Background(), zero, payload)
		if !res.Success || res.Attempts != 1 {
			t.Fatalf("expected one successful attempt, got success=%v attempts=%d", res.Success, res.Attempts)
		}
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		transport := &fakeTransport{failures: 5, err: errors.New("connection refused")}
		d := NewDispatcher(transport, &fakeStatusRecorder{}, nil)

		res := d.Dispatch(ctx, cfg, payload)
		if res.Success {
			t.Fatalf("expected failure on cancelled context")
		}
		if transport.calls != 0 {
			t.Fatalf("expected no sends after cancellation, got %d", transport.calls)
		}
	})

	t.Run("transport panic resolves into a failed result", func(t *testing.T) {
		statuses := &fakeStatusRecorder{}
		d := NewDispatcher(panicTransport{}, statuses, nil)

		res := d.Dispatch(context.Background(), cfg, payload)
		if res.Success {
			t.Fatalf("expected failure after panic")
		}
		if res.Message == "" {
			t.Fatalf("expected panic message in result")
		}
		if statuses.status != domain.ConnectionStatusError {
			t.Fatalf("expected error status recorded, got %s", statuses.status)
		}
	})

	t.Run("nil status recorder is tolerated", func(t *testing.T) {
		transport := &fakeTransport{}
		d := NewDispatcher(transport, nil, nil)

		res := d.Dispatch(context.Background(), cfg, payload)
		if !res.Success {
			t.Fatalf("expected success, got %q", res.Message)
		}
	})
}
