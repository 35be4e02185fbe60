package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lamesahq/comanda/internal/app"
	"github.com/lamesahq/comanda/internal/clock"
	"github.com/lamesahq/comanda/internal/config"
	"github.com/lamesahq/comanda/internal/events"
	"github.com/lamesahq/comanda/internal/printing"
	"github.com/lamesahq/comanda/internal/storage/postgres"
	transporthttp "github.com/lamesahq/comanda/internal/transport/http"
	"github.com/lamesahq/comanda/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := log.Default()
	cfg := config.Load(logger)

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to db: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	ticketRepo := postgres.NewTicketRepository(pool)
	printerRepo := postgres.NewPrinterRepository(pool)

	transport := printing.NewNetTransport()
	dispatcher := printing.NewDispatcher(transport, printerRepo, logger)

	opts := []app.TicketServiceOption{app.WithLogger(logger)}
	if cfg.NATSURL != "" {
		nc, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			log.Fatalf("connect to NATS: %v", err)
		}
		defer nc.Close()
		opts = append(opts, app.WithTicketEvents(events.NewTicketPublisher(nc, logger)))
		logger.Printf("ticket events enabled on %s", cfg.NATSURL)
	}

	ticketSvc := app.NewTicketService(ticketRepo, dispatcher, clock.NewSystem(), opts...)
	printerSvc := app.NewPrinterService(printerRepo, transport)

	handler := transporthttp.NewRouter(ticketSvc, printerSvc, cfg.CORSOrigins, logger)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	log.Printf("api listening on :%s", cfg.Port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
		}
	case <-stopCtx.Done():
		log.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("server shutdown error: %v", err)
	}

	// Let queued print jobs finish before the process exits.
	ticketSvc.Wait()
	log.Printf("server stopped")
}
