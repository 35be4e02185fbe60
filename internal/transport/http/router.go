package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// TicketAPI is the full surface the router needs from the ticket service.
type TicketAPI interface {
	TicketGenerator
	TicketStatusUpdater
	PrintMarker
	TicketPreviewer
}

// NewRouter wires all routes and middleware.
func NewRouter(tickets TicketAPI, printers PrinterTester, corsOrigins []string, logger *log.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", HealthHandler)
	r.Post("/orders/{orderID}/tickets", HandleGenerateTickets(tickets))
	r.Get("/tickets/{kind}/{ticketID}", HandleTicketPreview(tickets))
	r.Patch("/tickets/{kind}/{ticketID}/status", HandleUpdateTicketStatus(tickets))
	r.Post("/tickets/{kind}/{ticketID}/printed", HandleMarkPrinted(tickets))
	r.Post("/printers/{printerID}/test", HandleTestPrinter(printers))
	r.NotFound(NotFoundHandler().ServeHTTP)

	return RequestLogger(CORS(corsOrigins, r), logger)
}
