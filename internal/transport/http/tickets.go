package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lamesahq/comanda/internal/app"
	"github.com/lamesahq/comanda/internal/domain"
)

// TicketGenerator is the minimal interface needed to generate tickets for
// an order.
type TicketGenerator interface {
	GenerateTickets(ctx context.Context, orderID string) (app.GenerateTicketsResult, error)
}

// HandleGenerateTickets returns the handler for POST /orders/{orderID}/tickets.
func HandleGenerateTickets(svc TicketGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.GenerateTickets(r.Context(), chi.URLParam(r, "orderID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := generateTicketsResponse{
			KOTGenerated: result.KOTGenerated,
			BOTGenerated: result.BOTGenerated,
			Message:      result.Message,
		}
		if result.KitchenTicket != nil {
			t := ticketResponseFrom(*result.KitchenTicket)
			resp.KitchenTicket = &t
		}
		if result.BarTicket != nil {
			t := ticketResponseFrom(*result.BarTicket)
			resp.BarTicket = &t
		}

		status := http.StatusCreated
		if !result.KOTGenerated && !result.BOTGenerated {
			status = http.StatusOK
		}
		writeJSON(w, status, resp)
	}
}

// TicketStatusUpdater applies a forward-only ticket status transition.
type TicketStatusUpdater interface {
	UpdateTicketStatus(ctx context.Context, kind domain.TicketKind, ticketID string, status domain.TicketStatus) (domain.Ticket, error)
}

// HandleUpdateTicketStatus returns the handler for
// PATCH /tickets/{kind}/{ticketID}/status.
func HandleUpdateTicketStatus(svc TicketStatusUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := domain.ParseTicketKind(chi.URLParam(r, "kind"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		var req updateStatusRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		status := domain.TicketStatus(req.Status)
		if !domain.ValidTicketStatus(status) {
			writeError(w, http.StatusBadRequest, codeInvalidStatus, "unknown ticket status")
			return
		}

		ticket, err := svc.UpdateTicketStatus(r.Context(), kind, chi.URLParam(r, "ticketID"), status)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ticketResponseFrom(ticket))
	}
}

// PrintMarker stamps a ticket's printedAt once.
type PrintMarker interface {
	MarkPrinted(ctx context.Context, kind domain.TicketKind, ticketID string) (domain.Ticket, error)
}

// HandleMarkPrinted returns the handler for
// POST /tickets/{kind}/{ticketID}/printed.
func HandleMarkPrinted(svc PrintMarker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := domain.ParseTicketKind(chi.URLParam(r, "kind"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		ticket, err := svc.MarkPrinted(r.Context(), kind, chi.URLParam(r, "ticketID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ticketResponseFrom(ticket))
	}
}

// TicketPreviewer renders the preview text for a stored ticket.
type TicketPreviewer interface {
	TicketPreview(ctx context.Context, kind domain.TicketKind, ticketID string) (string, error)
}

// HandleTicketPreview returns the handler for GET /tickets/{kind}/{ticketID}.
func HandleTicketPreview(svc TicketPreviewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := domain.ParseTicketKind(chi.URLParam(r, "kind"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		preview, err := svc.TicketPreview(r.Context(), kind, chi.URLParam(r, "ticketID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(preview))
	}
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type generateTicketsResponse struct {
	KOTGenerated  bool            `json:"kot_generated"`
	BOTGenerated  bool            `json:"bot_generated"`
	KitchenTicket *ticketResponse `json:"kitchen_ticket,omitempty"`
	BarTicket     *ticketResponse `json:"bar_ticket,omitempty"`
	Message       string          `json:"message"`
}

type ticketResponse struct {
	ID           string     `json:"id"`
	Kind         string     `json:"kind"`
	Number       string     `json:"number"`
	OrderID      string     `json:"order_id"`
	OrderNumber  string     `json:"order_number"`
	CustomerName string     `json:"customer_name,omitempty"`
	Location     string     `json:"location,omitempty"`
	ItemCount    int        `json:"item_count"`
	Notes        string     `json:"notes,omitempty"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ServedAt     *time.Time `json:"served_at,omitempty"`
	PrintedAt    *time.Time `json:"printed_at,omitempty"`
}

func ticketResponseFrom(t domain.Ticket) ticketResponse {
	return ticketResponse{
		ID:           t.ID,
		Kind:         string(t.Kind),
		Number:       t.Number,
		OrderID:      t.OrderID,
		OrderNumber:  t.OrderNumber,
		CustomerName: t.CustomerName,
		Location:     t.Location,
		ItemCount:    t.ItemCount,
		Notes:        t.Notes,
		Status:       string(t.Status),
		CreatedAt:    t.CreatedAt,
		StartedAt:    t.StartedAt,
		CompletedAt:  t.CompletedAt,
		ServedAt:     t.ServedAt,
		PrintedAt:    t.PrintedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
