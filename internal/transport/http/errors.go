package http

import (
	"encoding/json"
	"net/http"

	"github.com/lamesahq/comanda/internal/domain"
)

const (
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidID          = "invalid_id"
	codeInvalidTicketKind  = "invalid_ticket_kind"
	codeInvalidStatus      = "invalid_status"
	codeInvalidTransition  = "invalid_status_transition"
	codeOrderNotFound      = "order_not_found"
	codeTicketNotFound     = "ticket_not_found"
	codePrinterNotFound    = "printer_not_found"
	codeClaimConflict      = "claim_conflict"
	codeNumberConflict     = "ticket_number_conflict"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeServiceError maps domain errors onto HTTP status codes. The two
// conflict errors are 409s the caller is expected to retry.
func writeServiceError(w http.ResponseWriter, err error) {
	switch err {
	case domain.ErrOrderNotFound:
		writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
	case domain.ErrTicketNotFound:
		writeError(w, http.StatusNotFound, codeTicketNotFound, err.Error())
	case domain.ErrPrinterNotFound:
		writeError(w, http.StatusNotFound, codePrinterNotFound, err.Error())
	case domain.ErrInvalidID:
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case domain.ErrInvalidTicketKind:
		writeError(w, http.StatusBadRequest, codeInvalidTicketKind, err.Error())
	case domain.ErrInvalidTransition:
		writeError(w, http.StatusConflict, codeInvalidTransition, err.Error())
	case domain.ErrClaimConflict:
		writeError(w, http.StatusConflict, codeClaimConflict, err.Error())
	case domain.ErrTicketNumberConflict:
		writeError(w, http.StatusConflict, codeNumberConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
