package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lamesahq/comanda/internal/app"
)

// PrinterTester probes a configured printer's endpoint.
type PrinterTester interface {
	TestPrinter(ctx context.Context, configID string) (app.TestPrinterResult, error)
}

// HandleTestPrinter returns the handler for POST /printers/{printerID}/test.
func HandleTestPrinter(svc PrinterTester) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.TestPrinter(r.Context(), chi.URLParam(r, "printerID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, testPrinterResponse{
			Success: result.Success,
			Message: result.Message,
		})
	}
}

type testPrinterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
