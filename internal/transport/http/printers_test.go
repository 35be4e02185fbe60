package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lamesahq/comanda/internal/app"
	"github.com/lamesahq/comanda/internal/domain"
)

func TestHandleTestPrinter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		result         app.TestPrinterResult
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "reachable printer",
			result:         app.TestPrinterResult{Success: true, Message: "connected to 10.0.0.5:9100"},
			expectedStatus: http.StatusOK,
			expectedSubstr: `"success":true`,
		},
		{
			name:           "unreachable printer is still a 200",
			result:         app.TestPrinterResult{Success: false, Message: "connection refused"},
			expectedStatus: http.StatusOK,
			expectedSubstr: `"success":false`,
		},
		{
			name:           "printer not found",
			serviceErr:     domain.ErrPrinterNotFound,
			expectedStatus: http.StatusNotFound,
			expectedSubstr: `"code":"printer_not_found"`,
		},
		{
			name:           "internal error",
			serviceErr:     errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedSubstr: `"code":"internal_error"`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			router := newTestRouter(&stubTicketService{}, &stubPrinterService{result: tt.result, err: tt.serviceErr})

			req := httptest.NewRequest(http.MethodPost, "/printers/printer-1/test", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}
}
