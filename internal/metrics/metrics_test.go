package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		IncHTTP("/api/v1/reservations", "2xx")
		IncDocumentWrite("configs", "ok")
		IncDocumentCoalesced("configs")
		IncReservationCreated("hotel")
		AddSale(12.5)
	})
}

func TestHandler(t *testing.T) {
	Register()
	IncReservationCreated("peluqueria")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `pethotel_reservations_created_total{type="peluqueria"}`)
}
