package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/senyabanana/rfq-service/internal/handlers"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func testRoutes() http.Handler {
	log := zap.NewNop()
	return InitRoutes(Handlers{
		Solicitations: handlers.NewSolicitationHandler(nil, nil, log, time.Second),
		Quotes:        handlers.NewQuoteHandler(nil, log, time.Second),
		Awards:        handlers.NewAwardHandler(nil, log, time.Second),
		Fulfillment:   handlers.NewFulfillmentHandler(nil, log, time.Second),
		Reports:       handlers.NewReportHandler(nil, log, time.Second),
	}, log)
}

func TestPing(t *testing.T) {
	rec := httptest.NewRecorder()
	testRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/solicitations/abc/publish"},
		{http.MethodDelete, "/api/quotes/abc"},
		{http.MethodPost, "/api/reports/suppliers"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			testRoutes().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	testRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
