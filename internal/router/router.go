package router

import (
	"net/http"
	"time"

	"github.com/senyabanana/rfq-service/internal/handlers"

	"go.uber.org/zap"
)

// Handlers - набор обработчиков API.
type Handlers struct {
	Solicitations *handlers.SolicitationHandler
	Quotes        *handlers.QuoteHandler
	Awards        *handlers.AwardHandler
	Fulfillment   *handlers.FulfillmentHandler
	Reports       *handlers.ReportHandler
}

func InitRoutes(h Handlers, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/ping", handlers.PingHandler)

	mux.HandleFunc("POST /api/solicitations", h.Solicitations.CreateSolicitation)
	mux.HandleFunc("GET /api/solicitations", h.Solicitations.ListSolicitations)
	mux.HandleFunc("GET /api/solicitations/{id}", h.Solicitations.GetSolicitation)
	mux.HandleFunc("DELETE /api/solicitations/{id}", h.Solicitations.DeleteSolicitation)
	mux.HandleFunc("POST /api/solicitations/{id}/items", h.Solicitations.AddLineItems)
	mux.HandleFunc("PUT /api/solicitations/{id}/publish", h.Solicitations.Publish)
	mux.HandleFunc("PUT /api/solicitations/{id}/close", h.Solicitations.Close)
	mux.HandleFunc("PUT /api/solicitations/{id}/cancel", h.Solicitations.Cancel)
	mux.HandleFunc("PUT /api/solicitations/{id}/evaluate", h.Solicitations.Evaluate)
	mux.HandleFunc("PUT /api/solicitations/{id}/items/{itemId}/status", h.Solicitations.SetItemStatus)

	mux.HandleFunc("POST /api/solicitations/{id}/quotes", h.Quotes.SubmitQuote)
	mux.HandleFunc("GET /api/solicitations/{id}/quotes", h.Quotes.ListQuotes)
	mux.HandleFunc("GET /api/quotes/{quoteId}", h.Quotes.GetQuote)
	mux.HandleFunc("PUT /api/quotes/{quoteId}/reject", h.Quotes.RejectQuote)

	mux.HandleFunc("POST /api/solicitations/{id}/items/{itemId}/award", h.Awards.AwardItem)
	mux.HandleFunc("GET /api/solicitations/{id}/winners", h.Awards.Winners)
	mux.HandleFunc("GET /api/solicitations/{id}/awards", h.Awards.ListAwards)

	mux.HandleFunc("POST /api/shipments", h.Fulfillment.RecordShipment)
	mux.HandleFunc("POST /api/settlements", h.Fulfillment.RecordSettlement)
	mux.HandleFunc("POST /api/stock-orders", h.Fulfillment.CreateStockOrder)
	mux.HandleFunc("PUT /api/stock-orders/{orderId}", h.Fulfillment.UpdateStockOrder)

	mux.HandleFunc("GET /api/reports/suppliers", h.Reports.AllSuppliersDashboard)
	mux.HandleFunc("GET /api/reports/suppliers/{supplierId}", h.Reports.SupplierDashboard)
	mux.HandleFunc("GET /api/reports/buyers/{ownerId}", h.Reports.BuyerFinancialReport)

	return accessLog(mux, logger)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// accessLog пишет строку журнала на каждый запрос.
func accessLog(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
