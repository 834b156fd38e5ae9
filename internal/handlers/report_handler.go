package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ReportHandler - финансовые отчёты для поставщиков и покупателей.
type ReportHandler struct {
	base
	Service ReportService
	Timeout time.Duration
}

// NewReportHandler создаёт новый экземпляр ReportHandler.
func NewReportHandler(service ReportService, logger *zap.Logger, timeout time.Duration) *ReportHandler {
	return &ReportHandler{base: base{Logger: logger}, Service: service, Timeout: timeout}
}

// SupplierDashboard обрабатывает запрос сводки поставщика.
func (h *ReportHandler) SupplierDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	dashboard, err := h.Service.SupplierDashboard(ctx, r.PathValue("supplierId"))
	if err != nil {
		h.fail(w, r, err, "failed to build supplier dashboard")
		return
	}
	h.respond(w, http.StatusOK, dashboard)
}

// AllSuppliersDashboard обрабатывает запрос сводок по всем поставщикам.
func (h *ReportHandler) AllSuppliersDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	dashboards, err := h.Service.AllSuppliersDashboard(ctx)
	if err != nil {
		h.fail(w, r, err, "failed to build supplier dashboards")
		return
	}
	h.respond(w, http.StatusOK, dashboards)
}

// BuyerFinancialReport обрабатывает запрос финансового отчёта покупателя.
func (h *ReportHandler) BuyerFinancialReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	report, err := h.Service.BuyerFinancialReport(ctx, r.PathValue("ownerId"))
	if err != nil {
		h.fail(w, r, err, "failed to build buyer report")
		return
	}
	h.respond(w, http.StatusOK, report)
}
