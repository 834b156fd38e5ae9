package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/senyabanana/rfq-service/internal/models"

	"go.uber.org/zap"
)

// FulfillmentHandler - отгрузки, расчёты и складские заказы.
type FulfillmentHandler struct {
	base
	Service FulfillmentService
	Timeout time.Duration
}

// NewFulfillmentHandler создаёт новый экземпляр FulfillmentHandler.
func NewFulfillmentHandler(service FulfillmentService, logger *zap.Logger, timeout time.Duration) *FulfillmentHandler {
	return &FulfillmentHandler{base: base{Logger: logger}, Service: service, Timeout: timeout}
}

// RecordShipment обрабатывает регистрацию отгрузки.
func (h *FulfillmentHandler) RecordShipment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.ShipmentRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err, "")
		return
	}

	shipment, err := h.Service.RecordShipment(ctx, req)
	if err != nil {
		h.fail(w, r, err, "failed to record shipment")
		return
	}
	h.respond(w, http.StatusCreated, shipment)
}

// RecordSettlement обрабатывает регистрацию расчёта.
func (h *FulfillmentHandler) RecordSettlement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.SettlementRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err, "")
		return
	}

	settlement, err := h.Service.RecordSettlement(ctx, req)
	if err != nil {
		h.fail(w, r, err, "failed to record settlement")
		return
	}
	h.respond(w, http.StatusCreated, settlement)
}

// CreateStockOrder обрабатывает создание складского заказа.
func (h *FulfillmentHandler) CreateStockOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.StockOrderRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err, "")
		return
	}

	order, err := h.Service.CreateStockOrder(ctx, req)
	if err != nil {
		h.fail(w, r, err, "failed to create stock order")
		return
	}
	h.respond(w, http.StatusCreated, order)
}

// UpdateStockOrder обрабатывает сохранение трек-номера и квитанции заказа.
func (h *FulfillmentHandler) UpdateStockOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var upd models.StockOrderUpdate
	if err := decode(r, &upd); err != nil {
		h.fail(w, r, err, "")
		return
	}

	order, err := h.Service.UpdateStockOrder(ctx, r.PathValue("orderId"), upd)
	if err != nil {
		h.fail(w, r, err, "failed to update stock order")
		return
	}
	h.respond(w, http.StatusOK, order)
}
