package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/senyabanana/rfq-service/internal/models"

	"go.uber.org/zap"
)

// SolicitationHandler - структура для обработки HTTP-запросов по RFQ.
type SolicitationHandler struct {
	base
	Service   SolicitationService
	Evaluator Evaluator
	Timeout   time.Duration
}

// NewSolicitationHandler создаёт новый экземпляр SolicitationHandler.
func NewSolicitationHandler(service SolicitationService, evaluator Evaluator, logger *zap.Logger, timeout time.Duration) *SolicitationHandler {
	return &SolicitationHandler{
		base:      base{Logger: logger},
		Service:   service,
		Evaluator: evaluator,
		Timeout:   timeout,
	}
}

// CreateSolicitation обрабатывает запросы для создания RFQ.
func (h *SolicitationHandler) CreateSolicitation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.SolicitationRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err, "")
		return
	}

	sol, err := h.Service.CreateSolicitation(ctx, req)
	if err != nil {
		h.fail(w, r, err, "failed to create solicitation")
		return
	}
	h.respond(w, http.StatusCreated, sol)
}

// ListSolicitations обрабатывает запросы для получения списка RFQ.
func (h *SolicitationHandler) ListSolicitations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	query := r.URL.Query()
	sols, err := h.Service.ListSolicitations(ctx, query.Get("owner"), query["status"], query.Get("limit"), query.Get("offset"))
	if err != nil {
		h.fail(w, r, err, "failed to fetch solicitations")
		return
	}
	h.respond(w, http.StatusOK, sols)
}

// GetSolicitation обрабатывает запросы для получения RFQ с позициями.
func (h *SolicitationHandler) GetSolicitation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	sol, err := h.Service.GetSolicitation(ctx, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err, "failed to fetch solicitation")
		return
	}
	h.respond(w, http.StatusOK, sol)
}

// DeleteSolicitation обрабатывает запросы для удаления RFQ.
func (h *SolicitationHandler) DeleteSolicitation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := h.Service.Delete(ctx, r.PathValue("id"), actor(r)); err != nil {
		h.fail(w, r, err, "failed to delete solicitation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddLineItems обрабатывает импорт позиций в черновик RFQ.
func (h *SolicitationHandler) AddLineItems(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var drafts []models.LineItemDraft
	if err := decode(r, &drafts); err != nil {
		h.fail(w, r, err, "")
		return
	}

	items, err := h.Service.AddLineItems(ctx, r.PathValue("id"), drafts)
	if err != nil {
		h.fail(w, r, err, "failed to add line items")
		return
	}
	h.respond(w, http.StatusCreated, items)
}

// Publish обрабатывает запросы на публикацию RFQ.
func (h *SolicitationHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	sol, err := h.Service.Publish(ctx, r.PathValue("id"), actor(r))
	if err != nil {
		h.fail(w, r, err, "failed to publish solicitation")
		return
	}
	h.respond(w, http.StatusOK, sol)
}

// Close обрабатывает ручное закрытие RFQ. В ответе - итог оценки.
func (h *SolicitationHandler) Close(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	result, err := h.Service.Close(ctx, r.PathValue("id"), actor(r))
	if err != nil {
		h.fail(w, r, err, "failed to close solicitation")
		return
	}
	h.respond(w, http.StatusOK, result)
}

// Cancel обрабатывает запросы на отмену RFQ.
func (h *SolicitationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	sol, err := h.Service.Cancel(ctx, r.PathValue("id"), actor(r))
	if err != nil {
		h.fail(w, r, err, "failed to cancel solicitation")
		return
	}
	h.respond(w, http.StatusOK, sol)
}

// Evaluate повторно определяет победителей закрытого RFQ.
func (h *SolicitationHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	result, err := h.Evaluator.Evaluate(ctx, r.PathValue("id"), actor(r))
	if err != nil {
		h.fail(w, r, err, "failed to evaluate solicitation")
		return
	}
	h.respond(w, http.StatusOK, result)
}

type itemStatusRequest struct {
	Status models.LineItemStatus `json:"status"`
}

// SetItemStatus обрабатывает перевод позиции в CANCELLED или OUT_OF_STOCK.
// Статус передаётся в теле запроса или параметром status.
func (h *SolicitationHandler) SetItemStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	req := itemStatusRequest{Status: models.LineItemStatus(r.URL.Query().Get("status"))}
	if req.Status == "" {
		if err := decode(r, &req); err != nil {
			h.fail(w, r, err, "")
			return
		}
	}

	item, err := h.Service.SetItemStatus(ctx, r.PathValue("id"), r.PathValue("itemId"), req.Status, actor(r))
	if err != nil {
		h.fail(w, r, err, "failed to update line item status")
		return
	}
	h.respond(w, http.StatusOK, item)
}
