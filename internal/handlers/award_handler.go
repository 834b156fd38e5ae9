package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/senyabanana/rfq-service/internal/models"

	"go.uber.org/zap"
)

// AwardHandler - структура для обработки HTTP-запросов по решениям.
type AwardHandler struct {
	base
	Service AwardService
	Timeout time.Duration
}

// NewAwardHandler создаёт новый экземпляр AwardHandler.
func NewAwardHandler(service AwardService, logger *zap.Logger, timeout time.Duration) *AwardHandler {
	return &AwardHandler{base: base{Logger: logger}, Service: service, Timeout: timeout}
}

// AwardItem обрабатывает ручное назначение победителя позиции.
func (h *AwardHandler) AwardItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.AwardItemRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err, "")
		return
	}
	if req.ActorID == "" {
		req.ActorID = actor(r)
	}

	outcome, err := h.Service.AwardItem(ctx, r.PathValue("id"), r.PathValue("itemId"), req)
	if err != nil {
		h.fail(w, r, err, "failed to award line item")
		return
	}
	h.respond(w, http.StatusOK, outcome)
}

// Winners обрабатывает запросы для получения текущих победителей.
func (h *AwardHandler) Winners(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	winners, err := h.Service.Winners(ctx, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err, "failed to fetch winners")
		return
	}
	h.respond(w, http.StatusOK, winners)
}

// ListAwards обрабатывает запросы для получения решений RFQ.
func (h *AwardHandler) ListAwards(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	awards, err := h.Service.ListAwards(ctx, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err, "failed to fetch awards")
		return
	}
	h.respond(w, http.StatusOK, awards)
}
