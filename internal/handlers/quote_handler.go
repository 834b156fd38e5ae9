package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/senyabanana/rfq-service/internal/models"

	"go.uber.org/zap"
)

// QuoteHandler - структура для обработки HTTP-запросов по котировкам.
type QuoteHandler struct {
	base
	Service QuoteService
	Timeout time.Duration
}

// NewQuoteHandler создаёт новый экземпляр QuoteHandler.
func NewQuoteHandler(service QuoteService, logger *zap.Logger, timeout time.Duration) *QuoteHandler {
	return &QuoteHandler{base: base{Logger: logger}, Service: service, Timeout: timeout}
}

// SubmitQuote обрабатывает подачу котировки поставщиком.
func (h *QuoteHandler) SubmitQuote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.QuoteRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err, "")
		return
	}

	quote, err := h.Service.SubmitQuote(ctx, r.PathValue("id"), req)
	if err != nil {
		h.fail(w, r, err, "failed to submit quote")
		return
	}
	h.respond(w, http.StatusCreated, quote)
}

// ListQuotes обрабатывает запросы для получения котировок RFQ.
func (h *QuoteHandler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	quotes, err := h.Service.ListQuotes(ctx, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err, "failed to fetch quotes")
		return
	}
	h.respond(w, http.StatusOK, quotes)
}

// GetQuote обрабатывает запросы для получения котировки.
func (h *QuoteHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	quote, err := h.Service.GetQuote(ctx, r.PathValue("quoteId"))
	if err != nil {
		h.fail(w, r, err, "failed to fetch quote")
		return
	}
	h.respond(w, http.StatusOK, quote)
}

// RejectQuote обрабатывает отклонение котировки.
func (h *QuoteHandler) RejectQuote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	quote, err := h.Service.RejectQuote(ctx, r.PathValue("quoteId"), actor(r), r.URL.Query().Get("reason"))
	if err != nil {
		h.fail(w, r, err, "failed to reject quote")
		return
	}
	h.respond(w, http.StatusOK, quote)
}
