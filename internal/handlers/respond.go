package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/senyabanana/rfq-service/internal/models"
	"github.com/senyabanana/rfq-service/internal/utils"

	"go.uber.org/zap"
)

// base - общие зависимости обработчиков.
type base struct {
	Logger *zap.Logger
}

// respond отправляет успешный ответ.
func (b base) respond(w http.ResponseWriter, status int, body any) {
	if err := utils.SendJSON(w, status, body); err != nil {
		b.Logger.Warn("failed to encode response", zap.Error(err))
	}
}

// fail переводит ошибку сервиса в HTTP-ответ. Неизвестные ошибки
// отдаются клиенту как fallback без подробностей.
func (b base) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var errorResponse *models.ErrorResponse
	if errors.As(err, &errorResponse) {
		b.Logger.Info("request rejected",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", errorResponse.StatusCode),
			zap.String("reason", errorResponse.Message),
		)
		utils.SendErrorResponse(w, errorResponse.StatusCode, errorResponse.Message)
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		b.Logger.Warn("request timed out", zap.String("path", r.URL.Path), zap.Error(err))
		utils.SendErrorResponse(w, http.StatusGatewayTimeout, "request timed out")
		return
	}
	b.Logger.Error(fallback, zap.String("path", r.URL.Path), zap.Error(err))
	utils.SendErrorResponse(w, http.StatusInternalServerError, fallback)
}

// decode читает тело запроса в формате JSON.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.ValidationError("invalid request body")
	}
	return nil
}

// actor возвращает идентификатор пользователя, выполняющего действие.
func actor(r *http.Request) string {
	return r.URL.Query().Get("actor")
}
