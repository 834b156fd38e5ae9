package models

import (
	"fmt"
	"net/http"
)

// ErrorResponse описывает ошибку с кодом и сообщением.
type ErrorResponse struct {
	StatusCode int    `json:"-"`
	Message    string `json:"reason"`
}

// NewErrorResponse создает новую ошибку с кодом и сообщением.
func NewErrorResponse(statusCode int, message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: statusCode,
		Message:    message}
}

// ValidationError - некорректные входные данные, изменений не было.
func ValidationError(format string, args ...any) *ErrorResponse {
	return NewErrorResponse(http.StatusBadRequest, fmt.Sprintf(format, args...))
}

// StateError - операция недопустима в текущем статусе RFQ или позиции.
func StateError(format string, args ...any) *ErrorResponse {
	return NewErrorResponse(http.StatusConflict, fmt.Sprintf(format, args...))
}

// NotFoundError - объект не найден.
func NotFoundError(format string, args ...any) *ErrorResponse {
	return NewErrorResponse(http.StatusNotFound, fmt.Sprintf(format, args...))
}

// Реализация метода Error() для удовлетворения интерфейса error.
func (e *ErrorResponse) Error() string {
	return e.Message
}
