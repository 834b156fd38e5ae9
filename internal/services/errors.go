package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/senyabanana/rfq-service/internal/models"
	"github.com/senyabanana/rfq-service/internal/repository"
	"github.com/senyabanana/rfq-service/internal/resolver"
)

var (
	ErrSolicitationNotFound = models.NotFoundError("solicitation not found")
	ErrLineItemNotFound     = models.NotFoundError("line item not found")
	ErrQuoteNotFound        = models.NotFoundError("quote not found")
	ErrStockOrderNotFound   = models.NotFoundError("stock order not found")
)

// notFound возвращает target, если запрос не нашёл строк, иначе исходную ошибку.
func notFound(err error, target *models.ErrorResponse) error {
	if repository.IsNotFound(err) {
		return target
	}
	return err
}

// resolverError переводит ошибки resolver в категории ответа.
func resolverError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, resolver.ErrLineItemNotFound),
		errors.Is(err, resolver.ErrQuoteNotFound),
		errors.Is(err, resolver.ErrQuoteItemNotFound),
		errors.Is(err, resolver.ErrLinkageMismatch),
		errors.Is(err, resolver.ErrInvalidPrice),
		errors.Is(err, resolver.ErrInvalidQuantity),
		errors.Is(err, resolver.ErrForeignCandidate):
		return models.ValidationError("%s", err.Error())
	case errors.Is(err, resolver.ErrQuoteRejected),
		errors.Is(err, resolver.ErrNoCandidates):
		return models.StateError("%s", err.Error())
	default:
		return models.NewErrorResponse(http.StatusInternalServerError, fmt.Sprintf("consistency repair failed: %v", err))
	}
}
