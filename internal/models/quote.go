package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteStatus - статус котировки поставщика.
type QuoteStatus string

const (
	SubmittedQuote QuoteStatus = "SUBMITTED" // Котировка подана
	AwardedQuote   QuoteStatus = "AWARDED"   // Хотя бы одна позиция котировки выиграла
	RejectedQuote  QuoteStatus = "REJECTED"  // Котировка отклонена и не участвует в отборе
)

// Quote представляет модель котировки поставщика по RFQ.
type Quote struct {
	ID             string          `json:"id"`
	SolicitationID string          `json:"solicitationId"`
	SupplierID     string          `json:"supplierId"`
	Status         QuoteStatus     `json:"status"`
	Price          decimal.Decimal `json:"price"`
	SubmittedAt    time.Time       `json:"submittedAt"`
	Items          []QuoteItem     `json:"items,omitempty"`
}

// QuoteItem - цена поставщика по одной позиции. После создания не изменяется.
type QuoteItem struct {
	ID         string          `json:"id"`
	QuoteID    string          `json:"quoteId"`
	LineItemID string          `json:"lineItemId"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
}

// QuoteRequest представляет структуру запроса для подачи котировки.
type QuoteRequest struct {
	SupplierID string             `json:"supplierId"`
	Items      []QuoteItemRequest `json:"items"`
}

// QuoteItemRequest - цена по одной позиции в запросе на подачу котировки.
type QuoteItemRequest struct {
	LineItemID string          `json:"lineItemId"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
}
