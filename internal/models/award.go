package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AwardStatus - статус решения о присуждении.
type AwardStatus string

const (
	ActiveAward   AwardStatus = "ACTIVE"
	CanceledAward AwardStatus = "CANCELLED"

	ManualReawardReason = "MANUAL_REAWARD" // Причина отмены при ручном переназначении позиции
	AutoAwardReason     = "AUTO_EVALUATION"
)

// Award - запись о победе поставщика в рамках одного RFQ.
type Award struct {
	ID                 string          `json:"id"`
	SolicitationID     string          `json:"solicitationId"`
	SupplierID         string          `json:"supplierId"`
	QuoteID            string          `json:"quoteId"`
	Status             AwardStatus     `json:"status"`
	FinalPrice         decimal.Decimal `json:"finalPrice"`
	Reason             string          `json:"reason"`
	CancellationReason *string         `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time      `json:"cancelledAt,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
	Items              []AwardItem     `json:"items"`
}

// AwardItem связывает решение с выигранной позицией и ценой.
type AwardItem struct {
	AwardID     string          `json:"awardId"`
	LineItemID  string          `json:"lineItemId"`
	QuoteItemID string          `json:"quoteItemId"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
}

// Total возвращает стоимость позиции решения.
func (i AwardItem) Total() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// AwardItemRequest - запрос на ручное назначение победителя по позиции.
type AwardItemRequest struct {
	QuoteID     string `json:"quoteId"`
	QuoteItemID string `json:"quoteItemId"`
	Reason      string `json:"reason"`
	ActorID     string `json:"actorId"`
}

// Winner - результат определения победителя по позиции.
type Winner struct {
	LineItemID  string          `json:"lineItemId"`
	QuoteItemID string          `json:"quoteItemId"`
	QuoteID     string          `json:"quoteId"`
	SupplierID  string          `json:"supplierId"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	Total       decimal.Decimal `json:"total"`
	Rule        string          `json:"rule"`
}

// AwardOutcome - результат ручного назначения победителя.
type AwardOutcome struct {
	Winner     Winner   `json:"winner"`
	Award      Award    `json:"award"`
	Superseded []string `json:"supersededSuppliers"`
}
