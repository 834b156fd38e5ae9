package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus - вычисляемый статус оплаты выигранной позиции. Не хранится.
type PaymentStatus string

const (
	NotYetShipped  PaymentStatus = "NOT_YET_SHIPPED"
	PendingPayment PaymentStatus = "PENDING_PAYMENT"
	Paid           PaymentStatus = "PAID"
)

// DerivePaymentStatus выводит статус оплаты из трек-номера и квитанции.
func DerivePaymentStatus(trackingNumber, receiptKey *string) PaymentStatus {
	if trackingNumber == nil || *trackingNumber == "" {
		return NotYetShipped
	}
	if receiptKey == nil || *receiptKey == "" {
		return PendingPayment
	}
	return Paid
}

// Shipment - отгрузка выигранной позиции поставщиком.
type Shipment struct {
	ID             string    `json:"id"`
	LineItemID     string    `json:"lineItemId"`
	SupplierID     string    `json:"supplierId"`
	Carrier        string    `json:"carrier"`
	TrackingNumber string    `json:"trackingNumber"`
	ShippedAt      time.Time `json:"shippedAt"`
}

// Settlement - расчёт с поставщиком по позиции.
type Settlement struct {
	ID               string          `json:"id"`
	LineItemID       string          `json:"lineItemId"`
	SupplierID       string          `json:"supplierId"`
	Amount           decimal.Decimal `json:"amount"`
	ReceiptObjectKey string          `json:"receiptObjectKey"`
	SettledAt        time.Time       `json:"settledAt"`
}

// StockOrder - заказ со склада поставщика вне RFQ.
type StockOrder struct {
	ID               string          `json:"id"`
	SupplierID       string          `json:"supplierId"`
	BuyerID          string          `json:"buyerId"`
	ProductName      string          `json:"productName"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	TrackingNumber   *string         `json:"trackingNumber,omitempty"`
	ReceiptObjectKey *string         `json:"receiptObjectKey,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// Total возвращает стоимость заказа.
func (o StockOrder) Total() decimal.Decimal {
	return o.UnitPrice.Mul(decimal.NewFromInt(int64(o.Quantity)))
}

// WonItemLine - строка отчёта по выигранной позиции.
type WonItemLine struct {
	SolicitationID    string          `json:"solicitationId"`
	SolicitationTitle string          `json:"solicitationTitle"`
	LineItemID        string          `json:"lineItemId"`
	ProductName       string          `json:"productName"`
	SupplierID        string          `json:"supplierId"`
	QuoteID           string          `json:"quoteId"`
	QuoteItemID       string          `json:"quoteItemId"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	Total             decimal.Decimal `json:"total"`
	TrackingNumber    *string         `json:"trackingNumber,omitempty"`
	ReceiptURL        string          `json:"receiptUrl,omitempty"`
	PaymentStatus     PaymentStatus   `json:"paymentStatus"`
}

// StockOrderLine - строка отчёта по складскому заказу.
type StockOrderLine struct {
	StockOrder
	Total         decimal.Decimal `json:"total"`
	ReceiptURL    string          `json:"receiptUrl,omitempty"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
}

// MoneyBreakdown - суммы по статусам оплаты.
type MoneyBreakdown struct {
	Total          decimal.Decimal `json:"total"`
	NotYetShipped  decimal.Decimal `json:"notYetShipped"`
	PendingPayment decimal.Decimal `json:"pendingPayment"`
	Paid           decimal.Decimal `json:"paid"`
}

// Add учитывает сумму в разбивке по статусу.
func (b *MoneyBreakdown) Add(status PaymentStatus, amount decimal.Decimal) {
	b.Total = b.Total.Add(amount)
	switch status {
	case NotYetShipped:
		b.NotYetShipped = b.NotYetShipped.Add(amount)
	case PendingPayment:
		b.PendingPayment = b.PendingPayment.Add(amount)
	case Paid:
		b.Paid = b.Paid.Add(amount)
	}
}

// SupplierDashboard - сводка для поставщика.
type SupplierDashboard struct {
	SupplierID  string           `json:"supplierId"`
	WonItems    []WonItemLine    `json:"wonItems"`
	StockOrders []StockOrderLine `json:"stockOrders"`
	RFQIncome   MoneyBreakdown   `json:"rfqIncome"`
	StockIncome MoneyBreakdown   `json:"stockIncome"`
	GeneratedAt time.Time        `json:"generatedAt"`
}

// SolicitationFinancials - финансовая сводка по одному RFQ.
type SolicitationFinancials struct {
	SolicitationID string             `json:"solicitationId"`
	Title          string             `json:"title"`
	Status         SolicitationStatus `json:"status"`
	Budget         decimal.Decimal    `json:"budget"`
	Spend          MoneyBreakdown     `json:"spend"`
	Savings        decimal.Decimal    `json:"savings"`
	Lines          []WonItemLine      `json:"lines"`
	UnawardedItems int                `json:"unawardedItems"`
}

// BuyerFinancialReport - финансовый отчёт покупателя.
type BuyerFinancialReport struct {
	OwnerID       string                   `json:"ownerId"`
	Solicitations []SolicitationFinancials `json:"solicitations"`
	RFQSpend      MoneyBreakdown           `json:"rfqSpend"`
	StockSpend    MoneyBreakdown           `json:"stockSpend"`
	StockOrders   []StockOrderLine         `json:"stockOrders"`
	TotalBudget   decimal.Decimal          `json:"totalBudget"`
	TotalSavings  decimal.Decimal          `json:"totalSavings"`
	GeneratedAt   time.Time                `json:"generatedAt"`
}

// ShipmentRequest - запрос на регистрацию отгрузки.
type ShipmentRequest struct {
	LineItemID     string `json:"lineItemId"`
	SupplierID     string `json:"supplierId"`
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"trackingNumber"`
}

// SettlementRequest - запрос на регистрацию расчёта.
type SettlementRequest struct {
	LineItemID       string          `json:"lineItemId"`
	SupplierID       string          `json:"supplierId"`
	Amount           decimal.Decimal `json:"amount"`
	ReceiptObjectKey string          `json:"receiptObjectKey"`
}

// StockOrderRequest - запрос на создание складского заказа.
type StockOrderRequest struct {
	SupplierID  string          `json:"supplierId"`
	BuyerID     string          `json:"buyerId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// EvaluationResult - итог пакетного определения победителей.
type EvaluationResult struct {
	SolicitationID string                `json:"solicitationId"`
	Evaluated      int                   `json:"evaluated"`
	Failed         int                   `json:"failed"`
	Unquoted       []string              `json:"unquotedItemIds"`
	Errors         []ItemEvaluationError `json:"errors,omitempty"`
	Status         SolicitationStatus    `json:"status"`
}

// ItemEvaluationError - ошибка обработки одной позиции.
type ItemEvaluationError struct {
	LineItemID string `json:"lineItemId"`
	Message    string `json:"message"`
}

// StockOrderUpdate - трек-номер или ключ квитанции складского заказа.
type StockOrderUpdate struct {
	TrackingNumber   string `json:"trackingNumber,omitempty"`
	ReceiptObjectKey string `json:"receiptObjectKey,omitempty"`
}
