package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type (
	SolicitationStatus string // Статус запроса котировок
	LineItemStatus     string // Статус позиции запроса
)

const (
	DraftSolicitation     SolicitationStatus = "DRAFT"     // Черновик
	PublishedSolicitation SolicitationStatus = "PUBLISHED" // Опубликован, принимает котировки
	ClosedSolicitation    SolicitationStatus = "CLOSED"    // Приём котировок завершён
	AwardedSolicitation   SolicitationStatus = "AWARDED"   // Все позиции закрыты
	CanceledSolicitation  SolicitationStatus = "CANCELLED" // Отменён

	PendingItem    LineItemStatus = "PENDING"
	QuotedItem     LineItemStatus = "QUOTED"
	AwardedItem    LineItemStatus = "AWARDED"
	CanceledItem   LineItemStatus = "CANCELLED"
	OutOfStockItem LineItemStatus = "OUT_OF_STOCK"
)

// IsTerminal сообщает, что позиция больше не участвует в определении победителя.
func (s LineItemStatus) IsTerminal() bool {
	return s == AwardedItem || s == CanceledItem || s == OutOfStockItem
}

// Solicitation представляет модель запроса котировок (RFQ).
type Solicitation struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	OwnerID   string             `json:"ownerId"`
	Status    SolicitationStatus `json:"status"`
	Deadline  time.Time          `json:"deadline"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
	Items     []LineItem         `json:"items,omitempty"`
}

// SolicitationRequest представляет структуру запроса для создания RFQ.
type SolicitationRequest struct {
	Title    string          `json:"title"`
	OwnerID  string          `json:"ownerId"`
	Deadline time.Time       `json:"deadline"`
	Items    []LineItemDraft `json:"items"`
}

// LineItem представляет модель позиции запроса.
type LineItem struct {
	ID             string              `json:"id"`
	SolicitationID string              `json:"solicitationId"`
	ProductName    string              `json:"productName"`
	Quantity       int                 `json:"quantity"`
	Unit           string              `json:"unit"`
	CeilingPrice   decimal.Decimal     `json:"ceilingPrice"`
	InstantPrice   decimal.NullDecimal `json:"instantPrice"`
	Status         LineItemStatus      `json:"itemStatus"`
	CreatedAt      time.Time           `json:"createdAt"`
}

// LineItemDraft - позиция, полученная от импорта (таблица, форма и т.п.).
type LineItemDraft struct {
	ProductName  string           `json:"productName"`
	Quantity     int              `json:"quantity"`
	Unit         string           `json:"unit"`
	CeilingPrice *decimal.Decimal `json:"ceilingPrice,omitempty"`
	InstantPrice *decimal.Decimal `json:"instantPrice,omitempty"`
}

// SolicitationFilter - параметры выборки списка RFQ.
type SolicitationFilter struct {
	OwnerID  string
	Statuses []string
	Limit    int
	Offset   int
}
