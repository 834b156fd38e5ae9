package handlers

import (
	"context"

	"github.com/senyabanana/rfq-service/internal/models"
)

// SolicitationService - операции над RFQ и его позициями.
type SolicitationService interface {
	CreateSolicitation(ctx context.Context, req models.SolicitationRequest) (*models.Solicitation, error)
	AddLineItems(ctx context.Context, solicitationID string, drafts []models.LineItemDraft) ([]models.LineItem, error)
	Publish(ctx context.Context, solicitationID, actorID string) (*models.Solicitation, error)
	Close(ctx context.Context, solicitationID, actorID string) (*models.EvaluationResult, error)
	Cancel(ctx context.Context, solicitationID, actorID string) (*models.Solicitation, error)
	Delete(ctx context.Context, solicitationID, actorID string) error
	GetSolicitation(ctx context.Context, solicitationID string) (*models.Solicitation, error)
	ListSolicitations(ctx context.Context, ownerID string, statuses []string, limitStr, offsetStr string) ([]models.Solicitation, error)
	SetItemStatus(ctx context.Context, solicitationID, lineItemID string, status models.LineItemStatus, actorID string) (*models.LineItem, error)
}

// Evaluator повторно запускает определение победителей.
type Evaluator interface {
	Evaluate(ctx context.Context, solicitationID, actorID string) (*models.EvaluationResult, error)
}

// QuoteService - подача и отклонение котировок.
type QuoteService interface {
	SubmitQuote(ctx context.Context, solicitationID string, req models.QuoteRequest) (*models.Quote, error)
	GetQuote(ctx context.Context, quoteID string) (*models.Quote, error)
	ListQuotes(ctx context.Context, solicitationID string) ([]models.Quote, error)
	RejectQuote(ctx context.Context, quoteID, actorID, reason string) (*models.Quote, error)
}

// AwardService - ручное назначение и просмотр победителей.
type AwardService interface {
	AwardItem(ctx context.Context, solicitationID, lineItemID string, req models.AwardItemRequest) (*models.AwardOutcome, error)
	Winners(ctx context.Context, solicitationID string) ([]models.Winner, error)
	ListAwards(ctx context.Context, solicitationID string) ([]models.Award, error)
}

// FulfillmentService - отгрузки, расчёты и складские заказы.
type FulfillmentService interface {
	RecordShipment(ctx context.Context, req models.ShipmentRequest) (*models.Shipment, error)
	RecordSettlement(ctx context.Context, req models.SettlementRequest) (*models.Settlement, error)
	CreateStockOrder(ctx context.Context, req models.StockOrderRequest) (*models.StockOrder, error)
	UpdateStockOrder(ctx context.Context, orderID string, upd models.StockOrderUpdate) (*models.StockOrder, error)
}

// ReportService - финансовые отчёты.
type ReportService interface {
	SupplierDashboard(ctx context.Context, supplierID string) (*models.SupplierDashboard, error)
	AllSuppliersDashboard(ctx context.Context) ([]models.SupplierDashboard, error)
	BuyerFinancialReport(ctx context.Context, ownerID string) (*models.BuyerFinancialReport, error)
}
