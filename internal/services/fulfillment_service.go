package services

import (
	"context"
	"strings"

	"github.com/senyabanana/rfq-service/internal/models"
	"github.com/senyabanana/rfq-service/internal/repository"
	"github.com/senyabanana/rfq-service/internal/utils"

	"github.com/jackc/pgx/v5"
)

// FulfillmentService регистрирует отгрузки, расчёты и складские заказы.
type FulfillmentService struct {
	Options
}

// NewFulfillmentService создаёт новый экземпляр FulfillmentService.
func NewFulfillmentService(opts Options) *FulfillmentService {
	return &FulfillmentService{Options: opts.withDefaults()}
}

// RecordShipment регистрирует отгрузку позиции её победителем.
func (s *FulfillmentService) RecordShipment(ctx context.Context, req models.ShipmentRequest) (*models.Shipment, error) {
	req.TrackingNumber = strings.TrimSpace(req.TrackingNumber)
	if req.SupplierID == "" || req.TrackingNumber == "" {
		return nil, models.ValidationError("missing required fields: supplierId, trackingNumber")
	}
	shipment := &models.Shipment{
		ID:             s.NewID(),
		LineItemID:     req.LineItemID,
		SupplierID:     req.SupplierID,
		Carrier:        strings.TrimSpace(req.Carrier),
		TrackingNumber: req.TrackingNumber,
		ShippedAt:      s.Now(),
	}
	err := s.asWinner(ctx, req.LineItemID, req.SupplierID, func(st *repository.Store) error {
		return st.Fulfillment.UpsertShipment(ctx, shipment)
	})
	if err != nil {
		return nil, err
	}
	return shipment, nil
}

// RecordSettlement регистрирует расчёт с победителем позиции.
func (s *FulfillmentService) RecordSettlement(ctx context.Context, req models.SettlementRequest) (*models.Settlement, error) {
	req.ReceiptObjectKey = strings.TrimSpace(req.ReceiptObjectKey)
	if req.SupplierID == "" || req.ReceiptObjectKey == "" {
		return nil, models.ValidationError("missing required fields: supplierId, receiptObjectKey")
	}
	if !req.Amount.IsPositive() {
		return nil, models.ValidationError("amount must be positive")
	}
	settlement := &models.Settlement{
		ID:               s.NewID(),
		LineItemID:       req.LineItemID,
		SupplierID:       req.SupplierID,
		Amount:           req.Amount.Round(2),
		ReceiptObjectKey: req.ReceiptObjectKey,
		SettledAt:        s.Now(),
	}
	err := s.asWinner(ctx, req.LineItemID, req.SupplierID, func(st *repository.Store) error {
		return st.Fulfillment.UpsertSettlement(ctx, settlement)
	})
	if err != nil {
		return nil, err
	}
	return settlement, nil
}

// asWinner выполняет fn, если поставщик сейчас выигрывает позицию.
func (s *FulfillmentService) asWinner(ctx context.Context, lineItemID, supplierID string, fn func(st *repository.Store) error) error {
	if !utils.ValidID(lineItemID) {
		return ErrLineItemNotFound
	}
	item, err := s.Store.Solicitations.GetLineItem(ctx, lineItemID)
	if err != nil {
		return notFound(err, ErrLineItemNotFound)
	}

	return s.inSolicitationTx(ctx, item.SolicitationID, func(_ pgx.Tx, st *repository.Store, sol *models.Solicitation) error {
		snap, err := st.Snapshots().Load(ctx, *sol)
		if err != nil {
			return err
		}
		current, ok := snap.Item(lineItemID)
		if !ok {
			return ErrLineItemNotFound
		}
		if current.Status != models.AwardedItem {
			return models.StateError("line item %s is not awarded", lineItemID)
		}
		d, err := snap.Determine(lineItemID)
		if err != nil {
			return resolverError(err)
		}
		if d == nil || d.SupplierID != supplierID {
			return models.StateError("supplier %s does not win line item %s", supplierID, lineItemID)
		}
		return fn(st)
	})
}

// CreateStockOrder создаёт заказ со склада поставщика.
func (s *FulfillmentService) CreateStockOrder(ctx context.Context, req models.StockOrderRequest) (*models.StockOrder, error) {
	req.ProductName = strings.TrimSpace(req.ProductName)
	if req.SupplierID == "" || req.BuyerID == "" || req.ProductName == "" {
		return nil, models.ValidationError("missing required fields: supplierId, buyerId, productName")
	}
	if req.Quantity <= 0 {
		return nil, models.ValidationError("quantity must be positive")
	}
	if !req.UnitPrice.IsPositive() {
		return nil, models.ValidationError("unitPrice must be positive")
	}

	order := &models.StockOrder{
		ID:          s.NewID(),
		SupplierID:  req.SupplierID,
		BuyerID:     req.BuyerID,
		ProductName: req.ProductName,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice.Round(2),
		CreatedAt:   s.Now(),
	}
	if err := s.Store.Fulfillment.CreateStockOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateStockOrder сохраняет трек-номер и (или) ключ квитанции заказа.
func (s *FulfillmentService) UpdateStockOrder(ctx context.Context, orderID string, upd models.StockOrderUpdate) (*models.StockOrder, error) {
	if !utils.ValidID(orderID) {
		return nil, ErrStockOrderNotFound
	}
	tracking := strings.TrimSpace(upd.TrackingNumber)
	receipt := strings.TrimSpace(upd.ReceiptObjectKey)
	if tracking == "" && receipt == "" {
		return nil, models.ValidationError("trackingNumber or receiptObjectKey is required")
	}

	var order *models.StockOrder
	err := s.Store.Tx.WithTx(ctx, func(tx pgx.Tx) error {
		st := s.Store.WithTx(tx)
		if tracking != "" {
			if err := st.Fulfillment.UpdateStockOrderTracking(ctx, orderID, tracking); err != nil {
				return err
			}
		}
		if receipt != "" {
			if err := st.Fulfillment.UpdateStockOrderReceipt(ctx, orderID, receipt); err != nil {
				return err
			}
		}
		var err error
		order, err = st.Fulfillment.GetStockOrder(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, notFound(err, ErrStockOrderNotFound)
	}
	return order, nil
}
