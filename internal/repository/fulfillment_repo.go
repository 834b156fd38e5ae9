package repository

import (
	"context"
	"fmt"

	"github.com/senyabanana/rfq-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
)

// FulfillmentRepository - отгрузки, расчёты и складские заказы.
type FulfillmentRepository interface {
	WithTx(tx pgx.Tx) FulfillmentRepository
	UpsertShipment(ctx context.Context, s *models.Shipment) error
	UpsertSettlement(ctx context.Context, s *models.Settlement) error
	ListShipments(ctx context.Context, lineItemIDs []string) ([]models.Shipment, error)
	ListSettlements(ctx context.Context, lineItemIDs []string) ([]models.Settlement, error)
	CreateStockOrder(ctx context.Context, o *models.StockOrder) error
	GetStockOrder(ctx context.Context, id string) (*models.StockOrder, error)
	UpdateStockOrderTracking(ctx context.Context, id, trackingNumber string) error
	UpdateStockOrderReceipt(ctx context.Context, id, receiptKey string) error
	ListStockOrders(ctx context.Context, supplierID, buyerID string) ([]models.StockOrder, error)
}

// PostgresFulfillmentRepository - реализация FulfillmentRepository для базы данных.
type PostgresFulfillmentRepository struct {
	DB Querier
}

// NewPostgresFulfillmentRepository создаёт новый экземпляр PostgresFulfillmentRepository.
func NewPostgresFulfillmentRepository(db Querier) *PostgresFulfillmentRepository {
	return &PostgresFulfillmentRepository{DB: db}
}

// WithTx возвращает репозиторий, работающий внутри транзакции.
func (r *PostgresFulfillmentRepository) WithTx(tx pgx.Tx) FulfillmentRepository {
	return &PostgresFulfillmentRepository{DB: tx}
}

// UpsertShipment сохраняет отгрузку; повторная отгрузка позиции заменяет трек-номер.
func (r *PostgresFulfillmentRepository) UpsertShipment(ctx context.Context, s *models.Shipment) error {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO shipment (id, line_item_id, supplier_id, carrier, tracking_number, shipped_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (line_item_id, supplier_id)
		DO UPDATE SET carrier = EXCLUDED.carrier, tracking_number = EXCLUDED.tracking_number, shipped_at = EXCLUDED.shipped_at
		RETURNING id`,
		s.ID, s.LineItemID, s.SupplierID, s.Carrier, s.TrackingNumber, s.ShippedAt).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("failed to save shipment: %w", err)
	}
	return nil
}

// UpsertSettlement сохраняет расчёт по позиции.
func (r *PostgresFulfillmentRepository) UpsertSettlement(ctx context.Context, s *models.Settlement) error {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO settlement (id, line_item_id, supplier_id, amount, receipt_object_key, settled_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (line_item_id, supplier_id)
		DO UPDATE SET amount = EXCLUDED.amount, receipt_object_key = EXCLUDED.receipt_object_key, settled_at = EXCLUDED.settled_at
		RETURNING id`,
		s.ID, s.LineItemID, s.SupplierID, s.Amount, s.ReceiptObjectKey, s.SettledAt).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("failed to save settlement: %w", err)
	}
	return nil
}

// ListShipments возвращает отгрузки по позициям.
func (r *PostgresFulfillmentRepository) ListShipments(ctx context.Context, lineItemIDs []string) ([]models.Shipment, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, line_item_id, supplier_id, carrier, tracking_number, shipped_at
		FROM shipment WHERE line_item_id = ANY($1::text[]::uuid[])`, pq.Array(lineItemIDs))
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	defer rows.Close()

	var shipments []models.Shipment
	for rows.Next() {
		var s models.Shipment
		if err := rows.Scan(&s.ID, &s.LineItemID, &s.SupplierID, &s.Carrier, &s.TrackingNumber, &s.ShippedAt); err != nil {
			return nil, err
		}
		shipments = append(shipments, s)
	}
	return shipments, rows.Err()
}

// ListSettlements возвращает расчёты по позициям.
func (r *PostgresFulfillmentRepository) ListSettlements(ctx context.Context, lineItemIDs []string) ([]models.Settlement, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, line_item_id, supplier_id, amount, receipt_object_key, settled_at
		FROM settlement WHERE line_item_id = ANY($1::text[]::uuid[])`, pq.Array(lineItemIDs))
	if err != nil {
		return nil, fmt.Errorf("list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []models.Settlement
	for rows.Next() {
		var s models.Settlement
		if err := rows.Scan(&s.ID, &s.LineItemID, &s.SupplierID, &s.Amount, &s.ReceiptObjectKey, &s.SettledAt); err != nil {
			return nil, err
		}
		settlements = append(settlements, s)
	}
	return settlements, rows.Err()
}

// CreateStockOrder создаёт складской заказ.
func (r *PostgresFulfillmentRepository) CreateStockOrder(ctx context.Context, o *models.StockOrder) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO stock_order (id, supplier_id, buyer_id, product_name, quantity, unit_price, tracking_number, receipt_object_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.ID, o.SupplierID, o.BuyerID, o.ProductName, o.Quantity, o.UnitPrice, o.TrackingNumber, o.ReceiptObjectKey, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert stock order: %w", err)
	}
	return nil
}

// GetStockOrder возвращает складской заказ.
func (r *PostgresFulfillmentRepository) GetStockOrder(ctx context.Context, id string) (*models.StockOrder, error) {
	var o models.StockOrder
	err := r.DB.QueryRow(ctx, `
		SELECT id, supplier_id, buyer_id, product_name, quantity, unit_price, tracking_number, receipt_object_key, created_at
		FROM stock_order WHERE id = $1`, id).Scan(
		&o.ID, &o.SupplierID, &o.BuyerID, &o.ProductName, &o.Quantity, &o.UnitPrice, &o.TrackingNumber, &o.ReceiptObjectKey, &o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get stock order %s: %w", id, err)
	}
	return &o, nil
}

// UpdateStockOrderTracking сохраняет трек-номер складского заказа.
func (r *PostgresFulfillmentRepository) UpdateStockOrderTracking(ctx context.Context, id, trackingNumber string) error {
	return r.updateStockOrder(ctx, `UPDATE stock_order SET tracking_number = $1 WHERE id = $2`, trackingNumber, id)
}

// UpdateStockOrderReceipt сохраняет ключ квитанции складского заказа.
func (r *PostgresFulfillmentRepository) UpdateStockOrderReceipt(ctx context.Context, id, receiptKey string) error {
	return r.updateStockOrder(ctx, `UPDATE stock_order SET receipt_object_key = $1 WHERE id = $2`, receiptKey, id)
}

func (r *PostgresFulfillmentRepository) updateStockOrder(ctx context.Context, query, value, id string) error {
	tag, err := r.DB.Exec(ctx, query, value, id)
	if err != nil {
		return fmt.Errorf("update stock order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update stock order %s: %w", id, pgx.ErrNoRows)
	}
	return nil
}

// ListStockOrders возвращает складские заказы поставщика или покупателя.
// Пустой фильтр не ограничивает выборку.
func (r *PostgresFulfillmentRepository) ListStockOrders(ctx context.Context, supplierID, buyerID string) ([]models.StockOrder, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, supplier_id, buyer_id, product_name, quantity, unit_price, tracking_number, receipt_object_key, created_at
		FROM stock_order
		WHERE ($1 = '' OR supplier_id = $1) AND ($2 = '' OR buyer_id = $2)
		ORDER BY created_at, id`, supplierID, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list stock orders: %w", err)
	}
	defer rows.Close()

	orders := []models.StockOrder{}
	for rows.Next() {
		var o models.StockOrder
		if err := rows.Scan(&o.ID, &o.SupplierID, &o.BuyerID, &o.ProductName, &o.Quantity, &o.UnitPrice, &o.TrackingNumber, &o.ReceiptObjectKey, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
