package services

import (
	"context"
	"sort"
	"time"

	"github.com/senyabanana/rfq-service/internal/models"
	"github.com/senyabanana/rfq-service/internal/repository"
	"github.com/senyabanana/rfq-service/internal/resolver"
	"github.com/senyabanana/rfq-service/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReportService строит финансовые отчёты. Победители каждый раз выводятся
// заново той же функцией, что и при оценке, поэтому отчёт всегда совпадает
// с текущими решениями.
type ReportService struct {
	Options
	Receipts   storage.URLResolver
	ReceiptTTL time.Duration
}

// NewReportService создаёт новый экземпляр ReportService.
func NewReportService(opts Options, receipts storage.URLResolver, receiptTTL time.Duration) *ReportService {
	return &ReportService{Options: opts.withDefaults(), Receipts: receipts, ReceiptTTL: receiptTTL}
}

// reportData - данные отчёта, прочитанные в одной транзакции.
type reportData struct {
	snaps       []*resolver.Snapshot
	lines       []models.WonItemLine
	lineReceipt []string
	stock       []models.StockOrder
}

type fulfillmentKey struct {
	lineItemID string
	supplierID string
}

// gather читает RFQ, выбранные list, и складские заказы по фильтру в одной
// читающей транзакции с повторяемым чтением.
func (s *ReportService) gather(ctx context.Context,
	list func(st *repository.Store) ([]models.Solicitation, error),
	stockSupplier, stockBuyer string) (*reportData, error) {
	data := &reportData{}
	err := s.Store.Tx.WithReadTx(ctx, func(tx pgx.Tx) error {
		st := s.Store.WithTx(tx)
		sols, err := list(st)
		if err != nil {
			return err
		}
		data.snaps, err = st.Snapshots().LoadMany(ctx, sols)
		if err != nil {
			return err
		}

		var lineIDs []string
		for _, snap := range data.snaps {
			for _, line := range s.wonLines(snap) {
				data.lines = append(data.lines, line)
				lineIDs = append(lineIDs, line.LineItemID)
			}
		}

		shipments, err := st.Fulfillment.ListShipments(ctx, lineIDs)
		if err != nil {
			return err
		}
		settlements, err := st.Fulfillment.ListSettlements(ctx, lineIDs)
		if err != nil {
			return err
		}
		tracking := make(map[fulfillmentKey]string, len(shipments))
		for _, sh := range shipments {
			tracking[fulfillmentKey{sh.LineItemID, sh.SupplierID}] = sh.TrackingNumber
		}
		receipts := make(map[fulfillmentKey]string, len(settlements))
		for _, se := range settlements {
			receipts[fulfillmentKey{se.LineItemID, se.SupplierID}] = se.ReceiptObjectKey
		}

		data.lineReceipt = make([]string, len(data.lines))
		for i := range data.lines {
			line := &data.lines[i]
			key := fulfillmentKey{line.LineItemID, line.SupplierID}
			var trackingNumber, receiptKey *string
			if t, ok := tracking[key]; ok {
				trackingNumber = &t
				line.TrackingNumber = &t
			}
			if r, ok := receipts[key]; ok {
				receiptKey = &r
				data.lineReceipt[i] = r
			}
			line.PaymentStatus = models.DerivePaymentStatus(trackingNumber, receiptKey)
		}

		data.stock, err = st.Fulfillment.ListStockOrders(ctx, stockSupplier, stockBuyer)
		return err
	})
	if err != nil {
		return nil, err
	}

	for i := range data.lines {
		data.lines[i].ReceiptURL = s.receiptURL(ctx, data.lineReceipt[i])
	}
	return data, nil
}

// wonLines возвращает строки по всем позициям RFQ, у которых есть победитель.
func (s *ReportService) wonLines(snap *resolver.Snapshot) []models.WonItemLine {
	decisions, failures := snap.Winners()
	for lineID, err := range failures {
		s.Log.Warn("report skipped line item without winner",
			zap.String("solicitation_id", snap.Solicitation.ID),
			zap.String("line_item_id", lineID),
			zap.Error(err),
		)
	}

	var lines []models.WonItemLine
	for _, item := range snap.Items {
		d, ok := decisions[item.ID]
		if !ok {
			continue
		}
		lines = append(lines, models.WonItemLine{
			SolicitationID:    snap.Solicitation.ID,
			SolicitationTitle: snap.Solicitation.Title,
			LineItemID:        item.ID,
			ProductName:       item.ProductName,
			SupplierID:        d.SupplierID,
			QuoteID:           d.QuoteID,
			QuoteItemID:       d.QuoteItemID,
			Quantity:          item.Quantity,
			UnitPrice:         d.UnitPrice,
			Total:             resolver.LineTotal(d.UnitPrice, item.Quantity),
		})
	}
	return lines
}

func (s *ReportService) receiptURL(ctx context.Context, key string) string {
	if key == "" || s.Receipts == nil {
		return ""
	}
	link, err := s.Receipts.ResolveURL(ctx, key, s.ReceiptTTL)
	if err != nil {
		s.Log.Warn("receipt url resolution failed", zap.String("key", key), zap.Error(err))
		return ""
	}
	return link
}

func (s *ReportService) stockLines(ctx context.Context, orders []models.StockOrder) ([]models.StockOrderLine, models.MoneyBreakdown) {
	lines := make([]models.StockOrderLine, 0, len(orders))
	total := zeroBreakdown()
	for _, o := range orders {
		status := models.DerivePaymentStatus(o.TrackingNumber, o.ReceiptObjectKey)
		line := models.StockOrderLine{StockOrder: o, Total: o.Total(), PaymentStatus: status}
		if o.ReceiptObjectKey != nil {
			line.ReceiptURL = s.receiptURL(ctx, *o.ReceiptObjectKey)
		}
		total.Add(status, line.Total)
		lines = append(lines, line)
	}
	return lines, total
}

// SupplierDashboard - выигранные позиции и складские заказы поставщика с
// разбивкой дохода по статусам оплаты.
func (s *ReportService) SupplierDashboard(ctx context.Context, supplierID string) (*models.SupplierDashboard, error) {
	if supplierID == "" {
		return nil, models.ValidationError("missing required parameter: supplierId")
	}
	data, err := s.gather(ctx, func(st *repository.Store) ([]models.Solicitation, error) {
		return st.Reports.SolicitationsForSupplier(ctx, supplierID)
	}, supplierID, "")
	if err != nil {
		return nil, err
	}

	dashboards := s.dashboards(ctx, data)
	if d, ok := dashboards[supplierID]; ok {
		return d, nil
	}
	return s.emptyDashboard(supplierID), nil
}

// AllSuppliersDashboard - сводки по всем поставщикам, упорядоченные по идентификатору.
func (s *ReportService) AllSuppliersDashboard(ctx context.Context) ([]models.SupplierDashboard, error) {
	data, err := s.gather(ctx, func(st *repository.Store) ([]models.Solicitation, error) {
		return st.Reports.EvaluatedSolicitations(ctx)
	}, "", "")
	if err != nil {
		return nil, err
	}

	dashboards := s.dashboards(ctx, data)
	ids := make([]string, 0, len(dashboards))
	for id := range dashboards {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]models.SupplierDashboard, 0, len(ids))
	for _, id := range ids {
		out = append(out, *dashboards[id])
	}
	return out, nil
}

func (s *ReportService) emptyDashboard(supplierID string) *models.SupplierDashboard {
	return &models.SupplierDashboard{
		SupplierID:  supplierID,
		WonItems:    []models.WonItemLine{},
		StockOrders: []models.StockOrderLine{},
		RFQIncome:   zeroBreakdown(),
		StockIncome: zeroBreakdown(),
		GeneratedAt: s.Now(),
	}
}

func (s *ReportService) dashboards(ctx context.Context, data *reportData) map[string]*models.SupplierDashboard {
	out := make(map[string]*models.SupplierDashboard)
	get := func(id string) *models.SupplierDashboard {
		d, ok := out[id]
		if !ok {
			d = s.emptyDashboard(id)
			out[id] = d
		}
		return d
	}

	for _, line := range data.lines {
		d := get(line.SupplierID)
		d.WonItems = append(d.WonItems, line)
		d.RFQIncome.Add(line.PaymentStatus, line.Total)
	}

	bySupplier := make(map[string][]models.StockOrder)
	for _, o := range data.stock {
		bySupplier[o.SupplierID] = append(bySupplier[o.SupplierID], o)
	}
	for supplierID, orders := range bySupplier {
		d := get(supplierID)
		d.StockOrders, d.StockIncome = s.stockLines(ctx, orders)
	}
	return out
}

// BuyerFinancialReport - бюджет, расходы и экономия покупателя по его RFQ и
// складским заказам.
func (s *ReportService) BuyerFinancialReport(ctx context.Context, ownerID string) (*models.BuyerFinancialReport, error) {
	if ownerID == "" {
		return nil, models.ValidationError("missing required parameter: ownerId")
	}
	data, err := s.gather(ctx, func(st *repository.Store) ([]models.Solicitation, error) {
		return st.Reports.SolicitationsForOwner(ctx, ownerID)
	}, "", ownerID)
	if err != nil {
		return nil, err
	}

	report := &models.BuyerFinancialReport{
		OwnerID:       ownerID,
		Solicitations: []models.SolicitationFinancials{},
		RFQSpend:      zeroBreakdown(),
		TotalBudget:   decimal.Zero,
		TotalSavings:  decimal.Zero,
		GeneratedAt:   s.Now(),
	}

	linesBySolicitation := make(map[string][]models.WonItemLine)
	for _, line := range data.lines {
		linesBySolicitation[line.SolicitationID] = append(linesBySolicitation[line.SolicitationID], line)
	}

	for _, snap := range data.snaps {
		fin := models.SolicitationFinancials{
			SolicitationID: snap.Solicitation.ID,
			Title:          snap.Solicitation.Title,
			Status:         snap.Solicitation.Status,
			Budget:         decimal.Zero,
			Spend:          zeroBreakdown(),
			Savings:        decimal.Zero,
			Lines:          []models.WonItemLine{},
		}
		ceilings := make(map[string]decimal.Decimal, len(snap.Items))
		for _, item := range snap.Items {
			ceilings[item.ID] = item.CeilingPrice
			if item.Status == models.CanceledItem || item.Status == models.OutOfStockItem {
				continue
			}
			fin.Budget = fin.Budget.Add(resolver.LineTotal(item.CeilingPrice, item.Quantity))
			if item.Status != models.AwardedItem {
				fin.UnawardedItems++
			}
		}
		for _, line := range linesBySolicitation[snap.Solicitation.ID] {
			fin.Lines = append(fin.Lines, line)
			fin.Spend.Add(line.PaymentStatus, line.Total)
			saving := resolver.LineTotal(ceilings[line.LineItemID].Sub(line.UnitPrice), line.Quantity)
			fin.Savings = fin.Savings.Add(saving)
		}

		report.TotalBudget = report.TotalBudget.Add(fin.Budget)
		report.TotalSavings = report.TotalSavings.Add(fin.Savings)
		report.RFQSpend.Total = report.RFQSpend.Total.Add(fin.Spend.Total)
		report.RFQSpend.NotYetShipped = report.RFQSpend.NotYetShipped.Add(fin.Spend.NotYetShipped)
		report.RFQSpend.PendingPayment = report.RFQSpend.PendingPayment.Add(fin.Spend.PendingPayment)
		report.RFQSpend.Paid = report.RFQSpend.Paid.Add(fin.Spend.Paid)
		report.Solicitations = append(report.Solicitations, fin)
	}

	report.StockOrders, report.StockSpend = s.stockLines(ctx, data.stock)
	return report, nil
}

func zeroBreakdown() models.MoneyBreakdown {
	return models.MoneyBreakdown{
		Total:          decimal.Zero,
		NotYetShipped:  decimal.Zero,
		PendingPayment: decimal.Zero,
		Paid:           decimal.Zero,
	}
}
