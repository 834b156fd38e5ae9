package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/senyabanana/rfq-service/internal/audit"
	"github.com/senyabanana/rfq-service/internal/models"
	"github.com/senyabanana/rfq-service/internal/notify"
	"github.com/senyabanana/rfq-service/internal/resolver"
	"github.com/senyabanana/rfq-service/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture - опубликованный RFQ с котировками двух поставщиков.
//
//	l1: 10 шт, потолок 20;            x=10, y=12
//	l2:  5 шт, потолок 30, мгновенная 24; x=25, y=24
//	l3:  2 шт, потолок 150;           x=100, y=110
type fixture struct {
	sol        *models.Solicitation
	owner      string
	x, y       string
	l1, l2, l3 models.LineItem
	qx, qy     *models.Quote
}

func (f *fixture) quoteItem(q *models.Quote, line models.LineItem) models.QuoteItem {
	for _, qi := range q.Items {
		if qi.LineItemID == line.ID {
			return qi
		}
	}
	panic("quote item not found")
}

func publishFixture(t *testing.T, e *env) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{owner: unique("buyer"), x: unique("sup-x"), y: unique("sup-y")}

	sol, err := e.solicitations.CreateSolicitation(ctx, models.SolicitationRequest{
		Title:    "Office supplies",
		OwnerID:  f.owner,
		Deadline: e.clock.Now().Add(time.Hour),
		Items: []models.LineItemDraft{
			{ProductName: "Paper", Quantity: 10, Unit: "box", CeilingPrice: moneyPtr("20")},
			{ProductName: "Toner", Quantity: 5, Unit: "pcs", CeilingPrice: moneyPtr("30"), InstantPrice: moneyPtr("24")},
		},
	})
	require.NoError(t, err)
	require.Equal(t, models.DraftSolicitation, sol.Status)

	added, err := e.solicitations.AddLineItems(ctx, sol.ID, []models.LineItemDraft{
		{ProductName: "Chair", Quantity: 2, Unit: "pcs", CeilingPrice: moneyPtr("150")},
	})
	require.NoError(t, err)
	require.Len(t, added, 1)

	_, err = e.solicitations.Publish(ctx, sol.ID, f.owner)
	require.NoError(t, err)

	sol, err = e.solicitations.GetSolicitation(ctx, sol.ID)
	require.NoError(t, err)
	require.Len(t, sol.Items, 3)
	for _, item := range sol.Items {
		switch item.ProductName {
		case "Paper":
			f.l1 = item
		case "Toner":
			f.l2 = item
		case "Chair":
			f.l3 = item
		}
	}
	f.sol = sol

	f.qx, err = e.quotes.SubmitQuote(ctx, sol.ID, models.QuoteRequest{SupplierID: f.x, Items: []models.QuoteItemRequest{
		{LineItemID: f.l1.ID, UnitPrice: money("10")},
		{LineItemID: f.l2.ID, UnitPrice: money("25")},
		{LineItemID: f.l3.ID, UnitPrice: money("100")},
	}})
	require.NoError(t, err)

	e.clock.Advance(time.Minute)
	f.qy, err = e.quotes.SubmitQuote(ctx, sol.ID, models.QuoteRequest{SupplierID: f.y, Items: []models.QuoteItemRequest{
		{LineItemID: f.l1.ID, UnitPrice: money("12")},
		{LineItemID: f.l2.ID, UnitPrice: money("24")},
		{LineItemID: f.l3.ID, UnitPrice: money("110")},
	}})
	require.NoError(t, err)
	return f
}

func statusCode(t *testing.T, err error) int {
	t.Helper()
	var resp *models.ErrorResponse
	require.True(t, errors.As(err, &resp), "unexpected error type: %v", err)
	return resp.StatusCode
}

func activeAward(t *testing.T, awards []models.Award, supplierID string) models.Award {
	t.Helper()
	for _, a := range awards {
		if a.SupplierID == supplierID && a.Status == models.ActiveAward {
			return a
		}
	}
	t.Fatalf("no active award for %s", supplierID)
	return models.Award{}
}

func (e *env) checkInvariants(t *testing.T, solicitationID string) *resolver.Snapshot {
	t.Helper()
	snap, err := e.opts.withDefaults().loadSnapshot(context.Background(), solicitationID)
	require.NoError(t, err)
	require.NoError(t, resolver.CheckInvariants(snap))
	return snap
}

func TestCloseEvaluatesAllItems(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	f := publishFixture(t, e)

	result, err := e.solicitations.Close(ctx, f.sol.ID, f.owner)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Evaluated)
	assert.Zero(t, result.Failed)
	assert.Empty(t, result.Unquoted)
	assert.Equal(t, models.AwardedSolicitation, result.Status)

	winners, err := e.awards.Winners(ctx, f.sol.ID)
	require.NoError(t, err)
	require.Len(t, winners, 3)
	byLine := make(map[string]models.Winner)
	for _, w := range winners {
		byLine[w.LineItemID] = w
	}
	assert.Equal(t, f.x, byLine[f.l1.ID].SupplierID)
	assert.Equal(t, f.y, byLine[f.l2.ID].SupplierID, "instant price wins over the lower earlier price")
	assert.Equal(t, f.x, byLine[f.l3.ID].SupplierID)

	awards, err := e.awards.ListAwards(ctx, f.sol.ID)
	require.NoError(t, err)
	assert.True(t, money("300").Equal(activeAward(t, awards, f.x).FinalPrice))
	assert.True(t, money("120").Equal(activeAward(t, awards, f.y).FinalPrice))

	qx, err := e.quotes.GetQuote(ctx, f.qx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AwardedQuote, qx.Status)
	assert.True(t, money("300").Equal(qx.Price))

	e.checkInvariants(t, f.sol.ID)

	won := e.events.find(notify.AwardWon, f.sol.ID)
	assert.Len(t, won, 2)

	var evaluations int
	require.NoError(t, pgPool.QueryRow(ctx,
		`SELECT count(*) FROM audit_log WHERE resource_id = $1 AND action = $2`,
		f.sol.ID, audit.ActionEvaluate).Scan(&evaluations))
	assert.Equal(t, 1, evaluations)

	again, err := e.evaluator.Evaluate(ctx, f.sol.ID, f.owner)
	require.Error(t, err, "an AWARDED solicitation is not evaluated again")
	assert.Nil(t, again)
	assert.Equal(t, http.StatusConflict, statusCode(t, err))
}

func TestManualOverrideMovesItem(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	f := publishFixture(t, e)

	_, err := e.solicitations.Close(ctx, f.sol.ID, f.owner)
	require.NoError(t, err)

	yPaper := f.quoteItem(f.qy, f.l1)
	outcome, err := e.awards.AwardItem(ctx, f.sol.ID, f.l1.ID, models.AwardItemRequest{
		QuoteID:     f.qy.ID,
		QuoteItemID: yPaper.ID,
		Reason:      "faster delivery",
		ActorID:     f.owner,
	})
	require.NoError(t, err)
	assert.Equal(t, f.y, outcome.Winner.SupplierID)
	assert.Equal(t, string(resolver.RuleManual), outcome.Winner.Rule)
	assert.Equal(t, []string{f.x}, outcome.Superseded)
	assert.True(t, money("240").Equal(outcome.Award.FinalPrice))

	awards, err := e.awards.ListAwards(ctx, f.sol.ID)
	require.NoError(t, err)
	xAward := activeAward(t, awards, f.x)
	assert.True(t, money("200").Equal(xAward.FinalPrice))
	assert.True(t, resolver.IsRemoved(xAward.Reason, f.l1.ID))

	revoked := e.events.find(notify.AwardRevoked, f.sol.ID)
	require.Len(t, revoked, 1)
	assert.Equal(t, f.x, revoked[0].Recipient.SupplierID)

	qx, err := e.quotes.GetQuote(ctx, f.qx.ID)
	require.NoError(t, err)
	assert.True(t, money("200").Equal(qx.Price))
	qy, err := e.quotes.GetQuote(ctx, f.qy.ID)
	require.NoError(t, err)
	assert.True(t, money("240").Equal(qy.Price))

	e.checkInvariants(t, f.sol.ID)

	// Повтор того же назначения ничего не меняет.
	second, err := e.awards.AwardItem(ctx, f.sol.ID, f.l1.ID, models.AwardItemRequest{
		QuoteID: f.qy.ID, QuoteItemID: yPaper.ID, Reason: "faster delivery", ActorID: f.owner,
	})
	require.NoError(t, err)
	assert.Empty(t, second.Superseded)
	assert.True(t, money("240").Equal(second.Award.FinalPrice))

	// Перенос на исходного поставщика.
	xPaper := f.quoteItem(f.qx, f.l1)
	back, err := e.awards.AwardItem(ctx, f.sol.ID, f.l1.ID, models.AwardItemRequest{
		QuoteID: f.qx.ID, QuoteItemID: xPaper.ID, ActorID: f.owner,
	})
	require.NoError(t, err)
	assert.Equal(t, f.x, back.Winner.SupplierID)
	assert.True(t, money("300").Equal(back.Award.FinalPrice))
	e.checkInvariants(t, f.sol.ID)
}

func TestManualOverrideValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	f := publishFixture(t, e)

	yPaper := f.quoteItem(f.qy, f.l1)
	_, err := e.awards.AwardItem(ctx, f.sol.ID, f.l1.ID, models.AwardItemRequest{QuoteID: f.qy.ID, QuoteItemID: yPaper.ID})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, statusCode(t, err), "overrides require a closed solicitation")

	_, err = e.solicitations.Close(ctx, f.sol.ID, f.owner)
	require.NoError(t, err)

	_, err = e.awards.AwardItem(ctx, f.sol.ID, f.l2.ID, models.AwardItemRequest{QuoteID: f.qy.ID, QuoteItemID: yPaper.ID})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusCode(t, err), "quote item belongs to another line item")

	_, err = e.awards.AwardItem(ctx, f.sol.ID, f.l1.ID, models.AwardItemRequest{QuoteID: f.qx.ID, QuoteItemID: yPaper.ID})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusCode(t, err), "quote item belongs to another quote")

	_, err = e.awards.AwardItem(ctx, f.sol.ID, f.l1.ID, models.AwardItemRequest{QuoteID: "bad", QuoteItemID: yPaper.ID})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusCode(t, err))

	// Неудачные попытки не оставили следов.
	awards, err := e.awards.ListAwards(ctx, f.sol.ID)
	require.NoError(t, err)
	assert.True(t, money("300").Equal(activeAward(t, awards, f.x).FinalPrice))
	e.checkInvariants(t, f.sol.ID)
}

func TestConcurrentOverridesStayConsistent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	f := publishFixture(t, e)

	_, err := e.solicitations.Close(ctx, f.sol.ID, f.owner)
	require.NoError(t, err)

	requests := []models.AwardItemRequest{
		{QuoteID: f.qy.ID, QuoteItemID: f.quoteItem(f.qy, f.l1).ID, Reason: "y paper"},
		{QuoteID: f.qx.ID, QuoteItemID: f.quoteItem(f.qx, f.l2).ID, Reason: "x toner"},
	}
	lines := []string{f.l1.ID, f.l2.ID}

	var wg sync.WaitGroup
	errs := make([]error, len(requests))
	for i := range requests {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.awards.AwardItem(ctx, f.sol.ID, lines[i], requests[i])
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	snap := e.checkInvariants(t, f.sol.ID)
	winners, failures := snap.Winners()
	require.Empty(t, failures)
	assert.Equal(t, f.y, winners[f.l1.ID].SupplierID)
	assert.Equal(t, f.x, winners[f.l2.ID].SupplierID)
	assert.Equal(t, f.x, winners[f.l3.ID].SupplierID)
}

func TestRejectedQuoteIsIgnored(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	f := publishFixture(t, e)

	rejected, err := e.quotes.RejectQuote(ctx, f.qy.ID, f.owner, "late documents")
	require.NoError(t, err)
	assert.Equal(t, models.RejectedQuote, rejected.Status)

	_, err = e.solicitations.Close(ctx, f.sol.ID, f.owner)
	require.NoError(t, err)

	winners, err := e.awards.Winners(ctx, f.sol.ID)
	require.NoError(t, err)
	for _, w := range winners {
		assert.Equal(t, f.x, w.SupplierID)
	}

	qy, err := e.quotes.GetQuote(ctx, f.qy.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RejectedQuote, qy.Status)

	_, err = e.awards.AwardItem(ctx, f.sol.ID, f.l1.ID, models.AwardItemRequest{
		QuoteID: f.qy.ID, QuoteItemID: f.quoteItem(f.qy, f.l1).ID,
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, statusCode(t, err))
}

func TestUnquotedItemsKeepSolicitationClosed(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := unique("buyer")

	sol, err := e.solicitations.CreateSolicitation(ctx, models.SolicitationRequest{
		Title:    "Spare parts",
		OwnerID:  owner,
		Deadline: e.clock.Now().Add(time.Hour),
		Items: []models.LineItemDraft{
			{ProductName: "Bolt", Quantity: 100, CeilingPrice: moneyPtr("1.50")},
			{ProductName: "Nut", Quantity: 100, CeilingPrice: moneyPtr("0.80")},
		},
	})
	require.NoError(t, err)
	_, err = e.solicitations.Publish(ctx, sol.ID, owner)
	require.NoError(t, err)

	bolt, nut := sol.Items[0], sol.Items[1]
	_, err = e.quotes.SubmitQuote(ctx, sol.ID, models.QuoteRequest{SupplierID: unique("sup"), Items: []models.QuoteItemRequest{
		{LineItemID: bolt.ID, UnitPrice: money("1.20")},
	}})
	require.NoError(t, err)

	result, err := e.solicitations.Close(ctx, sol.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Evaluated)
	assert.Equal(t, []string{nut.ID}, result.Unquoted)
	assert.Equal(t, models.ClosedSolicitation, result.Status)
	unquoted := e.events.find(notify.UnquotedItems, sol.ID)
	require.Len(t, unquoted, 1)
	assert.Equal(t, notify.OperatorRole, unquoted[0].Recipient.Role)

	_, err = e.solicitations.SetItemStatus(ctx, sol.ID, bolt.ID, models.CanceledItem, owner)
	require.Error(t, err, "awarded items cannot be withdrawn")
	assert.Equal(t, http.StatusConflict, statusCode(t, err))

	item, err := e.solicitations.SetItemStatus(ctx, sol.ID, nut.ID, models.OutOfStockItem, owner)
	require.NoError(t, err)
	assert.Equal(t, models.OutOfStockItem, item.Status)

	got, err := e.solicitations.GetSolicitation(ctx, sol.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AwardedSolicitation, got.Status)
}

func TestQuoteSubmissionRules(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	f := publishFixture(t, e)

	_, err := e.quotes.SubmitQuote(ctx, f.sol.ID, models.QuoteRequest{SupplierID: unique("sup"), Items: []models.QuoteItemRequest{
		{LineItemID: f.l1.ID, UnitPrice: money("21")},
	}})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusCode(t, err), "price above ceiling")

	_, err = e.quotes.SubmitQuote(ctx, f.sol.ID, models.QuoteRequest{SupplierID: unique("sup"), Items: []models.QuoteItemRequest{
		{LineItemID: f.l1.ID, UnitPrice: money("0")},
	}})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusCode(t, err), "non-positive price")

	_, err = e.quotes.SubmitQuote(ctx, f.sol.ID, models.QuoteRequest{SupplierID: unique("sup"), Items: []models.QuoteItemRequest{
		{LineItemID: f.l1.ID, UnitPrice: money("9")},
		{LineItemID: f.l1.ID, UnitPrice: money("8")},
	}})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusCode(t, err), "duplicate line item")

	e.clock.Advance(2 * time.Hour)
	_, err = e.quotes.SubmitQuote(ctx, f.sol.ID, models.QuoteRequest{SupplierID: unique("sup"), Items: []models.QuoteItemRequest{
		{LineItemID: f.l1.ID, UnitPrice: money("9")},
	}})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, statusCode(t, err), "deadline passed")

	quotes, err := e.quotes.ListQuotes(ctx, f.sol.ID)
	require.NoError(t, err)
	assert.Len(t, quotes, 2)
}

func TestSchedulerClosesDueSolicitations(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	f := publishFixture(t, e)

	scheduler := NewScheduler(e.solicitations, e.evaluator, time.Minute, e.opts.withDefaults().Log)
	require.NoError(t, scheduler.CloseDue(ctx))
	got, err := e.solicitations.GetSolicitation(ctx, f.sol.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PublishedSolicitation, got.Status, "deadline not reached yet")

	e.clock.Advance(2 * time.Hour)
	require.NoError(t, scheduler.CloseDue(ctx))
	got, err = e.solicitations.GetSolicitation(ctx, f.sol.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AwardedSolicitation, got.Status)
	e.checkInvariants(t, f.sol.ID)
}

func TestSchedulerRetriesUnevaluatedSolicitations(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := unique("buyer")

	sol, err := e.solicitations.CreateSolicitation(ctx, models.SolicitationRequest{
		Title:    "Cables",
		OwnerID:  owner,
		Deadline: e.clock.Now().Add(time.Hour),
		Items: []models.LineItemDraft{
			{ProductName: "HDMI", Quantity: 4, CeilingPrice: moneyPtr("9.00")},
			{ProductName: "VGA", Quantity: 2, CeilingPrice: moneyPtr("5.00")},
		},
	})
	require.NoError(t, err)
	_, err = e.solicitations.Publish(ctx, sol.ID, owner)
	require.NoError(t, err)
	_, err = e.quotes.SubmitQuote(ctx, sol.ID, models.QuoteRequest{SupplierID: unique("sup"), Items: []models.QuoteItemRequest{
		{LineItemID: sol.Items[0].ID, UnitPrice: money("7.50")},
	}})
	require.NoError(t, err)

	// Закрытие зафиксировано, а оценка - нет.
	require.NoError(t, e.opts.Store.Solicitations.UpdateSolicitationStatus(ctx, sol.ID, models.ClosedSolicitation, e.clock.Now()))

	scheduler := NewScheduler(e.solicitations, e.evaluator, time.Minute, e.opts.withDefaults().Log)
	require.NoError(t, scheduler.RecoverClosed(ctx))

	awards, err := e.awards.ListAwards(ctx, sol.ID)
	require.NoError(t, err)
	require.Len(t, awards, 1)
	assert.True(t, money("30").Equal(awards[0].FinalPrice))
	require.Len(t, e.events.find(notify.UnquotedItems, sol.ID), 1)
	require.Len(t, e.events.find(notify.Evaluated, sol.ID), 1)

	require.NoError(t, scheduler.RecoverClosed(ctx))
	assert.Len(t, e.events.find(notify.Evaluated, sol.ID), 1, "evaluated solicitation is not picked up again")

	_, err = e.evaluator.Evaluate(ctx, sol.ID, owner)
	require.NoError(t, err)
	assert.Len(t, e.events.find(notify.Evaluated, sol.ID), 2)
	assert.Len(t, e.events.find(notify.UnquotedItems, sol.ID), 1, "unquoted items are reported once")

	got, err := e.solicitations.GetSolicitation(ctx, sol.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClosedSolicitation, got.Status)
}

func TestLifecycleRules(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := unique("buyer")

	sol, err := e.solicitations.CreateSolicitation(ctx, models.SolicitationRequest{
		Title:    "Draft only",
		OwnerID:  owner,
		Deadline: e.clock.Now().Add(time.Hour),
		Items:    []models.LineItemDraft{{ProductName: "Desk", Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = e.solicitations.Publish(ctx, sol.ID, owner)
	require.Error(t, err, "line item without ceiling price")
	assert.Equal(t, http.StatusBadRequest, statusCode(t, err))

	_, err = e.solicitations.Close(ctx, sol.ID, owner)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, statusCode(t, err))

	list, err := e.solicitations.ListSolicitations(ctx, owner, []string{string(models.DraftSolicitation)}, "", "")
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, e.solicitations.Delete(ctx, sol.ID, owner))
	_, err = e.solicitations.GetSolicitation(ctx, sol.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, statusCode(t, err))
}

func TestFulfillmentAndReports(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	f := publishFixture(t, e)

	_, err := e.solicitations.Close(ctx, f.sol.ID, f.owner)
	require.NoError(t, err)
	_, err = e.awards.AwardItem(ctx, f.sol.ID, f.l1.ID, models.AwardItemRequest{
		QuoteID: f.qy.ID, QuoteItemID: f.quoteItem(f.qy, f.l1).ID, Reason: "faster delivery",
	})
	require.NoError(t, err)

	_, err = e.fulfillment.RecordShipment(ctx, models.ShipmentRequest{LineItemID: f.l1.ID, SupplierID: f.x, TrackingNumber: "TRK-1"})
	require.Error(t, err, "only the current winner ships")
	assert.Equal(t, http.StatusConflict, statusCode(t, err))

	_, err = e.fulfillment.RecordShipment(ctx, models.ShipmentRequest{LineItemID: f.l1.ID, SupplierID: f.y, Carrier: "DHL", TrackingNumber: "TRK-1"})
	require.NoError(t, err)
	_, err = e.fulfillment.RecordSettlement(ctx, models.SettlementRequest{
		LineItemID: f.l1.ID, SupplierID: f.y, Amount: money("120"), ReceiptObjectKey: "receipts/l1.pdf",
	})
	require.NoError(t, err)
	_, err = e.fulfillment.RecordShipment(ctx, models.ShipmentRequest{LineItemID: f.l2.ID, SupplierID: f.y, TrackingNumber: "TRK-2"})
	require.NoError(t, err)

	order, err := e.fulfillment.CreateStockOrder(ctx, models.StockOrderRequest{
		SupplierID: f.y, BuyerID: f.owner, ProductName: "Stapler", Quantity: 3, UnitPrice: money("5"),
	})
	require.NoError(t, err)
	order, err = e.fulfillment.UpdateStockOrder(ctx, order.ID, models.StockOrderUpdate{TrackingNumber: "TRK-S"})
	require.NoError(t, err)
	require.NotNil(t, order.TrackingNumber)

	reports := NewReportService(e.opts, storage.NewSigner("http://files.local/receipts", "secret"), 15*time.Minute)

	dash, err := reports.SupplierDashboard(ctx, f.y)
	require.NoError(t, err)
	require.Len(t, dash.WonItems, 2)
	assert.True(t, money("240").Equal(dash.RFQIncome.Total))
	assert.True(t, money("120").Equal(dash.RFQIncome.Paid))
	assert.True(t, money("120").Equal(dash.RFQIncome.PendingPayment))
	assert.True(t, dash.RFQIncome.NotYetShipped.IsZero())
	for _, line := range dash.WonItems {
		if line.LineItemID == f.l1.ID {
			assert.Equal(t, models.Paid, line.PaymentStatus)
			assert.Contains(t, line.ReceiptURL, "http://files.local/receipts/")
		}
	}
	require.Len(t, dash.StockOrders, 1)
	assert.True(t, money("15").Equal(dash.StockIncome.PendingPayment))

	xDash, err := reports.SupplierDashboard(ctx, f.x)
	require.NoError(t, err)
	assert.True(t, money("200").Equal(xDash.RFQIncome.NotYetShipped))

	buyer, err := reports.BuyerFinancialReport(ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, buyer.Solicitations, 1)
	fin := buyer.Solicitations[0]
	assert.True(t, money("650").Equal(fin.Budget))
	assert.True(t, money("440").Equal(fin.Spend.Total))
	assert.True(t, money("210").Equal(fin.Savings))
	assert.Zero(t, fin.UnawardedItems)
	assert.True(t, money("15").Equal(buyer.StockSpend.Total))
}
