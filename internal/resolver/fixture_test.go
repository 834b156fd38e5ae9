package resolver_test

import (
	"fmt"
	"time"

	"github.com/senyabanana/rfq-service/internal/models"
	"github.com/senyabanana/rfq-service/internal/resolver"

	"github.com/shopspring/decimal"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sequence(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func lineItem(id string, qty int, ceiling string) models.LineItem {
	return models.LineItem{
		ID:             id,
		SolicitationID: "rfq-1",
		ProductName:    "product " + id,
		Quantity:       qty,
		Unit:           "pcs",
		CeilingPrice:   money(ceiling),
		Status:         models.QuotedItem,
	}
}

func quote(id, supplier string, at time.Time, prices map[string]string) models.Quote {
	q := models.Quote{
		ID:             id,
		SolicitationID: "rfq-1",
		SupplierID:     supplier,
		Status:         models.SubmittedQuote,
		Price:          decimal.Zero,
		SubmittedAt:    at,
	}
	for _, lineID := range []string{"l1", "l2", "l3"} {
		p, ok := prices[lineID]
		if !ok {
			continue
		}
		q.Items = append(q.Items, models.QuoteItem{
			ID:         id + "-" + lineID,
			QuoteID:    id,
			LineItemID: lineID,
			UnitPrice:  money(p),
		})
	}
	return q
}

// threeLines: поставщик x дешевле по всем трём позициям, y подал котировку позже.
func threeLines() *resolver.Snapshot {
	return &resolver.Snapshot{
		Solicitation: models.Solicitation{
			ID:       "rfq-1",
			Title:    "office supplies",
			OwnerID:  "buyer-1",
			Status:   models.ClosedSolicitation,
			Deadline: t0,
		},
		Items: []models.LineItem{
			lineItem("l1", 10, "15.00"),
			lineItem("l2", 5, "30.00"),
			lineItem("l3", 2, "150.00"),
		},
		Quotes: []models.Quote{
			quote("qx", "x", t0, map[string]string{"l1": "10.00", "l2": "20.00", "l3": "100.00"}),
			quote("qy", "y", t0.Add(time.Hour), map[string]string{"l1": "12.00", "l2": "25.00", "l3": "110.00"}),
		},
	}
}

func autoAll(s *resolver.Snapshot, newID func() string) (*resolver.Snapshot, error) {
	for _, id := range []string{"l1", "l2", "l3"} {
		res, err := resolver.AutoAssign(s, id, t0.Add(2*time.Hour), newID)
		if err != nil {
			return nil, err
		}
		s = res.Snapshot
	}
	return s, nil
}
