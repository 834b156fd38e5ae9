package resolver

import (
	"errors"
	"fmt"

	"github.com/senyabanana/rfq-service/internal/models"

	"github.com/shopspring/decimal"
)

// CheckInvariants проверяет согласованность снимка:
//   - у каждой позиции в статусе AWARDED ровно один победитель и ровно одно
//     действующее решение, которое на неё ссылается;
//   - у поставщика не больше одного действующего решения;
//   - котировка в статусе AWARDED тогда и только тогда, когда выигрывает хотя
//     бы одну позицию, а её цена равна сумме выигранных позиций;
//   - итог решения равен сумме его позиций, а позиции совпадают с выигранными.
func CheckInvariants(s *Snapshot) error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvariant}, args...)...))
	}

	winners, failures := s.Winners()
	for id, err := range failures {
		fail("line item %s has no winner: %v", id, err)
	}

	activeBySupplier := make(map[string]int)
	refs := make(map[string]int)
	for _, a := range s.Awards {
		if a.Status != models.ActiveAward {
			continue
		}
		activeBySupplier[a.SupplierID]++
		for _, ai := range a.Items {
			refs[ai.LineItemID]++
		}
	}
	for supplier, n := range activeBySupplier {
		if n > 1 {
			fail("supplier %s has %d active awards", supplier, n)
		}
	}
	for _, item := range s.Items {
		if item.Status == models.AwardedItem && refs[item.ID] != 1 {
			fail("line item %s is referenced by %d active awards", item.ID, refs[item.ID])
		}
	}

	quantities := make(map[string]int, len(s.Items))
	for _, item := range s.Items {
		quantities[item.ID] = item.Quantity
	}
	for _, q := range s.Quotes {
		if q.Status == models.RejectedQuote {
			continue
		}
		price := decimal.Zero
		won := 0
		for _, qi := range q.Items {
			if d, ok := winners[qi.LineItemID]; ok && d.QuoteItemID == qi.ID {
				price = price.Add(LineTotal(qi.UnitPrice, quantities[qi.LineItemID]))
				won++
			}
		}
		if (won > 0) != (q.Status == models.AwardedQuote) {
			fail("quote %s has status %s but wins %d items", q.ID, q.Status, won)
		}
		if !price.Equal(q.Price) {
			fail("quote %s price %s, winning items sum to %s", q.ID, q.Price, price)
		}
	}

	for _, a := range s.Awards {
		if a.Status != models.ActiveAward {
			continue
		}
		if total := sumAwardItems(a.Items); !total.Equal(a.FinalPrice) {
			fail("award %s final price %s, items sum to %s", a.ID, a.FinalPrice, total)
		}
		for _, ai := range a.Items {
			d, ok := winners[ai.LineItemID]
			if !ok || d.SupplierID != a.SupplierID || d.QuoteItemID != ai.QuoteItemID {
				fail("award %s lists line item %s that its supplier does not win", a.ID, ai.LineItemID)
			}
		}
	}
	for lineID, d := range winners {
		aw, ok := s.ActiveAward(d.SupplierID)
		if !ok {
			fail("winner of line item %s has no active award", lineID)
			continue
		}
		listed := false
		for _, ai := range aw.Items {
			if ai.LineItemID == lineID {
				listed = true
			}
		}
		if !listed {
			fail("award %s does not list won line item %s", aw.ID, lineID)
		}
	}

	return errors.Join(errs...)
}
