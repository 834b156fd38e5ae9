package resolver

import (
	"fmt"
	"sort"
	"time"

	"github.com/senyabanana/rfq-service/internal/models"

	"github.com/shopspring/decimal"
)

// Assignment - назначение конкретной цены поставщика победителем позиции.
type Assignment struct {
	LineItemID  string
	QuoteID     string
	QuoteItemID string
	// Reason - текст причины для решения выбранного поставщика.
	Reason string
	// Manual - назначение сделано оператором; текст причины заменяет прежний.
	Manual bool
	// CancelReason записывается в решения, оставшиеся без позиций.
	CancelReason string
	Now          time.Time
	NewID        func() string
}

// Result - новый снимок и набор изменений относительно исходного.
type Result struct {
	Snapshot   *Snapshot
	Diff       Diff
	Winner     Decision
	Superseded []string // поставщики, у которых позиция была снята
}

// Reassign делает выбранную цену победителем позиции и восстанавливает
// согласованность всех котировок и решений RFQ.
//
// Исходный снимок не изменяется. Порядок шагов:
//  1. позиция снимается с решений других поставщиков, в причину решения
//     добавляется пометка, итог решения пересчитывается;
//  2. позиция переводится в AWARDED;
//  3. в решение выбранного поставщика добавляется позиция (решение создаётся
//     при необходимости);
//  4. победители всех позиций выводятся заново, после чего цены и статусы
//     котировок, состав и суммы решений приводятся к ним; опустевшие решения
//     отменяются;
//  5. закрытый RFQ, у которого все позиции в конечном статусе, переводится
//     в AWARDED. Статус AWARDED никогда не откатывается.
func Reassign(s *Snapshot, a Assignment) (*Result, error) {
	next := s.Clone()

	item, ok := next.Item(a.LineItemID)
	if !ok {
		return nil, ErrLineItemNotFound
	}
	if item.Quantity <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidQuantity, item.ID)
	}
	quote, ok := next.Quote(a.QuoteID)
	if !ok {
		return nil, ErrQuoteNotFound
	}
	if quote.Status == models.RejectedQuote {
		return nil, ErrQuoteRejected
	}
	var chosen *models.QuoteItem
	for i := range quote.Items {
		if quote.Items[i].ID == a.QuoteItemID {
			chosen = &quote.Items[i]
			break
		}
	}
	if chosen == nil {
		return nil, ErrQuoteItemNotFound
	}
	if chosen.LineItemID != item.ID {
		return nil, ErrLinkageMismatch
	}
	if !chosen.UnitPrice.IsPositive() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPrice, chosen.ID)
	}

	supplierID := quote.SupplierID
	cancelReason := a.CancelReason
	if cancelReason == "" {
		cancelReason = models.ManualReawardReason
	}

	var superseded []string
	for i := range next.Awards {
		aw := &next.Awards[i]
		if aw.Status != models.ActiveAward || aw.SupplierID == supplierID {
			continue
		}
		kept := make([]models.AwardItem, 0, len(aw.Items))
		removed := false
		for _, ai := range aw.Items {
			if ai.LineItemID == item.ID {
				removed = true
				continue
			}
			kept = append(kept, ai)
		}
		if !removed {
			continue
		}
		aw.Items = kept
		aw.Reason = MarkRemoved(aw.Reason, item.ID)
		aw.FinalPrice = sumAwardItems(kept)
		superseded = append(superseded, aw.SupplierID)
	}

	item.Status = models.AwardedItem

	aw, ok := next.ActiveAward(supplierID)
	if !ok {
		next.Awards = append(next.Awards, models.Award{
			ID:             a.NewID(),
			SolicitationID: next.Solicitation.ID,
			SupplierID:     supplierID,
			QuoteID:        quote.ID,
			Status:         models.ActiveAward,
			FinalPrice:     decimal.Zero,
			Reason:         WithText("", a.Reason),
			CreatedAt:      a.Now,
			UpdatedAt:      a.Now,
		})
		aw = &next.Awards[len(next.Awards)-1]
	} else if a.Manual && a.Reason != "" {
		aw.Reason = WithText(aw.Reason, a.Reason)
	}
	aw.Reason = ClearRemoved(aw.Reason, item.ID)
	upsertAwardItem(aw, models.AwardItem{
		AwardID:     aw.ID,
		LineItemID:  item.ID,
		QuoteItemID: chosen.ID,
		UnitPrice:   chosen.UnitPrice,
		Quantity:    item.Quantity,
	})

	if err := next.Sync(a.Now, a.NewID, cancelReason); err != nil {
		return nil, err
	}

	winner, err := next.Determine(a.LineItemID)
	if err != nil {
		return nil, err
	}
	if winner == nil || winner.QuoteItemID != a.QuoteItemID {
		return nil, ErrUnstableWinner
	}

	if next.Solicitation.Status == models.ClosedSolicitation && next.AllTerminal() {
		next.Solicitation.Status = models.AwardedSolicitation
	}

	return &Result{
		Snapshot:   next,
		Diff:       Compare(s, next, a.Now),
		Winner:     *winner,
		Superseded: superseded,
	}, nil
}

// AutoAssign определяет победителя позиции по действующим решениям и
// закрепляет его так же, как ручное назначение. Для позиции без котировок
// возвращается ErrNoCandidates.
func AutoAssign(s *Snapshot, lineItemID string, now time.Time, newID func() string) (*Result, error) {
	d, err := s.Determine(lineItemID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNoCandidates
	}
	res, err := Reassign(s, Assignment{
		LineItemID:   lineItemID,
		QuoteID:      d.QuoteID,
		QuoteItemID:  d.QuoteItemID,
		Reason:       models.AutoAwardReason,
		CancelReason: models.ManualReawardReason,
		Now:          now,
		NewID:        newID,
	})
	if err != nil {
		return nil, err
	}
	// Правило, по которому позиция была выиграна, а не закреплена.
	res.Winner = *d
	return res, nil
}

// Sync приводит котировки и решения снимка к заново выведенным победителям.
func (s *Snapshot) Sync(now time.Time, newID func() string, cancelReason string) error {
	winners, failures := s.Winners()
	if len(failures) > 0 {
		ids := make([]string, 0, len(failures))
		for id := range failures {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		return fmt.Errorf("%w: line item %s: %v", ErrInvariant, ids[0], failures[ids[0]])
	}

	quantities := make(map[string]int, len(s.Items))
	for _, item := range s.Items {
		quantities[item.ID] = item.Quantity
	}

	for i := range s.Quotes {
		q := &s.Quotes[i]
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
		q.Price = price
		if won > 0 {
			q.Status = models.AwardedQuote
		} else {
			q.Status = models.SubmittedQuote
		}
	}

	won := make(map[string][]models.AwardItem)
	for _, item := range s.Items {
		d, ok := winners[item.ID]
		if !ok {
			continue
		}
		won[d.SupplierID] = append(won[d.SupplierID], models.AwardItem{
			LineItemID:  item.ID,
			QuoteItemID: d.QuoteItemID,
			UnitPrice:   d.UnitPrice,
			Quantity:    item.Quantity,
		})
	}

	for _, supplierID := range s.supplierIDs() {
		items := won[supplierID]
		var active []int
		for i := range s.Awards {
			if s.Awards[i].SupplierID == supplierID && s.Awards[i].Status == models.ActiveAward {
				active = append(active, i)
			}
		}

		if len(active) == 0 {
			if len(items) == 0 {
				continue
			}
			s.Awards = append(s.Awards, models.Award{
				ID:             newID(),
				SolicitationID: s.Solicitation.ID,
				SupplierID:     supplierID,
				Status:         models.ActiveAward,
				Reason:         models.AutoAwardReason,
				CreatedAt:      now,
				UpdatedAt:      now,
			})
			active = append(active, len(s.Awards)-1)
		}

		// Лишние действующие решения поставщика отменяются.
		for _, idx := range active[1:] {
			cancelAward(&s.Awards[idx], cancelReason, now)
		}

		aw := &s.Awards[active[0]]
		if len(items) == 0 {
			cancelAward(aw, cancelReason, now)
			continue
		}
		for j := range items {
			items[j].AwardID = aw.ID
		}
		aw.Items = items
		aw.FinalPrice = sumAwardItems(items)
		if rep := s.representativeQuote(supplierID, winners); rep != "" {
			aw.QuoteID = rep
		}
	}
	return nil
}

// representativeQuote выбирает котировку поставщика, выигравшую больше всего
// позиций; при равенстве - поданную раньше.
func (s *Snapshot) representativeQuote(supplierID string, winners map[string]Decision) string {
	counts := make(map[string]int)
	for _, d := range winners {
		if d.SupplierID == supplierID {
			counts[d.QuoteID]++
		}
	}
	var best *models.Quote
	for i := range s.Quotes {
		q := &s.Quotes[i]
		if q.SupplierID != supplierID || counts[q.ID] == 0 {
			continue
		}
		switch {
		case best == nil:
			best = q
		case counts[q.ID] > counts[best.ID]:
			best = q
		case counts[q.ID] == counts[best.ID] && q.SubmittedAt.Before(best.SubmittedAt):
			best = q
		case counts[q.ID] == counts[best.ID] && q.SubmittedAt.Equal(best.SubmittedAt) && q.ID < best.ID:
			best = q
		}
	}
	if best == nil {
		return ""
	}
	return best.ID
}

func cancelAward(aw *models.Award, reason string, now time.Time) {
	r := reason
	t := now
	aw.Status = models.CanceledAward
	aw.CancellationReason = &r
	aw.CancelledAt = &t
}

func upsertAwardItem(aw *models.Award, item models.AwardItem) {
	for i := range aw.Items {
		if aw.Items[i].LineItemID == item.LineItemID {
			aw.Items[i] = item
			aw.FinalPrice = sumAwardItems(aw.Items)
			return
		}
	}
	aw.Items = append(aw.Items, item)
	aw.FinalPrice = sumAwardItems(aw.Items)
}

func sumAwardItems(items []models.AwardItem) decimal.Decimal {
	total := decimal.Zero
	for _, ai := range items {
		total = total.Add(ai.Total())
	}
	return total
}
