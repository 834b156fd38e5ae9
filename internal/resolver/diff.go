package resolver

import (
	"time"

	"github.com/senyabanana/rfq-service/internal/models"
)

// AwardChange - созданное или изменённое решение.
type AwardChange struct {
	Award        models.Award
	Created      bool
	ItemsChanged bool
}

// Diff - изменения, которые нужно сохранить в одной транзакции.
type Diff struct {
	Solicitation *models.Solicitation
	Items        []models.LineItem
	Quotes       []models.Quote
	Awards       []AwardChange
}

// Empty сообщает, что сохранять нечего.
func (d Diff) Empty() bool {
	return d.Solicitation == nil && len(d.Items) == 0 && len(d.Quotes) == 0 && len(d.Awards) == 0
}

// Compare вычисляет изменения между двумя снимками одного RFQ.
func Compare(before, after *Snapshot, now time.Time) Diff {
	var d Diff

	if before.Solicitation.Status != after.Solicitation.Status {
		sol := after.Solicitation
		sol.UpdatedAt = now
		d.Solicitation = &sol
	}

	oldItems := make(map[string]models.LineItem, len(before.Items))
	for _, it := range before.Items {
		oldItems[it.ID] = it
	}
	for _, it := range after.Items {
		if old, ok := oldItems[it.ID]; !ok || old.Status != it.Status {
			d.Items = append(d.Items, it)
		}
	}

	oldQuotes := make(map[string]models.Quote, len(before.Quotes))
	for _, q := range before.Quotes {
		oldQuotes[q.ID] = q
	}
	for _, q := range after.Quotes {
		old, ok := oldQuotes[q.ID]
		if !ok || old.Status != q.Status || !old.Price.Equal(q.Price) {
			d.Quotes = append(d.Quotes, q)
		}
	}

	oldAwards := make(map[string]models.Award, len(before.Awards))
	for _, a := range before.Awards {
		oldAwards[a.ID] = a
	}
	for _, a := range after.Awards {
		old, ok := oldAwards[a.ID]
		if !ok {
			a.UpdatedAt = now
			d.Awards = append(d.Awards, AwardChange{Award: a, Created: true, ItemsChanged: true})
			continue
		}
		itemsChanged := !sameAwardItems(old.Items, a.Items)
		if itemsChanged || awardHeaderChanged(old, a) {
			a.UpdatedAt = now
			d.Awards = append(d.Awards, AwardChange{Award: a, ItemsChanged: itemsChanged})
		}
	}
	return d
}

func awardHeaderChanged(a, b models.Award) bool {
	if a.QuoteID != b.QuoteID || a.Status != b.Status || a.Reason != b.Reason {
		return true
	}
	if !a.FinalPrice.Equal(b.FinalPrice) {
		return true
	}
	return (a.CancellationReason == nil) != (b.CancellationReason == nil)
}

func sameAwardItems(a, b []models.AwardItem) bool {
	if len(a) != len(b) {
		return false
	}
	byLine := make(map[string]models.AwardItem, len(a))
	for _, ai := range a {
		byLine[ai.LineItemID] = ai
	}
	for _, bi := range b {
		ai, ok := byLine[bi.LineItemID]
		if !ok || ai.QuoteItemID != bi.QuoteItemID || ai.Quantity != bi.Quantity || !ai.UnitPrice.Equal(bi.UnitPrice) {
			return false
		}
	}
	return true
}
