package resolver

import (
	"sort"

	"github.com/senyabanana/rfq-service/internal/models"

	"github.com/shopspring/decimal"
)

// Snapshot - загруженный в память подграф одного RFQ: позиции, котировки
// с ценами и все решения (включая отменённые).
type Snapshot struct {
	Solicitation models.Solicitation
	Items        []models.LineItem
	Quotes       []models.Quote
	Awards       []models.Award
}

// Clone возвращает глубокую копию снимка.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{Solicitation: s.Solicitation}
	c.Solicitation.Items = nil

	c.Items = append([]models.LineItem(nil), s.Items...)

	c.Quotes = make([]models.Quote, len(s.Quotes))
	for i, q := range s.Quotes {
		q.Items = append([]models.QuoteItem(nil), q.Items...)
		c.Quotes[i] = q
	}

	c.Awards = make([]models.Award, len(s.Awards))
	for i, a := range s.Awards {
		a.Items = append([]models.AwardItem(nil), a.Items...)
		if a.CancellationReason != nil {
			r := *a.CancellationReason
			a.CancellationReason = &r
		}
		if a.CancelledAt != nil {
			t := *a.CancelledAt
			a.CancelledAt = &t
		}
		c.Awards[i] = a
	}
	return c
}

// Item возвращает позицию по идентификатору.
func (s *Snapshot) Item(id string) (*models.LineItem, bool) {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return &s.Items[i], true
		}
	}
	return nil, false
}

// Quote возвращает котировку по идентификатору.
func (s *Snapshot) Quote(id string) (*models.Quote, bool) {
	for i := range s.Quotes {
		if s.Quotes[i].ID == id {
			return &s.Quotes[i], true
		}
	}
	return nil, false
}

// ActiveAward возвращает действующее решение поставщика.
func (s *Snapshot) ActiveAward(supplierID string) (*models.Award, bool) {
	for i := range s.Awards {
		if s.Awards[i].SupplierID == supplierID && s.Awards[i].Status == models.ActiveAward {
			return &s.Awards[i], true
		}
	}
	return nil, false
}

// ActiveAwards возвращает все неотменённые решения.
func (s *Snapshot) ActiveAwards() []models.Award {
	var out []models.Award
	for _, a := range s.Awards {
		if a.Status == models.ActiveAward {
			out = append(out, a)
		}
	}
	return out
}

// Candidates собирает кандидатов по позиции. Отклонённые котировки не участвуют.
func (s *Snapshot) Candidates(lineItemID string) []Candidate {
	var out []Candidate
	for _, q := range s.Quotes {
		if q.Status == models.RejectedQuote {
			continue
		}
		for _, qi := range q.Items {
			if qi.LineItemID != lineItemID {
				continue
			}
			out = append(out, Candidate{
				QuoteItemID: qi.ID,
				QuoteID:     q.ID,
				SupplierID:  q.SupplierID,
				LineItemID:  qi.LineItemID,
				UnitPrice:   qi.UnitPrice,
				SubmittedAt: q.SubmittedAt,
			})
		}
	}
	return out
}

// Determine определяет победителя по позиции с учётом текущих решений снимка.
func (s *Snapshot) Determine(lineItemID string) (*Decision, error) {
	item, ok := s.Item(lineItemID)
	if !ok {
		return nil, ErrLineItemNotFound
	}
	return Determine(*item, s.Candidates(lineItemID), s.ActiveAwards())
}

// Winners пересчитывает победителей по всем позициям в статусе AWARDED.
// Ошибки по отдельным позициям возвращаются в отдельной карте.
func (s *Snapshot) Winners() (map[string]Decision, map[string]error) {
	winners := make(map[string]Decision)
	failures := make(map[string]error)
	awards := s.ActiveAwards()
	for _, item := range s.Items {
		if item.Status != models.AwardedItem {
			continue
		}
		d, err := Determine(item, s.Candidates(item.ID), awards)
		if err != nil {
			failures[item.ID] = err
			continue
		}
		if d == nil {
			failures[item.ID] = ErrNoCandidates
			continue
		}
		winners[item.ID] = *d
	}
	return winners, failures
}

// AllTerminal сообщает, что все позиции RFQ в конечном статусе.
func (s *Snapshot) AllTerminal() bool {
	if len(s.Items) == 0 {
		return false
	}
	for _, item := range s.Items {
		if !item.Status.IsTerminal() {
			return false
		}
	}
	return true
}

// LineTotal - стоимость позиции по цене победителя.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// supplierIDs возвращает поставщиков снимка в детерминированном порядке.
func (s *Snapshot) supplierIDs() []string {
	seen := make(map[string]bool)
	var out []string
	for _, q := range s.Quotes {
		if !seen[q.SupplierID] {
			seen[q.SupplierID] = true
			out = append(out, q.SupplierID)
		}
	}
	for _, a := range s.Awards {
		if !seen[a.SupplierID] {
			seen[a.SupplierID] = true
			out = append(out, a.SupplierID)
		}
	}
	sort.Strings(out)
	return out
}
