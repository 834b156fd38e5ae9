// Package resolver определяет победителей по позициям RFQ и поддерживает
// согласованность котировок и решений о присуждении.
//
// Все функции пакета чистые: они работают с загруженным в память снимком
// (Snapshot) и никогда не читают сохранённый признак победителя. Одни и те же
// функции вызываются при автоматической оценке, ручном переназначении и в
// отчётах, поэтому результат у всех потребителей совпадает.
package resolver

import (
	"fmt"
	"sort"
	"time"

	"github.com/senyabanana/rfq-service/internal/models"

	"github.com/shopspring/decimal"
)

// Rule - правило, по которому выбран победитель.
type Rule string

const (
	RuleManual  Rule = "MANUAL_PRECEDENT" // Позиция закреплена действующим решением
	RuleInstant Rule = "INSTANT_ACCEPT"   // Цена не выше цены мгновенной покупки
	RuleLowest  Rule = "LOWEST_PRICE"     // Минимальная цена
)

// Candidate - цена поставщика по позиции вместе с атрибутами его котировки.
type Candidate struct {
	QuoteItemID string
	QuoteID     string
	SupplierID  string
	LineItemID  string
	UnitPrice   decimal.Decimal
	SubmittedAt time.Time
}

// Decision - выбранный победитель и применённое правило.
type Decision struct {
	Candidate
	Rule Rule
}

// Determine выбирает единственного победителя по позиции.
//
// Порядок правил:
//  1. ручной прецедент: действующее решение поставщика содержит эту позицию
//     с данной ценой и не помечено как снявшее её. Прецедент дают только
//     позиции решения, а не вся котировка, на которую оно ссылается. Если
//     прецедентов несколько, побеждает меньшая цена, затем более ранняя подача;
//  2. мгновенная покупка: среди цен не выше InstantPrice побеждает самая ранняя;
//  3. минимальная цена, при равенстве - более ранняя подача.
//
// Полностью совпавшие кандидаты упорядочиваются по идентификатору позиции
// котировки, поэтому результат воспроизводим. Без кандидатов возвращается nil.
func Determine(item models.LineItem, candidates []Candidate, awards []models.Award) (*Decision, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	if item.Quantity <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidQuantity, item.ID)
	}
	for _, c := range candidates {
		if c.LineItemID != item.ID {
			return nil, fmt.Errorf("%w: %s", ErrForeignCandidate, c.QuoteItemID)
		}
		if !c.UnitPrice.IsPositive() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPrice, c.QuoteItemID)
		}
	}

	ordered := make([]Candidate, len(candidates))
	copy(ordered, candidates)
	sortByPrice(ordered)

	var precedent []Candidate
	for _, c := range ordered {
		if hasPrecedent(item.ID, c, awards) {
			precedent = append(precedent, c)
		}
	}
	if len(precedent) > 0 {
		return &Decision{Candidate: precedent[0], Rule: RuleManual}, nil
	}

	if item.InstantPrice.Valid {
		var instant []Candidate
		for _, c := range ordered {
			if c.UnitPrice.LessThanOrEqual(item.InstantPrice.Decimal) {
				instant = append(instant, c)
			}
		}
		if len(instant) > 0 {
			sortBySubmission(instant)
			return &Decision{Candidate: instant[0], Rule: RuleInstant}, nil
		}
	}

	return &Decision{Candidate: ordered[0], Rule: RuleLowest}, nil
}

// hasPrecedent проверяет позиции решения; прочие цены той же котировки
// прецедента не дают.
func hasPrecedent(lineItemID string, c Candidate, awards []models.Award) bool {
	for _, a := range awards {
		if a.Status != models.ActiveAward || a.SupplierID != c.SupplierID {
			continue
		}
		if IsRemoved(a.Reason, lineItemID) {
			continue
		}
		for _, ai := range a.Items {
			if ai.LineItemID == lineItemID && ai.QuoteItemID == c.QuoteItemID {
				return true
			}
		}
	}
	return false
}

// sortByPrice: цена, затем время подачи, затем идентификатор.
func sortByPrice(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cmp := cs[i].UnitPrice.Cmp(cs[j].UnitPrice); cmp != 0 {
			return cmp < 0
		}
		if !cs[i].SubmittedAt.Equal(cs[j].SubmittedAt) {
			return cs[i].SubmittedAt.Before(cs[j].SubmittedAt)
		}
		return cs[i].QuoteItemID < cs[j].QuoteItemID
	})
}

// sortBySubmission: время подачи, затем цена, затем идентификатор.
func sortBySubmission(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		if !cs[i].SubmittedAt.Equal(cs[j].SubmittedAt) {
			return cs[i].SubmittedAt.Before(cs[j].SubmittedAt)
		}
		if cmp := cs[i].UnitPrice.Cmp(cs[j].UnitPrice); cmp != 0 {
			return cmp < 0
		}
		return cs[i].QuoteItemID < cs[j].QuoteItemID
	})
}
