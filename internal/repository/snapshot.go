package repository

import (
	"context"

	"github.com/senyabanana/rfq-service/internal/models"
	"github.com/senyabanana/rfq-service/internal/resolver"
)

// SnapshotLoader загружает подграф RFQ для чистых функций resolver.
type SnapshotLoader struct {
	Solicitations SolicitationRepository
	Quotes        QuoteRepository
	Awards        AwardRepository
}

// NewSnapshotLoader создаёт загрузчик поверх репозиториев.
func NewSnapshotLoader(solicitations SolicitationRepository, quotes QuoteRepository, awards AwardRepository) *SnapshotLoader {
	return &SnapshotLoader{Solicitations: solicitations, Quotes: quotes, Awards: awards}
}

// Load загружает снимок одного RFQ. Строка RFQ уже прочитана вызывающим
// (обычно под блокировкой).
func (l *SnapshotLoader) Load(ctx context.Context, sol models.Solicitation) (*resolver.Snapshot, error) {
	items, err := l.Solicitations.ListLineItems(ctx, sol.ID)
	if err != nil {
		return nil, err
	}
	quotes, err := l.Quotes.ListQuotes(ctx, sol.ID)
	if err != nil {
		return nil, err
	}
	awards, err := l.Awards.ListAwards(ctx, sol.ID)
	if err != nil {
		return nil, err
	}
	sol.Items = nil
	return &resolver.Snapshot{Solicitation: sol, Items: items, Quotes: quotes, Awards: awards}, nil
}

// LoadMany загружает снимки нескольких RFQ; котировки и решения читаются
// пакетно.
func (l *SnapshotLoader) LoadMany(ctx context.Context, sols []models.Solicitation) ([]*resolver.Snapshot, error) {
	if len(sols) == 0 {
		return nil, nil
	}
	ids := make([]string, len(sols))
	for i, sol := range sols {
		ids[i] = sol.ID
	}
	quotes, err := l.Quotes.ListQuotesBySolicitations(ctx, ids)
	if err != nil {
		return nil, err
	}
	awards, err := l.Awards.ListAwardsBySolicitations(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*resolver.Snapshot, 0, len(sols))
	for _, sol := range sols {
		items, err := l.Solicitations.ListLineItems(ctx, sol.ID)
		if err != nil {
			return nil, err
		}
		sol.Items = nil
		out = append(out, &resolver.Snapshot{
			Solicitation: sol,
			Items:        items,
			Quotes:       quotes[sol.ID],
			Awards:       awards[sol.ID],
		})
	}
	return out, nil
}
