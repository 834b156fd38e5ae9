package repository

import (
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store объединяет репозитории и менеджер транзакций.
type Store struct {
	Tx            *TxManager
	Solicitations SolicitationRepository
	Quotes        QuoteRepository
	Awards        AwardRepository
	Fulfillment   FulfillmentRepository
	Reports       ReportRepository
}

// NewStore создаёт репозитории поверх пула соединений.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Tx:            NewTxManager(pool),
		Solicitations: NewPostgresSolicitationRepository(pool),
		Quotes:        NewPostgresQuoteRepository(pool),
		Awards:        NewPostgresAwardRepository(pool),
		Fulfillment:   NewPostgresFulfillmentRepository(pool),
		Reports:       NewPostgresReportRepository(pool),
	}
}

// WithTx возвращает набор репозиториев, работающих внутри транзакции.
func (s *Store) WithTx(tx pgx.Tx) *Store {
	return &Store{
		Tx:            s.Tx,
		Solicitations: s.Solicitations.WithTx(tx),
		Quotes:        s.Quotes.WithTx(tx),
		Awards:        s.Awards.WithTx(tx),
		Fulfillment:   s.Fulfillment.WithTx(tx),
		Reports:       s.Reports.WithTx(tx),
	}
}

// Snapshots возвращает загрузчик снимков поверх репозиториев набора.
func (s *Store) Snapshots() *SnapshotLoader {
	return NewSnapshotLoader(s.Solicitations, s.Quotes, s.Awards)
}
