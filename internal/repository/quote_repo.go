package repository

import (
	"context"
	"fmt"

	"github.com/senyabanana/rfq-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
)

// QuoteRepository - интерфейс для работы с котировками поставщиков.
type QuoteRepository interface {
	WithTx(tx pgx.Tx) QuoteRepository
	CreateQuote(ctx context.Context, quote *models.Quote) error
	GetQuote(ctx context.Context, id string) (*models.Quote, error)
	ListQuotes(ctx context.Context, solicitationID string) ([]models.Quote, error)
	ListQuotesBySolicitations(ctx context.Context, solicitationIDs []string) (map[string][]models.Quote, error)
	UpdateQuoteStatus(ctx context.Context, id string, status models.QuoteStatus) error
	CountQuotes(ctx context.Context, solicitationID string) (int, error)
}

// PostgresQuoteRepository - реализация QuoteRepository для базы данных.
type PostgresQuoteRepository struct {
	DB Querier
}

// NewPostgresQuoteRepository создаёт новый экземпляр PostgresQuoteRepository.
func NewPostgresQuoteRepository(db Querier) *PostgresQuoteRepository {
	return &PostgresQuoteRepository{DB: db}
}

// WithTx возвращает репозиторий, работающий внутри транзакции.
func (r *PostgresQuoteRepository) WithTx(tx pgx.Tx) QuoteRepository {
	return &PostgresQuoteRepository{DB: tx}
}

// CreateQuote сохраняет котировку и её цены по позициям.
func (r *PostgresQuoteRepository) CreateQuote(ctx context.Context, quote *models.Quote) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO quote (id, solicitation_id, supplier_id, status, price, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		quote.ID,
		quote.SolicitationID,
		quote.SupplierID,
		quote.Status,
		quote.Price,
		quote.SubmittedAt)
	if err != nil {
		return fmt.Errorf("failed to insert quote: %w", err)
	}

	for _, qi := range quote.Items {
		_, err = r.DB.Exec(ctx, `
			INSERT INTO quote_item (id, quote_id, line_item_id, unit_price)
			VALUES ($1, $2, $3, $4)`,
			qi.ID, qi.QuoteID, qi.LineItemID, qi.UnitPrice)
		if err != nil {
			return fmt.Errorf("failed to insert quote item for line %s: %w", qi.LineItemID, err)
		}
	}
	return nil
}

// GetQuote возвращает котировку с ценами.
func (r *PostgresQuoteRepository) GetQuote(ctx context.Context, id string) (*models.Quote, error) {
	var q models.Quote
	err := r.DB.QueryRow(ctx, `
		SELECT id, solicitation_id, supplier_id, status, price, submitted_at
		FROM quote WHERE id = $1`, id).Scan(
		&q.ID,
		&q.SolicitationID,
		&q.SupplierID,
		&q.Status,
		&q.Price,
		&q.SubmittedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get quote %s: %w", id, err)
	}

	items, err := r.listItems(ctx, `WHERE qi.quote_id = $1`, id)
	if err != nil {
		return nil, err
	}
	q.Items = items[q.ID]
	return &q, nil
}

// ListQuotes возвращает котировки RFQ в порядке подачи.
func (r *PostgresQuoteRepository) ListQuotes(ctx context.Context, solicitationID string) ([]models.Quote, error) {
	bySolicitation, err := r.ListQuotesBySolicitations(ctx, []string{solicitationID})
	if err != nil {
		return nil, err
	}
	quotes := bySolicitation[solicitationID]
	if quotes == nil {
		quotes = []models.Quote{}
	}
	return quotes, nil
}

// ListQuotesBySolicitations возвращает котировки нескольких RFQ.
func (r *PostgresQuoteRepository) ListQuotesBySolicitations(ctx context.Context, solicitationIDs []string) (map[string][]models.Quote, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, solicitation_id, supplier_id, status, price, submitted_at
		FROM quote WHERE solicitation_id = ANY($1::text[]::uuid[])
		ORDER BY submitted_at, id`, pq.Array(solicitationIDs))
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	var quotes []models.Quote
	for rows.Next() {
		var q models.Quote
		if err := rows.Scan(
			&q.ID,
			&q.SolicitationID,
			&q.SupplierID,
			&q.Status,
			&q.Price,
			&q.SubmittedAt); err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := r.listItems(ctx, `JOIN quote q ON q.id = qi.quote_id WHERE q.solicitation_id = ANY($1::text[]::uuid[])`,
		pq.Array(solicitationIDs))
	if err != nil {
		return nil, err
	}

	out := make(map[string][]models.Quote, len(solicitationIDs))
	for _, q := range quotes {
		q.Items = items[q.ID]
		out[q.SolicitationID] = append(out[q.SolicitationID], q)
	}
	return out, nil
}

// UpdateQuoteStatus меняет статус котировки.
func (r *PostgresQuoteRepository) UpdateQuoteStatus(ctx context.Context, id string, status models.QuoteStatus) error {
	tag, err := r.DB.Exec(ctx, `UPDATE quote SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update quote status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update quote %s: %w", id, pgx.ErrNoRows)
	}
	return nil
}

// CountQuotes возвращает число котировок RFQ.
func (r *PostgresQuoteRepository) CountQuotes(ctx context.Context, solicitationID string) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT count(*) FROM quote WHERE solicitation_id = $1`, solicitationID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count quotes: %w", err)
	}
	return n, nil
}

func (r *PostgresQuoteRepository) listItems(ctx context.Context, where string, args ...any) (map[string][]models.QuoteItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT qi.id, qi.quote_id, qi.line_item_id, qi.unit_price
		FROM quote_item qi `+where+` ORDER BY qi.quote_id, qi.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list quote items: %w", err)
	}
	defer rows.Close()

	items := make(map[string][]models.QuoteItem)
	for rows.Next() {
		var qi models.QuoteItem
		if err := rows.Scan(&qi.ID, &qi.QuoteID, &qi.LineItemID, &qi.UnitPrice); err != nil {
			return nil, err
		}
		items[qi.QuoteID] = append(items[qi.QuoteID], qi)
	}
	return items, rows.Err()
}
