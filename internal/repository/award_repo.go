package repository

import (
	"context"
	"fmt"

	"github.com/senyabanana/rfq-service/internal/models"
	"github.com/senyabanana/rfq-service/internal/resolver"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
)

// AwardRepository - интерфейс для работы с решениями о присуждении.
type AwardRepository interface {
	WithTx(tx pgx.Tx) AwardRepository
	ListAwards(ctx context.Context, solicitationID string) ([]models.Award, error)
	ListAwardsBySolicitations(ctx context.Context, solicitationIDs []string) (map[string][]models.Award, error)
	ApplyDiff(ctx context.Context, diff resolver.Diff) error
}

// PostgresAwardRepository - реализация AwardRepository для базы данных.
type PostgresAwardRepository struct {
	DB Querier
}

// NewPostgresAwardRepository создаёт новый экземпляр PostgresAwardRepository.
func NewPostgresAwardRepository(db Querier) *PostgresAwardRepository {
	return &PostgresAwardRepository{DB: db}
}

// WithTx возвращает репозиторий, работающий внутри транзакции.
func (r *PostgresAwardRepository) WithTx(tx pgx.Tx) AwardRepository {
	return &PostgresAwardRepository{DB: tx}
}

// ListAwards возвращает все решения RFQ, включая отменённые.
func (r *PostgresAwardRepository) ListAwards(ctx context.Context, solicitationID string) ([]models.Award, error) {
	bySolicitation, err := r.ListAwardsBySolicitations(ctx, []string{solicitationID})
	if err != nil {
		return nil, err
	}
	awards := bySolicitation[solicitationID]
	if awards == nil {
		awards = []models.Award{}
	}
	return awards, nil
}

// ListAwardsBySolicitations возвращает решения нескольких RFQ вместе с позициями.
func (r *PostgresAwardRepository) ListAwardsBySolicitations(ctx context.Context, solicitationIDs []string) (map[string][]models.Award, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, solicitation_id, supplier_id, quote_id, status, final_price, reason,
		       cancellation_reason, cancelled_at, created_at, updated_at
		FROM award WHERE solicitation_id = ANY($1::text[]::uuid[])
		ORDER BY created_at, id`, pq.Array(solicitationIDs))
	if err != nil {
		return nil, fmt.Errorf("list awards: %w", err)
	}
	defer rows.Close()

	var awards []models.Award
	for rows.Next() {
		var a models.Award
		if err := rows.Scan(
			&a.ID,
			&a.SolicitationID,
			&a.SupplierID,
			&a.QuoteID,
			&a.Status,
			&a.FinalPrice,
			&a.Reason,
			&a.CancellationReason,
			&a.CancelledAt,
			&a.CreatedAt,
			&a.UpdatedAt); err != nil {
			return nil, err
		}
		awards = append(awards, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := r.DB.Query(ctx, `
		SELECT ai.award_id, ai.line_item_id, ai.quote_item_id, ai.unit_price, ai.quantity
		FROM award_item ai JOIN award a ON a.id = ai.award_id
		WHERE a.solicitation_id = ANY($1::text[]::uuid[])
		ORDER BY ai.award_id, ai.line_item_id`, pq.Array(solicitationIDs))
	if err != nil {
		return nil, fmt.Errorf("list award items: %w", err)
	}
	defer itemRows.Close()

	items := make(map[string][]models.AwardItem)
	for itemRows.Next() {
		var ai models.AwardItem
		if err := itemRows.Scan(&ai.AwardID, &ai.LineItemID, &ai.QuoteItemID, &ai.UnitPrice, &ai.Quantity); err != nil {
			return nil, err
		}
		items[ai.AwardID] = append(items[ai.AwardID], ai)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	out := make(map[string][]models.Award, len(solicitationIDs))
	for _, a := range awards {
		a.Items = items[a.ID]
		out[a.SolicitationID] = append(out[a.SolicitationID], a)
	}
	return out, nil
}

// ApplyDiff сохраняет изменения, вычисленные при переназначении.
// Отмены и обновления решений выполняются до вставок, чтобы не нарушить
// уникальность действующего решения поставщика.
func (r *PostgresAwardRepository) ApplyDiff(ctx context.Context, diff resolver.Diff) error {
	for _, item := range diff.Items {
		if _, err := r.DB.Exec(ctx, `UPDATE line_item SET item_status = $1 WHERE id = $2`, item.Status, item.ID); err != nil {
			return fmt.Errorf("update line item %s: %w", item.ID, err)
		}
	}

	for _, q := range diff.Quotes {
		if _, err := r.DB.Exec(ctx, `UPDATE quote SET status = $1, price = $2 WHERE id = $3`, q.Status, q.Price, q.ID); err != nil {
			return fmt.Errorf("update quote %s: %w", q.ID, err)
		}
	}

	for _, change := range diff.Awards {
		if change.Created {
			continue
		}
		a := change.Award
		_, err := r.DB.Exec(ctx, `
			UPDATE award
			SET quote_id = $1, status = $2, final_price = $3, reason = $4,
			    cancellation_reason = $5, cancelled_at = $6, updated_at = $7
			WHERE id = $8`,
			a.QuoteID, a.Status, a.FinalPrice, a.Reason, a.CancellationReason, a.CancelledAt, a.UpdatedAt, a.ID)
		if err != nil {
			return fmt.Errorf("update award %s: %w", a.ID, err)
		}
		if change.ItemsChanged {
			if err := r.replaceItems(ctx, a); err != nil {
				return err
			}
		}
	}

	for _, change := range diff.Awards {
		if !change.Created {
			continue
		}
		a := change.Award
		_, err := r.DB.Exec(ctx, `
			INSERT INTO award (id, solicitation_id, supplier_id, quote_id, status, final_price, reason,
			                   cancellation_reason, cancelled_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			a.ID, a.SolicitationID, a.SupplierID, a.QuoteID, a.Status, a.FinalPrice, a.Reason,
			a.CancellationReason, a.CancelledAt, a.CreatedAt, a.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert award for supplier %s: %w", a.SupplierID, err)
		}
		if err := r.replaceItems(ctx, a); err != nil {
			return err
		}
	}

	if sol := diff.Solicitation; sol != nil {
		_, err := r.DB.Exec(ctx, `UPDATE solicitation SET status = $1, updated_at = $2 WHERE id = $3`,
			sol.Status, sol.UpdatedAt, sol.ID)
		if err != nil {
			return fmt.Errorf("update solicitation %s: %w", sol.ID, err)
		}
	}
	return nil
}

func (r *PostgresAwardRepository) replaceItems(ctx context.Context, a models.Award) error {
	if _, err := r.DB.Exec(ctx, `DELETE FROM award_item WHERE award_id = $1`, a.ID); err != nil {
		return fmt.Errorf("clear award items %s: %w", a.ID, err)
	}
	for _, ai := range a.Items {
		_, err := r.DB.Exec(ctx, `
			INSERT INTO award_item (award_id, line_item_id, quote_item_id, unit_price, quantity)
			VALUES ($1, $2, $3, $4, $5)`,
			a.ID, ai.LineItemID, ai.QuoteItemID, ai.UnitPrice, ai.Quantity)
		if err != nil {
			return fmt.Errorf("insert award item %s/%s: %w", a.ID, ai.LineItemID, err)
		}
	}
	return nil
}
