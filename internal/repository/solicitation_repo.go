package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/senyabanana/rfq-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
)

// SolicitationRepository - интерфейс для работы с RFQ и их позициями.
type SolicitationRepository interface {
	WithTx(tx pgx.Tx) SolicitationRepository
	CreateSolicitation(ctx context.Context, sol *models.Solicitation) error
	AddLineItems(ctx context.Context, items []models.LineItem) error
	GetSolicitation(ctx context.Context, id string) (*models.Solicitation, error)
	ListSolicitations(ctx context.Context, filter models.SolicitationFilter) ([]models.Solicitation, error)
	ListLineItems(ctx context.Context, solicitationID string) ([]models.LineItem, error)
	GetLineItem(ctx context.Context, id string) (*models.LineItem, error)
	UpdateSolicitationStatus(ctx context.Context, id string, status models.SolicitationStatus, now time.Time) error
	UpdateLineItemStatus(ctx context.Context, id string, status models.LineItemStatus) error
	MarkItemsQuoted(ctx context.Context, ids []string) error
	DeleteSolicitation(ctx context.Context, id string) error
	ListDueSolicitations(ctx context.Context, now time.Time) ([]string, error)
	ListUnevaluatedSolicitations(ctx context.Context) ([]string, error)
	MarkEvaluated(ctx context.Context, id string, now time.Time) (bool, error)
}

// PostgresSolicitationRepository - реализация SolicitationRepository для базы данных.
type PostgresSolicitationRepository struct {
	DB Querier
}

// NewPostgresSolicitationRepository создаёт новый экземпляр PostgresSolicitationRepository.
func NewPostgresSolicitationRepository(db Querier) *PostgresSolicitationRepository {
	return &PostgresSolicitationRepository{DB: db}
}

// WithTx возвращает репозиторий, работающий внутри транзакции.
func (r *PostgresSolicitationRepository) WithTx(tx pgx.Tx) SolicitationRepository {
	return &PostgresSolicitationRepository{DB: tx}
}

// CreateSolicitation сохраняет новый RFQ вместе с позициями.
func (r *PostgresSolicitationRepository) CreateSolicitation(ctx context.Context, sol *models.Solicitation) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO solicitation (id, title, owner_id, status, deadline, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sol.ID,
		sol.Title,
		sol.OwnerID,
		sol.Status,
		sol.Deadline,
		sol.CreatedAt,
		sol.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert solicitation: %w", err)
	}
	return r.AddLineItems(ctx, sol.Items)
}

// AddLineItems добавляет позиции к RFQ.
func (r *PostgresSolicitationRepository) AddLineItems(ctx context.Context, items []models.LineItem) error {
	for _, item := range items {
		_, err := r.DB.Exec(ctx, `
			INSERT INTO line_item (id, solicitation_id, product_name, quantity, unit, ceiling_price, instant_price, item_status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			item.ID,
			item.SolicitationID,
			item.ProductName,
			item.Quantity,
			item.Unit,
			item.CeilingPrice,
			item.InstantPrice,
			item.Status,
			item.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert line item %q: %w", item.ProductName, err)
		}
	}
	return nil
}

// GetSolicitation возвращает RFQ с позициями.
func (r *PostgresSolicitationRepository) GetSolicitation(ctx context.Context, id string) (*models.Solicitation, error) {
	var sol models.Solicitation
	err := r.DB.QueryRow(ctx, `
		SELECT id, title, owner_id, status, deadline, created_at, updated_at
		FROM solicitation WHERE id = $1`, id).Scan(
		&sol.ID,
		&sol.Title,
		&sol.OwnerID,
		&sol.Status,
		&sol.Deadline,
		&sol.CreatedAt,
		&sol.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get solicitation %s: %w", id, err)
	}

	sol.Items, err = r.ListLineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return &sol, nil
}

// ListSolicitations возвращает список RFQ по фильтру.
func (r *PostgresSolicitationRepository) ListSolicitations(ctx context.Context, filter models.SolicitationFilter) ([]models.Solicitation, error) {
	query := `SELECT id, title, owner_id, status, deadline, created_at, updated_at FROM solicitation`
	var filters []string
	var args []interface{}
	argIndex := 1

	if filter.OwnerID != "" {
		filters = append(filters, fmt.Sprintf("owner_id = $%d", argIndex))
		args = append(args, filter.OwnerID)
		argIndex++
	}
	if len(filter.Statuses) > 0 {
		filters = append(filters, fmt.Sprintf("status = ANY($%d)", argIndex))
		args = append(args, pq.Array(filter.Statuses))
		argIndex++
	}

	if len(filters) > 0 {
		query += " WHERE " + strings.Join(filters, " AND ")
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list solicitations: %w", err)
	}
	defer rows.Close()

	solicitations := []models.Solicitation{}
	for rows.Next() {
		var sol models.Solicitation
		if err := rows.Scan(
			&sol.ID,
			&sol.Title,
			&sol.OwnerID,
			&sol.Status,
			&sol.Deadline,
			&sol.CreatedAt,
			&sol.UpdatedAt); err != nil {
			return nil, err
		}
		solicitations = append(solicitations, sol)
	}
	return solicitations, rows.Err()
}

// ListLineItems возвращает позиции RFQ в порядке добавления.
func (r *PostgresSolicitationRepository) ListLineItems(ctx context.Context, solicitationID string) ([]models.LineItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, solicitation_id, product_name, quantity, unit, ceiling_price, instant_price, item_status, created_at
		FROM line_item WHERE solicitation_id = $1 ORDER BY created_at, id`, solicitationID)
	if err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	defer rows.Close()

	items := []models.LineItem{}
	for rows.Next() {
		var item models.LineItem
		if err := rows.Scan(
			&item.ID,
			&item.SolicitationID,
			&item.ProductName,
			&item.Quantity,
			&item.Unit,
			&item.CeilingPrice,
			&item.InstantPrice,
			&item.Status,
			&item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetLineItem возвращает позицию по идентификатору.
func (r *PostgresSolicitationRepository) GetLineItem(ctx context.Context, id string) (*models.LineItem, error) {
	var item models.LineItem
	err := r.DB.QueryRow(ctx, `
		SELECT id, solicitation_id, product_name, quantity, unit, ceiling_price, instant_price, item_status, created_at
		FROM line_item WHERE id = $1`, id).Scan(
		&item.ID,
		&item.SolicitationID,
		&item.ProductName,
		&item.Quantity,
		&item.Unit,
		&item.CeilingPrice,
		&item.InstantPrice,
		&item.Status,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get line item %s: %w", id, err)
	}
	return &item, nil
}

// UpdateSolicitationStatus меняет статус RFQ.
func (r *PostgresSolicitationRepository) UpdateSolicitationStatus(ctx context.Context, id string, status models.SolicitationStatus, now time.Time) error {
	tag, err := r.DB.Exec(ctx, `UPDATE solicitation SET status = $1, updated_at = $2 WHERE id = $3`, status, now, id)
	if err != nil {
		return fmt.Errorf("update solicitation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update solicitation %s: %w", id, pgx.ErrNoRows)
	}
	return nil
}

// UpdateLineItemStatus меняет статус позиции.
func (r *PostgresSolicitationRepository) UpdateLineItemStatus(ctx context.Context, id string, status models.LineItemStatus) error {
	tag, err := r.DB.Exec(ctx, `UPDATE line_item SET item_status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update line item status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update line item %s: %w", id, pgx.ErrNoRows)
	}
	return nil
}

// MarkItemsQuoted переводит позиции без котировок в статус QUOTED.
func (r *PostgresSolicitationRepository) MarkItemsQuoted(ctx context.Context, ids []string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE line_item SET item_status = $1
		WHERE id = ANY($2::text[]::uuid[]) AND item_status = $3`,
		models.QuotedItem, pq.Array(ids), models.PendingItem)
	if err != nil {
		return fmt.Errorf("mark items quoted: %w", err)
	}
	return nil
}

// DeleteSolicitation удаляет RFQ вместе со всеми зависимыми записями.
func (r *PostgresSolicitationRepository) DeleteSolicitation(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM solicitation WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete solicitation: %w", err)
	}
	return nil
}

// ListDueSolicitations возвращает опубликованные RFQ с истёкшим сроком.
func (r *PostgresSolicitationRepository) ListDueSolicitations(ctx context.Context, now time.Time) ([]string, error) {
	return r.listIDs(ctx, `SELECT id FROM solicitation WHERE status = $1 AND deadline <= $2 ORDER BY deadline`,
		models.PublishedSolicitation, now)
}

// ListUnevaluatedSolicitations возвращает закрытые RFQ, оценка которых
// ещё ни разу не была зафиксирована.
func (r *PostgresSolicitationRepository) ListUnevaluatedSolicitations(ctx context.Context) ([]string, error) {
	return r.listIDs(ctx, `SELECT id FROM solicitation WHERE status = $1 AND evaluated_at IS NULL ORDER BY deadline`,
		models.ClosedSolicitation)
}

// MarkEvaluated отмечает первую зафиксированную оценку RFQ. Возвращает
// false, если отметка уже стояла.
func (r *PostgresSolicitationRepository) MarkEvaluated(ctx context.Context, id string, now time.Time) (bool, error) {
	tag, err := r.DB.Exec(ctx, `UPDATE solicitation SET evaluated_at = $1 WHERE id = $2 AND evaluated_at IS NULL`, now, id)
	if err != nil {
		return false, fmt.Errorf("mark solicitation evaluated: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresSolicitationRepository) listIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list solicitation ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
