package repository

import (
	"context"
	"fmt"

	"github.com/senyabanana/rfq-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
)

// reportStatuses - статусы RFQ, по которым уже определяются победители.
var reportStatuses = []string{string(models.ClosedSolicitation), string(models.AwardedSolicitation)}

// ReportRepository выбирает RFQ, попадающие в отчёты.
type ReportRepository interface {
	WithTx(tx pgx.Tx) ReportRepository
	SolicitationsForSupplier(ctx context.Context, supplierID string) ([]models.Solicitation, error)
	SolicitationsForOwner(ctx context.Context, ownerID string) ([]models.Solicitation, error)
	EvaluatedSolicitations(ctx context.Context) ([]models.Solicitation, error)
}

// PostgresReportRepository - реализация ReportRepository для базы данных.
type PostgresReportRepository struct {
	DB Querier
}

// NewPostgresReportRepository создаёт новый экземпляр PostgresReportRepository.
func NewPostgresReportRepository(db Querier) *PostgresReportRepository {
	return &PostgresReportRepository{DB: db}
}

// WithTx возвращает репозиторий, работающий внутри транзакции.
func (r *PostgresReportRepository) WithTx(tx pgx.Tx) ReportRepository {
	return &PostgresReportRepository{DB: tx}
}

// SolicitationsForSupplier возвращает RFQ, в которых поставщик подавал котировки.
func (r *PostgresReportRepository) SolicitationsForSupplier(ctx context.Context, supplierID string) ([]models.Solicitation, error) {
	return r.list(ctx, `
		SELECT s.id, s.title, s.owner_id, s.status, s.deadline, s.created_at, s.updated_at
		FROM solicitation s
		WHERE s.status = ANY($1)
		  AND EXISTS (SELECT 1 FROM quote q WHERE q.solicitation_id = s.id AND q.supplier_id = $2)
		ORDER BY s.deadline, s.id`, pq.Array(reportStatuses), supplierID)
}

// SolicitationsForOwner возвращает RFQ покупателя.
func (r *PostgresReportRepository) SolicitationsForOwner(ctx context.Context, ownerID string) ([]models.Solicitation, error) {
	return r.list(ctx, `
		SELECT id, title, owner_id, status, deadline, created_at, updated_at
		FROM solicitation
		WHERE status = ANY($1) AND owner_id = $2
		ORDER BY deadline, id`, pq.Array(reportStatuses), ownerID)
}

// EvaluatedSolicitations возвращает все закрытые и завершённые RFQ.
func (r *PostgresReportRepository) EvaluatedSolicitations(ctx context.Context) ([]models.Solicitation, error) {
	return r.list(ctx, `
		SELECT id, title, owner_id, status, deadline, created_at, updated_at
		FROM solicitation
		WHERE status = ANY($1)
		ORDER BY deadline, id`, pq.Array(reportStatuses))
}

func (r *PostgresReportRepository) list(ctx context.Context, query string, args ...any) ([]models.Solicitation, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list report solicitations: %w", err)
	}
	defer rows.Close()

	var sols []models.Solicitation
	for rows.Next() {
		var sol models.Solicitation
		if err := rows.Scan(&sol.ID, &sol.Title, &sol.OwnerID, &sol.Status, &sol.Deadline, &sol.CreatedAt, &sol.UpdatedAt); err != nil {
			return nil, err
		}
		sols = append(sols, sol)
	}
	return sols, rows.Err()
}
