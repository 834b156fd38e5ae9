package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/senyabanana/rfq-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// maxTxAttempts - сколько раз повторяется транзакция при конфликте сериализации.
const maxTxAttempts = 3

// Querier - общий интерфейс пула соединений и транзакции.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxManager запускает транзакции поверх пула.
type TxManager struct {
	Pool *pgxpool.Pool
}

// NewTxManager создаёт новый экземпляр TxManager.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{Pool: pool}
}

// WithSolicitationTx выполняет fn в сериализуемой транзакции, предварительно
// заблокировав строку RFQ. Конфликты сериализации повторяются.
func (m *TxManager) WithSolicitationTx(ctx context.Context, solicitationID string, fn func(tx pgx.Tx, sol *models.Solicitation) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = pgx.BeginTxFunc(ctx, m.Pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
			sol, err := lockSolicitation(ctx, tx, solicitationID)
			if err != nil {
				return err
			}
			return fn(tx, sol)
		})
		if !IsRetryable(err) {
			return err
		}
	}
	return fmt.Errorf("solicitation %s: transaction retries exhausted: %w", solicitationID, err)
}

// WithTx выполняет fn в сериализуемой транзакции без блокировки RFQ.
func (m *TxManager) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = pgx.BeginTxFunc(ctx, m.Pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, fn)
		if !IsRetryable(err) {
			return err
		}
	}
	return fmt.Errorf("transaction retries exhausted: %w", err)
}

// WithReadTx выполняет fn в читающей транзакции с согласованным снимком данных.
func (m *TxManager) WithReadTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return pgx.BeginTxFunc(ctx, m.Pool, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	}, fn)
}

// Savepoint выполняет fn во вложенной транзакции: при ошибке откатывается
// только она.
func Savepoint(ctx context.Context, tx pgx.Tx, fn func(tx pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, tx, fn)
}

// IsRetryable сообщает, что транзакцию можно повторить.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// IsNotFound сообщает, что запрос не вернул строк.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func lockSolicitation(ctx context.Context, tx pgx.Tx, id string) (*models.Solicitation, error) {
	var sol models.Solicitation
	err := tx.QueryRow(ctx, `
		SELECT id, title, owner_id, status, deadline, created_at, updated_at
		FROM solicitation WHERE id = $1 FOR UPDATE`, id).Scan(
		&sol.ID,
		&sol.Title,
		&sol.OwnerID,
		&sol.Status,
		&sol.Deadline,
		&sol.CreatedAt,
		&sol.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("lock solicitation %s: %w", id, err)
	}
	return &sol, nil
}
