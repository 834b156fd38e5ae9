// Package audit ведёт журнал действий над RFQ и решениями.
package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Действия журнала.
const (
	ActionCreate   = "CREATE"
	ActionPublish  = "PUBLISH"
	ActionClose    = "CLOSE"
	ActionCancel   = "CANCEL"
	ActionDelete   = "DELETE"
	ActionEvaluate = "EVALUATE"
	ActionAward    = "AWARD_ITEM"
	ActionReject   = "REJECT"
	ActionStatus   = "ITEM_STATUS"
	ActionSubmit   = "SUBMIT"
)

// Recorder записывает действие. Ошибки записи не возвращаются вызывающему.
type Recorder interface {
	Record(ctx context.Context, action, resourceType, resourceID, actorID string, details map[string]any)
}

// PostgresRecorder пишет журнал в таблицу audit_log.
type PostgresRecorder struct {
	DB  *pgxpool.Pool
	log *zap.Logger
}

// NewPostgresRecorder создаёт новый экземпляр PostgresRecorder.
func NewPostgresRecorder(db *pgxpool.Pool, log *zap.Logger) *PostgresRecorder {
	return &PostgresRecorder{DB: db, log: log}
}

// Record реализует Recorder.
func (r *PostgresRecorder) Record(ctx context.Context, action, resourceType, resourceID, actorID string, details map[string]any) {
	if details == nil {
		details = map[string]any{}
	}
	payload, err := json.Marshal(details)
	if err != nil {
		r.log.Error("audit details marshal failed", zap.String("action", action), zap.Error(err))
		return
	}

	_, err = r.DB.Exec(ctx, `
		INSERT INTO audit_log (action, resource_type, resource_id, actor_id, details)
		VALUES ($1, $2, $3, $4, $5)`,
		action, resourceType, resourceID, actorID, payload)
	if err != nil {
		r.log.Error("audit record failed",
			zap.String("action", action),
			zap.String("resource_type", resourceType),
			zap.String("resource_id", resourceID),
			zap.Error(err),
		)
	}
}

// Nop ничего не записывает.
type Nop struct{}

// Record реализует Recorder.
func (Nop) Record(context.Context, string, string, string, string, map[string]any) {}
