package services

import (
	"context"
	"time"

	"github.com/senyabanana/rfq-service/internal/audit"
	"github.com/senyabanana/rfq-service/internal/models"
	"github.com/senyabanana/rfq-service/internal/notify"
	"github.com/senyabanana/rfq-service/internal/repository"
	"github.com/senyabanana/rfq-service/internal/resolver"
	"github.com/senyabanana/rfq-service/internal/utils"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Options - общие зависимости сервисов.
type Options struct {
	Store    *repository.Store
	Notifier notify.Notifier
	Audit    audit.Recorder
	Log      *zap.Logger
	// CheckConsistency включает проверку инвариантов перед каждой фиксацией.
	CheckConsistency bool
	Now              func() time.Time
	NewID            func() string
}

func (o Options) withDefaults() Options {
	if o.Notifier == nil {
		o.Notifier = notify.Multi{}
	}
	if o.Audit == nil {
		o.Audit = audit.Nop{}
	}
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	if o.NewID == nil {
		o.NewID = utils.NewID
	}
	return o
}

// verify проверяет инварианты снимка, если проверка включена.
func (o Options) verify(s *resolver.Snapshot) error {
	if !o.CheckConsistency {
		return nil
	}
	return resolver.CheckInvariants(s)
}

// notify отправляет событие и только логирует ошибку доставки. Решение уже
// зафиксировано, поэтому отмена запроса на доставку не влияет.
func (o Options) notify(ctx context.Context, to notify.Recipient, eventType string, payload map[string]any) {
	if err := o.Notifier.Notify(context.WithoutCancel(ctx), to, eventType, payload); err != nil {
		o.Log.Warn("notification failed",
			zap.String("event", eventType),
			zap.String("recipient", to.Key()),
			zap.Error(err),
		)
	}
}

// inSolicitationTx выполняет fn в транзакции, заблокировав строку RFQ.
func (o Options) inSolicitationTx(ctx context.Context, id string, fn func(tx pgx.Tx, st *repository.Store, sol *models.Solicitation) error) error {
	if !utils.ValidID(id) {
		return ErrSolicitationNotFound
	}
	err := o.Store.Tx.WithSolicitationTx(ctx, id, func(tx pgx.Tx, sol *models.Solicitation) error {
		return fn(tx, o.Store.WithTx(tx), sol)
	})
	return notFound(err, ErrSolicitationNotFound)
}

// loadSnapshot читает согласованный снимок RFQ вне пишущей транзакции.
func (o Options) loadSnapshot(ctx context.Context, id string) (*resolver.Snapshot, error) {
	if !utils.ValidID(id) {
		return nil, ErrSolicitationNotFound
	}
	var snap *resolver.Snapshot
	err := o.Store.Tx.WithReadTx(ctx, func(tx pgx.Tx) error {
		st := o.Store.WithTx(tx)
		sol, err := st.Solicitations.GetSolicitation(ctx, id)
		if err != nil {
			return notFound(err, ErrSolicitationNotFound)
		}
		snap, err = st.Snapshots().Load(ctx, *sol)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}
