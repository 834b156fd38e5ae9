package services

import (
	"context"

	"github.com/senyabanana/rfq-service/internal/audit"
	"github.com/senyabanana/rfq-service/internal/models"
	"github.com/senyabanana/rfq-service/internal/notify"
	"github.com/senyabanana/rfq-service/internal/repository"
	"github.com/senyabanana/rfq-service/internal/resolver"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// EvaluationService определяет победителей по всем позициям закрытого RFQ.
type EvaluationService struct {
	Options
}

// NewEvaluationService создаёт новый экземпляр EvaluationService.
func NewEvaluationService(opts Options) *EvaluationService {
	return &EvaluationService{Options: opts.withDefaults()}
}

// Evaluate проходит по незакрытым позициям RFQ в статусе CLOSED. Каждая
// позиция обрабатывается в отдельной точке сохранения: ошибка по одной
// позиции попадает в отчёт и не мешает остальным. Вместе с результатом
// фиксируется отметка об оценке, по которой планировщик находит RFQ,
// оставшиеся без неё.
func (s *EvaluationService) Evaluate(ctx context.Context, solicitationID, actorID string) (*models.EvaluationResult, error) {
	var (
		result  *models.EvaluationResult
		final   *resolver.Snapshot
		awarded map[string]bool
		first   bool
	)

	err := s.inSolicitationTx(ctx, solicitationID, func(tx pgx.Tx, st *repository.Store, sol *models.Solicitation) error {
		if sol.Status != models.ClosedSolicitation {
			return models.StateError("solicitation must be CLOSED to evaluate, current status is %s", sol.Status)
		}

		snap, err := st.Snapshots().Load(ctx, *sol)
		if err != nil {
			return err
		}

		result = &models.EvaluationResult{SolicitationID: sol.ID, Unquoted: []string{}}
		awarded = make(map[string]bool)

		for _, item := range snap.Items {
			if item.Status.IsTerminal() {
				continue
			}
			if len(snap.Candidates(item.ID)) == 0 {
				result.Unquoted = append(result.Unquoted, item.ID)
				continue
			}

			var next *resolver.Snapshot
			err := repository.Savepoint(ctx, tx, func(sp pgx.Tx) error {
				res, err := resolver.AutoAssign(snap, item.ID, s.Now(), s.NewID)
				if err != nil {
					return err
				}
				if err := s.verify(res.Snapshot); err != nil {
					return err
				}
				if err := st.WithTx(sp).Awards.ApplyDiff(ctx, res.Diff); err != nil {
					return err
				}
				for _, change := range res.Diff.Awards {
					awarded[change.Award.SupplierID] = true
				}
				next = res.Snapshot
				return nil
			})
			if err != nil {
				s.Log.Warn("line item evaluation failed",
					zap.String("solicitation_id", sol.ID),
					zap.String("line_item_id", item.ID),
					zap.Error(err),
				)
				result.Failed++
				result.Errors = append(result.Errors, models.ItemEvaluationError{LineItemID: item.ID, Message: err.Error()})
				continue
			}
			result.Evaluated++
			snap = next
		}

		if snap.Solicitation.Status == models.ClosedSolicitation && snap.AllTerminal() {
			snap.Solicitation.Status = models.AwardedSolicitation
			if err := st.Solicitations.UpdateSolicitationStatus(ctx, sol.ID, models.AwardedSolicitation, s.Now()); err != nil {
				return err
			}
		}

		first, err = st.Solicitations.MarkEvaluated(ctx, sol.ID, s.Now())
		if err != nil {
			return err
		}

		result.Status = snap.Solicitation.Status
		final = snap
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("solicitation evaluated",
		zap.String("solicitation_id", solicitationID),
		zap.Int("evaluated", result.Evaluated),
		zap.Int("failed", result.Failed),
		zap.Int("unquoted", len(result.Unquoted)),
		zap.String("status", string(result.Status)),
	)

	s.Audit.Record(ctx, audit.ActionEvaluate, "solicitation", solicitationID, actorID, map[string]any{
		"evaluated": result.Evaluated,
		"failed":    result.Failed,
		"unquoted":  result.Unquoted,
		"status":    result.Status,
	})

	for _, aw := range final.ActiveAwards() {
		if !awarded[aw.SupplierID] {
			continue
		}
		s.notify(ctx, notify.Recipient{SupplierID: aw.SupplierID}, notify.AwardWon, map[string]any{
			"solicitationId": solicitationID,
			"awardId":        aw.ID,
			"finalPrice":     aw.FinalPrice.StringFixed(2),
			"items":          len(aw.Items),
		})
	}
	s.notify(ctx, notify.Recipient{Role: notify.OperatorRole}, notify.Evaluated, map[string]any{
		"solicitationId": solicitationID,
		"evaluated":      result.Evaluated,
		"failed":         result.Failed,
		"status":         result.Status,
	})
	// Об одних и тех же позициях без котировок оператор узнаёт один раз.
	if first && len(result.Unquoted) > 0 {
		s.notify(ctx, notify.Recipient{Role: notify.OperatorRole}, notify.UnquotedItems, map[string]any{
			"solicitationId": solicitationID,
			"lineItemIds":    result.Unquoted,
		})
	}
	return result, nil
}
