package services

import (
	"context"

	"github.com/senyabanana/rfq-service/internal/audit"
	"github.com/senyabanana/rfq-service/internal/models"
	"github.com/senyabanana/rfq-service/internal/notify"
	"github.com/senyabanana/rfq-service/internal/repository"
	"github.com/senyabanana/rfq-service/internal/resolver"
	"github.com/senyabanana/rfq-service/internal/utils"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// AwardService - ручное назначение победителей и просмотр решений.
type AwardService struct {
	Options
}

// NewAwardService создаёт новый экземпляр AwardService.
func NewAwardService(opts Options) *AwardService {
	return &AwardService{Options: opts.withDefaults()}
}

// AwardItem назначает победителем позиции указанную цену поставщика.
// Все пересчёты выполняются в одной транзакции: либо применяются целиком,
// либо не применяются вовсе.
func (s *AwardService) AwardItem(ctx context.Context, solicitationID, lineItemID string, req models.AwardItemRequest) (*models.AwardOutcome, error) {
	if !utils.ValidID(lineItemID) || !utils.ValidID(req.QuoteID) || !utils.ValidID(req.QuoteItemID) {
		return nil, models.ValidationError("lineItemId, quoteId and quoteItemId must be valid identifiers")
	}

	var (
		outcome *models.AwardOutcome
		quoteID string
	)
	err := s.inSolicitationTx(ctx, solicitationID, func(tx pgx.Tx, st *repository.Store, sol *models.Solicitation) error {
		if sol.Status != models.ClosedSolicitation && sol.Status != models.AwardedSolicitation {
			return models.StateError("award override requires a CLOSED or AWARDED solicitation, current status is %s", sol.Status)
		}

		snap, err := st.Snapshots().Load(ctx, *sol)
		if err != nil {
			return err
		}

		res, err := resolver.Reassign(snap, resolver.Assignment{
			LineItemID:   lineItemID,
			QuoteID:      req.QuoteID,
			QuoteItemID:  req.QuoteItemID,
			Reason:       req.Reason,
			Manual:       true,
			CancelReason: models.ManualReawardReason,
			Now:          s.Now(),
			NewID:        s.NewID,
		})
		if err != nil {
			return resolverError(err)
		}
		if err := s.verify(res.Snapshot); err != nil {
			return resolverError(err)
		}
		if err := st.Awards.ApplyDiff(ctx, res.Diff); err != nil {
			return err
		}

		item, _ := res.Snapshot.Item(lineItemID)
		award, _ := res.Snapshot.ActiveAward(res.Winner.SupplierID)
		outcome = &models.AwardOutcome{
			Winner:     toWinner(*item, res.Winner),
			Award:      *award,
			Superseded: res.Superseded,
		}
		if outcome.Superseded == nil {
			outcome.Superseded = []string{}
		}
		quoteID = res.Winner.QuoteID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("line item awarded",
		zap.String("solicitation_id", solicitationID),
		zap.String("line_item_id", lineItemID),
		zap.String("supplier_id", outcome.Winner.SupplierID),
		zap.Strings("superseded", outcome.Superseded),
	)

	s.Audit.Record(ctx, audit.ActionAward, "line_item", lineItemID, req.ActorID, map[string]any{
		"solicitationId": solicitationID,
		"quoteId":        quoteID,
		"quoteItemId":    req.QuoteItemID,
		"reason":         req.Reason,
		"superseded":     outcome.Superseded,
	})

	s.notify(ctx, notify.Recipient{SupplierID: outcome.Winner.SupplierID}, notify.AwardWon, map[string]any{
		"solicitationId": solicitationID,
		"lineItemId":     lineItemID,
		"awardId":        outcome.Award.ID,
		"finalPrice":     outcome.Award.FinalPrice.StringFixed(2),
	})
	for _, supplierID := range outcome.Superseded {
		s.notify(ctx, notify.Recipient{SupplierID: supplierID}, notify.AwardRevoked, map[string]any{
			"solicitationId": solicitationID,
			"lineItemId":     lineItemID,
		})
	}
	return outcome, nil
}

// Winners заново определяет победителей по всем позициям в статусе AWARDED.
func (s *AwardService) Winners(ctx context.Context, solicitationID string) ([]models.Winner, error) {
	snap, err := s.loadSnapshot(ctx, solicitationID)
	if err != nil {
		return nil, err
	}

	decisions, failures := snap.Winners()
	for lineID, ferr := range failures {
		s.Log.Error("winner determination failed",
			zap.String("solicitation_id", solicitationID),
			zap.String("line_item_id", lineID),
			zap.Error(ferr),
		)
	}

	winners := []models.Winner{}
	for _, item := range snap.Items {
		if d, ok := decisions[item.ID]; ok {
			winners = append(winners, toWinner(item, d))
		}
	}
	return winners, nil
}

// ListAwards возвращает решения RFQ, включая отменённые.
func (s *AwardService) ListAwards(ctx context.Context, solicitationID string) ([]models.Award, error) {
	snap, err := s.loadSnapshot(ctx, solicitationID)
	if err != nil {
		return nil, err
	}
	awards := snap.Awards
	if awards == nil {
		awards = []models.Award{}
	}
	return awards, nil
}

func toWinner(item models.LineItem, d resolver.Decision) models.Winner {
	return models.Winner{
		LineItemID:  item.ID,
		QuoteItemID: d.QuoteItemID,
		QuoteID:     d.QuoteID,
		SupplierID:  d.SupplierID,
		UnitPrice:   d.UnitPrice,
		Quantity:    item.Quantity,
		Total:       resolver.LineTotal(d.UnitPrice, item.Quantity),
		Rule:        string(d.Rule),
	}
}
