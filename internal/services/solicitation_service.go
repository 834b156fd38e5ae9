package services

import (
	"context"
	"strings"
	"time"

	"github.com/senyabanana/rfq-service/internal/audit"
	"github.com/senyabanana/rfq-service/internal/models"
	"github.com/senyabanana/rfq-service/internal/repository"
	"github.com/senyabanana/rfq-service/internal/utils"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// allowedStatusTransition - допустимые ручные переходы статуса RFQ.
var allowedStatusTransition = map[models.SolicitationStatus][]models.SolicitationStatus{
	models.DraftSolicitation:     {models.PublishedSolicitation, models.CanceledSolicitation},
	models.PublishedSolicitation: {models.ClosedSolicitation, models.CanceledSolicitation},
	models.ClosedSolicitation:    {models.CanceledSolicitation},
	models.AwardedSolicitation:   {},
	models.CanceledSolicitation:  {},
}

// SolicitationService - жизненный цикл RFQ и его позиций.
type SolicitationService struct {
	Options
	Evaluator *EvaluationService
}

// NewSolicitationService создаёт новый экземпляр SolicitationService.
func NewSolicitationService(opts Options, evaluator *EvaluationService) *SolicitationService {
	return &SolicitationService{Options: opts.withDefaults(), Evaluator: evaluator}
}

// CreateSolicitation создаёт RFQ в статусе DRAFT.
func (s *SolicitationService) CreateSolicitation(ctx context.Context, req models.SolicitationRequest) (*models.Solicitation, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.OwnerID == "" {
		return nil, models.ValidationError("missing required fields: title, ownerId")
	}
	if req.Deadline.IsZero() {
		return nil, models.ValidationError("missing required field: deadline")
	}

	now := s.Now()
	sol := &models.Solicitation{
		ID:        s.NewID(),
		Title:     req.Title,
		OwnerID:   req.OwnerID,
		Status:    models.DraftSolicitation,
		Deadline:  req.Deadline.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	items, err := s.buildLineItems(sol.ID, req.Items, now)
	if err != nil {
		return nil, err
	}
	sol.Items = items

	err = s.Store.Tx.WithTx(ctx, func(tx pgx.Tx) error {
		return s.Store.WithTx(tx).Solicitations.CreateSolicitation(ctx, sol)
	})
	if err != nil {
		return nil, err
	}

	s.Audit.Record(ctx, audit.ActionCreate, "solicitation", sol.ID, sol.OwnerID, map[string]any{"items": len(items)})
	return sol, nil
}

// AddLineItems добавляет к черновику позиции из импорта.
func (s *SolicitationService) AddLineItems(ctx context.Context, solicitationID string, drafts []models.LineItemDraft) ([]models.LineItem, error) {
	if len(drafts) == 0 {
		return nil, models.ValidationError("no line items to add")
	}
	var items []models.LineItem
	err := s.inSolicitationTx(ctx, solicitationID, func(_ pgx.Tx, st *repository.Store, sol *models.Solicitation) error {
		if sol.Status != models.DraftSolicitation {
			return models.StateError("line items can only be added to a DRAFT solicitation, current status is %s", sol.Status)
		}
		var err error
		items, err = s.buildLineItems(sol.ID, drafts, s.Now())
		if err != nil {
			return err
		}
		return st.Solicitations.AddLineItems(ctx, items)
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// buildLineItems проверяет черновики позиций. Потолок цены может отсутствовать
// до публикации, мгновенная цена без потолка не допускается.
func (s *SolicitationService) buildLineItems(solicitationID string, drafts []models.LineItemDraft, now time.Time) ([]models.LineItem, error) {
	items := make([]models.LineItem, 0, len(drafts))
	for i, d := range drafts {
		name := strings.TrimSpace(d.ProductName)
		if name == "" {
			return nil, models.ValidationError("item %d: productName is required", i+1)
		}
		if d.Quantity <= 0 {
			return nil, models.ValidationError("item %d: quantity must be positive", i+1)
		}
		item := models.LineItem{
			ID:             s.NewID(),
			SolicitationID: solicitationID,
			ProductName:    name,
			Quantity:       d.Quantity,
			Unit:           strings.TrimSpace(d.Unit),
			CeilingPrice:   decimal.Zero,
			Status:         models.PendingItem,
			CreatedAt:      now,
		}
		if d.CeilingPrice != nil {
			if d.CeilingPrice.IsNegative() {
				return nil, models.ValidationError("item %d: ceilingPrice must not be negative", i+1)
			}
			item.CeilingPrice = d.CeilingPrice.Round(2)
		}
		if d.InstantPrice != nil {
			instant := d.InstantPrice.Round(2)
			if !instant.IsPositive() {
				return nil, models.ValidationError("item %d: instantPrice must be positive", i+1)
			}
			if !item.CeilingPrice.IsPositive() || instant.GreaterThan(item.CeilingPrice) {
				return nil, models.ValidationError("item %d: instantPrice must not exceed ceilingPrice", i+1)
			}
			item.InstantPrice = decimal.NewNullDecimal(instant)
		}
		items = append(items, item)
	}
	return items, nil
}

// Publish открывает RFQ для котировок.
func (s *SolicitationService) Publish(ctx context.Context, solicitationID, actorID string) (*models.Solicitation, error) {
	sol, err := s.transition(ctx, solicitationID, models.PublishedSolicitation, func(st *repository.Store, sol *models.Solicitation) error {
		items, err := st.Solicitations.ListLineItems(ctx, sol.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return models.ValidationError("solicitation has no line items")
		}
		for _, item := range items {
			if !item.CeilingPrice.IsPositive() {
				return models.ValidationError("line item %s (%s) has no positive ceiling price", item.ID, item.ProductName)
			}
		}
		if !sol.Deadline.After(s.Now()) {
			return models.ValidationError("deadline must be in the future")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Audit.Record(ctx, audit.ActionPublish, "solicitation", sol.ID, actorID, nil)
	return sol, nil
}

// Close прекращает приём котировок и запускает определение победителей.
// Закрытие фиксируется отдельно и не откатывается при ошибках оценки.
func (s *SolicitationService) Close(ctx context.Context, solicitationID, actorID string) (*models.EvaluationResult, error) {
	if _, err := s.transition(ctx, solicitationID, models.ClosedSolicitation, nil); err != nil {
		return nil, err
	}
	s.Audit.Record(ctx, audit.ActionClose, "solicitation", solicitationID, actorID, nil)
	return s.Evaluator.Evaluate(ctx, solicitationID, actorID)
}

// Cancel отменяет RFQ. Закрытый RFQ с выигранными позициями отменить нельзя.
func (s *SolicitationService) Cancel(ctx context.Context, solicitationID, actorID string) (*models.Solicitation, error) {
	sol, err := s.transition(ctx, solicitationID, models.CanceledSolicitation, func(st *repository.Store, sol *models.Solicitation) error {
		if sol.Status != models.ClosedSolicitation {
			return nil
		}
		items, err := st.Solicitations.ListLineItems(ctx, sol.ID)
		if err != nil {
			return err
		}
		for _, item := range items {
			if item.Status == models.AwardedItem {
				return models.StateError("solicitation has awarded line items and cannot be cancelled")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Audit.Record(ctx, audit.ActionCancel, "solicitation", sol.ID, actorID, nil)
	return sol, nil
}

// transition меняет статус RFQ под блокировкой после проверки check.
func (s *SolicitationService) transition(ctx context.Context, solicitationID string, to models.SolicitationStatus,
	check func(st *repository.Store, sol *models.Solicitation) error) (*models.Solicitation, error) {
	var updated *models.Solicitation
	err := s.inSolicitationTx(ctx, solicitationID, func(_ pgx.Tx, st *repository.Store, sol *models.Solicitation) error {
		if !utils.Contains(allowedStatusTransition[sol.Status], to) {
			return models.StateError("cannot change solicitation status from %s to %s", sol.Status, to)
		}
		if check != nil {
			if err := check(st, sol); err != nil {
				return err
			}
		}
		now := s.Now()
		if err := st.Solicitations.UpdateSolicitationStatus(ctx, sol.ID, to, now); err != nil {
			return err
		}
		sol.Status = to
		sol.UpdatedAt = now
		updated = sol
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("solicitation status changed", zap.String("solicitation_id", updated.ID), zap.String("status", string(to)))
	return updated, nil
}

// Delete удаляет черновик или отменённый RFQ без котировок.
func (s *SolicitationService) Delete(ctx context.Context, solicitationID, actorID string) error {
	err := s.inSolicitationTx(ctx, solicitationID, func(_ pgx.Tx, st *repository.Store, sol *models.Solicitation) error {
		switch sol.Status {
		case models.DraftSolicitation:
		case models.CanceledSolicitation:
			n, err := st.Quotes.CountQuotes(ctx, sol.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return models.StateError("cancelled solicitation has %d quotes and cannot be deleted", n)
			}
		default:
			return models.StateError("only DRAFT or CANCELLED solicitations can be deleted, current status is %s", sol.Status)
		}
		return st.Solicitations.DeleteSolicitation(ctx, sol.ID)
	})
	if err != nil {
		return err
	}
	s.Audit.Record(ctx, audit.ActionDelete, "solicitation", solicitationID, actorID, nil)
	return nil
}

// GetSolicitation возвращает RFQ с позициями.
func (s *SolicitationService) GetSolicitation(ctx context.Context, solicitationID string) (*models.Solicitation, error) {
	if !utils.ValidID(solicitationID) {
		return nil, ErrSolicitationNotFound
	}
	sol, err := s.Store.Solicitations.GetSolicitation(ctx, solicitationID)
	if err != nil {
		return nil, notFound(err, ErrSolicitationNotFound)
	}
	return sol, nil
}

// ListSolicitations возвращает список RFQ.
func (s *SolicitationService) ListSolicitations(ctx context.Context, ownerID string, statuses []string, limitStr, offsetStr string) ([]models.Solicitation, error) {
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.ValidationError("%s", err.Error())
	}
	for _, st := range statuses {
		if _, ok := allowedStatusTransition[models.SolicitationStatus(st)]; !ok {
			return nil, models.ValidationError("unsupported status: %s", st)
		}
	}
	return s.Store.Solicitations.ListSolicitations(ctx, models.SolicitationFilter{
		OwnerID:  ownerID,
		Statuses: statuses,
		Limit:    limit,
		Offset:   offset,
	})
}

// SetItemStatus снимает позицию с отбора (CANCELLED или OUT_OF_STOCK).
// Закрытый RFQ, у которого все позиции стали конечными, переводится в AWARDED.
func (s *SolicitationService) SetItemStatus(ctx context.Context, solicitationID, lineItemID string, status models.LineItemStatus, actorID string) (*models.LineItem, error) {
	if status != models.CanceledItem && status != models.OutOfStockItem {
		return nil, models.ValidationError("item status must be CANCELLED or OUT_OF_STOCK")
	}
	if !utils.ValidID(lineItemID) {
		return nil, ErrLineItemNotFound
	}

	var updated *models.LineItem
	err := s.inSolicitationTx(ctx, solicitationID, func(_ pgx.Tx, st *repository.Store, sol *models.Solicitation) error {
		if sol.Status != models.PublishedSolicitation && sol.Status != models.ClosedSolicitation {
			return models.StateError("item status can only change while the solicitation is PUBLISHED or CLOSED, current status is %s", sol.Status)
		}
		items, err := st.Solicitations.ListLineItems(ctx, sol.ID)
		if err != nil {
			return err
		}

		allTerminal := true
		for i := range items {
			if items[i].ID == lineItemID {
				if items[i].Status == models.AwardedItem {
					return models.StateError("line item is already awarded")
				}
				items[i].Status = status
				updated = &items[i]
			}
			if !items[i].Status.IsTerminal() {
				allTerminal = false
			}
		}
		if updated == nil {
			return ErrLineItemNotFound
		}
		if err := st.Solicitations.UpdateLineItemStatus(ctx, lineItemID, status); err != nil {
			return err
		}
		if sol.Status == models.ClosedSolicitation && allTerminal {
			return st.Solicitations.UpdateSolicitationStatus(ctx, sol.ID, models.AwardedSolicitation, s.Now())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Audit.Record(ctx, audit.ActionStatus, "line_item", lineItemID, actorID, map[string]any{"status": status})
	return updated, nil
}
