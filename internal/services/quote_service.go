package services

import (
	"context"

	"github.com/senyabanana/rfq-service/internal/audit"
	"github.com/senyabanana/rfq-service/internal/models"
	"github.com/senyabanana/rfq-service/internal/repository"
	"github.com/senyabanana/rfq-service/internal/utils"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// QuoteService - подача и отклонение котировок.
type QuoteService struct {
	Options
}

// NewQuoteService создаёт новый экземпляр QuoteService.
func NewQuoteService(opts Options) *QuoteService {
	return &QuoteService{Options: opts.withDefaults()}
}

// SubmitQuote принимает котировку по опубликованному RFQ до истечения срока.
// Цена каждой позиции должна быть положительной и не выше потолка.
func (s *QuoteService) SubmitQuote(ctx context.Context, solicitationID string, req models.QuoteRequest) (*models.Quote, error) {
	if req.SupplierID == "" {
		return nil, models.ValidationError("missing required field: supplierId")
	}
	if len(req.Items) == 0 {
		return nil, models.ValidationError("quote has no items")
	}

	var quote *models.Quote
	err := s.inSolicitationTx(ctx, solicitationID, func(_ pgx.Tx, st *repository.Store, sol *models.Solicitation) error {
		now := s.Now()
		if sol.Status != models.PublishedSolicitation {
			return models.StateError("quotes are accepted only while the solicitation is PUBLISHED, current status is %s", sol.Status)
		}
		if !now.Before(sol.Deadline) {
			return models.StateError("solicitation deadline has passed")
		}

		items, err := st.Solicitations.ListLineItems(ctx, sol.ID)
		if err != nil {
			return err
		}
		byID := make(map[string]models.LineItem, len(items))
		for _, item := range items {
			byID[item.ID] = item
		}

		quote = &models.Quote{
			ID:             s.NewID(),
			SolicitationID: sol.ID,
			SupplierID:     req.SupplierID,
			Status:         models.SubmittedQuote,
			Price:          decimal.Zero,
			SubmittedAt:    now,
		}
		seen := make(map[string]bool, len(req.Items))
		lineIDs := make([]string, 0, len(req.Items))
		for _, qi := range req.Items {
			item, ok := byID[qi.LineItemID]
			if !ok {
				return models.ValidationError("line item %s does not belong to solicitation %s", qi.LineItemID, sol.ID)
			}
			if seen[qi.LineItemID] {
				return models.ValidationError("line item %s is quoted twice", qi.LineItemID)
			}
			seen[qi.LineItemID] = true
			if item.Status.IsTerminal() {
				return models.StateError("line item %s is %s and accepts no quotes", item.ID, item.Status)
			}
			price := qi.UnitPrice.Round(2)
			if !price.IsPositive() {
				return models.ValidationError("line item %s: unitPrice must be positive", item.ID)
			}
			if price.GreaterThan(item.CeilingPrice) {
				return models.ValidationError("line item %s: unitPrice %s exceeds ceiling price %s",
					item.ID, price.StringFixed(2), item.CeilingPrice.StringFixed(2))
			}
			quote.Items = append(quote.Items, models.QuoteItem{
				ID:         s.NewID(),
				QuoteID:    quote.ID,
				LineItemID: item.ID,
				UnitPrice:  price,
			})
			lineIDs = append(lineIDs, item.ID)
		}

		if err := st.Quotes.CreateQuote(ctx, quote); err != nil {
			return err
		}
		return st.Solicitations.MarkItemsQuoted(ctx, lineIDs)
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("quote submitted",
		zap.String("solicitation_id", solicitationID),
		zap.String("quote_id", quote.ID),
		zap.String("supplier_id", quote.SupplierID),
		zap.Int("items", len(quote.Items)),
	)
	s.Audit.Record(ctx, audit.ActionSubmit, "quote", quote.ID, quote.SupplierID, map[string]any{"solicitationId": solicitationID})
	return quote, nil
}

// GetQuote возвращает котировку с ценами.
func (s *QuoteService) GetQuote(ctx context.Context, quoteID string) (*models.Quote, error) {
	if !utils.ValidID(quoteID) {
		return nil, ErrQuoteNotFound
	}
	q, err := s.Store.Quotes.GetQuote(ctx, quoteID)
	if err != nil {
		return nil, notFound(err, ErrQuoteNotFound)
	}
	return q, nil
}

// ListQuotes возвращает котировки RFQ.
func (s *QuoteService) ListQuotes(ctx context.Context, solicitationID string) ([]models.Quote, error) {
	if !utils.ValidID(solicitationID) {
		return nil, ErrSolicitationNotFound
	}
	if _, err := s.Store.Solicitations.GetSolicitation(ctx, solicitationID); err != nil {
		return nil, notFound(err, ErrSolicitationNotFound)
	}
	return s.Store.Quotes.ListQuotes(ctx, solicitationID)
}

// RejectQuote отклоняет котировку до закрытия RFQ. Отклонённая котировка не
// участвует в определении победителей.
func (s *QuoteService) RejectQuote(ctx context.Context, quoteID, actorID, reason string) (*models.Quote, error) {
	q, err := s.GetQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	err = s.inSolicitationTx(ctx, q.SolicitationID, func(_ pgx.Tx, st *repository.Store, sol *models.Solicitation) error {
		if sol.Status != models.PublishedSolicitation {
			return models.StateError("quotes can only be rejected while the solicitation is PUBLISHED, current status is %s", sol.Status)
		}
		current, err := st.Quotes.GetQuote(ctx, quoteID)
		if err != nil {
			return notFound(err, ErrQuoteNotFound)
		}
		if current.Status == models.RejectedQuote {
			q = current
			return nil
		}
		if err := st.Quotes.UpdateQuoteStatus(ctx, quoteID, models.RejectedQuote); err != nil {
			return err
		}
		current.Status = models.RejectedQuote
		q = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Audit.Record(ctx, audit.ActionReject, "quote", quoteID, actorID, map[string]any{"reason": reason})
	return q, nil
}
