package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/senyabanana/rfq-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSolicitations struct {
	SolicitationService
	created  models.SolicitationRequest
	closedBy string
	err      error
}

func (f *fakeSolicitations) CreateSolicitation(_ context.Context, req models.SolicitationRequest) (*models.Solicitation, error) {
	f.created = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Solicitation{ID: "sol-1", Title: req.Title, OwnerID: req.OwnerID, Status: models.DraftSolicitation}, nil
}

func (f *fakeSolicitations) GetSolicitation(_ context.Context, id string) (*models.Solicitation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Solicitation{ID: id}, nil
}

func (f *fakeSolicitations) Close(_ context.Context, id, actorID string) (*models.EvaluationResult, error) {
	f.closedBy = actorID
	if f.err != nil {
		return nil, f.err
	}
	return &models.EvaluationResult{SolicitationID: id, Evaluated: 2, Unquoted: []string{}, Status: models.AwardedSolicitation}, nil
}

func (f *fakeSolicitations) SetItemStatus(_ context.Context, solicitationID, lineItemID string, status models.LineItemStatus, _ string) (*models.LineItem, error) {
	return &models.LineItem{ID: lineItemID, SolicitationID: solicitationID, Status: status}, nil
}

type fakeAwards struct {
	AwardService
	got models.AwardItemRequest
	ids [2]string
}

func (f *fakeAwards) AwardItem(_ context.Context, solicitationID, lineItemID string, req models.AwardItemRequest) (*models.AwardOutcome, error) {
	f.got = req
	f.ids = [2]string{solicitationID, lineItemID}
	return &models.AwardOutcome{
		Winner:     models.Winner{LineItemID: lineItemID, QuoteItemID: req.QuoteItemID, UnitPrice: decimal.RequireFromString("12")},
		Superseded: []string{"x"},
	}, nil
}

func decodeReason(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Reason string `json:"reason"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Reason
}

func TestCreateSolicitation(t *testing.T) {
	svc := &fakeSolicitations{}
	h := NewSolicitationHandler(svc, nil, zap.NewNop(), time.Second)

	body := `{"title":"Office","ownerId":"buyer-1","deadline":"2030-01-01T00:00:00Z","items":[{"productName":"Paper","quantity":10,"ceilingPrice":"20"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/solicitations", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.CreateSolicitation(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Len(t, svc.created.Items, 1)
	assert.True(t, decimal.RequireFromString("20").Equal(*svc.created.Items[0].CeilingPrice))

	var sol models.Solicitation
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sol))
	assert.Equal(t, "sol-1", sol.ID)
}

func TestCreateSolicitationInvalidBody(t *testing.T) {
	h := NewSolicitationHandler(&fakeSolicitations{}, nil, zap.NewNop(), time.Second)

	rec := httptest.NewRecorder()
	h.CreateSolicitation(rec, httptest.NewRequest(http.MethodPost, "/api/solicitations", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", decodeReason(t, rec))
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		reason string
	}{
		{"not found", models.NotFoundError("solicitation not found"), http.StatusNotFound, "solicitation not found"},
		{"state", models.StateError("solicitation must be CLOSED"), http.StatusConflict, "solicitation must be CLOSED"},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, "request timed out"},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, "failed to fetch solicitation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSolicitationHandler(&fakeSolicitations{err: tt.err}, nil, zap.NewNop(), time.Second)
			req := httptest.NewRequest(http.MethodGet, "/api/solicitations/abc", nil)
			req.SetPathValue("id", "abc")
			rec := httptest.NewRecorder()

			h.GetSolicitation(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.reason, decodeReason(t, rec))
		})
	}
}

func TestCloseReturnsEvaluation(t *testing.T) {
	svc := &fakeSolicitations{}
	h := NewSolicitationHandler(svc, nil, zap.NewNop(), time.Second)

	req := httptest.NewRequest(http.MethodPut, "/api/solicitations/sol-1/close?actor=buyer-1", nil)
	req.SetPathValue("id", "sol-1")
	rec := httptest.NewRecorder()
	h.Close(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "buyer-1", svc.closedBy)

	var result models.EvaluationResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, 2, result.Evaluated)
	assert.Equal(t, models.AwardedSolicitation, result.Status)
}

func TestSetItemStatusFromQuery(t *testing.T) {
	h := NewSolicitationHandler(&fakeSolicitations{}, nil, zap.NewNop(), time.Second)

	req := httptest.NewRequest(http.MethodPut, "/api/solicitations/sol-1/items/l1/status?status=OUT_OF_STOCK", nil)
	req.SetPathValue("id", "sol-1")
	req.SetPathValue("itemId", "l1")
	rec := httptest.NewRecorder()
	h.SetItemStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var item models.LineItem
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&item))
	assert.Equal(t, models.OutOfStockItem, item.Status)
}

func TestAwardItem(t *testing.T) {
	svc := &fakeAwards{}
	h := NewAwardHandler(svc, zap.NewNop(), time.Second)

	body := `{"quoteId":"q-1","quoteItemId":"qi-1","reason":"faster delivery"}`
	req := httptest.NewRequest(http.MethodPost, "/api/solicitations/sol-1/items/l1/award?actor=op-1", strings.NewReader(body))
	req.SetPathValue("id", "sol-1")
	req.SetPathValue("itemId", "l1")
	rec := httptest.NewRecorder()
	h.AwardItem(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, [2]string{"sol-1", "l1"}, svc.ids)
	assert.Equal(t, "op-1", svc.got.ActorID)
	assert.Equal(t, "faster delivery", svc.got.Reason)

	var outcome models.AwardOutcome
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&outcome))
	assert.Equal(t, "qi-1", outcome.Winner.QuoteItemID)
	assert.Equal(t, []string{"x"}, outcome.Superseded)
}
