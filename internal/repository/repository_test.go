package repository_test

import (
	"context"
	"flag"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/senyabanana/rfq-service/internal/models"
	"github.com/senyabanana/rfq-service/internal/repository"
	"github.com/senyabanana/rfq-service/internal/testutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pool *pgxpool.Pool

func TestMain(m *testing.M) {
	flag.Parse()
	var stop func()
	if !testing.Short() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		p, s, err := testutil.StartPostgres(ctx)
		cancel()
		if err == nil {
			pool, stop = p, s
		}
	}
	code := m.Run()
	if stop != nil {
		stop()
	}
	os.Exit(code)
}

func requirePool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test")
	}
	if pool == nil {
		t.Skip("postgres is not available")
	}
	return pool
}

// seed сохраняет RFQ с одной позицией и котировкой по ней.
func seed(t *testing.T, store *repository.Store, now time.Time) (models.Solicitation, models.Quote) {
	t.Helper()
	ctx := context.Background()

	sol := models.Solicitation{
		ID:        uuid.NewString(),
		Title:     "Paper",
		OwnerID:   "buyer-" + uuid.NewString()[:8],
		Status:    models.PublishedSolicitation,
		Deadline:  now.Add(time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	}
	sol.Items = []models.LineItem{{
		ID:             uuid.NewString(),
		SolicitationID: sol.ID,
		ProductName:    "A4",
		Quantity:       10,
		Unit:           "pack",
		CeilingPrice:   decimal.RequireFromString("20"),
		Status:         models.PendingItem,
		CreatedAt:      now,
	}}
	require.NoError(t, store.Solicitations.CreateSolicitation(ctx, &sol))

	q := models.Quote{
		ID:             uuid.NewString(),
		SolicitationID: sol.ID,
		SupplierID:     "sup-" + uuid.NewString()[:8],
		Status:         models.SubmittedQuote,
		Price:          decimal.Zero,
		SubmittedAt:    now,
	}
	q.Items = []models.QuoteItem{{
		ID:         uuid.NewString(),
		QuoteID:    q.ID,
		LineItemID: sol.Items[0].ID,
		UnitPrice:  decimal.RequireFromString("12.50"),
	}}
	require.NoError(t, store.Quotes.CreateQuote(ctx, &q))
	return sol, q
}

func TestBatchLoadsByIDs(t *testing.T) {
	store := repository.NewStore(requirePool(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	first, firstQuote := seed(t, store, now)
	second, secondQuote := seed(t, store, now.Add(time.Minute))

	quotes, err := store.Quotes.ListQuotesBySolicitations(ctx, []string{first.ID, second.ID})
	require.NoError(t, err)
	require.Len(t, quotes[first.ID], 1)
	require.Len(t, quotes[second.ID], 1)
	assert.Equal(t, firstQuote.ID, quotes[first.ID][0].ID)
	assert.Equal(t, secondQuote.ID, quotes[second.ID][0].ID)
	require.Len(t, quotes[second.ID][0].Items, 1)

	require.NoError(t, store.Solicitations.MarkItemsQuoted(ctx, []string{first.Items[0].ID, second.Items[0].ID}))
	item, err := store.Solicitations.GetLineItem(ctx, second.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuotedItem, item.Status)

	snaps, err := store.Snapshots().LoadMany(ctx, []models.Solicitation{first, second})
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	for _, snap := range snaps {
		assert.Len(t, snap.Quotes, 1)
		assert.Empty(t, snap.Awards)
	}

	shipments, err := store.Fulfillment.ListShipments(ctx, []string{first.Items[0].ID})
	require.NoError(t, err)
	assert.Empty(t, shipments)
}

func TestBatchLoadUsesSolicitationIndex(t *testing.T) {
	p := requirePool(t)
	ctx := context.Background()

	tx, err := p.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `SET LOCAL enable_seqscan = off`)
	require.NoError(t, err)

	for _, query := range []string{
		`EXPLAIN SELECT id FROM quote WHERE solicitation_id = ANY($1::text[]::uuid[])`,
		`EXPLAIN SELECT id FROM award WHERE solicitation_id = ANY($1::text[]::uuid[])`,
	} {
		rows, err := tx.Query(ctx, query, pq.Array([]string{uuid.NewString()}))
		require.NoError(t, err)
		plan, err := pgx.CollectRows(rows, pgx.RowTo[string])
		require.NoError(t, err)
		assert.Contains(t, strings.Join(plan, "\n"), "solicitation_idx", query)
	}
}

func TestEvaluationMarker(t *testing.T) {
	store := repository.NewStore(requirePool(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	sol, _ := seed(t, store, now)
	require.NoError(t, store.Solicitations.UpdateSolicitationStatus(ctx, sol.ID, models.ClosedSolicitation, now))

	ids, err := store.Solicitations.ListUnevaluatedSolicitations(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, sol.ID)

	first, err := store.Solicitations.MarkEvaluated(ctx, sol.ID, now)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := store.Solicitations.MarkEvaluated(ctx, sol.ID, now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, again)

	ids, err = store.Solicitations.ListUnevaluatedSolicitations(ctx)
	require.NoError(t, err)
	assert.NotContains(t, ids, sol.ID)
}
