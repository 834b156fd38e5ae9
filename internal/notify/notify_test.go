package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubNotifier struct {
	calls int
	err   error
}

func (s *stubNotifier) Notify(context.Context, Recipient, string, map[string]any) error {
	s.calls++
	return s.err
}

func TestRecipientKey(t *testing.T) {
	assert.Equal(t, "sup-1", Recipient{SupplierID: "sup-1", Role: OperatorRole}.Key())
	assert.Equal(t, OperatorRole, Recipient{Role: OperatorRole}.Key())
}

func TestMultiDeliversToAll(t *testing.T) {
	boom := errors.New("broker down")
	first, failing, last := &stubNotifier{}, &stubNotifier{err: boom}, &stubNotifier{}
	m := Multi{first, failing, last, NewLogNotifier(zap.NewNop())}

	err := m.Notify(context.Background(), Recipient{SupplierID: "sup-1"}, AwardWon, nil)

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, last.calls, "a failing channel does not stop the others")
	assert.NoError(t, Multi{}.Notify(context.Background(), Recipient{}, AwardWon, nil))
}

func TestWebhookNotifier(t *testing.T) {
	var (
		got     map[string]any
		eventID string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, UnquotedItems, r.Header.Get("X-Event-Type"))
		eventID = r.Header.Get("X-Event-ID")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	err := n.Notify(context.Background(), Recipient{Role: OperatorRole}, UnquotedItems, map[string]any{
		"solicitationId": "sol-1",
		"lineItemIds":    []string{"l2"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, eventID)
	assert.Equal(t, eventID, got["eventId"])
	assert.Equal(t, UnquotedItems, got["type"])
	assert.Equal(t, map[string]any{"role": OperatorRole}, got["recipient"])
	payload, ok := got["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "sol-1", payload["solicitationId"])
}

func TestWebhookNotifierErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhookNotifier(srv.URL).Notify(context.Background(), Recipient{SupplierID: "sup-1"}, AwardRevoked, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
