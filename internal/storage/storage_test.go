package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fixedSigner(now time.Time) *Signer {
	s := NewSigner("https://files.example.com/receipts/", "secret")
	s.now = func() time.Time { return now }
	return s
}

func parseLink(t *testing.T, link string) (key, expires, signature string) {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	key, err = url.PathUnescape(strings.TrimPrefix(u.EscapedPath(), "/receipts/"))
	require.NoError(t, err)
	return key, u.Query().Get("expires"), u.Query().Get("signature")
}

func TestSignerResolveAndVerify(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := fixedSigner(now)

	link, err := s.ResolveURL(context.Background(), "2026/03/receipt 1.pdf", time.Hour)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "https://files.example.com/receipts/"))

	key, expires, signature := parseLink(t, link)
	assert.Equal(t, "2026/03/receipt 1.pdf", key)
	assert.True(t, s.Verify(key, expires, signature))
	assert.False(t, s.Verify("other.pdf", expires, signature))
	assert.False(t, s.Verify(key, expires, strings.Repeat("0", len(signature))))

	s.now = func() time.Time { return now.Add(2 * time.Hour) }
	assert.False(t, s.Verify(key, expires, signature), "expired link")
}

func TestSignerEmptyKey(t *testing.T) {
	_, err := NewSigner("https://files.example.com", "secret").ResolveURL(context.Background(), "", time.Minute)
	assert.ErrorIs(t, err, ErrEmptyKey)
}

type countingResolver struct {
	calls int
}

func (c *countingResolver) ResolveURL(_ context.Context, key string, _ time.Duration) (string, error) {
	c.calls++
	return "https://files.example.com/" + key, nil
}

func TestCachedResolverSurvivesRedisOutage(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	next := &countingResolver{}
	c := NewCachedResolver(next, client, zap.NewNop())

	link, err := c.ResolveURL(context.Background(), "r.pdf", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/r.pdf", link)
	assert.Equal(t, 1, next.calls)
}
