package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	env := "SERVER_ADDRESS=127.0.0.1:9000\n" +
		"POSTGRES_CONN=postgres://u:p@localhost:5432/rfq?sslmode=disable\n" +
		"SCHEDULER_INTERVAL=30s\n" +
		"KAFKA_BROKERS=k1:9092, k2:9092\n" +
		"ENV=development\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(env), 0o600))

	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.ServerAddress)
	assert.Equal(t, 30*time.Second, cfg.SchedulerInterval)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers())
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.True(t, cfg.IsDev())
	assert.True(t, cfg.ConsistencyCheck)
}

func TestLoadConfigWithoutFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.ServerAddress)
	assert.Empty(t, cfg.Brokers())
	assert.False(t, cfg.IsDev())
}
