package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MemoryDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", StorageMemory)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.ExchangeRate.CacheTTL)
	assert.Equal(t, "12800", cfg.ExchangeRate.FallbackRate.String())
	assert.Len(t, cfg.ExchangeRate.ProxyURLs, 2)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "portal.orders", cfg.Kafka.Topic)
	assert.Equal(t, []string{"localhost:3000", "127.0.0.1:3000"}, cfg.CORSOrigins)
	assert.Equal(t, "portal:", cfg.Redis.KeyPrefix)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing jwt secret", map[string]string{"STORAGE_DRIVER": StorageMemory, "JWT_SECRET": ""}},
		{"incomplete database", map[string]string{"STORAGE_DRIVER": StoragePostgres, "JWT_SECRET": "x", "DB_HOST": ""}},
		{"unknown storage", map[string]string{"STORAGE_DRIVER": "mongo", "JWT_SECRET": "x"}},
		{"bad duration", map[string]string{"STORAGE_DRIVER": StorageMemory, "JWT_SECRET": "x", "FX_CACHE_TTL": "soon"}},
		{"non positive rate", map[string]string{"STORAGE_DRIVER": StorageMemory, "JWT_SECRET": "x", "FX_FALLBACK_RATE": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("BROKERS", " a:9092, ,b:9092 ")
	assert.Equal(t, []string{"a:9092", "b:9092"}, getEnvList("BROKERS", ""))
	assert.Nil(t, getEnvList("UNSET_LIST_VAR", ""))
}
