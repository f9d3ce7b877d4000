package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8082", cfg.HTTPAddr)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, "3306", cfg.DB.Port)
	assert.Equal(t, 10, cfg.DB.ConnectRetries)
	assert.True(t, cfg.DB.Migrate)
	assert.False(t, cfg.DB.Seed)
	assert.True(t, cfg.KafkaEnabled)
	assert.Len(t, cfg.KafkaBrokers, 3)
	assert.Equal(t, "sale-topic", cfg.KafkaTopic)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, 30*time.Second, cfg.DashboardCacheTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("KAFKA_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RATE_LIMIT", "2.5")
	t.Setenv("IDEMPOTENCY_TTL", "10m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5432", cfg.DB.Port)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, 10*time.Minute, cfg.IdempotencyTTL)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}},
		{"unknown driver", map[string]string{"JWT_SECRET": "x", "DB_DRIVER": "sqlite"}},
		{"bad duration", map[string]string{"JWT_SECRET": "x", "IDEMPOTENCY_TTL": "forever"}},
		{"bad boolean", map[string]string{"JWT_SECRET": "x", "DB_SEED": "maybe"}},
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

func TestDSN(t *testing.T) {
	my := DBConfig{Driver: "mysql", Host: "db", Port: "3306", User: "root", Pass: "pw", Name: "pos-db"}
	assert.Equal(t, "root:pw@tcp(db:3306)/pos-db?parseTime=true", my.DSN())

	pg := DBConfig{Driver: "postgres", Host: "db", Port: "5432", User: "pos", Pass: "pw", Name: "pos"}
	assert.Equal(t, "postgres://pos:pw@db:5432/pos?sslmode=disable", pg.DSN())

	explicit := DBConfig{Driver: "postgres", URL: "postgres://elsewhere/pos"}
	assert.Equal(t, "postgres://elsewhere/pos", explicit.DSN())
}
