package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("PORT", "")
	t.Setenv("DB_TIMEOUT", "")
	t.Setenv("LOW_STOCK_THRESHOLD", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 5*time.Second, cfg.DBTimeout)
	assert.Equal(t, int64(5), cfg.LowStockThreshold)
	assert.Nil(t, cfg.KafkaBrokers)
	assert.Equal(t, "order_events", cfg.KafkaOrderTopic)
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_DRIVER", "sqlite")

	_, err := Load()
	assert.EqualError(t, err, "JWT_SECRET is required")
}

func TestLoad_PostgresRequiresCredentials(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRES_USER", "")

	_, err := Load()
	assert.EqualError(t, err, "POSTGRES_USER is required")
}

func TestLoad_ParsesOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/shop")
	t.Setenv("PORT", ":9090")
	t.Setenv("DB_TIMEOUT", "750ms")
	t.Setenv("LOW_STOCK_THRESHOLD", "10")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Port)
	assert.Equal(t, 750*time.Millisecond, cfg.DBTimeout)
	assert.Equal(t, int64(10), cfg.LowStockThreshold)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "postgres://u:p@db:5432/shop", cfg.PostgresDSN())
}

func TestLoad_InvalidNumber(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("LOW_STOCK_THRESHOLD", "five")

	_, err := Load()
	assert.Error(t, err)
}

func TestPostgresDSN_FromParts(t *testing.T) {
	cfg := Config{
		PostgresHost:     "localhost",
		PostgresPort:     5433,
		PostgresUser:     "postgres",
		PostgresPassword: "pw",
		PostgresDB:       "app",
		PostgresSSLMode:  "disable",
	}
	assert.Equal(t, "host=localhost port=5433 user=postgres password=pw dbname=app sslmode=disable", cfg.PostgresDSN())
}
