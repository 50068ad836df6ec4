package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Configはアプリ全体の設定
type Config struct {
	Port     string // サーバーポート（8080）
	GoEnv    string // dev/prod
	LogLevel string // info/warn/error

	DBDriver         string // postgres / sqlite
	DatabaseURL      string // あればPOSTGRES_*より優先
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string
	SQLitePath       string

	DBTimeout    time.Duration // 1トランザクションの上限
	TxMaxRetries int           // 直列化失敗時のリトライ回数

	JWTSecret string // JWT署名シークレット

	LowStockThreshold int64 // これ未満は「low stock」

	KafkaBrokers    []string // 空なら注文イベントを送らない
	KafkaOrderTopic string
}

// Loadは環境変数から読む
func Load() (Config, error) {
	pgPort, err := intDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	retries, err := intDefault("TX_MAX_RETRIES", 3)
	if err != nil {
		return Config{}, err
	}
	low, err := intDefault("LOW_STOCK_THRESHOLD", 5)
	if err != nil {
		return Config{}, err
	}
	timeout, err := durationDefault("DB_TIMEOUT", 5*time.Second)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:     normalizePort(envDefault("PORT", "8080")),
		GoEnv:    envDefault("GO_ENV", "dev"),
		LogLevel: envDefault("LOG_LEVEL", "info"),

		DBDriver:         strings.ToLower(envDefault("DB_DRIVER", DriverPostgres)),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     envDefault("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  envDefault("POSTGRES_SSLMODE", "disable"),
		SQLitePath:       envDefault("SQLITE_PATH", "shop.db"),

		DBTimeout:    timeout,
		TxMaxRetries: retries,

		JWTSecret: os.Getenv("JWT_SECRET"),

		LowStockThreshold: int64(low),

		KafkaBrokers:    csv(os.Getenv("KAFKA_BROKERS")),
		KafkaOrderTopic: envDefault("KAFKA_ORDER_TOPIC", "order_events"),
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			if cfg.PostgresUser == "" {
				return Config{}, fmt.Errorf("POSTGRES_USER is required")
			}
			if cfg.PostgresPassword == "" {
				return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
			}
			if cfg.PostgresDB == "" {
				return Config{}, fmt.Errorf("POSTGRES_DB is required")
			}
		}
	default:
		return Config{}, fmt.Errorf("DB_DRIVER must be postgres or sqlite: %q", cfg.DBDriver)
	}
	if cfg.LowStockThreshold < 1 {
		return Config{}, fmt.Errorf("LOW_STOCK_THRESHOLD must be >= 1")
	}

	return cfg, nil
}

// DATABASE_URL があれば最優先で使う
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func envDefault(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func intDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationDefault(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

func normalizePort(v string) string {
	if strings.HasPrefix(v, ":") {
		return v
	}
	return ":" + v
}

func csv(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
