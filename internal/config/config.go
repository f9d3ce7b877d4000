package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv   string
	HTTPAddr string
	LogLevel zerolog.Level

	DB DBConfig

	RedisAddr string

	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	JWTSecret string

	RateLimit float64
	RateBurst int

	IdempotencyTTL    time.Duration
	DashboardCacheTTL time.Duration
}

type DBConfig struct {
	Driver         string
	URL            string
	Host           string
	Port           string
	User           string
	Pass           string
	Name           string
	ConnectRetries int
	Migrate        bool
	Seed           bool
}

// Load reads the configuration from the environment. With APP_ENV=local the
// variables in .env are loaded first; variables already set win.
func Load() (*Config, error) {
	appEnv := getEnv("APP_ENV", "development")
	if appEnv == "local" {
		if err := godotenv.Load(); err != nil {
			log.Warn().Err(err).Msg(".env not loaded, relying on system environment variables")
		}
	}

	cfg := &Config{
		AppEnv:    appEnv,
		HTTPAddr:  getEnv("HTTP_ADDR", ":8082"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		DB: DBConfig{
			Driver: getEnv("DB_DRIVER", "mysql"),
			URL:    os.Getenv("DB_URL"),
			Host:   getEnv("DB_HOST", "127.0.0.1"),
			Port:   os.Getenv("DB_PORT"),
			User:   getEnv("DB_USER", "root"),
			Pass:   os.Getenv("DB_PASS"),
			Name:   getEnv("DB_NAME", "pos-db"),
		},
		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "localhost:9092,localhost:9093,localhost:9094")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "sale-topic"),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "pos-dashboard-group"),
	}

	var err error
	if cfg.LogLevel, err = zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if cfg.DB.ConnectRetries, err = getInt("DB_CONNECT_RETRIES", 10); err != nil {
		return nil, err
	}
	if cfg.DB.Migrate, err = getBool("DB_MIGRATE", true); err != nil {
		return nil, err
	}
	if cfg.DB.Seed, err = getBool("DB_SEED", false); err != nil {
		return nil, err
	}
	if cfg.KafkaEnabled, err = getBool("KAFKA_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.RateBurst, err = getInt("RATE_BURST", 20); err != nil {
		return nil, err
	}
	if cfg.IdempotencyTTL, err = getDuration("IDEMPOTENCY_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.DashboardCacheTTL, err = getDuration("DASHBOARD_CACHE_TTL", 30*time.Second); err != nil {
		return nil, err
	}
	rate := getEnv("RATE_LIMIT", "10")
	if cfg.RateLimit, err = strconv.ParseFloat(rate, 64); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT: invalid number %q", rate)
	}

	if cfg.DB.Port == "" {
		cfg.DB.Port = "3306"
		if cfg.DB.Driver == "postgres" {
			cfg.DB.Port = "5432"
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if c.DB.Driver != "mysql" && c.DB.Driver != "postgres" {
		return fmt.Errorf("DB_DRIVER must be mysql or postgres, got %q", c.DB.Driver)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is empty while KAFKA_ENABLED is true")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
