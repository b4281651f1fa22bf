package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port        string
	Env         string
	CORSOrigins []string
	JWTSecret   string
	JWTTTL      time.Duration

	Storage      string
	DB           DatabaseConfig
	Redis        RedisConfig
	Supplier     SupplierConfig
	ExchangeRate ExchangeRateConfig
	Kafka        KafkaConfig
	Worker       WorkerConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host      string
	Port      string
	Password  string
	DB        int
	KeyPrefix string
}

// SupplierConfig contains credentials for the upstream eSIM supplier.
type SupplierConfig struct {
	BaseURL    string
	AccessCode string
	Timeout    time.Duration
}

// ExchangeRateConfig controls USD→UZS rate lookup.
type ExchangeRateConfig struct {
	URL          string
	ProxyURLs    []string
	CacheTTL     time.Duration
	FallbackRate decimal.Decimal
}

// KafkaConfig contains broker settings for order events. No brokers
// disables publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	CatalogInterval      time.Duration
	CatalogTTL           time.Duration
	ExchangeRateInterval time.Duration
	OrderStatusInterval  time.Duration
	OrderStatusMaxAge    time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first.
func Load() (*Config, error) {
	// Missing .env is fine: production relies on real environment variables.
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.CORSOrigins = getEnvList("CORS_ORIGINS", "localhost:3000,127.0.0.1:3000")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.Storage = getEnv("STORAGE_DRIVER", StoragePostgres)

	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	cfg.Redis = RedisConfig{
		Host:      getEnv("REDIS_HOST", "redis"),
		Port:      getEnv("REDIS_PORT", "6379"),
		Password:  getEnv("REDIS_PASSWORD", ""),
		DB:        getEnvInt("REDIS_DB", 0),
		KeyPrefix: getEnv("REDIS_KEY_PREFIX", "portal:"),
	}

	cfg.Supplier = SupplierConfig{
		BaseURL:    getEnv("SUPPLIER_BASE_URL", "https://api.esimaccess.com/api/v1/open"),
		AccessCode: getEnv("SUPPLIER_ACCESS_CODE", ""),
	}

	cfg.ExchangeRate = ExchangeRateConfig{
		URL:       getEnv("FX_URL", "https://cbu.uz/uz/arkhiv-kursov-valyut/json/USD/"),
		ProxyURLs: getEnvList("FX_PROXY_URLS", "https://api.allorigins.win/raw?url=,https://corsproxy.io/?"),
	}

	cfg.Kafka = KafkaConfig{
		Brokers: getEnvList("KAFKA_BROKERS", ""),
		Topic:   getEnv("KAFKA_ORDER_TOPIC", "portal.orders"),
	}

	var err error
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.Supplier.Timeout, err = parseDurationEnv("SUPPLIER_TIMEOUT", "30s"); err != nil {
		return nil, fmt.Errorf("invalid SUPPLIER_TIMEOUT: %w", err)
	}
	if cfg.ExchangeRate.CacheTTL, err = parseDurationEnv("FX_CACHE_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid FX_CACHE_TTL: %w", err)
	}
	if cfg.ExchangeRate.FallbackRate, err = decimal.NewFromString(getEnv("FX_FALLBACK_RATE", "12800")); err != nil {
		return nil, fmt.Errorf("invalid FX_FALLBACK_RATE: %w", err)
	}
	if cfg.ExchangeRate.FallbackRate.Sign() <= 0 {
		return nil, errors.New("FX_FALLBACK_RATE must be positive")
	}
	if cfg.Worker.CatalogInterval, err = parseDurationEnv("CATALOG_REFRESH_INTERVAL", "10m"); err != nil {
		return nil, fmt.Errorf("invalid CATALOG_REFRESH_INTERVAL: %w", err)
	}
	if cfg.Worker.CatalogTTL, err = parseDurationEnv("CATALOG_CACHE_TTL", "30m"); err != nil {
		return nil, fmt.Errorf("invalid CATALOG_CACHE_TTL: %w", err)
	}
	if cfg.Worker.ExchangeRateInterval, err = parseDurationEnv("FX_REFRESH_INTERVAL", "6h"); err != nil {
		return nil, fmt.Errorf("invalid FX_REFRESH_INTERVAL: %w", err)
	}
	if cfg.Worker.OrderStatusInterval, err = parseDurationEnv("ORDER_STATUS_INTERVAL", "15s"); err != nil {
		return nil, fmt.Errorf("invalid ORDER_STATUS_INTERVAL: %w", err)
	}
	if cfg.Worker.OrderStatusMaxAge, err = parseDurationEnv("ORDER_STATUS_MAX_AGE", "30m"); err != nil {
		return nil, fmt.Errorf("invalid ORDER_STATUS_MAX_AGE: %w", err)
	}

	switch cfg.Storage {
	case StoragePostgres:
		if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
			return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage)
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getEnvList splits a comma separated variable, dropping empty items.
func getEnvList(key, def string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, def), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
