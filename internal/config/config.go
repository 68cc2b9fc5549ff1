package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port          string
	AllowOrigins  string
	AdminBearer   string
	ReqTimeoutSec int

	// Auth tokens; empty secret keeps the mock token scheme
	JWTSecret   string
	JWTTTLHours int

	// Database
	StorageBackend  string // postgres, memory
	StorageFallback bool
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBSSLMode       string

	// Recommendation cache
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CacheTTLSeconds int
	CacheSize       int

	// Transaction events
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	// Rewards
	CompanyPointsPerTransaction float64
	DefaultPurchaseAmount       float64

	// Catalog
	SeedCatalog bool
	CatalogFile string

	LogLevel  string
	LogFormat string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" { return v }
	return def
}

func atoi(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil { return i }
	}
	return def
}

func atof(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil { return f }
	}
	return def
}

func atob(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil { return b }
	}
	return def
}

func Load() *Config {
	return &Config{
		Port:          getenv("PORT", "8080"),
		AllowOrigins:  getenv("ALLOW_ORIGINS", "*"),
		AdminBearer:   getenv("ADMIN_BEARER", ""),
		ReqTimeoutSec: atoi("REQUEST_TIMEOUT_SECONDS", 30),

		JWTSecret:   getenv("JWT_SECRET", ""),
		JWTTTLHours: atoi("JWT_TTL_HOURS", 24),

		StorageBackend:  strings.ToLower(getenv("STORAGE_BACKEND", "postgres")),
		StorageFallback: atob("STORAGE_FALLBACK", true),
		DBHost:          getenv("DB_HOST", "localhost"),
		DBPort:          getenv("DB_PORT", "5432"),
		DBUser:          getenv("DB_USER", "postgres"),
		DBPassword:      getenv("DB_PASSWORD", ""),
		DBName:          getenv("DB_NAME", "rewards"),
		DBSSLMode:       getenv("DB_SSLMODE", "disable"),

		RedisAddr:       getenv("REDIS_ADDR", ""),
		RedisPassword:   getenv("REDIS_PASSWORD", ""),
		RedisDB:         atoi("REDIS_DB", 0),
		CacheTTLSeconds: atoi("CACHE_TTL_SECONDS", 60),
		CacheSize:       atoi("CACHE_SIZE", 1000),

		AMQPURL:        getenv("AMQP_URL", ""),
		AMQPExchange:   getenv("AMQP_EXCHANGE", "rewards"),
		AMQPRoutingKey: getenv("AMQP_ROUTING_KEY", "transaction.recorded"),

		CompanyPointsPerTransaction: atof("COMPANY_POINTS_PER_TRANSACTION", 100),
		DefaultPurchaseAmount:       atof("DEFAULT_PURCHASE_AMOUNT", 14000),

		SeedCatalog: atob("SEED_CATALOG", false),
		CatalogFile: getenv("CATALOG_FILE", ""),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),
	}
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case "postgres", "memory":
	default:
		return fmt.Errorf("STORAGE_BACKEND must be postgres or memory, got %q", c.StorageBackend)
	}
	if c.CompanyPointsPerTransaction < 0 {
		return fmt.Errorf("COMPANY_POINTS_PER_TRANSACTION must not be negative")
	}
	if c.DefaultPurchaseAmount < 0 {
		return fmt.Errorf("DEFAULT_PURCHASE_AMOUNT must not be negative")
	}
	if c.CacheTTLSeconds < 0 || c.CacheSize < 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS and CACHE_SIZE must not be negative")
	}
	if c.JWTSecret != "" && c.JWTTTLHours <= 0 {
		return fmt.Errorf("JWT_TTL_HOURS must be positive")
	}
	if c.ReqTimeoutSec <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.ReqTimeoutSec) * time.Second
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}
