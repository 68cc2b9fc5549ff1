package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORAGE_BACKEND", "COMPANY_POINTS_PER_TRANSACTION", "DEFAULT_PURCHASE_AMOUNT", "STORAGE_FALLBACK"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.StorageBackend)
	assert.True(t, cfg.StorageFallback)
	assert.Equal(t, 100.0, cfg.CompanyPointsPerTransaction)
	assert.Equal(t, 14000.0, cfg.DefaultPurchaseAmount)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORAGE_BACKEND", "MEMORY")
	t.Setenv("STORAGE_FALLBACK", "false")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CACHE_TTL_SECONDS", "15")
	t.Setenv("COMPANY_POINTS_PER_TRANSACTION", "12.5")
	t.Setenv("SEED_CATALOG", "true")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "memory", cfg.StorageBackend)
	assert.False(t, cfg.StorageFallback)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 15*time.Second, cfg.CacheTTL())
	assert.Equal(t, 12.5, cfg.CompanyPointsPerTransaction)
	assert.True(t, cfg.SeedCatalog)
}

func TestLoad_IgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("REDIS_DB", "three")
	t.Setenv("DEFAULT_PURCHASE_AMOUNT", "lots")
	t.Setenv("SEED_CATALOG", "maybe")

	cfg := Load()
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 14000.0, cfg.DefaultPurchaseAmount)
	assert.False(t, cfg.SeedCatalog)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		t.Setenv("STORAGE_BACKEND", "memory")
		return Load()
	}

	cfg := base()
	cfg.StorageBackend = "mysql"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.CompanyPointsPerTransaction = -1
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.DefaultPurchaseAmount = -5
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.ReqTimeoutSec = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.JWTSecret = "s3cret"
	cfg.JWTTTLHours = 0
	assert.Error(t, cfg.Validate())
}

func TestTokenTTL(t *testing.T) {
	cfg := &Config{JWTTTLHours: 12}
	assert.Equal(t, 12*time.Hour, cfg.TokenTTL())
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "5432", DBName: "rewards", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/rewards?sslmode=disable", cfg.DSN())
}
