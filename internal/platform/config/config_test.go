package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MemoryStore(t *testing.T) {
	t.Setenv("LEDGER_STORE", "memory")
	t.Setenv("OWNER_ADDRESS", "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	t.Setenv("PRICE_CACHE_TTL", "90s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.LedgerStore)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", cfg.OwnerAddress.String())
	assert.Equal(t, 90*time.Second, cfg.PriceCacheTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "3000", cfg.PriceFallbackUSD.String())
}

func TestLoadConfig_PostgresNeedsURL(t *testing.T) {
	t.Setenv("LEDGER_STORE", "postgres")
	t.Setenv("PGSQL_URL", "")
	t.Setenv("OWNER_ADDRESS", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "PGSQL_URL")
}

func TestLoadConfig_RejectsBadOwner(t *testing.T) {
	t.Setenv("LEDGER_STORE", "memory")
	t.Setenv("OWNER_ADDRESS", "0xnothex")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "OWNER_ADDRESS")
}

func TestLoadConfig_RejectsUnknownStore(t *testing.T) {
	t.Setenv("LEDGER_STORE", "sqlite")
	t.Setenv("OWNER_ADDRESS", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "LEDGER_STORE")
}

func TestLoadConfig_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("LEDGER_STORE", "memory")
	t.Setenv("OWNER_ADDRESS", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	t.Setenv("JWT_EXPIRY_DURATION", "soon")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.JWTExpiryDuration)
}

func TestLoadTokenConfig_IgnoresStoreSettings(t *testing.T) {
	t.Setenv("LEDGER_STORE", "sqlite")
	t.Setenv("OWNER_ADDRESS", "")
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("JWT_EXPIRY_DURATION", "24h")

	cfg := LoadTokenConfig()
	assert.Equal(t, "cli-secret", cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiryDuration)
	assert.Equal(t, "charity-donation-ledger", cfg.JWTIssuer)
}

func TestLoadConfig_ProductionRequiresJWTSecret(t *testing.T) {
	t.Setenv("LEDGER_STORE", "memory")
	t.Setenv("OWNER_ADDRESS", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	t.Setenv("IS_PRODUCTION", "true")

	for name, secret := range map[string]string{
		"unset":   "",
		"default": defaultJWTSecret,
	} {
		t.Run(name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", secret)
			_, err := LoadConfig()
			assert.ErrorContains(t, err, "JWT_SECRET")
		})
	}

	t.Setenv("JWT_SECRET", "prod-secret-from-vault")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction)
	assert.Equal(t, "prod-secret-from-vault", cfg.JWTSecret)
}

func TestLoadConfig_DevelopmentFallsBackToDefaultSecret(t *testing.T) {
	t.Setenv("LEDGER_STORE", "memory")
	t.Setenv("OWNER_ADDRESS", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	t.Setenv("IS_PRODUCTION", "false")
	t.Setenv("JWT_SECRET", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, defaultJWTSecret, cfg.JWTSecret)
}
