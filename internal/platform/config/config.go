package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Ledger store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// defaultJWTSecret is for local development only; LoadConfig refuses it in production.
const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	LedgerStore  string
	// OwnerAddress is the account fixed as ledger owner on first start.
	OwnerAddress domain.Address

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Messaging; an empty AMQPURL disables event fan-out and AMQP payouts
	AMQPURL         string
	AMQPExchange    string
	AMQPPayoutQueue string

	RateLimit          string // ulule format, e.g. "100-M"
	RedisURL           string
	CORSAllowedOrigins []string

	PriceCacheTTL       time.Duration
	PriceFallbackUSD    decimal.Decimal
	PriceHTTPTimeout    time.Duration
	CryptoCompareAPIKey string

	PosthogAPIKey   string
	PosthogEndpoint string
}

func setDefaults() {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("LEDGER_STORE", StorePostgres)
	viper.SetDefault("OWNER_ADDRESS", "")
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "charity-donation-ledger")
	viper.SetDefault("AMQP_URL", "")
	viper.SetDefault("AMQP_EXCHANGE", "charity.ledger")
	viper.SetDefault("AMQP_PAYOUT_QUEUE", "charity.payouts")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("PRICE_CACHE_TTL", "5m")
	viper.SetDefault("PRICE_FALLBACK_USD", "3000")
	viper.SetDefault("PRICE_HTTP_TIMEOUT", "5s")
	viper.SetDefault("CRYPTOCOMPARE_API_KEY", "")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "https://eu.i.posthog.com")

	viper.AutomaticEnv()
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	setDefaults()

	cfg := &Config{}
	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080" // Default port
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.LedgerStore = strings.ToLower(viper.GetString("LEDGER_STORE"))
	switch cfg.LedgerStore {
	case StorePostgres:
		cfg.DatabaseURL = viper.GetString("PGSQL_URL")
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL must be set when LEDGER_STORE is %q", StorePostgres)
		}
	case StoreMemory:
		log.Println("Warning: LEDGER_STORE is memory. Ledger state is lost on restart.")
	default:
		return nil, fmt.Errorf("invalid LEDGER_STORE %q, expected %q or %q", cfg.LedgerStore, StorePostgres, StoreMemory)
	}

	owner := viper.GetString("OWNER_ADDRESS")
	if owner == "" {
		return nil, fmt.Errorf("OWNER_ADDRESS must be set")
	}
	ownerAddr, err := domain.ParseAddress(owner)
	if err != nil {
		return nil, fmt.Errorf("invalid OWNER_ADDRESS: %w", err)
	}
	cfg.OwnerAddress = ownerAddr

	loadJWT(cfg)
	if cfg.IsProduction && cfg.JWTSecret == defaultJWTSecret {
		return nil, fmt.Errorf("JWT_SECRET must be set to a non-default value when IS_PRODUCTION is true")
	}

	cfg.AMQPURL = viper.GetString("AMQP_URL")
	if cfg.AMQPURL == "" {
		log.Println("Warning: AMQP_URL not set. Events will not be published and payouts are only logged.")
	}
	cfg.AMQPExchange = viper.GetString("AMQP_EXCHANGE")
	cfg.AMQPPayoutQueue = viper.GetString("AMQP_PAYOUT_QUEUE")

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.RedisURL = viper.GetString("REDIS_URL")
	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))

	cfg.PriceCacheTTL = durationOrDefault("PRICE_CACHE_TTL", 5*time.Minute)
	cfg.PriceHTTPTimeout = durationOrDefault("PRICE_HTTP_TIMEOUT", 5*time.Second)
	fallback, err := decimal.NewFromString(viper.GetString("PRICE_FALLBACK_USD"))
	if err != nil || !fallback.IsPositive() {
		fallback = decimal.NewFromInt(3000)
		log.Printf("Warning: Invalid value for PRICE_FALLBACK_USD. Defaulting to %s.\n", fallback.String())
	}
	cfg.PriceFallbackUSD = fallback
	cfg.CryptoCompareAPIKey = viper.GetString("CRYPTOCOMPARE_API_KEY")

	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	cfg.PosthogEndpoint = viper.GetString("POSTHOG_ENDPOINT")

	return cfg, nil
}

// LoadTokenConfig loads only the settings needed to mint and check tokens.
func LoadTokenConfig() *Config {
	setDefaults()
	cfg := &Config{}
	loadJWT(cfg)
	return cfg
}

func loadJWT(cfg *Config) {
	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = defaultJWTSecret
	}
	if cfg.JWTSecret == defaultJWTSecret {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTExpiryDuration = durationOrDefault("JWT_EXPIRY_DURATION", time.Hour)
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
}

func durationOrDefault(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
