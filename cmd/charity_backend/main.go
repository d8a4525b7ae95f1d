package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/SscSPs/charity_donation_ledger/cmd/docs"
	"github.com/SscSPs/charity_donation_ledger/internal/adapters/cache"
	"github.com/SscSPs/charity_donation_ledger/internal/adapters/database/memory"
	amqpadapter "github.com/SscSPs/charity_donation_ledger/internal/adapters/messaging/amqp"
	"github.com/SscSPs/charity_donation_ledger/internal/adapters/messaging/logsink"
	"github.com/SscSPs/charity_donation_ledger/internal/adapters/pricing"
	"github.com/SscSPs/charity_donation_ledger/internal/core/ports"
	portsrepo "github.com/SscSPs/charity_donation_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/charity_donation_ledger/internal/core/services"
	"github.com/SscSPs/charity_donation_ledger/internal/handlers"
	"github.com/SscSPs/charity_donation_ledger/internal/middleware"
	"github.com/SscSPs/charity_donation_ledger/internal/platform/config"
	"github.com/SscSPs/charity_donation_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/charity_donation_ledger/internal/utils"
	"github.com/SscSPs/charity_donation_ledger/migrations"
	"github.com/SscSPs/charity_donation_ledger/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	limitermemory "github.com/ulule/limiter/v3/drivers/store/memory"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"golang.org/x/sync/errgroup"
)

// @title Charity Donation Ledger API
// @version 1.0
// @description Transparent ledger of charity projects, donations, withdrawals and expenses.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := handlers.RegisterValidators(); err != nil {
		return err
	}

	repos, closeRepos, err := setupRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepos()

	transferer, publisher, closeMessaging, err := setupMessaging(cfg, logger)
	if err != nil {
		return err
	}
	defer closeMessaging()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
		logger.Info("Redis client configured for price cache and rate limiting")
	}

	var quoteCache ports.QuoteCache = cache.NewMemoryQuoteCache(cfg.PriceCacheTTL, time.Now)
	if redisClient != nil {
		quoteCache = cache.NewRedisQuoteCache(redisClient, cfg.PriceCacheTTL)
	}

	serviceContainer := services.NewServiceContainer(cfg, repos, services.Adapters{
		Transferer: transferer,
		Publisher:  publisher,
		QuoteCache: quoteCache,
		PriceSources: []ports.PriceSource{
			pricing.NewCryptoCompare(pricing.DefaultCryptoCompareURL, cfg.CryptoCompareAPIKey, cfg.PriceHTTPTimeout),
			pricing.NewCoinGecko(pricing.DefaultCoinGeckoURL, cfg.PriceHTTPTimeout),
		},
	})

	owner, err := serviceContainer.Ledger.Initialize(middleware.WithLogger(ctx, logger), cfg.OwnerAddress)
	if err != nil {
		return err
	}
	logger.Info("Ledger ready", slog.String("owner", owner.String()), slog.String("store", cfg.LedgerStore))

	rateLimiter, err := newRateLimiter(cfg, redisClient)
	if err != nil {
		return err
	}

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer posthogClient.Close()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(nil); err != nil {
		return err
	}

	// Global middleware (logging, recovery)
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.RateLimit(rateLimiter),
		middleware.PosthogMiddleware(posthogClient),
	)

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// setupRepositories opens the configured ledger store and applies migrations for PostgreSQL.
func setupRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.LedgerStore == config.StoreMemory {
		logger.Warn("Using in-memory ledger store")
		return memory.NewRepositoryProvider(), func() {}, nil
	}

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL, migrations.FS, logger); err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool, logger) }, nil
}

// setupMessaging connects to RabbitMQ when configured, otherwise payouts and events are only logged.
func setupMessaging(cfg *config.Config, logger *slog.Logger) (ports.FundsTransferer, ports.EventPublisher, func(), error) {
	if cfg.AMQPURL == "" {
		return logsink.Transferer{}, logsink.Publisher{}, func() {}, nil
	}
	client, err := amqpadapter.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPPayoutQueue)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.Info("Connected to RabbitMQ", slog.String("exchange", cfg.AMQPExchange))
	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Error("Error closing RabbitMQ connection", slog.String("error", err.Error()))
		}
	}
	return amqpadapter.NewPayoutTransferer(client), amqpadapter.NewEventPublisher(client), closeFn, nil
}

func newRateLimiter(cfg *config.Config, redisClient *redis.Client) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		return nil, err
	}
	if redisClient == nil {
		return limiter.New(limitermemory.NewStore(), rate), nil
	}
	store, err := limiterredis.NewStoreWithOptions(redisClient, limiter.StoreOptions{Prefix: "charity_ledger:limiter"})
	if err != nil {
		return nil, err
	}
	return limiter.New(store, rate), nil
}
