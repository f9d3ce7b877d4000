package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"pos-service/internal/api"
	"pos-service/internal/config"
	"pos-service/internal/consumer"
	"pos-service/internal/repository"
	"pos-service/internal/service"
	"pos-service/migrations"
)

func main() {
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.ConnectDB(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Database unreachable")
	}
	defer db.Close()

	if cfg.DB.Migrate {
		if err := migrations.AutoMigrate(ctx, db, cfg.DB.Driver, 3); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate schema")
		}
	}
	if cfg.DB.Seed {
		if err := migrations.Seed(ctx, db, cfg.DB.Driver); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed database")
		}
	}

	rdb, err := config.NewRedisClient(cfg.RedisAddr)
	if err != nil {
		log.Fatal().Err(err).Msg("Redis unreachable")
	}
	defer rdb.Close()

	dialect, err := repository.NewDialect(cfg.DB.Driver)
	if err != nil {
		log.Fatal().Err(err).Msg("Unsupported database driver")
	}

	saleRepo := repository.NewSaleRepository(db, dialect)
	catalogRepo := repository.NewCatalogRepository(db, dialect)
	statsRepo := repository.NewStatsRepository(db, dialect)
	operatorRepo := repository.NewOperatorRepository(db, dialect)

	// Left as a nil interface when kafka is disabled so the service skips publishing.
	var publisher service.EventPublisher
	if cfg.KafkaEnabled {
		kafkaWriter := config.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaWriter.Close()
		publisher = kafkaWriter
	}

	dashboardService := service.NewDashboardService(statsRepo, saleRepo, rdb, cfg.DashboardCacheTTL)
	saleService := service.NewSaleService(saleRepo, publisher, rdb, cfg.IdempotencyTTL, dashboardService)
	catalogService := service.NewCatalogService(catalogRepo, dashboardService)
	authService := service.NewAuthService(operatorRepo, cfg.JWTSecret)

	if cfg.KafkaEnabled {
		reader := config.NewKafkaReader(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID)
		go consumer.NewConsumer(reader, dashboardService).Start(ctx)
	}

	e := echo.New()
	e.HideBanner = true

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.RateLimit),
				Burst:     cfg.RateBurst,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.RealIP(), nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))

	api.RegisterRoutes(e, api.Handlers{
		Auth:      api.NewAuthHandler(authService),
		Sales:     api.NewSaleHandler(saleService),
		Catalog:   api.NewCatalogHandler(catalogService),
		Dashboard: api.NewDashboardHandler(dashboardService),
	}, cfg.JWTSecret)

	go func() {
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
