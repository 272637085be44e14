package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"taic-market/internal/config"
	"taic-market/internal/db"
	"taic-market/internal/events"
	apihttp "taic-market/internal/http"
	"taic-market/internal/llm"
	"taic-market/internal/repository"
	"taic-market/internal/service"
	"taic-market/internal/storage"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if err := db.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal("migrations", zap.Error(err))
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	stakeRepo := repository.NewPgStakeRepository(pool)
	productRepo := repository.NewPgProductRepository(pool)
	importRepo := repository.NewPgImportRepository(pool)

	var provider llm.Provider
	if cfg.LLMAPIKey != "" {
		provider = llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMEmbedModel, logger)
	} else {
		logger.Warn("llm provider not configured")
	}

	var objectStore storage.ObjectStore = storage.NewDisabledStore()
	if cfg.S3Bucket != "" {
		s3Store, err := storage.NewS3Store(ctx, cfg)
		if err != nil {
			logger.Warn("s3 store init failed", zap.Error(err))
		} else {
			objectStore = s3Store
		}
	}

	var (
		publisher  events.Publisher = events.NewDisabledPublisher()
		tokenStore service.RefreshTokenStore
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
			wmPublisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
				Client: redisClient,
			}, watermill.NewStdLogger(false, false))
			if err != nil {
				logger.Warn("event publisher init failed", zap.Error(err))
			} else {
				publisher = events.NewWatermillPublisher(wmPublisher)
			}
		}
		cancel()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLHours)*time.Hour,
		time.Duration(cfg.JWTRefreshTTLHours)*time.Hour,
		tokenStore,
	)

	authSvc := service.NewAuthService(logger, userRepo, publisher)
	stakingSvc := service.NewStakingService(logger, stakeRepo, publisher)
	productSvc := service.NewProductService(logger, productRepo, provider)
	importSvc := service.NewBulkImportService(logger, productSvc, importRepo, objectStore, publisher)
	assistantSvc := service.NewAssistantService(logger, provider, productRepo)

	authHandler := apihttp.NewAuthHandler(logger, authSvc, jwtSvc)
	stakingHandler := apihttp.NewStakingHandler(logger, stakingSvc)
	productHandler := apihttp.NewProductHandler(logger, productSvc)
	merchantHandler := apihttp.NewMerchantHandler(logger, productSvc, importSvc, objectStore)
	assistantHandler := apihttp.NewAssistantHandler(logger, assistantSvc)
	adminHandler := apihttp.NewAdminHandler(logger, userRepo, importRepo)

	router := apihttp.NewRouter(
		logger,
		jwtSvc,
		cfg.AdminAPIKeyHash,
		authHandler,
		stakingHandler,
		productHandler,
		merchantHandler,
		assistantHandler,
		adminHandler,
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
