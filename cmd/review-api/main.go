package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/agriclaim/review-api/api/swagger"
	"github.com/agriclaim/review-api/internal/handler"
	"github.com/agriclaim/review-api/internal/live"
	"github.com/agriclaim/review-api/internal/middleware"
	"github.com/agriclaim/review-api/internal/repository"
	"github.com/agriclaim/review-api/internal/service"
	"github.com/agriclaim/review-api/pkg/cache"
	"github.com/agriclaim/review-api/pkg/config"
	"github.com/agriclaim/review-api/pkg/database"
	"github.com/agriclaim/review-api/pkg/logger"
	corsmiddleware "github.com/agriclaim/review-api/pkg/middleware/cors"
	reqidmiddleware "github.com/agriclaim/review-api/pkg/middleware/requestid"
	"github.com/agriclaim/review-api/pkg/storage"
)

// @title Claim Review API
// @version 0.1.0
// @description Officer workbench for reviewing crop damage claims
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("claim store connection failed", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, profile cache degraded to store lookups", zap.Error(err))
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	signer := storage.NewURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)
	objectStore, err := storage.NewObjectStore(cfg.Storage.Dir, cfg.Storage.PublicBaseURL, signer)
	if err != nil {
		logr.Sugar().Fatalw("object store init failed", "error", err)
	}

	metrics := service.NewMetricsService()

	claimRepo := repository.NewClaimRepository(db, cfg.Live.Channel)
	profileRepo := repository.NewProfileRepository(db)

	assetResolver := service.NewAssetResolver(objectStore, logr, service.WithResolverMetrics(metrics))
	profileResolver := service.NewProfileResolver(profileRepo, cacheRepo, cfg.Resolver.ProfileCacheTTL, logr, service.WithResolverMetrics(metrics))
	enricher := service.NewEnricher(assetResolver, profileResolver, logr, service.WithEnrichmentMetrics(metrics))

	source := live.NewPGSource(live.Config{
		DSN:         database.DSN(cfg.Database),
		Channel:     cfg.Live.Channel,
		Debounce:    cfg.Live.Debounce,
		MinInterval: cfg.Live.ListenMinInterval,
		MaxInterval: cfg.Live.ListenMaxInterval,
	}, claimRepo, logr)

	claimSvc := service.NewClaimService(claimRepo, enricher, validator.New(), logr)
	exportSvc := service.NewExportService(claimSvc, logr)

	newLive := func() *service.LiveQueryController {
		return service.NewLiveQueryController(source, enricher, logr, service.WithLiveMetrics(metrics))
	}

	claimHandler := handler.NewClaimHandler(claimSvc, exportSvc, newLive, metrics, logr)
	assetHandler := handler.NewAssetHandler(objectStore)
	metricsHandler := handler.NewMetricsHandler(metrics)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "claim store unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/assets/:token", assetHandler.Download)

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/claims", claimHandler.List)
		api.GET("/claims/stream", claimHandler.Stream)
		if cfg.Exports.Enabled {
			api.GET("/claims/export", claimHandler.Export)
		}
		api.GET("/claims/:id", claimHandler.Get)
		api.POST("/claims/:id/approve", claimHandler.Approve)
		api.POST("/claims/:id/reject", claimHandler.Reject)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
