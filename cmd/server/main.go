package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoPolymarket/polyexec/internal/bridge"
	"github.com/GoPolymarket/polyexec/internal/config"
	"github.com/GoPolymarket/polyexec/internal/execution"
	"github.com/GoPolymarket/polyexec/internal/handler"
	"github.com/GoPolymarket/polyexec/internal/market"
	"github.com/GoPolymarket/polyexec/internal/middleware"
	"github.com/GoPolymarket/polyexec/internal/pkg/logger"
	"github.com/GoPolymarket/polyexec/internal/repository"
	"github.com/GoPolymarket/polyexec/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Log.Level)

	if cfg.Clob.PrivateKey == "" {
		log.Fatal("clob.private_key is required (POLYEXEC_CLOB_PRIVATE_KEY or PRIVATE_KEY)")
	}

	// 1. Signature-type resolution: classify the signer wallet on chain
	// unless the operator forced a scheme.
	classifier := newClassifier(cfg)
	resolution, err := execution.ResolveSignatureType(context.Background(), execution.ResolveInput{
		Override:    cfg.Clob.SignatureType,
		PrivateKey:  cfg.Clob.PrivateKey,
		ProxyWallet: cfg.Clob.ProxyWallet,
	}, classifier)
	if err != nil {
		log.Fatalf("Failed to resolve signature type: %v", err)
	}

	// 2. API credentials: create, derive, or run without.
	apiCreds := loadCredentials(cfg)

	// 3. Submission journal persistence (Postgres > Redis > file-only).
	var journalRepo service.SubmissionRepo
	if cfg.Database.DSN != "" {
		db, err := repository.NewDB(cfg)
		if err == nil {
			repo, merr := repository.NewPostgresSubmissionRepo(db)
			if merr == nil {
				logger.Info("✅ Connected to PostgreSQL")
				journalRepo = repo
			} else {
				logger.Error("⚠️ Failed to migrate submissions table", "error", merr)
			}
		} else {
			logger.Error("⚠️ Failed to connect to DB, journal will be file-only", "error", err)
		}
	}
	if journalRepo == nil && cfg.Redis.Addr != "" {
		redisClient, err := repository.NewRedisClient(cfg)
		if err == nil {
			logger.Info("✅ Connected to Redis")
			journalRepo = repository.NewRedisSubmissionRepo(redisClient, cfg.Redis.SubmissionsKey, cfg.Redis.SubmissionsMax)
		} else {
			logger.Error("⚠️ Failed to connect to Redis, journal will be file-only", "error", err)
		}
	}

	journalSvc, err := service.NewJournalService(cfg.Log.Dir, journalRepo)
	if err != nil {
		log.Fatalf("Failed to initialize submission journal: %v", err)
	}

	// 4. Bridge and execution client.
	invoker := bridge.NewClient(cfg.Bridge.Runtime, cfg.Bridge.Script,
		time.Duration(cfg.Bridge.TimeoutSeconds)*time.Second)

	var marketSvc *market.Service
	execOpts := []execution.Option{}
	if cfg.Market.StreamEnabled {
		marketSvc = market.NewService()
		marketSvc.Start()
		execOpts = append(execOpts, execution.WithMarketCache(marketSvc,
			time.Duration(cfg.Market.StalenessSeconds)*time.Second))
	}

	execClient := execution.NewClient(execution.Config{
		Host:          cfg.Clob.Host,
		ChainID:       cfg.Chain.ChainID,
		SignatureType: resolution.SignatureType,
		ProxyWallet:   resolution.Funder,
		PrivateKey:    cfg.Clob.PrivateKey,
		Creds:         apiCreds,
	}, invoker, execOpts...)

	// 5. Handlers and router.
	idempotencyStore := middleware.NewInMemIdempotencyStore()
	orderHandler := handler.NewOrderHandler(execClient, journalSvc)
	accountHandler := handler.NewAccountHandler(execClient, signerAddress(cfg))

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.MetricsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "polyexec"})
	})

	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg))
	v1.Use(middleware.RateLimitMiddleware(cfg.Server.OrdersPerSecond, cfg.Server.OrdersBurst))
	v1.Use(middleware.IdempotencyMiddleware(idempotencyStore))
	{
		v1.POST("/orders", orderHandler.PlaceOrder)
		v1.GET("/markets/:token_id/book", orderHandler.GetBook)
		v1.GET("/submissions", orderHandler.ListSubmissions)
		v1.GET("/account", accountHandler.GetAccount)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("🚀 PolyExec started",
			"port", cfg.Server.Port,
			"signature_type", string(resolution.SignatureType))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if marketSvc != nil {
		marketSvc.Stop()
	}
	journalSvc.Close()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	logger.Info("Server exited")
}
