package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	circleapp "github.com/halo/backend/internal/application/circle"
	creditapp "github.com/halo/backend/internal/application/credit"
	"github.com/halo/backend/internal/domain/circle"
	"github.com/halo/backend/internal/domain/credit"
	"github.com/halo/backend/internal/domain/shared"
	"github.com/halo/backend/internal/infrastructure/auth"
	"github.com/halo/backend/internal/infrastructure/cache"
	"github.com/halo/backend/internal/infrastructure/config"
	"github.com/halo/backend/internal/infrastructure/event"
	"github.com/halo/backend/internal/infrastructure/logger"
	"github.com/halo/backend/internal/infrastructure/persistence"
	"github.com/halo/backend/internal/infrastructure/stellar"
	"github.com/halo/backend/internal/interfaces/http/handler"
	"github.com/halo/backend/internal/interfaces/http/middleware"
	"github.com/halo/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Halo Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database with a zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	circleRepo := persistence.NewGormCircleRepository(db.DB)
	membershipRepo := persistence.NewGormMembershipRepository(db.DB)
	contributionRepo := persistence.NewGormContributionRepository(db.DB)
	payoutRepo := persistence.NewGormPayoutRepository(db.DB)
	scoreRepo := persistence.NewGormCreditScoreRepository(db.DB)
	creditEventRepo := persistence.NewGormCreditEventRepository(db.DB)

	// Idempotency store (redis or in-memory per config)
	idempotencyStore, err := cache.NewIdempotencyStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()
	idempotencyConfig := shared.IdempotencyConfig{
		TTL:     cfg.Idempotency.TTL,
		Enabled: cfg.Idempotency.Enabled,
	}

	// Settlement gateway (identity, custody, transfer building)
	gateway := stellar.NewGateway(cfg.Stellar)

	// Domain policies from config
	circlePolicy := circle.Policy{
		MinContributionAmount: cfg.Circle.MinContributionAmount,
		MaxContributionAmount: cfg.Circle.MaxContributionAmount,
		MinStartLead:          time.Duration(cfg.Circle.MinStartLeadDays) * 24 * time.Hour,
		MaxActiveCircles:      cfg.Circle.MaxActiveCircles,
		DefaultPeriodLength:   time.Duration(cfg.Circle.PeriodDays) * 24 * time.Hour,
		DefaultGracePeriod:    time.Duration(cfg.Circle.GracePeriodDays) * 24 * time.Hour,
		DefaultLateFeePercent: cfg.Circle.LateFeePercent,
	}
	pointsPolicy := credit.PointsPolicy{
		OnTimePayment:    cfg.Credit.OnTimePoints,
		LateWithinGrace:  cfg.Credit.LateGracePoints,
		LateWithFee:      cfg.Credit.LateFeePoints,
		MissedPayment:    cfg.Credit.MissedPoints,
		CircleCompletion: cfg.Credit.CompletionPoints,
	}

	// Application services
	circleService := circleapp.NewCircleService(circleRepo, membershipRepo, gateway, circlePolicy, log)
	circleService.SetAssetCustody(gateway)

	contributionService := circleapp.NewContributionService(circleRepo, membershipRepo, contributionRepo, payoutRepo, log)
	contributionService.SetIdempotencyStore(idempotencyStore, idempotencyConfig)
	contributionService.SetTransferBuilder(gateway)

	creditService := creditapp.NewCreditService(scoreRepo, creditEventRepo, pointsPolicy, log)

	// Event bus and cross-context handlers
	eventBus := event.NewInMemoryEventBus(log)

	contributionRecordedHandler := creditapp.NewContributionRecordedHandler(creditService, idempotencyStore, idempotencyConfig, log)
	eventBus.Subscribe(contributionRecordedHandler)

	circleCompletedHandler := creditapp.NewCircleCompletedHandler(creditService, membershipRepo, idempotencyStore, idempotencyConfig, log)
	eventBus.Subscribe(circleCompletedHandler)

	log.Info("Event handlers registered",
		zap.Strings("contribution_recorded_events", contributionRecordedHandler.EventTypes()),
		zap.Strings("circle_completed_events", circleCompletedHandler.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	circleService.SetEventPublisher(eventBus)
	contributionService.SetEventPublisher(eventBus)

	// JWT authentication
	jwtService := auth.NewJWTService(cfg.JWT)

	// HTTP handlers
	circleHandler := handler.NewCircleHandler(circleService, contributionService)
	creditHandler := handler.NewCreditHandler(creditService)
	systemHandler := handler.NewSystemHandler(db, cfg.App.Name, version)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request ID, panic recovery, request logging,
	// CORS, body size limit.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// API routes behind JWT auth; health and invite resolution stay public
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/health",
			"/api/v1/system/info",
		},
		SkipPathPrefixes: []string{
			"/api/v1/invites/",
		},
		Logger: log,
	}))
	r.Register(circleHandler)
	r.Register(creditHandler)
	r.Register(systemHandler)
	r.Setup()

	// HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}

	// Let in-flight payout settlements land before the process exits
	contributionService.WaitForSettlements()

	log.Info("Server stopped")
}
