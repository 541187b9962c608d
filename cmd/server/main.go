package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pizza_service/internal/config"
	"pizza_service/internal/fulfillment"
	"pizza_service/internal/handler"
	"pizza_service/internal/logger"
	"pizza_service/internal/metrics"
	"pizza_service/internal/middleware"
	"pizza_service/internal/model"
	"pizza_service/internal/repository"
	"pizza_service/internal/service"
	"pizza_service/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = zlog.Sync() }()

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(cfg.Database, logger.NewQueryTracer(zlog), zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer dbPool.Close()

	// --- Auto Migration ---
	if err := config.AutoMigrate(context.Background(), dbPool); err != nil {
		zlog.Fatal("failed to auto-migrate database", zap.Error(err))
	}

	// --- Chaos switch ---
	chaos := service.NewMemoryChaos()
	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			zlog.Fatal("failed to connect to redis", zap.String("address", cfg.Redis.Address), zap.Error(err))
		}
		chaos = service.NewRedisChaos(rdb)
		zlog.Info("chaos switch backed by redis", zap.String("address", cfg.Redis.Address))
	}

	// --- Metrics ---
	collector := metrics.NewCollector("jwt_pizza")
	pusher := metrics.NewPusher(collector, metrics.PushConfig{
		URL:    cfg.Metrics.URL,
		UserID: cfg.Metrics.UserID,
		APIKey: cfg.Metrics.APIKey,
		Source: cfg.Metrics.Source,
	}, zlog)
	if err := pusher.Start(cfg.Metrics.Interval); err != nil {
		zlog.Fatal("failed to schedule metrics push", zap.Error(err))
	}

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(cfg.JWT.Secret, cfg.JWT.ExpirationHours)
	factory := fulfillment.NewClient(cfg.Factory.URL, cfg.Factory.APIKey, cfg.Factory.Timeout, zlog)

	// --- Initialize Repositories ---
	userRepo := repository.NewUserRepository(dbPool)
	sessionRepo := repository.NewSessionRepository(dbPool)
	menuRepo := repository.NewMenuRepository(dbPool)
	franchiseRepo := repository.NewFranchiseRepository(dbPool)
	orderRepo := repository.NewOrderRepository(dbPool)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, sessionRepo, jwtUtil, zlog)
	menuService := service.NewMenuService(menuRepo, chaos, cfg.Chaos.Delay, zlog)
	orderService := service.NewOrderService(orderRepo, menuRepo, franchiseRepo, factory, cfg.Database.ListPerPage, zlog)
	franchiseService := service.NewFranchiseService(franchiseRepo, userRepo, zlog)

	if err := authService.EnsureAdmin(context.Background(), model.RegisterRequest{
		Name:     cfg.Admin.Name,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	}); err != nil {
		zlog.Fatal("failed to seed admin account", zap.Error(err))
	}

	// --- Initialize Handlers ---
	authHandler := handler.NewAuthHandler(authService, collector, zlog)
	orderHandler := handler.NewOrderHandler(menuService, orderService, collector, zlog)
	franchiseHandler := handler.NewFranchiseHandler(franchiseService, zlog)
	docsHandler := handler.NewDocsHandler(cfg.App.Version, factory.URL(), cfg.Database.Host,
		handler.AuthEndpoints, handler.OrderEndpoints, handler.FranchiseEndpoints)

	// --- Setup Gin Router ---
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(zlog),
		middleware.CORS(),
		middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, zlog).Handler(),
		middleware.RequestLogger(zlog),
		middleware.Metrics(collector),
		middleware.AttachUser(authService, zlog),
	)

	// --- Register Routes ---
	authMW := middleware.RequireAuth()
	apiGroup := router.Group("/api")
	authHandler.RegisterAuthRoutes(apiGroup, authMW)
	orderHandler.RegisterOrderRoutes(apiGroup, authMW)
	franchiseHandler.RegisterFranchiseRoutes(apiGroup, authMW)
	docsHandler.RegisterDocsRoutes(router)

	router.GET("/metrics", gin.WrapH(collector.Handler()))
	router.GET("/health", func(c *gin.Context) {
		// Check DB connection
		if err := dbPool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		zlog.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("version", cfg.App.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("listen failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}

	pusher.Stop()
	if rdb != nil {
		_ = rdb.Close()
	}
	zlog.Info("server exiting")
}
