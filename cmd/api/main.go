package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/reseller_portal/internal/cache"
	"github.com/GTDGit/reseller_portal/internal/config"
	"github.com/GTDGit/reseller_portal/internal/database"
	"github.com/GTDGit/reseller_portal/internal/events"
	"github.com/GTDGit/reseller_portal/internal/handler"
	"github.com/GTDGit/reseller_portal/internal/metrics"
	"github.com/GTDGit/reseller_portal/internal/middleware"
	"github.com/GTDGit/reseller_portal/internal/repository"
	"github.com/GTDGit/reseller_portal/internal/repository/memory"
	"github.com/GTDGit/reseller_portal/internal/service"
	"github.com/GTDGit/reseller_portal/internal/sse"
	"github.com/GTDGit/reseller_portal/internal/utils"
	"github.com/GTDGit/reseller_portal/internal/worker"
	"github.com/GTDGit/reseller_portal/pkg/cbu"
	"github.com/GTDGit/reseller_portal/pkg/esimaccess"
)

// idempotencyTTL is how long a placed order response can be replayed.
const idempotencyTTL = 24 * time.Hour

// main is the application entrypoint for the reseller portal API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Str("storage", cfg.Storage).Msg("starting reseller portal")

	// 3. Storage
	var (
		partnerRepo repository.PartnerRepository
		groupRepo   repository.GroupRepository
		orderRepo   repository.OrderRepository
		store       cache.Store
	)
	checks := map[string]handler.Pinger{}

	switch cfg.Storage {
	case config.StoragePostgres:
		db, err := database.Connect(&cfg.DB)
		if err != nil {
			log.Error().Err(err).Msg("database connection failed")
			fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		// 3a. Run migrations
		if err := database.MigrateUp(db.DB, database.DefaultMigrationsURL); err != nil {
			log.Error().Err(err).Msg("migration failed")
			fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
			os.Exit(1)
		}
		log.Info().Msg("migrations completed successfully")

		// 3b. Connect to Redis
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Error().Err(err).Msg("redis connection failed")
			fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		log.Info().Msg("redis connected successfully")

		partnerRepo = repository.NewPartnerRepo(db)
		groupRepo = repository.NewGroupRepo(db)
		orderRepo = repository.NewOrderRepo(db)
		store = redisClient
		checks["database"] = handler.PingFunc(db.PingContext)
		checks["redis"] = redisClient
	default:
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		partnerRepo = memory.NewPartnerRepo()
		groupRepo = memory.NewGroupRepo()
		orderRepo = memory.NewOrderRepo()
		store = cache.NewMemoryStore()
	}

	// 4. Initialize upstream clients
	supplier := esimaccess.NewClient(cfg.Supplier.BaseURL, cfg.Supplier.AccessCode, cfg.Supplier.Timeout)
	rateFeed := cbu.NewClient(cfg.ExchangeRate.URL, cfg.ExchangeRate.ProxyURLs, 10*time.Second)

	// 5. Initialize services
	publisher := events.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close event publisher")
		}
	}()
	hub := sse.NewHub()
	notifier := sse.NewHubNotifier(hub, publisher)

	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	catalogSvc := service.NewCatalogService(supplier, cache.NewPlanCache(store, cfg.Worker.CatalogTTL))
	fxSvc := service.NewExchangeRateService(rateFeed,
		cache.NewExchangeRateCache(store, cfg.ExchangeRate.CacheTTL), cfg.ExchangeRate.FallbackRate)
	authSvc := service.NewAuthService(partnerRepo, tokens, fxSvc)
	groupSvc := service.NewGroupService(groupRepo)
	orderSvc := service.NewOrderService(orderRepo, groupRepo, catalogSvc, fxSvc, supplier, notifier)

	// 6. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 7. Initialize middleware
	limiter := middleware.NewInvalidAuthRateLimiter(5, time.Minute)
	go limiter.Run(ctx)
	go notifier.Run(ctx)
	jwtMw := middleware.NewJWTMiddleware(tokens, limiter)

	// 8. Initialize handlers
	handlers := &Handlers{
		Health:       handler.NewHealthHandler(checks),
		Auth:         handler.NewAuthHandler(authSvc, limiter),
		Catalog:      handler.NewCatalogHandler(catalogSvc, fxSvc),
		ExchangeRate: handler.NewExchangeRateHandler(fxSvc),
		Group:        handler.NewGroupHandler(groupSvc),
		Order:        handler.NewOrderHandler(orderSvc),
		SSE:          handler.NewSSEHandler(hub),
	}

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.LoggingMiddleware())
	router.Use(metrics.Middleware())
	setupRoutes(router, handlers, jwtMw, middleware.Idempotency(store, idempotencyTTL))

	// 10. Start workers
	go worker.NewCatalogRefreshWorker(catalogSvc, cfg.Worker.CatalogInterval).Start(ctx)
	go worker.NewExchangeRateWorker(fxSvc, cfg.Worker.ExchangeRateInterval).Start(ctx)
	go worker.NewOrderStatusWorker(orderSvc, cfg.Worker.OrderStatusInterval, cfg.Worker.OrderStatusMaxAge).Start(ctx)

	// 11. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 13. Cancel context to stop workers and open streams
	cancel()

	// 14. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health       *handler.HealthHandler
	Auth         *handler.AuthHandler
	Catalog      *handler.CatalogHandler
	ExchangeRate *handler.ExchangeRateHandler
	Group        *handler.GroupHandler
	Order        *handler.OrderHandler
	SSE          *handler.SSEHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware, idempotency gin.HandlerFunc) {
	router.GET("/v1/health", handlers.Health.GetHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.POST("/v1/auth/login", handlers.Auth.Login)

	api := router.Group("/v1")
	api.Use(jwtMiddleware.Handle())
	{
		api.GET("/auth/session", handlers.Auth.Session)

		// Catalog
		api.GET("/catalog/plans", handlers.Catalog.ListPlans)
		api.GET("/catalog/options", handlers.Catalog.Options)
		api.GET("/exchange-rate", handlers.ExchangeRate.Get)

		// Groups
		api.GET("/groups", handlers.Group.List)
		api.POST("/groups", handlers.Group.Create)
		api.PUT("/groups/:id", handlers.Group.Update)
		api.DELETE("/groups/:id", handlers.Group.Delete)

		// Orders
		api.GET("/orders", handlers.Order.List)
		api.GET("/orders/stream", handlers.SSE.Stream)
		api.POST("/orders/quote", handlers.Order.Quote)
		api.POST("/orders", idempotency, handlers.Order.Create)
		api.GET("/orders/:id", handlers.Order.Get)
		api.POST("/orders/:id/resend", handlers.Order.Action(service.ActionResend))
		api.POST("/orders/:id/suspend", handlers.Order.Action(service.ActionSuspend))
		api.POST("/orders/:id/cancel", handlers.Order.Action(service.ActionCancel))
		api.POST("/orders/:id/topup", handlers.Order.Action(service.ActionTopup))
	}
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
