package main

import (
	"fmt"
	"log"
	"net/http"

	"gotransit/internal/config"
	"gotransit/internal/handlers"
	"gotransit/internal/middleware"
	mongorepos "gotransit/internal/repositories/mongodb"
	"gotransit/internal/services"
	"gotransit/pkg/cache"
	"gotransit/pkg/database"
	"gotransit/pkg/logger"
	"gotransit/pkg/maps"
	"gotransit/pkg/payment"
	"gotransit/pkg/providers"
	"gotransit/pkg/websocket"
	"gotransit/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: "json",
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	mongodb, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongodb.Close()

	if err := mongodb.EnsureIndexes(); err != nil {
		appLogger.Fatalf("Failed to ensure indexes: %v", err)
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	var mapsProvider maps.MapsProvider
	if cfg.Maps.Enabled {
		mapsProvider, err = maps.NewGoogleMapsProvider(cfg.Maps.GoogleAPIKey)
		if err != nil {
			appLogger.Fatalf("Failed to initialize maps provider: %v", err)
		}
	}

	var paymentProvider payment.PaymentProvider
	switch cfg.Payment.Gateway {
	case "stripe":
		paymentProvider = payment.NewStripeProvider(cfg.Payment.StripeSecretKey)
	default:
		paymentProvider = payment.NewRazorpayProvider(cfg.Payment.RazorpayKeyID, cfg.Payment.RazorpayKeySecret)
	}

	registry := providers.NewRegistry()
	walkProvider := providers.NewWalkProvider(mapsProvider, cfg.Providers.WalkSpeedKMH, cfg.Providers.QuoteValidity)
	registry.RegisterQuoter(walkProvider)
	for mode, endpoint := range cfg.Providers.Endpoints {
		p := providers.NewHTTPProvider(mode, endpoint.Name, endpoint.BaseURL, endpoint.APIKey,
			cfg.Providers.RequestTimeout, cfg.Providers.QuoteValidity)
		registry.RegisterQuoter(p)
		registry.RegisterBooker(p)
	}

	bookingRepo := mongorepos.NewBookingRepository(mongodb.Database)
	paymentRepo := mongorepos.NewPaymentRepository(mongodb.Database)
	corridorRepo := mongorepos.NewCorridorRepository(mongodb.Database)

	hub := websocket.NewHub()
	go hub.Run()

	journeyStore := services.NewJourneyStore(redisCache, cfg.Planner.PlanSessionTTL)
	decomposerService := services.NewDecomposerService(corridorRepo, redisCache, cfg.Planner, appLogger)
	quoteService := services.NewQuoteService(registry, cfg.Planner, appLogger)
	plannerService := services.NewPlannerService(decomposerService, quoteService, journeyStore, cfg.Planner, appLogger)
	bookingService := services.NewBookingService(
		journeyStore, registry, bookingRepo, paymentRepo, paymentProvider,
		hub, cfg.App.Currency, cfg.Providers.CancelMaxRetries, appLogger,
	)

	planningHandler := handlers.NewPlanningHandler(plannerService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	wsHandler := websocket.NewHandler(hub)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(appLogger))

	v1 := router.Group("/api/v1")
	{
		routes.SetupPlanningRoutes(v1, planningHandler, cfg.Security.JWTSecret)
		routes.SetupBookingRoutes(v1, bookingHandler, wsHandler, cfg.Security.JWTSecret)
	}

	router.GET("/health", func(c *gin.Context) {
		status := "healthy"
		code := http.StatusOK
		if err := mongodb.Ping(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":  status,
			"version": cfg.App.Version,
		})
	})

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	appLogger.WithField("addr", addr).Info("Server starting")
	if err := router.Run(addr); err != nil {
		appLogger.Fatalf("Server failed: %v", err)
	}
}
