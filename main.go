package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/agriconnect/whatsapp-backend/database"
	"github.com/agriconnect/whatsapp-backend/internal/config"
	"github.com/agriconnect/whatsapp-backend/internal/handlers"
	"github.com/agriconnect/whatsapp-backend/internal/jobs"
	"github.com/agriconnect/whatsapp-backend/internal/metrics"
	"github.com/agriconnect/whatsapp-backend/internal/models"
	"github.com/agriconnect/whatsapp-backend/internal/routes"
	"github.com/agriconnect/whatsapp-backend/internal/services"
	"github.com/agriconnect/whatsapp-backend/internal/storage"
	"github.com/agriconnect/whatsapp-backend/pkg/logger"
)

const version = "1.0.0"

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		if err := godotenv.Load(".env"); err != nil {
			_ = godotenv.Load("environments/.env.development")
		}
	}

	cfg := config.Load()

	var (
		log *logger.Logger
		err error
	)
	if cfg.IsDevelopment() {
		log, err = logger.NewDevelopment()
	} else {
		log, err = logger.New(cfg.LogLevel)
	}
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	// Initialize storage
	var (
		catalog interface {
			storage.Catalog
			storage.ProductReader
		}
		db       *gorm.DB
		sessions storage.SessionStore
	)

	if cfg.UseMemoryStore {
		log.Warn("using in-memory catalog (not for production!)")
		memory := storage.NewMemoryCatalog()
		seedDemoCatalog(memory)
		catalog = memory
	} else {
		db, err = database.Connect(cfg, log)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		if err := database.Migrate(db); err != nil {
			log.Fatal("failed to migrate database", zap.Error(err))
		}
		log.Info("database migrations completed")
		if _, err := database.EnsureDefaultFarmer(db, cfg.DefaultFarmerID); err != nil {
			log.Fatal("failed to create default farmer profile", zap.Error(err))
		}
		catalog = storage.NewDatabaseCatalog(db)
	}

	var redisClient *redis.Client
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("failed to connect to redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		sessions = storage.NewRedisSessionStore(redisClient, cfg.SessionTTL)
	case config.SessionStorePostgres:
		sessions = storage.NewDatabaseSessionStore(db)
	default:
		sessions = storage.NewMemorySessionStore()
	}
	log.Info("session store ready", zap.String("backend", cfg.SessionStore))

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	botMetrics := metrics.NewBotMetrics(registry)

	// Outbound WhatsApp provider
	dispatcher, provider, reason := services.BuildDispatcher(services.DispatcherConfig{
		Preference:         cfg.WhatsAppProvider,
		CloudAccessToken:   cfg.WhatsAppAccessToken,
		CloudPhoneNumberID: cfg.WhatsAppPhoneNumberID,
		CloudAPIVersion:    cfg.WhatsAppAPIVersion,
		CloudGraphURL:      cfg.WhatsAppGraphURL,
		TwilioAccountSID:   cfg.TwilioAccountSID,
		TwilioAuthToken:    cfg.TwilioAuthToken,
		TwilioWhatsAppFrom: cfg.TwilioWhatsAppFrom,
	}, log)
	if reason != "" {
		log.Warn("no WhatsApp provider configured, replies will only be logged", zap.String("reason", reason))
	}
	dispatcher = services.NewInstrumentedDispatcher(dispatcher, provider, botMetrics, log)

	engine := services.NewConversationEngine(sessions, catalog, dispatcher, services.EngineOptions{
		DefaultFarmerID: cfg.DefaultFarmerID,
		Metrics:         botMetrics,
		Logger:          log,
	})

	var sweepJob *jobs.SessionSweepJob
	if sweeper, ok := sessions.(storage.SessionSweeper); ok && cfg.SessionIdleSweep > 0 {
		sweepJob = jobs.NewSessionSweepJob(sweeper, cfg.SessionIdleSweep, 0, log)
		sweepJob.Start()
	}

	// Handlers
	var pinger handlers.Pinger
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal("failed to get database handle", zap.Error(err))
		}
		pinger = sqlDB
	}
	var counter storage.SessionCounter
	if c, ok := sessions.(storage.SessionCounter); ok {
		counter = c
	}

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "AgriConnect WhatsApp Backend v" + version,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	routes.SetupRoutes(app, routes.Options{
		WhatsApp:         handlers.NewWhatsAppHandler(engine, cfg.WhatsAppVerifyToken, botMetrics, log),
		Products:         handlers.NewProductHandler(catalog, log),
		Health:           handlers.NewHealthHandler(version, cfg.StorageType(), provider, counter, pinger),
		AppSecret:        cfg.WhatsAppAppSecret,
		EnableTestRoutes: cfg.EnableTestRoutes,
		Gatherer:         registry,
	})

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("gracefully shutting down")
		if sweepJob != nil {
			sweepJob.Stop()
		}
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("server shutdown failed", zap.Error(err))
		}
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}()

	log.Info("AgriConnect WhatsApp backend starting",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
		zap.String("storage", cfg.StorageType()),
		zap.String("sessions", cfg.SessionStore),
		zap.String("whatsapp_provider", provider),
		zap.Bool("signature_check", cfg.WhatsAppAppSecret != ""),
		zap.Bool("test_routes", cfg.EnableTestRoutes),
	)

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

// seedDemoCatalog fills the in-memory catalog so local runs have something to search.
func seedDemoCatalog(m *storage.MemoryCatalog) {
	m.AddProfile(models.Profile{
		UserID:      config.DefaultFarmerID,
		DisplayName: "AgriConnect Demo Farm",
		Role:        "farmer",
	})
	for _, s := range []models.Supply{
		{Name: "Urea Fertilizer", Category: "fertilizer", Price: 266.5, QuantityAvailable: 200, Unit: "bag", SupplierName: "Kisan Agro Store", Description: "45 kg bag"},
		{Name: "DAP Fertilizer", Category: "fertilizer", Price: 1350, QuantityAvailable: 80, Unit: "bag", SupplierName: "Kisan Agro Store"},
		{Name: "Tomato Seeds (Hybrid)", Category: "seeds", Price: 120, QuantityAvailable: 500, Unit: "packet", SupplierName: "Green Seeds Co."},
		{Name: "Drip Irrigation Kit", Category: "equipment", Price: 4500, QuantityAvailable: 15, Unit: "kit", SupplierName: "FarmTech Supplies", Description: "Covers half an acre"},
		{Name: "Neem Oil Pesticide", Category: "pesticide", Price: 350, QuantityAvailable: 60, Unit: "litre", SupplierName: "Organic Inputs"},
	} {
		m.AddSupply(s)
	}
}
