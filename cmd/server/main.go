package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/wholesaleops/stockledger/config"
	"github.com/wholesaleops/stockledger/internal/health"
	healthH "github.com/wholesaleops/stockledger/internal/health/handler"
	healthRepoPkg "github.com/wholesaleops/stockledger/internal/health/repository"
	invH "github.com/wholesaleops/stockledger/internal/inventory/handler"
	invRepoPkg "github.com/wholesaleops/stockledger/internal/inventory/repository"
	invUCPkg "github.com/wholesaleops/stockledger/internal/inventory/usecase"
	ordH "github.com/wholesaleops/stockledger/internal/order/handler"
	ordRepoPkg "github.com/wholesaleops/stockledger/internal/order/repository"
	ordUCPkg "github.com/wholesaleops/stockledger/internal/order/usecase"
	"github.com/wholesaleops/stockledger/internal/recovery"
	recH "github.com/wholesaleops/stockledger/internal/recovery/handler"
	recRepoPkg "github.com/wholesaleops/stockledger/internal/recovery/repository"
	"github.com/wholesaleops/stockledger/internal/txmanager"
	txH "github.com/wholesaleops/stockledger/internal/txmanager/handler"
	txRepoPkg "github.com/wholesaleops/stockledger/internal/txmanager/repository"
	"github.com/wholesaleops/stockledger/pkg/cache"
	"github.com/wholesaleops/stockledger/pkg/logger"
	"github.com/wholesaleops/stockledger/pkg/messaging"
	"github.com/wholesaleops/stockledger/pkg/metrics"
	"github.com/wholesaleops/stockledger/pkg/postgres"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.Config{
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     false,
		DisableStacktrace: false,
	}
	if cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development" {
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}
	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := postgres.New(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	// 4. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 5. Initialize RabbitMQ
	rabbitClient := messaging.NewRabbitMQClient(&messaging.Config{
		Host:       cfg.RabbitMQ.Host,
		Port:       cfg.RabbitMQ.Port,
		Username:   cfg.RabbitMQ.Username,
		Password:   cfg.RabbitMQ.Password,
		VHost:      cfg.RabbitMQ.VHost,
		Exchange:   cfg.RabbitMQ.Exchange,
		RetryCount: cfg.RabbitMQ.RetryCount,
		RetryDelay: time.Duration(cfg.RabbitMQ.RetryDelay) * time.Second,
	})
	var alertPublisher *messaging.Publisher
	if err := rabbitClient.Connect(); err != nil {
		appLogger.Warn("Could not connect to RabbitMQ (alerts disabled)", zap.Error(err))
	} else {
		defer rabbitClient.Close()
		alertPublisher = messaging.NewPublisher(rabbitClient)
		appLogger.Info("Connected to RabbitMQ", zap.String("exchange", cfg.RabbitMQ.Exchange))
	}

	// 6. Initialize Metrics
	metrics.Register()
	go func() {
		if err := metrics.Serve(cfg.Server.MetricsPort); err != nil {
			appLogger.Error("metrics listener stopped", zap.Error(err))
		}
	}()

	// 7. Initialize Repositories
	txRepo := txRepoPkg.NewPGRepository(db)
	invRepo := invRepoPkg.NewPGRepository(db)
	ordRepo := ordRepoPkg.NewPGRepository(db)
	recRepo := recRepoPkg.NewPGRepository(db)
	healthRepo := healthRepoPkg.NewPGRepository(db)

	// 8. Initialize Transaction Manager and Recovery Queue
	var txAlerts txmanager.AlertPublisher
	var healthAlerts health.AlertPublisher
	if alertPublisher != nil {
		txAlerts = alertPublisher
		healthAlerts = alertPublisher
	}
	txManager := txmanager.NewManager(txmanager.Config{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   time.Duration(cfg.Retry.BaseDelayMs) * time.Millisecond,
	}, txRepo, txAlerts, appLogger)

	recQueue := recovery.NewQueue(recRepo, appLogger)
	errorLog := recovery.NewErrorLog(recRepo, appLogger)

	// Recovery handlers: an entry completes only once every effect of the
	// sequence it was driving is visible in the store.
	recQueue.Register(ordUCPkg.OpOrderCreation, ordUCPkg.FulfillmentRecoveryHandler(ordRepo, invRepo))
	recQueue.Register(ordUCPkg.OpReturnItems, ordUCPkg.ReturnRecoveryHandler(ordRepo, invRepo))

	// 9. Initialize UseCases
	invUC := invUCPkg.NewInventoryUseCase(invRepo, appLogger)
	ordUC := ordUCPkg.NewOrderUseCase(ordRepo, invRepo, txManager, redisClient, recQueue, errorLog, appLogger)

	// 10. Initialize Health Monitor
	monitor := health.NewMonitor(health.Config{
		Interval:          time.Duration(cfg.Health.IntervalSeconds) * time.Second,
		LowStockThreshold: cfg.Health.LowStockThreshold,
	}, healthRepo, recQueue, healthAlerts, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go monitor.Start(ctx)

	// 11. Initialize Handlers
	invHandler := invH.NewInventoryHandler(invUC, appLogger)
	ordHandler := ordH.NewOrderHandler(ordUC, appLogger)
	txHandler := txH.NewTransactionHandler(txManager, healthRepo.ProbeOrders, appLogger)
	recHandler := recH.NewRecoveryHandler(recRepo, recQueue, appLogger)
	healthHandler := healthH.NewHealthHandler(monitor)

	// 12. Start HTTP Server
	app := fiber.New(fiber.Config{
		AppName:      "stockledger",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	app.Get("/health", healthHandler.Check)

	api := app.Group("/api/v1")

	inv := api.Group("/inventory/:table")
	inv.Get("/", invHandler.List)
	inv.Post("/", invHandler.Create)
	inv.Put("/:id", invHandler.Update)
	inv.Put("/:id/comment", invHandler.UpdateComment)
	inv.Delete("/:id", invHandler.Delete)

	orders := api.Group("/orders")
	orders.Post("/", ordHandler.Create)
	orders.Get("/", ordHandler.ListRecent)
	orders.Get("/:billID", ordHandler.GetBill)
	orders.Get("/:billID/items", ordHandler.ListItems)
	orders.Post("/:billID/return", ordHandler.Return)

	tx := api.Group("/transactions")
	tx.Get("/unresolved", txHandler.Unresolved)
	tx.Post("/:txID/resolve", txHandler.Resolve)
	tx.Post("/:txID/retry", txHandler.Retry)

	api.Post("/errors", recHandler.ReportError)
	api.Get("/errors", recHandler.ListErrors)
	api.Post("/recovery/process", recHandler.ProcessQueue)

	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	appLogger.Info("Starting HTTP server", zap.String("port", port))

	go func() {
		if err := app.Listen(port); err != nil {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("shutdown error", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
