package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/purushotam56/hatiri-storefront-service/config"
	"github.com/purushotam56/hatiri-storefront-service/internal/auth"
	"github.com/purushotam56/hatiri-storefront-service/pkg/blob"
	"github.com/purushotam56/hatiri-storefront-service/pkg/broker"
	"github.com/purushotam56/hatiri-storefront-service/pkg/cache"
	"github.com/purushotam56/hatiri-storefront-service/pkg/database/postgres"
	"github.com/purushotam56/hatiri-storefront-service/pkg/logger"
	"github.com/purushotam56/hatiri-storefront-service/pkg/search"

	orderH "github.com/purushotam56/hatiri-storefront-service/internal/order/handler"
	orderListenerPkg "github.com/purushotam56/hatiri-storefront-service/internal/order/listener"
	orderRepoPkg "github.com/purushotam56/hatiri-storefront-service/internal/order/repository"
	orderUCPkg "github.com/purushotam56/hatiri-storefront-service/internal/order/usecase"

	prodH "github.com/purushotam56/hatiri-storefront-service/internal/product/handler"
	prodRepoPkg "github.com/purushotam56/hatiri-storefront-service/internal/product/repository"
	prodUCPkg "github.com/purushotam56/hatiri-storefront-service/internal/product/usecase"

	stockH "github.com/purushotam56/hatiri-storefront-service/internal/stock/handler"
	stockRepoPkg "github.com/purushotam56/hatiri-storefront-service/internal/stock/repository"
	stockUCPkg "github.com/purushotam56/hatiri-storefront-service/internal/stock/usecase"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.Config{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}
	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
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

	// 5. Initialize Kafka
	orderProducer := broker.NewProducer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.OrderTopic,
	})
	defer orderProducer.Close()
	appLogger.Info("Connected to Kafka Producer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.OrderTopic))

	// 5.5 Initialize Elasticsearch
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Elasticsearch (Search features might be limited)", zap.Error(err))
		esClient = nil
	} else {
		appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	// 5.8 Initialize Blob Store
	blobStore, err := blob.NewLocalStore(cfg.Blob.Dir, cfg.Blob.BaseURL)
	if err != nil {
		appLogger.Fatal("Could not initialize blob store", zap.Error(err))
	}

	// 6. Initialize Repositories
	txManager := postgres.NewTxManager(db)
	prodRepo := prodRepoPkg.NewPGRepository(db)
	orderRepo := orderRepoPkg.NewPGRepository(db)
	stockRepo := stockRepoPkg.NewPGRepository(db)

	// 7. Initialize UseCases
	stockUC := stockUCPkg.NewStockUseCase(stockRepo, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, redisClient, esClient, blobStore, txManager, appLogger)
	orderUC := orderUCPkg.NewOrderUseCase(orderRepo, prodRepo, stockUC, txManager, redisClient, orderProducer, appLogger)

	// 7.5 Initialize Delivery Listener
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Kafka.ListenerEnable {
		deliveryConsumer := broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.DeliveryTopic,
			GroupID: cfg.Kafka.ListenerGroup,
		})
		defer deliveryConsumer.Close()

		deliveryListener := orderListenerPkg.NewDeliveryListener(deliveryConsumer, orderUC, appLogger)
		go deliveryListener.Start(ctx)
	}

	// 8. Initialize Handlers and Router
	orderHandler := orderH.NewOrderHandler(orderUC, appLogger)
	prodHandler := prodH.NewProductHandler(prodUC, blobStore, appLogger)
	stockHandler := stockH.NewStockHandler(stockUC, appLogger)

	if cfg.Server.AppEnv != "dev" && cfg.Server.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Static("/uploads", cfg.Blob.Dir)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := router.Group("/api")
	orderHandler.RegisterPublic(public)
	prodHandler.RegisterPublic(public)

	seller := router.Group("/api/seller")
	seller.Use(auth.Middleware([]byte(cfg.Auth.JWTSecret)))
	orderHandler.RegisterSeller(seller)
	prodHandler.RegisterSeller(seller)
	stockHandler.RegisterRoutes(seller)

	// 9. Start HTTP Server
	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	srv := &http.Server{
		Addr:    port,
		Handler: router,
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("forced shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
