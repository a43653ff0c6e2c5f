package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nishadmahmud/apple-nation/internal/cart"
	"github.com/nishadmahmud/apple-nation/internal/catalog"
	h "github.com/nishadmahmud/apple-nation/internal/http"
	"github.com/nishadmahmud/apple-nation/internal/poller"
	"github.com/nishadmahmud/apple-nation/internal/storage"
)

type Config struct {
	HTTPPort        string
	CatalogAPIURL   string
	CategoriesFile  string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    []string
	KafkaGroupID    string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		CatalogAPIURL:   getEnv("CATALOG_API_URL", "https://api.apple-nation.example/v1"),
		CategoriesFile:  getEnv("CATEGORIES_FILE", ""),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:    strings.Split(getEnv("KAFKA_BROKERS", ""), ","),
		KafkaGroupID:    getEnv("KAFKA_GROUP_ID", "storefront-cart-clearer"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("could not load .env file: %v", err)
	}

	cfg := loadConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	categories, err := catalog.LoadCategories(cfg.CategoriesFile)
	if err != nil {
		logger.Fatal("failed to load categories", zap.Error(err))
	}

	// Cart persistence. Without Redis the carts live only in process memory,
	// which is still a working (if forgetful) configuration.
	var store storage.CartStore
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, carts will not survive restarts",
			zap.String("addr", cfg.RedisAddr),
			zap.Error(err))
		store = storage.NewMemoryStore()
	} else {
		store = storage.NewRedisStore(redisClient)
		logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	}
	cancelPing()

	cartService := cart.NewService(store, logger)
	defer cartService.Close()

	apiClient := catalog.NewClient(cfg.CatalogAPIURL, logger)
	aggregator := catalog.NewAggregator(apiClient, categories, catalog.Config{}, logger)

	cartHandler := h.NewCartHandler(cartService, cfg.RequestTimeout)
	productHandler := h.NewProductHandler(aggregator, apiClient, cartService, cfg.RequestTimeout)

	router := h.NewRouter(productHandler, cartHandler, cfg.RequestTimeout)

	// Checkout events empty the buyer's cart once an order is placed.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaBrokers[0] != "" {
		checkoutPoller := poller.New(cfg.KafkaBrokers, cfg.KafkaGroupID,
			func(ctx context.Context, sessionID string) {
				cartService.Clear(ctx, sessionID)
			}, logger)
		defer checkoutPoller.Close()
		go checkoutPoller.Run(ctx)
		logger.Info("checkout consumer started", zap.Strings("brokers", cfg.KafkaBrokers))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("storefront api starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
