package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/roomledger/roomledger/internal/api"
	"github.com/roomledger/roomledger/internal/auth"
	"github.com/roomledger/roomledger/internal/cache"
	"github.com/roomledger/roomledger/internal/middleware"
	"github.com/roomledger/roomledger/internal/service"
	"github.com/roomledger/roomledger/internal/storage/sqlite"
	"github.com/roomledger/roomledger/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		slog.Warn("Ignoring non-numeric env value", "key", key, "value", value)
	}
	return fallback
}

func main() {
	logging.Setup()

	addr := getEnv("ADDR", ":8080")
	dbPath := getEnv("DB_PATH", "./data/roomledger.db")
	jwtSecret := getEnv("JWT_SECRET", "")
	tokenTTL := time.Duration(getEnvInt("TOKEN_TTL_HOURS", 72)) * time.Hour
	rateLimit := getEnvInt("RATE_LIMIT", 120)

	if jwtSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	var balanceCache cache.Cache
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		balanceCache = cache.NewRedisCache(redisAddr)
		slog.Info("Using Redis balance cache", "addr", redisAddr)
	} else {
		balanceCache = cache.NewMemoryCache()
		slog.Info("Using in-memory balance cache")
	}

	jwtManager := auth.NewJWTManager(jwtSecret, tokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	transactions := service.NewTransactionService(store)
	budgets := service.NewBudgetService(store, transactions)
	analytics := service.NewAnalyticsService(transactions)
	rooms := service.NewRoomService(store, balanceCache)
	authService := service.NewAuthService(authenticator, jwtManager)

	server := api.NewServer(jwtManager, authService, transactions, budgets, analytics, rooms)

	limiter := middleware.NewRateLimiter(rateLimit, time.Minute)
	defer limiter.Stop()

	handler := middleware.Metrics(
		middleware.Logging(
			middleware.CORS(
				middleware.RateLimit(limiter, server.Handler()),
			),
		),
	)

	// h2c allows HTTP/2 without TLS for clients behind a terminating proxy.
	httpServer := &http.Server{
		Addr:    addr,
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}

	go func() {
		slog.Info("Server starting", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
}
