package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/redis/go-redis/v9"

	"hostel-order-backend/config"
	"hostel-order-backend/internal/api"
	"hostel-order-backend/internal/auth"
	"hostel-order-backend/internal/db"
	"hostel-order-backend/internal/live"
	"hostel-order-backend/internal/notification"
	"hostel-order-backend/internal/store"
	"hostel-order-backend/pkg/logging"
)

func main() {
	logging.Setup()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load configuration", "path", configPath, "error", err)
		os.Exit(1)
	}
	slog.Info("configuration loaded", "path", configPath)

	if cfg.Auth.JWTSecret == "" {
		slog.Error("auth.jwt_secret must be configured")
		os.Exit(1)
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	slog.Info("database initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Auth.RedisAddr,
		Password: cfg.Auth.RedisPassword,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Error("failed to connect to redis", "addr", cfg.Auth.RedisAddr, "error", err)
		os.Exit(1)
	}
	slog.Info("redis connected", "addr", cfg.Auth.RedisAddr)

	var webpushOptions *webpush.Options
	var notifier api.Notifier
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions)
		pool.Start(ctx)
		notifier = pool
		slog.Info("notification worker pool started", "size", cfg.WorkerPool.Size)
	} else {
		slog.Warn("VAPID keys are not configured; push notifications disabled")
	}

	handler := api.NewHandler(api.Deps{
		Store:       appStore,
		Hub:         live.NewHub(),
		Tokens:      auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Passwords:   auth.NewPasswordAuthenticator(appStore, cfg.Auth.EmailDomain),
		OTP:         auth.NewOTPStore(redisClient, cfg.OTP, &auth.LogSender{}),
		Revoker:     auth.NewRevoker(redisClient),
		Webpush:     webpushOptions,
		Notifier:    notifier,
		CountryCode: cfg.Auth.CountryCode,
	})

	router := api.NewRouter(handler, api.RouterConfig{
		RateLimitPerSec: cfg.Server.RateLimitPerSec,
		RateLimitBurst:  cfg.Server.RateLimitBurst,
		CacheTTL:        time.Duration(cfg.Server.CacheTTLSeconds) * time.Second,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	slog.Info("shutdown signal received, stopping services")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("server gracefully stopped")
}
