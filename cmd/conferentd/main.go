package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"conferent-backend/config"
	"conferent-backend/internal/api"
	"conferent-backend/internal/auth"
	"conferent-backend/internal/booking"
	"conferent-backend/internal/clock"
	"conferent-backend/internal/db"
	"conferent-backend/internal/invite"
	"conferent-backend/internal/notification"
	"conferent-backend/internal/reminder"
	"conferent-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "conferent ", log.LstdFlags)

	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Printf("failed to read .env: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Auth.JWTSecret == "" {
		logger.Fatalf("auth.jwt_secret (or JWT_SECRET) must be set")
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Printf("database initialized successfully (%s)", cfg.Database.Driver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	clk := clock.System{}

	var notifiers notification.Multi
	var webpushOptions *webpush.Options
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, appStore, webpushOptions, cfg.Booking.Location)
		pool.Start(ctx)
		notifiers = append(notifiers, pool)
	} else {
		logger.Println("VAPID keys are not configured; web push is disabled")
	}
	if cfg.Notification.AMQPURL != "" {
		publisher := notification.NewAMQPPublisher(cfg.Notification.AMQPURL, cfg.Notification.AMQPQueue, cfg.WorkerPool.QueueSize)
		publisher.Start(ctx)
		notifiers = append(notifiers, publisher)
		logger.Printf("publishing reservation events to queue %q", cfg.Notification.AMQPQueue)
	}

	bookings := booking.NewService(appStore, clk, notifiers, booking.Options{
		RequireFutureStart: cfg.Booking.RequireFutureStart,
	})
	invites := invite.NewManager(appStore, clk, cfg.Invites.StrictTransitions)
	authSvc := auth.NewService(appStore, auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, clk), cfg.Auth.BcryptCost)

	if cfg.Reminder.Enabled && len(notifiers) > 0 {
		reminders := reminder.NewService(appStore, clk, notifiers, cfg.Reminder.Interval, cfg.Reminder.Lead)
		go reminders.Run(ctx)
	}

	handler := api.NewHandler(api.Deps{
		Store:      appStore,
		Bookings:   bookings,
		Invites:    invites,
		Auth:       authSvc,
		WebPush:    webpushOptions,
		Location:   cfg.Booking.Location,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	router := api.NewRouter(handler, api.RouterOptions{
		RateLimit:      rate.Limit(cfg.Server.RateLimitPerSec),
		RateBurst:      cfg.Server.RateLimitBurst,
		CacheTTL:       time.Duration(cfg.Server.CacheTTLSeconds) * time.Second,
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
	})
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
