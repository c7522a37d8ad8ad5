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
	"gorm.io/gorm"

	"tank-status-backend/config"
	"tank-status-backend/internal/api"
	"tank-status-backend/internal/db"
	"tank-status-backend/internal/notify"
	"tank-status-backend/internal/sim"
	"tank-status-backend/internal/store"
	"tank-status-backend/internal/ws"
)

func main() {
	logger := log.New(os.Stdout, "tank-backend ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	// The relational backend is the only one needing a database
	// connection.
	var gormDB *gorm.DB
	if store.Backend(cfg.Storage.Backend) == store.BackendRelational {
		gormDB, err = db.Init(&cfg.Database)
		if err != nil {
			logger.Fatalf("failed to initialize database: %v", err)
		}
		logger.Println("database initialized successfully")
	}

	appStore, err := store.Open(cfg.Storage.Backend, gormDB)
	if err != nil {
		logger.Fatalf("failed to open record store: %v", err)
	}
	logger.Printf("record store initialized (backend: %s)", appStore.Backend())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Storage.SeedSamples {
		if err := store.Seed(ctx, appStore); err != nil {
			logger.Fatalf("failed to seed sample tanks: %v", err)
		}
	}

	hub := ws.NewHub()
	go hub.Run(ctx)

	// Web push alerts are optional; without VAPID keys the simulator
	// still runs, it just has nowhere to dispatch warnings.
	var webpushOptions *webpush.Options
	var alerts sim.AlertDispatcher
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notify.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions)
		pool.Start(ctx)
		alerts = pool
		logger.Println("alert worker pool started")
	} else {
		logger.Println("VAPID keys not configured; warning alerts disabled")
	}

	simulator := sim.NewService(&cfg.Simulator, appStore, hub, alerts, nil)
	go simulator.Run(ctx)

	router := api.NewRouter(&cfg.Server, appStore, hub, webpushOptions)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
