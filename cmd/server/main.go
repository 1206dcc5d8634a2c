package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fumiyashop/priceapi/internal/api"
	"github.com/fumiyashop/priceapi/internal/config"
	"github.com/fumiyashop/priceapi/internal/service"
	"github.com/fumiyashop/priceapi/internal/session"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	logger.Info("Starting bulk price API server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("shop", cfg.Shopify.ShopDomain),
	)

	// Initialize session store (backend chosen once from config)
	sessions, err := session.New(context.Background(), cfg.SessionStore, logger)
	if err != nil {
		logger.Fatal("Failed to open session store", zap.Error(err))
	}
	defer sessions.Close()

	// Title refresh job
	refresher := service.NewTitleRefresher(cfg, sessions, logger)

	// Initialize router
	router := api.NewRouter(cfg, sessions, refresher, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Title refresh: run once on startup, then on every tick
	jobCtx, jobCancel := context.WithCancel(context.Background())
	defer jobCancel()
	if cfg.TitleRefresh.Enabled {
		go refresher.RunLoop(jobCtx)
		logger.Info("Title refresh job started",
			zap.Duration("interval", cfg.TitleRefresh.Interval),
			zap.String("timezone", cfg.TitleRefresh.Timezone),
		)
	}

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	jobCancel()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
