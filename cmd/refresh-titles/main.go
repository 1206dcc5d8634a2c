package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fumiyashop/priceapi/internal/config"
	"github.com/fumiyashop/priceapi/internal/service"
	"github.com/fumiyashop/priceapi/internal/session"
)

// Runs one title refresh pass and exits. Useful for running the job from an
// external scheduler instead of the in-process loop.
func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	ctx := context.Background()

	sessions, err := session.New(ctx, cfg.SessionStore, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open session store: %v\n", err)
		os.Exit(1)
	}
	defer sessions.Close()

	refresher := service.NewTitleRefresher(cfg, sessions, logger)
	if err := refresher.RunOnce(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Title refresh failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Title refresh pass completed")
}
