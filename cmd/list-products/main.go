package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fumiyashop/priceapi/internal/config"
	"github.com/fumiyashop/priceapi/internal/service"
	"github.com/fumiyashop/priceapi/internal/session"
	"github.com/fumiyashop/priceapi/internal/shopify"
)

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

	sess, err := sessions.Load(ctx, session.OfflineSessionID(cfg.Shopify.ShopDomain))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load offline session: %v\n", err)
		os.Exit(1)
	}

	client := shopify.NewClient(cfg.Shopify, sess, logger)
	products, err := service.NewProductService(client, logger).FetchProducts(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to fetch products: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Found %d product(s)\n", len(products))
	out, _ := json.MarshalIndent(products, "", "  ")
	fmt.Println(string(out))
}
