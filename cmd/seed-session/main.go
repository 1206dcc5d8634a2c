package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fumiyashop/priceapi/internal/config"
	"github.com/fumiyashop/priceapi/internal/domain"
	"github.com/fumiyashop/priceapi/internal/session"
)

// Stores an offline access token for the configured shop. The OAuth flow that
// produces the token lives in the Shopify app tooling; this tool just seeds
// its result into the session store so the API and jobs can run.
func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	token := flag.String("token", "", "offline access token (required)")
	scope := flag.String("scope", "read_products,write_products", "granted access scope")
	flag.Parse()

	if *token == "" {
		fmt.Fprintln(os.Stderr, "Usage: seed-session -token <access-token> [-scope <scope>]")
		os.Exit(1)
	}

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

	sess := &domain.Session{
		ID:          session.OfflineSessionID(cfg.Shopify.ShopDomain),
		Shop:        cfg.Shopify.ShopDomain,
		AccessToken: *token,
		Scope:       *scope,
	}
	if err := sessions.Save(ctx, sess); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save session: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Stored offline session %s\n", sess.ID)
}
