package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fumiyashop/priceapi/internal/config"
	"github.com/fumiyashop/priceapi/internal/domain"
	"github.com/fumiyashop/priceapi/internal/metrics"
	"github.com/fumiyashop/priceapi/internal/session"
	"github.com/fumiyashop/priceapi/internal/shopify"
	"github.com/fumiyashop/priceapi/pkg/errors"
)

// TitleRefresher periodically rewrites product titles. It is unrelated to the
// price update path and shares nothing with it beyond the GraphQL client.
type TitleRefresher struct {
	cfg      *config.Config
	sessions session.Store
	logger   *zap.Logger
	mu       sync.Mutex
}

func NewTitleRefresher(cfg *config.Config, sessions session.Store, logger *zap.Logger) *TitleRefresher {
	return &TitleRefresher{
		cfg:      cfg,
		sessions: sessions,
		logger:   logger,
	}
}

// RunOnce performs one refresh pass: load the offline session, fetch the
// first product page, and rewrite each title sequentially. A missing session
// skips the run; per-product failures are logged and the pass continues.
func (t *TitleRefresher) RunOnce(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	sess, err := t.sessions.Load(ctx, session.OfflineSessionID(t.cfg.Shopify.ShopDomain))
	if err != nil {
		if _, ok := err.(*errors.ErrSessionMissing); ok {
			t.logger.Warn("Title refresh skipped: no offline session", zap.String("shop", t.cfg.Shopify.ShopDomain))
			metrics.TitleRefreshRuns.WithLabelValues("skipped").Inc()
			return nil
		}
		metrics.TitleRefreshRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("load session: %w", err)
	}

	client := shopify.NewClient(t.cfg.Shopify, sess, t.logger)

	products, err := t.fetchTitles(ctx, client)
	if err != nil {
		metrics.TitleRefreshRuns.WithLabelValues("error").Inc()
		return err
	}

	loc, err := time.LoadLocation(t.cfg.TitleRefresh.Timezone)
	if err != nil {
		t.logger.Warn("Invalid title refresh timezone, using UTC", zap.String("timezone", t.cfg.TitleRefresh.Timezone))
		loc = time.UTC
	}
	now := time.Now().In(loc)

	updated := 0
	for i, p := range products {
		newTitle := fmt.Sprintf("T-shirt%d %s %s", i+1, now.Format("2006-01-02"), now.Format("15:04"))
		if err := t.updateTitle(ctx, client, p.ID, newTitle); err != nil {
			t.logger.Error("Failed to update product title",
				zap.String("product_id", p.ID),
				zap.Error(err),
			)
			continue
		}
		updated++
	}

	t.logger.Info("Title refresh pass finished",
		zap.Int("products", len(products)),
		zap.Int("updated", updated),
	)
	metrics.TitleRefreshRuns.WithLabelValues("success").Inc()
	return nil
}

// RunLoop runs once, then on every tick until ctx is cancelled. Call from a
// goroutine.
func (t *TitleRefresher) RunLoop(ctx context.Context) {
	if err := t.RunOnce(ctx); err != nil {
		t.logger.Error("Title refresh run failed", zap.Error(err))
	}

	ticker := time.NewTicker(t.cfg.TitleRefresh.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.RunOnce(ctx); err != nil {
				t.logger.Error("Title refresh run failed", zap.Error(err))
			}
		}
	}
}

func (t *TitleRefresher) fetchTitles(ctx context.Context, client *shopify.Client) ([]domain.Product, error) {
	variables := map[string]interface{}{
		"first": productPageSize,
	}
	resp, err := client.Execute(ctx, shopify.ProductTitlesQuery, variables)
	if err != nil {
		return nil, fmt.Errorf("fetch product titles: %w", err)
	}

	var result struct {
		Products struct {
			Nodes []domain.Product `json:"nodes"`
		} `json:"products"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("parse product titles response: %w", err)
	}
	return result.Products.Nodes, nil
}

func (t *TitleRefresher) updateTitle(ctx context.Context, client *shopify.Client, productID, title string) error {
	variables := map[string]interface{}{
		"id":    productID,
		"title": title,
	}
	resp, err := client.Execute(ctx, shopify.ProductUpdateMutation, variables)
	if err != nil {
		return err
	}

	var result struct {
		ProductUpdate struct {
			Product *struct {
				ID    string `json:"id"`
				Title string `json:"title"`
			} `json:"product"`
			UserErrors []domain.FieldError `json:"userErrors"`
		} `json:"productUpdate"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("parse productUpdate response: %w", err)
	}
	if len(result.ProductUpdate.UserErrors) > 0 {
		return fmt.Errorf("productUpdate userErrors: %v", result.ProductUpdate.UserErrors)
	}
	return nil
}
