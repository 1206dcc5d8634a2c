package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/fumiyashop/priceapi/internal/domain"
	"github.com/fumiyashop/priceapi/internal/metrics"
	"github.com/fumiyashop/priceapi/internal/shopify"
)

// PriceService runs bulk variant price updates against Shopify.
type PriceService struct {
	client *shopify.Client
	logger *zap.Logger
}

// NewPriceService creates a price service bound to one merchant's client.
func NewPriceService(client *shopify.Client, logger *zap.Logger) *PriceService {
	return &PriceService{
		client: client,
		logger: logger,
	}
}

// productBatch is the coalesced set of variant updates for one product.
type productBatch struct {
	productID string
	variants  []shopify.VariantPriceInput
}

// productResult is the outcome of one per-product mutation call.
type productResult struct {
	success *domain.ProductUpdateSuccess
	failure *domain.ProductUpdateFailure
}

// BulkUpdatePrices groups updates by owning product, issues one
// productVariantsBulkUpdate call per distinct product concurrently, and
// aggregates per-product outcomes. Products are not updated atomically as a
// set: successes stand even when sibling products fail, and the caller gets
// both sides. A per-product transport failure is recorded in the failure set
// rather than aborting the batch, so partial progress is never silently lost.
func (s *PriceService) BulkUpdatePrices(ctx context.Context, updates []domain.PriceUpdate) (*domain.BatchResult, error) {
	batches := groupByProduct(updates)
	if len(batches) == 0 {
		return &domain.BatchResult{}, nil
	}

	s.logger.Info("Running bulk price update",
		zap.Int("updates", len(updates)),
		zap.Int("products", len(batches)),
	)

	// Fan out one call per product, join all. Calls target independent
	// resources; there is no cancellation of in-flight siblings when one fails.
	results := make([]productResult, len(batches))
	var wg sync.WaitGroup
	for i, batch := range batches {
		wg.Add(1)
		go func(i int, batch productBatch) {
			defer wg.Done()
			results[i] = s.updateProduct(ctx, batch)
		}(i, batch)
	}
	wg.Wait()

	// Aggregate in first-seen product order so responses are deterministic.
	out := &domain.BatchResult{}
	for _, r := range results {
		if r.failure != nil {
			out.Failures = append(out.Failures, *r.failure)
			metrics.PriceUpdateProducts.WithLabelValues("error").Inc()
			continue
		}
		out.SuccessfulUpdates = append(out.SuccessfulUpdates, *r.success)
		metrics.PriceUpdateProducts.WithLabelValues("success").Inc()
	}

	if !out.AllSucceeded() {
		s.logger.Warn("Bulk price update finished with failures",
			zap.Int("succeeded", len(out.SuccessfulUpdates)),
			zap.Int("failed", len(out.Failures)),
		)
	}
	return out, nil
}

// UpdateVariantPrice updates a single variant through the same batching path.
func (s *PriceService) UpdateVariantPrice(ctx context.Context, update domain.PriceUpdate) (*domain.BatchResult, error) {
	return s.BulkUpdatePrices(ctx, []domain.PriceUpdate{update})
}

func (s *PriceService) updateProduct(ctx context.Context, batch productBatch) productResult {
	variables := map[string]interface{}{
		"productId": batch.productID,
		"variants":  batch.variants,
	}

	resp, err := s.client.Execute(ctx, shopify.ProductVariantsBulkUpdateMutation, variables)
	if err != nil {
		s.logger.Error("Bulk variant update call failed",
			zap.String("product_id", batch.productID),
			zap.Error(err),
		)
		// The platform response is unavailable here, so the entry carries no title.
		return productResult{failure: &domain.ProductUpdateFailure{
			ProductID: batch.productID,
			Errors:    []domain.FieldError{{Message: err.Error()}},
		}}
	}

	var result struct {
		ProductVariantsBulkUpdate struct {
			Product *struct {
				ID    string `json:"id"`
				Title string `json:"title"`
			} `json:"product"`
			ProductVariants []domain.Variant    `json:"productVariants"`
			UserErrors      []domain.FieldError `json:"userErrors"`
		} `json:"productVariantsBulkUpdate"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return productResult{failure: &domain.ProductUpdateFailure{
			ProductID: batch.productID,
			Errors:    []domain.FieldError{{Message: fmt.Sprintf("failed to parse bulk update response: %v", err)}},
		}}
	}

	productID := batch.productID
	productTitle := ""
	if result.ProductVariantsBulkUpdate.Product != nil {
		productID = result.ProductVariantsBulkUpdate.Product.ID
		productTitle = result.ProductVariantsBulkUpdate.Product.Title
	}

	if len(result.ProductVariantsBulkUpdate.UserErrors) > 0 {
		return productResult{failure: &domain.ProductUpdateFailure{
			ProductID:    productID,
			ProductTitle: productTitle,
			Errors:       result.ProductVariantsBulkUpdate.UserErrors,
		}}
	}

	return productResult{success: &domain.ProductUpdateSuccess{
		ProductID:    productID,
		ProductTitle: productTitle,
		Variants:     result.ProductVariantsBulkUpdate.ProductVariants,
	}}
}

// groupByProduct coalesces updates into at most one batch per distinct
// product, keeping first-seen product order and per-product update order.
func groupByProduct(updates []domain.PriceUpdate) []productBatch {
	index := make(map[string]int)
	batches := make([]productBatch, 0)
	for _, u := range updates {
		i, ok := index[u.ProductID]
		if !ok {
			i = len(batches)
			index[u.ProductID] = i
			batches = append(batches, productBatch{productID: u.ProductID})
		}
		batches[i].variants = append(batches[i].variants, shopify.VariantPriceInput{
			ID:    u.VariantID,
			Price: u.Price,
		})
	}
	return batches
}
