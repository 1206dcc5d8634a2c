package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/fumiyashop/priceapi/internal/domain"
	"github.com/fumiyashop/priceapi/internal/shopify"
	"github.com/fumiyashop/priceapi/pkg/errors"
)

// productPageSize caps the single page read from Shopify. Pagination past the
// first page is a known boundary limitation of this app.
const productPageSize = 100

// ProductService reads products and variants from Shopify.
type ProductService struct {
	client *shopify.Client
	logger *zap.Logger
}

func NewProductService(client *shopify.Client, logger *zap.Logger) *ProductService {
	return &ProductService{
		client: client,
		logger: logger,
	}
}

// FetchProducts returns the first page of products (up to 100, with up to 100
// variants each) flattened into the response shape the edit UI consumes.
func (s *ProductService) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	variables := map[string]interface{}{
		"first": productPageSize,
	}

	resp, err := s.client.Execute(ctx, shopify.ProductsWithVariantsQuery, variables)
	if err != nil {
		return nil, &errors.ErrUpstreamTransport{Op: "fetch products", Err: err}
	}

	var result struct {
		Products struct {
			Nodes []struct {
				ID       string `json:"id"`
				Title    string `json:"title"`
				Variants struct {
					Nodes []domain.Variant `json:"nodes"`
				} `json:"variants"`
			} `json:"nodes"`
		} `json:"products"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, &errors.ErrUpstreamTransport{Op: "fetch products", Err: fmt.Errorf("parse products response: %w", err)}
	}

	products := make([]domain.Product, 0, len(result.Products.Nodes))
	for _, node := range result.Products.Nodes {
		products = append(products, domain.Product{
			ID:       node.ID,
			Title:    node.Title,
			Variants: node.Variants.Nodes,
		})
	}

	s.logger.Debug("Fetched products", zap.Int("count", len(products)))
	return products, nil
}
