package domain

import "time"

// Product is a read-through copy of a Shopify product. Fetched per request,
// never persisted.
type Product struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Variants []Variant `json:"variants"`
}

// Variant is a purchasable configuration of a product with its own price.
type Variant struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	Price string `json:"price"`
}

// PriceUpdate is one requested price change for a variant.
type PriceUpdate struct {
	ProductID string `json:"productId" binding:"required"`
	VariantID string `json:"variantId" binding:"required"`
	Price     string `json:"price" binding:"required"`
}

// FieldError is a field-level user error reported by Shopify for one mutation.
type FieldError struct {
	Field   []string `json:"field,omitempty"`
	Message string   `json:"message"`
}

// ProductUpdateSuccess is the per-product success entry of a batch.
type ProductUpdateSuccess struct {
	ProductID    string    `json:"productId"`
	ProductTitle string    `json:"productTitle"`
	Variants     []Variant `json:"variants"`
}

// ProductUpdateFailure is the per-product failure entry of a batch.
type ProductUpdateFailure struct {
	ProductID    string       `json:"productId"`
	ProductTitle string       `json:"productTitle"`
	Errors       []FieldError `json:"errors"`
}

// BatchResult aggregates one bulk-update request. Built once per request and
// returned directly; both slices can be non-empty (partial success).
type BatchResult struct {
	SuccessfulUpdates []ProductUpdateSuccess
	Failures          []ProductUpdateFailure
}

// AllSucceeded reports whether no product in the batch failed.
func (r *BatchResult) AllSucceeded() bool {
	return len(r.Failures) == 0
}

// Session is a merchant-scoped offline access credential, valid independent of
// any browser session. Stored by the session store keyed by its ID.
type Session struct {
	ID          string
	Shop        string
	AccessToken string
	Scope       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
