package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fumiyashop/priceapi/internal/config"
	"github.com/fumiyashop/priceapi/internal/domain"
	"github.com/fumiyashop/priceapi/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memStore is an in-memory session.Store for handler tests.
type memStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]*domain.Session)}
}

func (m *memStore) Load(_ context.Context, sessionID string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[sessionID]
	if !ok {
		return nil, &errors.ErrSessionMissing{Shop: sessionID}
	}
	return sess, nil
}

func (m *memStore) Save(_ context.Context, sess *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *memStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

func (m *memStore) Close() error { return nil }

func storeWithSession(shop string) *memStore {
	store := newMemStore()
	_ = store.Save(context.Background(), &domain.Session{
		ID:          "offline_" + shop,
		Shop:        shop,
		AccessToken: "token",
	})
	return store
}

func testConfig(endpoint string) *config.Config {
	return &config.Config{
		Shopify: config.ShopifyConfig{
			ShopDomain: "test-shop.myshopify.com",
			Endpoint:   endpoint,
		},
	}
}

// graphQLStub answers any GraphQL POST with the JSON body built per request.
func graphQLStub(t *testing.T, respond func(query string, variables json.RawMessage) interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query     string          `json:"query"`
			Variables json.RawMessage `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(respond(req.Query, req.Variables))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetProductsNoSession(t *testing.T) {
	cfg := testConfig("http://unused.invalid")
	router := gin.New()
	router.GET("/api/get-products", HandleGetProducts(cfg, newMemStore(), zap.NewNop()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/get-products", nil))

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] == "" {
		t.Error("403 body has no error message")
	}
}

func TestGetProductsFlattensVariants(t *testing.T) {
	srv := graphQLStub(t, func(string, json.RawMessage) interface{} {
		return map[string]interface{}{
			"data": map[string]interface{}{
				"products": map[string]interface{}{
					"nodes": []map[string]interface{}{
						{
							"id":    "p1",
							"title": "Shirt",
							"variants": map[string]interface{}{
								"nodes": []map[string]string{
									{"id": "v11", "title": "Small", "price": "10.00"},
									{"id": "v12", "title": "Large", "price": "12.00"},
								},
							},
						},
					},
				},
			},
		}
	})

	cfg := testConfig(srv.URL)
	router := gin.New()
	router.GET("/api/get-products", HandleGetProducts(cfg, storeWithSession(cfg.Shopify.ShopDomain), zap.NewNop()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/get-products", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	var products []domain.Product
	if err := json.Unmarshal(w.Body.Bytes(), &products); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(products) != 1 || products[0].ID != "p1" {
		t.Fatalf("products = %+v", products)
	}
	if len(products[0].Variants) != 2 || products[0].Variants[1].Price != "12.00" {
		t.Fatalf("variants = %+v", products[0].Variants)
	}
}

func TestGetProductsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	router := gin.New()
	router.GET("/api/get-products", HandleGetProducts(cfg, storeWithSession(cfg.Shopify.ShopDomain), zap.NewNop()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/get-products", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func bulkRouter(cfg *config.Config, store *memStore) *gin.Engine {
	router := gin.New()
	router.POST("/api/bulk-update-prices", HandleBulkUpdatePrices(cfg, store, zap.NewNop()))
	return router
}

func postJSON(router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestBulkUpdateValidation(t *testing.T) {
	cfg := testConfig("http://unused.invalid")
	router := bulkRouter(cfg, storeWithSession(cfg.Shopify.ShopDomain))

	tests := []struct {
		Title   string
		Payload interface{}
	}{
		{Title: "Missing updates", Payload: map[string]interface{}{}},
		{Title: "Empty updates", Payload: map[string]interface{}{"updates": []interface{}{}}},
		{
			Title: "Update without variant id",
			Payload: map[string]interface{}{"updates": []map[string]string{
				{"productId": "p1", "price": "10.00"},
			}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.Title, func(t *testing.T) {
			w := postJSON(router, "/api/bulk-update-prices", tc.Payload)
			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422", w.Code)
			}
		})
	}
}

func TestBulkUpdateNoSession(t *testing.T) {
	cfg := testConfig("http://unused.invalid")
	router := bulkRouter(cfg, newMemStore())

	w := postJSON(router, "/api/bulk-update-prices", map[string]interface{}{
		"updates": []map[string]string{
			{"productId": "p1", "variantId": "v11", "price": "10.00"},
		},
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func bulkUpdateResponse(failIDs map[string]bool) func(string, json.RawMessage) interface{} {
	return func(_ string, raw json.RawMessage) interface{} {
		var vars struct {
			ProductID string `json:"productId"`
			Variants  []struct {
				ID    string `json:"id"`
				Price string `json:"price"`
			} `json:"variants"`
		}
		_ = json.Unmarshal(raw, &vars)

		userErrors := []domain.FieldError{}
		if failIDs[vars.ProductID] {
			userErrors = append(userErrors, domain.FieldError{Field: []string{"price"}, Message: "invalid price"})
		}
		variants := make([]map[string]string, 0, len(vars.Variants))
		for _, v := range vars.Variants {
			variants = append(variants, map[string]string{"id": v.ID, "price": v.Price})
		}
		return map[string]interface{}{
			"data": map[string]interface{}{
				"productVariantsBulkUpdate": map[string]interface{}{
					"product":         map[string]string{"id": vars.ProductID, "title": "Title of " + vars.ProductID},
					"productVariants": variants,
					"userErrors":      userErrors,
				},
			},
		}
	}
}

func TestBulkUpdateFullSuccess(t *testing.T) {
	srv := graphQLStub(t, bulkUpdateResponse(nil))
	cfg := testConfig(srv.URL)
	router := bulkRouter(cfg, storeWithSession(cfg.Shopify.ShopDomain))

	w := postJSON(router, "/api/bulk-update-prices", map[string]interface{}{
		"updates": []map[string]string{
			{"productId": "p1", "variantId": "v11", "price": "10.00"},
			{"productId": "p2", "variantId": "v21", "price": "5.00"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	var body struct {
		Success bool                          `json:"success"`
		Updates []domain.ProductUpdateSuccess `json:"updates"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Success || len(body.Updates) != 2 {
		t.Fatalf("body = %+v", body)
	}
}

func TestBulkUpdatePartialFailure(t *testing.T) {
	srv := graphQLStub(t, bulkUpdateResponse(map[string]bool{"p2": true}))
	cfg := testConfig(srv.URL)
	router := bulkRouter(cfg, storeWithSession(cfg.Shopify.ShopDomain))

	w := postJSON(router, "/api/bulk-update-prices", map[string]interface{}{
		"updates": []map[string]string{
			{"productId": "p1", "variantId": "v11", "price": "10.00"},
			{"productId": "p2", "variantId": "v21", "price": "5.00"},
			{"productId": "p3", "variantId": "v31", "price": "7.00"},
		},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body %s", w.Code, w.Body.String())
	}

	var body struct {
		Error             string                        `json:"error"`
		Details           []domain.ProductUpdateFailure `json:"details"`
		SuccessfulUpdates []domain.ProductUpdateSuccess `json:"successfulUpdates"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error == "" {
		t.Error("400 body has no error message")
	}
	if len(body.Details) != 1 || body.Details[0].ProductID != "p2" {
		t.Fatalf("details = %+v", body.Details)
	}
	if len(body.SuccessfulUpdates) != 2 {
		t.Fatalf("successfulUpdates = %+v", body.SuccessfulUpdates)
	}
}

func webhookRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.POST("/api/webhooks", HandleShopifyWebhook(cfg, zap.NewNop()))
	return router
}

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestWebhookSignature(t *testing.T) {
	const secret = "whsec"
	body := []byte(`{"shop_domain":"test-shop.myshopify.com"}`)

	tests := []struct {
		Title  string
		Secret string
		Header string
		Status int
	}{
		{Title: "Not configured", Secret: "", Header: signBody(secret, body), Status: http.StatusServiceUnavailable},
		{Title: "Missing signature", Secret: secret, Header: "", Status: http.StatusUnauthorized},
		{Title: "Wrong signature", Secret: secret, Header: signBody("other", body), Status: http.StatusUnauthorized},
		{Title: "Valid signature", Secret: secret, Header: signBody(secret, body), Status: http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.Title, func(t *testing.T) {
			cfg := testConfig("http://unused.invalid")
			cfg.WebhookSecret = tc.Secret
			router := webhookRouter(cfg)

			req := httptest.NewRequest(http.MethodPost, "/api/webhooks", strings.NewReader(string(body)))
			req.Header.Set("X-Shopify-Topic", "customers/redact")
			if tc.Header != "" {
				req.Header.Set("X-Shopify-Hmac-Sha256", tc.Header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tc.Status {
				t.Fatalf("status = %d, want %d", w.Code, tc.Status)
			}
		})
	}
}
