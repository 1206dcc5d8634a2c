package shopify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/fumiyashop/priceapi/internal/config"
	"github.com/fumiyashop/priceapi/internal/domain"
)

func testSession() *domain.Session {
	return &domain.Session{
		ID:          "offline_test-shop.myshopify.com",
		Shop:        "test-shop.myshopify.com",
		AccessToken: "shpat_test",
	}
}

func TestNewClientEndpoint(t *testing.T) {
	tests := []struct {
		Title    string
		Shop     string
		Endpoint string
		Want     string
	}{
		{
			Title: "Plain shop domain",
			Shop:  "test-shop.myshopify.com",
			Want:  "https://test-shop.myshopify.com/admin/api/2024-10/graphql.json",
		},
		{
			Title: "Scheme and trailing slash stripped",
			Shop:  "https://test-shop.myshopify.com/",
			Want:  "https://test-shop.myshopify.com/admin/api/2024-10/graphql.json",
		},
		{
			Title:    "Explicit endpoint wins",
			Shop:     "test-shop.myshopify.com",
			Endpoint: "http://127.0.0.1:9999/graphql",
			Want:     "http://127.0.0.1:9999/graphql",
		},
	}

	for _, tc := range tests {
		t.Run(tc.Title, func(t *testing.T) {
			cfg := config.ShopifyConfig{APIVersion: "2024-10", Endpoint: tc.Endpoint}
			sess := testSession()
			sess.Shop = tc.Shop
			client := NewClient(cfg, sess, zap.NewNop())
			if client.endpoint != tc.Want {
				t.Errorf("endpoint = %q, want %q", client.endpoint, tc.Want)
			}
		})
	}
}

func TestExecuteSendsAccessToken(t *testing.T) {
	var (
		mu       sync.Mutex
		gotToken string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"shop": {"name": "Test"}}}`))
	}))
	defer srv.Close()

	client := NewClient(config.ShopifyConfig{Endpoint: srv.URL}, testSession(), zap.NewNop())
	resp, err := client.Execute(context.Background(), `{ shop { name } }`, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if resp.Data == nil {
		t.Error("response has no data")
	}
	mu.Lock()
	defer mu.Unlock()
	if gotToken != "shpat_test" {
		t.Errorf("access token header = %q", gotToken)
	}
}

func TestExecuteRetriesThrottled(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if n == 1 {
			_, _ = w.Write([]byte(`{"errors": [{"message": "Throttled", "extensions": {"code": "THROTTLED"}}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"data": {"ok": true}}`))
	}))
	defer srv.Close()

	client := NewClient(config.ShopifyConfig{Endpoint: srv.URL}, testSession(), zap.NewNop())
	if _, err := client.Execute(context.Background(), `{ ok }`, nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestExecuteDoesNotRetryClientErrors(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(config.ShopifyConfig{Endpoint: srv.URL}, testSession(), zap.NewNop())
	if _, err := client.Execute(context.Background(), `{ ok }`, nil); err == nil {
		t.Fatal("Execute should fail on 401")
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		Title string
		Err   error
		Want  bool
	}{
		{Title: "Too many requests", Err: newHTTPStatusError(429, "429 Too Many Requests", nil), Want: true},
		{Title: "Bad gateway", Err: newHTTPStatusError(502, "502 Bad Gateway", nil), Want: true},
		{Title: "Unauthorized", Err: newHTTPStatusError(401, "401 Unauthorized", nil), Want: false},
		{Title: "Unprocessable", Err: newHTTPStatusError(422, "422 Unprocessable Entity", nil), Want: false},
		{
			Title: "Throttled extension code",
			Err:   newGraphQLErrors([]GraphQLError{{Message: "slow down", Extensions: map[string]interface{}{"code": "THROTTLED"}}}),
			Want:  true,
		},
		{
			Title: "Throttled message",
			Err:   newGraphQLErrors([]GraphQLError{{Message: "Throttled"}}),
			Want:  true,
		},
		{
			Title: "User-level GraphQL error",
			Err:   newGraphQLErrors([]GraphQLError{{Message: "Field 'nope' doesn't exist"}}),
			Want:  false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.Title, func(t *testing.T) {
			if got := isRetryable(tc.Err); got != tc.Want {
				t.Errorf("isRetryable = %v, want %v", got, tc.Want)
			}
		})
	}
}

func TestRetryDelayCapped(t *testing.T) {
	if d := retryDelay(0); d != retryBaseDelay {
		t.Errorf("retryDelay(0) = %v", d)
	}
	if d := retryDelay(1); d != 2*retryBaseDelay {
		t.Errorf("retryDelay(1) = %v", d)
	}
	if d := retryDelay(10); d != retryMaxDelay {
		t.Errorf("retryDelay(10) = %v, want cap %v", d, retryMaxDelay)
	}
	if d := retryDelay(-1); d != 0 {
		t.Errorf("retryDelay(-1) = %v", d)
	}
}
