package product

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/harunalpak/agentic-traffic-booster/pkg/clients"
	"github.com/harunalpak/agentic-traffic-booster/pkg/logging"
)

func noRetry() clients.HTTPExecutorConfig {
	cfg := clients.DefaultHTTPExecutorConfig()
	cfg.MaxRetries = 0
	cfg.Breaker = false
	return cfg
}

func TestGetProductSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/products/7" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":7,"title":"Trail Shoes","description":"Lightweight","product_url":"https://shop.example.com/p/7","price":89.99,"category":"footwear"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, logging.NewLoggerWithService("test"), WithHTTPExecutorConfig(noRetry()))
	p, err := c.GetProduct(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil {
		t.Fatal("expected product, got nil")
	}
	if p.Title != "Trail Shoes" || p.Price != 89.99 {
		t.Errorf("unexpected product: %+v", p)
	}
}

func TestGetProductNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(server.URL, logging.NewLoggerWithService("test"), WithHTTPExecutorConfig(noRetry()))
	p, err := c.GetProduct(context.Background(), 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil product for 404, got %+v", p)
	}
}

func TestGetProductUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", logging.NewLoggerWithService("test"), WithHTTPExecutorConfig(noRetry()))
	p, err := c.GetProduct(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected degraded nil result, got error: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil product on transport failure, got %+v", p)
	}
}
