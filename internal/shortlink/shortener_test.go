package shortlink

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBitlyShortenerSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v4/shorten" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body["long_url"] != "https://shop.example.com/p/7" {
			t.Errorf("unexpected long_url %q", body["long_url"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"link":"https://bit.ly/xyz"}`))
	}))
	defer server.Close()

	s := NewBitlyShortener(server.URL, "test-token")
	got, err := s.Shorten(context.Background(), "https://shop.example.com/p/7")
	if err != nil {
		t.Fatalf("Shorten returned error: %v", err)
	}
	if got != "https://bit.ly/xyz" {
		t.Errorf("unexpected short URL %s", got)
	}
}

func TestBitlyShortenerQuotaError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"MONTHLY_RATE_LIMIT_EXCEEDED"}`))
	}))
	defer server.Close()

	s := NewBitlyShortener(server.URL, "test-token")
	if _, err := s.Shorten(context.Background(), "https://shop.example.com/p/7"); err == nil {
		t.Fatal("expected error on quota response")
	}
}

func TestBitlyShortenerNoToken(t *testing.T) {
	s := NewBitlyShortener("https://api-ssl.bitly.com", "")
	if _, err := s.Shorten(context.Background(), "https://shop.example.com/p/7"); err == nil {
		t.Fatal("expected error when provider is not configured")
	}
}
