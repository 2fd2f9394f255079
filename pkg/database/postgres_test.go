package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(&pq.Error{Code: "23505"}) {
		t.Fatal("expected 23505 to be a unique violation")
	}
	if IsUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Fatal("foreign key violation should not be a unique violation")
	}
	if IsUniqueViolation(errors.New("plain error")) {
		t.Fatal("plain error should not be a unique violation")
	}
	wrapped := fmt.Errorf("insert task: %w", &pq.Error{Code: "23505"})
	if !IsUniqueViolation(wrapped) {
		t.Fatal("expected wrapped pq error to be detected")
	}
}

func TestConnectRequiresURL(t *testing.T) {
	if _, err := Connect(Config{}, nil); err == nil {
		t.Fatal("expected error for empty URL")
	}
}
