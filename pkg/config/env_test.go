package config

import (
	"testing"
	"time"
)

func TestGetEnvDefault(t *testing.T) {
	if got := GetEnv("SOCIAL_ENGINE_UNSET_VAR", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestGetEnvSet(t *testing.T) {
	t.Setenv("SOCIAL_ENGINE_TEST_VAR", "value")
	if got := GetEnv("SOCIAL_ENGINE_TEST_VAR", "fallback"); got != "value" {
		t.Fatalf("expected value, got %q", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("SOCIAL_ENGINE_TEST_INT", "42")
	if got := GetEnvInt("SOCIAL_ENGINE_TEST_INT", 7); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	t.Setenv("SOCIAL_ENGINE_TEST_INT", "not-a-number")
	if got := GetEnvInt("SOCIAL_ENGINE_TEST_INT", 7); got != 7 {
		t.Fatalf("expected default 7 on parse failure, got %d", got)
	}
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("SOCIAL_ENGINE_TEST_FLOAT", "0.4")
	if got := GetEnvFloat("SOCIAL_ENGINE_TEST_FLOAT", 0.1); got != 0.4 {
		t.Fatalf("expected 0.4, got %f", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("SOCIAL_ENGINE_TEST_BOOL", "true")
	if !GetEnvBool("SOCIAL_ENGINE_TEST_BOOL", false) {
		t.Fatal("expected true")
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("SOCIAL_ENGINE_TEST_DUR", "15s")
	if got := GetEnvDuration("SOCIAL_ENGINE_TEST_DUR", time.Second); got != 15*time.Second {
		t.Fatalf("expected 15s, got %v", got)
	}
	t.Setenv("SOCIAL_ENGINE_TEST_DUR", "bogus")
	if got := GetEnvDuration("SOCIAL_ENGINE_TEST_DUR", time.Second); got != time.Second {
		t.Fatalf("expected default 1s, got %v", got)
	}
}
