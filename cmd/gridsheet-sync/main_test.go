package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/WilliamC07/gridsheet/internal/remote"
	"github.com/WilliamC07/gridsheet/internal/storage"
)

func TestFloatEnvParsesValue(t *testing.T) {
	t.Setenv("GRIDSHEET_TEST_FLOAT", "0.35")
	if got := floatEnv("GRIDSHEET_TEST_FLOAT", 0.1); got != 0.35 {
		t.Fatalf("expected 0.35, got %f", got)
	}
}

func TestFloatEnvFallsBackOnInvalid(t *testing.T) {
	t.Setenv("GRIDSHEET_TEST_FLOAT_BAD", "oops")
	if got := floatEnv("GRIDSHEET_TEST_FLOAT_BAD", 0.25); got != 0.25 {
		t.Fatalf("expected fallback 0.25, got %f", got)
	}
}

func TestClampJitterRatio(t *testing.T) {
	if got := clampJitterRatio(-0.1); got != 0 {
		t.Fatalf("expected clamp to 0, got %f", got)
	}
	if got := clampJitterRatio(1.5); got != 1 {
		t.Fatalf("expected clamp to 1, got %f", got)
	}
	if got := clampJitterRatio(0.4); got != 0.4 {
		t.Fatalf("expected passthrough 0.4, got %f", got)
	}
}

func TestJitteredIntervalWithSample(t *testing.T) {
	base := 10 * time.Second
	if got := jitteredIntervalWithSample(base, 0, 0.2); got != base {
		t.Fatalf("expected no jitter interval %s, got %s", base, got)
	}
	if got := jitteredIntervalWithSample(base, 0.2, 0); got != 8*time.Second {
		t.Fatalf("expected min jitter interval 8s, got %s", got)
	}
	if got := jitteredIntervalWithSample(base, 0.2, 0.5); got != 10*time.Second {
		t.Fatalf("expected midpoint jitter interval 10s, got %s", got)
	}
	if got := jitteredIntervalWithSample(base, 0.2, 1); got != 12*time.Second {
		t.Fatalf("expected max jitter interval 12s, got %s", got)
	}
}

func TestMirrorOnceWritesRemoteSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"values": [][]string{{"a", "b"}, {"", "c"}},
		})
	}))
	t.Cleanup(server.Close)

	cfg, err := remote.ParseConfig([]byte(`{"baseUrl":"` + server.URL + `","token":"tok","sheetId":"s1"}`))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	client := remote.NewClient(cfg, server.Client())
	backend := storage.NewMemoryBackend()

	if err := mirrorOnce(context.Background(), client, backend); err != nil {
		t.Fatalf("mirrorOnce: %v", err)
	}
	doc, err := backend.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := doc.Value(1, 1); got != "c" {
		t.Fatalf("mirrored Value(1,1) = %q, want c", got)
	}
	if got := doc.Value(0, 0); got != "a" {
		t.Fatalf("mirrored Value(0,0) = %q, want a", got)
	}
}

func TestMirrorOnceSurfacesFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	cfg, err := remote.ParseConfig([]byte(`{"baseUrl":"` + server.URL + `","token":"tok","sheetId":"s1"}`))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	client := remote.NewClient(cfg, server.Client())

	if err := mirrorOnce(context.Background(), client, storage.NewMemoryBackend()); err == nil {
		t.Fatal("expected fetch error")
	}
}
