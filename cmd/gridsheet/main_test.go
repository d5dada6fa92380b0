package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/WilliamC07/gridsheet/internal/storage"
)

func TestIntEnvParsesValue(t *testing.T) {
	t.Setenv("GRIDSHEET_TEST_INT", "14")
	if got := intEnv("GRIDSHEET_TEST_INT", 9); got != 14 {
		t.Fatalf("expected 14, got %d", got)
	}
}

func TestIntEnvFallsBackOnInvalid(t *testing.T) {
	t.Setenv("GRIDSHEET_TEST_INT_BAD", "wide")
	if got := intEnv("GRIDSHEET_TEST_INT_BAD", 9); got != 9 {
		t.Fatalf("expected fallback 9, got %d", got)
	}
}

func TestBoolEnv(t *testing.T) {
	t.Setenv("GRIDSHEET_TEST_BOOL", "false")
	if got := boolEnv("GRIDSHEET_TEST_BOOL", true); got {
		t.Fatal("expected false")
	}
	t.Setenv("GRIDSHEET_TEST_BOOL_BAD", "nope")
	if got := boolEnv("GRIDSHEET_TEST_BOOL_BAD", true); !got {
		t.Fatal("expected fallback true")
	}
}

func TestDurationEnvFallsBackOnInvalid(t *testing.T) {
	t.Setenv("GRIDSHEET_TEST_DURATION", "soon")
	if got := durationEnv("GRIDSHEET_TEST_DURATION", 2*time.Second); got != 2*time.Second {
		t.Fatalf("expected fallback 2s, got %s", got)
	}
}

func TestEnvOrDefaultTrims(t *testing.T) {
	t.Setenv("GRIDSHEET_TEST_STR", "  key  ")
	if got := envOrDefault("GRIDSHEET_TEST_STR", "fallback"); got != "key" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	if got := envOrDefault("GRIDSHEET_TEST_STR_UNSET", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestBuildPersistencePrefersPositionalPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.csv")
	persistence, fileBackend, err := buildPersistence(path, "memory://", "default")
	if err != nil {
		t.Fatalf("buildPersistence: %v", err)
	}
	if fileBackend == nil {
		t.Fatal("expected a file backend for a positional path")
	}
	if persistence != fileBackend {
		t.Fatal("expected the file backend to be the persistence collaborator")
	}
	if fileBackend.Path != path {
		t.Fatalf("backend path = %q, want %q", fileBackend.Path, path)
	}
}

func TestBuildPersistenceFromDSN(t *testing.T) {
	persistence, fileBackend, err := buildPersistence("", "memory://", "default")
	if err != nil {
		t.Fatalf("buildPersistence: %v", err)
	}
	if fileBackend != nil {
		t.Fatal("memory DSN should not produce a file backend")
	}
	if _, ok := persistence.(*storage.MemoryBackend); !ok {
		t.Fatalf("expected memory backend, got %T", persistence)
	}

	path := filepath.Join(t.TempDir(), "sheet.csv")
	_, fileBackend, err = buildPersistence("", "file://"+path, "default")
	if err != nil {
		t.Fatalf("buildPersistence: %v", err)
	}
	if fileBackend == nil {
		t.Fatal("file DSN should surface the file backend for watching")
	}
}

func TestBuildPersistenceEmpty(t *testing.T) {
	persistence, fileBackend, err := buildPersistence("", "", "default")
	if err != nil {
		t.Fatalf("buildPersistence: %v", err)
	}
	if persistence != nil || fileBackend != nil {
		t.Fatal("expected no persistence when neither path nor DSN is set")
	}
}

func TestSyncTargetNilAdapter(t *testing.T) {
	if got := syncTarget(nil); got != nil {
		t.Fatal("nil adapter must yield a nil interface")
	}
}
