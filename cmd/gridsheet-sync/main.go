// Command gridsheet-sync mirrors a remote sheet into a local persistence
// backend on an interval. It is the headless companion of gridsheet: point it
// at the same remote config and it keeps a CSV (or database snapshot) fresh
// without a terminal attached.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/WilliamC07/gridsheet/internal/remote"
	"github.com/WilliamC07/gridsheet/internal/sheet"
	"github.com/WilliamC07/gridsheet/internal/storage"
)

func main() {
	configPath := flag.String("config", strings.TrimSpace(os.Getenv("GRIDSHEET_REMOTE_CONFIG")), "path to remote sync config JSON")
	backendDSN := flag.String("out", strings.TrimSpace(os.Getenv("GRIDSHEET_BACKEND_DSN")), "destination DSN (file://path, memory://, postgres://...)")
	sheetKey := flag.String("sheet-key", envOrDefault("GRIDSHEET_SHEET_KEY", "default"), "snapshot key for database backends")
	interval := flag.Duration("interval", durationEnv("GRIDSHEET_SYNC_INTERVAL", 30*time.Second), "mirror interval")
	intervalJitter := flag.Float64("interval-jitter", floatEnv("GRIDSHEET_SYNC_INTERVAL_JITTER", 0.2), "mirror interval jitter ratio (0.0-1.0)")
	timeout := flag.Duration("timeout", durationEnv("GRIDSHEET_SYNC_TIMEOUT", 15*time.Second), "per-cycle timeout")
	once := flag.Bool("once", false, "run one mirror cycle and exit")
	flag.Parse()

	if *configPath == "" {
		log.Fatalf("config is required (--config or GRIDSHEET_REMOTE_CONFIG)")
	}
	if *backendDSN == "" {
		log.Fatalf("out is required (--out or GRIDSHEET_BACKEND_DSN)")
	}
	if *interval <= 0 {
		*interval = 30 * time.Second
	}
	if *timeout <= 0 {
		*timeout = 15 * time.Second
	}
	*intervalJitter = clampJitterRatio(*intervalJitter)

	cfg, err := remote.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load remote config: %v", err)
	}
	client := remote.NewClient(cfg, &http.Client{Timeout: *timeout})
	backend, err := storage.BuildBackendFromDSN(*backendDSN, *sheetKey)
	if err != nil {
		log.Fatalf("failed to initialize destination backend: %v", err)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run := func() {
		ctx, cancel := context.WithTimeout(rootCtx, *timeout)
		defer cancel()
		if err := mirrorOnce(ctx, client, backend); err != nil {
			log.Printf("mirror cycle failed: %v", err)
			return
		}
		log.Printf("mirror cycle completed")
	}

	run()
	if *once {
		return
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	timer := time.NewTimer(jitteredIntervalWithSample(*interval, *intervalJitter, rng.Float64()))
	defer timer.Stop()
	for {
		select {
		case <-rootCtx.Done():
			log.Printf("mirror stopping: %v", rootCtx.Err())
			return
		case <-timer.C:
			run()
			timer.Reset(jitteredIntervalWithSample(*interval, *intervalJitter, rng.Float64()))
		}
	}
}

// mirrorOnce pulls the full remote sheet and writes it to the destination.
// The remote copy wins entirely; there is no merging.
func mirrorOnce(ctx context.Context, client *remote.Client, backend sheet.Persistence) error {
	values, err := client.FetchSheet(ctx)
	if err != nil {
		return err
	}
	return backend.Save(sheet.FromRows(values))
}

func envOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func durationEnv(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using fallback %s", name, raw, fallback.String())
		return fallback
	}
	return value
}

func floatEnv(name string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using fallback %f", name, raw, fallback)
		return fallback
	}
	return value
}

func clampJitterRatio(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

func jitteredIntervalWithSample(base time.Duration, jitterRatio, sample float64) time.Duration {
	if base <= 0 {
		return 0
	}
	jitterRatio = clampJitterRatio(jitterRatio)
	if jitterRatio == 0 {
		return base
	}
	if sample < 0 {
		sample = 0
	} else if sample > 1 {
		sample = 1
	}
	factor := 1 + ((sample*2)-1)*jitterRatio
	if factor < 0 {
		factor = 0
	}
	delay := time.Duration(float64(base) * factor)
	if delay < time.Millisecond {
		return time.Millisecond
	}
	return delay
}
