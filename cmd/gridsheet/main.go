package main

import (
	"context"
	"flag"
	"fmt"
	"log"
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
	"github.com/WilliamC07/gridsheet/internal/term"
)

func main() {
	remoteConfig := flag.String("remote", strings.TrimSpace(os.Getenv("GRIDSHEET_REMOTE_CONFIG")), "path to remote sync config JSON")
	backendDSN := flag.String("backend", strings.TrimSpace(os.Getenv("GRIDSHEET_BACKEND_DSN")), "persistence DSN (file://path, memory://, postgres://...)")
	sheetKey := flag.String("sheet-key", envOrDefault("GRIDSHEET_SHEET_KEY", "default"), "snapshot key for database backends")
	columnWidth := flag.Int("column-width", intEnv("GRIDSHEET_COLUMN_WIDTH", 0), "rendered column width in characters")
	watch := flag.Bool("watch", boolEnv("GRIDSHEET_WATCH", true), "reload the CSV when another process writes it")
	debounce := flag.Duration("watch-debounce", durationEnv("GRIDSHEET_WATCH_DEBOUNCE", 0), "quiet period before a watched reload")
	flag.Parse()

	logger := log.Default()

	persistence, fileBackend, err := buildPersistence(flag.Arg(0), *backendDSN, *sheetKey)
	if err != nil {
		log.Fatalf("failed to initialize persistence: %v", err)
	}
	if persistence == nil && *remoteConfig == "" {
		fmt.Fprintln(os.Stderr, "usage: gridsheet [flags] <file.csv>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	var cfg remote.Config
	var adapter *remote.Adapter
	var client *remote.Client
	if *remoteConfig != "" {
		var err error
		cfg, err = remote.LoadConfig(*remoteConfig)
		if err != nil {
			log.Fatalf("failed to load remote config: %v", err)
		}
		client = remote.NewClient(cfg, &http.Client{Timeout: 15 * time.Second})
		adapter = remote.NewAdapter(client, logger)
	}

	store, err := sheet.NewStore(sheet.StoreOptions{
		Persistence: persistence,
		Sync:        syncTarget(adapter),
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("failed to initialize document store: %v", err)
	}
	defer store.Close()

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var watcher *storage.Watcher
	if fileBackend != nil && *watch {
		watcher, err = storage.NewWatcher(fileBackend, store.Replace, storage.WatcherOptions{
			Debounce: *debounce,
			Logger:   logger,
		})
		if err != nil {
			log.Fatalf("failed to watch %s: %v", fileBackend.Path, err)
		}
		defer watcher.Close()
	}

	if adapter != nil {
		// The remote sheet is authoritative when a session starts: seed the
		// document from it, then stream refreshes into Replace.
		seedCtx, cancel := context.WithTimeout(rootCtx, 15*time.Second)
		values, err := client.FetchSheet(seedCtx)
		cancel()
		if err != nil {
			log.Printf("initial remote fetch failed, starting from local copy: %v", err)
		} else {
			store.Replace(sheet.FromRows(values))
		}
		adapter.Activate()
		stream := remote.NewRefreshStream(cfg, store.Replace, logger)
		go stream.Run(rootCtx)
	}

	screen, err := term.NewScreen(store, term.ScreenOptions{
		ColumnWidth: *columnWidth,
		OnSave: func() error {
			if watcher != nil {
				// Our own atomic rename must not bounce back as a reload.
				watcher.Suppress(time.Second)
			}
			return store.Save()
		},
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("failed to initialize terminal: %v", err)
	}
	store.AttachScreen(screen)

	if err := screen.Run(); err != nil {
		log.Fatalf("terminal failed: %v", err)
	}
}

// buildPersistence resolves the positional CSV path or the backend DSN into a
// persistence collaborator. The file backend is returned separately so the
// watcher can be wired to it.
func buildPersistence(path, dsn, sheetKey string) (sheet.Persistence, *storage.FileBackend, error) {
	if path != "" {
		expanded, err := remote.ExpandPath(path)
		if err != nil {
			return nil, nil, err
		}
		backend, err := storage.NewFileBackend(expanded)
		if err != nil {
			return nil, nil, err
		}
		return backend, backend, nil
	}
	if dsn == "" {
		return nil, nil, nil
	}
	backend, err := storage.BuildBackendFromDSN(dsn, sheetKey)
	if err != nil {
		return nil, nil, err
	}
	if fb, ok := backend.(*storage.FileBackend); ok {
		return backend, fb, nil
	}
	return backend, nil, nil
}

// syncTarget avoids handing the store a typed nil interface.
func syncTarget(adapter *remote.Adapter) sheet.SyncTarget {
	if adapter == nil {
		return nil
	}
	return adapter
}

func envOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func intEnv(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using fallback %d", name, raw, fallback)
		return fallback
	}
	return value
}

func boolEnv(name string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using fallback %t", name, raw, fallback)
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
