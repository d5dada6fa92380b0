package storage

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/WilliamC07/gridsheet/internal/sheet"
)

// BuildBackendFromDSN picks a persistence backend by DSN scheme. A bare path
// or a file: DSN is the CSV file backend; memory: is the in-memory backend;
// postgres: connects through lib/pq. The sheetKey names the sheet inside
// multi-sheet backends and is ignored by the file backend.
func BuildBackendFromDSN(dsn, sheetKey string) (sheet.Persistence, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, ErrInvalidInput
	}
	parsed, err := url.Parse(dsn)
	if err != nil {
		return nil, err
	}
	scheme := strings.ToLower(strings.TrimSpace(parsed.Scheme))
	switch scheme {
	case "", "file":
		path, pathErr := dsnPath(parsed, dsn)
		if pathErr != nil {
			return nil, pathErr
		}
		return NewFileBackend(path)
	case "memory", "mem", "inmem":
		return NewMemoryBackend(), nil
	case "postgres", "postgresql":
		return NewPostgresBackend(dsn, sheetKey)
	default:
		return nil, fmt.Errorf("unsupported storage backend scheme: %s", scheme)
	}
}

func dsnPath(parsed *url.URL, raw string) (string, error) {
	if parsed == nil {
		return "", ErrInvalidInput
	}
	if strings.TrimSpace(parsed.Scheme) == "" {
		if strings.TrimSpace(raw) == "" {
			return "", ErrInvalidInput
		}
		return strings.TrimSpace(raw), nil
	}
	path := strings.TrimSpace(parsed.Path)
	if path == "" {
		path = strings.TrimSpace(parsed.Opaque)
	}
	if path == "" {
		path = strings.TrimSpace(parsed.Host)
	}
	if path == "" {
		return "", ErrInvalidInput
	}
	return path, nil
}
