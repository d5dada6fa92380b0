package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"github.com/WilliamC07/gridsheet/internal/sheet"
)

const (
	postgresTableName        = "gridsheet_state"
	postgresDefaultSheetKey  = "default"
	postgresOperationTimeout = 5 * time.Second
)

type sqlOpenFunc func(driverName, dsn string) (*sql.DB, error)

// PostgresBackend persists the document as a JSON snapshot in a single-row
// table keyed by sheet name. Good enough for the write rate of an interactive
// editor; per-cell schemas are not worth the contention they invite.
type PostgresBackend struct {
	dsn      string
	table    string
	sheetKey string
	openDB   sqlOpenFunc

	initOnce sync.Once
	initErr  error
	db       *sql.DB
}

func NewPostgresBackend(dsn, sheetKey string) (*PostgresBackend, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, ErrInvalidInput
	}
	sheetKey = strings.TrimSpace(sheetKey)
	if sheetKey == "" {
		sheetKey = postgresDefaultSheetKey
	}
	return &PostgresBackend{
		dsn:      dsn,
		table:    postgresTableName,
		sheetKey: sheetKey,
		openDB:   sql.Open,
	}, nil
}

func (b *PostgresBackend) Load() (sheet.Document, error) {
	if err := b.ensureReady(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), postgresOperationTimeout)
	defer cancel()

	query := fmt.Sprintf("SELECT snapshot FROM %s WHERE sheet_key = $1", postgresQuoteIdentifier(b.table))
	var payload string
	err := b.db.QueryRowContext(ctx, query, b.sheetKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return sheet.Document{}, nil
	}
	if err != nil {
		return nil, err
	}
	var values [][]string
	if err := json.Unmarshal([]byte(payload), &values); err != nil {
		return nil, err
	}
	return sheet.FromRows(values), nil
}

func (b *PostgresBackend) Save(doc sheet.Document) error {
	if err := b.ensureReady(); err != nil {
		return err
	}
	payload, err := json.Marshal(doc.Rows())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), postgresOperationTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		INSERT INTO %s (sheet_key, snapshot, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (sheet_key)
		DO UPDATE SET snapshot = EXCLUDED.snapshot, updated_at = NOW()`, postgresQuoteIdentifier(b.table))
	_, err = b.db.ExecContext(ctx, query, b.sheetKey, string(payload))
	return err
}

func (b *PostgresBackend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *PostgresBackend) ensureReady() error {
	b.initOnce.Do(func() {
		db, err := b.openDB("postgres", b.dsn)
		if err != nil {
			b.initErr = err
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), postgresOperationTimeout)
		defer cancel()
		create := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				sheet_key TEXT PRIMARY KEY,
				snapshot TEXT NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, postgresQuoteIdentifier(b.table))
		if _, err := db.ExecContext(ctx, create); err != nil {
			_ = db.Close()
			b.initErr = err
			return
		}
		b.db = db
	})
	return b.initErr
}

func postgresQuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
