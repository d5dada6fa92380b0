// Package storage provides the persistence collaborators for the sheet store:
// a CSV file backend, an in-memory backend, a Postgres snapshot backend, a DSN
// factory that picks between them, and a filesystem watcher that turns
// external writes to the open file into authoritative document refreshes.
package storage

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/WilliamC07/gridsheet/internal/sheet"
)

var ErrInvalidInput = errors.New("invalid input")

// FileBackend persists the document as a CSV file. Saves are atomic (written
// to a temp file, then renamed over the target), so a crash mid-save never
// leaves a truncated sheet behind.
type FileBackend struct {
	Path string
}

func NewFileBackend(path string) (*FileBackend, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrInvalidInput
	}
	return &FileBackend{Path: path}, nil
}

// Load reads the CSV file. A missing file is an empty document, not an error.
func (b *FileBackend) Load() (sheet.Document, error) {
	data, err := os.ReadFile(b.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return sheet.Document{}, nil
		}
		return nil, err
	}
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // rows may be ragged
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return sheet.FromRows(records), nil
}

func (b *FileBackend) Save(doc sheet.Document) error {
	// Pad every record to the widest row. A fully blank CSV line is not a
	// record on read, so without padding an empty row would vanish and
	// shift every row number under it.
	cols, _ := doc.Size()
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	for _, record := range doc.Rows() {
		for len(record) < cols {
			record = append(record, "")
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return writeFileAtomic(b.Path, buf.Bytes(), 0o644)
}

func writeFileAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()
	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Chmod(mode); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}
