package storage

import (
	"sync"

	"github.com/WilliamC07/gridsheet/internal/sheet"
)

// MemoryBackend keeps the snapshot in memory. Used for scratch sheets and for
// remote sessions, where the authoritative copy lives on the host.
type MemoryBackend struct {
	mu       sync.Mutex
	snapshot sheet.Document
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) Load() (sheet.Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot.Clone(), nil
}

func (b *MemoryBackend) Save(doc sheet.Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snapshot = doc.Clone()
	return nil
}
