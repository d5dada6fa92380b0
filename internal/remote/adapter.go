package remote

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/WilliamC07/gridsheet/internal/sheet"
)

const defaultPushTimeout = 10 * time.Second

// Adapter plugs the remote session into the document store as its sync
// target. Pushes are fire-and-forget from the store's perspective: the client
// retries transient failures, and a delta that still cannot be delivered is
// logged and dropped rather than surfaced as a document-model fault.
type Adapter struct {
	client      *Client
	logger      sheet.Logger
	pushTimeout time.Duration
	active      atomic.Bool
}

var _ sheet.SyncTarget = (*Adapter)(nil)

func NewAdapter(client *Client, logger sheet.Logger) *Adapter {
	return &Adapter{
		client:      client,
		logger:      logger,
		pushTimeout: defaultPushTimeout,
	}
}

// Activate marks the session live. The store pushes deltas only while the
// session is active.
func (a *Adapter) Activate() {
	a.active.Store(true)
}

func (a *Adapter) Deactivate() {
	a.active.Store(false)
}

func (a *Adapter) Active() bool {
	return a.active.Load()
}

func (a *Adapter) PushCellChange(col, row int, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), a.pushTimeout)
	defer cancel()
	if err := a.client.PushCell(ctx, col, row, value); err != nil {
		a.logf("remote: push for cell (%d, %d) failed: %v", col, row, err)
	}
}

func (a *Adapter) logf(format string, args ...any) {
	if a.logger == nil {
		return
	}
	a.logger.Printf(format, args...)
}
