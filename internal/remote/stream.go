package remote

import (
	"context"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/WilliamC07/gridsheet/internal/sheet"
)

// RefreshStream listens for full-document refreshes pushed by the sheet host.
// The host is treated as ground truth: each refresh becomes a whole-document
// replacement on the local store, with no merging of pending local edits.
type RefreshStream struct {
	url       string
	token     string
	onRefresh func(sheet.Document)
	logger    sheet.Logger
}

type refreshMessage struct {
	Type   string     `json:"type"`
	Values [][]string `json:"values"`
}

func NewRefreshStream(cfg Config, onRefresh func(sheet.Document), logger sheet.Logger) *RefreshStream {
	return &RefreshStream{
		url:       cfg.StreamURL,
		token:     cfg.Token,
		onRefresh: onRefresh,
		logger:    logger,
	}
}

// Run dials the host and consumes refresh messages until the context is
// canceled, reconnecting with exponential backoff after any failure.
func (s *RefreshStream) Run(ctx context.Context) {
	if s.url == "" || s.onRefresh == nil {
		return
	}
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 250 * time.Millisecond
	policy.MaxInterval = 30 * time.Second
	policy.MaxElapsedTime = 0 // reconnect forever

	for {
		if err := s.consume(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logf("remote: refresh stream disconnected: %v", err)
		}
		wait := policy.NextBackOff()
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (s *RefreshStream) consume(ctx context.Context) error {
	header := http.Header{}
	if s.token != "" {
		header.Set("Authorization", "Bearer "+s.token)
	}
	conn, _, err := websocket.Dial(ctx, s.url, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	for {
		var msg refreshMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return err
		}
		switch msg.Type {
		case "sheet.refresh":
			s.onRefresh(sheet.FromRows(msg.Values))
		default:
			// Unknown message types are skipped so the host can add
			// new ones without breaking old clients.
		}
	}
}

func (s *RefreshStream) logf(format string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Printf(format, args...)
}
