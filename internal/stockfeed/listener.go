package stockfeed

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/monplancbd/storefront/pkg/config"
	"github.com/monplancbd/storefront/pkg/logger"
	"github.com/monplancbd/storefront/pkg/metrics"
)

// Snapshot is one authoritative stock payload from the feed: every sellable
// product id mapped to its remaining stock. Products missing from the map are
// no longer sold.
type Snapshot struct {
	Stocks map[string]int `json:"stocks"`
}

// Handler consumes stock snapshots in feed order.
type Handler interface {
	ApplyStockSnapshot(ctx context.Context, stocks map[string]int)
}

// Listener keeps one server-sent-events subscription to the stock feed open,
// reconnecting with capped exponential backoff when the stream drops.
type Listener struct {
	url     string
	client  *http.Client
	handler Handler

	initialBackoff time.Duration
	maxBackoff     time.Duration

	metrics *metrics.StorefrontMetrics
	logg    *logger.Logger
}

// NewListener builds a listener from config. The handler receives every
// decoded snapshot synchronously.
func NewListener(cfg config.StockFeedConfig, handler Handler, m *metrics.StorefrontMetrics, logg *logger.Logger) *Listener {
	initial := cfg.InitialBackoff
	if initial <= 0 {
		initial = time.Second
	}
	capped := cfg.MaxBackoff
	if capped < initial {
		capped = initial
	}
	return &Listener{
		url: cfg.URL,
		// No overall timeout: the stream is expected to stay open.
		client:         &http.Client{},
		handler:        handler,
		initialBackoff: initial,
		maxBackoff:     capped,
		metrics:        m,
		logg:           logg,
	}
}

// Run subscribes and consumes snapshots until the context is cancelled. Every
// stream failure triggers a reconnect; the backoff resets after a stream that
// delivered at least one snapshot.
func (l *Listener) Run(ctx context.Context) error {
	backoff := l.initialBackoff
	for {
		delivered, err := l.consumeStream(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if l.logg != nil {
			l.logg.Warn(ctx, fmt.Sprintf("stock feed stream ended: %v, reconnecting in %s", err, backoff))
		}
		l.metrics.IncFeedReconnect()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		if delivered > 0 {
			backoff = l.initialBackoff
		} else if backoff < l.maxBackoff {
			backoff *= 2
			if backoff > l.maxBackoff {
				backoff = l.maxBackoff
			}
		}
	}
}

// consumeStream opens one subscription and dispatches snapshots until the
// stream ends. It returns how many snapshots were delivered.
func (l *Listener) consumeStream(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return 0, fmt.Errorf("building feed request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := l.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("connecting to stock feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("stock feed returned status %d", resp.StatusCode)
	}
	if l.logg != nil {
		l.logg.Info(ctx, "stock feed connected")
	}
	return l.readEvents(ctx, resp.Body)
}

// readEvents parses the SSE wire format: "data:" lines accumulate until a
// blank line terminates the event. Comment lines and other fields are skipped.
func (l *Listener) readEvents(ctx context.Context, body io.Reader) (int, error) {
	delivered := 0
	var data strings.Builder

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if data.Len() > 0 {
				if l.dispatch(ctx, data.String()) {
					delivered++
				}
				data.Reset()
			}
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		default:
			// event:, id:, retry: and ":" comments carry nothing we use.
		}
	}
	if data.Len() > 0 && l.dispatch(ctx, data.String()) {
		delivered++
	}
	if err := scanner.Err(); err != nil {
		return delivered, fmt.Errorf("reading stock feed: %w", err)
	}
	return delivered, io.EOF
}

func (l *Listener) dispatch(ctx context.Context, payload string) bool {
	var snapshot Snapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		if l.logg != nil {
			l.logg.Warn(ctx, "skipping malformed stock event: "+err.Error())
		}
		return false
	}
	if snapshot.Stocks == nil {
		return false
	}
	l.handler.ApplyStockSnapshot(ctx, snapshot.Stocks)
	return true
}
