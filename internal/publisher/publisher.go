// Package publisher delivers news records to a message broker with bounded
// connect retry, lazy reconnect and a per-publish timeout.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Dkrayten/newswire/internal/models"
)

// Config tunes the retry and timeout policy.
type Config struct {
	// MaxRetries bounds connection attempts per Connect call.
	MaxRetries int
	// ConnectBackoff is the fixed sleep between attempts.
	ConnectBackoff time.Duration
	// PublishTimeout bounds a single publish, confirmation wait included,
	// so a stalled broker cannot wedge the loop.
	PublishTimeout time.Duration
}

// Stats is a point-in-time snapshot of publisher counters, exposed over
// the admin endpoint.
type Stats struct {
	Published   int64  `json:"published"`
	Unconfirmed int64  `json:"unconfirmed"`
	Failed      int64  `json:"failed"`
	Connected   bool   `json:"connected"`
	LastError   string `json:"last_error,omitempty"`
}

// RoutingKey derives the topic routing key for a category. Pure function:
// the lowercased category name under the "news." segment.
func RoutingKey(category models.Category) string {
	return "news." + strings.ToLower(string(category))
}

// Publisher owns one Sink and delivers one record per Publish call. It is
// driven by a single worker; Stats may be read concurrently.
type Publisher struct {
	sink Sink
	cfg  Config
	log  *slog.Logger

	connected atomic.Bool
	closed    atomic.Bool

	published   atomic.Int64
	unconfirmed atomic.Int64
	failed      atomic.Int64

	mu      sync.Mutex
	lastErr string
}

// New wires a publisher to a sink. The logger is injected, never a
// package-level singleton.
func New(sink Sink, cfg Config, log *slog.Logger) *Publisher {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.ConnectBackoff <= 0 {
		cfg.ConnectBackoff = 3 * time.Second
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 5 * time.Second
	}
	return &Publisher{sink: sink, cfg: cfg, log: log}
}

// Connect establishes the sink connection and declares the destination,
// retrying up to MaxRetries with a fixed backoff. The returned error wraps
// the last attempt's error and is tagged retryable: the caller keeps
// running and tries again on its own schedule.
func (p *Publisher) Connect(ctx context.Context) error {
	if p.closed.Load() {
		return &Error{Op: "connect", Err: fmt.Errorf("publisher is closed")}
	}

	var lastErr error
	for attempt := 1; attempt <= p.cfg.MaxRetries; attempt++ {
		err := p.sink.Connect(ctx)
		if err == nil {
			if err = p.sink.DeclareDestination(ctx); err == nil {
				p.connected.Store(true)
				p.log.Info("broker connected", slog.Int("attempt", attempt))
				return nil
			}
			// Never leave a connection half-open behind a failed declare.
			if cerr := p.sink.Close(); cerr != nil {
				p.log.Warn("close after declare failure", slog.Any("err", cerr))
			}
		}
		lastErr = err
		p.setLastError(err)
		p.log.Warn("broker connect failed",
			slog.Any("err", err),
			slog.Int("attempt", attempt),
			slog.Int("max_retries", p.cfg.MaxRetries),
		)

		if attempt == p.cfg.MaxRetries {
			break
		}
		select {
		case <-time.After(p.cfg.ConnectBackoff):
		case <-ctx.Done():
			return &Error{Op: "connect", Err: ctx.Err()}
		}
	}

	p.connected.Store(false)
	return &Error{
		Op:        "connect",
		Retryable: true,
		Err:       fmt.Errorf("exhausted %d attempts: %w", p.cfg.MaxRetries, lastErr),
	}
}

// Publish serializes rec and submits it under the category routing key with
// persistent delivery. When the connection is missing or the peer closed
// it, Publish reconnects first; a failed reconnect surfaces as a publish
// failure so the driver loop survives. An unconfirmed delivery is a
// warning, not a failure.
func (p *Publisher) Publish(ctx context.Context, rec models.NewsRecord) error {
	if p.closed.Load() {
		return &Error{Op: "publish", Err: fmt.Errorf("publisher is closed")}
	}

	if !p.connected.Load() || !p.sink.Alive() {
		p.connected.Store(false)
		// Release whatever the sink still holds before reconnecting, the
		// same discipline as the failed-publish branch.
		if cerr := p.sink.Close(); cerr != nil {
			p.log.Warn("close stale connection", slog.Any("err", cerr))
		}
		if err := p.Connect(ctx); err != nil {
			p.failed.Add(1)
			return &Error{Op: "publish", Retryable: true, Err: err}
		}
	}

	body, err := json.Marshal(rec)
	if err != nil {
		p.failed.Add(1)
		p.setLastError(err)
		return &Error{Op: "publish", Err: fmt.Errorf("encode record: %w", err)}
	}

	env := Envelope{
		RoutingKey: RoutingKey(rec.Category),
		Body:       body,
		MessageID:  uuid.NewString(),
		Timestamp:  time.Now().UTC(),
	}

	pctx, cancel := context.WithTimeout(ctx, p.cfg.PublishTimeout)
	defer cancel()

	switch err := p.sink.Publish(pctx, env); {
	case err == nil:
		p.published.Add(1)
		p.log.Info("published news",
			slog.String("title", rec.Title),
			slog.String("routing_key", env.RoutingKey),
		)
		return nil

	case IsUnconfirmed(err):
		p.published.Add(1)
		p.unconfirmed.Add(1)
		p.log.Warn("published without confirmation",
			slog.String("title", rec.Title),
			slog.String("routing_key", env.RoutingKey),
			slog.Any("err", err),
		)
		return nil

	default:
		// The connection is suspect after a failed publish: release it
		// now and reconnect lazily on the next call.
		p.connected.Store(false)
		if cerr := p.sink.Close(); cerr != nil {
			p.log.Warn("close after publish failure", slog.Any("err", cerr))
		}
		p.failed.Add(1)
		p.setLastError(err)
		return &Error{Op: "publish", Retryable: true, Err: err}
	}
}

// Close releases the sink. Further Connect and Publish calls fail. Safe to
// call more than once; only the first call reaches the sink.
func (p *Publisher) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	p.connected.Store(false)
	return p.sink.Close()
}

// Stats snapshots the counters.
func (p *Publisher) Stats() Stats {
	p.mu.Lock()
	lastErr := p.lastErr
	p.mu.Unlock()

	return Stats{
		Published:   p.published.Load(),
		Unconfirmed: p.unconfirmed.Load(),
		Failed:      p.failed.Load(),
		Connected:   p.connected.Load(),
		LastError:   lastErr,
	}
}

func (p *Publisher) setLastError(err error) {
	p.mu.Lock()
	p.lastErr = err.Error()
	p.mu.Unlock()
}
