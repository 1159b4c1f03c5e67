// Package notify delivers best-effort "field updated" events to listeners and
// limits how often the same (user, field) pair may fire.
package notify

import (
	"context"
	"log/slog"
	"time"

	"nutrify/diet-tracker/internal/domain"
	"nutrify/diet-tracker/internal/logging"
	"nutrify/diet-tracker/internal/metrics"
)

// DefaultInterval is the minimum gap between two events of one (user, field).
const DefaultInterval = 30 * time.Second

// Throttle decides whether a key may fire. Allow checks and records the
// emission in one atomic step; a refused attempt leaves the record alone.
type Throttle interface {
	Allow(ctx context.Context, key string, now time.Time, interval time.Duration) (bool, error)
}

// Sink transports an event to listeners.
type Sink interface {
	Publish(ctx context.Context, ev domain.Event) error
}

// Notifier rate limits events per (user, field) and fans them out to sinks.
type Notifier struct {
	throttle Throttle
	sinks    []Sink
	interval time.Duration
	now      func() time.Time
	log      *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(n *Notifier) { n.now = now }
}

// WithMetrics counts emitted and throttled events.
func WithMetrics(m *metrics.Metrics) Option {
	return func(n *Notifier) { n.metrics = m }
}

// New creates a Notifier. A non-positive interval means DefaultInterval.
func New(throttle Throttle, interval time.Duration, log *slog.Logger, sinks []Sink, opts ...Option) *Notifier {
	if interval <= 0 {
		interval = DefaultInterval
	}
	n := &Notifier{
		throttle: throttle,
		sinks:    sinks,
		interval: interval,
		now:      time.Now,
		log:      log.With(slog.String("component", "notifier")),
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

func throttleKey(ev domain.Event) string {
	return ev.UserID + ":" + ev.Field
}

// Notify emits ev unless the same (user, field) fired within the interval.
// It reports whether the event was handed to the sinks. Sink failures are
// logged and never returned.
func (n *Notifier) Notify(ctx context.Context, ev domain.Event) bool {
	now := n.now()
	log := logging.From(ctx, n.log).With(
		slog.String("event", string(ev.Type)),
		slog.String("user_id", ev.UserID),
		slog.String("field", ev.Field),
	)

	allowed, err := n.throttle.Allow(ctx, throttleKey(ev), now, n.interval)
	if err != nil {
		// without a working throttle the rate limit cannot be honoured
		log.Warn("throttle unavailable, event dropped", logging.Err(err))
		n.metrics.ObserveNotification(string(ev.Type), "error")
		return false
	}
	if !allowed {
		log.Debug("event throttled")
		n.metrics.ObserveNotification(string(ev.Type), "throttled")
		return false
	}

	ev.EmittedAt = now.UTC()
	for _, s := range n.sinks {
		if err := s.Publish(ctx, ev); err != nil {
			log.Warn("event publish failed", logging.Err(err))
		}
	}
	n.metrics.ObserveNotification(string(ev.Type), "emitted")
	log.Debug("event emitted")
	return true
}
