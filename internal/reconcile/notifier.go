package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Cheertaboi/flash-coupon-service/internal/clock"
)

const (
	SourcePoll  = "poll"
	SourceTimer = "timer"
)

type Removal struct {
	CouponID string    `json:"coupon_id"`
	Source   string    `json:"source"`
	At       time.Time `json:"at"`
}

type Sink interface {
	Removed(ctx context.Context, r Removal) error
}

type SinkFunc func(ctx context.Context, r Removal) error

func (f SinkFunc) Removed(ctx context.Context, r Removal) error { return f(ctx, r) }

// Notifier forwards each coupon removal to its sink exactly once, no matter
// how many paths report it.
type Notifier struct {
	mu       sync.Mutex
	notified map[string]struct{}
	sink     Sink
	clock    clock.Clock
	logger   *zap.Logger
}

func NewNotifier(sink Sink, clk clock.Clock, logger *zap.Logger) *Notifier {
	return &Notifier{
		notified: make(map[string]struct{}),
		sink:     sink,
		clock:    clk,
		logger:   logger,
	}
}

// Notify reports whether this call delivered the removal.
func (n *Notifier) Notify(ctx context.Context, couponID, source string) bool {
	n.mu.Lock()
	if _, done := n.notified[couponID]; done {
		n.mu.Unlock()
		n.logger.Debug("duplicate removal suppressed",
			zap.String("coupon_id", couponID),
			zap.String("source", source))
		return false
	}
	n.notified[couponID] = struct{}{}
	n.mu.Unlock()

	r := Removal{CouponID: couponID, Source: source, At: n.clock.Now()}
	if err := n.sink.Removed(ctx, r); err != nil {
		n.logger.Error("removal sink failed",
			zap.String("coupon_id", couponID),
			zap.String("source", source),
			zap.Error(err))
	}
	return true
}

// Forget drops the dedupe entry so a later removal of the same id is delivered.
func (n *Notifier) Forget(couponID string) {
	n.mu.Lock()
	delete(n.notified, couponID)
	n.mu.Unlock()
}

type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Removed(_ context.Context, r Removal) error {
	s.logger.Info("coupon removed",
		zap.String("coupon_id", r.CouponID),
		zap.String("source", r.Source),
		zap.Time("at", r.At))
	return nil
}

// RedisSink publishes removals as JSON on a pub/sub channel for connected
// clients and other instances.
type RedisSink struct {
	client  *redis.Client
	channel string
}

func NewRedisSink(client *redis.Client, channel string) *RedisSink {
	return &RedisSink{client: client, channel: channel}
}

func (s *RedisSink) Removed(ctx context.Context, r Removal) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode removal: %w", err)
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish removal: %w", err)
	}
	return nil
}

// MultiSink delivers to every sink and returns the first error.
type MultiSink []Sink

func (m MultiSink) Removed(ctx context.Context, r Removal) error {
	var first error
	for _, s := range m {
		if err := s.Removed(ctx, r); err != nil && first == nil {
			first = err
		}
	}
	return first
}
