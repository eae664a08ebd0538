package reconcile

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Cheertaboi/flash-coupon-service/internal/clock"
	"github.com/Cheertaboi/flash-coupon-service/internal/models"
)

const DefaultInterval = 30 * time.Second

// SnapshotSource yields the authoritative set of currently active coupons.
type SnapshotSource interface {
	ActiveCoupons(ctx context.Context) ([]models.Coupon, error)
}

// Watcher polls the active set at a fixed interval and reports coupons that
// dropped out of it. Between polls, per-coupon timers report expiry at the
// exact end time; the notifier makes sure only one of the two paths counts.
type Watcher struct {
	source   SnapshotSource
	notifier *Notifier
	timers   *Timers
	interval time.Duration
	logger   *zap.Logger

	mu   sync.Mutex
	prev []string

	// removed by the previous poll; forgotten by the notifier on the next one
	settled []string
}

func NewWatcher(source SnapshotSource, notifier *Notifier, clk clock.Clock, interval time.Duration, logger *zap.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	w := &Watcher{
		source:   source,
		notifier: notifier,
		interval: interval,
		logger:   logger,
	}
	w.timers = NewTimers(clk, func(id string) {
		w.notifier.Notify(context.Background(), id, SourceTimer)
	})
	return w
}

// Run polls until ctx is cancelled. Poll errors are logged and retried on the
// next tick.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer w.timers.Stop()

	w.logger.Info("expiry watcher started", zap.Duration("interval", w.interval))
	if _, err := w.Poll(ctx); err != nil {
		w.logger.Warn("expiry poll failed", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("expiry watcher stopped")
			return nil
		case <-ticker.C:
			if _, err := w.Poll(ctx); err != nil {
				w.logger.Warn("expiry poll failed", zap.Error(err))
			}
		}
	}
}

// Poll takes one snapshot, arms timers for coupons seen for the first time
// and notifies the ones that disappeared since the previous snapshot.
func (w *Watcher) Poll(ctx context.Context) ([]string, error) {
	coupons, err := w.source.ActiveCoupons(ctx)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	// A timer callback racing the previous poll has finished by now, so these
	// ids can no longer produce a second delivery.
	for _, id := range w.settled {
		w.notifier.Forget(id)
	}

	known := make(map[string]struct{}, len(w.prev))
	for _, id := range w.prev {
		known[id] = struct{}{}
	}

	current := make([]string, 0, len(coupons))
	for _, c := range coupons {
		current = append(current, c.ID)
		if _, ok := known[c.ID]; !ok {
			w.timers.Schedule(c.ID, c.EndTime)
		}
	}
	sort.Strings(current)

	removed := Reconcile(w.prev, current)
	for _, id := range removed {
		w.timers.Cancel(id)
		w.notifier.Notify(ctx, id, SourcePoll)
	}
	w.prev = current
	w.settled = removed

	if len(removed) > 0 {
		w.logger.Debug("expiry poll", zap.Int("active", len(current)), zap.Strings("removed", removed))
	}
	return removed, nil
}

func (w *Watcher) PendingTimers() int {
	return w.timers.Pending()
}
