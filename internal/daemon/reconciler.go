package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Poster queues work onto the event loop.
type Poster interface {
	Post(fn func()) bool
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically re-scans the windows so a missed client-list
// notification never leaves the widget unattached or a child unplaced.
type Reconciler struct {
	mu       sync.Mutex
	interval time.Duration
	reset    chan struct{}

	poster Poster
	scan   func()
	logger *slog.Logger
}

// NewReconciler creates a new reconciler. scan runs on the loop behind poster.
func NewReconciler(cfg ReconcilerConfig, poster Poster, scan func()) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		reset:    make(chan struct{}, 1),
		poster:   poster,
		scan:     scan,
		logger:   logger,
	}
}

// SetInterval changes the period; a running loop picks it up immediately.
func (r *Reconciler) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	r.mu.Lock()
	changed := r.interval != d
	r.interval = d
	r.mu.Unlock()

	if changed {
		select {
		case r.reset <- struct{}{}:
		default:
		}
	}
}

func (r *Reconciler) currentInterval() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.interval
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	interval := r.currentInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-r.reset:
			interval = r.currentInterval()
			ticker.Reset(interval)
			r.logger.Debug("reconciler interval changed", "interval", interval)
		case <-ticker.C:
			r.ReconcileNow()
		}
	}
}

// ReconcileNow queues an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() {
	if !r.poster.Post(r.reconcile) {
		r.logger.Debug("reconciler: event loop stopped")
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()
	r.scan()
}
