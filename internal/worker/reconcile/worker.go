package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

type settler interface {
	SettleStalePayments(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

// Worker periodically settles orders stuck in a pending payment state. A
// shopper who pays and then closes the tab before the redirect lands never
// hits the callback, and webhooks can be delayed or lost; this loop asks the
// gateway for the authoritative outcome of those references.
type Worker struct {
	service  settler
	interval time.Duration
	cutoff   time.Duration
	limit    int
	stopCh   chan struct{}
}

// NewWorker creates a new reconciliation worker.
func NewWorker(service settler) *Worker {
	interval := viper.GetDuration("reconcile.interval")
	if interval == 0 {
		interval = 5 * time.Minute
	}

	cutoff := viper.GetDuration("reconcile.cutoff")
	if cutoff == 0 {
		cutoff = 15 * time.Minute
	}

	limit := viper.GetInt("reconcile.batch_size")
	if limit == 0 {
		limit = 50
	}

	return &Worker{
		service:  service,
		interval: interval,
		cutoff:   cutoff,
		limit:    limit,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the reconciliation loop.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.Info("Reconciliation worker started", "interval", w.interval, "cutoff", w.cutoff)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Reconciliation worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Reconciliation worker stopped")

			return
		case <-ticker.C:
			settled, err := w.service.SettleStalePayments(ctx, w.cutoff, w.limit)
			if err != nil {
				slog.Error("Reconciliation run failed", "error", err)

				continue
			}

			if settled > 0 {
				slog.Info("Reconciliation run settled payments", "count", settled)
			}
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}
