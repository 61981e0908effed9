package worker

import (
	"context"
	"log/slog"
	"time"

	"financas/internal/services"
)

// OverdueWorker periodically flips pending loan installments past their
// due date to overdue.
type OverdueWorker struct {
	loans    *services.LoanService
	interval time.Duration
	now      func() time.Time
}

func NewOverdueWorker(loans *services.LoanService, interval time.Duration) *OverdueWorker {
	return &OverdueWorker{
		loans:    loans,
		interval: interval,
		now:      time.Now,
	}
}

// Run sweeps once immediately, then on every tick until ctx is done.
func (w *OverdueWorker) Run(ctx context.Context) error {
	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *OverdueWorker) sweep(ctx context.Context) {
	n, err := w.loans.SweepOverdue(ctx, w.now())
	if err != nil {
		slog.ErrorContext(ctx, "Overdue sweep failed", "error", err)
		return
	}
	slog.DebugContext(ctx, "Overdue sweep finished", "marked", n)
}
