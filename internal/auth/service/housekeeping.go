package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/eventhive/auth/internal/auth/store"
)

// DefaultHousekeepingInterval is how often expired OTP challenges get
// purged when no interval is configured.
const DefaultHousekeepingInterval = 5 * time.Minute

// Housekeeping periodically deletes expired OTP challenges. Expired rows are
// already unusable; this keeps the table from growing without bound.
type Housekeeping struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// Start launches the background sweep loop. It runs one sweep immediately so
// a restart does not wait a full interval to clear backlog.
func (h *Housekeeping) Start(ctx context.Context) {
	interval := h.Interval
	if interval <= 0 {
		interval = DefaultHousekeepingInterval
	}

	ctx, h.cancel = context.WithCancel(ctx)
	h.done = make(chan struct{})

	go func() {
		defer close(h.done)

		h.sweep(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.sweep(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for the in-flight sweep to finish.
func (h *Housekeeping) Stop() {
	if h.cancel == nil {
		return
	}
	h.cancel()
	<-h.done
}

func (h *Housekeeping) sweep(ctx context.Context) {
	deleted, err := h.Store.OTPChallenges().DeleteExpiredChallenges(ctx, time.Now().UTC())
	if err != nil {
		h.Logger.ErrorContext(ctx, "housekeeping_sweep_failed", "error", err)
		return
	}
	if deleted > 0 {
		h.Logger.InfoContext(ctx, "housekeeping_sweep", "expired_challenges_deleted", deleted)
	}
}
