package service

import (
	"context"
	"time"
)

// Default simulated delays of the local persistence layer.
const (
	DefaultLoadLatency     = 600 * time.Millisecond
	DefaultMutationLatency = 800 * time.Millisecond
	DefaultLoanPeriodDays  = 14
)

// wait blocks for d or until ctx is done. A non-positive d returns at once.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
