package session

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically runs a set of expiry passes (admin sessions, the
// gallery cache) on a shared interval.
type Sweeper struct {
	interval time.Duration
	passes   []func()
	done     chan struct{}
}

// NewSweeper creates a sweeper that invokes each pass once per interval.
func NewSweeper(interval time.Duration, passes ...func()) *Sweeper {
	return &Sweeper{
		interval: interval,
		passes:   passes,
		done:     make(chan struct{}),
	}
}

// Start begins the sweep loop in a background goroutine.
func (sw *Sweeper) Start(ctx context.Context) {
	slog.Info("expiry sweeper started", "interval", sw.interval)

	go func() {
		ticker := time.NewTicker(sw.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				for _, pass := range sw.passes {
					pass()
				}
			case <-ctx.Done():
				slog.Info("expiry sweeper stopping")
				close(sw.done)
				return
			}
		}
	}()
}

// Wait blocks until the sweeper has fully stopped.
func (sw *Sweeper) Wait() {
	<-sw.done
}
