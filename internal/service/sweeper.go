package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/iliyamo/event-seat-reservation/internal/obs"
)

// sweepTarget is the part of LockManager the sweeper drives.
type sweepTarget interface {
	SweepAll(ctx context.Context) (int, error)
}

// Sweeper periodically reclaims expired locks so seat maps stay fresh
// between requests.  It uses the same conditional sweep as the inline
// path, so it never changes what a caller can observe.
type Sweeper struct {
	target   sweepTarget
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeper returns a Sweeper running every interval.  A non-positive
// interval makes Run return immediately.
func NewSweeper(target sweepTarget, interval time.Duration) *Sweeper {
	return &Sweeper{target: target, interval: interval, logger: obs.Logger}
}

// Run sweeps until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.logger.Info("lock sweeper started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("lock sweeper stopped")
			return
		case <-ticker.C:
			n, err := s.target.SweepAll(ctx)
			if err != nil {
				s.logger.Error("lock sweep failed", "err", err)
				continue
			}
			if n > 0 {
				s.logger.Info("expired locks reclaimed", "count", n)
			}
		}
	}
}
