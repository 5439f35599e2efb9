package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/PaulBabatuyi/chitChest-gRPC/internal/data"
)

const sweepBatch = 100

// SweepDue promotes active chests whose deadline has passed to unlockable. It
// returns how many chests this call moved.
func (s *Service) SweepDue(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.chests.ListDue(ctx, now, sweepBatch)
	if err != nil {
		return 0, err
	}

	promoted := 0
	for _, c := range due {
		_, swapped, err := s.transition(ctx, c, data.StatusUnlockable, now)
		if err != nil {
			return promoted, err
		}
		if swapped {
			promoted++
		}
	}
	s.metrics.Swept(promoted)
	return promoted, nil
}

// Sweeper runs SweepDue on a fixed interval. Status promotion also happens
// lazily on reads, so the sweeper only keeps stored statuses close to the clock.
type Sweeper struct {
	svc      *Service
	interval time.Duration
	log      zerolog.Logger
}

func NewSweeper(svc *Service, interval time.Duration, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		svc:      svc,
		interval: interval,
		log:      log.With().Str("component", "sweeper").Logger(),
	}
}

// Run blocks until ctx is done. It returns nil on cancellation.
func (w *Sweeper) Run(ctx context.Context) error {
	if w.interval <= 0 {
		w.log.Info().Msg("sweeper disabled")
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info().Dur("interval", w.interval).Msg("sweeper started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := w.svc.SweepDue(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.log.Error().Err(err).Msg("sweep failed")
				continue
			}
			if n > 0 {
				w.log.Info().Int("promoted", n).Msg("chests promoted to unlockable")
			}
		}
	}
}
