// Package scheduler runs a task on a fixed interval until its context ends.
package scheduler

import (
	"context"
	"time"

	"layoffs-engine/internal/logging"
)

type Task func(ctx context.Context) error

// Every runs task once immediately and then on each tick. Runs never overlap:
// a tick that fires while the task is still running is dropped.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	log := logging.FromContext(ctx).With().Str("component", "scheduler").Str("task", name).Logger()
	if interval <= 0 {
		log.Warn().Dur("interval", interval).Msg("non-positive interval, task not scheduled")
		return
	}

	run := func() {
		if err := task(ctx); err != nil {
			log.Error().Err(err).Msg("task failed")
		}
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	log.Info().Dur("interval", interval).Msg("scheduled")
	run()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("stopped")
			return
		case <-t.C:
			run()
		}
	}
}
