package refresh

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const DefaultInterval = 15 * time.Minute

type Refresher interface {
	Refresh(ctx context.Context) bool
}

// Runner triggers a refresh on start and then on every interval tick until
// its context is cancelled. Ticks that land on a running cycle are dropped by
// the refresher.
type Runner struct {
	refresher Refresher
	interval  time.Duration
	done      chan struct{}
}

func NewRunner(refresher Refresher, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Runner{
		refresher: refresher,
		interval:  interval,
		done:      make(chan struct{}),
	}
}

func (r *Runner) Done() <-chan struct{} {
	return r.done
}

func (r *Runner) Run(ctx context.Context) {
	logger := zerolog.Ctx(ctx).With().Dur("interval", r.interval).Logger()
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.trigger(ctx, &logger)
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("scheduled refresh stopped")
			return
		case <-ticker.C:
			r.trigger(ctx, &logger)
		}
	}
}

func (r *Runner) trigger(ctx context.Context, logger *zerolog.Logger) {
	if !r.refresher.Refresh(logger.WithContext(ctx)) {
		logger.Debug().Msg("scheduled refresh skipped")
	}
}
