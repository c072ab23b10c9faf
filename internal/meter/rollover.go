package meter

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fixlab/api-core/internal/metrics"
	"github.com/fixlab/api-core/internal/store"
)

// Rollover resets request counters on a schedule, closing out one billing
// period and starting the next. Storage counters are left untouched.
type Rollover struct {
	store    store.PrincipalStore
	cron     *cron.Cron
	logger   *zap.Logger
	schedule string
}

// NewRollover creates a rollover job. An empty schedule disables it;
// "0 0 1 * *" resets on the first of each month at midnight.
func NewRollover(principals store.PrincipalStore, logger *zap.Logger, schedule string) *Rollover {
	return &Rollover{
		store:    principals,
		cron:     cron.New(),
		logger:   logger,
		schedule: schedule,
	}
}

func (r *Rollover) Start(ctx context.Context) error {
	if r.schedule == "" {
		r.logger.Info("usage rollover schedule not configured, skipping")
		return nil
	}

	if _, err := cron.ParseStandard(r.schedule); err != nil {
		return fmt.Errorf("invalid rollover schedule %q: %w", r.schedule, err)
	}

	if _, err := r.cron.AddFunc(r.schedule, func() {
		r.Run(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule usage rollover: %w", err)
	}

	r.cron.Start()
	r.logger.Info("usage rollover scheduled", zap.String("schedule", r.schedule))

	go func() {
		<-ctx.Done()
		r.Stop()
	}()

	return nil
}

// Run performs one rollover immediately.
func (r *Rollover) Run(ctx context.Context) {
	reset, err := r.store.ResetUsage(ctx, time.Now().UTC())
	if err != nil {
		r.logger.Error("usage rollover failed", zap.Error(err))
		return
	}

	metrics.UsageResetsTotal.Add(float64(reset))
	r.logger.Info("usage counters rolled over", zap.Int64("principals", reset))
}

func (r *Rollover) Stop() {
	r.cron.Stop()
}
