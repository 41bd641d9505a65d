package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper is the part of the violation detector the scheduler drives.
type Sweeper interface {
	SweepMissedCheckouts(ctx context.Context, now time.Time) (int, error)
}

const sweepTimeout = 2 * time.Minute

// StartMissedCheckoutScheduler flags past sessions that were never checked
// out, once at start and then on schedule (cron syntax, "@every 30m" style
// descriptors included, evaluated in loc), until ctx is cancelled.
func StartMissedCheckoutScheduler(ctx context.Context, sweeper Sweeper, schedule string, loc *time.Location) error {
	if schedule == "" {
		schedule = "@every 30m"
	}
	if loc == nil {
		loc = time.UTC
	}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	if _, err := c.AddFunc(schedule, func() { runWithTimeout(ctx, sweeper) }); err != nil {
		return err
	}

	go func() {
		runWithTimeout(ctx, sweeper)
		c.Start()
		zap.S().Infof("[SWEEP] missed-checkout scheduler started schedule=%q", schedule)

		<-ctx.Done()
		<-c.Stop().Done()
		zap.S().Info("[SWEEP] missed-checkout scheduler stopped")
	}()
	return nil
}

func runWithTimeout(parent context.Context, sweeper Sweeper) {
	if parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(parent, sweepTimeout)
	defer cancel()
	RunOnce(ctx, sweeper, time.Now())
}

// RunOnce is one sweep with logging; errors never stop the scheduler.
func RunOnce(ctx context.Context, sweeper Sweeper, now time.Time) int {
	zap.S().Debug("[SWEEP] checking for missed check-outs")

	n, err := sweeper.SweepMissedCheckouts(ctx, now)
	switch {
	case err != nil:
		zap.S().Errorw("[SWEEP ERROR] missed-checkout sweep failed", "error", err)
	case n > 0:
		zap.S().Infof("[SWEEP] %d missed check-out violation(s) recorded", n)
	default:
		zap.S().Debug("[SWEEP] no open sessions from previous days")
	}
	return n
}
