// Package scheduler refreshes the provider catalogs in the background.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/mileusna/crontab"
	"github.com/nulzo/model-catalog-api/pkg/api"
	"go.uber.org/zap"
)

// JobTimeout bounds a single refresh run.
const JobTimeout = 5 * time.Minute

// Refresher is the part of the aggregator the scheduler drives.
type Refresher interface {
	Refresh(ctx context.Context) *api.AggregatedResponse
}

// RefreshFunc adapts a function to Refresher.
type RefreshFunc func(ctx context.Context) *api.AggregatedResponse

func (f RefreshFunc) Refresh(ctx context.Context) *api.AggregatedResponse { return f(ctx) }

type Scheduler struct {
	ctab      *crontab.Crontab
	refresher Refresher
	minutes   int
	logger    *zap.Logger
}

func New(refresher Refresher, intervalMinutes int, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		ctab:      crontab.New(),
		refresher: refresher,
		minutes:   intervalMinutes,
		logger:    logger,
	}
}

// CronExpr converts a refresh interval to a crontab expression. Intervals
// of an hour or more are rounded down to whole hours.
func CronExpr(minutes int) (string, error) {
	switch {
	case minutes <= 0:
		return "", fmt.Errorf("refresh interval must be positive, got %d", minutes)
	case minutes < 60:
		return fmt.Sprintf("*/%d * * * *", minutes), nil
	case minutes < 24*60:
		return fmt.Sprintf("0 */%d * * *", minutes/60), nil
	default:
		return "0 0 * * *", nil
	}
}

// Run refreshes once, schedules the periodic job and blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	expr, err := CronExpr(s.minutes)
	if err != nil {
		return err
	}

	s.refresh(ctx)

	if err := s.ctab.AddJob(expr, func() {
		jobCtx, cancel := context.WithTimeout(ctx, JobTimeout)
		defer cancel()
		s.refresh(jobCtx)
	}); err != nil {
		return fmt.Errorf("failed to add catalog refresh job: %w", err)
	}
	s.logger.Info("Catalog refresh scheduled", zap.String("cron", expr))

	<-ctx.Done()
	s.ctab.Shutdown()
	return nil
}

func (s *Scheduler) refresh(ctx context.Context) {
	start := time.Now()
	resp := s.refresher.Refresh(ctx)
	if resp == nil {
		return
	}

	failed := 0
	for key, p := range resp.Metadata.Providers {
		if p.Status != api.StatusHealthy {
			failed++
			s.logger.Warn("Provider refresh failed", zap.String("provider", key), zap.String("error", p.Error))
		}
	}
	s.logger.Info("Catalog refreshed",
		zap.Int("total_models", resp.Metadata.TotalModels),
		zap.Int("failed_providers", failed),
		zap.Duration("elapsed", time.Since(start)),
	)
}
