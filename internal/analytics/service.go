package analytics

import (
	"context"
	"time"

	"github.com/nulzo/model-catalog-api/internal/store"
	"github.com/nulzo/model-catalog-api/internal/store/model"
)

const (
	DefaultUptimeDays = 7
	DefaultCheckLimit = 20
	MaxCheckLimit     = 500
)

type Service interface {
	RecentChecks(ctx context.Context, provider string, limit int) ([]model.ProviderCheck, error)
	Uptime(ctx context.Context, days int) ([]model.DailyUptime, error)
}

type service struct {
	repo store.Repository
	now  func() time.Time
}

func NewService(repo store.Repository) Service {
	return &service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *service) RecentChecks(ctx context.Context, provider string, limit int) ([]model.ProviderCheck, error) {
	if limit <= 0 {
		limit = DefaultCheckLimit
	}
	if limit > MaxCheckLimit {
		limit = MaxCheckLimit
	}
	return s.repo.Checks().Recent(ctx, provider, limit)
}

// Uptime covers today plus the previous days-1 calendar days (UTC).
func (s *service) Uptime(ctx context.Context, days int) ([]model.DailyUptime, error) {
	if days <= 0 {
		days = DefaultUptimeDays
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	return s.repo.Checks().DailyUptime(ctx, today.AddDate(0, 0, -(days - 1)))
}
