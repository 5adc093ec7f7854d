package analytics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nulzo/model-catalog-api/internal/store"
	"github.com/nulzo/model-catalog-api/internal/store/model"
	"github.com/nulzo/model-catalog-api/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memRepo is an in-memory store.Repository.
type memRepo struct {
	mu     sync.Mutex
	checks []model.ProviderCheck
	txs    int
}

func (r *memRepo) Checks() store.CheckRepository { return &memChecks{r} }

func (r *memRepo) WithTx(ctx context.Context, fn func(store.Repository) error) error {
	r.mu.Lock()
	r.txs++
	r.mu.Unlock()
	return fn(r)
}

func (r *memRepo) Close() error { return nil }

func (r *memRepo) snapshot() []model.ProviderCheck {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.ProviderCheck(nil), r.checks...)
}

type memChecks struct{ r *memRepo }

func (c *memChecks) Log(_ context.Context, check *model.ProviderCheck) error {
	c.r.mu.Lock()
	defer c.r.mu.Unlock()
	c.r.checks = append(c.r.checks, *check)
	return nil
}

func (c *memChecks) Recent(context.Context, string, int) ([]model.ProviderCheck, error) {
	return nil, nil
}

func (c *memChecks) DailyUptime(context.Context, time.Time) ([]model.DailyUptime, error) {
	return nil, nil
}

func TestIngestor_FlushesOnStop(t *testing.T) {
	repo := &memRepo{}
	ing := NewIngestor(zap.NewNop(), repo, WithFlushInterval(time.Hour))
	ing.Start(context.Background())

	ing.RecordStatus(context.Background(), "run-1", "openrouter",
		api.ProviderInfo{Status: api.StatusHealthy, ModelCount: 12}, false)
	ing.RecordStatus(context.Background(), "run-1", "requesty",
		api.ProviderInfo{Status: api.StatusDown, Error: "No API key available"}, false)
	ing.Stop()

	checks := repo.snapshot()
	require.Len(t, checks, 2)
	assert.Equal(t, "openrouter", checks[0].Provider)
	assert.Equal(t, "healthy", checks[0].Status)
	assert.Equal(t, 12, checks[0].ModelCount)
	assert.Equal(t, "run-1", checks[0].RunID)
	assert.NotEmpty(t, checks[0].ID)
	assert.Equal(t, "No API key available", checks[1].Error)

	// Recording after stop is a no-op, and Stop is idempotent.
	ing.RecordStatus(context.Background(), "run-2", "openrouter", api.ProviderInfo{}, true)
	ing.Stop()
	assert.Len(t, repo.snapshot(), 2)
}

func TestIngestor_FlushesFullBatch(t *testing.T) {
	repo := &memRepo{}
	ing := NewIngestor(zap.NewNop(), repo, WithBatchSize(2), WithFlushInterval(time.Hour))
	ing.Start(context.Background())
	defer ing.Stop()

	for i := 0; i < 2; i++ {
		ing.RecordStatus(context.Background(), "run", "p", api.ProviderInfo{Status: api.StatusHealthy}, true)
	}

	assert.Eventually(t, func() bool {
		return len(repo.snapshot()) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestIngestor_DropsWhenBufferFull(t *testing.T) {
	repo := &memRepo{}
	ing := NewIngestor(zap.NewNop(), repo, WithBufferSize(1))

	// The worker is not started, so the second check has nowhere to go.
	ing.RecordStatus(context.Background(), "run", "a", api.ProviderInfo{}, false)
	ing.RecordStatus(context.Background(), "run", "b", api.ProviderInfo{}, false)

	ing.Start(context.Background())
	ing.Stop()

	checks := repo.snapshot()
	require.Len(t, checks, 1)
	assert.Equal(t, "a", checks[0].Provider)
}

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Checks() store.CheckRepository { return m }

func (m *mockRepo) WithTx(ctx context.Context, fn func(store.Repository) error) error {
	return fn(m)
}

func (m *mockRepo) Close() error { return nil }

func (m *mockRepo) Log(ctx context.Context, check *model.ProviderCheck) error {
	return m.Called(check).Error(0)
}

func (m *mockRepo) Recent(ctx context.Context, provider string, limit int) ([]model.ProviderCheck, error) {
	args := m.Called(provider, limit)
	return args.Get(0).([]model.ProviderCheck), args.Error(1)
}

func (m *mockRepo) DailyUptime(ctx context.Context, since time.Time) ([]model.DailyUptime, error) {
	args := m.Called(since)
	return args.Get(0).([]model.DailyUptime), args.Error(1)
}

func TestService_RecentChecksClampsLimit(t *testing.T) {
	repo := new(mockRepo)
	repo.On("Recent", "openrouter", DefaultCheckLimit).Return([]model.ProviderCheck{}, nil).Once()
	repo.On("Recent", "openrouter", MaxCheckLimit).Return([]model.ProviderCheck{}, nil).Once()

	svc := NewService(repo)
	_, err := svc.RecentChecks(context.Background(), "openrouter", 0)
	require.NoError(t, err)
	_, err = svc.RecentChecks(context.Background(), "openrouter", 10_000)
	require.NoError(t, err)

	repo.AssertExpectations(t)
}

func TestService_UptimeWindow(t *testing.T) {
	repo := new(mockRepo)
	svc := &service{repo: repo, now: func() time.Time {
		return time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	}}

	repo.On("DailyUptime", time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)).Return([]model.DailyUptime{}, nil).Once()
	repo.On("DailyUptime", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)).Return([]model.DailyUptime{}, nil).Once()

	_, err := svc.Uptime(context.Background(), 0)
	require.NoError(t, err)
	_, err = svc.Uptime(context.Background(), 1)
	require.NoError(t, err)

	repo.AssertExpectations(t)
}
