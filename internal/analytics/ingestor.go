package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nulzo/model-catalog-api/internal/store"
	"github.com/nulzo/model-catalog-api/internal/store/model"
	"github.com/nulzo/model-catalog-api/pkg/api"
	"go.uber.org/zap"
)

// Ingestor persists provider checks asynchronously in batches.
type Ingestor interface {
	RecordStatus(ctx context.Context, runID, providerKey string, info api.ProviderInfo, fromCache bool)
	Start(ctx context.Context)
	// Stop flushes buffered checks and waits for the worker to exit.
	Stop()
}

type IngestorOption func(*ingestor)

func WithBatchSize(n int) IngestorOption {
	return func(i *ingestor) { i.batchSize = n }
}

func WithFlushInterval(d time.Duration) IngestorOption {
	return func(i *ingestor) { i.flushTime = d }
}

func WithBufferSize(n int) IngestorOption {
	return func(i *ingestor) { i.checks = make(chan *model.ProviderCheck, n) }
}

type ingestor struct {
	logger    *zap.Logger
	repo      store.Repository
	checks    chan *model.ProviderCheck
	batchSize int
	flushTime time.Duration
	now       func() time.Time

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewIngestor(logger *zap.Logger, repo store.Repository, opts ...IngestorOption) Ingestor {
	i := &ingestor{
		logger:    logger,
		repo:      repo,
		checks:    make(chan *model.ProviderCheck, 10000),
		batchSize: 50,
		flushTime: 5 * time.Second,
		now:       time.Now,
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *ingestor) RecordStatus(_ context.Context, runID, providerKey string, info api.ProviderInfo, fromCache bool) {
	check := &model.ProviderCheck{
		ID:         uuid.NewString(),
		RunID:      runID,
		Provider:   providerKey,
		Status:     string(info.Status),
		ModelCount: info.ModelCount,
		Error:      info.Error,
		FromCache:  fromCache,
		CheckedAt:  i.now().UTC(),
	}

	select {
	case <-i.quit:
		return
	default:
	}

	select {
	case i.checks <- check:
	default:
		i.logger.Warn("Check buffer full, dropping provider check",
			zap.String("run_id", runID),
			zap.String("provider", providerKey),
		)
	}
}

func (i *ingestor) Start(ctx context.Context) {
	go i.worker(ctx)
}

func (i *ingestor) Stop() {
	i.stopOnce.Do(func() {
		close(i.quit)
	})
	<-i.done
}

func (i *ingestor) worker(ctx context.Context) {
	defer close(i.done)

	batch := make([]*model.ProviderCheck, 0, i.batchSize)
	ticker := time.NewTicker(i.flushTime)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		err := i.repo.WithTx(context.Background(), func(repo store.Repository) error {
			for _, c := range batch {
				if err := repo.Checks().Log(context.Background(), c); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			i.logger.Error("Failed to persist provider checks", zap.Int("count", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
	}

	drain := func() {
		for {
			select {
			case c := <-i.checks:
				batch = append(batch, c)
			default:
				flush()
				return
			}
		}
	}

	for {
		select {
		case c := <-i.checks:
			batch = append(batch, c)
			if len(batch) >= i.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-i.quit:
			drain()
			return
		case <-ctx.Done():
			drain()
			return
		}
	}
}
