package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nulzo/model-catalog-api/internal/store"
	"github.com/nulzo/model-catalog-api/internal/store/model"
)

// DB is satisfied by both *sqlx.DB and *sqlx.Tx.
type DB interface {
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	Rebind(query string) string
	DriverName() string
}

// Repository implements store.Repository over sqlite or postgres.
type Repository struct {
	db       *sqlx.DB
	executor DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		db:       db,
		executor: db,
	}
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) WithTx(ctx context.Context, fn func(repo store.Repository) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	txRepo := &Repository{
		db:       r.db,
		executor: tx,
	}

	if err := fn(txRepo); err != nil {
		// rollback, but keep the original error
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *Repository) Checks() store.CheckRepository {
	return &checkRepo{db: r.executor}
}

type checkRepo struct {
	db DB
}

func (r *checkRepo) Log(ctx context.Context, check *model.ProviderCheck) error {
	query := `
	INSERT INTO provider_checks (id, run_id, provider, status, model_count, error, from_cache, checked_at)
	VALUES (:id, :run_id, :provider, :status, :model_count, :error, :from_cache, :checked_at)`
	_, err := r.db.NamedExecContext(ctx, query, check)
	return err
}

func (r *checkRepo) Recent(ctx context.Context, provider string, limit int) ([]model.ProviderCheck, error) {
	checks := []model.ProviderCheck{}
	query := r.db.Rebind(`
		SELECT id, run_id, provider, status, model_count, error, from_cache, checked_at
		FROM provider_checks
		WHERE provider = ?
		ORDER BY checked_at DESC
		LIMIT ?`)
	err := r.db.SelectContext(ctx, &checks, query, provider, limit)
	return checks, err
}

func (r *checkRepo) DailyUptime(ctx context.Context, since time.Time) ([]model.DailyUptime, error) {
	day := "DATE(checked_at)"
	if r.db.DriverName() == DriverPostgres {
		day = "TO_CHAR(checked_at, 'YYYY-MM-DD')"
	}

	stats := []model.DailyUptime{}
	query := r.db.Rebind(`
		SELECT
			` + day + ` AS date,
			provider,
			COUNT(*) AS checks,
			SUM(CASE WHEN status = 'healthy' THEN 1 ELSE 0 END) AS healthy
		FROM provider_checks
		WHERE checked_at >= ?
		GROUP BY ` + day + `, provider
		ORDER BY date DESC, provider ASC`)
	if err := r.db.SelectContext(ctx, &stats, query, since.UTC()); err != nil {
		return nil, err
	}

	for i := range stats {
		if stats[i].Checks > 0 {
			stats[i].Uptime = float64(stats[i].Healthy) / float64(stats[i].Checks)
		}
	}
	return stats, nil
}
