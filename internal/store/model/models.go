package model

import "time"

// ProviderCheck is one provider outcome within an aggregation run.
type ProviderCheck struct {
	ID         string    `db:"id" json:"id"`
	RunID      string    `db:"run_id" json:"run_id"`
	Provider   string    `db:"provider" json:"provider"`
	Status     string    `db:"status" json:"status"`
	ModelCount int       `db:"model_count" json:"model_count"`
	Error      string    `db:"error" json:"error,omitempty"`
	FromCache  bool      `db:"from_cache" json:"from_cache"`
	CheckedAt  time.Time `db:"checked_at" json:"checked_at"`
}

// DailyUptime is the share of healthy checks for a provider on one day.
type DailyUptime struct {
	Date     string  `db:"date" json:"date"`
	Provider string  `db:"provider" json:"provider"`
	Checks   int     `db:"checks" json:"checks"`
	Healthy  int     `db:"healthy" json:"healthy"`
	Uptime   float64 `db:"-" json:"uptime"`
}
