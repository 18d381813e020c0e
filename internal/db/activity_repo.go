package db

import (
	"context"
	"time"

	"sipwatch/internal/types"
)

// ActivityRepository provides data access for the activity table: hourly
// per-person rows of cumulative steps, ambient temperature, and drink spend.
//
// Steps and spend are both cumulative within a day and reset at midnight, so
// the per-day value for each is MAX(), not SUM(). The paid_monney column
// keeps the historical spelling from the ingest pipeline.
type ActivityRepository struct {
	db DBTX
}

// NewActivityRepository creates a new ActivityRepository backed by the given
// database connection (pool or transaction).
func NewActivityRepository(db DBTX) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// InsertSamples appends hourly activity rows.
func (r *ActivityRepository) InsertSamples(ctx context.Context, samples []types.ActivitySample) error {
	const q = `INSERT INTO activity (author, temp, steps, paid_monney, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	for _, s := range samples {
		if _, err := r.db.Exec(ctx, q, s.Author, s.TempC, s.Steps, s.PaidAmount, s.CreatedAt); err != nil {
			return types.NewAppError(types.ErrCodeInternalDB, "failed to insert activity sample", err)
		}
	}
	return nil
}

// ListByAuthor returns the hourly samples for one person within [from, to),
// oldest first.
func (r *ActivityRepository) ListByAuthor(ctx context.Context, author string, from, to time.Time) ([]types.ActivitySample, error) {
	const q = `SELECT author, temp, steps, paid_monney, created_at
		FROM activity
		WHERE author = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, q, author, from, to)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query activity samples", err)
	}
	defer rows.Close()

	var out []types.ActivitySample
	for rows.Next() {
		var s types.ActivitySample
		if err := rows.Scan(&s.Author, &s.TempC, &s.Steps, &s.PaidAmount, &s.CreatedAt); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan activity sample", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "activity row iteration failed", err)
	}
	return out, nil
}

// DailyAggregates rolls the hourly rows up to one row per person per day:
// final step count, mean temperature, and final spend. Oldest day first.
func (r *ActivityRepository) DailyAggregates(ctx context.Context, author string) ([]types.DailyActivity, error) {
	const q = `SELECT author,
			date_trunc('day', created_at) AS day,
			MAX(steps) AS steps,
			AVG(temp) AS mean_temp,
			MAX(paid_monney) AS spend
		FROM activity
		WHERE author = $1
		GROUP BY author, day
		ORDER BY day ASC`

	rows, err := r.db.Query(ctx, q, author)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query daily activity", err)
	}
	defer rows.Close()

	var out []types.DailyActivity
	for rows.Next() {
		var d types.DailyActivity
		if err := rows.Scan(&d.Author, &d.Date, &d.Steps, &d.MeanTempC, &d.Spend); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan daily activity", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "daily activity iteration failed", err)
	}
	return out, nil
}

// Authors returns the distinct people present in the activity table.
func (r *ActivityRepository) Authors(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT author FROM activity ORDER BY author`)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query authors", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan author", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "author iteration failed", err)
	}
	return out, nil
}
