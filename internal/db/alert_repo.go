package db

import (
	"context"
	"time"

	"sipwatch/internal/types"
)

// AlertRepository persists dispatched alert records. The dispatcher's
// in-memory history is authoritative for cooldown decisions; this table is
// the durable audit trail behind the alerts API.
type AlertRepository struct {
	db DBTX
}

// NewAlertRepository creates a new AlertRepository backed by the given
// database connection (pool or transaction).
func NewAlertRepository(db DBTX) *AlertRepository {
	return &AlertRepository{db: db}
}

const alertColumns = `id, created_at, level, score, message,
	location_name, location_type, temperature_c, heat_index_c, humidity_pct,
	has_climate_control, arrived_from_outdoors, beverage`

// Insert stores one alert record.
func (r *AlertRepository) Insert(ctx context.Context, rec *types.AlertRecord) error {
	const q = `INSERT INTO alerts (` + alertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.Exec(ctx, q,
		rec.ID,
		rec.Timestamp,
		rec.Level,
		rec.Score,
		rec.Message,
		rec.LocationName,
		rec.LocationType,
		rec.TemperatureC,
		rec.HeatIndexC,
		rec.HumidityPct,
		rec.HasClimateControl,
		rec.ArrivedFromOutdoors,
		rec.Beverage,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to insert alert record", err)
	}
	return nil
}

// ListRecent returns up to limit alerts, newest first.
func (r *AlertRepository) ListRecent(ctx context.Context, limit int) ([]types.AlertRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT ` + alertColumns + ` FROM alerts ORDER BY created_at DESC LIMIT $1`
	return r.list(ctx, q, limit)
}

// ListSince returns all alerts at or after the given time, oldest first.
func (r *AlertRepository) ListSince(ctx context.Context, since time.Time) ([]types.AlertRecord, error) {
	const q = `SELECT ` + alertColumns + ` FROM alerts WHERE created_at >= $1 ORDER BY created_at ASC`
	return r.list(ctx, q, since)
}

func (r *AlertRepository) list(ctx context.Context, q string, args ...any) ([]types.AlertRecord, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query alerts", err)
	}
	defer rows.Close()

	var out []types.AlertRecord
	for rows.Next() {
		var rec types.AlertRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Timestamp,
			&rec.Level,
			&rec.Score,
			&rec.Message,
			&rec.LocationName,
			&rec.LocationType,
			&rec.TemperatureC,
			&rec.HeatIndexC,
			&rec.HumidityPct,
			&rec.HasClimateControl,
			&rec.ArrivedFromOutdoors,
			&rec.Beverage,
		); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan alert record", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "alert row iteration failed", err)
	}
	return out, nil
}
