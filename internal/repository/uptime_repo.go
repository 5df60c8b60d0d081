package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stationuptime/internal/models"
)

// UptimeRepository persists computed uptime runs.
type UptimeRepository struct {
	db *sql.DB
}

// NewUptimeRepository returns repository.
func NewUptimeRepository(db *sql.DB) *UptimeRepository {
	return &UptimeRepository{db: db}
}

// SaveRun stores one computed run and its per-station results.
func (r *UptimeRepository) SaveRun(ctx context.Context, results []models.StationUptime) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("repository: begin run tx: %w", err)
	}
	defer tx.Rollback()

	var runID int64
	if err := tx.QueryRowContext(ctx, `INSERT INTO uptime_runs (computed_at) VALUES (NOW()) RETURNING id`).Scan(&runID); err != nil {
		return 0, fmt.Errorf("repository: insert run: %w", err)
	}

	const insert = `INSERT INTO uptime_results (run_id, station_id, percent) VALUES ($1, $2, $3)`
	for _, result := range results {
		if _, err := tx.ExecContext(ctx, insert, runID, int64(result.StationID), result.Percent); err != nil {
			return 0, fmt.Errorf("repository: insert result for station %d: %w", result.StationID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("repository: commit run: %w", err)
	}
	return runID, nil
}

// LatestRun returns the most recent run's results sorted by station ID.
func (r *UptimeRepository) LatestRun(ctx context.Context) ([]models.StationUptime, time.Time, error) {
	var runID int64
	var computedAt time.Time
	err := r.db.QueryRowContext(ctx, `SELECT id, computed_at FROM uptime_runs ORDER BY computed_at DESC, id DESC LIMIT 1`).Scan(&runID, &computedAt)
	if err != nil {
		return nil, time.Time{}, err
	}

	const query = `SELECT station_id, percent FROM uptime_results WHERE run_id = $1 ORDER BY station_id`
	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("repository: query results: %w", err)
	}
	defer rows.Close()

	var results []models.StationUptime
	for rows.Next() {
		var stationID int64
		var percent int
		if err := rows.Scan(&stationID, &percent); err != nil {
			return nil, time.Time{}, fmt.Errorf("repository: scan result: %w", err)
		}
		results = append(results, models.StationUptime{StationID: uint32(stationID), Percent: percent})
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("repository: iterate results: %w", err)
	}
	return results, computedAt, nil
}

// LatestByStation returns the station's percent from the most recent run
// that includes it. sql.ErrNoRows when the station was never computed.
func (r *UptimeRepository) LatestByStation(ctx context.Context, stationID uint32) (int, error) {
	const query = `
		SELECT res.percent
		FROM uptime_results res
		JOIN uptime_runs runs ON runs.id = res.run_id
		WHERE res.station_id = $1
		ORDER BY runs.computed_at DESC, runs.id DESC
		LIMIT 1
	`
	var percent int
	if err := r.db.QueryRowContext(ctx, query, int64(stationID)).Scan(&percent); err != nil {
		return 0, err
	}
	return percent, nil
}
