package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// StationRepository persists the station-to-charger ownership snapshot used
// by live uptime queries.
type StationRepository struct {
	db *sql.DB
}

// NewStationRepository returns repository.
func NewStationRepository(db *sql.DB) *StationRepository {
	return &StationRepository{db: db}
}

// ReplaceOwnership swaps the stored snapshot for the one just parsed.
// Done in a single transaction so readers never observe a half-written map.
func (r *StationRepository) ReplaceOwnership(ctx context.Context, ownership map[uint32][]uint32) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: begin ownership tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM station_chargers`); err != nil {
		return fmt.Errorf("repository: clear ownership: %w", err)
	}

	const insert = `INSERT INTO station_chargers (station_id, charger_id) VALUES ($1, $2)`
	for stationID, chargers := range ownership {
		if len(chargers) == 0 {
			// Stations without chargers are kept with a NULL charger row so
			// they still appear in live results.
			if _, err := tx.ExecContext(ctx, `INSERT INTO station_chargers (station_id, charger_id) VALUES ($1, NULL)`, int64(stationID)); err != nil {
				return fmt.Errorf("repository: insert station %d: %w", stationID, err)
			}
			continue
		}
		for _, chargerID := range chargers {
			if _, err := tx.ExecContext(ctx, insert, int64(stationID), int64(chargerID)); err != nil {
				return fmt.Errorf("repository: insert station %d charger %d: %w", stationID, chargerID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: commit ownership: %w", err)
	}
	return nil
}

// Ownership loads the stored snapshot.
func (r *StationRepository) Ownership(ctx context.Context) (map[uint32][]uint32, error) {
	const query = `SELECT station_id, charger_id FROM station_chargers ORDER BY station_id, charger_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: query ownership: %w", err)
	}
	defer rows.Close()

	ownership := make(map[uint32][]uint32)
	for rows.Next() {
		var stationID int64
		var chargerID sql.NullInt64
		if err := rows.Scan(&stationID, &chargerID); err != nil {
			return nil, fmt.Errorf("repository: scan ownership: %w", err)
		}
		id := uint32(stationID)
		if _, ok := ownership[id]; !ok {
			ownership[id] = nil
		}
		if chargerID.Valid {
			ownership[id] = append(ownership[id], uint32(chargerID.Int64))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: iterate ownership: %w", err)
	}
	return ownership, nil
}
