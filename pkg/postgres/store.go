package postgres

import (
	"context"
	"fmt"

	"github.com/retailops/shiftbalance/pkg/db"
)

// GetStores retrieves all store records
func (d *DB) GetStores(ctx context.Context) ([]db.Store, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, active, opening_hours
		FROM store
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stores: %w", err)
	}
	defer rows.Close()

	var stores []db.Store
	for rows.Next() {
		var s db.Store
		var hours []byte
		if err := rows.Scan(&s.ID, &s.Name, &s.Active, &hours); err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		s.OpeningHours = string(hours)
		stores = append(stores, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stores: %w", err)
	}

	return stores, nil
}

// InsertStores inserts store records into the database
func (d *DB) InsertStores(stores []db.Store) error {
	for _, s := range stores {
		hours := s.OpeningHours
		if hours == "" {
			hours = "{}"
		}
		_, err := d.pool.Exec(context.Background(), `
			INSERT INTO store (id, name, active, opening_hours)
			VALUES ($1, $2, $3, $4)
		`, s.ID, s.Name, s.Active, []byte(hours))
		if err != nil {
			return fmt.Errorf("failed to insert store %s: %w", s.ID, err)
		}
	}
	return nil
}
