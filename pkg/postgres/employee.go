package postgres

import (
	"context"
	"fmt"

	"github.com/retailops/shiftbalance/pkg/db"
)

// GetEmployees retrieves all employee records
func (d *DB) GetEmployees(ctx context.Context) ([]db.Employee, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, first_name, last_name, role, store_id,
		       contract_hours, min_hours, active, authorized_store_ids
		FROM employee
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []db.Employee
	for rows.Next() {
		var e db.Employee
		if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Role, &e.StoreID,
			&e.ContractHours, &e.MinHours, &e.Active, &e.AuthorizedStoreIDs); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employees: %w", err)
	}

	return employees, nil
}

// InsertEmployees inserts employee records into the database
func (d *DB) InsertEmployees(employees []db.Employee) error {
	for _, e := range employees {
		_, err := d.pool.Exec(context.Background(), `
			INSERT INTO employee (id, first_name, last_name, role, store_id,
			                      contract_hours, min_hours, active, authorized_store_ids)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, e.ID, e.FirstName, e.LastName, e.Role, e.StoreID,
			e.ContractHours, e.MinHours, e.Active, e.AuthorizedStoreIDs)
		if err != nil {
			return fmt.Errorf("failed to insert employee %s: %w", e.ID, err)
		}
	}
	return nil
}
