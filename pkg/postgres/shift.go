package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/retailops/shiftbalance/pkg/db"
)

// GetShifts retrieves all shift records
func (d *DB) GetShifts(ctx context.Context) ([]db.Shift, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, employee_id, store_id, shift_date, start_time, end_time,
		       break_minutes, actual_hours, locked, lock_reason
		FROM shift
		ORDER BY shift_date, start_time, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []db.Shift
	for rows.Next() {
		var s db.Shift
		var date time.Time
		if err := rows.Scan(&s.ID, &s.EmployeeID, &s.StoreID, &date, &s.StartTime, &s.EndTime,
			&s.BreakMinutes, &s.ActualHours, &s.Locked, &s.LockReason); err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		s.ShiftDate = date.Format("2006-01-02")
		shifts = append(shifts, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shifts: %w", err)
	}

	return shifts, nil
}

// InsertShifts inserts shift records into the database
func (d *DB) InsertShifts(shifts []db.Shift) error {
	for _, s := range shifts {
		_, err := d.pool.Exec(context.Background(), `
			INSERT INTO shift (id, employee_id, store_id, shift_date, start_time, end_time,
			                   break_minutes, actual_hours, locked, lock_reason)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, s.ID, s.EmployeeID, s.StoreID, s.ShiftDate, s.StartTime, s.EndTime,
			s.BreakMinutes, s.ActualHours, s.Locked, s.LockReason)
		if err != nil {
			return fmt.Errorf("failed to insert shift %s: %w", s.ID, err)
		}
	}
	return nil
}

// UpdateShift replaces the mutable columns of the shift record with the same id
func (d *DB) UpdateShift(ctx context.Context, shift *db.Shift) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE shift
		SET employee_id = $2, store_id = $3, shift_date = $4, start_time = $5,
		    end_time = $6, break_minutes = $7, actual_hours = $8, locked = $9,
		    lock_reason = $10
		WHERE id = $1
	`, shift.ID, shift.EmployeeID, shift.StoreID, shift.ShiftDate, shift.StartTime,
		shift.EndTime, shift.BreakMinutes, shift.ActualHours, shift.Locked, shift.LockReason)
	if err != nil {
		return fmt.Errorf("failed to update shift %s: %w", shift.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("shift %s not found", shift.ID)
	}
	return nil
}

// DeleteShift removes the shift record with the given id
func (d *DB) DeleteShift(ctx context.Context, id string) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM shift WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shift %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("shift %s not found", id)
	}
	return nil
}
