package db

import "context"

// ShiftStore defines the shift database operations the engine mutates through
type ShiftStore interface {
	GetShifts(ctx context.Context) ([]Shift, error)
	InsertShifts(shifts []Shift) error
	UpdateShift(ctx context.Context, shift *Shift) error
	DeleteShift(ctx context.Context, id string) error
}

// Database defines the interface for all database operations.
// Both the Postgres-backed postgres.DB and the in-memory db.Memory implement
// this interface.
type Database interface {
	GetEmployees(ctx context.Context) ([]Employee, error)
	InsertEmployees(employees []Employee) error
	GetStores(ctx context.Context) ([]Store, error)
	InsertStores(stores []Store) error
	GetShifts(ctx context.Context) ([]Shift, error)
	InsertShifts(shifts []Shift) error
	UpdateShift(ctx context.Context, shift *Shift) error
	DeleteShift(ctx context.Context, id string) error
}
