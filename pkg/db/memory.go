package db

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-memory Database used by tests and dry-run tooling. It
// copies records on the way in and out so callers never share backing slices.
type Memory struct {
	mu        sync.Mutex
	employees []Employee
	stores    []Store
	shifts    []Shift
}

// NewMemory creates an empty in-memory database
func NewMemory() *Memory {
	return &Memory{}
}

// GetEmployees retrieves all employee records
func (m *Memory) GetEmployees(ctx context.Context) ([]Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Employee, len(m.employees))
	copy(out, m.employees)
	return out, nil
}

// InsertEmployees inserts employee records
func (m *Memory) InsertEmployees(employees []Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees = append(m.employees, employees...)
	return nil
}

// GetStores retrieves all store records
func (m *Memory) GetStores(ctx context.Context) ([]Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Store, len(m.stores))
	copy(out, m.stores)
	return out, nil
}

// InsertStores inserts store records
func (m *Memory) InsertStores(stores []Store) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stores = append(m.stores, stores...)
	return nil
}

// GetShifts retrieves all shift records
func (m *Memory) GetShifts(ctx context.Context) ([]Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Shift, len(m.shifts))
	copy(out, m.shifts)
	return out, nil
}

// InsertShifts inserts shift records
func (m *Memory) InsertShifts(shifts []Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shifts = append(m.shifts, shifts...)
	return nil
}

// UpdateShift replaces the shift record with the same id
func (m *Memory) UpdateShift(ctx context.Context, shift *Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.shifts {
		if m.shifts[i].ID == shift.ID {
			m.shifts[i] = *shift
			return nil
		}
	}
	return fmt.Errorf("shift %s not found", shift.ID)
}

// DeleteShift removes the shift record with the given id
func (m *Memory) DeleteShift(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.shifts {
		if m.shifts[i].ID == id {
			m.shifts = append(m.shifts[:i], m.shifts[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("shift %s not found", id)
}
