package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/retailops/shiftbalance/internal/config"
	"github.com/retailops/shiftbalance/pkg/core/model"
	"github.com/retailops/shiftbalance/pkg/core/prevalidate"
	"github.com/retailops/shiftbalance/pkg/db"
)

// EntityReader defines the read-side database operations the services need
type EntityReader interface {
	GetEmployees(ctx context.Context) ([]db.Employee, error)
	GetStores(ctx context.Context) ([]db.Store, error)
	GetShifts(ctx context.Context) ([]db.Shift, error)
}

// EntityStore adds the shift mutations used when applying changes
type EntityStore interface {
	EntityReader
	InsertShifts(shifts []db.Shift) error
	UpdateShift(ctx context.Context, shift *db.Shift) error
	DeleteShift(ctx context.Context, id string) error
}

// loadEntities fetches and converts the full entity snapshot
func loadEntities(ctx context.Context, database EntityReader, logger *zap.Logger) (*prevalidate.Context, error) {
	logger.Debug("Fetching employees")
	employeeRecords, err := database.GetEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch employees: %w", err)
	}
	logger.Debug("Found employees", zap.Int("count", len(employeeRecords)))

	logger.Debug("Fetching stores")
	storeRecords, err := database.GetStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stores: %w", err)
	}
	logger.Debug("Found stores", zap.Int("count", len(storeRecords)))

	logger.Debug("Fetching shifts")
	shiftRecords, err := database.GetShifts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shifts: %w", err)
	}
	logger.Debug("Found shifts", zap.Int("count", len(shiftRecords)))

	vctx := &prevalidate.Context{
		Employees: make([]*model.Employee, len(employeeRecords)),
		Stores:    make([]*model.Store, len(storeRecords)),
		Shifts:    make([]*model.Shift, len(shiftRecords)),
	}
	for i := range employeeRecords {
		vctx.Employees[i] = convertToModelEmployee(&employeeRecords[i])
	}
	for i := range storeRecords {
		store, err := convertToModelStore(&storeRecords[i])
		if err != nil {
			return nil, err
		}
		vctx.Stores[i] = store
	}
	for i := range shiftRecords {
		vctx.Shifts[i] = convertToModelShift(&shiftRecords[i])
	}

	return vctx, nil
}

// convertToModelEmployee converts a db employee record to the core model
func convertToModelEmployee(rec *db.Employee) *model.Employee {
	return &model.Employee{
		ID:                 rec.ID,
		FirstName:          rec.FirstName,
		LastName:           rec.LastName,
		Role:               model.Role(rec.Role),
		StoreID:            rec.StoreID,
		ContractHours:      rec.ContractHours,
		MinHours:           rec.MinHours,
		Active:             rec.Active,
		AuthorizedStoreIDs: rec.AuthorizedStoreIDs,
	}
}

// convertToModelStore converts a db store record, decoding the opening-hours
// JSON document
func convertToModelStore(rec *db.Store) (*model.Store, error) {
	store := &model.Store{
		ID:     rec.ID,
		Name:   rec.Name,
		Active: rec.Active,
	}

	if rec.OpeningHours != "" && rec.OpeningHours != "{}" {
		var hours map[string]struct {
			Open  string `json:"open"`
			Close string `json:"close"`
		}
		if err := json.Unmarshal([]byte(rec.OpeningHours), &hours); err != nil {
			return nil, fmt.Errorf("failed to parse opening hours for store %s: %w", rec.ID, err)
		}
		store.Hours = make(map[string]model.OpeningHours, len(hours))
		for day, window := range hours {
			store.Hours[day] = model.OpeningHours{Open: window.Open, Close: window.Close}
		}
	}

	return store, nil
}

// convertToModelShift converts a db shift record to the core model
func convertToModelShift(rec *db.Shift) *model.Shift {
	return &model.Shift{
		ID:           rec.ID,
		EmployeeID:   rec.EmployeeID,
		StoreID:      rec.StoreID,
		Date:         rec.ShiftDate,
		StartTime:    rec.StartTime,
		EndTime:      rec.EndTime,
		BreakMinutes: rec.BreakMinutes,
		ActualHours:  rec.ActualHours,
		Locked:       rec.Locked,
		LockReason:   rec.LockReason,
	}
}

// convertToShiftRecord converts a model shift back to a db record
func convertToShiftRecord(s *model.Shift) db.Shift {
	return db.Shift{
		ID:           s.ID,
		EmployeeID:   s.EmployeeID,
		StoreID:      s.StoreID,
		ShiftDate:    s.Date,
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		BreakMinutes: s.BreakMinutes,
		ActualHours:  s.ActualHours,
		Locked:       s.Locked,
		LockReason:   s.LockReason,
	}
}

// compileRequiredStaff converts the config staffing overrides into a lookup
// function for the understaffing rule. RRule occurrences are generated over
// a window around now; dates outside it fall back to the default.
func compileRequiredStaff(cfg *config.Config, now time.Time, logger *zap.Logger) (func(storeID, date string) int, error) {
	type compiledOverride struct {
		storeID       string
		requiredStaff int
		dates         map[string]bool
	}

	searchStart := now.AddDate(0, 0, -7)
	searchEnd := now.AddDate(0, 0, 21)

	compiled := make([]compiledOverride, 0, len(cfg.StaffingOverrides))
	for i, override := range cfg.StaffingOverrides {
		rule, err := rrule.StrToRRule(override.RRule)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rrule for staffingOverrides[%d]: %w", i, err)
		}
		rule.DTStart(searchStart)

		dates := make(map[string]bool)
		for _, occurrence := range rule.Between(searchStart, searchEnd, true) {
			dates[occurrence.Format(model.DateFormat)] = true
		}
		compiled = append(compiled, compiledOverride{
			storeID:       override.StoreID,
			requiredStaff: override.RequiredStaff,
			dates:         dates,
		})

		logger.Debug("Compiled staffing override",
			zap.Int("index", i),
			zap.String("rrule", override.RRule),
			zap.String("store_id", override.StoreID),
			zap.Int("matching_dates", len(dates)))
	}

	return func(storeID, date string) int {
		// Later overrides win so specific rules can be listed after general ones
		required := cfg.DefaultRequiredStaff
		for _, c := range compiled {
			if c.storeID != "" && c.storeID != storeID {
				continue
			}
			if c.dates[date] {
				required = c.requiredStaff
			}
		}
		return required
	}, nil
}

// storeWriter adapts the record-oriented database to the patch-oriented
// writer interfaces of the executor, resolver and snapshot manager. It keeps
// the current records in memory so patches can be expanded to full rows.
type storeWriter struct {
	database EntityStore
	records  map[string]db.Shift
}

func newStoreWriter(database EntityStore, shifts []*model.Shift) *storeWriter {
	records := make(map[string]db.Shift, len(shifts))
	for _, s := range shifts {
		records[s.ID] = convertToShiftRecord(s)
	}
	return &storeWriter{database: database, records: records}
}

// UpdateShift expands the patch onto the known record and writes the result
func (w *storeWriter) UpdateShift(ctx context.Context, id string, patch model.ShiftPatch) error {
	rec, ok := w.records[id]
	if !ok {
		return fmt.Errorf("shift %s not found", id)
	}

	current := convertToModelShift(&rec)
	updated := convertToShiftRecord(patch.Apply(current))
	if err := w.database.UpdateShift(ctx, &updated); err != nil {
		return err
	}

	w.records[id] = updated
	return nil
}

// CreateShift inserts a new shift record with a fresh id
func (w *storeWriter) CreateShift(ctx context.Context, draft model.ShiftDraft) (string, error) {
	rec := db.Shift{
		ID:           uuid.New().String(),
		EmployeeID:   draft.EmployeeID,
		StoreID:      draft.StoreID,
		ShiftDate:    draft.Date,
		StartTime:    draft.StartTime,
		EndTime:      draft.EndTime,
		BreakMinutes: draft.BreakMinutes,
	}
	if err := w.database.InsertShifts([]db.Shift{rec}); err != nil {
		return "", err
	}

	w.records[rec.ID] = rec
	return rec.ID, nil
}

// DeleteShift removes the shift record
func (w *storeWriter) DeleteShift(ctx context.Context, id string) error {
	if _, ok := w.records[id]; !ok {
		return fmt.Errorf("shift %s not found", id)
	}
	if err := w.database.DeleteShift(ctx, id); err != nil {
		return err
	}

	delete(w.records, id)
	return nil
}
