// Package seed loads a small deterministic demo dataset: three stores, ten
// employees and two weeks of shifts containing deliberate overlaps, short
// rest gaps, overtime and understaffed days so every detection rule has
// something to find.
package seed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/retailops/shiftbalance/pkg/core/model"
	"github.com/retailops/shiftbalance/pkg/db"
)

// Result reports what was written
type Result struct {
	Stores    int
	Employees int
	Shifts    int
	BaseDate  string
}

// Seed writes the demo dataset through the database. baseDate anchors the
// two-week schedule and must be in date format; an empty baseDate uses the
// upcoming Monday so understaffed days land inside the detection lookahead.
func Seed(ctx context.Context, database db.Database, logger *zap.Logger, baseDate string) (*Result, error) {
	base, err := resolveBaseDate(baseDate)
	if err != nil {
		return nil, err
	}
	logger.Info("Seeding demo data", zap.String("base_date", base.Format(model.DateFormat)))

	stores := demoStores()
	if err := database.InsertStores(stores); err != nil {
		return nil, fmt.Errorf("failed to seed stores: %w", err)
	}

	employees := demoEmployees()
	if err := database.InsertEmployees(employees); err != nil {
		return nil, fmt.Errorf("failed to seed employees: %w", err)
	}

	shifts := demoShifts(base)
	if err := database.InsertShifts(shifts); err != nil {
		return nil, fmt.Errorf("failed to seed shifts: %w", err)
	}

	logger.Info("Demo data seeded",
		zap.Int("stores", len(stores)),
		zap.Int("employees", len(employees)),
		zap.Int("shifts", len(shifts)))

	return &Result{
		Stores:    len(stores),
		Employees: len(employees),
		Shifts:    len(shifts),
		BaseDate:  base.Format(model.DateFormat),
	}, nil
}

func resolveBaseDate(baseDate string) (time.Time, error) {
	if baseDate != "" {
		base, err := time.Parse(model.DateFormat, baseDate)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid base date %q: %w", baseDate, err)
		}
		return base, nil
	}

	// Upcoming Monday (today if today is a Monday)
	base := time.Now().Truncate(24 * time.Hour)
	for base.Weekday() != time.Monday {
		base = base.AddDate(0, 0, 1)
	}
	return base, nil
}

func demoStores() []db.Store {
	weekHours := `{"monday":{"open":"08:00","close":"21:00"},"tuesday":{"open":"08:00","close":"21:00"},"wednesday":{"open":"08:00","close":"21:00"},"thursday":{"open":"08:00","close":"21:00"},"friday":{"open":"08:00","close":"22:00"},"saturday":{"open":"09:00","close":"22:00"},"sunday":{"open":"10:00","close":"18:00"}}`
	return []db.Store{
		{ID: "store-central", Name: "Central", Active: true, OpeningHours: weekHours},
		{ID: "store-north", Name: "North Gate", Active: true, OpeningHours: weekHours},
		{ID: "store-riverside", Name: "Riverside", Active: true, OpeningHours: weekHours},
	}
}

func demoEmployees() []db.Employee {
	return []db.Employee{
		{ID: "emp-01", FirstName: "Maya", LastName: "Okafor", Role: "manager", StoreID: "store-central", ContractHours: 40, MinHours: 32, Active: true},
		{ID: "emp-02", FirstName: "Daniel", LastName: "Reis", Role: "senior", StoreID: "store-central", ContractHours: 36, MinHours: 24, Active: true, AuthorizedStoreIDs: []string{"store-north"}},
		{ID: "emp-03", FirstName: "Priya", LastName: "Shah", Role: "senior", StoreID: "store-central", ContractHours: 32, MinHours: 20, Active: true},
		{ID: "emp-04", FirstName: "Tomas", LastName: "Lindqvist", Role: "senior", StoreID: "store-north", ContractHours: 32, MinHours: 20, Active: true, AuthorizedStoreIDs: []string{"store-central", "store-riverside"}},
		{ID: "emp-05", FirstName: "Grace", LastName: "Mbeki", Role: "manager", StoreID: "store-north", ContractHours: 40, MinHours: 32, Active: true},
		{ID: "emp-06", FirstName: "Leo", LastName: "Fournier", Role: "junior", StoreID: "store-north", ContractHours: 20, MinHours: 12, Active: true},
		{ID: "emp-07", FirstName: "Hana", LastName: "Saito", Role: "junior", StoreID: "store-central", ContractHours: 20, MinHours: 12, Active: true},
		{ID: "emp-08", FirstName: "Marco", LastName: "Bellini", Role: "senior", StoreID: "store-riverside", ContractHours: 36, MinHours: 24, Active: true},
		{ID: "emp-09", FirstName: "Ada", LastName: "Nowak", Role: "junior", StoreID: "store-riverside", ContractHours: 16, MinHours: 8, Active: true},
		{ID: "emp-10", FirstName: "Sam", LastName: "Whitfield", Role: "senior", StoreID: "store-riverside", ContractHours: 32, MinHours: 20, Active: false},
	}
}

// demoShifts lays two weeks of shifts over the base Monday. Week one is
// deliberately messy; week two is sparse so the understaffing lookahead
// fires for Riverside.
func demoShifts(base time.Time) []db.Shift {
	day := func(offset int) string { return base.AddDate(0, 0, offset).Format(model.DateFormat) }
	n := 0
	shift := func(employeeID, storeID string, offset int, start, end string, breakMin int) db.Shift {
		n++
		return db.Shift{
			ID:           fmt.Sprintf("shift-%03d", n),
			EmployeeID:   employeeID,
			StoreID:      storeID,
			ShiftDate:    day(offset),
			StartTime:    start,
			EndTime:      end,
			BreakMinutes: breakMin,
		}
	}

	shifts := []db.Shift{
		// Monday: normal coverage at Central and North
		shift("emp-01", "store-central", 0, "08:00", "16:00", 60),
		shift("emp-03", "store-central", 0, "12:00", "20:00", 30),
		shift("emp-05", "store-north", 0, "08:00", "16:00", 60),
		shift("emp-06", "store-north", 0, "14:00", "20:00", 0),

		// Tuesday: emp-02 is double-booked (overlap conflict)
		shift("emp-02", "store-central", 1, "09:00", "17:00", 60),
		shift("emp-02", "store-central", 1, "15:00", "21:00", 0),
		shift("emp-05", "store-north", 1, "09:00", "17:00", 60),
		shift("emp-08", "store-riverside", 1, "09:00", "17:00", 60),

		// Tuesday close followed by Wednesday 06:00 open: 9h rest for emp-03
		shift("emp-03", "store-central", 1, "13:00", "21:00", 30),
		shift("emp-03", "store-central", 2, "06:00", "14:00", 30),

		// Wednesday through Sunday: emp-04 stacks long shifts (overtime)
		shift("emp-04", "store-north", 2, "08:00", "19:00", 60),
		shift("emp-04", "store-north", 3, "08:00", "19:00", 60),
		shift("emp-04", "store-north", 4, "08:00", "19:00", 60),
		shift("emp-04", "store-north", 5, "08:00", "19:00", 60),

		// Midweek baseline coverage
		shift("emp-01", "store-central", 2, "10:00", "18:00", 60),
		shift("emp-07", "store-central", 2, "16:00", "21:00", 0),
		shift("emp-08", "store-riverside", 2, "09:00", "17:00", 60),
		shift("emp-09", "store-riverside", 2, "12:00", "17:00", 0),
		shift("emp-01", "store-central", 3, "08:00", "16:00", 60),
		shift("emp-03", "store-central", 3, "14:00", "21:00", 30),
		shift("emp-05", "store-north", 3, "09:00", "17:00", 60),
		shift("emp-08", "store-riverside", 3, "09:00", "17:00", 60),

		// Friday and the weekend: junior emp-07 takes an evening slot
		shift("emp-01", "store-central", 4, "08:00", "16:00", 60),
		shift("emp-07", "store-central", 4, "17:00", "22:00", 0),
		shift("emp-05", "store-north", 4, "09:00", "17:00", 60),
		shift("emp-08", "store-riverside", 4, "10:00", "18:00", 60),
		shift("emp-02", "store-central", 5, "09:00", "17:00", 60),
		shift("emp-06", "store-north", 5, "10:00", "16:00", 0),
		shift("emp-09", "store-riverside", 5, "09:00", "14:00", 0),
		shift("emp-01", "store-central", 6, "10:00", "18:00", 60),
		shift("emp-05", "store-north", 6, "10:00", "18:00", 60),

		// Week two is thin: Riverside has at most one person per day and
		// nothing from Thursday on (understaffing conflicts)
		shift("emp-01", "store-central", 7, "08:00", "16:00", 60),
		shift("emp-03", "store-central", 7, "12:00", "20:00", 30),
		shift("emp-05", "store-north", 7, "08:00", "16:00", 60),
		shift("emp-06", "store-north", 7, "12:00", "18:00", 0),
		shift("emp-08", "store-riverside", 7, "09:00", "17:00", 60),
		shift("emp-01", "store-central", 8, "08:00", "16:00", 60),
		shift("emp-02", "store-central", 8, "12:00", "20:00", 30),
		shift("emp-05", "store-north", 8, "09:00", "17:00", 60),
		shift("emp-09", "store-riverside", 8, "12:00", "17:00", 0),
		shift("emp-01", "store-central", 9, "08:00", "16:00", 60),
		shift("emp-03", "store-central", 9, "12:00", "20:00", 30),
		shift("emp-05", "store-north", 9, "09:00", "17:00", 60),
		shift("emp-06", "store-north", 9, "14:00", "20:00", 0),
		shift("emp-08", "store-riverside", 9, "09:00", "17:00", 60),
		shift("emp-01", "store-central", 10, "08:00", "16:00", 60),
		shift("emp-02", "store-central", 10, "12:00", "20:00", 30),
		shift("emp-05", "store-north", 10, "09:00", "17:00", 60),
		shift("emp-07", "store-central", 11, "10:00", "16:00", 0),
		shift("emp-05", "store-north", 11, "09:00", "17:00", 60),
		shift("emp-01", "store-central", 12, "10:00", "18:00", 60),
		shift("emp-06", "store-north", 12, "10:00", "16:00", 0),
	}

	// A locked shift the engine must never touch
	locked := shift("emp-01", "store-central", 13, "10:00", "18:00", 60)
	locked.Locked = true
	locked.LockReason = "manager on-site for stocktake"
	shifts = append(shifts, locked)

	return shifts
}
