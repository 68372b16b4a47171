package detector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/shiftbalance/pkg/core/model"
)

func fixedNow() time.Time {
	return time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
}

func testEmployee(id, storeID string, contractHours float64) *model.Employee {
	return &model.Employee{
		ID:            id,
		FirstName:     "Test",
		LastName:      id,
		Role:          model.RoleSenior,
		StoreID:       storeID,
		ContractHours: contractHours,
		MinHours:      16,
		Active:        true,
	}
}

func testStore(id string) *model.Store {
	return &model.Store{ID: id, Name: "Store " + id, Active: true}
}

func TestDetect_OverlappingShifts(t *testing.T) {
	in := &Input{
		Employees: []*model.Employee{testEmployee("e1", "s1", 40)},
		Stores:    []*model.Store{testStore("s1")},
		Shifts: []*model.Shift{
			{ID: "sh1", EmployeeID: "e1", StoreID: "s1", Date: "2024-01-15", StartTime: "09:00", EndTime: "17:00"},
			{ID: "sh2", EmployeeID: "e1", StoreID: "s1", Date: "2024-01-15", StartTime: "15:00", EndTime: "19:00"},
		},
		Now: fixedNow(),
	}

	conflicts := NewWithRules(NewOverlapRule()).Detect(in)

	require.Len(t, conflicts, 1)
	assert.Equal(t, model.ConflictOverlap, conflicts[0].Type)
	assert.Equal(t, model.SeverityCritical, conflicts[0].Severity)
	assert.Equal(t, []string{"sh1", "sh2"}, conflicts[0].ShiftIDs)
	require.Len(t, conflicts[0].Strategies, 2)
	assert.Equal(t, 90, conflicts[0].Strategies[0].Confidence)
	assert.Equal(t, 75, conflicts[0].Strategies[1].Confidence)
}

func TestDetect_NoOverlapForAdjacentShifts(t *testing.T) {
	in := &Input{
		Employees: []*model.Employee{testEmployee("e1", "s1", 40)},
		Stores:    []*model.Store{testStore("s1")},
		Shifts: []*model.Shift{
			{ID: "sh1", EmployeeID: "e1", StoreID: "s1", Date: "2024-01-15", StartTime: "09:00", EndTime: "13:00"},
			{ID: "sh2", EmployeeID: "e1", StoreID: "s1", Date: "2024-01-15", StartTime: "13:00", EndTime: "17:00"},
		},
		Now: fixedNow(),
	}

	conflicts := NewWithRules(NewOverlapRule()).Detect(in)
	assert.Empty(t, conflicts, "back-to-back shifts share a boundary but do not overlap")
}

func TestDetect_RestViolationSeverity(t *testing.T) {
	tests := []struct {
		name      string
		nextStart string
		severity  model.Severity
	}{
		{name: "9h gap is high", nextStart: "07:00", severity: model.SeverityHigh},
		{name: "6h gap is critical", nextStart: "04:00", severity: model.SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := &Input{
				Employees: []*model.Employee{testEmployee("e1", "s1", 40)},
				Stores:    []*model.Store{testStore("s1")},
				Shifts: []*model.Shift{
					{ID: "sh1", EmployeeID: "e1", StoreID: "s1", Date: "2024-01-15", StartTime: "14:00", EndTime: "22:00"},
					{ID: "sh2", EmployeeID: "e1", StoreID: "s1", Date: "2024-01-16", StartTime: tt.nextStart, EndTime: "15:00"},
				},
				Now: fixedNow(),
			}

			conflicts := NewWithRules(NewRestRule()).Detect(in)

			require.Len(t, conflicts, 1)
			assert.Equal(t, model.ConflictRestViolation, conflicts[0].Type)
			assert.Equal(t, tt.severity, conflicts[0].Severity)
		})
	}
}

func TestDetect_RestStrategyPushesStart(t *testing.T) {
	in := &Input{
		Employees: []*model.Employee{testEmployee("e1", "s1", 40)},
		Stores:    []*model.Store{testStore("s1")},
		Shifts: []*model.Shift{
			{ID: "sh1", EmployeeID: "e1", StoreID: "s1", Date: "2024-01-15", StartTime: "14:00", EndTime: "22:00"},
			{ID: "sh2", EmployeeID: "e1", StoreID: "s1", Date: "2024-01-16", StartTime: "07:00", EndTime: "15:00"},
		},
		Now: fixedNow(),
	}

	conflicts := NewWithRules(NewRestRule()).Detect(in)

	require.Len(t, conflicts, 1)
	require.Len(t, conflicts[0].Strategies, 1)
	steps := conflicts[0].Strategies[0].Steps
	require.Len(t, steps, 1)
	assert.Equal(t, model.StepModifyHours, steps[0].Kind)
	assert.Equal(t, "sh2", steps[0].ShiftID)
	// 22:00 end + 12h rest = 10:00 next day
	assert.Equal(t, "10:00", steps[0].NewStartTime)
}

func TestDetect_OvertimeBoundaries(t *testing.T) {
	// One 13h shift per day; contract 40h
	buildShifts := func(days int, hoursPerDay float64) []*model.Shift {
		shifts := make([]*model.Shift, 0, days)
		for i := 0; i < days; i++ {
			date := time.Date(2024, 1, 15+i, 0, 0, 0, 0, time.UTC).Format(model.DateFormat)
			shifts = append(shifts, &model.Shift{
				ID:          date,
				EmployeeID:  "e1",
				StoreID:     "s1",
				Date:        date,
				StartTime:   "09:00",
				EndTime:     "17:00",
				ActualHours: hoursPerDay,
			})
		}
		return shifts
	}

	tests := []struct {
		name      string
		total     float64
		conflicts int
		severity  model.Severity
	}{
		{name: "130% is high", total: 52, conflicts: 1, severity: model.SeverityHigh},
		{name: "exactly 125% is fine", total: 50, conflicts: 0},
		{name: "exactly 150% stays high", total: 60, conflicts: 1, severity: model.SeverityHigh},
		{name: "above 150% is critical", total: 64, conflicts: 1, severity: model.SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := &Input{
				Employees: []*model.Employee{testEmployee("e1", "s1", 40)},
				Stores:    []*model.Store{testStore("s1")},
				Shifts:    buildShifts(4, tt.total/4),
				Now:       fixedNow(),
			}

			conflicts := NewWithRules(NewOvertimeRule()).Detect(in)

			require.Len(t, conflicts, tt.conflicts)
			if tt.conflicts > 0 {
				assert.Equal(t, model.ConflictOvertime, conflicts[0].Type)
				assert.Equal(t, tt.severity, conflicts[0].Severity)
			}
		})
	}
}

func TestDetect_Understaffing(t *testing.T) {
	in := &Input{
		Employees: []*model.Employee{testEmployee("e1", "s1", 40)},
		Stores:    []*model.Store{testStore("s1")},
		Shifts: []*model.Shift{
			// Only one employee on the first lookahead day, nobody afterwards
			{ID: "sh1", EmployeeID: "e1", StoreID: "s1", Date: "2024-01-15", StartTime: "09:00", EndTime: "17:00"},
		},
		Now: fixedNow(),
	}

	conflicts := NewWithRules(NewUnderstaffingRule()).Detect(in)

	require.Len(t, conflicts, 7, "every day in the lookahead window is understaffed")
	assert.Equal(t, model.SeverityHigh, conflicts[0].Severity, "one of two required staff present")
	for _, c := range conflicts[1:] {
		assert.Equal(t, model.SeverityCritical, c.Severity, "zero staff is critical")
	}
	require.NotEmpty(t, conflicts[0].Strategies)
	assert.Equal(t, 70, conflicts[0].Strategies[0].Confidence)
	assert.Greater(t, conflicts[0].Strategies[0].EstimatedCost, 0.0)
}

func TestDetect_RequiredStaffOverride(t *testing.T) {
	in := &Input{
		Employees: []*model.Employee{testEmployee("e1", "s1", 40)},
		Stores:    []*model.Store{testStore("s1")},
		Shifts: []*model.Shift{
			{ID: "sh1", EmployeeID: "e1", StoreID: "s1", Date: "2024-01-15", StartTime: "09:00", EndTime: "17:00"},
		},
		Now: fixedNow(),
		RequiredStaff: func(storeID, date string) int {
			if date == "2024-01-15" {
				return 1
			}
			return 0
		},
	}

	conflicts := NewWithRules(NewUnderstaffingRule()).Detect(in)
	assert.Empty(t, conflicts, "override lowers the requirement below assigned headcount")
}

func TestDetect_Deterministic(t *testing.T) {
	in := &Input{
		Employees: []*model.Employee{
			testEmployee("e1", "s1", 30),
			testEmployee("e2", "s1", 40),
		},
		Stores: []*model.Store{testStore("s1"), testStore("s2")},
		Shifts: []*model.Shift{
			{ID: "sh1", EmployeeID: "e1", StoreID: "s1", Date: "2024-01-15", StartTime: "09:00", EndTime: "17:00"},
			{ID: "sh2", EmployeeID: "e1", StoreID: "s1", Date: "2024-01-15", StartTime: "15:00", EndTime: "19:00"},
			{ID: "sh3", EmployeeID: "e2", StoreID: "s1", Date: "2024-01-15", StartTime: "14:00", EndTime: "22:00"},
			{ID: "sh4", EmployeeID: "e2", StoreID: "s1", Date: "2024-01-16", StartTime: "05:00", EndTime: "13:00"},
		},
		Now: fixedNow(),
	}

	d := New()
	first := d.Detect(in)
	second := d.Detect(in)

	assert.Equal(t, first, second, "detection must be pure and deterministic")
	assert.NotEmpty(t, first)
}
