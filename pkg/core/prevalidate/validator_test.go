package prevalidate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/shiftbalance/pkg/core/model"
)

func baseContext() *Context {
	return &Context{
		Employees: []*model.Employee{
			{ID: "e1", Role: model.RoleSenior, StoreID: "s1", ContractHours: 40, MinHours: 16, Active: true},
			{ID: "e2", Role: model.RoleSenior, StoreID: "s1", ContractHours: 40, MinHours: 16, Active: true},
			{ID: "jr", Role: model.RoleJunior, StoreID: "s1", ContractHours: 20, MinHours: 8, Active: true},
		},
		Stores: []*model.Store{
			{ID: "s1", Name: "Central", Active: true},
			{ID: "s2", Name: "North", Active: true},
		},
		Shifts: []*model.Shift{
			{ID: "existing", EmployeeID: "e1", StoreID: "s1", Date: "2024-01-15", StartTime: "09:00", EndTime: "17:00"},
		},
	}
}

func testSuggestion(id string) *model.Suggestion {
	return &model.Suggestion{
		ID:               id,
		Type:             model.SuggestRedistribute,
		SourceEmployeeID: "e1",
		TargetEmployeeID: "e2",
		Approval:         model.ApprovalPending,
	}
}

func TestValidate_CleanChange(t *testing.T) {
	v := New(0)
	affected := []*model.Shift{
		{ID: "new", EmployeeID: "e2", StoreID: "s1", Date: "2024-01-16", StartTime: "09:00", EndTime: "17:00"},
	}

	result := v.Validate(testSuggestion("sug-1"), affected, baseContext())

	assert.True(t, result.IsValid)
	assert.True(t, result.CanProceed)
	assert.Equal(t, 100, result.EstimatedSuccess)
	assert.Empty(t, result.Errors())
}

func TestValidate_OverlapIsError(t *testing.T) {
	v := New(0)
	affected := []*model.Shift{
		{ID: "new", EmployeeID: "e1", StoreID: "s1", Date: "2024-01-15", StartTime: "15:00", EndTime: "19:00"},
	}

	result := v.Validate(testSuggestion("sug-2"), affected, baseContext())

	assert.False(t, result.IsValid)
	assert.False(t, result.CanProceed)
	require.NotEmpty(t, result.Errors())
	assert.Equal(t, "overlap", result.Errors()[0].Name)
	assert.Equal(t, 70, result.EstimatedSuccess, "one error costs 30 points")
}

func TestValidate_RestViolationIsError(t *testing.T) {
	v := New(0)
	affected := []*model.Shift{
		// existing shift ends 17:00; starting 03:00 next day leaves 10h rest
		{ID: "new", EmployeeID: "e1", StoreID: "s1", Date: "2024-01-16", StartTime: "03:00", EndTime: "11:00"},
	}

	result := v.Validate(testSuggestion("sug-3"), affected, baseContext())

	require.NotEmpty(t, result.Errors())
	assert.Equal(t, "rest_period", result.Errors()[0].Name)
}

func TestValidate_CeilingThresholds(t *testing.T) {
	tests := []struct {
		name     string
		hours    float64
		severity model.CheckSeverity
	}{
		{name: "over 125% is error", hours: 52, severity: model.CheckError},
		{name: "over 110% is warning", hours: 46, severity: model.CheckWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := baseContext()
			ctx.Shifts = nil
			v := New(0)

			var affected []*model.Shift
			remaining := tt.hours
			day := 10
			for remaining > 0 {
				h := remaining
				if h > 10 {
					h = 10
				}
				affected = append(affected, &model.Shift{
					ID:         fmt.Sprintf("w%d", day),
					EmployeeID: "e1", StoreID: "s1",
					Date:      fmt.Sprintf("2024-01-%02d", day),
					StartTime: "08:00", EndTime: "18:00", ActualHours: h,
				})
				remaining -= h
				day += 2 // Leave rest gaps so only the ceiling check fires
			}

			result := v.Validate(testSuggestion("sug-"+tt.name), affected, ctx)

			found := false
			for _, c := range result.Checks {
				if c.Name == "contract_ceiling" {
					found = true
					assert.Equal(t, tt.severity, c.Severity)
				}
			}
			assert.True(t, found, "expected a contract_ceiling check")
		})
	}
}

func TestValidate_JuniorEveningShiftWarns(t *testing.T) {
	v := New(0)
	affected := []*model.Shift{
		{ID: "late", EmployeeID: "jr", StoreID: "s1", Date: "2024-01-17", StartTime: "18:00", EndTime: "22:00"},
	}

	result := v.Validate(testSuggestion("sug-junior"), affected, baseContext())

	assert.True(t, result.IsValid, "junior warnings do not block")
	warnings := result.Warnings()
	found := false
	for _, w := range warnings {
		if w.Name == "junior_supervision" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidate_UnauthorizedStoreIsError(t *testing.T) {
	v := New(0)
	affected := []*model.Shift{
		{ID: "away", EmployeeID: "e1", StoreID: "s2", Date: "2024-01-18", StartTime: "09:00", EndTime: "17:00"},
	}

	result := v.Validate(testSuggestion("sug-store"), affected, baseContext())

	require.NotEmpty(t, result.Errors())
	assert.Equal(t, "store_authorization", result.Errors()[0].Name)
}

func TestValidate_UnknownReferencesAreErrors(t *testing.T) {
	v := New(0)
	affected := []*model.Shift{
		{ID: "ghost", EmployeeID: "nobody", StoreID: "nowhere", Date: "2024-01-18", StartTime: "09:00", EndTime: "17:00"},
	}

	result := v.Validate(testSuggestion("sug-ghost"), affected, baseContext())

	names := make(map[string]int)
	for _, c := range result.Errors() {
		names[c.Name]++
	}
	assert.Equal(t, 2, names["referential_integrity"], "both employee and store are unknown")
}

func TestValidate_CachedResultIsIdentical(t *testing.T) {
	v := New(0)
	ctx := baseContext()
	affected := []*model.Shift{
		{ID: "new", EmployeeID: "e1", StoreID: "s1", Date: "2024-01-15", StartTime: "15:00", EndTime: "19:00"},
	}
	sug := testSuggestion("sug-cache")

	first := v.Validate(sug, affected, ctx)
	second := v.Validate(sug, affected, ctx)

	assert.Same(t, first, second, "second call must come from the cache")
	assert.Equal(t, 1, v.CachedResults())

	v.Invalidate()
	assert.Equal(t, 0, v.CachedResults())
}

func TestValidate_CacheEvictsOldestBeyondCapacity(t *testing.T) {
	v := New(3)
	ctx := baseContext()
	affected := []*model.Shift{
		{ID: "new", EmployeeID: "e2", StoreID: "s1", Date: "2024-01-16", StartTime: "09:00", EndTime: "17:00"},
	}

	for i := 0; i < 5; i++ {
		v.Validate(testSuggestion(fmt.Sprintf("sug-%d", i)), affected, ctx)
	}

	assert.Equal(t, 3, v.CachedResults())
}

func TestValidate_OutsideOpeningHoursWarns(t *testing.T) {
	ctx := baseContext()
	ctx.Stores[0].Hours = map[string]model.OpeningHours{
		"tuesday": {Open: "08:00", Close: "20:00"},
	}
	v := New(0)

	// 2024-01-16 is a Tuesday; the store opens at 08:00
	early := []*model.Shift{
		{ID: "early", EmployeeID: "e2", StoreID: "s1", Date: "2024-01-16", StartTime: "07:00", EndTime: "12:00"},
	}
	result := v.Validate(testSuggestion("sug-early"), early, ctx)
	assert.True(t, result.IsValid, "opening hours only warn")
	require.NotEmpty(t, result.Warnings())
	assert.Equal(t, "opening_hours", result.Warnings()[0].Name)

	// 2024-01-17 is a Wednesday with no configured window
	closed := []*model.Shift{
		{ID: "closed", EmployeeID: "e2", StoreID: "s1", Date: "2024-01-17", StartTime: "09:00", EndTime: "12:00"},
	}
	result = v.Validate(testSuggestion("sug-closed"), closed, ctx)
	require.NotEmpty(t, result.Warnings())
	assert.Contains(t, result.Warnings()[0].Message, "closed on Wednesdays")
}

func TestValidate_ConsecutiveDaysWarning(t *testing.T) {
	ctx := baseContext()
	ctx.Shifts = nil
	for i := 0; i < 7; i++ {
		ctx.Shifts = append(ctx.Shifts, &model.Shift{
			ID:         fmt.Sprintf("d%d", i),
			EmployeeID: "e1", StoreID: "s1",
			Date:      fmt.Sprintf("2024-01-%02d", 10+i),
			StartTime: "09:00", EndTime: "13:00",
		})
	}
	v := New(0)
	// Touching any one of the employee's shifts triggers the streak check
	affected := []*model.Shift{ctx.Shifts[0].Clone()}

	result := v.Validate(testSuggestion("sug-streak"), affected, ctx)

	found := false
	for _, w := range result.Warnings() {
		if w.Name == "consecutive_days" {
			found = true
		}
	}
	assert.True(t, found, "7 consecutive days must warn")
}
