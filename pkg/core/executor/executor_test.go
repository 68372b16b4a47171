package executor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/shiftbalance/pkg/core/model"
	"github.com/retailops/shiftbalance/pkg/core/prevalidate"
)

// memWriter mutates the context's shift slice in place and records calls
type memWriter struct {
	vctx    *prevalidate.Context
	nextID  int
	updates int
	deletes int
	failAll bool
}

func (w *memWriter) UpdateShift(_ context.Context, id string, patch model.ShiftPatch) error {
	if w.failAll {
		return errors.New("store unavailable")
	}
	for i, s := range w.vctx.Shifts {
		if s.ID == id {
			w.vctx.Shifts[i] = patch.Apply(s)
			w.updates++
			return nil
		}
	}
	return fmt.Errorf("shift %s not found", id)
}

func (w *memWriter) CreateShift(_ context.Context, draft model.ShiftDraft) (string, error) {
	if w.failAll {
		return "", errors.New("store unavailable")
	}
	w.nextID++
	id := fmt.Sprintf("created-%d", w.nextID)
	w.vctx.Shifts = append(w.vctx.Shifts, &model.Shift{
		ID:           id,
		EmployeeID:   draft.EmployeeID,
		StoreID:      draft.StoreID,
		Date:         draft.Date,
		StartTime:    draft.StartTime,
		EndTime:      draft.EndTime,
		BreakMinutes: draft.BreakMinutes,
	})
	return id, nil
}

func (w *memWriter) DeleteShift(_ context.Context, id string) error {
	if w.failAll {
		return errors.New("store unavailable")
	}
	for i, s := range w.vctx.Shifts {
		if s.ID == id {
			w.vctx.Shifts = append(w.vctx.Shifts[:i], w.vctx.Shifts[i+1:]...)
			w.deletes++
			return nil
		}
	}
	return fmt.Errorf("shift %s not found", id)
}

func testContext() *prevalidate.Context {
	return &prevalidate.Context{
		Employees: []*model.Employee{
			{ID: "src", Role: model.RoleSenior, StoreID: "s1", ContractHours: 40, Active: true},
			{ID: "dst", Role: model.RoleSenior, StoreID: "s1", ContractHours: 40, Active: true},
		},
		Stores: []*model.Store{{ID: "s1", Name: "Central", Active: true}},
		Shifts: []*model.Shift{
			{ID: "a", EmployeeID: "src", StoreID: "s1", Date: "2024-01-01", StartTime: "09:00", EndTime: "13:00", ActualHours: 4},
			{ID: "b", EmployeeID: "src", StoreID: "s1", Date: "2024-01-02", StartTime: "09:00", EndTime: "13:00", ActualHours: 4},
			{ID: "c", EmployeeID: "src", StoreID: "s1", Date: "2024-01-03", StartTime: "09:00", EndTime: "17:00", ActualHours: 8},
			{ID: "d", EmployeeID: "dst", StoreID: "s1", Date: "2024-01-04", StartTime: "09:00", EndTime: "14:00", ActualHours: 5},
		},
	}
}

func newTestExecutor(vctx *prevalidate.Context) (*Executor, *memWriter) {
	writer := &memWriter{vctx: vctx}
	e := New(writer, prevalidate.New(0), nil)
	e.now = func() time.Time { return time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC) }
	return e, writer
}

func redistributeSuggestion(hours float64) *model.Suggestion {
	return &model.Suggestion{
		ID:               "sug-redistribute",
		Type:             model.SuggestRedistribute,
		SourceEmployeeID: "src",
		TargetEmployeeID: "dst",
		StoreID:          "s1",
		Proposed:         model.ProposedChange{Hours: hours},
		Approval:         model.ApprovalApproved,
	}
}

func TestApply_RedistributeMovesSmallestShiftsFirst(t *testing.T) {
	vctx := testContext()
	e, writer := newTestExecutor(vctx)

	result := e.Apply(context.Background(), redistributeSuggestion(8), vctx)

	require.True(t, result.Success, "errors: %v", result.Errors)
	// Ascending greedy selection: a (4h) + b (4h) reaches the 8h target
	require.Len(t, result.ModifiedShifts, 2)
	assert.Equal(t, "dst", result.ModifiedShifts[0].EmployeeID)
	assert.Equal(t, "dst", result.ModifiedShifts[1].EmployeeID)
	assert.Equal(t, 2, writer.updates)
	assert.InDelta(t, 8.0, result.Summary.HoursRedistributed, 0.001)
	assert.Equal(t, 2, result.Summary.EmployeesAffected)
}

func TestApply_RedistributeNoUnlockedShifts(t *testing.T) {
	vctx := testContext()
	for _, s := range vctx.Shifts {
		if s.EmployeeID == "src" {
			s.Locked = true
		}
	}
	e, writer := newTestExecutor(vctx)

	result := e.Apply(context.Background(), redistributeSuggestion(8), vctx)

	assert.False(t, result.Success)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "no unlocked shifts")
	assert.Empty(t, result.ModifiedShifts)
	assert.Zero(t, writer.updates)
}

func TestApply_RedistributeTargetOutOfTolerance(t *testing.T) {
	vctx := testContext()
	e, _ := newTestExecutor(vctx)

	// src has 4+4+8 = 16h of shifts but no combination reaches 30h
	result := e.Apply(context.Background(), redistributeSuggestion(30), vctx)

	assert.False(t, result.Success)
	assert.Empty(t, result.ModifiedShifts)
}

func TestApply_RedistributeWriterFailure(t *testing.T) {
	vctx := testContext()
	e, writer := newTestExecutor(vctx)
	writer.failAll = true

	result := e.Apply(context.Background(), redistributeSuggestion(8), vctx)

	assert.False(t, result.Success)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "store unavailable")
}

func TestApply_Swap(t *testing.T) {
	vctx := testContext()
	e, writer := newTestExecutor(vctx)

	sug := &model.Suggestion{
		ID:               "sug-swap",
		Type:             model.SuggestSwapShifts,
		SourceEmployeeID: "src",
		TargetEmployeeID: "dst",
		ShiftID:          "a", // 4h; dst's "d" is 5h, within the 2h tolerance
		Approval:         model.ApprovalApproved,
	}
	result := e.Apply(context.Background(), sug, vctx)

	require.True(t, result.Success, "errors: %v", result.Errors)
	require.Len(t, result.ModifiedShifts, 2)
	assert.Equal(t, 2, writer.updates)

	byID := make(map[string]*model.Shift)
	for _, s := range vctx.Shifts {
		byID[s.ID] = s
	}
	assert.Equal(t, "dst", byID["a"].EmployeeID)
	assert.Equal(t, "src", byID["d"].EmployeeID)
}

func TestApply_SwapNoPartnerWithinTolerance(t *testing.T) {
	vctx := testContext()
	// Make dst's only shift 12h, far from the named 4h shift
	vctx.Shifts[3].ActualHours = 12
	e, _ := newTestExecutor(vctx)

	sug := &model.Suggestion{
		ID:               "sug-swap-miss",
		Type:             model.SuggestSwapShifts,
		SourceEmployeeID: "src",
		TargetEmployeeID: "dst",
		ShiftID:          "a",
	}
	result := e.Apply(context.Background(), sug, vctx)

	assert.False(t, result.Success)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "no swappable shift")
}

func TestApply_AddShift(t *testing.T) {
	vctx := testContext()
	e, _ := newTestExecutor(vctx)

	sug := &model.Suggestion{
		ID:               "sug-add",
		Type:             model.SuggestAddShift,
		SourceEmployeeID: "dst",
		StoreID:          "s1",
	}
	result := e.Apply(context.Background(), sug, vctx)

	require.True(t, result.Success, "errors: %v", result.Errors)
	require.Len(t, result.ModifiedShifts, 1)
	created := result.ModifiedShifts[0]
	assert.Equal(t, "created-1", created.ID)
	assert.Equal(t, "2024-01-11", created.Date, "dated one day ahead of the executor clock")
	assert.Equal(t, "09:00", created.StartTime)
	assert.Equal(t, "17:00", created.EndTime)
	assert.Equal(t, 60, created.BreakMinutes)
	assert.InDelta(t, 7.0, created.Hours(), 0.001)
}

func TestApply_AddShiftWithoutWriter(t *testing.T) {
	vctx := testContext()
	e := New(nil, prevalidate.New(0), nil)

	sug := &model.Suggestion{
		ID:               "sug-add-nil",
		Type:             model.SuggestAddShift,
		SourceEmployeeID: "dst",
	}
	result := e.Apply(context.Background(), sug, vctx)

	assert.False(t, result.Success)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "no shift creation callback")
}

func TestApply_RemoveShiftPicksSmallest(t *testing.T) {
	vctx := testContext()
	e, writer := newTestExecutor(vctx)

	sug := &model.Suggestion{
		ID:               "sug-remove",
		Type:             model.SuggestRemoveShift,
		SourceEmployeeID: "src",
	}
	result := e.Apply(context.Background(), sug, vctx)

	require.True(t, result.Success, "errors: %v", result.Errors)
	require.Len(t, result.ModifiedShifts, 1)
	assert.Equal(t, "a", result.ModifiedShifts[0].ID, "4h shift with lowest id goes first")
	assert.Equal(t, 1, writer.deletes)
}

func TestApply_RemoveShiftWarnsBelowGuaranteedFloor(t *testing.T) {
	vctx := testContext()
	vctx.Employees[0].MinHours = 32 // src keeps only 12h after the removal
	e, writer := newTestExecutor(vctx)

	sug := &model.Suggestion{
		ID:               "sug-remove-floor",
		Type:             model.SuggestRemoveShift,
		SourceEmployeeID: "src",
	}
	result := e.Apply(context.Background(), sug, vctx)

	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Equal(t, 1, writer.deletes, "the floor warning does not block the removal")
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "below half the guaranteed 32.0h minimum")
	assert.Contains(t, result.Warnings[0], "12.0h")
}

func TestApply_AdjustHoursTrimsLongestShift(t *testing.T) {
	vctx := testContext()
	e, _ := newTestExecutor(vctx)

	sug := &model.Suggestion{
		ID:               "sug-adjust",
		Type:             model.SuggestAdjustHours,
		SourceEmployeeID: "src",
		Proposed:         model.ProposedChange{Hours: 3}, // Trim 3h
	}
	result := e.Apply(context.Background(), sug, vctx)

	require.True(t, result.Success, "errors: %v", result.Errors)
	require.Len(t, result.ModifiedShifts, 1)
	adjusted := result.ModifiedShifts[0]
	assert.Equal(t, "c", adjusted.ID, "longest shift is adjusted")
	assert.InDelta(t, 5.0, adjusted.ActualHours, 0.001)
	// 09:00 start + 5h work + no break = 14:00
	assert.Equal(t, "14:00", adjusted.EndTime)
}

func TestApply_AdjustHoursRejectsTinyChange(t *testing.T) {
	vctx := testContext()
	e, _ := newTestExecutor(vctx)

	sug := &model.Suggestion{
		ID:               "sug-adjust-tiny",
		Type:             model.SuggestAdjustHours,
		SourceEmployeeID: "src",
		Proposed:         model.ProposedChange{Hours: 0.25},
	}
	result := e.Apply(context.Background(), sug, vctx)

	assert.False(t, result.Success)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "below the 0.5h minimum")
}

func TestApply_UnsupportedType(t *testing.T) {
	vctx := testContext()
	e, _ := newTestExecutor(vctx)

	sug := &model.Suggestion{ID: "sug-odd", Type: model.SuggestionType("defragment")}
	result := e.Apply(context.Background(), sug, vctx)

	assert.False(t, result.Success)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "defragment")
}

func TestApplyBatch_CollectsPerItemOutcomes(t *testing.T) {
	vctx := testContext()
	e, _ := newTestExecutor(vctx)

	suggestions := []*model.Suggestion{
		redistributeSuggestion(8),
		{ID: "bad", Type: model.SuggestionType("defragment")},
		{ID: "sug-remove", Type: model.SuggestRemoveShift, SourceEmployeeID: "dst"},
	}

	batch := e.ApplyBatch(context.Background(), suggestions, vctx)

	require.Len(t, batch.Results, 3)
	assert.Equal(t, 2, batch.Succeeded)
	assert.Equal(t, 1, batch.Failed)

	sum := 0
	for _, r := range batch.Results {
		if r.Success {
			sum += r.Summary.ShiftsModified
		}
	}
	assert.Equal(t, sum, batch.TotalShiftsModified)
}
