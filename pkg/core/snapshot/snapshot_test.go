package snapshot

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/shiftbalance/pkg/core/model"
)

type fakeUpdater struct {
	shifts  map[string]*model.Shift
	failIDs map[string]bool
	calls   int
}

func newFakeUpdater(shifts []*model.Shift) *fakeUpdater {
	byID := make(map[string]*model.Shift, len(shifts))
	for _, s := range shifts {
		byID[s.ID] = s
	}
	return &fakeUpdater{shifts: byID, failIDs: make(map[string]bool)}
}

func (u *fakeUpdater) UpdateShift(_ context.Context, id string, patch model.ShiftPatch) error {
	u.calls++
	if u.failIDs[id] {
		return errors.New("store unavailable")
	}
	s, ok := u.shifts[id]
	if !ok {
		return fmt.Errorf("shift %s not found", id)
	}
	u.shifts[id] = patch.Apply(s)
	return nil
}

func sampleShifts() []*model.Shift {
	return []*model.Shift{
		{ID: "a", EmployeeID: "e1", StoreID: "s1", Date: "2024-01-15", StartTime: "09:00", EndTime: "17:00", ActualHours: 8},
		{ID: "b", EmployeeID: "e2", StoreID: "s1", Date: "2024-01-15", StartTime: "12:00", EndTime: "18:00", ActualHours: 6},
	}
}

func TestCreate_DeepCopiesShifts(t *testing.T) {
	m := NewManager(0)
	shifts := sampleShifts()

	snap := m.Create("before apply", "apply_suggestion", "sug-1", shifts)

	require.NotEmpty(t, snap.ID)
	assert.Equal(t, "sug-1", snap.Meta.SuggestionID)
	assert.Equal(t, "apply_suggestion", snap.Meta.Operation)

	// Mutating the live collection must not touch the snapshot
	shifts[0].EmployeeID = "someone-else"
	assert.Equal(t, "e1", snap.Shifts[0].EmployeeID)
}

func TestHistory_NewestFirstAndBounded(t *testing.T) {
	m := NewManager(3)
	shifts := sampleShifts()

	var ids []string
	for i := 0; i < 5; i++ {
		snap := m.Create(fmt.Sprintf("snap %d", i), "test", "", shifts)
		ids = append(ids, snap.ID)
	}

	history := m.History()
	require.Len(t, history, 3, "capacity bounds the history")
	assert.Equal(t, ids[4], history[0].ID, "newest first")
	assert.Equal(t, ids[2], history[2].ID, "oldest beyond capacity evicted")
	assert.Equal(t, ids[4], m.Latest().ID)
}

func TestLatest_EmptyHistory(t *testing.T) {
	m := NewManager(0)
	assert.Nil(t, m.Latest())
}

func TestRollback_RestoresMutatedFields(t *testing.T) {
	m := NewManager(0)
	shifts := sampleShifts()
	snap := m.Create("before", "apply_suggestion", "sug-1", shifts)

	// Simulate an applied suggestion
	shifts[0].EmployeeID = "e2"
	shifts[0].EndTime = "15:00"
	shifts[0].ActualHours = 6

	updater := newFakeUpdater(shifts)
	op := m.Rollback(context.Background(), snap.ID, shifts, updater)

	require.True(t, op.Success, "errors: %v", op.Errors)
	require.Len(t, op.RestoredShifts, 1, "only the changed shift is touched")
	assert.Equal(t, "a", op.RestoredShifts[0].ID)

	restored := updater.shifts["a"]
	assert.Equal(t, "e1", restored.EmployeeID)
	assert.Equal(t, "17:00", restored.EndTime)
	assert.InDelta(t, 8.0, restored.ActualHours, 0.001)
}

func TestRollback_NoChangesMeansNoUpdates(t *testing.T) {
	m := NewManager(0)
	shifts := sampleShifts()
	snap := m.Create("before", "test", "", shifts)

	updater := newFakeUpdater(shifts)
	op := m.Rollback(context.Background(), snap.ID, shifts, updater)

	assert.True(t, op.Success)
	assert.Empty(t, op.RestoredShifts)
	assert.Zero(t, updater.calls)
}

func TestRollback_UnknownSnapshotFailsCleanly(t *testing.T) {
	m := NewManager(0)
	shifts := sampleShifts()
	updater := newFakeUpdater(shifts)

	op := m.Rollback(context.Background(), "no-such-id", shifts, updater)

	assert.False(t, op.Success)
	require.NotEmpty(t, op.Errors)
	assert.Contains(t, op.Errors[0], "not found")
	assert.Zero(t, updater.calls, "nothing may be applied on a failed lookup")
}

func TestRollback_NilUpdaterFailsCleanly(t *testing.T) {
	m := NewManager(0)
	shifts := sampleShifts()
	snap := m.Create("before", "test", "", shifts)
	shifts[0].EmployeeID = "e2"

	op := m.Rollback(context.Background(), snap.ID, shifts, nil)

	assert.False(t, op.Success)
	require.NotEmpty(t, op.Errors)
	assert.Contains(t, op.Errors[0], "no shift updater")
}

func TestRollback_PartialUpdateFailureIsReported(t *testing.T) {
	m := NewManager(0)
	shifts := sampleShifts()
	snap := m.Create("before", "test", "", shifts)

	shifts[0].EmployeeID = "e9"
	shifts[1].EmployeeID = "e9"

	updater := newFakeUpdater(shifts)
	updater.failIDs["a"] = true
	op := m.Rollback(context.Background(), snap.ID, shifts, updater)

	assert.False(t, op.Success)
	require.Len(t, op.Errors, 1)
	assert.Contains(t, op.Errors[0], "failed to restore shift a")
	require.Len(t, op.RestoredShifts, 1, "the other shift is still restored")
	assert.Equal(t, "b", op.RestoredShifts[0].ID)
}

func TestRollback_SkipsShiftsDeletedSinceSnapshot(t *testing.T) {
	m := NewManager(0)
	shifts := sampleShifts()
	snap := m.Create("before", "test", "", shifts)

	remaining := shifts[1:]
	remaining[0].EmployeeID = "e9"

	updater := newFakeUpdater(remaining)
	op := m.Rollback(context.Background(), snap.ID, remaining, updater)

	require.True(t, op.Success, "errors: %v", op.Errors)
	require.Len(t, op.RestoredShifts, 1)
	assert.Equal(t, "b", op.RestoredShifts[0].ID)
}
