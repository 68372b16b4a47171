package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/retailops/shiftbalance/pkg/core/model"
)

// DefaultCapacity is the number of snapshots retained when none is configured
const DefaultCapacity = 10

// Meta records what triggered a snapshot
type Meta struct {
	SuggestionID string
	Operation    string
}

// Snapshot is an immutable captured copy of the shift collection
type Snapshot struct {
	ID          string
	TakenAt     time.Time
	Description string
	Shifts      []*model.Shift
	Meta        Meta
}

// RollbackOperation reports the outcome of restoring a snapshot
type RollbackOperation struct {
	SnapshotID     string
	Success        bool
	RestoredShifts []*model.Shift
	Errors         []string
}

// ShiftUpdater applies a patch to one shift in the entity store
type ShiftUpdater interface {
	UpdateShift(ctx context.Context, id string, patch model.ShiftPatch) error
}

// Manager keeps a bounded history of shift-state snapshots, newest first
type Manager struct {
	capacity int
	history  []*Snapshot
}

// NewManager creates a snapshot manager. A capacity of zero or less falls
// back to DefaultCapacity.
func NewManager(capacity int) *Manager {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Manager{capacity: capacity}
}

// Create deep-copies the given shift collection into a new snapshot and
// prepends it to the history, evicting the oldest entry beyond capacity.
func (m *Manager) Create(description, operation string, suggestionID string, shifts []*model.Shift) *Snapshot {
	snap := &Snapshot{
		ID:          uuid.New().String(),
		TakenAt:     time.Now().UTC(),
		Description: description,
		Shifts:      model.CloneShifts(shifts),
		Meta: Meta{
			SuggestionID: suggestionID,
			Operation:    operation,
		},
	}

	m.history = append([]*Snapshot{snap}, m.history...)
	if len(m.history) > m.capacity {
		m.history = m.history[:m.capacity]
	}

	return snap
}

// History returns the retained snapshots, newest first
func (m *Manager) History() []*Snapshot {
	out := make([]*Snapshot, len(m.history))
	copy(out, m.history)
	return out
}

// Latest returns the most recent snapshot, or nil when none exist
func (m *Manager) Latest() *Snapshot {
	if len(m.history) == 0 {
		return nil
	}
	return m.history[0]
}

// Find looks up a snapshot by id
func (m *Manager) Find(id string) *Snapshot {
	for _, snap := range m.history {
		if snap.ID == id {
			return snap
		}
	}
	return nil
}

// Rollback restores the mutable fields of every shift present in both the
// snapshot and the current collection. Updates are computed first and only
// applied once the snapshot and updater are known to be usable, so an unknown
// id or missing updater causes a clean failure with no side effects.
func (m *Manager) Rollback(ctx context.Context, id string, current []*model.Shift, updater ShiftUpdater) *RollbackOperation {
	op := &RollbackOperation{SnapshotID: id}

	snap := m.Find(id)
	if snap == nil {
		op.Errors = append(op.Errors, fmt.Sprintf("snapshot %s not found", id))
		return op
	}
	if updater == nil {
		op.Errors = append(op.Errors, "no shift updater provided")
		return op
	}

	currentByID := make(map[string]*model.Shift, len(current))
	for _, s := range current {
		currentByID[s.ID] = s
	}

	type pendingUpdate struct {
		shift *model.Shift
		patch model.ShiftPatch
	}
	var updates []pendingUpdate

	for _, want := range snap.Shifts {
		have, exists := currentByID[want.ID]
		if !exists {
			continue
		}
		patch := diffMutableFields(have, want)
		if patch.IsZero() {
			continue
		}
		updates = append(updates, pendingUpdate{shift: want, patch: patch})
	}

	for _, u := range updates {
		if err := updater.UpdateShift(ctx, u.shift.ID, u.patch); err != nil {
			op.Errors = append(op.Errors, fmt.Sprintf("failed to restore shift %s: %v", u.shift.ID, err))
			continue
		}
		op.RestoredShifts = append(op.RestoredShifts, u.shift.Clone())
	}

	op.Success = len(op.Errors) == 0
	return op
}

// diffMutableFields builds a patch moving the current shift back to the
// snapshot state. Only the fields the engine mutates are compared.
func diffMutableFields(have, want *model.Shift) model.ShiftPatch {
	var patch model.ShiftPatch
	if have.EmployeeID != want.EmployeeID {
		patch.EmployeeID = model.StringPtr(want.EmployeeID)
	}
	if have.StoreID != want.StoreID {
		patch.StoreID = model.StringPtr(want.StoreID)
	}
	if have.StartTime != want.StartTime {
		patch.StartTime = model.StringPtr(want.StartTime)
	}
	if have.EndTime != want.EndTime {
		patch.EndTime = model.StringPtr(want.EndTime)
	}
	if have.ActualHours != want.ActualHours {
		patch.ActualHours = model.FloatPtr(want.ActualHours)
	}
	return patch
}
