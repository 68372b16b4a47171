package resolver

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/retailops/shiftbalance/pkg/core/model"
	"github.com/retailops/shiftbalance/pkg/core/prevalidate"
)

// ShiftWriter is the mutation surface the resolver needs from the entity store
type ShiftWriter interface {
	UpdateShift(ctx context.Context, id string, patch model.ShiftPatch) error
}

// Notifier delivers manager notifications raised by resolution steps. A nil
// notifier turns notify steps into no-ops.
type Notifier interface {
	Notify(ctx context.Context, storeID, message string, severity model.Severity) error
}

// Result reports the outcome of resolving one conflict
type Result struct {
	ConflictID     string
	StrategyID     string
	Success        bool
	StepsApplied   int
	ModifiedShifts []*model.Shift
	MinutesSaved   int
	Errors         []string
	Warnings       []string
}

// BatchResult aggregates the outcomes of resolving several conflicts
type BatchResult struct {
	Results           []*Result
	Resolved          int
	Failed            int
	TotalMinutesSaved int
}

// Resolver executes resolution strategies attached to detected conflicts.
// Like the suggestion executor it never returns Go errors: every failure is
// recorded on the Result.
type Resolver struct {
	writer   ShiftWriter
	notifier Notifier
	logger   *zap.Logger
}

// New creates a resolver. writer and notifier may each be nil; a nil writer
// fails mutating steps cleanly and a nil notifier silently drops notifications.
func New(writer ShiftWriter, notifier Notifier, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{writer: writer, notifier: notifier, logger: logger}
}

// Resolve applies the named strategy of the conflict, step by step. A step
// that fails is recorded and the remaining steps still run; steps already
// applied are not undone (snapshot before resolving to get rollback).
func (r *Resolver) Resolve(ctx context.Context, conflict *model.Conflict, strategyID string, vctx *prevalidate.Context) *Result {
	result := &Result{ConflictID: conflict.ID, StrategyID: strategyID}

	strategy := findStrategy(conflict, strategyID)
	if strategy == nil {
		result.Errors = append(result.Errors, fmt.Sprintf("conflict %s has no strategy %q", conflict.ID, strategyID))
		return result
	}

	r.logger.Debug("resolving conflict",
		zap.String("conflict", conflict.ID),
		zap.String("type", string(conflict.Type)),
		zap.String("strategy", strategy.ID),
		zap.Int("steps", len(strategy.Steps)))

	for i, step := range strategy.Steps {
		if err := r.applyStep(ctx, conflict, step, vctx, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("step %d (%s): %v", i+1, step.Kind, err))
			continue
		}
		result.StepsApplied++
	}

	result.Success = len(result.Errors) == 0
	if result.Success {
		result.MinutesSaved = strategy.EstimatedMinutesSaved
		r.logger.Info("conflict resolved",
			zap.String("conflict", conflict.ID),
			zap.String("strategy", strategy.ID),
			zap.Int("steps_applied", result.StepsApplied))
	} else {
		r.logger.Warn("conflict resolution failed",
			zap.String("conflict", conflict.ID),
			zap.Strings("errors", result.Errors))
	}

	return result
}

// ResolveBatch resolves conflicts most severe first, each with its highest
// confidence strategy. Conflicts without strategies are skipped with a
// failure result.
func (r *Resolver) ResolveBatch(ctx context.Context, conflicts []*model.Conflict, vctx *prevalidate.Context) *BatchResult {
	ordered := make([]*model.Conflict, len(conflicts))
	copy(ordered, conflicts)
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, rj := model.SeverityRank(ordered[i].Severity), model.SeverityRank(ordered[j].Severity)
		if ri == rj {
			return ordered[i].ID < ordered[j].ID
		}
		return ri < rj
	})

	batch := &BatchResult{}
	for _, conflict := range ordered {
		var result *Result
		if best := bestStrategy(conflict); best != nil {
			result = r.Resolve(ctx, conflict, best.ID, vctx)
		} else {
			result = &Result{
				ConflictID: conflict.ID,
				Errors:     []string{fmt.Sprintf("conflict %s has no resolution strategies", conflict.ID)},
			}
		}

		batch.Results = append(batch.Results, result)
		if result.Success {
			batch.Resolved++
			batch.TotalMinutesSaved += result.MinutesSaved
		} else {
			batch.Failed++
		}
	}

	r.logger.Info("batch resolution finished",
		zap.Int("resolved", batch.Resolved),
		zap.Int("failed", batch.Failed),
		zap.Int("minutes_saved", batch.TotalMinutesSaved))

	return batch
}

// applyStep dispatches on the step kind. The switch is exhaustive over the
// declared kinds; anything else is a hard error.
func (r *Resolver) applyStep(ctx context.Context, conflict *model.Conflict, step model.ResolutionStep, vctx *prevalidate.Context, result *Result) error {
	switch step.Kind {
	case model.StepModifyHours:
		return r.modifyHours(ctx, step, vctx, result)
	case model.StepMoveShift:
		return r.moveShift(ctx, conflict, step, vctx, result)
	case model.StepNotifyManager:
		return r.notifyManager(ctx, step, result)
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

// modifyHours rewrites a shift's start and/or end time and recomputes its
// worked hours from the new window
func (r *Resolver) modifyHours(ctx context.Context, step model.ResolutionStep, vctx *prevalidate.Context, result *Result) error {
	if r.writer == nil {
		return fmt.Errorf("no shift writer provided")
	}
	shift := findShift(vctx, step.ShiftID)
	if shift == nil {
		return fmt.Errorf("shift %s not found", step.ShiftID)
	}
	if shift.Locked {
		return fmt.Errorf("shift %s is locked (%s)", shift.ID, shift.LockReason)
	}

	changed := shift.Clone()
	if step.NewStartTime != "" {
		changed.StartTime = step.NewStartTime
	}
	if step.NewEndTime != "" {
		changed.EndTime = step.NewEndTime
	}
	changed.ActualHours = 0 // Recompute from the new window
	changed.ActualHours = changed.Hours()

	if changed.ActualHours <= 0 {
		return fmt.Errorf("new window %s-%s leaves shift %s with no working time", changed.StartTime, changed.EndTime, shift.ID)
	}

	patch := model.ShiftPatch{ActualHours: model.FloatPtr(changed.ActualHours)}
	if step.NewStartTime != "" {
		patch.StartTime = model.StringPtr(step.NewStartTime)
	}
	if step.NewEndTime != "" {
		patch.EndTime = model.StringPtr(step.NewEndTime)
	}
	if err := r.writer.UpdateShift(ctx, shift.ID, patch); err != nil {
		return fmt.Errorf("failed to update shift %s: %w", shift.ID, err)
	}

	result.ModifiedShifts = append(result.ModifiedShifts, changed)
	return nil
}

// moveShift reassigns a shift to the first eligible colleague at the same
// store. Finding nobody is a warning, not a failure: the conflict stays open
// for a manager to handle.
func (r *Resolver) moveShift(ctx context.Context, conflict *model.Conflict, step model.ResolutionStep, vctx *prevalidate.Context, result *Result) error {
	if r.writer == nil {
		return fmt.Errorf("no shift writer provided")
	}
	shift := findShift(vctx, step.ShiftID)
	if shift == nil {
		return fmt.Errorf("shift %s not found", step.ShiftID)
	}
	if shift.Locked {
		return fmt.Errorf("shift %s is locked (%s)", shift.ID, shift.LockReason)
	}

	implicated := implicatedEmployees(conflict, vctx)
	target := firstEligibleColleague(vctx, shift, implicated)
	if target == nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("no eligible colleague at store %s to take shift %s; left unassigned change pending", shift.StoreID, shift.ID))
		return nil
	}

	patch := model.ShiftPatch{EmployeeID: model.StringPtr(target.ID)}
	if err := r.writer.UpdateShift(ctx, shift.ID, patch); err != nil {
		return fmt.Errorf("failed to reassign shift %s: %w", shift.ID, err)
	}

	moved := shift.Clone()
	moved.EmployeeID = target.ID
	result.ModifiedShifts = append(result.ModifiedShifts, moved)
	return nil
}

// notifyManager forwards the step's message through the notifier. Delivery
// problems degrade to warnings so a flaky mail server cannot fail a
// resolution.
func (r *Resolver) notifyManager(ctx context.Context, step model.ResolutionStep, result *Result) error {
	if r.notifier == nil {
		return nil
	}
	if err := r.notifier.Notify(ctx, step.StoreID, step.Message, step.Severity); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("manager notification for store %s failed: %v", step.StoreID, err))
	}
	return nil
}

func findStrategy(conflict *model.Conflict, id string) *model.ResolutionStrategy {
	for i := range conflict.Strategies {
		if conflict.Strategies[i].ID == id {
			return &conflict.Strategies[i]
		}
	}
	return nil
}

// bestStrategy picks the highest confidence strategy, id as tiebreak
func bestStrategy(conflict *model.Conflict) *model.ResolutionStrategy {
	var best *model.ResolutionStrategy
	for i := range conflict.Strategies {
		s := &conflict.Strategies[i]
		if best == nil || s.Confidence > best.Confidence ||
			(s.Confidence == best.Confidence && s.ID < best.ID) {
			best = s
		}
	}
	return best
}

// implicatedEmployees collects everyone already tangled in the conflict: the
// conflict's own employee plus the owners of its shifts
func implicatedEmployees(conflict *model.Conflict, vctx *prevalidate.Context) map[string]bool {
	implicated := make(map[string]bool)
	if conflict.EmployeeID != "" {
		implicated[conflict.EmployeeID] = true
	}
	named := make(map[string]bool, len(conflict.ShiftIDs))
	for _, id := range conflict.ShiftIDs {
		named[id] = true
	}
	for _, s := range vctx.Shifts {
		if named[s.ID] {
			implicated[s.EmployeeID] = true
		}
	}
	return implicated
}

// firstEligibleColleague returns the active, authorized employee with the
// lowest id at the shift's store who is not implicated in the conflict
func firstEligibleColleague(vctx *prevalidate.Context, shift *model.Shift, implicated map[string]bool) *model.Employee {
	var target *model.Employee
	for _, e := range vctx.Employees {
		if !e.Active || implicated[e.ID] || e.ID == shift.EmployeeID {
			continue
		}
		if !e.AuthorizedFor(shift.StoreID) {
			continue
		}
		if target == nil || e.ID < target.ID {
			target = e
		}
	}
	return target
}

func findShift(vctx *prevalidate.Context, id string) *model.Shift {
	for _, s := range vctx.Shifts {
		if s.ID == id {
			return s
		}
	}
	return nil
}
