package executor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/retailops/shiftbalance/pkg/core/model"
	"github.com/retailops/shiftbalance/pkg/core/prevalidate"
)

// ShiftWriter is the injected mutation surface of the entity store. The
// executor performs no persistence itself.
type ShiftWriter interface {
	UpdateShift(ctx context.Context, id string, patch model.ShiftPatch) error
	CreateShift(ctx context.Context, draft model.ShiftDraft) (string, error)
	DeleteShift(ctx context.Context, id string) error
}

// Executor applies balancing suggestions by locating concrete shifts,
// re-validating the change and mutating state through the injected writer.
// Execution problems never surface as returned errors: every failure is
// folded into the BalancingResult.
type Executor struct {
	writer    ShiftWriter
	validator *prevalidate.Validator
	logger    *zap.Logger

	// now is overridable in tests; add-shift drafts are dated relative to it
	now func() time.Time
}

// New creates an executor. The writer may be nil, in which case every
// mutating routine fails cleanly.
func New(writer ShiftWriter, validator *prevalidate.Validator, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		writer:    writer,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// Apply executes one suggestion against the entity snapshot in vctx.
// The suggestion type dispatch is exhaustive: unknown types produce a
// failure result naming the type.
func (e *Executor) Apply(ctx context.Context, sug *model.Suggestion, vctx *prevalidate.Context) *model.BalancingResult {
	result := &model.BalancingResult{
		SuggestionID:   sug.ID,
		SuggestionType: sug.Type,
	}

	e.logger.Debug("applying suggestion",
		zap.String("id", sug.ID),
		zap.String("type", string(sug.Type)),
		zap.String("source", sug.SourceEmployeeID),
		zap.String("target", sug.TargetEmployeeID))

	switch sug.Type {
	case model.SuggestRedistribute:
		e.applyRedistribute(ctx, sug, vctx, result)
	case model.SuggestSwapShifts:
		e.applySwap(ctx, sug, vctx, result)
	case model.SuggestAddShift:
		e.applyAddShift(ctx, sug, vctx, result)
	case model.SuggestRemoveShift:
		e.applyRemoveShift(ctx, sug, vctx, result)
	case model.SuggestAdjustHours:
		e.applyAdjustHours(ctx, sug, vctx, result)
	default:
		result.Errors = append(result.Errors, fmt.Sprintf("unsupported suggestion type %q", sug.Type))
	}

	result.Success = len(result.Errors) == 0
	if result.Success {
		e.logger.Info("suggestion applied",
			zap.String("id", sug.ID),
			zap.Int("shifts_modified", result.Summary.ShiftsModified),
			zap.Float64("hours_redistributed", result.Summary.HoursRedistributed))
	} else {
		e.logger.Warn("suggestion failed",
			zap.String("id", sug.ID),
			zap.Strings("errors", result.Errors))
	}

	return result
}

// ApplyBatch applies suggestions strictly sequentially. Individual
// failures are collected and never abort the remainder.
func (e *Executor) ApplyBatch(ctx context.Context, suggestions []*model.Suggestion, vctx *prevalidate.Context) *model.BatchResult {
	batch := &model.BatchResult{}

	for _, sug := range suggestions {
		result := e.Apply(ctx, sug, vctx)
		batch.Results = append(batch.Results, result)
		if result.Success {
			batch.Succeeded++
			batch.TotalShiftsModified += result.Summary.ShiftsModified
			batch.TotalHoursMoved += result.Summary.HoursRedistributed
		} else {
			batch.Failed++
		}
	}

	e.logger.Info("batch apply finished",
		zap.Int("succeeded", batch.Succeeded),
		zap.Int("failed", batch.Failed),
		zap.Int("total_shifts_modified", batch.TotalShiftsModified))

	return batch
}

// validate gates a set of post-change shifts through the pre-apply
// validator, folding errors and warnings into the result. Returns false
// when the change must not proceed.
func (e *Executor) validate(sug *model.Suggestion, affected []*model.Shift, vctx *prevalidate.Context, result *model.BalancingResult) bool {
	if e.validator == nil {
		return true
	}

	vres := e.validator.Validate(sug, affected, vctx)
	for _, w := range vres.Warnings() {
		result.Warnings = append(result.Warnings, w.Message)
	}
	if vres.CanProceed {
		return true
	}
	for _, errCheck := range vres.Errors() {
		result.Errors = append(result.Errors, errCheck.Message)
	}
	return false
}

// unlockedShiftsOf collects an employee's unlocked shifts from the snapshot
func unlockedShiftsOf(vctx *prevalidate.Context, employeeID string) []*model.Shift {
	var shifts []*model.Shift
	for _, s := range vctx.Shifts {
		if s.EmployeeID == employeeID && !s.Locked {
			shifts = append(shifts, s)
		}
	}
	return shifts
}

// findShift locates a shift by id in the snapshot
func findShift(vctx *prevalidate.Context, id string) *model.Shift {
	for _, s := range vctx.Shifts {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// findEmployee locates an employee by id in the snapshot
func findEmployee(vctx *prevalidate.Context, id string) *model.Employee {
	for _, e := range vctx.Employees {
		if e.ID == id {
			return e
		}
	}
	return nil
}
