package executor

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/retailops/shiftbalance/pkg/core/model"
	"github.com/retailops/shiftbalance/pkg/core/prevalidate"
)

const (
	// redistributeTolerance is the acceptable deviation from the target
	// amount when selecting shifts to move
	redistributeTolerance = 1.0
	// minAdjustHours rejects adjustments too small to matter
	minAdjustHours = 0.5
	// adjustFloorHours / adjustCeilHours clamp an adjusted shift's length
	adjustFloorHours = 4.0
	adjustCeilHours  = 12.0
)

// applyRedistribute moves whole shifts from the overloaded source employee
// to the underloaded target until the proposed amount is reached
func (e *Executor) applyRedistribute(ctx context.Context, sug *model.Suggestion, vctx *prevalidate.Context, result *model.BalancingResult) {
	if e.writer == nil {
		result.Errors = append(result.Errors, "no shift writer provided")
		return
	}
	if findEmployee(vctx, sug.TargetEmployeeID) == nil {
		result.Errors = append(result.Errors, fmt.Sprintf("target employee %s not found", sug.TargetEmployeeID))
		return
	}

	candidates := unlockedShiftsOf(vctx, sug.SourceEmployeeID)
	if len(candidates) == 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("employee %s has no unlocked shifts to redistribute", sug.SourceEmployeeID))
		return
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Hours() == candidates[j].Hours() {
			return candidates[i].ID < candidates[j].ID
		}
		return candidates[i].Hours() < candidates[j].Hours()
	})

	target := sug.Proposed.Hours
	var selected []*model.Shift
	accumulated := 0.0
	for _, s := range candidates {
		if accumulated >= target-redistributeTolerance {
			break
		}
		if accumulated+s.Hours() > target+redistributeTolerance {
			continue
		}
		selected = append(selected, s)
		accumulated += s.Hours()
	}

	if len(selected) == 0 || accumulated < target-redistributeTolerance {
		result.Errors = append(result.Errors, fmt.Sprintf("could not select shifts totalling %.1fh (within %.0fh tolerance) from employee %s",
			target, redistributeTolerance, sug.SourceEmployeeID))
		return
	}

	affected := make([]*model.Shift, len(selected))
	for i, s := range selected {
		moved := s.Clone()
		moved.EmployeeID = sug.TargetEmployeeID
		affected[i] = moved
	}

	if !e.validate(sug, affected, vctx, result) {
		return
	}

	for i, s := range selected {
		patch := model.ShiftPatch{EmployeeID: model.StringPtr(sug.TargetEmployeeID)}
		if err := e.writer.UpdateShift(ctx, s.ID, patch); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to reassign shift %s: %v", s.ID, err))
			return
		}
		result.ModifiedShifts = append(result.ModifiedShifts, affected[i])
	}

	result.Summary = model.BalancingSummary{
		ShiftsModified:     len(selected),
		EmployeesAffected:  2,
		HoursRedistributed: accumulated,
	}
}

// applySwap exchanges the suggestion's named shift with a comparable shift
// of the target employee
func (e *Executor) applySwap(ctx context.Context, sug *model.Suggestion, vctx *prevalidate.Context, result *model.BalancingResult) {
	if e.writer == nil {
		result.Errors = append(result.Errors, "no shift writer provided")
		return
	}

	named := findShift(vctx, sug.ShiftID)
	if named == nil {
		result.Errors = append(result.Errors, fmt.Sprintf("shift %s not found", sug.ShiftID))
		return
	}
	if named.Locked {
		result.Errors = append(result.Errors, fmt.Sprintf("shift %s is locked", named.ID))
		return
	}

	var partner *model.Shift
	bestDiff := math.MaxFloat64
	for _, s := range unlockedShiftsOf(vctx, sug.TargetEmployeeID) {
		if s.ID == named.ID {
			continue
		}
		if s.Date == named.Date && s.StoreID == named.StoreID {
			continue
		}
		diff := math.Abs(s.Hours() - named.Hours())
		if diff > 2 || diff >= bestDiff {
			continue
		}
		bestDiff = diff
		partner = s
	}
	if partner == nil {
		result.Errors = append(result.Errors, fmt.Sprintf("no swappable shift found for employee %s within 2h of shift %s",
			sug.TargetEmployeeID, named.ID))
		return
	}

	movedNamed := named.Clone()
	movedNamed.EmployeeID = partner.EmployeeID
	movedPartner := partner.Clone()
	movedPartner.EmployeeID = named.EmployeeID

	if !e.validate(sug, []*model.Shift{movedNamed, movedPartner}, vctx, result) {
		return
	}

	if err := e.writer.UpdateShift(ctx, named.ID, model.ShiftPatch{EmployeeID: model.StringPtr(movedNamed.EmployeeID)}); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to reassign shift %s: %v", named.ID, err))
		return
	}
	if err := e.writer.UpdateShift(ctx, partner.ID, model.ShiftPatch{EmployeeID: model.StringPtr(movedPartner.EmployeeID)}); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to reassign shift %s: %v", partner.ID, err))
		return
	}

	result.ModifiedShifts = append(result.ModifiedShifts, movedNamed, movedPartner)
	result.Summary = model.BalancingSummary{
		ShiftsModified:     2,
		EmployeesAffected:  2,
		HoursRedistributed: math.Abs(named.Hours() - partner.Hours()),
	}
}

// applyAddShift creates a default 8-hour shift for the source employee one
// day ahead at the suggestion's store (or the employee's home store)
func (e *Executor) applyAddShift(ctx context.Context, sug *model.Suggestion, vctx *prevalidate.Context, result *model.BalancingResult) {
	if e.writer == nil {
		result.Errors = append(result.Errors, "no shift creation callback provided")
		return
	}

	employee := findEmployee(vctx, sug.SourceEmployeeID)
	if employee == nil {
		result.Errors = append(result.Errors, fmt.Sprintf("employee %s not found", sug.SourceEmployeeID))
		return
	}

	storeID := sug.StoreID
	if storeID == "" {
		storeID = employee.StoreID
	}

	draft := model.ShiftDraft{
		EmployeeID:   employee.ID,
		StoreID:      storeID,
		Date:         e.now().AddDate(0, 0, 1).Format(model.DateFormat),
		StartTime:    "09:00",
		EndTime:      "17:00",
		BreakMinutes: 60,
	}

	preview := &model.Shift{
		EmployeeID:   draft.EmployeeID,
		StoreID:      draft.StoreID,
		Date:         draft.Date,
		StartTime:    draft.StartTime,
		EndTime:      draft.EndTime,
		BreakMinutes: draft.BreakMinutes,
	}
	if !e.validate(sug, []*model.Shift{preview}, vctx, result) {
		return
	}

	id, err := e.writer.CreateShift(ctx, draft)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to create shift: %v", err))
		return
	}

	created := preview.Clone()
	created.ID = id
	result.ModifiedShifts = append(result.ModifiedShifts, created)
	result.Summary = model.BalancingSummary{
		ShiftsModified:     1,
		EmployeesAffected:  1,
		HoursRedistributed: created.Hours(),
	}
}

// applyRemoveShift deletes the source employee's smallest unlocked shift
func (e *Executor) applyRemoveShift(ctx context.Context, sug *model.Suggestion, vctx *prevalidate.Context, result *model.BalancingResult) {
	if e.writer == nil {
		result.Errors = append(result.Errors, "no shift writer provided")
		return
	}

	candidates := unlockedShiftsOf(vctx, sug.SourceEmployeeID)
	if len(candidates) == 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("employee %s has no unlocked shifts to remove", sug.SourceEmployeeID))
		return
	}

	smallest := candidates[0]
	for _, s := range candidates[1:] {
		if s.Hours() < smallest.Hours() || (s.Hours() == smallest.Hours() && s.ID < smallest.ID) {
			smallest = s
		}
	}

	// The validator's simulation overlays shifts by id and cannot express a
	// removal, so the post-removal floor check runs here
	if employee := findEmployee(vctx, sug.SourceEmployeeID); employee != nil {
		remaining := 0.0
		for _, s := range vctx.Shifts {
			if s.EmployeeID == employee.ID && s.ID != smallest.ID {
				remaining += s.Hours()
			}
		}
		if prevalidate.BelowGuaranteedFloor(employee, remaining) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("removing shift %s leaves employee %s with %.1fh, below half the guaranteed %.1fh minimum",
					smallest.ID, employee.ID, remaining, employee.MinHours))
		}
	}

	if err := e.writer.DeleteShift(ctx, smallest.ID); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to delete shift %s: %v", smallest.ID, err))
		return
	}

	result.ModifiedShifts = append(result.ModifiedShifts, smallest.Clone())
	result.Summary = model.BalancingSummary{
		ShiftsModified:     1,
		EmployeesAffected:  1,
		HoursRedistributed: smallest.Hours(),
	}
}

// applyAdjustHours shrinks or extends the source employee's longest
// unlocked shift by the proposed amount, clamped to a sane total length
func (e *Executor) applyAdjustHours(ctx context.Context, sug *model.Suggestion, vctx *prevalidate.Context, result *model.BalancingResult) {
	if e.writer == nil {
		result.Errors = append(result.Errors, "no shift writer provided")
		return
	}

	amount := sug.Proposed.Hours
	if math.Abs(amount) < minAdjustHours {
		result.Errors = append(result.Errors, fmt.Sprintf("adjustment of %.2fh is below the %.1fh minimum", amount, minAdjustHours))
		return
	}

	candidates := unlockedShiftsOf(vctx, sug.SourceEmployeeID)
	if len(candidates) == 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("employee %s has no unlocked shifts to adjust", sug.SourceEmployeeID))
		return
	}

	longest := candidates[0]
	for _, s := range candidates[1:] {
		if s.Hours() > longest.Hours() || (s.Hours() == longest.Hours() && s.ID < longest.ID) {
			longest = s
		}
	}

	// Positive amounts trim an overloaded employee, negative extend
	newHours := longest.Hours() - amount
	newHours = math.Max(adjustFloorHours, math.Min(adjustCeilHours, newHours))
	if math.Abs(newHours-longest.Hours()) < minAdjustHours {
		result.Errors = append(result.Errors, fmt.Sprintf("clamped adjustment on shift %s would change less than %.1fh", longest.ID, minAdjustHours))
		return
	}

	start, err := model.ParseClock(longest.StartTime)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("shift %s has an invalid start time: %v", longest.ID, err))
		return
	}
	workAndBreak := time.Duration((newHours+float64(longest.BreakMinutes)/60)*float64(time.Hour))
	newEnd := model.FormatClock(start.Add(workAndBreak))

	adjusted := longest.Clone()
	adjusted.EndTime = newEnd
	adjusted.ActualHours = newHours

	if !e.validate(sug, []*model.Shift{adjusted}, vctx, result) {
		return
	}

	patch := model.ShiftPatch{
		EndTime:     model.StringPtr(newEnd),
		ActualHours: model.FloatPtr(newHours),
	}
	if err := e.writer.UpdateShift(ctx, longest.ID, patch); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to adjust shift %s: %v", longest.ID, err))
		return
	}

	result.ModifiedShifts = append(result.ModifiedShifts, adjusted)
	result.Summary = model.BalancingSummary{
		ShiftsModified:     1,
		EmployeesAffected:  1,
		HoursRedistributed: math.Abs(newHours - longest.Hours()),
	}
}
