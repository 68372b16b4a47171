package detector

import (
	"fmt"

	"github.com/retailops/shiftbalance/pkg/core/model"
)

// OverlapRule flags pairs of same-employee, same-day shifts whose [start, end)
// intervals intersect. Overlaps are always critical: an employee cannot be in
// two places at once.
type OverlapRule struct{}

// NewOverlapRule creates an OverlapRule
func NewOverlapRule() *OverlapRule {
	return &OverlapRule{}
}

func (r *OverlapRule) Name() string {
	return "Overlap"
}

func (r *OverlapRule) Evaluate(in *Input) []model.Conflict {
	var conflicts []model.Conflict

	employeeIDs, grouped := shiftsByEmployee(in)
	for _, employeeID := range employeeIDs {
		shifts := grouped[employeeID]

		for i := 0; i < len(shifts); i++ {
			for j := i + 1; j < len(shifts); j++ {
				earlier, later := shifts[i], shifts[j]
				if earlier.Date != later.Date {
					continue
				}
				if !intervalsIntersect(earlier, later) {
					continue
				}

				conflicts = append(conflicts, model.Conflict{
					ID:         fmt.Sprintf("overlap:%s:%s:%s:%s", employeeID, earlier.Date, earlier.ID, later.ID),
					Type:       model.ConflictOverlap,
					Severity:   model.SeverityCritical,
					ShiftIDs:   []string{earlier.ID, later.ID},
					EmployeeID: employeeID,
					StoreID:    earlier.StoreID,
					Date:       earlier.Date,
					Description: fmt.Sprintf("employee %s has overlapping shifts on %s (%s-%s and %s-%s)",
						employeeID, earlier.Date, earlier.StartTime, earlier.EndTime, later.StartTime, later.EndTime),
					Strategies: overlapStrategies(earlier, later),
				})
			}
		}
	}

	return conflicts
}

// intervalsIntersect reports whether two same-day shifts overlap in time,
// treating each as a half-open [start, end) interval
func intervalsIntersect(a, b *model.Shift) bool {
	aStart, err := a.StartsAt()
	if err != nil {
		return false
	}
	aEnd, err := a.EndsAt()
	if err != nil {
		return false
	}
	bStart, err := b.StartsAt()
	if err != nil {
		return false
	}
	bEnd, err := b.EndsAt()
	if err != nil {
		return false
	}
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

func overlapStrategies(earlier, later *model.Shift) []model.ResolutionStrategy {
	return []model.ResolutionStrategy{
		{
			ID:          fmt.Sprintf("shrink:%s", earlier.ID),
			Description: fmt.Sprintf("shorten shift %s to end when shift %s starts", earlier.ID, later.ID),
			Confidence:  90,
			Impact: model.ImpactEstimate{
				Satisfaction: -5,
				Efficiency:   10,
				Compliance:   30,
			},
			EstimatedMinutesSaved: 15,
			Steps: []model.ResolutionStep{
				{
					Kind:       model.StepModifyHours,
					ShiftID:    earlier.ID,
					NewEndTime: later.StartTime,
				},
			},
		},
		{
			ID:          fmt.Sprintf("reassign:%s", later.ID),
			Description: fmt.Sprintf("reassign shift %s to another employee at store %s", later.ID, later.StoreID),
			Confidence:  75,
			Impact: model.ImpactEstimate{
				Satisfaction: 5,
				Efficiency:   5,
				Compliance:   30,
			},
			EstimatedMinutesSaved: 30,
			Steps: []model.ResolutionStep{
				{
					Kind:           model.StepMoveShift,
					ShiftID:        later.ID,
					FromEmployeeID: later.EmployeeID,
				},
			},
		},
	}
}
