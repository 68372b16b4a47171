package detector

import (
	"fmt"
	"time"

	"github.com/retailops/shiftbalance/pkg/core/model"
)

const (
	// MinRestHours is the required gap between consecutive shifts
	MinRestHours = 12.0
	// criticalRestHours is the gap below which a rest violation is critical
	criticalRestHours = 8.0
)

// RestRule flags consecutive shifts of the same employee with less than
// MinRestHours between the end of one and the start of the next
type RestRule struct{}

// NewRestRule creates a RestRule
func NewRestRule() *RestRule {
	return &RestRule{}
}

func (r *RestRule) Name() string {
	return "RestPeriod"
}

func (r *RestRule) Evaluate(in *Input) []model.Conflict {
	var conflicts []model.Conflict

	employeeIDs, grouped := shiftsByEmployee(in)
	for _, employeeID := range employeeIDs {
		shifts := grouped[employeeID]

		for i := 0; i+1 < len(shifts); i++ {
			prev, next := shifts[i], shifts[i+1]

			prevEnd, err := prev.EndsAt()
			if err != nil {
				continue
			}
			nextStart, err := next.StartsAt()
			if err != nil {
				continue
			}

			gap := nextStart.Sub(prevEnd).Hours()
			if gap >= MinRestHours {
				continue
			}

			severity := model.SeverityHigh
			if gap < criticalRestHours {
				severity = model.SeverityCritical
			}

			conflicts = append(conflicts, model.Conflict{
				ID:         fmt.Sprintf("rest:%s:%s:%s", employeeID, prev.ID, next.ID),
				Type:       model.ConflictRestViolation,
				Severity:   severity,
				ShiftIDs:   []string{prev.ID, next.ID},
				EmployeeID: employeeID,
				StoreID:    next.StoreID,
				Date:       next.Date,
				Description: fmt.Sprintf("employee %s has only %.1fh rest between shifts %s and %s (minimum %.0fh)",
					employeeID, gap, prev.ID, next.ID, MinRestHours),
				Strategies: restStrategies(prev, next, prevEnd),
			})
		}
	}

	return conflicts
}

func restStrategies(prev, next *model.Shift, prevEnd time.Time) []model.ResolutionStrategy {
	pushedStart := prevEnd.Add(time.Duration(MinRestHours * float64(time.Hour)))

	return []model.ResolutionStrategy{
		{
			ID:          fmt.Sprintf("push-start:%s", next.ID),
			Description: fmt.Sprintf("delay shift %s to start at %s, restoring the %.0fh rest period", next.ID, model.FormatClock(pushedStart), MinRestHours),
			Confidence:  85,
			Impact: model.ImpactEstimate{
				Satisfaction: 10,
				Efficiency:   -5,
				Compliance:   40,
			},
			EstimatedMinutesSaved: 20,
			Steps: []model.ResolutionStep{
				{
					Kind:         model.StepModifyHours,
					ShiftID:      next.ID,
					NewStartTime: model.FormatClock(pushedStart),
				},
			},
		},
	}
}
