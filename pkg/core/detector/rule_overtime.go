package detector

import (
	"fmt"

	"github.com/retailops/shiftbalance/pkg/core/model"
)

const (
	// overtimeHighRatio is the assigned/contract ratio above which an
	// overtime conflict is raised
	overtimeHighRatio = 1.25
	// overtimeCriticalRatio is the ratio above which the conflict is
	// critical. Exactly at the ratio is still high.
	overtimeCriticalRatio = 1.5
)

// OvertimeRule flags employees whose total assigned hours over the
// evaluation window exceed 125% of their contract hours
type OvertimeRule struct{}

// NewOvertimeRule creates an OvertimeRule
func NewOvertimeRule() *OvertimeRule {
	return &OvertimeRule{}
}

func (r *OvertimeRule) Name() string {
	return "Overtime"
}

func (r *OvertimeRule) Evaluate(in *Input) []model.Conflict {
	var conflicts []model.Conflict

	byID := employeesByID(in)
	employeeIDs, grouped := shiftsByEmployee(in)

	for _, employeeID := range employeeIDs {
		employee, known := byID[employeeID]
		if !known || employee.ContractHours <= 0 {
			continue
		}

		shifts := grouped[employeeID]
		total := 0.0
		shiftIDs := make([]string, 0, len(shifts))
		for _, s := range shifts {
			total += s.Hours()
			shiftIDs = append(shiftIDs, s.ID)
		}

		ratio := total / employee.ContractHours
		if ratio <= overtimeHighRatio {
			continue
		}

		severity := model.SeverityHigh
		if ratio > overtimeCriticalRatio {
			severity = model.SeverityCritical
		}

		excess := total - employee.ContractHours

		conflicts = append(conflicts, model.Conflict{
			ID:         fmt.Sprintf("overtime:%s", employeeID),
			Type:       model.ConflictOvertime,
			Severity:   severity,
			ShiftIDs:   shiftIDs,
			EmployeeID: employeeID,
			StoreID:    employee.StoreID,
			Description: fmt.Sprintf("employee %s is assigned %.1fh against a %.1fh contract (%.0f%%)",
				employeeID, total, employee.ContractHours, ratio*100),
			Strategies: []model.ResolutionStrategy{
				{
					ID:          fmt.Sprintf("redistribute:%s", employeeID),
					Description: fmt.Sprintf("redistribute %.1fh of excess work to another employee at store %s", excess, employee.StoreID),
					Confidence:  80,
					Impact: model.ImpactEstimate{
						Satisfaction: 15,
						Efficiency:   5,
						Compliance:   35,
					},
					EstimatedMinutesSaved: 25,
					Steps: []model.ResolutionStep{
						{
							Kind:           model.StepMoveShift,
							ShiftID:        smallestShiftID(shifts),
							FromEmployeeID: employeeID,
						},
					},
				},
			},
		})
	}

	return conflicts
}

// smallestShiftID picks the shift whose reassignment sheds the least hours;
// moving it is the least disruptive first step for trimming overtime
func smallestShiftID(shifts []*model.Shift) string {
	if len(shifts) == 0 {
		return ""
	}
	best := shifts[0]
	for _, s := range shifts[1:] {
		if s.Hours() < best.Hours() {
			best = s
		}
	}
	return best.ID
}
