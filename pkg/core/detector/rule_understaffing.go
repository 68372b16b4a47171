package detector

import (
	"fmt"
	"sort"
	"time"

	"github.com/retailops/shiftbalance/pkg/core/model"
)

// understaffingLookaheadDays is how far ahead staffing levels are checked
const understaffingLookaheadDays = 7

// estimatedHourlyCost approximates the cost of calling in one extra employee
// for a day, used in the notify strategy's cost estimate
const estimatedHourlyCost = 18.50

// UnderstaffingRule flags store-days within the lookahead window whose
// assigned headcount is below the required minimum
type UnderstaffingRule struct{}

// NewUnderstaffingRule creates an UnderstaffingRule
func NewUnderstaffingRule() *UnderstaffingRule {
	return &UnderstaffingRule{}
}

func (r *UnderstaffingRule) Name() string {
	return "Understaffing"
}

func (r *UnderstaffingRule) Evaluate(in *Input) []model.Conflict {
	var conflicts []model.Conflict

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	// headcount[storeID][date] = set of assigned employees
	headcount := make(map[string]map[string]map[string]bool)
	for _, s := range in.Shifts {
		if _, ok := headcount[s.StoreID]; !ok {
			headcount[s.StoreID] = make(map[string]map[string]bool)
		}
		if _, ok := headcount[s.StoreID][s.Date]; !ok {
			headcount[s.StoreID][s.Date] = make(map[string]bool)
		}
		headcount[s.StoreID][s.Date][s.EmployeeID] = true
	}

	stores := make([]*model.Store, 0, len(in.Stores))
	for _, store := range in.Stores {
		if store.Active {
			stores = append(stores, store)
		}
	}
	sort.Slice(stores, func(i, j int) bool { return stores[i].ID < stores[j].ID })

	for _, store := range stores {
		for day := 0; day < understaffingLookaheadDays; day++ {
			date := now.AddDate(0, 0, day).Format(model.DateFormat)

			required := DefaultRequiredStaff
			if in.RequiredStaff != nil {
				required = in.RequiredStaff(store.ID, date)
			}
			if required <= 0 {
				continue
			}

			assigned := len(headcount[store.ID][date])
			if assigned >= required {
				continue
			}

			severity := model.SeverityHigh
			if assigned == 0 {
				severity = model.SeverityCritical
			}

			missing := required - assigned
			costEstimate := float64(missing) * 8 * estimatedHourlyCost

			conflicts = append(conflicts, model.Conflict{
				ID:       fmt.Sprintf("understaffing:%s:%s", store.ID, date),
				Type:     model.ConflictUnderstaffing,
				Severity: severity,
				StoreID:  store.ID,
				Date:     date,
				Description: fmt.Sprintf("store %s has %d of %d required staff on %s",
					store.ID, assigned, required, date),
				Strategies: []model.ResolutionStrategy{
					{
						ID:          fmt.Sprintf("notify:%s:%s", store.ID, date),
						Description: fmt.Sprintf("ask the manager of store %s to request volunteers for %s", store.ID, date),
						Confidence:  70,
						Impact: model.ImpactEstimate{
							Satisfaction: 0,
							Efficiency:   20,
							Compliance:   15,
						},
						EstimatedMinutesSaved: 45,
						EstimatedCost:         costEstimate,
						Steps: []model.ResolutionStep{
							{
								Kind:     model.StepNotifyManager,
								StoreID:  store.ID,
								Message:  fmt.Sprintf("store %s needs %d more staff on %s; please request volunteers", store.ID, missing, date),
								Severity: severity,
							},
						},
					},
				},
			})
		}
	}

	return conflicts
}
