package balancer

import (
	"fmt"
	"math"
	"sort"

	"github.com/retailops/shiftbalance/pkg/core/model"
)

const (
	// redistributeThresholdPct triggers redistribution pairing
	redistributeThresholdPct = 20.0
	// swapThresholdPct triggers swap pairing
	swapThresholdPct = 15.0
	// maxRedistributeHours caps how many hours one suggestion moves
	maxRedistributeHours = 8.0
	// autoRedistributeMin/Max bound the range considered safe to
	// apply without manual review
	autoRedistributeMin = 4.0
	autoRedistributeMax = 10.0
	// swapMaxHourDiff is the largest hour difference between swappable shifts
	swapMaxHourDiff = 2.0
	// intraStoreVarianceThreshold triggers an advisory rebalance suggestion
	intraStoreVarianceThreshold = 15.0
	// storeAddRemoveThresholdHours triggers add/remove shift suggestions
	storeAddRemoveThresholdHours = 8.0
)

func generateSuggestions(s *scope, m *Metrics) []model.Suggestion {
	var suggestions []model.Suggestion
	suggestions = append(suggestions, redistributeSuggestions(m)...)
	suggestions = append(suggestions, swapSuggestions(s, m)...)
	suggestions = append(suggestions, intraStoreSuggestions(s, m)...)
	suggestions = append(suggestions, adjustHoursSuggestions(s, m)...)
	suggestions = append(suggestions, addRemoveSuggestions(s, m)...)
	return suggestions
}

// redistributeSuggestions pairs each overloaded employee with the
// best-matching underloaded colleague at the same store
func redistributeSuggestions(m *Metrics) []model.Suggestion {
	var suggestions []model.Suggestion

	for _, over := range m.EmployeeLoads {
		if over.DeviationPercent <= redistributeThresholdPct || over.TotalHours <= 0 {
			continue
		}

		under := bestUnderloadedMatch(m, over)
		if under == nil {
			continue
		}

		hours := math.Min(math.Abs(over.Deviation)/2, math.Abs(under.Deviation)/2)
		hours = math.Min(hours, maxRedistributeHours)
		if hours < 1 {
			continue
		}

		priority := model.PriorityMedium
		if over.DeviationPercent > 2*redistributeThresholdPct {
			priority = model.PriorityHigh
		}

		suggestions = append(suggestions, model.Suggestion{
			ID:               fmt.Sprintf("redistribute:%s:%s", over.EmployeeID, under.EmployeeID),
			Type:             model.SuggestRedistribute,
			Priority:         priority,
			SourceEmployeeID: over.EmployeeID,
			TargetEmployeeID: under.EmployeeID,
			StoreID:          over.StoreID,
			Proposed: model.ProposedChange{
				Description: fmt.Sprintf("move %.1fh from %s (%.0f%% over) to %s (%.0f%% under)",
					hours, over.EmployeeID, over.DeviationPercent, under.EmployeeID, -under.DeviationPercent),
				Hours:               hours,
				ExpectedImprovement: math.Min(hours*2.5, 100),
			},
			AutoApplicable: hours >= autoRedistributeMin && hours <= autoRedistributeMax,
			Approval:       model.ApprovalPending,
		})
	}

	return suggestions
}

// bestUnderloadedMatch finds the same-store employee below the threshold
// whose deviation is smallest in magnitude; employee id breaks ties
func bestUnderloadedMatch(m *Metrics, over EmployeeLoad) *EmployeeLoad {
	var best *EmployeeLoad
	for i := range m.EmployeeLoads {
		under := &m.EmployeeLoads[i]
		if under.EmployeeID == over.EmployeeID || under.StoreID != over.StoreID {
			continue
		}
		if under.DeviationPercent >= -redistributeThresholdPct {
			continue
		}
		if best == nil || math.Abs(under.Deviation) < math.Abs(best.Deviation) {
			best = under
		}
	}
	return best
}

// swapSuggestions looks for same-store employee pairs pulling in opposite
// directions and proposes exchanging two comparable shifts
func swapSuggestions(s *scope, m *Metrics) []model.Suggestion {
	var suggestions []model.Suggestion

	for i := range m.EmployeeLoads {
		for j := i + 1; j < len(m.EmployeeLoads); j++ {
			a, b := m.EmployeeLoads[i], m.EmployeeLoads[j]
			if a.StoreID != b.StoreID {
				continue
			}

			over, under := a, b
			if over.DeviationPercent < under.DeviationPercent {
				over, under = under, over
			}
			if over.DeviationPercent <= swapThresholdPct || under.DeviationPercent >= -swapThresholdPct {
				continue
			}

			overShift, underShift := bestSwapPair(s.shiftsByEmployee[over.EmployeeID], s.shiftsByEmployee[under.EmployeeID])
			if overShift == nil {
				continue
			}

			hours := math.Abs(overShift.Hours() - underShift.Hours())
			suggestions = append(suggestions, model.Suggestion{
				ID:               fmt.Sprintf("swap:%s:%s", overShift.ID, underShift.ID),
				Type:             model.SuggestSwapShifts,
				Priority:         model.PriorityMedium,
				SourceEmployeeID: over.EmployeeID,
				TargetEmployeeID: under.EmployeeID,
				StoreID:          over.StoreID,
				ShiftID:          overShift.ID,
				Proposed: model.ProposedChange{
					Description: fmt.Sprintf("swap shift %s (%s) with shift %s (%s)",
						overShift.ID, over.EmployeeID, underShift.ID, under.EmployeeID),
					Hours:               hours,
					ExpectedImprovement: 10,
				},
				AutoApplicable: true,
				Approval:       model.ApprovalPending,
			})
		}
	}

	return suggestions
}

// bestSwapPair finds the candidate pair with the lowest hour difference
// within the swap tolerance. Shifts sharing both date and store are skipped:
// exchanging them would change nothing.
func bestSwapPair(overShifts, underShifts []*model.Shift) (*model.Shift, *model.Shift) {
	var bestOver, bestUnder *model.Shift
	bestDiff := math.MaxFloat64

	for _, os := range overShifts {
		if os.Locked {
			continue
		}
		for _, us := range underShifts {
			if us.Locked {
				continue
			}
			if os.Date == us.Date && os.StoreID == us.StoreID {
				continue
			}
			diff := math.Abs(os.Hours() - us.Hours())
			if diff > swapMaxHourDiff {
				continue
			}
			if diff < bestDiff {
				bestDiff = diff
				bestOver, bestUnder = os, us
			}
		}
	}

	return bestOver, bestUnder
}

// intraStoreSuggestions emits an advisory suggestion for stores whose
// internal hour distribution is badly spread, without naming a concrete move
func intraStoreSuggestions(s *scope, m *Metrics) []model.Suggestion {
	var suggestions []model.Suggestion

	for _, store := range s.stores {
		var loads []EmployeeLoad
		for _, l := range m.EmployeeLoads {
			if l.StoreID == store.ID {
				loads = append(loads, l)
			}
		}
		if len(loads) < 2 {
			continue
		}

		variance := hourVariance(loads)
		if variance <= intraStoreVarianceThreshold {
			continue
		}

		suggestions = append(suggestions, model.Suggestion{
			ID:       fmt.Sprintf("rebalance:%s", store.ID),
			Type:     model.SuggestRedistribute,
			Priority: model.PriorityLow,
			StoreID:  store.ID,
			Proposed: model.ProposedChange{
				Description: fmt.Sprintf("store %s has an hour variance of %.1f across %d employees; review its internal distribution",
					store.ID, variance, len(loads)),
				ExpectedImprovement: math.Min(variance/2, 100),
			},
			AutoApplicable: false,
			Approval:       model.ApprovalPending,
		})
	}

	return suggestions
}

// adjustHoursSuggestions proposes trimming or extending a single employee's
// own shift when their deviation is small enough to fix in place
func adjustHoursSuggestions(s *scope, m *Metrics) []model.Suggestion {
	var suggestions []model.Suggestion

	for _, load := range m.EmployeeLoads {
		dev := math.Abs(load.Deviation)
		if dev <= 2 || dev >= 6 {
			continue
		}
		if len(s.shiftsByEmployee[load.EmployeeID]) == 0 {
			continue
		}

		verb := "trim"
		if load.Deviation < 0 {
			verb = "extend"
		}

		suggestions = append(suggestions, model.Suggestion{
			ID:               fmt.Sprintf("adjust:%s", load.EmployeeID),
			Type:             model.SuggestAdjustHours,
			Priority:         model.PriorityLow,
			SourceEmployeeID: load.EmployeeID,
			StoreID:          load.StoreID,
			Proposed: model.ProposedChange{
				Description:         fmt.Sprintf("%s %s's longest shift by %.1fh to meet the %.0fh ceiling", verb, load.EmployeeID, dev, load.Ceiling),
				Hours:               load.Deviation, // Signed: negative extends
				ExpectedImprovement: dev * 2,
			},
			AutoApplicable: dev < 4,
			Approval:       model.ApprovalPending,
		})
	}

	return suggestions
}

// addRemoveSuggestions proposes creating or removing whole shifts for
// stores far from the fleet average. Both always require manual approval.
func addRemoveSuggestions(s *scope, m *Metrics) []model.Suggestion {
	var suggestions []model.Suggestion

	for _, storeLoad := range m.StoreLoads {
		switch {
		case storeLoad.Classification == StoreUnderstaffed && storeLoad.Deviation < -storeAddRemoveThresholdHours:
			employee := extremeStoreEmployee(m, storeLoad.StoreID, false)
			if employee == nil {
				continue
			}
			suggestions = append(suggestions, model.Suggestion{
				ID:               fmt.Sprintf("add:%s:%s", storeLoad.StoreID, employee.EmployeeID),
				Type:             model.SuggestAddShift,
				Priority:         model.PriorityHigh,
				SourceEmployeeID: employee.EmployeeID,
				StoreID:          storeLoad.StoreID,
				Proposed: model.ProposedChange{
					Description: fmt.Sprintf("create a new shift for %s at understaffed store %s (%.1fh below average)",
						employee.EmployeeID, storeLoad.StoreID, -storeLoad.Deviation),
					Hours:               8,
					ExpectedImprovement: 15,
				},
				AutoApplicable: false,
				Approval:       model.ApprovalPending,
			})
		case storeLoad.Classification == StoreOverstaffed && storeLoad.Deviation > storeAddRemoveThresholdHours:
			employee := extremeStoreEmployee(m, storeLoad.StoreID, true)
			if employee == nil {
				continue
			}
			suggestions = append(suggestions, model.Suggestion{
				ID:               fmt.Sprintf("remove:%s:%s", storeLoad.StoreID, employee.EmployeeID),
				Type:             model.SuggestRemoveShift,
				Priority:         model.PriorityMedium,
				SourceEmployeeID: employee.EmployeeID,
				StoreID:          storeLoad.StoreID,
				Proposed: model.ProposedChange{
					Description: fmt.Sprintf("remove the smallest shift of %s at overstaffed store %s (%.1fh above average)",
						employee.EmployeeID, storeLoad.StoreID, storeLoad.Deviation),
					ExpectedImprovement: 10,
				},
				AutoApplicable: false,
				Approval:       model.ApprovalPending,
			})
		}
	}

	return suggestions
}

// extremeStoreEmployee picks the most over- or under-utilized employee of a
// store; employee id breaks ties for determinism
func extremeStoreEmployee(m *Metrics, storeID string, most bool) *EmployeeLoad {
	var candidates []*EmployeeLoad
	for i := range m.EmployeeLoads {
		if m.EmployeeLoads[i].StoreID == storeID {
			candidates = append(candidates, &m.EmployeeLoads[i])
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].TotalHours == candidates[j].TotalHours {
			return candidates[i].EmployeeID < candidates[j].EmployeeID
		}
		if most {
			return candidates[i].TotalHours > candidates[j].TotalHours
		}
		return candidates[i].TotalHours < candidates[j].TotalHours
	})
	return candidates[0]
}
