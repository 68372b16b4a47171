package prevalidate

import (
	"fmt"
	"strings"
	"time"

	"github.com/retailops/shiftbalance/pkg/core/model"
)

const (
	// minRestHours mirrors the detector's rest requirement
	minRestHours = 12.0
	// maxConsecutiveDays is the longest working streak allowed without a warning
	maxConsecutiveDays = 6
	// ceilingErrorRatio / ceilingWarnRatio bound contract-hour overruns
	ceilingErrorRatio = 1.25
	ceilingWarnRatio  = 1.10
	// floorWarnRatio flags employees scheduled below half their floor
	floorWarnRatio = 0.5
	// juniorMaxHours is the longest shift a junior may take unsupervised
	juniorMaxHours = 6.0
	// eveningStartHour marks the beginning of an evening slot
	eveningStartHour = 18
	// defaultContractHours mirrors the balancer default for employees
	// without a contract ceiling
	defaultContractHours = 32.0
)

// checkOverlaps flags affected shifts that would intersect another shift of
// the same employee on the same day after the change
func checkOverlaps(_ *model.Suggestion, affected []*model.Shift, w *simWorld, _ map[string]*model.Employee, _ map[string]*model.Store) []model.ValidationCheck {
	var checks []model.ValidationCheck
	affectedIDs := affectedIDSet(affected)

	for _, employeeID := range affectedEmployeeIDs(affected) {
		shifts := w.byEmployee[employeeID]
		for i := 0; i < len(shifts); i++ {
			for j := i + 1; j < len(shifts); j++ {
				a, b := shifts[i], shifts[j]
				if a.Date != b.Date {
					continue
				}
				if !affectedIDs[a.ID] && !affectedIDs[b.ID] {
					continue // Pre-existing overlap, not introduced by this change
				}
				if !shiftsOverlap(a, b) {
					continue
				}
				checks = append(checks, model.ValidationCheck{
					Name:        "overlap",
					Severity:    model.CheckError,
					Message:     fmt.Sprintf("shifts %s and %s for employee %s would overlap on %s", a.ID, b.ID, employeeID, a.Date),
					ShiftIDs:    []string{a.ID, b.ID},
					EmployeeIDs: []string{employeeID},
				})
			}
		}
	}

	return checks
}

func shiftsOverlap(a, b *model.Shift) bool {
	aStart, err1 := a.StartsAt()
	aEnd, err2 := a.EndsAt()
	bStart, err3 := b.StartsAt()
	bEnd, err4 := b.EndsAt()
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return false
	}
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// checkConsecutiveDays warns when the change leaves an employee working more
// than maxConsecutiveDays calendar days in a row
func checkConsecutiveDays(_ *model.Suggestion, affected []*model.Shift, w *simWorld, _ map[string]*model.Employee, _ map[string]*model.Store) []model.ValidationCheck {
	var checks []model.ValidationCheck

	for _, employeeID := range affectedEmployeeIDs(affected) {
		streak := longestWorkingStreak(w.byEmployee[employeeID])
		if streak <= maxConsecutiveDays {
			continue
		}
		checks = append(checks, model.ValidationCheck{
			Name:        "consecutive_days",
			Severity:    model.CheckWarning,
			Message:     fmt.Sprintf("employee %s would work %d consecutive days", employeeID, streak),
			EmployeeIDs: []string{employeeID},
		})
	}

	return checks
}

func longestWorkingStreak(shifts []*model.Shift) int {
	days := make(map[string]bool, len(shifts))
	for _, s := range shifts {
		days[s.Date] = true
	}

	longest := 0
	for date := range days {
		day, err := time.Parse(model.DateFormat, date)
		if err != nil {
			continue
		}
		// Only count from the start of a streak
		if days[day.AddDate(0, 0, -1).Format(model.DateFormat)] {
			continue
		}
		run := 1
		for days[day.AddDate(0, 0, run).Format(model.DateFormat)] {
			run++
		}
		if run > longest {
			longest = run
		}
	}

	return longest
}

// checkRestPeriods flags rest violations the change would introduce
func checkRestPeriods(_ *model.Suggestion, affected []*model.Shift, w *simWorld, _ map[string]*model.Employee, _ map[string]*model.Store) []model.ValidationCheck {
	var checks []model.ValidationCheck
	affectedIDs := affectedIDSet(affected)

	for _, employeeID := range affectedEmployeeIDs(affected) {
		shifts := w.byEmployee[employeeID]
		for i := 0; i+1 < len(shifts); i++ {
			prev, next := shifts[i], shifts[i+1]
			if !affectedIDs[prev.ID] && !affectedIDs[next.ID] {
				continue
			}
			prevEnd, err := prev.EndsAt()
			if err != nil {
				continue
			}
			nextStart, err := next.StartsAt()
			if err != nil {
				continue
			}
			gap := nextStart.Sub(prevEnd).Hours()
			if gap < 0 || gap >= minRestHours {
				continue // Negative gaps are overlaps, reported separately
			}
			checks = append(checks, model.ValidationCheck{
				Name:        "rest_period",
				Severity:    model.CheckError,
				Message:     fmt.Sprintf("employee %s would have only %.1fh rest between shifts %s and %s", employeeID, gap, prev.ID, next.ID),
				ShiftIDs:    []string{prev.ID, next.ID},
				EmployeeIDs: []string{employeeID},
			})
		}
	}

	return checks
}

// checkContractCeiling compares post-change totals against the contract
// ceiling: over 25% above is an error, over 10% a warning
func checkContractCeiling(_ *model.Suggestion, affected []*model.Shift, w *simWorld, employees map[string]*model.Employee, _ map[string]*model.Store) []model.ValidationCheck {
	var checks []model.ValidationCheck

	for _, employeeID := range affectedEmployeeIDs(affected) {
		employee, known := employees[employeeID]
		if !known {
			continue // Missing employees are reported by checkReferences
		}
		ceiling := employee.ContractHours
		if ceiling <= 0 {
			ceiling = defaultContractHours
		}

		total := 0.0
		for _, s := range w.byEmployee[employeeID] {
			total += s.Hours()
		}

		ratio := total / ceiling
		switch {
		case ratio > ceilingErrorRatio:
			checks = append(checks, model.ValidationCheck{
				Name:        "contract_ceiling",
				Severity:    model.CheckError,
				Message:     fmt.Sprintf("employee %s would reach %.1fh, more than 125%% of the %.1fh ceiling", employeeID, total, ceiling),
				EmployeeIDs: []string{employeeID},
			})
		case ratio > ceilingWarnRatio:
			checks = append(checks, model.ValidationCheck{
				Name:        "contract_ceiling",
				Severity:    model.CheckWarning,
				Message:     fmt.Sprintf("employee %s would reach %.1fh, more than 110%% of the %.1fh ceiling", employeeID, total, ceiling),
				EmployeeIDs: []string{employeeID},
			})
		}
	}

	return checks
}

// BelowGuaranteedFloor reports whether the given weekly total falls below
// half the employee's guaranteed minimum. Employees without a minimum never
// trip it.
func BelowGuaranteedFloor(employee *model.Employee, total float64) bool {
	return employee.MinHours > 0 && total < employee.MinHours*floorWarnRatio
}

// checkMinimumHours warns when an employee would fall below half their
// guaranteed minimum
func checkMinimumHours(_ *model.Suggestion, affected []*model.Shift, w *simWorld, employees map[string]*model.Employee, _ map[string]*model.Store) []model.ValidationCheck {
	var checks []model.ValidationCheck

	for _, employeeID := range affectedEmployeeIDs(affected) {
		employee, known := employees[employeeID]
		if !known {
			continue
		}

		total := 0.0
		for _, s := range w.byEmployee[employeeID] {
			total += s.Hours()
		}

		if !BelowGuaranteedFloor(employee, total) {
			continue
		}
		checks = append(checks, model.ValidationCheck{
			Name:        "minimum_hours",
			Severity:    model.CheckWarning,
			Message:     fmt.Sprintf("employee %s would work %.1fh, below half the guaranteed %.1fh minimum", employeeID, total, employee.MinHours),
			EmployeeIDs: []string{employeeID},
		})
	}

	return checks
}

// checkJuniorAssignments warns when a junior is scheduled for a long,
// evening or weekend shift without implied supervision
func checkJuniorAssignments(_ *model.Suggestion, affected []*model.Shift, _ *simWorld, employees map[string]*model.Employee, _ map[string]*model.Store) []model.ValidationCheck {
	var checks []model.ValidationCheck

	for _, shift := range affected {
		employee, known := employees[shift.EmployeeID]
		if !known || employee.Role != model.RoleJunior {
			continue
		}

		var reason string
		switch {
		case shift.Hours() > juniorMaxHours:
			reason = fmt.Sprintf("a %.1fh shift", shift.Hours())
		case isEvening(shift):
			reason = "an evening shift"
		case isWeekend(shift):
			reason = "a weekend shift"
		default:
			continue
		}

		checks = append(checks, model.ValidationCheck{
			Name:        "junior_supervision",
			Severity:    model.CheckWarning,
			Message:     fmt.Sprintf("junior employee %s is assigned %s (%s); consider adding a senior for supervision", employee.ID, reason, shift.ID),
			ShiftIDs:    []string{shift.ID},
			EmployeeIDs: []string{employee.ID},
		})
	}

	return checks
}

func isEvening(s *model.Shift) bool {
	start, err := model.ParseClock(s.StartTime)
	if err != nil {
		return false
	}
	return start.Hour() >= eveningStartHour
}

func isWeekend(s *model.Shift) bool {
	day, err := time.Parse(model.DateFormat, s.Date)
	if err != nil {
		return false
	}
	return day.Weekday() == time.Saturday || day.Weekday() == time.Sunday
}

// checkStoreAuthorization rejects assignments to stores the employee may
// not work at
func checkStoreAuthorization(_ *model.Suggestion, affected []*model.Shift, _ *simWorld, employees map[string]*model.Employee, _ map[string]*model.Store) []model.ValidationCheck {
	var checks []model.ValidationCheck

	for _, shift := range affected {
		employee, known := employees[shift.EmployeeID]
		if !known {
			continue
		}
		if employee.AuthorizedFor(shift.StoreID) {
			continue
		}
		checks = append(checks, model.ValidationCheck{
			Name:        "store_authorization",
			Severity:    model.CheckError,
			Message:     fmt.Sprintf("employee %s is not authorized to work at store %s (shift %s)", employee.ID, shift.StoreID, shift.ID),
			ShiftIDs:    []string{shift.ID},
			EmployeeIDs: []string{employee.ID},
		})
	}

	return checks
}

// checkOpeningHours warns when a shift falls outside the store's opening
// window for that weekday. Stores without configured hours are skipped.
func checkOpeningHours(_ *model.Suggestion, affected []*model.Shift, _ *simWorld, _ map[string]*model.Employee, stores map[string]*model.Store) []model.ValidationCheck {
	var checks []model.ValidationCheck

	for _, shift := range affected {
		store, known := stores[shift.StoreID]
		if !known || len(store.Hours) == 0 {
			continue
		}
		day, err := time.Parse(model.DateFormat, shift.Date)
		if err != nil {
			continue
		}
		window, open := store.Hours[strings.ToLower(day.Weekday().String())]
		if !open {
			checks = append(checks, model.ValidationCheck{
				Name:     "opening_hours",
				Severity: model.CheckWarning,
				Message:  fmt.Sprintf("store %s is closed on %ss (shift %s)", store.ID, day.Weekday(), shift.ID),
				ShiftIDs: []string{shift.ID},
			})
			continue
		}
		if shift.StartTime < window.Open || shift.EndTime > window.Close {
			checks = append(checks, model.ValidationCheck{
				Name:     "opening_hours",
				Severity: model.CheckWarning,
				Message: fmt.Sprintf("shift %s (%s-%s) falls outside store %s opening hours %s-%s",
					shift.ID, shift.StartTime, shift.EndTime, store.ID, window.Open, window.Close),
				ShiftIDs: []string{shift.ID},
			})
		}
	}

	return checks
}

// checkReferences rejects shifts pointing at unknown employees or stores
func checkReferences(_ *model.Suggestion, affected []*model.Shift, _ *simWorld, employees map[string]*model.Employee, stores map[string]*model.Store) []model.ValidationCheck {
	var checks []model.ValidationCheck

	for _, shift := range affected {
		if shift.EmployeeID == "" || employees[shift.EmployeeID] == nil {
			checks = append(checks, model.ValidationCheck{
				Name:     "referential_integrity",
				Severity: model.CheckError,
				Message:  fmt.Sprintf("shift %s references unknown employee %q", shift.ID, shift.EmployeeID),
				ShiftIDs: []string{shift.ID},
			})
		}
		if shift.StoreID == "" || stores[shift.StoreID] == nil {
			checks = append(checks, model.ValidationCheck{
				Name:     "referential_integrity",
				Severity: model.CheckError,
				Message:  fmt.Sprintf("shift %s references unknown store %q", shift.ID, shift.StoreID),
				ShiftIDs: []string{shift.ID},
			})
		}
	}

	return checks
}
