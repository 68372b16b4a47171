package detector

import (
	"sort"
	"time"

	"github.com/retailops/shiftbalance/pkg/core/model"
)

// Input is the entity snapshot a detection pass runs over. Detection never
// mutates it.
type Input struct {
	Employees []*model.Employee
	Stores    []*model.Store
	Shifts    []*model.Shift

	// Now anchors the understaffing lookahead window. Zero means time.Now.
	Now time.Time

	// RequiredStaff returns the minimum headcount for a store on a date.
	// Nil means DefaultRequiredStaff for every store and day.
	RequiredStaff func(storeID, date string) int
}

// DefaultRequiredStaff is the minimum assigned headcount per store per day
// when no override applies
const DefaultRequiredStaff = 2

// Rule detects one class of scheduling conflict. Rules are pure: evaluating
// the same input twice yields the same conflicts in the same order.
type Rule interface {
	Name() string
	Evaluate(in *Input) []model.Conflict
}

// Detector runs an ordered set of rules over an entity snapshot
type Detector struct {
	rules []Rule
}

// New creates a detector with the standard rule set
func New() *Detector {
	return &Detector{
		rules: []Rule{
			NewOverlapRule(),
			NewRestRule(),
			NewOvertimeRule(),
			NewUnderstaffingRule(),
		},
	}
}

// NewWithRules creates a detector with a custom rule set
func NewWithRules(rules ...Rule) *Detector {
	return &Detector{rules: rules}
}

// Detect evaluates every rule in order and returns the combined conflicts.
// Output ordering is fully determined by the input.
func (d *Detector) Detect(in *Input) []model.Conflict {
	conflicts := make([]model.Conflict, 0)
	for _, rule := range d.rules {
		conflicts = append(conflicts, rule.Evaluate(in)...)
	}
	return conflicts
}

// employeesByID builds a lookup map over the input employees
func employeesByID(in *Input) map[string]*model.Employee {
	byID := make(map[string]*model.Employee, len(in.Employees))
	for _, e := range in.Employees {
		byID[e.ID] = e
	}
	return byID
}

// shiftsByEmployee groups shifts per employee, sorted by start datetime then id.
// The returned employee id list is sorted so iteration order is stable.
func shiftsByEmployee(in *Input) ([]string, map[string][]*model.Shift) {
	grouped := make(map[string][]*model.Shift)
	for _, s := range in.Shifts {
		grouped[s.EmployeeID] = append(grouped[s.EmployeeID], s)
	}

	ids := make([]string, 0, len(grouped))
	for id, shifts := range grouped {
		sort.Slice(shifts, func(i, j int) bool {
			a, errA := shifts[i].StartsAt()
			b, errB := shifts[j].StartsAt()
			if errA != nil || errB != nil || a.Equal(b) {
				return shifts[i].ID < shifts[j].ID
			}
			return a.Before(b)
		})
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids, grouped
}
