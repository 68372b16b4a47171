package balancer

import (
	"sort"

	"github.com/retailops/shiftbalance/pkg/core/model"
)

const (
	// DefaultContractHours is the per-employee weekly ceiling when the
	// employee record carries none and no override applies
	DefaultContractHours = 32.0
	// minFloorHours is the lowest guaranteed weekly floor
	minFloorHours = 8.0
)

// Input is the entity snapshot a balancing pass runs over. Shifts should
// already be restricted to the target 7-day period by the caller.
type Input struct {
	Employees []*model.Employee
	Stores    []*model.Store
	Shifts    []*model.Shift

	// StoreFilter restricts balancing to a single store when non-empty
	StoreFilter string

	// ContractOverrides and FloorOverrides replace per-employee ceilings
	// and floors, keyed by employee id
	ContractOverrides map[string]float64
	FloorOverrides    map[string]float64

	// DefaultContract replaces DefaultContractHours when positive
	DefaultContract float64
}

// Report is the combined output of one balancing pass
type Report struct {
	Metrics     Metrics
	Suggestions []model.Suggestion
}

// Compute derives workload metrics and a ranked list of balancing
// suggestions from the current entity snapshot. It is a pure function:
// nothing in the input is mutated and equal inputs produce equal reports.
func Compute(in *Input) *Report {
	scope := buildScope(in)

	report := &Report{
		Metrics: computeMetrics(scope),
	}
	report.Suggestions = generateSuggestions(scope, &report.Metrics)

	sort.SliceStable(report.Suggestions, func(i, j int) bool {
		return model.PriorityRank(report.Suggestions[i].Priority) < model.PriorityRank(report.Suggestions[j].Priority)
	})

	return report
}

// scope is the filtered working set for one balancing pass
type scope struct {
	employees []*model.Employee
	stores    []*model.Store
	shifts    []*model.Shift

	ceilings map[string]float64
	floors   map[string]float64

	shiftsByEmployee map[string][]*model.Shift
}

func buildScope(in *Input) *scope {
	s := &scope{
		ceilings:         make(map[string]float64),
		floors:           make(map[string]float64),
		shiftsByEmployee: make(map[string][]*model.Shift),
	}

	defaultContract := in.DefaultContract
	if defaultContract <= 0 {
		defaultContract = DefaultContractHours
	}

	for _, e := range in.Employees {
		if !e.Active {
			continue
		}
		if in.StoreFilter != "" && e.StoreID != in.StoreFilter {
			continue
		}
		s.employees = append(s.employees, e)

		ceiling := e.ContractHours
		if override, ok := in.ContractOverrides[e.ID]; ok {
			ceiling = override
		}
		if ceiling <= 0 {
			ceiling = defaultContract
		}
		s.ceilings[e.ID] = ceiling

		floor := e.MinHours
		if override, ok := in.FloorOverrides[e.ID]; ok {
			floor = override
		}
		if floor <= 0 {
			floor = ceiling * 0.5
			if floor < minFloorHours {
				floor = minFloorHours
			}
		}
		s.floors[e.ID] = floor
	}

	sort.Slice(s.employees, func(i, j int) bool { return s.employees[i].ID < s.employees[j].ID })

	for _, store := range in.Stores {
		if !store.Active {
			continue
		}
		if in.StoreFilter != "" && store.ID != in.StoreFilter {
			continue
		}
		s.stores = append(s.stores, store)
	}
	sort.Slice(s.stores, func(i, j int) bool { return s.stores[i].ID < s.stores[j].ID })

	inScope := make(map[string]bool, len(s.employees))
	for _, e := range s.employees {
		inScope[e.ID] = true
	}

	for _, shift := range in.Shifts {
		if !inScope[shift.EmployeeID] {
			continue
		}
		s.shifts = append(s.shifts, shift)
		s.shiftsByEmployee[shift.EmployeeID] = append(s.shiftsByEmployee[shift.EmployeeID], shift)
	}
	for _, shifts := range s.shiftsByEmployee {
		sort.Slice(shifts, func(i, j int) bool { return shifts[i].ID < shifts[j].ID })
	}

	return s
}
