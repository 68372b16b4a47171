package prevalidate

import (
	"sort"
	"strings"

	"github.com/retailops/shiftbalance/pkg/core/model"
)

// Context is the entity snapshot a validation runs against. Shifts is the
// current, pre-change collection; affected shifts overlay it by id during
// simulation.
type Context struct {
	Employees []*model.Employee
	Stores    []*model.Store
	Shifts    []*model.Shift
}

// Validator runs the pre-apply check battery over a suggestion and the
// shifts it would touch. Results are cached; the owner must Invalidate the
// validator whenever the underlying collections change.
type Validator struct {
	cache *resultCache
}

// New creates a validator with the given cache capacity (0 means
// DefaultCacheSize)
func New(cacheSize int) *Validator {
	return &Validator{cache: newResultCache(cacheSize)}
}

// Invalidate drops every cached result
func (v *Validator) Invalidate() {
	v.cache.reset()
}

// CachedResults reports how many results are currently cached
func (v *Validator) CachedResults() int {
	return v.cache.len()
}

// Validate simulates the proposed change and runs, in order: overlap,
// consecutive-day, rest-period, contract-ceiling, minimum-hours, junior
// supervision, store authorization, opening-hours and referential
// integrity checks.
func (v *Validator) Validate(sug *model.Suggestion, affected []*model.Shift, ctx *Context) *model.ValidationResult {
	key := cacheKey(sug, affected)
	if cached, ok := v.cache.get(key); ok {
		return cached
	}

	result := v.run(sug, affected, ctx)
	v.cache.put(key, result)
	return result
}

// cacheKey derives a stable key from the suggestion id and the sorted
// ids+employee ids of the affected shifts
func cacheKey(sug *model.Suggestion, affected []*model.Shift) string {
	parts := make([]string, 0, len(affected))
	for _, s := range affected {
		parts = append(parts, s.ID+":"+s.EmployeeID)
	}
	sort.Strings(parts)
	return sug.ID + "|" + strings.Join(parts, ",")
}

func (v *Validator) run(sug *model.Suggestion, affected []*model.Shift, ctx *Context) *model.ValidationResult {
	result := &model.ValidationResult{}

	world := simulate(ctx.Shifts, affected)
	employees := indexEmployees(ctx.Employees)
	stores := indexStores(ctx.Stores)

	checks := []func(*model.Suggestion, []*model.Shift, *simWorld, map[string]*model.Employee, map[string]*model.Store) []model.ValidationCheck{
		checkOverlaps,
		checkConsecutiveDays,
		checkRestPeriods,
		checkContractCeiling,
		checkMinimumHours,
		checkJuniorAssignments,
		checkStoreAuthorization,
		checkOpeningHours,
		checkReferences,
	}
	for _, check := range checks {
		result.Checks = append(result.Checks, check(sug, affected, world, employees, stores)...)
	}

	result.Finalize()
	return result
}

// simWorld is the simulated post-change shift collection with lookups
type simWorld struct {
	shifts     []*model.Shift
	byEmployee map[string][]*model.Shift
}

// simulate overlays the affected shifts onto the current collection by id.
// Affected shifts not present in the collection are treated as additions.
func simulate(current, affected []*model.Shift) *simWorld {
	overlay := make(map[string]*model.Shift, len(affected))
	for _, s := range affected {
		overlay[s.ID] = s
	}

	w := &simWorld{byEmployee: make(map[string][]*model.Shift)}
	seen := make(map[string]bool, len(current))
	for _, s := range current {
		seen[s.ID] = true
		if replacement, ok := overlay[s.ID]; ok {
			s = replacement
		}
		w.shifts = append(w.shifts, s)
	}
	for _, s := range affected {
		if !seen[s.ID] {
			w.shifts = append(w.shifts, s)
		}
	}

	for _, s := range w.shifts {
		w.byEmployee[s.EmployeeID] = append(w.byEmployee[s.EmployeeID], s)
	}
	for _, shifts := range w.byEmployee {
		sort.Slice(shifts, func(i, j int) bool {
			a, errA := shifts[i].StartsAt()
			b, errB := shifts[j].StartsAt()
			if errA != nil || errB != nil || a.Equal(b) {
				return shifts[i].ID < shifts[j].ID
			}
			return a.Before(b)
		})
	}

	return w
}

func indexEmployees(employees []*model.Employee) map[string]*model.Employee {
	byID := make(map[string]*model.Employee, len(employees))
	for _, e := range employees {
		byID[e.ID] = e
	}
	return byID
}

func indexStores(stores []*model.Store) map[string]*model.Store {
	byID := make(map[string]*model.Store, len(stores))
	for _, s := range stores {
		byID[s.ID] = s
	}
	return byID
}

// affectedEmployeeIDs returns the sorted distinct employee ids of the
// affected shifts
func affectedEmployeeIDs(affected []*model.Shift) []string {
	set := make(map[string]bool, len(affected))
	for _, s := range affected {
		set[s.EmployeeID] = true
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// affectedIDSet indexes the affected shift ids
func affectedIDSet(affected []*model.Shift) map[string]bool {
	set := make(map[string]bool, len(affected))
	for _, s := range affected {
		set[s.ID] = true
	}
	return set
}
