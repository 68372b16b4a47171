package model

// SuggestionType classifies a proposed balancing action
type SuggestionType string

const (
	SuggestRedistribute SuggestionType = "redistribute"
	SuggestSwapShifts   SuggestionType = "swap_shifts"
	SuggestAddShift     SuggestionType = "add_shift"
	SuggestRemoveShift  SuggestionType = "remove_shift"
	SuggestAdjustHours  SuggestionType = "adjust_hours"
)

// Priority ranks suggestions for presentation and batch ordering
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var priorityRank = map[Priority]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

// PriorityRank returns the sort rank for a priority; unknown priorities sort last
func PriorityRank(p Priority) int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return len(priorityRank)
}

// ProposedChange describes what a suggestion would do and by how much
type ProposedChange struct {
	Description         string
	Hours               float64 // Magnitude of the change in hours
	ExpectedImprovement float64 // Estimated equity/workload improvement, 0-100
}

// Suggestion is a proposed, not-yet-applied corrective scheduling action.
// Suggestions are derived data and are regenerated on demand; they are
// never persisted.
type Suggestion struct {
	ID               string
	Type             SuggestionType
	Priority         Priority
	SourceEmployeeID string
	TargetEmployeeID string
	StoreID          string
	ShiftID          string // Set when the suggestion names a concrete shift
	Proposed         ProposedChange
	AutoApplicable   bool
	Approval         ApprovalState
}

// BalancingSummary aggregates what an executed suggestion changed
type BalancingSummary struct {
	ShiftsModified     int
	EmployeesAffected  int
	HoursRedistributed float64
}

// BalancingResult is the outcome of executing one suggestion
type BalancingResult struct {
	SuggestionID   string
	SuggestionType SuggestionType
	Success        bool
	ModifiedShifts []*Shift
	Errors         []string
	Warnings       []string
	Summary        BalancingSummary
}

// BatchResult aggregates sequential application of several suggestions
type BatchResult struct {
	Results             []*BalancingResult
	Succeeded           int
	Failed              int
	TotalShiftsModified int
	TotalHoursMoved     float64
}
