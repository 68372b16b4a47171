package model

// ConflictType classifies a detected scheduling violation
type ConflictType string

const (
	ConflictOverlap       ConflictType = "overlap"
	ConflictRestViolation ConflictType = "rest_violation"
	ConflictOvertime      ConflictType = "overtime"
	ConflictUnderstaffing ConflictType = "understaffing"
	ConflictSkillMismatch ConflictType = "skill_mismatch"
	ConflictAvailability  ConflictType = "availability"
)

// Severity ranks how urgent a conflict or check outcome is
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// severityRank orders severities for sorting (critical first)
var severityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
}

// SeverityRank returns the sort rank for a severity; unknown severities sort last
func SeverityRank(s Severity) int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return len(severityRank)
}

// Conflict is a detected rule violation in the current shift assignment
type Conflict struct {
	ID          string
	Type        ConflictType
	Severity    Severity
	ShiftIDs    []string
	EmployeeID  string
	StoreID     string
	Date        string // Date format; set for per-day conflicts such as understaffing
	Description string
	Strategies  []ResolutionStrategy
}

// ImpactEstimate captures the expected effect of applying a resolution,
// each delta in the range [-100, 100]
type ImpactEstimate struct {
	Satisfaction float64
	Efficiency   float64
	Compliance   float64
}

// ResolutionStrategy is one candidate way to resolve a conflict
type ResolutionStrategy struct {
	ID                    string
	Description           string
	Confidence            int // 0-100
	Impact                ImpactEstimate
	EstimatedMinutesSaved int
	EstimatedCost         float64 // Extra labor cost of applying the strategy, if any
	Steps                 []ResolutionStep
}

// StepKind identifies the typed mutation or side effect a resolution step performs
type StepKind string

const (
	StepModifyHours   StepKind = "modify_hours"
	StepMoveShift     StepKind = "move_shift"
	StepNotifyManager StepKind = "notify_manager"
)

// ResolutionStep is a single typed action inside a resolution strategy.
// Exactly the fields for its Kind are meaningful; the resolver switches
// exhaustively over Kind.
type ResolutionStep struct {
	Kind StepKind

	// modify_hours
	ShiftID      string
	NewStartTime string // Clock format; empty means keep
	NewEndTime   string // Clock format; empty means keep

	// move_shift
	FromEmployeeID string
	// Target is resolved at execution time: the first same-store employee
	// not implicated in the conflict.

	// notify_manager
	StoreID  string
	Message  string
	Severity Severity
}
