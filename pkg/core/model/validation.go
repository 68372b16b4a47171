package model

// CheckSeverity classifies a validation check outcome
type CheckSeverity string

const (
	CheckError   CheckSeverity = "error"
	CheckWarning CheckSeverity = "warning"
	CheckInfo    CheckSeverity = "info"
)

// ValidationCheck is one named rule outcome from pre-apply validation
type ValidationCheck struct {
	Name        string
	Severity    CheckSeverity
	Message     string
	ShiftIDs    []string
	EmployeeIDs []string
}

// ValidationResult aggregates a battery of checks.
// IsValid means no error-severity checks fired; CanProceed mirrors IsValid.
type ValidationResult struct {
	Checks           []ValidationCheck
	IsValid          bool
	CanProceed       bool
	EstimatedSuccess int // 0-100
}

// Errors returns the error-severity checks
func (r *ValidationResult) Errors() []ValidationCheck {
	return r.filter(CheckError)
}

// Warnings returns the warning-severity checks
func (r *ValidationResult) Warnings() []ValidationCheck {
	return r.filter(CheckWarning)
}

func (r *ValidationResult) filter(sev CheckSeverity) []ValidationCheck {
	var out []ValidationCheck
	for _, c := range r.Checks {
		if c.Severity == sev {
			out = append(out, c)
		}
	}
	return out
}

// Finalize computes the aggregate fields from the collected checks.
// Estimated success starts at 100 and loses 30 per error and 10 per
// warning, floored at zero.
func (r *ValidationResult) Finalize() {
	errs := 0
	warns := 0
	for _, c := range r.Checks {
		switch c.Severity {
		case CheckError:
			errs++
		case CheckWarning:
			warns++
		}
	}
	r.IsValid = errs == 0
	r.CanProceed = r.IsValid
	r.EstimatedSuccess = 100 - 30*errs - 10*warns
	if r.EstimatedSuccess < 0 {
		r.EstimatedSuccess = 0
	}
}
