package db

// Employee represents a database employee record
type Employee struct {
	ID                 string
	FirstName          string
	LastName           string
	Role               string
	StoreID            string
	ContractHours      float64
	MinHours           float64
	Active             bool
	AuthorizedStoreIDs []string
}

// Store represents a database store record. OpeningHours holds the weekly
// opening windows as a JSON object keyed by lowercase weekday name.
type Store struct {
	ID           string
	Name         string
	Active       bool
	OpeningHours string
}

// Shift represents a database shift record
type Shift struct {
	ID           string
	EmployeeID   string
	StoreID      string
	ShiftDate    string
	StartTime    string
	EndTime      string
	BreakMinutes int
	ActualHours  float64
	Locked       bool
	LockReason   string
}
