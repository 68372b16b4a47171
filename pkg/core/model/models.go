package model

// Role is an employee's seniority level
type Role string

const (
	RoleJunior  Role = "junior"
	RoleSenior  Role = "senior"
	RoleManager Role = "manager"
)

func (r Role) IsValid() bool {
	return r == RoleJunior || r == RoleSenior || r == RoleManager
}

// ApprovalState is the canonical tri-state for reviewable actions.
// A suggestion is pending until a reviewer approves or rejects it;
// boolean flags are never used for approval.
type ApprovalState string

const (
	ApprovalPending  ApprovalState = "pending"
	ApprovalApproved ApprovalState = "approved"
	ApprovalRejected ApprovalState = "rejected"
)

// Employee represents a retail-store employee
type Employee struct {
	ID                 string
	FirstName          string
	LastName           string
	Role               Role
	StoreID            string  // Home store
	ContractHours      float64 // Weekly contract ceiling
	MinHours           float64 // Guaranteed weekly minimum
	Active             bool
	AuthorizedStoreIDs []string // Stores beyond the home store the employee may work at
}

// AuthorizedFor reports whether the employee may be assigned to the given store.
// The home store is always authorized.
func (e *Employee) AuthorizedFor(storeID string) bool {
	if storeID == e.StoreID {
		return true
	}
	for _, id := range e.AuthorizedStoreIDs {
		if id == storeID {
			return true
		}
	}
	return false
}

// OpeningHours is a store's opening window for one weekday
type OpeningHours struct {
	Open  string // Clock format, e.g. "09:00"
	Close string
}

// Store represents a retail store
type Store struct {
	ID     string
	Name   string
	Active bool
	Hours  map[string]OpeningHours // Keyed by lowercase weekday name, e.g. "monday"
}
