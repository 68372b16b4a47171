package model

import (
	"fmt"
	"time"
)

const (
	// DateFormat is the wire format for shift dates
	DateFormat = "2006-01-02"
	// ClockFormat is the wire format for shift start/end times
	ClockFormat = "15:04"
)

// Shift represents one assigned work shift
type Shift struct {
	ID           string
	EmployeeID   string
	StoreID      string
	Date         string // Date format
	StartTime    string // Clock format
	EndTime      string // Clock format
	BreakMinutes int
	ActualHours  float64 // Precomputed worked hours; 0 means derive from times
	Locked       bool    // Locked shifts are immutable to the engine
	LockReason   string
}

// Hours returns the worked hours for the shift, preferring the precomputed
// ActualHours field. Derived hours handle shifts crossing midnight (end before
// start adds 24h) and are clamped to zero.
func (s *Shift) Hours() float64 {
	if s.ActualHours > 0 {
		return s.ActualHours
	}
	start, err := ParseClock(s.StartTime)
	if err != nil {
		return 0
	}
	end, err := ParseClock(s.EndTime)
	if err != nil {
		return 0
	}
	if end.Before(start) {
		end = end.Add(24 * time.Hour)
	}
	hours := end.Sub(start).Hours() - float64(s.BreakMinutes)/60
	if hours < 0 {
		return 0
	}
	return hours
}

// StartsAt returns the shift start as an absolute time
func (s *Shift) StartsAt() (time.Time, error) {
	return time.Parse(DateFormat+" "+ClockFormat, s.Date+" "+s.StartTime)
}

// EndsAt returns the shift end as an absolute time, rolling over to the next
// day when the end clock time is before the start
func (s *Shift) EndsAt() (time.Time, error) {
	start, err := s.StartsAt()
	if err != nil {
		return time.Time{}, err
	}
	end, err := time.Parse(DateFormat+" "+ClockFormat, s.Date+" "+s.EndTime)
	if err != nil {
		return time.Time{}, err
	}
	if end.Before(start) {
		end = end.Add(24 * time.Hour)
	}
	return end, nil
}

// Clone returns a deep copy of the shift
func (s *Shift) Clone() *Shift {
	c := *s
	return &c
}

// CloneShifts deep-copies a shift collection
func CloneShifts(shifts []*Shift) []*Shift {
	copied := make([]*Shift, len(shifts))
	for i, s := range shifts {
		copied[i] = s.Clone()
	}
	return copied
}

// ParseClock parses a wall-clock time in Clock format
func ParseClock(value string) (time.Time, error) {
	t, err := time.Parse(ClockFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid clock time %q: %w", value, err)
	}
	return t, nil
}

// FormatClock renders a time back to Clock format
func FormatClock(t time.Time) string {
	return t.Format(ClockFormat)
}

// ShiftPatch is an explicit partial update for a shift. Only non-nil fields
// are applied, so a patch can never silently drop required fields.
type ShiftPatch struct {
	EmployeeID   *string
	StoreID      *string
	Date         *string
	StartTime    *string
	EndTime      *string
	BreakMinutes *int
	ActualHours  *float64
}

// IsZero reports whether the patch carries no changes
func (p ShiftPatch) IsZero() bool {
	return p.EmployeeID == nil && p.StoreID == nil && p.Date == nil &&
		p.StartTime == nil && p.EndTime == nil && p.BreakMinutes == nil &&
		p.ActualHours == nil
}

// Apply overlays the patch onto a copy of the shift
func (p ShiftPatch) Apply(s *Shift) *Shift {
	out := s.Clone()
	if p.EmployeeID != nil {
		out.EmployeeID = *p.EmployeeID
	}
	if p.StoreID != nil {
		out.StoreID = *p.StoreID
	}
	if p.Date != nil {
		out.Date = *p.Date
	}
	if p.StartTime != nil {
		out.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		out.EndTime = *p.EndTime
	}
	if p.BreakMinutes != nil {
		out.BreakMinutes = *p.BreakMinutes
	}
	if p.ActualHours != nil {
		out.ActualHours = *p.ActualHours
	}
	return out
}

// ShiftDraft carries the fields needed to create a new shift
type ShiftDraft struct {
	EmployeeID   string
	StoreID      string
	Date         string
	StartTime    string
	EndTime      string
	BreakMinutes int
}

// StringPtr, IntPtr and FloatPtr build patch fields inline
func StringPtr(v string) *string { return &v }
func IntPtr(v int) *int { return &v }
func FloatPtr(v float64) *float64 { return &v }
