package model

import "time"

type RequestType string

const (
	RequestWork RequestType = "work"
	RequestOff  RequestType = "off"
)

func (t RequestType) IsValid() bool {
	return t == RequestWork || t == RequestOff
}

type AssignmentStatus string

const (
	StatusDraft     AssignmentStatus = "draft"
	StatusPublished AssignmentStatus = "published"
)

// DefaultCategoryPriority is used for workers with no category at a site
const DefaultCategoryPriority = 10

// Site is a location with its own shifts and staff
type Site struct {
	ID          string
	Name        string
	Description string
}

// Shift represents a recurring duty slot at a site
type Shift struct {
	ID            string
	SiteID        string
	Name          string
	Start         TimeOfDay
	End           TimeOfDay
	RequiredStaff int
	// ActiveDays is the set of weekdays the shift runs on (zero value means every day)
	ActiveDays WeekdayMask
}

// IsNight returns true if the shift crosses midnight or starts at 20:00 or later
func (s Shift) IsNight() bool {
	return s.End < s.Start || s.Start.Hour() >= 20
}

// ActiveOn returns true if the shift runs on the given weekday
func (s Shift) ActiveOn(day time.Weekday) bool {
	mask := s.ActiveDays
	if mask == 0 {
		mask = AllWeekdays
	}
	return mask.Has(day)
}

// Worker represents a member of staff assigned to a site
type Worker struct {
	ID   string
	Name string
	// CategoryPriority is the site-scoped category priority (higher = more expendable)
	CategoryPriority int
}

// Request is a worker's preference for a single date
type Request struct {
	SiteID   string
	WorkerID string
	Date     time.Time
	Type     RequestType
}

// Assignment places a worker on a shift for a date
type Assignment struct {
	ID       string
	SiteID   string
	Date     time.Time
	ShiftID  string
	WorkerID string
	Locked   bool
	Status   AssignmentStatus
}

// ConflictFailure explains why a single worker could not take a slot
type ConflictFailure struct {
	WorkerID   string
	WorkerName string
	Reason     string
}

// ConflictEntry records a slot that could not be filled cleanly.
// In normal mode Failures lists every worker still free that day with their blocking reason.
// In forced mode WorkerID identifies the worker placed in spite of Reason.
type ConflictEntry struct {
	Date      time.Time
	ShiftID   string
	ShiftName string
	Failures  []ConflictFailure

	WorkerID   string
	WorkerName string
	Reason     string
}

// Forced returns true if the entry annotates a forced assignment rather than an unfilled slot
func (c ConflictEntry) Forced() bool {
	return c.WorkerID != ""
}
