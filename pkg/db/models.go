package db

import "github.com/jakechorley/shift-rota/pkg/core/model"

// Category represents a worker category record. Priority decides who is sacrificed first
// when a slot must be forced (higher = more expendable).
type Category struct {
	ID       string
	Name     string
	Priority int
}

// AssignmentFilter narrows ListAssignments
type AssignmentFilter struct {
	LockedOnly bool
	// Status matches any status when empty
	Status model.AssignmentStatus
}

// ScheduleEntry is an assignment joined with its shift and worker names
type ScheduleEntry struct {
	model.Assignment
	ShiftName  string
	ShiftStart model.TimeOfDay
	WorkerName string
}
