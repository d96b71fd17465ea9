package model

import (
	"time"
)

// Priority is the task priority level.
type Priority string

// Priority levels, ordered from least to most urgent.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ValidPriority reports whether p is one of the known priority levels.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Status is the derived, non-persisted state of a task. It is computed
// from due_date and completed_at relative to a reference date and is
// never written to the store.
type Status string

// Status labels as exposed to API clients.
const (
	StatusDone     Status = "Done"
	StatusMissed   Status = "Missed/Late"
	StatusDueToday Status = "Due Today"
	StatusUpcoming Status = "Upcoming"
)

// ValidStatus reports whether s is one of the known status labels.
func ValidStatus(s Status) bool {
	switch s {
	case StatusDone, StatusMissed, StatusDueToday, StatusUpcoming:
		return true
	}
	return false
}

// Task represents a work item assigned from a creator to an assignee.
type Task struct {
	ID          string     `gorm:"primarykey;size:36" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"size:10000" json:"description"`
	DueDate     time.Time  `gorm:"not null;index:idx_tasks_assignee_due,priority:2" json:"due_date"`
	Priority    Priority   `gorm:"size:10;not null;default:medium" json:"priority"`
	CreatorID   string     `gorm:"size:36;not null;index" json:"creator_id"`
	AssigneeID  string     `gorm:"size:36;not null;index:idx_tasks_assignee_due,priority:1;index:idx_tasks_assignee_completed,priority:1" json:"assignee_id"`
	CompletedAt *time.Time `gorm:"index:idx_tasks_assignee_completed,priority:2" json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the table name for the Task model.
func (Task) TableName() string {
	return "tasks"
}

// Status derives the task's display status relative to today.
func (t *Task) Status(today time.Time) Status {
	return ResolveStatus(t.DueDate, t.CompletedAt, today)
}

// ResolveStatus computes the display status of a task from its due date
// and completion timestamp. A non-nil completedAt always wins; otherwise
// dueDate is compared to today at calendar-day granularity. The reference
// date is injected so the function stays pure.
func ResolveStatus(dueDate time.Time, completedAt *time.Time, today time.Time) Status {
	if completedAt != nil {
		return StatusDone
	}

	due := DateOnly(dueDate)
	day := DateOnly(today)

	switch {
	case due.Before(day):
		return StatusMissed
	case due.Equal(day):
		return StatusDueToday
	default:
		return StatusUpcoming
	}
}

// DateOnly truncates t to midnight UTC, discarding the time component.
// Due dates are stored and compared at this granularity only.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a due date from either a plain calendar date
// (YYYY-MM-DD) or an RFC 3339 timestamp, truncated to the day.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return DateOnly(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}
