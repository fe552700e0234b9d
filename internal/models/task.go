package models

import (
	"time"
)

// Status is the completion state of a task
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
)

// ParseStatus normalizes a status string. The backend historically used
// "PENDENT" for pending tasks; it is accepted as an alias.
func ParseStatus(s string) (Status, bool) {
	switch s {
	case "PENDING", "PENDENT", "pending":
		return StatusPending, true
	case "COMPLETED", "completed", "done":
		return StatusCompleted, true
	default:
		return "", false
	}
}

// Task represents a todo item owned by the remote task service
type Task struct {
	ID          int64      `gorm:"primarykey" json:"id"`
	Name        string     `gorm:"not null" json:"name"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	DateCreated time.Time  `gorm:"not null" json:"dateCreated"`
	CompletedAt *time.Time `json:"completedAt"`
	DateTrashed *time.Time `json:"dateTrashed"`
	Status      Status     `gorm:"default:PENDING" json:"status"`
	Trashed     bool       `gorm:"default:false;index" json:"trashed"`

	// Relationships
	CategoryID *int64    `json:"categoryId"`
	Category   *Category `gorm:"constraint:OnDelete:SET NULL;" json:"category"`
	PriorityID *int64    `json:"priorityId"`
	Priority   *Priority `json:"priority"`
}

// IsCompleted reports whether the task is in the COMPLETED state
func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// Complete marks the task as completed at now
func (t *Task) Complete(now time.Time) {
	t.Status = StatusCompleted
	t.CompletedAt = &now
}

// Reopen moves the task back to PENDING and clears CompletedAt
func (t *Task) Reopen() {
	t.Status = StatusPending
	t.CompletedAt = nil
}

// MarkTrashed moves the task to trash at now
func (t *Task) MarkTrashed(now time.Time) {
	t.Trashed = true
	t.DateTrashed = &now
}

// Restore takes the task out of the trash
func (t *Task) Restore() {
	t.Trashed = false
	t.DateTrashed = nil
}

// CategoryRef returns the category id the task belongs to, if any
func (t *Task) CategoryRef() (int64, bool) {
	if t.CategoryID != nil {
		return *t.CategoryID, true
	}
	if t.Category != nil {
		return t.Category.ID, true
	}
	return 0, false
}

// PriorityRef returns the priority id of the task, if any
func (t *Task) PriorityRef() (int64, bool) {
	if t.PriorityID != nil {
		return *t.PriorityID, true
	}
	if t.Priority != nil {
		return t.Priority.ID, true
	}
	return 0, false
}
