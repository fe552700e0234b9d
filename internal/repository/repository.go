// Package repository defines the task service boundary and its HTTP client.
package repository

import (
	"context"
	"time"

	"github.com/balkashynov/todus/internal/models"
	"github.com/balkashynov/todus/internal/stats"
)

// TaskRepository is the authoritative store for tasks, categories and
// priorities. Writes that return a task return a non-nil one on success.
type TaskRepository interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	ListTrashed(ctx context.Context, categoryID *int64) ([]models.Task, error)
	CreateTask(ctx context.Context, fields TaskFields) (*models.Task, error)
	UpdateTask(ctx context.Context, id int64, fields TaskFields) (*models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	SetTrashed(ctx context.Context, id int64, trashed bool) (*models.Task, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListPriorities(ctx context.Context) ([]models.Priority, error)
}

// TaskFields is a partial task update. Nil fields are left untouched.
type TaskFields struct {
	Name         *string
	Description  *string
	Status       *models.Status
	PriorityID   *int64
	CategoryID   *int64
	DueDate      *time.Time
	ClearDueDate bool
}

// IsEmpty reports whether the update would change nothing
func (f TaskFields) IsEmpty() bool {
	return f.Name == nil && f.Description == nil && f.Status == nil &&
		f.PriorityID == nil && f.CategoryID == nil && f.DueDate == nil && !f.ClearDueDate
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}

// CategoryWriter is implemented by repositories that can create and edit categories
type CategoryWriter interface {
	SaveCategory(ctx context.Context, category *models.Category) error
}

// SubtaskStore is implemented by repositories that keep task checklists
type SubtaskStore interface {
	ListSubtasks(ctx context.Context, taskID int64) ([]models.SubTask, error)
	CreateSubtask(ctx context.Context, taskID int64, name string) (*models.SubTask, error)
	// UpdateSubtask stores the name and status of sub
	UpdateSubtask(ctx context.Context, sub models.SubTask) (*models.SubTask, error)
	// ToggleSubtask flips a subtask between pending and completed
	ToggleSubtask(ctx context.Context, id int64) (*models.SubTask, error)
	DeleteSubtask(ctx context.Context, id int64) error
}

// StatsReader is implemented by repositories that can summarize the user's tasks
type StatsReader interface {
	Stats(ctx context.Context) (*stats.Summary, error)
}
