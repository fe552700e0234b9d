package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/balkashynov/todus/internal/clock"
	"github.com/balkashynov/todus/internal/models"
	"github.com/balkashynov/todus/internal/repository"
)

// defaultPriorities are seeded on first run, like the backend's data loader
var defaultPriorities = []models.Priority{
	{Name: "Low", Color: "#22C55E", Level: 1},
	{Name: "Medium", Color: "#F59E0B", Level: 2},
	{Name: "High", Color: "#EF4444", Level: 3},
}

// LocalRepository is a TaskRepository backed by the local SQLite database.
// It is used when no task service URL is configured.
type LocalRepository struct {
	db    *gorm.DB
	clock clock.Clock
}

var (
	_ repository.TaskRepository = (*LocalRepository)(nil)
	_ repository.CategoryWriter = (*LocalRepository)(nil)
)

// NewLocalRepository wraps db and seeds default priorities when none exist
func NewLocalRepository(db *gorm.DB, c clock.Clock) (*LocalRepository, error) {
	if c == nil {
		c = clock.System{}
	}
	r := &LocalRepository{db: db, clock: c}
	if err := r.seedPriorities(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *LocalRepository) seedPriorities() error {
	var count int64
	if err := r.db.Model(&models.Priority{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count priorities: %w", err)
	}
	if count > 0 {
		return nil
	}
	priorities := make([]models.Priority, len(defaultPriorities))
	copy(priorities, defaultPriorities)
	if err := r.db.Create(&priorities).Error; err != nil {
		return fmt.Errorf("failed to seed priorities: %w", err)
	}
	return nil
}

func (r *LocalRepository) tasks(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Category").Preload("Priority")
}

// ListTasks returns every task, trashed or not
func (r *LocalRepository) ListTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.tasks(ctx).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListTrashed returns trashed tasks, optionally of a single category
func (r *LocalRepository) ListTrashed(ctx context.Context, categoryID *int64) ([]models.Task, error) {
	query := r.tasks(ctx).Where("trashed = ?", true)
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	var tasks []models.Task
	if err := query.Order("date_trashed ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask retrieves a task by ID
func (r *LocalRepository) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	var task models.Task
	err := r.tasks(ctx).First(&task, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("task #%d: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTask creates a new pending task
func (r *LocalRepository) CreateTask(ctx context.Context, fields repository.TaskFields) (*models.Task, error) {
	if fields.Name == nil || strings.TrimSpace(*fields.Name) == "" {
		return nil, errors.New("task name is required")
	}
	task := models.Task{
		DateCreated: r.clock.Now(),
		Status:      models.StatusPending,
	}
	if err := r.apply(ctx, &task, fields); err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Omit("Category", "Priority").Create(&task).Error; err != nil {
		return nil, err
	}
	return r.GetTask(ctx, task.ID)
}

// UpdateTask applies a partial update
func (r *LocalRepository) UpdateTask(ctx context.Context, id int64, fields repository.TaskFields) (*models.Task, error) {
	task, err := r.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.apply(ctx, task, fields); err != nil {
		return nil, err
	}
	if err := r.save(ctx, task); err != nil {
		return nil, err
	}
	return r.GetTask(ctx, id)
}

// apply copies fields onto task, keeping the completion invariant
func (r *LocalRepository) apply(ctx context.Context, task *models.Task, f repository.TaskFields) error {
	if f.Name != nil {
		name := strings.TrimSpace(*f.Name)
		if name == "" {
			return errors.New("task name cannot be empty")
		}
		task.Name = name
	}
	if f.Description != nil {
		task.Description = *f.Description
	}
	if f.PriorityID != nil {
		var priority models.Priority
		if err := r.db.WithContext(ctx).First(&priority, *f.PriorityID).Error; err != nil {
			return fmt.Errorf("priority #%d not found", *f.PriorityID)
		}
		task.PriorityID = &priority.ID
		task.Priority = &priority
	}
	if f.CategoryID != nil {
		var category models.Category
		if err := r.db.WithContext(ctx).First(&category, *f.CategoryID).Error; err != nil {
			return fmt.Errorf("category #%d not found", *f.CategoryID)
		}
		task.CategoryID = &category.ID
		task.Category = &category
	}
	if f.ClearDueDate {
		task.DueDate = nil
	} else if f.DueDate != nil {
		due := *f.DueDate
		task.DueDate = &due
	}
	if f.Status != nil {
		switch *f.Status {
		case models.StatusCompleted:
			if !task.IsCompleted() {
				task.Complete(r.clock.Now())
			}
		case models.StatusPending:
			task.Reopen()
		default:
			return fmt.Errorf("unknown status %q", *f.Status)
		}
	}
	return nil
}

func (r *LocalRepository) save(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit("Category", "Priority").Save(task).Error
}

// DeleteTask permanently removes a task and its subtasks
func (r *LocalRepository) DeleteTask(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Task{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("task #%d: %w", id, repository.ErrNotFound)
		}
		return tx.Where("task_id = ?", id).Delete(&models.SubTask{}).Error
	})
}

// SetTrashed moves a task to the trash or restores it
func (r *LocalRepository) SetTrashed(ctx context.Context, id int64, trashed bool) (*models.Task, error) {
	task, err := r.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if trashed == task.Trashed {
		return task, nil
	}
	if trashed {
		task.MarkTrashed(r.clock.Now())
	} else {
		task.Restore()
	}
	if err := r.save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ListCategories returns every category ordered by name
func (r *LocalRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// ListPriorities returns every priority ordered by level
func (r *LocalRepository) ListPriorities(ctx context.Context) ([]models.Priority, error) {
	var priorities []models.Priority
	if err := r.db.WithContext(ctx).Order("level ASC").Find(&priorities).Error; err != nil {
		return nil, err
	}
	return priorities, nil
}

// SaveCategory creates or updates a category
func (r *LocalRepository) SaveCategory(ctx context.Context, category *models.Category) error {
	if err := category.Validate(); err != nil {
		return err
	}
	if category.OrderTasks == "" {
		category.OrderTasks = models.DefaultOrder
	}
	return r.db.WithContext(ctx).Save(category).Error
}
