package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/balkashynov/todus/internal/models"
	"github.com/balkashynov/todus/internal/repository"
	"github.com/balkashynov/todus/internal/stats"
)

var (
	_ repository.SubtaskStore = (*LocalRepository)(nil)
	_ repository.StatsReader  = (*LocalRepository)(nil)
)

// ListSubtasks returns the checklist of a task in creation order
func (r *LocalRepository) ListSubtasks(ctx context.Context, taskID int64) ([]models.SubTask, error) {
	if _, err := r.GetTask(ctx, taskID); err != nil {
		return nil, err
	}
	var subs []models.SubTask
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Order("id ASC").Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// CreateSubtask adds a pending subtask to a task
func (r *LocalRepository) CreateSubtask(ctx context.Context, taskID int64, name string) (*models.SubTask, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("subtask name is required")
	}
	if _, err := r.GetTask(ctx, taskID); err != nil {
		return nil, err
	}
	sub := models.SubTask{TaskID: taskID, Name: name, Status: models.StatusPending}
	if err := r.db.WithContext(ctx).Create(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// UpdateSubtask stores the name and status of sub
func (r *LocalRepository) UpdateSubtask(ctx context.Context, sub models.SubTask) (*models.SubTask, error) {
	stored, err := r.getSubtask(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(sub.Name)
	if name == "" {
		return nil, errors.New("subtask name cannot be empty")
	}
	stored.Name = name
	if sub.Status != "" {
		if _, ok := models.ParseStatus(string(sub.Status)); !ok {
			return nil, fmt.Errorf("unknown status %q", sub.Status)
		}
		stored.Status = sub.Status
	}
	if err := r.db.WithContext(ctx).Save(stored).Error; err != nil {
		return nil, err
	}
	return stored, nil
}

// ToggleSubtask flips a subtask between pending and completed
func (r *LocalRepository) ToggleSubtask(ctx context.Context, id int64) (*models.SubTask, error) {
	sub, err := r.getSubtask(ctx, id)
	if err != nil {
		return nil, err
	}
	sub.Toggle()
	if err := r.db.WithContext(ctx).Save(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

// DeleteSubtask removes a subtask
func (r *LocalRepository) DeleteSubtask(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&models.SubTask{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("subtask #%d: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (r *LocalRepository) getSubtask(ctx context.Context, id int64) (*models.SubTask, error) {
	var sub models.SubTask
	err := r.db.WithContext(ctx).First(&sub, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("subtask #%d: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Stats summarizes every task in the local store
func (r *LocalRepository) Stats(ctx context.Context) (*stats.Summary, error) {
	tasks, err := r.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	var subs []models.SubTask
	if err := r.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, err
	}
	s := stats.Summarize(stats.Input{Tasks: tasks, Subtasks: subs, Now: r.clock.Now()})
	return &s, nil
}
