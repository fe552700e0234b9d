package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/balkashynov/todus/internal/models"
	"github.com/balkashynov/todus/internal/stats"
)

var (
	_ SubtaskStore = (*Client)(nil)
	_ StatsReader  = (*Client)(nil)
)

// ListSubtasks returns the checklist of a task
func (c *Client) ListSubtasks(ctx context.Context, taskID int64) ([]models.SubTask, error) {
	var dtos []subtaskDTO
	path := fmt.Sprintf("/api/subtasks/task/%d", taskID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &dtos); err != nil {
		return nil, fmt.Errorf("failed to list subtasks of task #%d: %w", taskID, err)
	}
	subs := make([]models.SubTask, 0, len(dtos))
	for _, d := range dtos {
		sub, err := d.toModel()
		if err != nil {
			return nil, err
		}
		if sub.TaskID == 0 {
			sub.TaskID = taskID
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// CreateSubtask adds a pending subtask to a task
func (c *Client) CreateSubtask(ctx context.Context, taskID int64, name string) (*models.SubTask, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("subtask name is required")
	}
	var dto subtaskDTO
	path := fmt.Sprintf("/api/subtasks/create/%d", taskID)
	body := subtaskRequest{Name: name, Status: wireStatus(models.StatusPending)}
	if err := c.do(ctx, http.MethodPost, path, nil, body, &dto); err != nil {
		return nil, fmt.Errorf("failed to create subtask on task #%d: %w", taskID, err)
	}
	return subtaskResult(dto, models.SubTask{TaskID: taskID, Name: name, Status: models.StatusPending})
}

// UpdateSubtask stores the name and status of sub
func (c *Client) UpdateSubtask(ctx context.Context, sub models.SubTask) (*models.SubTask, error) {
	sub.Name = strings.TrimSpace(sub.Name)
	if sub.Name == "" {
		return nil, errors.New("subtask name cannot be empty")
	}
	if sub.Status == "" {
		sub.Status = models.StatusPending
	}
	var dto subtaskDTO
	path := fmt.Sprintf("/api/subtasks/update/%d", sub.ID)
	body := subtaskRequest{Name: sub.Name, Status: wireStatus(sub.Status)}
	if err := c.do(ctx, http.MethodPut, path, nil, body, &dto); err != nil {
		return nil, fmt.Errorf("failed to update subtask #%d: %w", sub.ID, err)
	}
	return subtaskResult(dto, sub)
}

// ToggleSubtask flips a subtask between pending and completed
func (c *Client) ToggleSubtask(ctx context.Context, id int64) (*models.SubTask, error) {
	var dto subtaskDTO
	path := fmt.Sprintf("/api/subtasks/complete/%d", id)
	if err := c.do(ctx, http.MethodPut, path, nil, struct{}{}, &dto); err != nil {
		return nil, fmt.Errorf("failed to toggle subtask #%d: %w", id, err)
	}
	return subtaskResult(dto, models.SubTask{ID: id})
}

// DeleteSubtask removes a subtask
func (c *Client) DeleteSubtask(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/subtasks/delete/%d", id)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete subtask #%d: %w", id, err)
	}
	return nil
}

// subtaskResult converts a response body, falling back to what was sent
// when the service answered without one
func subtaskResult(dto subtaskDTO, sent models.SubTask) (*models.SubTask, error) {
	if dto.ID == 0 {
		return &sent, nil
	}
	sub, err := dto.toModel()
	if err != nil {
		return nil, err
	}
	if sub.TaskID == 0 {
		sub.TaskID = sent.TaskID
	}
	return &sub, nil
}

// Stats returns the service's summary of the authenticated user's tasks
func (c *Client) Stats(ctx context.Context) (*stats.Summary, error) {
	var dto statsDTO
	if err := c.do(ctx, http.MethodGet, "/api/users/stats", nil, nil, &dto); err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	return dto.toSummary()
}
