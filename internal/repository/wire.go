package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/balkashynov/todus/internal/models"
	"github.com/balkashynov/todus/internal/stats"
)

// The backend serializes LocalDateTime without a zone; those values are
// interpreted in the client's local zone.
var wireTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// wireTime is a nullable timestamp as sent by the task service
type wireTime struct {
	time.Time
}

func (wt *wireTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		wt.Time = time.Time{}
		return nil
	}
	for _, layout := range wireTimeLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			wt.Time = t
			return nil
		}
	}
	return fmt.Errorf("failed to parse task service time %q", s)
}

func (wt wireTime) MarshalJSON() ([]byte, error) {
	if wt.Time.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + wt.Time.Format(time.RFC3339) + `"`), nil
}

func (wt *wireTime) ptr() *time.Time {
	if wt == nil || wt.Time.IsZero() {
		return nil
	}
	t := wt.Time
	return &t
}

func toWire(t *time.Time) *wireTime {
	if t == nil {
		return nil
	}
	return &wireTime{Time: *t}
}

type taskDTO struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	DueDate     *wireTime        `json:"dueDate"`
	DateCreated *wireTime        `json:"dateCreated"`
	CompletedAt *wireTime        `json:"completedAt"`
	DateTrashed *wireTime        `json:"dateTrashed"`
	Status      string           `json:"status"`
	Trashed     bool             `json:"trashed"`
	CategoryID  *int64           `json:"categoryId"`
	Category    *models.Category `json:"category"`
	PriorityID  *int64           `json:"priorityId"`
	Priority    *models.Priority `json:"priority"`
}

func (d taskDTO) toModel() (models.Task, error) {
	status := models.StatusPending
	if d.Status != "" {
		s, ok := models.ParseStatus(d.Status)
		if !ok {
			return models.Task{}, fmt.Errorf("task %d: unknown status %q", d.ID, d.Status)
		}
		status = s
	}

	t := models.Task{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		DueDate:     d.DueDate.ptr(),
		CompletedAt: d.CompletedAt.ptr(),
		DateTrashed: d.DateTrashed.ptr(),
		Status:      status,
		Trashed:     d.Trashed,
		CategoryID:  d.CategoryID,
		Category:    d.Category,
		PriorityID:  d.PriorityID,
		Priority:    d.Priority,
	}
	if created := d.DateCreated.ptr(); created != nil {
		t.DateCreated = *created
	}
	if t.CategoryID == nil && t.Category != nil {
		t.CategoryID = Ptr(t.Category.ID)
	}
	if t.PriorityID == nil && t.Priority != nil {
		t.PriorityID = Ptr(t.Priority.ID)
	}
	return t, nil
}

func toModels(dtos []taskDTO) ([]models.Task, error) {
	tasks := make([]models.Task, 0, len(dtos))
	for _, d := range dtos {
		t, err := d.toModel()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// taskRequest is the body of create and update calls
type taskRequest struct {
	Name         *string   `json:"name,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Status       *string   `json:"status,omitempty"`
	PriorityID   *int64    `json:"priorityId,omitempty"`
	CategoryID   *int64    `json:"categoryId,omitempty"`
	DueDate      *wireTime `json:"dueDate,omitempty"`
	ClearDueDate bool      `json:"clearDueDate,omitempty"`
}

func newTaskRequest(f TaskFields) taskRequest {
	req := taskRequest{
		Name:         f.Name,
		Description:  f.Description,
		PriorityID:   f.PriorityID,
		CategoryID:   f.CategoryID,
		DueDate:      toWire(f.DueDate),
		ClearDueDate: f.ClearDueDate,
	}
	if f.Status != nil {
		req.Status = Ptr(wireStatus(*f.Status))
	}
	return req
}

// wireStatus spells a status the way the service's enum does; pending is
// PENDENT there
func wireStatus(s models.Status) string {
	if s == models.StatusPending {
		return "PENDENT"
	}
	return string(s)
}

type subtaskDTO struct {
	ID     int64  `json:"id"`
	TaskID int64  `json:"taskId"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Task   *struct {
		ID int64 `json:"id"`
	} `json:"task"`
}

func (d subtaskDTO) toModel() (models.SubTask, error) {
	status := models.StatusPending
	if d.Status != "" {
		s, ok := models.ParseStatus(d.Status)
		if !ok {
			return models.SubTask{}, fmt.Errorf("subtask %d: unknown status %q", d.ID, d.Status)
		}
		status = s
	}
	sub := models.SubTask{ID: d.ID, TaskID: d.TaskID, Name: d.Name, Status: status}
	if sub.TaskID == 0 && d.Task != nil {
		sub.TaskID = d.Task.ID
	}
	return sub, nil
}

// subtaskRequest is the body of subtask create and update calls
type subtaskRequest struct {
	Name   string `json:"name"`
	Status string `json:"status,omitempty"`
}

type countDTO struct {
	Category string `json:"category"`
	Priority string `json:"priority"`
	Count    int    `json:"count"`
}

func (c countDTO) label() string {
	if c.Category != "" {
		return c.Category
	}
	return c.Priority
}

type statsDTO struct {
	TotalTasks            int        `json:"totalTasks"`
	CompletedTasks        int        `json:"completedTasks"`
	PendingTasks          int        `json:"pendingTasks"`
	CompletionRate        float64    `json:"completionRate"`
	AvgCompletionTime     float64    `json:"avgCompletionTime"`
	CurrentStreak         int        `json:"currentStreak"`
	DeletedCount          int        `json:"deletedCount"`
	OverdueCount          int        `json:"overdueCount"`
	TotalSub              int        `json:"totalSub"`
	SubtaskCompletedCount int        `json:"subtaskCompletedCount"`
	SubtaskCompletionRate float64    `json:"subtaskCompletionRate"`
	TasksByCategory       []countDTO `json:"tasksByCategory"`
	TasksByPriority       []countDTO `json:"tasksByPriority"`
	TasksByDay            []struct {
		Date  string `json:"date"`
		Count int    `json:"count"`
	} `json:"tasksByDay"`
	MonthComparison struct {
		ThisMonth int `json:"thisMonth"`
		LastMonth int `json:"lastMonth"`
	} `json:"monthComparison"`
}

func (d statsDTO) toSummary() (*stats.Summary, error) {
	s := &stats.Summary{
		Total:                 d.TotalTasks,
		Completed:             d.CompletedTasks,
		Pending:               d.PendingTasks,
		CompletionRate:        d.CompletionRate,
		Overdue:               d.OverdueCount,
		Trashed:               d.DeletedCount,
		AvgCompletionHours:    d.AvgCompletionTime,
		Streak:                d.CurrentStreak,
		CreatedThisMonth:      d.MonthComparison.ThisMonth,
		CreatedLastMonth:      d.MonthComparison.LastMonth,
		Subtasks:              d.TotalSub,
		SubtasksCompleted:     d.SubtaskCompletedCount,
		SubtaskCompletionRate: d.SubtaskCompletionRate,
	}
	for _, c := range d.TasksByCategory {
		s.ByCategory = append(s.ByCategory, stats.Count{Label: c.label(), Count: c.Count})
	}
	for _, c := range d.TasksByPriority {
		s.ByPriority = append(s.ByPriority, stats.Count{Label: c.label(), Count: c.Count})
	}
	for _, day := range d.TasksByDay {
		t, err := time.ParseInLocation(time.DateOnly, day.Date, time.Local)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stats day %q: %w", day.Date, err)
		}
		s.ByDay = append(s.ByDay, stats.DayCount{Day: t, Count: day.Count})
	}
	return s, nil
}
