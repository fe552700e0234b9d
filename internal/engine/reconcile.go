// Package engine runs the task lifecycle reconciliation: it decides which
// time-based transitions are due, applies them through the task repository
// and forwards the resulting notifications.
package engine

import (
	"fmt"
	"time"

	"github.com/balkashynov/todus/internal/clock"
	"github.com/balkashynov/todus/internal/models"
)

// UpdateKind is the transition a TaskUpdate performs
type UpdateKind int

const (
	UpdateTrash UpdateKind = iota + 1
	UpdatePriority
)

func (k UpdateKind) String() string {
	switch k {
	case UpdateTrash:
		return "trash"
	case UpdatePriority:
		return "priority"
	default:
		return fmt.Sprintf("UpdateKind(%d)", int(k))
	}
}

// TaskUpdate is a single write the engine wants applied
type TaskUpdate struct {
	TaskID   int64
	TaskName string
	Kind     UpdateKind

	// Set for UpdateTrash
	TrashedAt time.Time

	// Set for UpdatePriority
	FromPriorityID int64
	ToPriorityID   int64
}

func (u TaskUpdate) String() string {
	if u.Kind == UpdatePriority {
		return fmt.Sprintf("task #%d priority %d -> %d", u.TaskID, u.FromPriorityID, u.ToPriorityID)
	}
	return fmt.Sprintf("task #%d %s", u.TaskID, u.Kind)
}

// NotificationKind tells priority changes and due reminders apart
type NotificationKind int

const (
	NotifyPriorityChange NotificationKind = iota + 1
	NotifyDueReminder
)

func (k NotificationKind) String() string {
	switch k {
	case NotifyPriorityChange:
		return "priority-change"
	case NotifyDueReminder:
		return "due-reminder"
	default:
		return fmt.Sprintf("NotificationKind(%d)", int(k))
	}
}

// NotificationRequest is an alert for the notification sink
type NotificationRequest struct {
	Kind       NotificationKind
	TaskID     int64
	Title      string
	Body       string
	TriggerNow bool
}

// Input is everything one reconciliation pass looks at
type Input struct {
	Tasks      []models.Task
	Categories []models.Category
	Priorities []models.Priority
	Rules      []models.PriorityRule
	Prefs      models.NotificationPreferences
	Now        time.Time

	// RemindedOn maps task id to the day (clock.DayKey) its due reminder
	// was last sent. A task reminded today is not reminded again.
	RemindedOn map[int64]string
}

// Result is the outcome of Reconcile, in input task order
type Result struct {
	Updates       []TaskUpdate
	Notifications []NotificationRequest
}

// Reconcile computes the transitions due at in.Now. It has no side effects
// and returns the same result for the same input.
//
// Trashed tasks are skipped. Completed tasks can be auto-trashed but are
// never escalated and never get due reminders. Days left to a due date
// count calendar days in in.Now's location, so a task due any time
// tomorrow is one day away.
func Reconcile(in Input) Result {
	categories := make(map[int64]*models.Category, len(in.Categories))
	for i := range in.Categories {
		categories[in.Categories[i].ID] = &in.Categories[i]
	}
	priorityNames := make(map[int64]string, len(in.Priorities))
	for _, p := range in.Priorities {
		priorityNames[p.ID] = p.Name
	}
	priorityName := func(id int64) string {
		if name, ok := priorityNames[id]; ok && name != "" {
			return name
		}
		return fmt.Sprintf("priority %d", id)
	}

	rules := make([]models.PriorityRule, 0, len(in.Rules))
	for _, r := range in.Rules {
		if r.Validate() == nil {
			rules = append(rules, r)
		}
	}

	today := clock.DayKey(in.Now)
	var res Result
	for i := range in.Tasks {
		t := &in.Tasks[i]
		if t.Trashed {
			continue
		}

		if shouldAutoTrash(t, categoryOf(t, categories), in.Now) {
			res.Updates = append(res.Updates, TaskUpdate{
				TaskID:    t.ID,
				TaskName:  t.Name,
				Kind:      UpdateTrash,
				TrashedAt: in.Now,
			})
			continue
		}

		if t.DueDate == nil {
			continue
		}
		daysLeft := clock.DaysUntil(in.Now, *t.DueDate)

		if from, ok := t.PriorityRef(); ok && !t.IsCompleted() {
			if rule, ok := firstMatch(rules, from, daysLeft); ok {
				res.Updates = append(res.Updates, TaskUpdate{
					TaskID:         t.ID,
					TaskName:       t.Name,
					Kind:           UpdatePriority,
					FromPriorityID: from,
					ToPriorityID:   rule.ToPriorityID,
				})
				if in.Prefs.NotifyOnPriorityChange {
					res.Notifications = append(res.Notifications, NotificationRequest{
						Kind:       NotifyPriorityChange,
						TaskID:     t.ID,
						Title:      "Priority changed",
						Body:       fmt.Sprintf("%q moved from %s to %s", t.Name, priorityName(from), priorityName(rule.ToPriorityID)),
						TriggerNow: true,
					})
				}
			}
		}

		if in.Prefs.NotifyDueReminders && !t.IsCompleted() &&
			daysLeft == in.Prefs.DueReminderDays && in.RemindedOn[t.ID] != today {
			res.Notifications = append(res.Notifications, NotificationRequest{
				Kind:       NotifyDueReminder,
				TaskID:     t.ID,
				Title:      "Task due soon",
				Body:       fmt.Sprintf("%q is due in %s", t.Name, pluralDays(daysLeft)),
				TriggerNow: true,
			})
		}
	}
	return res
}

// categoryOf resolves the task's category against the freshly read list,
// falling back to the embedded copy
func categoryOf(t *models.Task, categories map[int64]*models.Category) *models.Category {
	if id, ok := t.CategoryRef(); ok {
		if c, ok := categories[id]; ok {
			return c
		}
	}
	return t.Category
}

func shouldAutoTrash(t *models.Task, c *models.Category, now time.Time) bool {
	if !t.IsCompleted() || t.CompletedAt == nil {
		return false
	}
	days, ok := c.AutoDeleteAfter()
	if !ok {
		return false
	}
	cutoff := now.AddDate(0, 0, -days)
	return t.CompletedAt.Before(cutoff)
}

func firstMatch(rules []models.PriorityRule, priorityID int64, daysLeft int) (models.PriorityRule, bool) {
	for _, r := range rules {
		if r.Matches(priorityID, daysLeft) {
			return r, true
		}
	}
	return models.PriorityRule{}, false
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
