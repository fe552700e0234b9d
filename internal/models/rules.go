package models

import (
	"errors"
	"fmt"
)

// DefaultRetentionDays is how long a trashed task stays recoverable
const DefaultRetentionDays = 7

// PriorityRule escalates a task from one priority to another once its due
// date is DaysThreshold days away or closer.
type PriorityRule struct {
	FromPriorityID int64 `json:"fromPriorityId"`
	DaysThreshold  int   `json:"daysThreshold"`
	ToPriorityID   int64 `json:"toPriorityId"`
}

var (
	ErrRuleSamePriority = errors.New("rule must change the priority")
	ErrRuleThreshold    = errors.New("rule threshold must be at least 1 day")
)

// Validate reports whether the rule can be applied
func (r PriorityRule) Validate() error {
	if r.FromPriorityID == r.ToPriorityID {
		return fmt.Errorf("priority %d -> %d: %w", r.FromPriorityID, r.ToPriorityID, ErrRuleSamePriority)
	}
	if r.DaysThreshold < 1 {
		return fmt.Errorf("threshold %d: %w", r.DaysThreshold, ErrRuleThreshold)
	}
	return nil
}

// Matches reports whether the rule applies to a task at priorityID with
// daysLeft days until its due date
func (r PriorityRule) Matches(priorityID int64, daysLeft int) bool {
	return r.FromPriorityID == priorityID && daysLeft <= r.DaysThreshold
}

// NotificationPreferences controls which reconciliation events notify the user
type NotificationPreferences struct {
	NotifyOnPriorityChange bool
	NotifyDueReminders     bool
	DueReminderDays        int
}

// DefaultNotificationPreferences has every notification switched off
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{DueReminderDays: 1}
}

// TrashRetentionPolicy decides when trashed tasks are purged for good
type TrashRetentionPolicy struct {
	RetentionDays int
}

// DefaultRetentionPolicy keeps trashed tasks for a week
func DefaultRetentionPolicy() TrashRetentionPolicy {
	return TrashRetentionPolicy{RetentionDays: DefaultRetentionDays}
}
