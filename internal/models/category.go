package models

import (
	"fmt"
	"strings"
)

// OrderMode controls how tasks inside a list are sorted
type OrderMode string

const (
	OrderDateCreated  OrderMode = "DATE_CREATED"
	OrderDueDate      OrderMode = "DUE_DATE"
	OrderPriorityAsc  OrderMode = "PRIORITY_ASC"
	OrderPriorityDesc OrderMode = "PRIORITY_DESC"
	OrderNameAsc      OrderMode = "NAME_ASC"
	OrderNameDesc     OrderMode = "NAME_DESC"
)

// DefaultOrder is used when a category has no ordering configured
const DefaultOrder = OrderPriorityAsc

// OrderModes lists every supported ordering, in display order
var OrderModes = []OrderMode{
	OrderDateCreated,
	OrderDueDate,
	OrderPriorityAsc,
	OrderPriorityDesc,
	OrderNameAsc,
	OrderNameDesc,
}

// ParseOrderMode converts user input like "name_asc" or "due-date" to an OrderMode
func ParseOrderMode(s string) (OrderMode, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for _, mode := range OrderModes {
		if string(mode) == normalized {
			return mode, nil
		}
	}
	return "", fmt.Errorf("unknown order mode %q", s)
}

// Category groups tasks and carries the per-category lifecycle policy
type Category struct {
	ID                 int64     `gorm:"primarykey" json:"id"`
	Name               string    `gorm:"not null" json:"name"`
	Description        string    `json:"description"`
	OrderTasks         OrderMode `json:"orderTasks"`
	ShowComplete       bool      `gorm:"default:false" json:"showComplete"`
	AutoDeleteComplete bool      `gorm:"default:false" json:"autoDeleteComplete"`
	DeleteCompleteDays *int      `json:"deleteCompleteDays"`
}

// Validate checks that an auto-delete policy has a positive day count
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category name is required")
	}
	if c.AutoDeleteComplete && (c.DeleteCompleteDays == nil || *c.DeleteCompleteDays < 1) {
		return fmt.Errorf("category %q: deleteCompleteDays must be a positive integer when autoDeleteComplete is set", c.Name)
	}
	return nil
}

// AutoDeleteAfter returns the number of days after which completed tasks
// are moved to trash. ok is false when the policy is off or malformed.
func (c *Category) AutoDeleteAfter() (days int, ok bool) {
	if c == nil || !c.AutoDeleteComplete || c.DeleteCompleteDays == nil || *c.DeleteCompleteDays < 1 {
		return 0, false
	}
	return *c.DeleteCompleteDays, true
}

// Priority is a user-defined importance level
type Priority struct {
	ID    int64  `gorm:"primarykey" json:"id"`
	Name  string `gorm:"not null" json:"name"`
	Color string `json:"colorHex"`
	Level int    `gorm:"not null" json:"level"`
}
