// Package view turns the reconciled task set into the sections a list
// screen renders.
package view

import (
	"sort"
	"time"

	"github.com/balkashynov/todus/internal/models"
)

// AllTasksTitle names the section of tasks outside any pinned category
const AllTasksTitle = "All tasks"

// Scope selects what a list shows
type Scope struct {
	// Category restricts the list to one category. Nil is the unscoped view.
	Category *models.Category
	// ShowCompleted keeps COMPLETED tasks in a category-scoped view
	ShowCompleted bool
	// Pinned categories get their own section in the unscoped view, in this order
	Pinned []models.Category
}

// Section is one titled group of tasks
type Section struct {
	Title    string
	Category *models.Category
	Tasks    []models.Task
}

// Project filters, sorts and sections tasks. The input slice is not modified.
func Project(tasks []models.Task, scope Scope, order models.OrderMode) []Section {
	if scope.Category != nil {
		in := []models.Task{}
		for _, t := range tasks {
			if t.Trashed {
				continue
			}
			if id, ok := t.CategoryRef(); !ok || id != scope.Category.ID {
				continue
			}
			if t.IsCompleted() && !scope.ShowCompleted {
				continue
			}
			in = append(in, t)
		}
		Sort(in, order)

		return []Section{{Title: scope.Category.Name, Category: scope.Category, Tasks: in}}
	}

	pinnedIdx := make(map[int64]int, len(scope.Pinned))
	for i, c := range scope.Pinned {
		pinnedIdx[c.ID] = i
	}
	all := []models.Task{}
	grouped := make([][]models.Task, len(scope.Pinned))
	for _, t := range tasks {
		if t.Trashed {
			continue
		}
		if id, ok := t.CategoryRef(); ok {
			if i, pinned := pinnedIdx[id]; pinned {
				grouped[i] = append(grouped[i], t)
				continue
			}
		}
		all = append(all, t)
	}

	Sort(all, order)
	sections := []Section{{Title: AllTasksTitle, Tasks: all}}
	for i, c := range scope.Pinned {
		c := c
		if len(grouped[i]) == 0 {
			continue
		}
		Sort(grouped[i], order)
		sections = append(sections, Section{Title: c.Name, Category: &c, Tasks: grouped[i]})
	}
	return sections
}

// OrderFor returns the ordering configured on c, or fallback
func OrderFor(c *models.Category, fallback models.OrderMode) models.OrderMode {
	if c != nil && c.OrderTasks != "" {
		return c.OrderTasks
	}
	if fallback == "" {
		return models.DefaultOrder
	}
	return fallback
}

// Sort orders tasks in place. The sort is stable, so ties keep their
// input order; tasks without the sort key go last.
func Sort(tasks []models.Task, order models.OrderMode) {
	var less func(a, b *models.Task) bool
	switch order {
	case models.OrderDateCreated:
		less = func(a, b *models.Task) bool { return a.DateCreated.Before(b.DateCreated) }
	case models.OrderDueDate:
		less = func(a, b *models.Task) bool { return timeLess(a.DueDate, b.DueDate) }
	case models.OrderPriorityAsc:
		less = func(a, b *models.Task) bool { return levelLess(a.Priority, b.Priority, false) }
	case models.OrderPriorityDesc:
		less = func(a, b *models.Task) bool { return levelLess(a.Priority, b.Priority, true) }
	case models.OrderNameAsc:
		less = func(a, b *models.Task) bool { return a.Name < b.Name }
	case models.OrderNameDesc:
		less = func(a, b *models.Task) bool { return a.Name > b.Name }
	default:
		return
	}
	sort.SliceStable(tasks, func(i, j int) bool { return less(&tasks[i], &tasks[j]) })
}

func timeLess(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.Before(*b)
	}
}

func levelLess(a, b *models.Priority, desc bool) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	case desc:
		return a.Level > b.Level
	default:
		return a.Level < b.Level
	}
}
