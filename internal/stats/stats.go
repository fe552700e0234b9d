// Package stats summarizes a user's tasks: completion, overdue work,
// recent activity and how tasks spread over categories and priorities.
package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/balkashynov/todus/internal/clock"
	"github.com/balkashynov/todus/internal/models"
)

// RecentDays is the activity window for daily counts and average completion time
const RecentDays = 30

// Uncategorized labels tasks without a category
const Uncategorized = "Uncategorized"

// NoPriority labels tasks without a priority
const NoPriority = "No priority"

// Count is a labelled number of tasks
type Count struct {
	Label string
	Count int
}

// DayCount is the number of tasks completed on one day
type DayCount struct {
	Day   time.Time
	Count int
}

// Summary is the statistics of one user's tasks. Counts other than Trashed
// and the activity figures only look at tasks outside the trash.
type Summary struct {
	Total          int
	Completed      int
	Pending        int
	CompletionRate float64
	Overdue        int
	Trashed        int

	// Completions per day over the last RecentDays days, oldest first,
	// ending today
	ByDay []DayCount
	// Mean hours from creation to completion of recently completed tasks
	AvgCompletionHours float64
	// Consecutive days up to today with at least one completion
	Streak int

	CreatedThisMonth int
	CreatedLastMonth int

	ByCategory []Count
	ByPriority []Count

	Subtasks              int
	SubtasksCompleted     int
	SubtaskCompletionRate float64
}

// Input is what Summarize looks at
type Input struct {
	Tasks    []models.Task
	Subtasks []models.SubTask
	Now      time.Time
}

// Summarize computes the statistics at in.Now
func Summarize(in Input) Summary {
	var s Summary
	now := in.Now
	today := clock.StartOfDay(now)
	windowStart := now.AddDate(0, 0, -RecentDays)
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonth := thisMonth.AddDate(0, -1, 0)

	perDay := make(map[string]int)
	byCategory := make(map[string]int)
	byPriority := make(map[string]int)
	var hours float64
	var recent int

	for i := range in.Tasks {
		t := &in.Tasks[i]

		switch {
		case !t.DateCreated.Before(thisMonth) && !t.DateCreated.After(now):
			s.CreatedThisMonth++
		case !t.DateCreated.Before(lastMonth) && t.DateCreated.Before(thisMonth):
			s.CreatedLastMonth++
		}

		if t.IsCompleted() && t.CompletedAt != nil && t.CompletedAt.After(windowStart) {
			recent++
			perDay[clock.DayKey(t.CompletedAt.In(now.Location()))]++
			if !t.DateCreated.IsZero() {
				hours += t.CompletedAt.Sub(t.DateCreated).Hours()
			}
		}

		if t.Trashed {
			s.Trashed++
			continue
		}
		s.Total++
		if t.IsCompleted() {
			s.Completed++
		} else {
			s.Pending++
			if t.DueDate != nil && t.DueDate.Before(now) {
				s.Overdue++
			}
		}
		byCategory[categoryLabel(t)]++
		byPriority[priorityLabel(t)]++
	}

	s.CompletionRate = percent(s.Completed, s.Total)
	if recent > 0 {
		s.AvgCompletionHours = hours / float64(recent)
	}

	for i := RecentDays; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		s.ByDay = append(s.ByDay, DayCount{Day: day, Count: perDay[clock.DayKey(day)]})
	}
	for i := len(s.ByDay) - 1; i >= 0 && s.ByDay[i].Count > 0; i-- {
		s.Streak++
	}

	s.ByCategory = sortedCounts(byCategory)
	s.ByPriority = sortedCounts(byPriority)

	for _, sub := range in.Subtasks {
		s.Subtasks++
		if sub.IsCompleted() {
			s.SubtasksCompleted++
		}
	}
	s.SubtaskCompletionRate = percent(s.SubtasksCompleted, s.Subtasks)
	return s
}

func categoryLabel(t *models.Task) string {
	if t.Category != nil && t.Category.Name != "" {
		return t.Category.Name
	}
	if id, ok := t.CategoryRef(); ok {
		return fmt.Sprintf("Category %d", id)
	}
	return Uncategorized
}

func priorityLabel(t *models.Task) string {
	if t.Priority != nil && t.Priority.Name != "" {
		return t.Priority.Name
	}
	if id, ok := t.PriorityRef(); ok {
		return fmt.Sprintf("Priority %d", id)
	}
	return NoPriority
}

// percent returns part/total as a percentage rounded to one decimal
func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)*1000/float64(total)) / 10
}

// sortedCounts orders by count, largest first, then by label
func sortedCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for label, n := range m {
		out = append(out, Count{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}
