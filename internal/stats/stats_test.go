package stats

import (
	"math"
	"testing"
	"time"

	"github.com/balkashynov/todus/internal/models"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func at(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

func done(id int64, created, completed time.Time) models.Task {
	return models.Task{ID: id, Name: "t", Status: models.StatusCompleted, DateCreated: created, CompletedAt: &completed}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	work := &models.Category{ID: 1, Name: "Work"}
	high := &models.Priority{ID: 3, Name: "High", Level: 3}
	low := &models.Priority{ID: 1, Name: "Low", Level: 1}
	overdue := now.Add(-time.Hour)
	tomorrow := now.AddDate(0, 0, 1)
	trashedAt := at(2025, 3, 2, 9)

	first := done(1, at(2025, 3, 9, 10), at(2025, 3, 10, 10))
	first.Category, first.Priority = work, high
	second := done(2, at(2025, 3, 9, 9), at(2025, 3, 9, 11))
	second.Category = work

	in := Input{
		Now: now,
		Tasks: []models.Task{
			first,
			second,
			done(3, at(2025, 3, 7, 10), at(2025, 3, 7, 12)),
			{ID: 4, Name: "late", Status: models.StatusPending, DateCreated: at(2025, 2, 15, 8), DueDate: &overdue, Priority: low},
			{ID: 5, Name: "soon", Status: models.StatusPending, DateCreated: at(2025, 3, 1, 0), DueDate: &tomorrow},
			{ID: 6, Name: "binned", Status: models.StatusPending, DateCreated: at(2025, 1, 1, 8), Trashed: true, DateTrashed: &trashedAt},
			done(7, at(2025, 1, 24, 8), at(2025, 1, 29, 8)),
		},
		Subtasks: []models.SubTask{
			{ID: 1, TaskID: 1, Status: models.StatusCompleted},
			{ID: 2, TaskID: 1, Status: models.StatusPending},
			{ID: 3, TaskID: 4, Status: models.StatusPending},
		},
	}

	s := Summarize(in)

	counts := []struct {
		name      string
		got, want int
	}{
		{"Total", s.Total, 6},
		{"Completed", s.Completed, 4},
		{"Pending", s.Pending, 2},
		{"Overdue", s.Overdue, 1},
		{"Trashed", s.Trashed, 1},
		{"Streak", s.Streak, 2},
		{"CreatedThisMonth", s.CreatedThisMonth, 4},
		{"CreatedLastMonth", s.CreatedLastMonth, 1},
		{"Subtasks", s.Subtasks, 3},
		{"SubtasksCompleted", s.SubtasksCompleted, 1},
		{"days", len(s.ByDay), RecentDays + 1},
	}
	for _, c := range counts {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}

	if s.CompletionRate != 66.7 {
		t.Errorf("CompletionRate = %v, want 66.7", s.CompletionRate)
	}
	if s.SubtaskCompletionRate != 33.3 {
		t.Errorf("SubtaskCompletionRate = %v, want 33.3", s.SubtaskCompletionRate)
	}
	// (24 + 2 + 2) hours over the three recent completions
	if math.Abs(s.AvgCompletionHours-28.0/3) > 1e-9 {
		t.Errorf("AvgCompletionHours = %v, want %v", s.AvgCompletionHours, 28.0/3)
	}

	last := s.ByDay[len(s.ByDay)-1]
	if !last.Day.Equal(at(2025, 3, 10, 0)) || last.Count != 1 {
		t.Errorf("last day = %+v, want today with one completion", last)
	}
	if s.ByDay[0].Day.After(at(2025, 2, 8, 0)) {
		t.Errorf("first day = %v, want 30 days before today", s.ByDay[0].Day)
	}

	wantCategories := []Count{{Uncategorized, 4}, {"Work", 2}}
	if !equalCounts(s.ByCategory, wantCategories) {
		t.Errorf("ByCategory = %+v, want %+v", s.ByCategory, wantCategories)
	}
	wantPriorities := []Count{{NoPriority, 4}, {"High", 1}, {"Low", 1}}
	if !equalCounts(s.ByPriority, wantPriorities) {
		t.Errorf("ByPriority = %+v, want %+v", s.ByPriority, wantPriorities)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	t.Parallel()

	s := Summarize(Input{Now: now})
	if s.Total != 0 || s.CompletionRate != 0 || s.SubtaskCompletionRate != 0 || s.Streak != 0 {
		t.Errorf("empty summary = %+v", s)
	}
	if len(s.ByDay) != RecentDays+1 {
		t.Errorf("ByDay has %d days, want %d", len(s.ByDay), RecentDays+1)
	}
	if len(s.ByCategory) != 0 || len(s.ByPriority) != 0 {
		t.Errorf("empty breakdowns = %+v %+v", s.ByCategory, s.ByPriority)
	}
}

func TestSummarizeLabelsByReference(t *testing.T) {
	t.Parallel()

	categoryID, priorityID := int64(9), int64(4)
	s := Summarize(Input{Now: now, Tasks: []models.Task{
		{ID: 1, Status: models.StatusPending, DateCreated: now, CategoryID: &categoryID, PriorityID: &priorityID},
	}})
	if len(s.ByCategory) != 1 || s.ByCategory[0].Label != "Category 9" {
		t.Errorf("ByCategory = %+v", s.ByCategory)
	}
	if len(s.ByPriority) != 1 || s.ByPriority[0].Label != "Priority 4" {
		t.Errorf("ByPriority = %+v", s.ByPriority)
	}
}

func equalCounts(a, b []Count) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
