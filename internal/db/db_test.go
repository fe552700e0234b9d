package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/balkashynov/todus/internal/clock"
	"github.com/balkashynov/todus/internal/models"
	"github.com/balkashynov/todus/internal/repository"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := Open(filepath.Join(t.TempDir(), "todus.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { Close(gdb) })
	return gdb
}

func TestPrefStore(t *testing.T) {
	store := NewPrefStore(openTestDB(t))

	if _, ok, err := store.GetString("trashRetentionDays"); err != nil || ok {
		t.Fatalf("GetString on empty store = ok %v, err %v; want unset", ok, err)
	}

	if err := store.SetString("trashRetentionDays", "3"); err != nil {
		t.Fatalf("SetString() error = %v", err)
	}
	if err := store.SetString("trashRetentionDays", "14"); err != nil {
		t.Fatalf("SetString() overwrite error = %v", err)
	}
	v, ok, err := store.GetString("trashRetentionDays")
	if err != nil || !ok || v != "14" {
		t.Errorf("GetString() = %q, %v, %v; want \"14\", true, nil", v, ok, err)
	}

	if err := store.SetString("  ", "x"); err == nil {
		t.Error("SetString() with blank key should fail")
	}

	if err := store.Delete("trashRetentionDays"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete("trashRetentionDays"); err != nil {
		t.Errorf("Delete() of missing key error = %v", err)
	}
	if _, ok, _ := store.GetString("trashRetentionDays"); ok {
		t.Error("key still set after Delete()")
	}
}

func TestPrefStoreKeys(t *testing.T) {
	store := NewPrefStore(openTestDB(t))
	for _, k := range []string{"showCategory_2", "showCategoryList", "showCategory_10", "dueReminderSent_4"} {
		if err := store.SetString(k, "true"); err != nil {
			t.Fatalf("SetString(%q) error = %v", k, err)
		}
	}

	keys, err := store.Keys("showCategory_")
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	want := []string{"showCategory_10", "showCategory_2"}
	if len(keys) != len(want) {
		t.Fatalf("Keys() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func newTestRepo(t *testing.T, now time.Time) *LocalRepository {
	t.Helper()
	repo, err := NewLocalRepository(openTestDB(t), clock.Fixed(now))
	if err != nil {
		t.Fatalf("NewLocalRepository() error = %v", err)
	}
	return repo
}

func TestLocalRepositorySeedsPriorities(t *testing.T) {
	gdb := openTestDB(t)
	for i := 0; i < 2; i++ {
		if _, err := NewLocalRepository(gdb, nil); err != nil {
			t.Fatalf("NewLocalRepository() error = %v", err)
		}
	}
	repo, _ := NewLocalRepository(gdb, nil)
	priorities, err := repo.ListPriorities(context.Background())
	if err != nil {
		t.Fatalf("ListPriorities() error = %v", err)
	}
	if len(priorities) != 3 {
		t.Fatalf("got %d priorities, want 3 (seeded once)", len(priorities))
	}
	if priorities[0].Name != "Low" || priorities[2].Name != "High" {
		t.Errorf("priorities not ordered by level: %+v", priorities)
	}
}

func TestLocalRepositoryTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := newTestRepo(t, now)

	days := 2
	work := &models.Category{Name: "Work", AutoDeleteComplete: true, DeleteCompleteDays: &days}
	if err := repo.SaveCategory(ctx, work); err != nil {
		t.Fatalf("SaveCategory() error = %v", err)
	}
	if work.ID == 0 || work.OrderTasks != models.DefaultOrder {
		t.Errorf("SaveCategory() left category %+v", work)
	}

	due := now.AddDate(0, 0, 3)
	task, err := repo.CreateTask(ctx, repository.TaskFields{
		Name:       repository.Ptr("  write report "),
		CategoryID: &work.ID,
		PriorityID: repository.Ptr(int64(1)),
		DueDate:    &due,
	})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if task.Name != "write report" || task.Status != models.StatusPending {
		t.Errorf("CreateTask() = %+v", task)
	}
	if task.Category == nil || task.Category.Name != "Work" {
		t.Errorf("category not preloaded: %+v", task.Category)
	}
	if task.Priority == nil || task.Priority.Name != "Low" {
		t.Errorf("priority not preloaded: %+v", task.Priority)
	}

	done := models.StatusCompleted
	task, err = repo.UpdateTask(ctx, task.ID, repository.TaskFields{Status: &done})
	if err != nil {
		t.Fatalf("UpdateTask(done) error = %v", err)
	}
	if !task.IsCompleted() || task.CompletedAt == nil {
		t.Errorf("completed task has CompletedAt %v", task.CompletedAt)
	}

	pending := models.StatusPending
	task, err = repo.UpdateTask(ctx, task.ID, repository.TaskFields{Status: &pending, ClearDueDate: true})
	if err != nil {
		t.Fatalf("UpdateTask(pending) error = %v", err)
	}
	if task.CompletedAt != nil || task.DueDate != nil {
		t.Errorf("reopened task = completedAt %v, due %v; want both nil", task.CompletedAt, task.DueDate)
	}

	task, err = repo.SetTrashed(ctx, task.ID, true)
	if err != nil {
		t.Fatalf("SetTrashed(true) error = %v", err)
	}
	if !task.Trashed || task.DateTrashed == nil {
		t.Errorf("trashed task = %+v", task)
	}

	trashed, err := repo.ListTrashed(ctx, &work.ID)
	if err != nil || len(trashed) != 1 {
		t.Fatalf("ListTrashed() = %d tasks, %v; want 1", len(trashed), err)
	}
	other := work.ID + 1
	if trashed, _ := repo.ListTrashed(ctx, &other); len(trashed) != 0 {
		t.Errorf("ListTrashed(other category) = %d tasks, want 0", len(trashed))
	}

	task, err = repo.SetTrashed(ctx, task.ID, false)
	if err != nil {
		t.Fatalf("SetTrashed(false) error = %v", err)
	}
	if task.Trashed || task.DateTrashed != nil {
		t.Errorf("restored task = %+v", task)
	}

	if err := repo.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if err := repo.DeleteTask(ctx, task.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("DeleteTask() twice error = %v, want ErrNotFound", err)
	}
	if _, err := repo.UpdateTask(ctx, task.ID, repository.TaskFields{Name: repository.Ptr("x")}); !repository.IsNotFound(err) {
		t.Errorf("UpdateTask() on deleted task error = %v, want not found", err)
	}
}

func TestLocalRepositoryRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, time.Now())

	if _, err := repo.CreateTask(ctx, repository.TaskFields{}); err == nil {
		t.Error("CreateTask() without name should fail")
	}
	if _, err := repo.CreateTask(ctx, repository.TaskFields{
		Name:       repository.Ptr("x"),
		PriorityID: repository.Ptr(int64(99)),
	}); err == nil {
		t.Error("CreateTask() with unknown priority should fail")
	}
	if err := repo.SaveCategory(ctx, &models.Category{Name: "Bad", AutoDeleteComplete: true}); err == nil {
		t.Error("SaveCategory() with auto-delete and no days should fail")
	}
}

func TestLocalRepositorySubtasks(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := newTestRepo(t, now)

	task, err := repo.CreateTask(ctx, repository.TaskFields{Name: repository.Ptr("move house")})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	boxes, err := repo.CreateSubtask(ctx, task.ID, " pack boxes ")
	if err != nil {
		t.Fatalf("CreateSubtask() error = %v", err)
	}
	if boxes.Name != "pack boxes" || boxes.Status != models.StatusPending || boxes.TaskID != task.ID {
		t.Errorf("CreateSubtask() = %+v", boxes)
	}
	if _, err := repo.CreateSubtask(ctx, task.ID, "  "); err == nil {
		t.Error("CreateSubtask() with a blank name should fail")
	}
	if _, err := repo.CreateSubtask(ctx, task.ID+1, "x"); !repository.IsNotFound(err) {
		t.Errorf("CreateSubtask() on a missing task error = %v, want not found", err)
	}
	van, _ := repo.CreateSubtask(ctx, task.ID, "book van")

	toggled, err := repo.ToggleSubtask(ctx, boxes.ID)
	if err != nil || !toggled.IsCompleted() {
		t.Fatalf("ToggleSubtask() = %+v, %v", toggled, err)
	}
	renamed, err := repo.UpdateSubtask(ctx, models.SubTask{ID: van.ID, Name: "book a big van"})
	if err != nil || renamed.Name != "book a big van" || renamed.Status != models.StatusPending {
		t.Fatalf("UpdateSubtask() = %+v, %v", renamed, err)
	}

	subs, err := repo.ListSubtasks(ctx, task.ID)
	if err != nil || len(subs) != 2 || subs[0].ID != boxes.ID || !subs[0].IsCompleted() {
		t.Fatalf("ListSubtasks() = %+v, %v", subs, err)
	}

	summary, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if summary.Total != 1 || summary.Pending != 1 || summary.Subtasks != 2 || summary.SubtasksCompleted != 1 {
		t.Errorf("Stats() = %+v", summary)
	}

	if err := repo.DeleteSubtask(ctx, van.ID); err != nil {
		t.Fatalf("DeleteSubtask() error = %v", err)
	}
	if err := repo.DeleteSubtask(ctx, van.ID); !repository.IsNotFound(err) {
		t.Errorf("DeleteSubtask() twice error = %v, want not found", err)
	}

	// purging the task takes its checklist with it
	if err := repo.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if _, err := repo.ToggleSubtask(ctx, boxes.ID); !repository.IsNotFound(err) {
		t.Errorf("subtask of a deleted task still exists: %v", err)
	}
}
