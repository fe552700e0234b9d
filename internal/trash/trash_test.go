package trash

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/balkashynov/todus/internal/clock"
	"github.com/balkashynov/todus/internal/models"
	"github.com/balkashynov/todus/internal/repository"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func trashedAgo(taskID int64, ago time.Duration) models.Task {
	at := now.Add(-ago)
	return models.Task{ID: taskID, Name: "t", Trashed: true, DateTrashed: &at}
}

const day = 24 * time.Hour

func TestSweep(t *testing.T) {
	tasks := []models.Task{
		trashedAgo(1, 8*day),
		trashedAgo(2, 7*day),
		trashedAgo(3, 7*day+time.Second),
		trashedAgo(4, time.Hour),
		{ID: 5, Trashed: true},
		{ID: 6},
	}
	res := Sweep(tasks, models.TrashRetentionPolicy{RetentionDays: 7}, now)

	if len(res.ToPurge) != 2 || res.ToPurge[0] != 1 || res.ToPurge[1] != 3 {
		t.Errorf("ToPurge = %v, want [1 3]", res.ToPurge)
	}
	var kept []int64
	for _, k := range res.ToKeep {
		kept = append(kept, k.ID)
	}
	if len(kept) != 3 || kept[0] != 2 || kept[1] != 4 || kept[2] != 5 {
		t.Errorf("ToKeep = %v, want [2 4 5]", kept)
	}
}

func TestSweepInvalidPolicyUsesDefault(t *testing.T) {
	tasks := []models.Task{trashedAgo(1, 3*day), trashedAgo(2, 10*day)}
	res := Sweep(tasks, models.TrashRetentionPolicy{}, now)
	if len(res.ToPurge) != 1 || res.ToPurge[0] != 2 {
		t.Errorf("ToPurge = %v, want [2] with the 7 day default", res.ToPurge)
	}
}

func TestSweepRetentionMonotonic(t *testing.T) {
	trashedAt := time.Date(2025, 1, 1, 18, 30, 0, 0, time.UTC)
	task := models.Task{ID: 1, Trashed: true, DateTrashed: &trashedAt}

	for _, retention := range []int{1, 3, 7, 30} {
		policy := models.TrashRetentionPolicy{RetentionDays: retention}
		limit := trashedAt.AddDate(0, 0, retention)
		for offset := -48 * time.Hour; offset <= 48*time.Hour; offset += 90 * time.Minute {
			at := limit.Add(offset)
			res := Sweep([]models.Task{task}, policy, at)
			purged := len(res.ToPurge) == 1
			kept := len(res.ToKeep) == 1
			if purged == kept {
				t.Fatalf("retention %d at %v: task both or neither purged and kept", retention, at)
			}
			if want := at.After(limit); purged != want {
				t.Errorf("retention %d at %v: purged = %v, want %v", retention, at, purged, want)
			}
		}
	}
}

type fakeRepo struct {
	repository.TaskRepository
	tasks    map[int64]models.Task
	failIDs  map[int64]bool
	deleted  []int64
	listErr  error
	lastList *int64
}

func newFakeRepo(tasks ...models.Task) *fakeRepo {
	r := &fakeRepo{tasks: map[int64]models.Task{}, failIDs: map[int64]bool{}}
	for _, t := range tasks {
		r.tasks[t.ID] = t
	}
	return r
}

func (r *fakeRepo) ListTrashed(_ context.Context, categoryID *int64) ([]models.Task, error) {
	r.lastList = categoryID
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.Task
	for _, t := range r.tasks {
		if !t.Trashed {
			continue
		}
		if categoryID != nil {
			if c, ok := t.CategoryRef(); !ok || c != *categoryID {
				continue
			}
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRepo) DeleteTask(_ context.Context, taskID int64) error {
	if r.failIDs[taskID] {
		return errors.New("connection reset")
	}
	if _, ok := r.tasks[taskID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.tasks, taskID)
	r.deleted = append(r.deleted, taskID)
	return nil
}

func (r *fakeRepo) SetTrashed(_ context.Context, taskID int64, trashed bool) (*models.Task, error) {
	t, ok := r.tasks[taskID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if trashed {
		t.MarkTrashed(now)
	} else {
		t.Restore()
	}
	r.tasks[taskID] = t
	return &t, nil
}

type prefsMap map[string]string

func (m prefsMap) GetString(key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}
func (m prefsMap) SetString(key, value string) error { m[key] = value; return nil }
func (m prefsMap) Delete(key string) error           { delete(m, key); return nil }
func (m prefsMap) Keys(prefix string) ([]string, error) {
	var keys []string
	for k := range m {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func TestSweeperRun(t *testing.T) {
	repo := newFakeRepo(
		trashedAgo(1, 4*day),
		trashedAgo(2, 2*day),
		trashedAgo(3, 10*day),
		models.Task{ID: 4, Name: "active"},
	)
	repo.failIDs[3] = true
	s := &Sweeper{Repo: repo, Prefs: prefsMap{"trashRetentionDays": "3"}, Clock: clock.Fixed(now)}

	res, err := s.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Policy.RetentionDays != 3 {
		t.Errorf("policy = %+v, want stored retention", res.Policy)
	}
	if len(res.Purged) != 1 || res.Purged[0] != 1 {
		t.Errorf("Purged = %v, want [1]", res.Purged)
	}
	if _, ok := res.Failed[3]; !ok || len(res.Failed) != 1 {
		t.Errorf("Failed = %v, want task 3", res.Failed)
	}
	if len(res.Kept) != 2 {
		t.Errorf("Kept = %+v, want task 2 and the failed task 3", res.Kept)
	}
	if _, ok := repo.tasks[4]; !ok {
		t.Error("active task was deleted")
	}
}

func TestSweeperRunMalformedRetention(t *testing.T) {
	repo := newFakeRepo(trashedAgo(1, 5*day), trashedAgo(2, 8*day))
	s := &Sweeper{Repo: repo, Prefs: prefsMap{"trashRetentionDays": "a week"}, Clock: clock.Fixed(now)}
	res, err := s.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Purged) != 1 || res.Purged[0] != 2 {
		t.Errorf("Purged = %v, want [2] with the default retention", res.Purged)
	}
}

func TestSweeperRunScopedToCategory(t *testing.T) {
	work := int64(7)
	inWork := trashedAgo(1, 30*day)
	inWork.CategoryID = &work
	repo := newFakeRepo(inWork, trashedAgo(2, 30*day))
	s := &Sweeper{Repo: repo, Clock: clock.Fixed(now)}

	res, err := s.Run(context.Background(), &work)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if repo.lastList == nil || *repo.lastList != work {
		t.Errorf("ListTrashed category = %v", repo.lastList)
	}
	if len(res.Purged) != 1 || res.Purged[0] != 1 {
		t.Errorf("Purged = %v, want [1]", res.Purged)
	}
}

func TestSweeperEmptyAll(t *testing.T) {
	repo := newFakeRepo(trashedAgo(1, time.Minute), trashedAgo(2, time.Hour), models.Task{ID: 3})
	s := &Sweeper{Repo: repo}

	report, err := s.EmptyAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmptyAll() error = %v", err)
	}
	if len(report.Deleted) != 2 {
		t.Errorf("Deleted = %v, want fresh trash deleted too", report.Deleted)
	}
	if _, ok := repo.tasks[3]; !ok {
		t.Error("EmptyAll deleted an active task")
	}
}

func TestSweeperEmptyAllPartialFailure(t *testing.T) {
	repo := newFakeRepo(trashedAgo(1, time.Minute), trashedAgo(2, time.Minute), trashedAgo(3, time.Minute))
	repo.failIDs[2] = true
	s := &Sweeper{Repo: repo}

	report, err := s.EmptyAll(context.Background(), nil)
	if !errors.Is(err, ErrEmptyTrash) {
		t.Fatalf("EmptyAll() error = %v, want ErrEmptyTrash", err)
	}
	if len(report.Deleted) != 2 || len(report.Failed) != 1 {
		t.Errorf("report = %+v", report)
	}

	repo.listErr = errors.New("offline")
	if _, err := s.EmptyAll(context.Background(), nil); !errors.Is(err, ErrEmptyTrash) {
		t.Errorf("EmptyAll() list failure error = %v, want ErrEmptyTrash", err)
	}
}

func TestSweeperRestore(t *testing.T) {
	repo := newFakeRepo(trashedAgo(1, day))
	s := &Sweeper{Repo: repo}

	task, err := s.Restore(context.Background(), 1)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if task.Trashed || task.DateTrashed != nil {
		t.Errorf("restored task = %+v", task)
	}
	if _, err := s.Restore(context.Background(), 42); !repository.IsNotFound(err) {
		t.Errorf("Restore() missing task error = %v, want not found", err)
	}
}
