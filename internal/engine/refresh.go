package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/balkashynov/todus/internal/clock"
	"github.com/balkashynov/todus/internal/logging"
	"github.com/balkashynov/todus/internal/models"
	"github.com/balkashynov/todus/internal/notify"
	"github.com/balkashynov/todus/internal/prefs"
	"github.com/balkashynov/todus/internal/repository"
	"github.com/balkashynov/todus/internal/view"
)

// ErrAbandoned is returned when the caller went away after the writes of a
// pass were issued. The writes were completed; the view was not rebuilt.
var ErrAbandoned = errors.New("refresh abandoned")

// Scope is what the caller wants to see once the pass is done
type Scope struct {
	CategoryID *int64
	// ShowCompleted overrides the category's showComplete setting
	ShowCompleted *bool
	// Order overrides the category's ordering
	Order models.OrderMode
}

// Engine runs reconciliation passes against a repository
type Engine struct {
	Repo        repository.TaskRepository
	Prefs       prefs.Store
	Sink        notify.Sink
	Clock       clock.Clock
	Logger      *log.Logger
	Concurrency int
}

// RefreshResult describes one pass
type RefreshResult struct {
	PassID     string
	Reconciled Result
	Report     ApplyReport
	// Sent holds the notifications the sink accepted
	Sent       []NotificationRequest
	Tasks      []models.Task
	Categories []models.Category
	Priorities []models.Priority
	Sections   []view.Section
}

// Refresh runs one read-modify-reread pass: load preferences, read the
// tasks, reconcile, apply, notify, read the tasks again and project them.
// Once writes have started they run to completion even if ctx is
// cancelled; in that case the reread is skipped and ErrAbandoned returned
// along with the partial result.
func (e *Engine) Refresh(ctx context.Context, scope Scope) (*RefreshResult, error) {
	if e.Repo == nil {
		return nil, ErrNoRepository
	}
	clk := e.Clock
	if clk == nil {
		clk = clock.System{}
	}
	res := &RefreshResult{PassID: uuid.NewString()}
	logger := logging.OrDiscard(e.Logger).With("pass", res.PassID[:8])

	cfg, err := prefs.Load(e.Prefs, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	tasks, err := e.Repo.ListTasks(ctx)
	if err != nil {
		return nil, e.readErr(ctx, "tasks", err)
	}
	if res.Categories, err = e.Repo.ListCategories(ctx); err != nil {
		return nil, e.readErr(ctx, "categories", err)
	}
	if res.Priorities, err = e.Repo.ListPriorities(ctx); err != nil {
		return nil, e.readErr(ctx, "priorities", err)
	}

	now := clk.Now()
	res.Reconciled = Reconcile(Input{
		Tasks:      tasks,
		Categories: res.Categories,
		Priorities: res.Priorities,
		Rules:      cfg.Rules,
		Prefs:      cfg.Notify,
		Now:        now,
		RemindedOn: cfg.RemindedOn,
	})
	logger.Debug("reconciled",
		"tasks", len(tasks),
		"updates", len(res.Reconciled.Updates),
		"notifications", len(res.Reconciled.Notifications))

	// Writes are never interrupted halfway
	writeCtx := context.WithoutCancel(ctx)
	if len(res.Reconciled.Updates) > 0 {
		applier := &Applier{Repo: e.Repo, Concurrency: e.Concurrency, Logger: logger}
		if res.Report, err = applier.Apply(writeCtx, res.Reconciled.Updates); err != nil {
			return nil, err
		}
		if failed := res.Report.Failed(); len(failed) > 0 {
			logger.Warn("some updates failed, they will be retried next pass", "failed", len(failed))
		}
	}

	dispatcher := &Dispatcher{Sink: e.Sink, Logger: logger}
	res.Sent = dispatcher.Dispatch(writeCtx, withoutFailed(res.Reconciled.Notifications, res.Report))
	e.rememberReminders(logger, cfg, tasks, res.Sent, now)

	if ctx.Err() != nil {
		logger.Debug("pass abandoned before reread")
		return res, ErrAbandoned
	}

	if res.Tasks, err = e.Repo.ListTasks(ctx); err != nil {
		return res, e.readErr(ctx, "tasks", err)
	}
	res.Sections = project(res.Tasks, res.Categories, cfg, scope)
	return res, nil
}

// withoutFailed drops priority change alerts whose escalation was not
// written; the escalation is retried next pass and alerts then
func withoutFailed(notes []NotificationRequest, report ApplyReport) []NotificationRequest {
	failed := make(map[int64]bool)
	for _, r := range report.Failed() {
		if r.Update.Kind == UpdatePriority {
			failed[r.Update.TaskID] = true
		}
	}
	if len(failed) == 0 {
		return notes
	}
	out := make([]NotificationRequest, 0, len(notes))
	for _, n := range notes {
		if n.Kind == NotifyPriorityChange && failed[n.TaskID] {
			continue
		}
		out = append(out, n)
	}
	return out
}

func (e *Engine) readErr(ctx context.Context, what string, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ErrAbandoned, err)
	}
	return fmt.Errorf("failed to read %s: %w", what, err)
}

// rememberReminders stores a marker per reminded task and drops markers of
// tasks that no longer exist
func (e *Engine) rememberReminders(logger *log.Logger, cfg *prefs.Config, tasks []models.Task, sent []NotificationRequest, now time.Time) {
	if e.Prefs == nil {
		return
	}
	for _, n := range sent {
		if n.Kind != NotifyDueReminder {
			continue
		}
		if err := prefs.MarkReminded(e.Prefs, n.TaskID, now); err != nil {
			logger.Warn("could not record reminder", "task", n.TaskID, "err", err)
		}
	}
	live := make(map[int64]bool, len(tasks))
	for _, t := range tasks {
		live[t.ID] = true
	}
	if err := prefs.ForgetReminders(e.Prefs, cfg.RemindedOn, live); err != nil {
		logger.Warn("could not prune reminder markers", "err", err)
	}
}

func project(tasks []models.Task, categories []models.Category, cfg *prefs.Config, scope Scope) []view.Section {
	byID := make(map[int64]*models.Category, len(categories))
	for i := range categories {
		byID[categories[i].ID] = &categories[i]
	}

	if scope.CategoryID != nil {
		category, ok := byID[*scope.CategoryID]
		if !ok {
			category = &models.Category{ID: *scope.CategoryID, Name: fmt.Sprintf("Category %d", *scope.CategoryID)}
		}
		show := category.ShowComplete
		if scope.ShowCompleted != nil {
			show = *scope.ShowCompleted
		}
		order := scope.Order
		if order == "" {
			order = view.OrderFor(category, models.DefaultOrder)
		}
		return view.Project(tasks, view.Scope{Category: category, ShowCompleted: show}, order)
	}

	var pinned []models.Category
	if cfg.ShowCategoryList {
		for _, id := range cfg.Pinned {
			if c, ok := byID[id]; ok {
				pinned = append(pinned, *c)
			}
		}
	}
	return view.Project(tasks, view.Scope{Pinned: pinned}, view.OrderFor(nil, scope.Order))
}
