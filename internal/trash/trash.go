// Package trash purges trashed tasks once their retention window ran out,
// and implements the explicit "empty trash" and restore actions.
package trash

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/balkashynov/todus/internal/clock"
	"github.com/balkashynov/todus/internal/logging"
	"github.com/balkashynov/todus/internal/models"
	"github.com/balkashynov/todus/internal/prefs"
	"github.com/balkashynov/todus/internal/repository"
)

// ErrEmptyTrash is returned when emptying the trash left tasks behind
var ErrEmptyTrash = errors.New("could not empty trash")

// SweepResult splits the trash into what goes and what stays
type SweepResult struct {
	ToPurge []int64
	ToKeep  []models.Task
}

// Sweep decides which trashed tasks are past policy.RetentionDays at now.
// Tasks that are not trashed are ignored; trashed tasks without a date are
// kept, since their age is unknown.
func Sweep(trashed []models.Task, policy models.TrashRetentionPolicy, now time.Time) SweepResult {
	days := policy.RetentionDays
	if days < 1 {
		days = models.DefaultRetentionDays
	}

	var res SweepResult
	for _, t := range trashed {
		if !t.Trashed {
			continue
		}
		if Expired(t, days, now) {
			res.ToPurge = append(res.ToPurge, t.ID)
			continue
		}
		res.ToKeep = append(res.ToKeep, t)
	}
	return res
}

// Expired reports whether t has been in the trash for more than days days
func Expired(t models.Task, days int, now time.Time) bool {
	if t.DateTrashed == nil {
		return false
	}
	return t.DateTrashed.AddDate(0, 0, days).Before(now)
}

// Sweeper runs sweeps against the repository
type Sweeper struct {
	Repo   repository.TaskRepository
	Prefs  prefs.Store
	Clock  clock.Clock
	Logger *log.Logger
}

// RunResult is the outcome of one automatic sweep
type RunResult struct {
	Policy models.TrashRetentionPolicy
	Purged []int64
	// Failed purges stay in the trash and are retried on the next run
	Failed map[int64]error
	Kept   []models.Task
}

// Run purges expired tasks of the trash, optionally of one category, and
// returns what is left. Individual purge failures are logged, not returned.
func (s *Sweeper) Run(ctx context.Context, categoryID *int64) (*RunResult, error) {
	logger := logging.OrDiscard(s.Logger)
	cfg, err := prefs.Load(s.Prefs, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	trashed, err := s.Repo.ListTrashed(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	sweep := Sweep(trashed, cfg.Retention, s.now())
	res := &RunResult{Policy: cfg.Retention, Kept: sweep.ToKeep, Failed: map[int64]error{}}
	for _, taskID := range sweep.ToPurge {
		if err := s.Repo.DeleteTask(ctx, taskID); err != nil && !repository.IsNotFound(err) {
			logger.Warn("purge failed", "task", taskID, "err", err)
			res.Failed[taskID] = err
			continue
		}
		res.Purged = append(res.Purged, taskID)
	}
	if len(res.Purged) > 0 {
		logger.Info("purged expired tasks from trash", "count", len(res.Purged), "retention_days", cfg.Retention.RetentionDays)
	}
	if len(res.Failed) > 0 {
		byID := make(map[int64]models.Task, len(trashed))
		for _, t := range trashed {
			byID[t.ID] = t
		}
		for taskID := range res.Failed {
			res.Kept = append(res.Kept, byID[taskID])
		}
	}
	return res, nil
}

// EmptyReport is the outcome of EmptyAll
type EmptyReport struct {
	Deleted []int64
	Failed  map[int64]error
}

// EmptyAll deletes every trashed task in scope regardless of age. It is a
// user action; when any delete fails the error wraps ErrEmptyTrash.
func (s *Sweeper) EmptyAll(ctx context.Context, categoryID *int64) (*EmptyReport, error) {
	logger := logging.OrDiscard(s.Logger)
	trashed, err := s.Repo.ListTrashed(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmptyTrash, err)
	}

	report := &EmptyReport{Failed: map[int64]error{}}
	var errs []error
	for _, t := range trashed {
		if !t.Trashed {
			continue
		}
		if err := s.Repo.DeleteTask(ctx, t.ID); err != nil && !repository.IsNotFound(err) {
			logger.Warn("delete failed", "task", t.ID, "err", err)
			report.Failed[t.ID] = err
			errs = append(errs, err)
			continue
		}
		report.Deleted = append(report.Deleted, t.ID)
	}
	if len(errs) > 0 {
		return report, fmt.Errorf("%w: %d of %d tasks left: %w",
			ErrEmptyTrash, len(errs), len(report.Deleted)+len(errs), errors.Join(errs...))
	}
	return report, nil
}

// Restore takes a task out of the trash
func (s *Sweeper) Restore(ctx context.Context, taskID int64) (*models.Task, error) {
	t, err := s.Repo.SetTrashed(ctx, taskID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to restore task #%d: %w", taskID, err)
	}
	return t, nil
}

func (s *Sweeper) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}
