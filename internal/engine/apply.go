package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/balkashynov/todus/internal/logging"
	"github.com/balkashynov/todus/internal/repository"
)

// DefaultConcurrency is how many updates are in flight at once
const DefaultConcurrency = 4

var (
	// ErrNoUpdates is returned when Apply is called with nothing to do
	ErrNoUpdates = errors.New("no updates to apply")
	// ErrNoRepository is returned by an Applier built without a repository
	ErrNoRepository = errors.New("no task repository configured")
)

// ApplyResult is the outcome of one update
type ApplyResult struct {
	Update TaskUpdate
	Err    error
}

// ApplyReport lists every attempted update in input order
type ApplyReport struct {
	Results []ApplyResult
}

// Succeeded returns the updates that went through
func (r ApplyReport) Succeeded() []TaskUpdate {
	var out []TaskUpdate
	for _, res := range r.Results {
		if res.Err == nil {
			out = append(out, res.Update)
		}
	}
	return out
}

// Failed returns the updates that did not
func (r ApplyReport) Failed() []ApplyResult {
	var out []ApplyResult
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Applier writes TaskUpdates through the repository
type Applier struct {
	Repo        repository.TaskRepository
	Concurrency int
	Logger      *log.Logger
}

// Apply attempts every update. A failed update never stops the others; its
// error is recorded in the report and logged. Apply itself only fails for
// misuse.
func (a *Applier) Apply(ctx context.Context, updates []TaskUpdate) (ApplyReport, error) {
	if a.Repo == nil {
		return ApplyReport{}, ErrNoRepository
	}
	if len(updates) == 0 {
		return ApplyReport{}, ErrNoUpdates
	}
	logger := logging.OrDiscard(a.Logger)

	limit := a.Concurrency
	if limit < 1 {
		limit = DefaultConcurrency
	}

	report := ApplyReport{Results: make([]ApplyResult, len(updates))}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, u := range updates {
		i, u := i, u
		g.Go(func() error {
			err := a.applyOne(ctx, u)
			// each goroutine owns its own slot
			report.Results[i] = ApplyResult{Update: u, Err: err}
			if err != nil {
				logger.Warn("update failed", "task", u.TaskID, "kind", u.Kind, "err", err)
			} else {
				logger.Debug("update applied", "task", u.TaskID, "kind", u.Kind)
			}
			return nil
		})
	}
	_ = g.Wait()
	return report, nil
}

func (a *Applier) applyOne(ctx context.Context, u TaskUpdate) error {
	switch u.Kind {
	case UpdateTrash:
		_, err := a.Repo.SetTrashed(ctx, u.TaskID, true)
		return err
	case UpdatePriority:
		to := u.ToPriorityID
		_, err := a.Repo.UpdateTask(ctx, u.TaskID, repository.TaskFields{PriorityID: &to})
		return err
	default:
		return fmt.Errorf("unknown update kind %v", u.Kind)
	}
}
