package engine

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/balkashynov/todus/internal/logging"
	"github.com/balkashynov/todus/internal/notify"
)

// Dispatcher forwards notification requests to the sink
type Dispatcher struct {
	Sink   notify.Sink
	Logger *log.Logger
}

// Dispatch hands every request to the sink and returns the ones it
// accepted. Failures are logged and dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, notifications []NotificationRequest) []NotificationRequest {
	if d.Sink == nil || len(notifications) == 0 {
		return nil
	}
	logger := logging.OrDiscard(d.Logger)

	sent := make([]NotificationRequest, 0, len(notifications))
	for _, n := range notifications {
		if err := d.Sink.Schedule(ctx, n.Title, n.Body, n.TriggerNow); err != nil {
			logger.Warn("notification not scheduled", "task", n.TaskID, "kind", n.Kind, "err", err)
			continue
		}
		sent = append(sent, n)
	}
	return sent
}
