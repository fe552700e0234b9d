// Package notify delivers reconciliation alerts to the user. Sinks are
// fire-and-forget: a nil error only means the alert was handed off.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Sink schedules a local alert. triggerNow asks for immediate delivery;
// otherwise the sink picks its next regular slot.
type Sink interface {
	Schedule(ctx context.Context, title, body string, triggerNow bool) error
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(ctx context.Context, title, body string, triggerNow bool) error

// Schedule calls f
func (f SinkFunc) Schedule(ctx context.Context, title, body string, triggerNow bool) error {
	return f(ctx, title, body, triggerNow)
}

// Discard accepts and drops every alert
var Discard Sink = SinkFunc(func(context.Context, string, string, bool) error { return nil })

// Multi fans an alert out to every sink. It fails only when all sinks do.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(ctx context.Context, title, body string, triggerNow bool) error {
		var errs []error
		for _, s := range sinks {
			if err := s.Schedule(ctx, title, body, triggerNow); err != nil {
				errs = append(errs, err)
			}
		}
		if len(sinks) > 0 && len(errs) == len(sinks) {
			return errors.Join(errs...)
		}
		return nil
	})
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A78BFA"))
	bodyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E6EAF2"))
	laterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6D7383"))
)

// TerminalSink prints alerts to a writer, usually stdout after a command ran
type TerminalSink struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewTerminalSink returns a sink writing to w
func NewTerminalSink(w io.Writer) *TerminalSink {
	return &TerminalSink{w: w, now: time.Now}
}

// Schedule prints the alert. Deferred alerts are tagged with the time
// they would be delivered.
func (s *TerminalSink) Schedule(_ context.Context, title, body string, triggerNow bool) error {
	line := fmt.Sprintf("🔔 %s %s", titleStyle.Render(title), bodyStyle.Render(body))
	if !triggerNow {
		line += " " + laterStyle.Render("(at "+NextSlot(s.now()).Format("Mon 15:04")+")")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintln(s.w, line)
	return err
}

// ReminderHour is when deferred alerts are delivered
const ReminderHour = 9

// NextSlot returns the next ReminderHour o'clock strictly after now
func NextSlot(now time.Time) time.Time {
	slot := time.Date(now.Year(), now.Month(), now.Day(), ReminderHour, 0, 0, 0, now.Location())
	if !slot.After(now) {
		slot = slot.AddDate(0, 0, 1)
	}
	return slot
}
