package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// EventDuration is the length of the calendar event carrying an alert
const EventDuration = 15 * time.Minute

// CalendarSink schedules alerts as Google Calendar events with a popup
// reminder at the start time
type CalendarSink struct {
	srv        *calendar.Service
	calendarID string
	now        func() time.Time
}

// NewCalendarService builds a Calendar API client on top of an
// authenticated HTTP client. opts are appended, e.g. a test endpoint.
func NewCalendarService(ctx context.Context, client *http.Client, opts ...option.ClientOption) (*calendar.Service, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create calendar service: %w", err)
	}
	return srv, nil
}

// NewCalendarSink writes events to calendarID ("primary" when empty)
func NewCalendarSink(srv *calendar.Service, calendarID string) (*CalendarSink, error) {
	if srv == nil {
		return nil, errors.New("calendar service is nil")
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	return &CalendarSink{srv: srv, calendarID: calendarID, now: time.Now}, nil
}

// Schedule inserts an event starting now, or at the next reminder slot
func (s *CalendarSink) Schedule(ctx context.Context, title, body string, triggerNow bool) error {
	start := s.now()
	if !triggerNow {
		start = NextSlot(start)
	}
	end := start.Add(EventDuration)

	event := &calendar.Event{
		Summary:     title,
		Description: body,
		Start:       &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)},
		Reminders: &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: "popup", Minutes: 0},
			},
			ForceSendFields: []string{"UseDefault"},
		},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{"source": "todus"},
		},
	}

	if _, err := s.srv.Events.Insert(s.calendarID, event).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to create calendar event: %w", err)
	}
	return nil
}
