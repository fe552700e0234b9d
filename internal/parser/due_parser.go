package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/balkashynov/todus/internal/clock"
)

var (
	dmyRegex      = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	relativeRegex = regexp.MustCompile(`^(\d+)\s*(h|hour|hours|d|day|days|w|week|weeks)$`)
)

// ParseDueDate parses various due date formats relative to now
// Supported formats:
// - today, tomorrow
// - dd/mm/yyyy (e.g., "15/12/2025")
// - yyyy-mm-dd (e.g., "2025-12-15")
// - X days (e.g., "3 days", "3days", "3d")
// - X hours (e.g., "24 hours", "1h")
// - X weeks (e.g., "2 weeks", "2w")
func ParseDueDate(input string, now time.Time) (*time.Time, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return nil, nil
	}

	switch input {
	case "today":
		due := endOfDay(now, 0)
		return &due, nil
	case "tomorrow":
		due := endOfDay(now, 1)
		return &due, nil
	}

	if dueDate, err := parseDateFormat(input, now.Location()); err == nil {
		return dueDate, nil
	}

	if dueDate, err := parseRelativeTime(input, now); err == nil {
		return dueDate, nil
	} else if relativeRegex.MatchString(input) {
		return nil, err
	}

	return nil, fmt.Errorf("invalid date format. Use: today, tomorrow, dd/mm/yyyy, yyyy-mm-dd, X days, X hours, or X weeks")
}

// parseDateFormat parses dd/mm/yyyy and yyyy-mm-dd
func parseDateFormat(input string, loc *time.Location) (*time.Time, error) {
	var day, month, year int
	if matches := dmyRegex.FindStringSubmatch(input); len(matches) == 4 {
		day, _ = strconv.Atoi(matches[1])
		month, _ = strconv.Atoi(matches[2])
		year, _ = strconv.Atoi(matches[3])
	} else if t, err := time.ParseInLocation(time.DateOnly, input, loc); err == nil {
		day, month, year = t.Day(), int(t.Month()), t.Year()
	} else {
		return nil, fmt.Errorf("invalid date format")
	}

	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		return nil, fmt.Errorf("year must be between 2000 and 2100")
	}

	dueDate := time.Date(year, time.Month(month), day, 23, 59, 59, 0, loc)

	// time.Date normalizes 31/02 into March
	if dueDate.Day() != day || dueDate.Month() != time.Month(month) {
		return nil, fmt.Errorf("invalid date")
	}

	return &dueDate, nil
}

// parseRelativeTime parses relative time formats like "3 days", "24h"
func parseRelativeTime(input string, now time.Time) (*time.Time, error) {
	matches := relativeRegex.FindStringSubmatch(input)
	if len(matches) != 3 {
		return nil, fmt.Errorf("invalid relative time format")
	}

	amount, err := strconv.Atoi(matches[1])
	if err != nil {
		return nil, fmt.Errorf("invalid number")
	}

	switch matches[2] {
	case "h", "hour", "hours":
		if amount < 1 || amount > 8760 {
			return nil, fmt.Errorf("hours must be between 1 and 8760")
		}
		dueDate := now.Add(time.Duration(amount) * time.Hour)
		return &dueDate, nil

	case "d", "day", "days":
		if amount < 0 || amount > 365 {
			return nil, fmt.Errorf("days must be between 0 and 365")
		}
		dueDate := endOfDay(now, amount)
		return &dueDate, nil

	default:
		if amount < 1 || amount > 52 {
			return nil, fmt.Errorf("weeks must be between 1 and 52")
		}
		dueDate := endOfDay(now, amount*7)
		return &dueDate, nil
	}
}

// endOfDay is 23:59:59 on the calendar day days after now
func endOfDay(now time.Time, days int) time.Time {
	return clock.StartOfDay(now).AddDate(0, 0, days).Add(23*time.Hour + 59*time.Minute + 59*time.Second)
}

// FormatDueDate formats a due date for display
func FormatDueDate(dueDate *time.Time, now time.Time) string {
	if dueDate == nil {
		return ""
	}

	daysDiff := clock.DaysUntil(now, *dueDate)

	// Always show the actual date to avoid confusion
	dateStr := dueDate.In(now.Location()).Format("02/01/2006")

	switch {
	case daysDiff < 0:
		return fmt.Sprintf("⚠️ OVERDUE (%s)", dateStr)
	case daysDiff == 0:
		return fmt.Sprintf("🔥 Due today (%s)", dateStr)
	case daysDiff == 1:
		return fmt.Sprintf("📅 Due tomorrow (%s)", dateStr)
	case daysDiff <= 7:
		return fmt.Sprintf("📅 Due %s (in %d days)", dateStr, daysDiff)
	default:
		return fmt.Sprintf("📅 Due %s", dateStr)
	}
}
