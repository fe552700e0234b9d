package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/balkashynov/todus/internal/models"
)

var (
	categoryRegex = regexp.MustCompile(`(?:^|\s)@([\p{L}0-9_-]+)`)
	priorityRegex = regexp.MustCompile(`(?:^|\s)\+([\p{L}0-9]+)`)
	dueRegex      = regexp.MustCompile(`(?:^|\s)due:(\S+)`)
)

// ParsedTask represents a task parsed from natural language
type ParsedTask struct {
	Title    string
	Category string
	Priority string
	DueDate  *time.Time
	Errors   []string
}

// ParseTitle extracts metadata from a task title using natural syntax
// Syntax: "Task title @category +priority due:3days"
func ParseTitle(input string, now time.Time) ParsedTask {
	result := ParsedTask{
		Title:  input,
		Errors: []string{},
	}

	// Extract category (@work)
	if matches := categoryRegex.FindStringSubmatch(input); len(matches) > 1 {
		result.Category = matches[1]
		input = categoryRegex.ReplaceAllString(input, " ")
	}

	// Extract priority (+high, +3, ...); resolved against the store later
	if matches := priorityRegex.FindStringSubmatch(input); len(matches) > 1 {
		result.Priority = strings.ToLower(matches[1])
		input = priorityRegex.ReplaceAllString(input, " ")
	}

	// Extract due date (due:3days, due:15/12/2025, ...)
	if matches := dueRegex.FindStringSubmatch(input); len(matches) > 1 {
		dueDate, err := ParseDueDate(matches[1], now)
		if err != nil {
			result.Errors = append(result.Errors, "Invalid due date '"+matches[1]+"': "+err.Error())
		} else {
			result.DueDate = dueDate
		}
		input = dueRegex.ReplaceAllString(input, " ")
	}

	// Clean up the title (remove extra spaces)
	result.Title = strings.Join(strings.Fields(input), " ")
	if result.Title == "" {
		result.Errors = append(result.Errors, "Task title is empty")
	}

	return result
}

// priorityAliases maps shorthand to the seeded priority names
var priorityAliases = map[string]string{
	"med": "medium",
	"hi":  "high",
	"lo":  "low",
}

// ResolvePriority finds a priority by name (case-insensitive), alias, id or level
func ResolvePriority(ref string, priorities []models.Priority) (*models.Priority, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if alias, ok := priorityAliases[ref]; ok {
		ref = alias
	}
	for i := range priorities {
		if strings.ToLower(priorities[i].Name) == ref {
			return &priorities[i], nil
		}
	}
	if n, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for i := range priorities {
			if int64(priorities[i].Level) == n {
				return &priorities[i], nil
			}
		}
		for i := range priorities {
			if priorities[i].ID == n {
				return &priorities[i], nil
			}
		}
	}
	return nil, fmt.Errorf("unknown priority %q (have: %s)", ref, priorityNames(priorities))
}

// ResolveCategory finds a category by name (case-insensitive) or id
func ResolveCategory(ref string, categories []models.Category) (*models.Category, error) {
	ref = strings.TrimSpace(ref)
	for i := range categories {
		if strings.EqualFold(categories[i].Name, ref) {
			return &categories[i], nil
		}
	}
	if n, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for i := range categories {
			if categories[i].ID == n {
				return &categories[i], nil
			}
		}
	}
	return nil, fmt.Errorf("unknown category %q", ref)
}

func priorityNames(priorities []models.Priority) string {
	names := make([]string, len(priorities))
	for i, p := range priorities {
		names[i] = strings.ToLower(p.Name)
	}
	return strings.Join(names, ", ")
}
