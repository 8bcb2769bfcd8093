package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateLayout is the calendar-date wire format used everywhere an
// assignment date crosses a boundary (storage, share payloads, UI).
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("model: invalid date")

type Assignment struct {
	ID                 int64    `json:"id"`
	Title              string   `json:"title"`
	Subject            string   `json:"subject"`
	Description        string   `json:"description,omitempty"`
	EstimatedTime      int      `json:"estimatedTime"`
	Difficulty         int      `json:"difficulty"`
	Deadline           string   `json:"deadline,omitempty"`
	Completed          bool     `json:"completed"`
	CompletedDates     []string `json:"completedDates,omitempty"`
	TotalAllocatedTime int      `json:"totalAllocatedTime"`
}

// DailyAllocation is a derived record: one assignment's share of effort
// for one calendar day. The whole collection is rebuilt on every list
// mutation; only a completion toggle touches a record in place.
type DailyAllocation struct {
	AssignmentID  int64  `json:"assignmentId"`
	Date          string `json:"date"`
	AllocatedTime int    `json:"allocatedTime"`
	Completed     bool   `json:"completed"`
}

// ValidationError reports per-field problems so callers can flag the
// offending inputs instead of aborting on the first one.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "model: invalid assignment: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

func (a Assignment) Validate() error {
	fields := make(map[string]string)
	if strings.TrimSpace(a.Title) == "" {
		fields["title"] = "title is required"
	}
	if strings.TrimSpace(a.Subject) == "" {
		fields["subject"] = "subject is required"
	}
	if a.EstimatedTime <= 0 {
		fields["estimated_time"] = "estimated time must be a positive number of minutes"
	}
	if a.Difficulty < 1 || a.Difficulty > 5 {
		fields["difficulty"] = "difficulty must be between 1 and 5"
	}
	if a.Deadline != "" {
		if _, err := ParseDate(a.Deadline); err != nil {
			fields["deadline"] = "deadline must be a YYYY-MM-DD date"
		}
	}
	for _, d := range a.CompletedDates {
		if _, err := ParseDate(d); err != nil {
			fields["completed_dates"] = fmt.Sprintf("completed date %q must be a YYYY-MM-DD date", d)
			break
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// DoneOn reports whether the assignment was checked off on the given day.
func (a Assignment) DoneOn(date string) bool {
	for _, d := range a.CompletedDates {
		if d == date {
			return true
		}
	}
	return false
}

func (a Assignment) Clone() Assignment {
	out := a
	if a.CompletedDates != nil {
		out.CompletedDates = append([]string(nil), a.CompletedDates...)
	}
	return out
}

// ParseDate parses a calendar date and anchors it at UTC midnight so
// day arithmetic is exact regardless of the host zone.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Midnight truncates the time-of-day, keeping the calendar day in UTC.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
