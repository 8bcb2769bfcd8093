package model

import (
	"errors"
	"testing"
	"time"
)

func TestAssignmentValidateSuccess(t *testing.T) {
	a := Assignment{
		ID:            1,
		Title:         "Linear algebra problem set",
		Subject:       "Math",
		EstimatedTime: 120,
		Difficulty:    4,
		Deadline:      "2026-09-10",
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("expected valid assignment, got error: %v", err)
	}
}

func TestAssignmentValidateCollectsFieldErrors(t *testing.T) {
	a := Assignment{
		Title:         "  ",
		Subject:       "",
		EstimatedTime: 0,
		Difficulty:    9,
		Deadline:      "next week",
	}
	err := a.Validate()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	for _, field := range []string{"title", "subject", "estimated_time", "difficulty", "deadline"} {
		if !verr.Has(field) {
			t.Fatalf("expected field error for %q, got %v", field, verr.Fields)
		}
	}
}

func TestAssignmentValidateRejectsBadCompletedDate(t *testing.T) {
	a := Assignment{
		Title:          "Essay",
		Subject:        "History",
		EstimatedTime:  60,
		Difficulty:     2,
		CompletedDates: []string{"2026-09-01", "yesterday"},
	}
	err := a.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) || !verr.Has("completed_dates") {
		t.Fatalf("expected completed_dates field error, got %v", err)
	}
}

func TestDoneOn(t *testing.T) {
	a := Assignment{CompletedDates: []string{"2026-09-01", "2026-09-02"}}
	if !a.DoneOn("2026-09-02") {
		t.Fatal("expected DoneOn to find the date")
	}
	if a.DoneOn("2026-09-03") {
		t.Fatal("expected DoneOn to miss an absent date")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a := Assignment{Title: "Reading", CompletedDates: []string{"2026-09-01"}}
	c := a.Clone()
	c.CompletedDates[0] = "2026-12-31"
	if a.CompletedDates[0] != "2026-09-01" {
		t.Fatalf("clone shares completed dates backing array: %v", a.CompletedDates)
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2026-09-01")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	want := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected date: got %v want %v", got, want)
	}

	if _, err := ParseDate("09/01/2026"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestMidnightTruncatesClock(t *testing.T) {
	in := time.Date(2026, 9, 1, 23, 59, 58, 0, time.UTC)
	got := Midnight(in)
	if got.Hour() != 0 || got.Minute() != 0 || FormatDate(got) != "2026-09-01" {
		t.Fatalf("unexpected midnight: %v", got)
	}
}
