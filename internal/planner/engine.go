// Package planner holds the pure scheduling math: the daily allocation
// engine, the progress calculator, and the canonical assignment order
// they share with the auto sort. Nothing in here mutates its input.
package planner

import (
	"sort"
	"time"

	"github.com/sandeepkv93/assignd/internal/model"
)

const day = 24 * time.Hour

// DaysLeft returns the inclusive calendar-day count from today through
// the deadline, both truncated to midnight before subtraction: a
// deadline of today counts as one remaining day, tomorrow as two. The
// count is zero or negative once the deadline has passed. ok is false
// when the deadline is missing or unparseable; such assignments are
// skipped by the engine rather than failing the whole pass.
func DaysLeft(deadline string, today time.Time) (int, bool) {
	if deadline == "" {
		return 0, false
	}
	due, err := model.ParseDate(deadline)
	if err != nil {
		return 0, false
	}
	diff := due.Sub(model.Midnight(today))
	days := int(diff / day)
	if diff%day > 0 {
		days++
	}
	return days + 1, true
}

// Less is the canonical processing order: earlier deadline first, then
// larger estimated effort, then higher difficulty. Assignments whose
// deadline cannot be resolved sort last.
func Less(a, b model.Assignment, today time.Time) bool {
	daysA, okA := DaysLeft(a.Deadline, today)
	daysB, okB := DaysLeft(b.Deadline, today)
	if okA != okB {
		return okA
	}
	if okA && daysA != daysB {
		return daysA < daysB
	}
	if a.EstimatedTime != b.EstimatedTime {
		return a.EstimatedTime > b.EstimatedTime
	}
	return a.Difficulty > b.Difficulty
}

// Allocations distributes each active assignment's remaining effort
// evenly across the days from today through its deadline. Per-day
// shares are rounded up so the full estimate is covered no later than
// the deadline; the resulting overshoot on the last day is accepted.
// Past-due assignments contribute no records. Records from different
// assignments are independent even when they share a date; the engine
// informs the daily load, it does not cap it.
func Allocations(assignments []model.Assignment, today time.Time) []model.DailyAllocation {
	active := make([]model.Assignment, 0, len(assignments))
	for _, a := range assignments {
		if !a.Completed {
			active = append(active, a)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return Less(active[i], active[j], today)
	})

	start := model.Midnight(today)
	out := make([]model.DailyAllocation, 0, len(active))
	for _, a := range active {
		daysLeft, ok := DaysLeft(a.Deadline, today)
		if !ok || daysLeft <= 0 {
			continue
		}
		dailyTime := ceilDiv(a.EstimatedTime, daysLeft)
		for i := 0; i < daysLeft; i++ {
			out = append(out, model.DailyAllocation{
				AssignmentID:  a.ID,
				Date:          model.FormatDate(start.AddDate(0, 0, i)),
				AllocatedTime: dailyTime,
			})
		}
	}
	return out
}

// Progress derives a pace percentage from the completion-date record:
// days checked off over days available, counted from the earliest
// check-in (or today when there is none) through the deadline. It
// rewards consistent daily check-ins, not effort volume.
func Progress(a model.Assignment, today time.Time) int {
	if a.Deadline == "" {
		return 0
	}
	due, err := model.ParseDate(a.Deadline)
	if err != nil {
		return 0
	}

	var start time.Time
	for _, d := range a.CompletedDates {
		t, perr := model.ParseDate(d)
		if perr != nil {
			continue
		}
		if start.IsZero() || t.Before(start) {
			start = t
		}
	}
	if start.IsZero() {
		start = model.Midnight(today)
	}

	totalDays := int(due.Sub(start)/day) + 1
	if totalDays <= 0 {
		return 100
	}
	completedDays := len(a.CompletedDates)
	progress := (completedDays*100 + totalDays/2) / totalDays
	if progress > 100 {
		return 100
	}
	return progress
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}
