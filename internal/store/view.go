package store

import (
	"sort"

	"github.com/sandeepkv93/assignd/internal/model"
	"github.com/sandeepkv93/assignd/internal/planner"
)

type FilterKind string

const (
	FilterAll       FilterKind = "all"
	FilterActive    FilterKind = "active"
	FilterCompleted FilterKind = "completed"
)

func (f FilterKind) IsValid() bool {
	switch f {
	case FilterAll, FilterActive, FilterCompleted:
		return true
	default:
		return false
	}
}

type SortKind string

const (
	SortManual     SortKind = "manual"
	SortAuto       SortKind = "auto"
	SortDeadline   SortKind = "deadline"
	SortDifficulty SortKind = "difficulty"
	SortTime       SortKind = "time"
	SortAI         SortKind = "ai"
)

func (k SortKind) IsValid() bool {
	switch k {
	case SortManual, SortAuto, SortDeadline, SortDifficulty, SortTime, SortAI:
		return true
	default:
		return false
	}
}

// View returns a filtered, ordered copy of the assignment list. All
// sorts here are view-only; SortAI has a persistent side effect and is
// resolved by the caller via an advisor plus ApplyAdvisedOrder, so it
// renders as the stored manual order.
func (s *Store) View(filter FilterKind, kind SortKind) []model.Assignment {
	s.mu.Lock()
	out := cloneAssignments(s.assignments)
	today := s.now()
	s.mu.Unlock()

	switch kind {
	case SortAuto:
		sort.SliceStable(out, func(i, j int) bool {
			return planner.Less(out[i], out[j], today)
		})
	case SortDeadline:
		sort.SliceStable(out, func(i, j int) bool {
			if (out[i].Deadline == "") != (out[j].Deadline == "") {
				return out[i].Deadline != ""
			}
			return out[i].Deadline < out[j].Deadline
		})
	case SortDifficulty:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Difficulty > out[j].Difficulty
		})
	case SortTime:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].EstimatedTime > out[j].EstimatedTime
		})
	}

	switch filter {
	case FilterActive:
		return keep(out, func(a model.Assignment) bool { return !a.Completed })
	case FilterCompleted:
		return keep(out, func(a model.Assignment) bool { return a.Completed })
	default:
		return out
	}
}

// TodayItem joins one of today's allocation records with its owning
// assignment for display.
type TodayItem struct {
	Assignment     model.Assignment
	AllocatedTime  int
	AllocationDone bool
}

// TodayItems returns the allocations dated today, joined with their
// assignments. Allocations whose assignment vanished are skipped.
func (s *Store) TodayItems() []TodayItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := model.FormatDate(model.Midnight(s.now()))
	byID := make(map[int64]model.Assignment, len(s.assignments))
	for _, a := range s.assignments {
		byID[a.ID] = a
	}

	out := make([]TodayItem, 0)
	for _, alloc := range s.allocations {
		if alloc.Date != today {
			continue
		}
		a, ok := byID[alloc.AssignmentID]
		if !ok {
			continue
		}
		out = append(out, TodayItem{
			Assignment:     a.Clone(),
			AllocatedTime:  alloc.AllocatedTime,
			AllocationDone: alloc.Completed,
		})
	}
	return out
}

func keep(in []model.Assignment, pred func(model.Assignment) bool) []model.Assignment {
	out := in[:0]
	for _, a := range in {
		if pred(a) {
			out = append(out, a)
		}
	}
	return out
}
