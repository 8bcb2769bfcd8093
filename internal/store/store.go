// Package store owns the canonical assignment list. All mutations are
// serialized behind one mutex, and every list mutation rebuilds the
// derived daily allocations from scratch; a completion toggle is the
// single exception, flipping one allocation record in place.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/sandeepkv93/assignd/internal/model"
	"github.com/sandeepkv93/assignd/internal/planner"
)

var ErrNotFound = errors.New("store: assignment not found")

type Store struct {
	mu          sync.Mutex
	now         func() time.Time
	assignments []model.Assignment
	allocations []model.DailyAllocation
	lastID      int64
	changed     chan struct{}
}

func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock fixes the store's notion of "today"; tests inject a
// deterministic clock here.
func NewWithClock(now func() time.Time) *Store {
	return &Store{
		now:     now,
		changed: make(chan struct{}, 1),
	}
}

// Changed delivers a coalesced signal after every mutation. The channel
// holds at most one pending signal; consumers that fall behind see a
// single wakeup for any number of missed mutations.
func (s *Store) Changed() <-chan struct{} {
	return s.changed
}

// Add validates the assignment, assigns a timestamp-derived ID and
// prepends it to the list.
func (s *Store) Add(in model.Assignment) (model.Assignment, error) {
	if err := in.Validate(); err != nil {
		return model.Assignment{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	in = in.Clone()
	in.ID = s.nextIDLocked()
	in.Completed = false
	in.TotalAllocatedTime = 0
	s.assignments = append([]model.Assignment{in}, s.assignments...)
	s.recomputeLocked()
	s.signalLocked()
	return in.Clone(), nil
}

func (s *Store) Edit(in model.Assignment) error {
	if err := in.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.assignments {
		if s.assignments[i].ID == in.ID {
			s.assignments[i] = in.Clone()
			s.recomputeLocked()
			s.signalLocked()
			return nil
		}
	}
	return ErrNotFound
}

func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.assignments[:0]
	found := false
	for _, a := range s.assignments {
		if a.ID == id {
			found = true
			continue
		}
		kept = append(kept, a)
	}
	if !found {
		return ErrNotFound
	}
	s.assignments = kept
	s.recomputeLocked()
	s.signalLocked()
	return nil
}

// DeleteMany removes every listed assignment and reports how many were
// actually present.
func (s *Store) DeleteMany(ids []int64) int {
	drop := make(map[int64]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.assignments[:0]
	removed := 0
	for _, a := range s.assignments {
		if drop[a.ID] {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	s.assignments = kept
	if removed > 0 {
		s.recomputeLocked()
		s.signalLocked()
	}
	return removed
}

// ToggleToday flips the completion check for the current calendar day.
func (s *Store) ToggleToday(id int64) error {
	return s.Toggle(id, model.FormatDate(model.Midnight(s.now())))
}

// Toggle flips membership of date in the assignment's completion
// record and flips the matching allocation record in lockstep. The
// overall completed flag follows the legacy rule: checking a day while
// earlier check-ins exist marks the whole assignment complete, and an
// empty record always clears the flag. That first part is a quirk kept
// for data compatibility.
func (s *Store) Toggle(id int64, date string) error {
	if _, err := model.ParseDate(date); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.assignments {
		if s.assignments[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	a := &s.assignments[idx]
	wasDone := a.DoneOn(date)
	priorCount := len(a.CompletedDates)
	if wasDone {
		next := make([]string, 0, priorCount-1)
		for _, d := range a.CompletedDates {
			if d != date {
				next = append(next, d)
			}
		}
		a.CompletedDates = next
	} else {
		a.CompletedDates = append(append([]string(nil), a.CompletedDates...), date)
	}

	fully := a.Completed || (!wasDone && priorCount > 0)
	if len(a.CompletedDates) > 0 {
		a.Completed = fully
	} else {
		a.Completed = false
	}

	for i := range s.allocations {
		alloc := &s.allocations[i]
		if alloc.AssignmentID == id && alloc.Date == date {
			alloc.Completed = !alloc.Completed
		}
	}

	s.signalLocked()
	return nil
}

// Replace swaps in an imported assignment list wholesale.
func (s *Store) Replace(assignments []model.Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assignments = cloneAssignments(assignments)
	s.bumpIDFloorLocked()
	s.recomputeLocked()
	s.signalLocked()
}

// Load installs a snapshot pulled from a persistence backend. The
// allocation set is rebuilt from the loaded assignments rather than
// trusted as stored, restoring the one-record-per-day invariant.
func (s *Store) Load(assignments []model.Assignment, _ []model.DailyAllocation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assignments = cloneAssignments(assignments)
	s.bumpIDFloorLocked()
	s.recomputeLocked()
}

// SetOrder rearranges the manual order: listed IDs first, in the given
// sequence, then any unlisted assignments in their current order.
func (s *Store) SetOrder(ids []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reorderLocked(ids)
	s.signalLocked()
}

// ApplyAdvisedOrder is SetOrder for an advisory service result; the
// advised order becomes the new manual order.
func (s *Store) ApplyAdvisedOrder(ids []int64) {
	s.SetOrder(ids)
}

// Snapshot returns deep copies of the assignment list and the current
// allocation set; callers may hold them across lock boundaries.
func (s *Store) Snapshot() ([]model.Assignment, []model.DailyAllocation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAssignments(s.assignments), append([]model.DailyAllocation(nil), s.allocations...)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.assignments)
}

func (s *Store) Get(id int64) (model.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.assignments {
		if a.ID == id {
			return a.Clone(), nil
		}
	}
	return model.Assignment{}, ErrNotFound
}

func (s *Store) reorderLocked(ids []int64) {
	byID := make(map[int64]int, len(s.assignments))
	for i, a := range s.assignments {
		byID[a.ID] = i
	}

	next := make([]model.Assignment, 0, len(s.assignments))
	taken := make(map[int64]bool, len(ids))
	for _, id := range ids {
		i, ok := byID[id]
		if !ok || taken[id] {
			continue
		}
		taken[id] = true
		next = append(next, s.assignments[i])
	}
	for _, a := range s.assignments {
		if !taken[a.ID] {
			next = append(next, a)
		}
	}
	s.assignments = next
}

// recomputeLocked rebuilds the derived allocation set and refreshes
// each assignment's informational allocation total.
func (s *Store) recomputeLocked() {
	s.allocations = planner.Allocations(s.assignments, s.now())

	totals := make(map[int64]int, len(s.assignments))
	for _, alloc := range s.allocations {
		totals[alloc.AssignmentID] += alloc.AllocatedTime
	}
	for i := range s.assignments {
		s.assignments[i].TotalAllocatedTime = totals[s.assignments[i].ID]
	}
}

func (s *Store) nextIDLocked() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// bumpIDFloorLocked keeps newly assigned IDs above anything imported.
func (s *Store) bumpIDFloorLocked() {
	for _, a := range s.assignments {
		if a.ID > s.lastID {
			s.lastID = a.ID
		}
	}
}

func (s *Store) signalLocked() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

func cloneAssignments(in []model.Assignment) []model.Assignment {
	out := make([]model.Assignment, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}
