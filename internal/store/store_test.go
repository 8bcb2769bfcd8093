package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/assignd/internal/model"
)

var testNow = time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

func newTestStore() *Store {
	return NewWithClock(func() time.Time { return testNow })
}

func dateIn(days int) string {
	return model.FormatDate(model.Midnight(testNow).AddDate(0, 0, days))
}

func mustAdd(t *testing.T, s *Store, a model.Assignment) model.Assignment {
	t.Helper()
	added, err := s.Add(a)
	if err != nil {
		t.Fatalf("add assignment: %v", err)
	}
	return added
}

func TestAddAssignsMonotonicIDs(t *testing.T) {
	s := newTestStore()
	first := mustAdd(t, s, model.Assignment{Title: "A", Subject: "S", EstimatedTime: 30, Difficulty: 2, Deadline: dateIn(2)})
	second := mustAdd(t, s, model.Assignment{Title: "B", Subject: "S", EstimatedTime: 30, Difficulty: 2, Deadline: dateIn(2)})
	if first.ID <= 0 {
		t.Fatalf("expected positive id, got %d", first.ID)
	}
	if second.ID <= first.ID {
		t.Fatalf("expected strictly increasing ids, got %d then %d", first.ID, second.ID)
	}
}

func TestAddRejectsInvalidWithoutMutating(t *testing.T) {
	s := newTestStore()
	_, err := s.Add(model.Assignment{Title: "", Subject: "S", EstimatedTime: 30, Difficulty: 2})
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("store mutated by rejected add: %d assignments", s.Len())
	}
}

func TestMutationsRebuildAllocations(t *testing.T) {
	s := newTestStore()
	a := mustAdd(t, s, model.Assignment{Title: "Report", Subject: "Sci", EstimatedTime: 100, Difficulty: 3, Deadline: dateIn(4)})

	_, allocs := s.Snapshot()
	if len(allocs) != 5 {
		t.Fatalf("expected 5 allocations after add, got %d", len(allocs))
	}

	a.Deadline = dateIn(0)
	if err := s.Edit(a); err != nil {
		t.Fatalf("edit: %v", err)
	}
	_, allocs = s.Snapshot()
	if len(allocs) != 1 {
		t.Fatalf("expected 1 allocation after deadline edit, got %d", len(allocs))
	}

	if err := s.Delete(a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, allocs = s.Snapshot()
	if len(allocs) != 0 {
		t.Fatalf("expected no allocations after delete, got %d", len(allocs))
	}
}

func TestRecomputeUpdatesAllocationTotals(t *testing.T) {
	s := newTestStore()
	a := mustAdd(t, s, model.Assignment{Title: "Drill", Subject: "Eng", EstimatedTime: 10, Difficulty: 1, Deadline: dateIn(2)})

	got, err := s.Get(a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	// ceil(10/3)=4 over three days.
	if got.TotalAllocatedTime != 12 {
		t.Fatalf("expected informational total 12, got %d", got.TotalAllocatedTime)
	}
}

func TestToggleTodayRoundTrip(t *testing.T) {
	s := newTestStore()
	a := mustAdd(t, s, model.Assignment{Title: "Essay", Subject: "Hist", EstimatedTime: 60, Difficulty: 3, Deadline: dateIn(3)})
	today := dateIn(0)

	if err := s.ToggleToday(a.ID); err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	got, _ := s.Get(a.ID)
	if !got.DoneOn(today) {
		t.Fatalf("expected today in completed dates, got %v", got.CompletedDates)
	}
	if got.Completed {
		t.Fatal("single check-in must not complete the assignment")
	}
	_, allocs := s.Snapshot()
	if !findAlloc(t, allocs, a.ID, today).Completed {
		t.Fatal("expected today's allocation flipped to completed")
	}

	if err := s.ToggleToday(a.ID); err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	got, _ = s.Get(a.ID)
	if got.DoneOn(today) || got.Completed {
		t.Fatalf("expected toggle to reverse, got %+v", got)
	}
	_, allocs = s.Snapshot()
	if findAlloc(t, allocs, a.ID, today).Completed {
		t.Fatal("expected today's allocation flipped back")
	}
}

func TestToggleLegacyCompletionQuirk(t *testing.T) {
	// Checking a second day while a prior check-in exists marks the
	// whole assignment complete. Kept bug-for-bug for data written by
	// older builds.
	s := newTestStore()
	a := mustAdd(t, s, model.Assignment{
		Title: "Workbook", Subject: "Math", EstimatedTime: 90, Difficulty: 3,
		Deadline: dateIn(5), CompletedDates: []string{dateIn(-1)},
	})

	if err := s.ToggleToday(a.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	got, _ := s.Get(a.ID)
	if !got.Completed {
		t.Fatalf("expected legacy rule to mark assignment complete, got %+v", got)
	}

	// Unchecking leaves the overall flag set while dates remain.
	if err := s.ToggleToday(a.ID); err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	got, _ = s.Get(a.ID)
	if !got.Completed {
		t.Fatal("expected overall flag to stick while check-ins remain")
	}
	if got.DoneOn(dateIn(0)) {
		t.Fatal("expected today's check-in removed")
	}
}

func TestToggleEmptyRecordClearsCompleted(t *testing.T) {
	s := newTestStore()
	a := mustAdd(t, s, model.Assignment{
		Title: "Lab", Subject: "Chem", EstimatedTime: 45, Difficulty: 2,
		Deadline: dateIn(4), CompletedDates: []string{dateIn(0)},
	})
	// Force the completed flag the way legacy data can carry it.
	got, _ := s.Get(a.ID)
	got.Completed = true
	if err := s.Edit(got); err != nil {
		t.Fatalf("edit: %v", err)
	}

	if err := s.ToggleToday(a.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	got, _ = s.Get(a.ID)
	if len(got.CompletedDates) != 0 || got.Completed {
		t.Fatalf("expected cleared record and flag, got %+v", got)
	}
}

func TestToggleUnknownAssignment(t *testing.T) {
	s := newTestStore()
	if err := s.ToggleToday(42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteMany(t *testing.T) {
	s := newTestStore()
	a := mustAdd(t, s, model.Assignment{Title: "A", Subject: "S", EstimatedTime: 10, Difficulty: 1, Deadline: dateIn(1)})
	b := mustAdd(t, s, model.Assignment{Title: "B", Subject: "S", EstimatedTime: 10, Difficulty: 1, Deadline: dateIn(1)})
	mustAdd(t, s, model.Assignment{Title: "C", Subject: "S", EstimatedTime: 10, Difficulty: 1, Deadline: dateIn(1)})

	removed := s.DeleteMany([]int64{a.ID, b.ID, 999})
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 remaining, got %d", s.Len())
	}
}

func TestSetOrderAppendsUnlisted(t *testing.T) {
	s := newTestStore()
	mustAdd(t, s, model.Assignment{Title: "A", Subject: "S", EstimatedTime: 10, Difficulty: 1, Deadline: dateIn(1)})
	b := mustAdd(t, s, model.Assignment{Title: "B", Subject: "S", EstimatedTime: 10, Difficulty: 1, Deadline: dateIn(1)})
	mustAdd(t, s, model.Assignment{Title: "C", Subject: "S", EstimatedTime: 10, Difficulty: 1, Deadline: dateIn(1)})

	// Stored order is newest-first: C, B, A. Advise B first; the unknown
	// id is ignored and the rest keep their relative order.
	s.ApplyAdvisedOrder([]int64{b.ID, 12345})
	got := s.View(FilterAll, SortManual)
	wantTitles := []string{"B", "C", "A"}
	for i, w := range wantTitles {
		if got[i].Title != w {
			t.Fatalf("position %d: got %q want %q (order %v)", i, got[i].Title, w, titles(got))
		}
	}
}

func TestMutationsAreSerialized(t *testing.T) {
	s := newTestStore()
	seed := mustAdd(t, s, model.Assignment{Title: "Seed", Subject: "S", EstimatedTime: 30, Difficulty: 2, Deadline: dateIn(3)})

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				switch i % 3 {
				case 0:
					_, _ = s.Add(model.Assignment{
						Title: fmt.Sprintf("w%d-%d", w, i), Subject: "S",
						EstimatedTime: 10 + i, Difficulty: 1 + i%5, Deadline: dateIn(1 + i%5),
					})
				case 1:
					_ = s.ToggleToday(seed.ID)
				default:
					s.View(FilterActive, SortAuto)
				}
			}
		}()
	}
	wg.Wait()

	assignments, allocs := s.Snapshot()
	ids := make(map[int64]bool, len(assignments))
	for _, a := range assignments {
		if ids[a.ID] {
			t.Fatalf("duplicate id %d after concurrent mutations", a.ID)
		}
		ids[a.ID] = true
	}
	for _, alloc := range allocs {
		if !ids[alloc.AssignmentID] {
			t.Fatalf("allocation references unknown assignment %d", alloc.AssignmentID)
		}
	}
}

func TestChangedSignalCoalesces(t *testing.T) {
	s := newTestStore()
	mustAdd(t, s, model.Assignment{Title: "A", Subject: "S", EstimatedTime: 10, Difficulty: 1, Deadline: dateIn(1)})
	mustAdd(t, s, model.Assignment{Title: "B", Subject: "S", EstimatedTime: 10, Difficulty: 1, Deadline: dateIn(1)})

	select {
	case <-s.Changed():
	default:
		t.Fatal("expected a pending change signal")
	}
	select {
	case <-s.Changed():
		t.Fatal("expected signals to coalesce into one")
	default:
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := newTestStore()
	a := mustAdd(t, s, model.Assignment{
		Title: "A", Subject: "S", EstimatedTime: 10, Difficulty: 1,
		Deadline: dateIn(2), CompletedDates: []string{dateIn(-1)},
	})

	assignments, _ := s.Snapshot()
	assignments[0].CompletedDates[0] = "1999-01-01"
	assignments[0].Title = "mutated"

	got, _ := s.Get(a.ID)
	if got.Title != "A" || got.CompletedDates[0] != dateIn(-1) {
		t.Fatalf("snapshot shares state with store: %+v", got)
	}
}

func findAlloc(t *testing.T, allocs []model.DailyAllocation, id int64, date string) model.DailyAllocation {
	t.Helper()
	for _, alloc := range allocs {
		if alloc.AssignmentID == id && alloc.Date == date {
			return alloc
		}
	}
	t.Fatalf("allocation for assignment %d on %s not found", id, date)
	return model.DailyAllocation{}
}

func titles(in []model.Assignment) []string {
	out := make([]string, len(in))
	for i, a := range in {
		out[i] = a.Title
	}
	return out
}
