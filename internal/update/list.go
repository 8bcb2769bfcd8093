package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/assignd/internal/store"
)

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.List.Cursor < len(m.List.Rows)-1 {
			m.List.Cursor++
		}
		return m, nil
	case "k", "up":
		if m.List.Cursor > 0 {
			m.List.Cursor--
		}
		return m, nil
	case " ":
		if row, ok := m.currentListRow(); ok {
			if m.List.Selected[row.Assignment.ID] {
				delete(m.List.Selected, row.Assignment.ID)
			} else {
				m.List.Selected[row.Assignment.ID] = true
			}
		}
		return m, nil
	case "x":
		if row, ok := m.currentListRow(); ok {
			if err := m.Store.ToggleToday(row.Assignment.ID); err != nil {
				m.Status = StatusBar{Text: err.Error(), IsError: true}
				return m, nil
			}
			m.refreshDerived()
		}
		return m, nil
	case "e":
		if row, ok := m.currentListRow(); ok {
			m.openForm(row.Assignment.ID)
		}
		return m, nil
	case "d":
		return m.deleteCurrent()
	case "f":
		m.Filter = nextFilter(m.Filter)
		m.refreshDerived()
		return m, nil
	case "s":
		return m.cycleSort()
	}
	return m, nil
}

func (m Model) handleTodayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.Today.Cursor < len(m.Today.Items)-1 {
			m.Today.Cursor++
		}
		return m, nil
	case "k", "up":
		if m.Today.Cursor > 0 {
			m.Today.Cursor--
		}
		return m, nil
	case "x", " ", "enter":
		if m.Today.Cursor < len(m.Today.Items) {
			item := m.Today.Items[m.Today.Cursor]
			if err := m.Store.ToggleToday(item.Assignment.ID); err != nil {
				m.Status = StatusBar{Text: err.Error(), IsError: true}
				return m, nil
			}
			m.refreshDerived()
		}
		return m, nil
	}
	return m, nil
}

func (m Model) currentListRow() (ListRow, bool) {
	if m.List.Cursor < 0 || m.List.Cursor >= len(m.List.Rows) {
		return ListRow{}, false
	}
	return m.List.Rows[m.List.Cursor], true
}

// deleteCurrent removes the selected assignments, or the one under the
// cursor when nothing is selected.
func (m Model) deleteCurrent() (tea.Model, tea.Cmd) {
	if len(m.List.Selected) > 0 {
		ids := make([]int64, 0, len(m.List.Selected))
		for id := range m.List.Selected {
			ids = append(ids, id)
		}
		n := m.Store.DeleteMany(ids)
		m.List.Selected = make(map[int64]bool)
		m.refreshDerived()
		m.Status = StatusBar{Text: fmt.Sprintf("deleted %d assignments", n)}
		return m, statusAfter(3 * time.Second)
	}

	row, ok := m.currentListRow()
	if !ok {
		return m, nil
	}
	if err := m.Store.Delete(row.Assignment.ID); err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.refreshDerived()
	m.Status = StatusBar{Text: fmt.Sprintf("deleted %q", row.Assignment.Title)}
	return m, statusAfter(3 * time.Second)
}

func nextFilter(f store.FilterKind) store.FilterKind {
	switch f {
	case store.FilterAll:
		return store.FilterActive
	case store.FilterActive:
		return store.FilterCompleted
	default:
		return store.FilterAll
	}
}

func nextSort(k store.SortKind) store.SortKind {
	switch k {
	case store.SortManual:
		return store.SortAuto
	case store.SortAuto:
		return store.SortDeadline
	case store.SortDeadline:
		return store.SortDifficulty
	case store.SortDifficulty:
		return store.SortTime
	case store.SortTime:
		return store.SortAI
	default:
		return store.SortManual
	}
}

// cycleSort advances the sort mode. Entering the ai mode kicks off an
// async advisor call; the order is applied (or the previous mode
// restored) when AdvisedOrderMsg arrives.
func (m Model) cycleSort() (tea.Model, tea.Cmd) {
	if m.aiBusy {
		return m, nil
	}
	next := nextSort(m.Sort)
	if next != store.SortAI {
		m.Sort = next
		m.refreshDerived()
		return m, nil
	}

	m.prevSort = m.Sort
	m.Sort = store.SortAI
	m.aiBusy = true
	m.Status = StatusBar{Text: "asking the ai for an order..."}
	return m, tea.Batch(suggestOrderCmd(m.Advisor, m.Store), m.syncSpinner.Tick)
}

func (m Model) onAdvisedOrder(msg AdvisedOrderMsg) (tea.Model, tea.Cmd) {
	m.aiBusy = false
	if msg.Err != nil {
		m.Sort = m.prevSort
		m.refreshDerived()
		m.Status = StatusBar{Text: "ai sort failed: " + msg.Err.Error(), IsError: true}
		return m, nil
	}
	m.Store.ApplyAdvisedOrder(msg.IDs)
	m.Sort = store.SortManual
	m.refreshDerived()
	m.Status = StatusBar{Text: "applied ai-suggested order"}
	return m, statusAfter(3 * time.Second)
}
