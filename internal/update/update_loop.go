package update

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/assignd/internal/model"
	"github.com/sandeepkv93/assignd/internal/views"
)

func (m Model) Init() tea.Cmd {
	if m.Sync != nil {
		return waitForSyncErrorCmd(m.Sync.Errors())
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.CurrentView == ViewForm {
			return m.handleFormKey(typed)
		}

		switch typed.String() {
		case m.Keys.Today:
			m.CurrentView = ViewToday
			m.refreshDerived()
			return m, nil
		case m.Keys.List:
			m.CurrentView = ViewList
			m.refreshDerived()
			return m, nil
		case m.Keys.Add:
			m.openForm(0)
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			if m.Sync != nil {
				m.Sync.Stop()
			}
			return m, tea.Quit
		}

		if m.CurrentView == ViewList {
			return m.handleListKey(typed)
		}
		return m.handleTodayKey(typed)

	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
			m.refreshDerived()
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	case AdvisedOrderMsg:
		return m.onAdvisedOrder(typed)
	case EstimateMsg:
		return m.onEstimate(typed)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.syncSpinner, cmd = m.syncSpinner.Update(typed)
		if m.aiBusy || m.Form.Busy {
			return m, cmd
		}
		return m, nil
	case SyncErrorMsg:
		if typed.Err != nil {
			m.lastSyncErr = typed.Err.Error()
			m.Status = StatusBar{Text: "sync: " + typed.Err.Error(), IsError: true}
		}
		if m.Sync != nil {
			return m, waitForSyncErrorCmd(m.Sync.Errors())
		}
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	primary := ""
	side := ""
	switch m.CurrentView {
	case ViewToday:
		primary = m.renderTodayView()
		side = m.renderListView()
	case ViewList:
		primary = m.renderListView()
		side = m.renderTodayView()
	case ViewForm:
		primary = m.renderFormView()
		side = m.renderTodayView()
	}
	if m.HelpVisible {
		side = m.renderHelpView()
	}

	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("assignd | view: %s | %d assignments", m.CurrentView, m.Store.Len()),
		Primary:    primary,
		Side:       side,
		StatusLine: m.Status.Text,
		StatusErr:  m.Status.IsError,
		SyncLine:   m.renderSyncStatus(),
		Footer: fmt.Sprintf("keys: %s today | %s list | %s add | %s help | %s quit",
			m.Keys.Today, m.Keys.List, m.Keys.Add, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) renderListView() string {
	rows := make([]views.ListRowData, len(m.List.Rows))
	for i, row := range m.List.Rows {
		a := row.Assignment
		rows[i] = views.ListRowData{
			ID:         a.ID,
			Title:      a.Title,
			Subject:    a.Subject,
			Deadline:   a.Deadline,
			DaysLeft:   row.DaysLeft,
			HasDays:    row.HasDays,
			Difficulty: a.Difficulty,
			Estimated:  a.EstimatedTime,
			Progress:   row.Progress,
			Completed:  a.Completed,
			DoneToday:  row.DoneToday,
			Selected:   m.List.Selected[a.ID],
		}
	}
	return views.RenderListPanel(views.ListPanelData{
		Rows:       rows,
		Cursor:     m.List.Cursor,
		FilterName: string(m.Filter),
		SortName:   string(m.Sort),
		AIBusy:     m.aiBusy,
	})
}

func (m Model) renderTodayView() string {
	rows := make([]views.TodayRowData, len(m.Today.Items))
	for i, item := range m.Today.Items {
		rows[i] = views.TodayRowData{
			Title:     item.Assignment.Title,
			Subject:   item.Assignment.Subject,
			Allocated: item.AllocatedTime,
			Done:      item.AllocationDone,
		}
	}
	return views.RenderTodayPanel(views.TodayPanelData{
		Rows:   rows,
		Cursor: m.Today.Cursor,
		Date:   model.FormatDate(model.Midnight(m.now())),
	})
}

func (m Model) renderSyncStatus() string {
	data := views.SyncStatusData{
		SignedIn: m.Sync != nil && m.syncUserID != "",
		UserID:   m.syncUserID,
		LastErr:  m.lastSyncErr,
	}
	if m.Sync != nil {
		data.Pushes = m.Sync.Pushes()
	}
	line := views.RenderSyncStatus(data)
	if m.aiBusy || m.Form.Busy {
		line = m.syncSpinner.View() + " " + line
	}
	return line
}

func (m Model) renderHelpView() string {
	return views.RenderMarkdown(`# assignd

## Screens
- **1** today's plan, **2** full list, **a** add assignment

## List
- **j/k** move, **space** select, **x** check off today
- **e** edit, **d** delete selected (or current)
- **f** cycle filter, **s** cycle sort (ends at ai)

## Form
- **tab** next field, **enter** save, **esc** cancel
- **ctrl+e** ask the AI for difficulty and time

Press **?** to close this help.`)
}

func isKnownView(v View) bool {
	switch v {
	case ViewToday, ViewList, ViewForm:
		return true
	default:
		return false
	}
}

func waitForSyncErrorCmd(ch <-chan error) tea.Cmd {
	return func() tea.Msg {
		err, ok := <-ch
		if !ok {
			return nil
		}
		return SyncErrorMsg{Err: err}
	}
}

// statusAfter clears a transient status line once it has been on
// screen for a moment.
func statusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return ClearStatusMsg{} })
}
