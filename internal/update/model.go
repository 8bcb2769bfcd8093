// Package update is the Bubble Tea program: key handling, derived view
// state, and the async bridges to the advisor and the sync
// coordinator. All list mutations go through the store; this package
// never touches assignment fields directly.
package update

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/sandeepkv93/assignd/internal/advisor"
	"github.com/sandeepkv93/assignd/internal/model"
	"github.com/sandeepkv93/assignd/internal/planner"
	"github.com/sandeepkv93/assignd/internal/store"
	"github.com/sandeepkv93/assignd/internal/syncer"
)

type View string

const (
	ViewToday View = "Today"
	ViewList  View = "List"
	ViewForm  View = "Form"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Today string
	List  string
	Add   string
	Help  string
	Quit  string
}

// ListRow pairs an assignment with the derived numbers the list screen
// shows next to it.
type ListRow struct {
	Assignment model.Assignment
	Progress   int
	DaysLeft   int
	HasDays    bool
	DoneToday  bool
}

type ListState struct {
	Rows     []ListRow
	Cursor   int
	Selected map[int64]bool
}

type TodayState struct {
	Items  []store.TodayItem
	Cursor int
}

// Form field indexes, in focus order.
const (
	fieldTitle = iota
	fieldSubject
	fieldDescription
	fieldEstimated
	fieldDifficulty
	fieldDeadline
	fieldCount
)

type FormState struct {
	EditingID      int64
	Inputs         []textinput.Model
	Focused        int
	FieldErrs      map[string]string
	EstimateReason string
	Busy           bool
}

type Model struct {
	CurrentView View
	Store       *store.Store
	Advisor     advisor.Advisor
	Sync        *syncer.Coordinator

	Filter store.FilterKind
	Sort   store.SortKind

	List  ListState
	Today TodayState
	Form  FormState

	Status      StatusBar
	Keys        GlobalKeyMap
	HelpVisible bool
	Quitting    bool
	LastError   error

	aiBusy      bool
	prevSort    store.SortKind
	syncUserID  string
	lastSyncErr string
	syncSpinner spinner.Model

	now func() time.Time
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type SwitchViewMsg struct {
	View View
}

// AdvisedOrderMsg carries the result of an async AI sort request.
type AdvisedOrderMsg struct {
	IDs []int64
	Err error
}

// EstimateMsg carries the result of an async AI effort estimate.
type EstimateMsg struct {
	Estimate advisor.Estimate
	Err      error
}

type SyncErrorMsg struct {
	Err error
}

func NewModel(st *store.Store) Model {
	m := Model{
		CurrentView: ViewToday,
		Store:       st,
		Advisor:     advisor.Disabled{},
		Filter:      store.FilterAll,
		Sort:        store.SortManual,
		prevSort:    store.SortManual,
		List: ListState{
			Selected: make(map[int64]bool),
		},
		Keys: GlobalKeyMap{
			Today: "1",
			List:  "2",
			Add:   "a",
			Help:  "?",
			Quit:  "q",
		},
		now: time.Now,
	}
	m.syncSpinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	m.initFormInputs()
	m.refreshDerived()
	return m
}

func NewModelWithRuntime(st *store.Store, adv advisor.Advisor, sync *syncer.Coordinator, userID string) Model {
	m := NewModel(st)
	if adv != nil {
		m.Advisor = adv
	}
	m.Sync = sync
	m.syncUserID = userID
	return m
}

// NewModelWithClock fixes "today" for deterministic tests.
func NewModelWithClock(st *store.Store, now func() time.Time) Model {
	m := NewModel(st)
	m.now = now
	return m
}

func (m *Model) initFormInputs() {
	labels := map[int]string{
		fieldTitle:       "Essay on the industrial revolution",
		fieldSubject:     "History",
		fieldDescription: "optional notes",
		fieldEstimated:   "90",
		fieldDifficulty:  "3",
		fieldDeadline:    model.DateLayout,
	}
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		in := textinput.New()
		in.Placeholder = labels[i]
		in.CharLimit = 120
		inputs[i] = in
	}
	inputs[fieldEstimated].CharLimit = 5
	inputs[fieldDifficulty].CharLimit = 1
	inputs[fieldDeadline].CharLimit = len(model.DateLayout)
	m.Form.Inputs = inputs
	m.Form.FieldErrs = make(map[string]string)
}

// refreshDerived rebuilds the rows both screens render from the
// store's current state.
func (m *Model) refreshDerived() {
	if m.Store == nil {
		return
	}
	today := m.now()

	assignments := m.Store.View(m.Filter, m.Sort)
	rows := make([]ListRow, len(assignments))
	todayKey := model.FormatDate(model.Midnight(today))
	for i, a := range assignments {
		days, ok := planner.DaysLeft(a.Deadline, today)
		rows[i] = ListRow{
			Assignment: a,
			Progress:   planner.Progress(a, today),
			DaysLeft:   days,
			HasDays:    ok,
			DoneToday:  a.DoneOn(todayKey),
		}
	}
	m.List.Rows = rows
	if m.List.Cursor >= len(rows) {
		m.List.Cursor = max(0, len(rows)-1)
	}

	m.Today.Items = m.Store.TodayItems()
	if m.Today.Cursor >= len(m.Today.Items) {
		m.Today.Cursor = max(0, len(m.Today.Items)-1)
	}
}
