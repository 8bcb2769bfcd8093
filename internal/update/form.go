package update

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/assignd/internal/model"
	"github.com/sandeepkv93/assignd/internal/views"
)

var formLabels = [fieldCount]string{
	fieldTitle:       "Title",
	fieldSubject:     "Subject",
	fieldDescription: "Description",
	fieldEstimated:   "Estimated minutes",
	fieldDifficulty:  "Difficulty (1-5)",
	fieldDeadline:    "Deadline",
}

// fieldKeys maps focus indexes to the field names model.Validate
// reports errors under, so every rejection lands on its input.
var fieldKeys = [fieldCount]string{
	fieldTitle:       "title",
	fieldSubject:     "subject",
	fieldDescription: "description",
	fieldEstimated:   "estimated_time",
	fieldDifficulty:  "difficulty",
	fieldDeadline:    "deadline",
}

// openForm switches to the form view. With id == 0 the form starts
// blank; otherwise it is populated from the stored assignment.
func (m *Model) openForm(id int64) {
	m.initFormInputs()
	m.Form.EditingID = 0
	m.Form.Focused = fieldTitle
	m.Form.EstimateReason = ""
	m.Form.Busy = false

	if id != 0 {
		a, err := m.Store.Get(id)
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return
		}
		m.Form.EditingID = id
		m.Form.Inputs[fieldTitle].SetValue(a.Title)
		m.Form.Inputs[fieldSubject].SetValue(a.Subject)
		m.Form.Inputs[fieldDescription].SetValue(a.Description)
		m.Form.Inputs[fieldEstimated].SetValue(strconv.Itoa(a.EstimatedTime))
		m.Form.Inputs[fieldDifficulty].SetValue(strconv.Itoa(a.Difficulty))
		m.Form.Inputs[fieldDeadline].SetValue(a.Deadline)
	}

	m.Form.Inputs[fieldTitle].Focus()
	m.CurrentView = ViewForm
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.CurrentView = ViewList
		m.refreshDerived()
		return m, nil
	case "tab", "shift+tab", "up", "down":
		m.Form.Inputs[m.Form.Focused].Blur()
		if msg.String() == "shift+tab" || msg.String() == "up" {
			m.Form.Focused = (m.Form.Focused + fieldCount - 1) % fieldCount
		} else {
			m.Form.Focused = (m.Form.Focused + 1) % fieldCount
		}
		m.Form.Inputs[m.Form.Focused].Focus()
		return m, nil
	case "enter":
		return m.submitForm()
	case "ctrl+e":
		return m.requestEstimate()
	}

	var cmd tea.Cmd
	m.Form.Inputs[m.Form.Focused], cmd = m.Form.Inputs[m.Form.Focused].Update(msg)
	return m, cmd
}

// formAssignment builds an Assignment from the current inputs. Numeric
// parse failures land in FieldErrs; everything else is left to
// model.Validate via the store.
func (m *Model) formAssignment() (model.Assignment, bool) {
	m.Form.FieldErrs = make(map[string]string)

	a := model.Assignment{
		ID:          m.Form.EditingID,
		Title:       strings.TrimSpace(m.Form.Inputs[fieldTitle].Value()),
		Subject:     strings.TrimSpace(m.Form.Inputs[fieldSubject].Value()),
		Description: strings.TrimSpace(m.Form.Inputs[fieldDescription].Value()),
		Deadline:    strings.TrimSpace(m.Form.Inputs[fieldDeadline].Value()),
	}

	if raw := strings.TrimSpace(m.Form.Inputs[fieldEstimated].Value()); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			m.Form.FieldErrs["estimated_time"] = "must be a number of minutes"
		} else {
			a.EstimatedTime = n
		}
	}
	if raw := strings.TrimSpace(m.Form.Inputs[fieldDifficulty].Value()); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			m.Form.FieldErrs["difficulty"] = "must be a number from 1 to 5"
		} else {
			a.Difficulty = n
		}
	}

	return a, len(m.Form.FieldErrs) == 0
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	a, ok := m.formAssignment()
	if !ok {
		return m, nil
	}

	var err error
	if m.Form.EditingID == 0 {
		_, err = m.Store.Add(a)
	} else {
		prev, getErr := m.Store.Get(m.Form.EditingID)
		if getErr != nil {
			m.Status = StatusBar{Text: getErr.Error(), IsError: true}
			return m, nil
		}
		a.Completed = prev.Completed
		a.CompletedDates = prev.CompletedDates
		err = m.Store.Edit(a)
	}

	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			m.Form.FieldErrs = verr.Fields
			return m, nil
		}
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	m.CurrentView = ViewList
	m.refreshDerived()
	if m.Form.EditingID == 0 {
		m.Status = StatusBar{Text: fmt.Sprintf("added %q", a.Title)}
	} else {
		m.Status = StatusBar{Text: fmt.Sprintf("updated %q", a.Title)}
	}
	return m, statusAfter(3 * time.Second)
}

func (m Model) requestEstimate() (tea.Model, tea.Cmd) {
	if m.Form.Busy {
		return m, nil
	}
	title := strings.TrimSpace(m.Form.Inputs[fieldTitle].Value())
	if title == "" {
		m.Form.FieldErrs = map[string]string{"title": "enter a title before asking for an estimate"}
		return m, nil
	}
	m.Form.Busy = true
	m.Form.EstimateReason = ""
	return m, tea.Batch(
		estimateCmd(m.Advisor, title,
			strings.TrimSpace(m.Form.Inputs[fieldSubject].Value()),
			strings.TrimSpace(m.Form.Inputs[fieldDescription].Value())),
		m.syncSpinner.Tick)
}

func (m Model) onEstimate(msg EstimateMsg) (tea.Model, tea.Cmd) {
	m.Form.Busy = false
	if msg.Err != nil {
		m.Status = StatusBar{Text: "estimate failed: " + msg.Err.Error(), IsError: true}
		return m, nil
	}
	m.Form.Inputs[fieldEstimated].SetValue(strconv.Itoa(msg.Estimate.EstimatedTime))
	m.Form.Inputs[fieldDifficulty].SetValue(strconv.Itoa(msg.Estimate.Difficulty))
	m.Form.EstimateReason = msg.Estimate.Reason
	return m, nil
}

func (m Model) renderFormView() string {
	title := "New assignment"
	if m.Form.EditingID != 0 {
		title = "Edit assignment"
	}
	fields := make([]views.FormFieldData, fieldCount)
	for i := 0; i < fieldCount; i++ {
		fields[i] = views.FormFieldData{
			Label: formLabels[i],
			View:  m.Form.Inputs[i].View(),
			Err:   m.Form.FieldErrs[fieldKeys[i]],
		}
	}
	return views.RenderFormPanel(views.FormPanelData{
		Title:          title,
		Fields:         fields,
		EstimateReason: m.Form.EstimateReason,
		Busy:           m.Form.Busy,
	})
}
