package views

import (
	"fmt"
	"strings"
)

type ListRowData struct {
	ID         int64
	Title      string
	Subject    string
	Deadline   string
	DaysLeft   int
	HasDays    bool
	Difficulty int
	Estimated  int
	Progress   int
	Completed  bool
	DoneToday  bool
	Selected   bool
}

type ListPanelData struct {
	Rows       []ListRowData
	Cursor     int
	FilterName string
	SortName   string
	AIBusy     bool
}

type TodayRowData struct {
	Title     string
	Subject   string
	Allocated int
	Done      bool
}

type TodayPanelData struct {
	Rows   []TodayRowData
	Cursor int
	Date   string
}

type FormFieldData struct {
	Label string
	View  string
	Err   string
}

type FormPanelData struct {
	Title          string
	Fields         []FormFieldData
	EstimateReason string
	Busy           bool
}

type SyncStatusData struct {
	SignedIn bool
	UserID   string
	Pushes   uint64
	LastErr  string
}

func RenderListPanel(data ListPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("assignments | filter: %s | sort: %s", data.FilterName, data.SortName))
	if data.AIBusy {
		b.WriteString(" | ai: thinking...")
	}
	b.WriteString("\n")
	b.WriteString("actions: [space]select [x]check [e]edit [d]delete [f]filter [s]sort\n")

	if len(data.Rows) == 0 {
		b.WriteString("(no assignments; press a to add one)\n")
		return strings.TrimSpace(b.String())
	}

	for i, row := range data.Rows {
		cursor := "  "
		if i == data.Cursor {
			cursor = "> "
		}
		marker := "[ ]"
		if row.Selected {
			marker = "[*]"
		}
		line := fmt.Sprintf("%s%s %s", cursor, marker, formatListRow(row))
		if row.Completed {
			line = doneStyle.Render(line)
		} else if row.HasDays && row.DaysLeft <= 1 {
			line = urgentStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimSpace(b.String())
}

func formatListRow(row ListRowData) string {
	check := " "
	if row.Completed {
		check = "x"
	} else if row.DoneToday {
		check = "~"
	}
	due := "no deadline"
	if row.Deadline != "" {
		due = row.Deadline + " " + daysLeftLabel(row.DaysLeft, row.HasDays)
	}
	return fmt.Sprintf("[%s] %s (%s) | %s | %dm | %s | %d%%",
		check, row.Title, row.Subject, due, row.Estimated, difficultyStars(row.Difficulty), row.Progress)
}

func daysLeftLabel(daysLeft int, ok bool) string {
	switch {
	case !ok:
		return ""
	case daysLeft == 1:
		return "(D-DAY)"
	case daysLeft > 1:
		return fmt.Sprintf("(D-%d)", daysLeft-1)
	default:
		return fmt.Sprintf("(%dd over)", 1-daysLeft)
	}
}

func difficultyStars(d int) string {
	if d < 1 {
		d = 1
	}
	if d > 5 {
		d = 5
	}
	return strings.Repeat("*", d) + strings.Repeat(".", 5-d)
}

func RenderTodayPanel(data TodayPanelData) string {
	var b strings.Builder
	total := 0
	for _, row := range data.Rows {
		total += row.Allocated
	}
	b.WriteString(fmt.Sprintf("today %s | %d min planned\n", data.Date, total))
	b.WriteString("actions: [j/k]move [x]check off [1]today [2]list\n")

	if len(data.Rows) == 0 {
		b.WriteString("(nothing scheduled for today)\n")
		return strings.TrimSpace(b.String())
	}

	for i, row := range data.Rows {
		cursor := "  "
		if i == data.Cursor {
			cursor = "> "
		}
		check := " "
		if row.Done {
			check = "x"
		}
		line := fmt.Sprintf("%s[%s] %s (%s) | %d min", cursor, check, row.Title, row.Subject, row.Allocated)
		if row.Done {
			line = doneStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderFormPanel(data FormPanelData) string {
	var b strings.Builder
	b.WriteString(data.Title + "\n")
	b.WriteString("actions: [tab]next [enter]save [esc]cancel [ctrl+e]ai estimate\n")
	for _, field := range data.Fields {
		b.WriteString(fmt.Sprintf("%-12s %s", field.Label+":", field.View))
		if field.Err != "" {
			b.WriteString("  " + errorStyle.Render("! "+field.Err))
		}
		b.WriteString("\n")
	}
	if data.Busy {
		b.WriteString("ai: estimating...\n")
	}
	if data.EstimateReason != "" {
		b.WriteString("ai says: " + data.EstimateReason + "\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderSyncStatus(data SyncStatusData) string {
	if !data.SignedIn {
		return "sync: off (local only)"
	}
	out := fmt.Sprintf("sync: on as %s | pushes: %d", data.UserID, data.Pushes)
	if data.LastErr != "" {
		out += " | last error: " + data.LastErr
	}
	return out
}
