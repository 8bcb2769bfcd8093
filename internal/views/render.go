package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Pane widths are fixed. Assignment rows carry deadline, effort,
// difficulty and progress columns and need the room; the today plan
// and the help screen fit in the narrower side pane.
const (
	primaryWidth = 66
	sideWidth    = 44
)

type AppData struct {
	Header     string
	Primary    string
	Side       string
	StatusLine string
	StatusErr  bool
	SyncLine   string
	Footer     string
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	syncStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	doneStyle   = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("8"))
	urgentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))

	primaryPane = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(primaryWidth)
	sidePane = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1).
			Width(sideWidth)
)

// RenderApp lays the screen out as a wide working pane beside a
// narrower reference pane, with the status and sync lines joined
// underneath.
func RenderApp(data AppData) string {
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		primaryPane.Render(data.Primary),
		sidePane.Render(data.Side),
	)

	status := statusStyle.Render(data.StatusLine)
	if data.StatusErr {
		status = errorStyle.Render("error: " + data.StatusLine)
	}
	bottom := status
	if data.SyncLine != "" {
		bottom = status + "  " + syncStyle.Render(data.SyncLine)
	}

	lines := []string{
		headerStyle.Render(data.Header),
		panes,
		bottom,
	}
	if data.Footer != "" {
		lines = append(lines, footerStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

// RenderMarkdown renders help text wrapped to the side pane.
func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(sideWidth-4),
	)
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
