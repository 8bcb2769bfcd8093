package update

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/assignd/internal/advisor"
	"github.com/sandeepkv93/assignd/internal/store"
)

const advisorTimeout = 45 * time.Second

// suggestOrderCmd asks the advisor to rank the incomplete assignments.
// The snapshot is taken inside the command so the request sees the
// list as it was when the user asked.
func suggestOrderCmd(adv advisor.Advisor, st *store.Store) tea.Cmd {
	return func() tea.Msg {
		assignments, _ := st.Snapshot()
		items := make([]advisor.Item, 0, len(assignments))
		for _, a := range assignments {
			if a.Completed {
				continue
			}
			items = append(items, advisor.Item{
				ID:            a.ID,
				Title:         a.Title,
				Subject:       a.Subject,
				Deadline:      a.Deadline,
				Difficulty:    a.Difficulty,
				EstimatedTime: a.EstimatedTime,
			})
		}

		ctx, cancel := context.WithTimeout(context.Background(), advisorTimeout)
		defer cancel()
		ids, err := adv.SuggestOrder(ctx, items)
		return AdvisedOrderMsg{IDs: ids, Err: err}
	}
}

func estimateCmd(adv advisor.Advisor, title, subject, description string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), advisorTimeout)
		defer cancel()
		est, err := adv.EstimateEffort(ctx, title, subject, description)
		return EstimateMsg{Estimate: est, Err: err}
	}
}
