package tasklist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/teamflow/internal/model"
	"github.com/nhle/teamflow/internal/theme"
	"github.com/nhle/teamflow/internal/ui"
)

// TaskItem wraps a model.Task with its resolved labels so it can be used
// in a bubbles/list.
type TaskItem struct {
	Task     model.Task
	Project  string
	Assignee string
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Title }

// Title returns the task title for the list.
func (i TaskItem) Title() string { return i.Task.Title }

// Description returns a short summary line for the list.
func (i TaskItem) Description() string {
	parts := []string{i.Task.Status.Label()}
	if i.Assignee != "" {
		parts = append(parts, "@"+i.Assignee)
	}
	if i.Project != "" {
		parts = append(parts, i.Project)
	}
	if rel := ui.RelativeTime(i.Task.UpdatedAt); rel != "" {
		parts = append(parts, rel)
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering task lines.
type ItemDelegate struct {
	now func() time.Time
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single list item line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(TaskItem)
	if !ok {
		return
	}
	fmt.Fprint(w, d.line(it, index == m.Index()))
}

func (d ItemDelegate) line(it TaskItem, selected bool) string {
	t := it.Task
	now := time.Now
	if d.now != nil {
		now = d.now
	}

	status := theme.StatusStyle(t.Status).Render(theme.StatusIcon(t.Status))
	priority := theme.PriorityStyle(t.Priority).Render(theme.PriorityIcon(t.Priority))
	id := theme.MutedStyle.Render("#" + t.ID.String())

	var extras []string
	if it.Project != "" {
		extras = append(extras, lipgloss.NewStyle().Foreground(theme.ColorBlue).Render(it.Project))
	}
	if it.Assignee != "" {
		extras = append(extras, lipgloss.NewStyle().Foreground(theme.ColorMagenta).Render("@"+it.Assignee))
	}
	if due := ui.DueLabel(t.DueDate, now()); due != "" {
		if t.DueDate.Before(now()) && t.Status != model.StatusDone {
			extras = append(extras, lipgloss.NewStyle().Foreground(theme.ColorRed).Bold(true).Render("overdue "+due))
		} else {
			extras = append(extras, theme.MutedStyle.Render("due "+due))
		}
	}

	line := fmt.Sprintf("%s %s %s %s", status, priority, id, t.Title)
	if len(extras) > 0 {
		line += "  " + strings.Join(extras, " ")
	}

	if t.Status == model.StatusDone {
		line = theme.MutedStyle.Render(line)
	}
	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}
