package ui

import (
	"fmt"
	"time"

	"github.com/nhle/teamflow/internal/model"
)

// AssigneeName resolves the display name of the task's assignee, preferring
// the user directory over whatever the task payload embedded. It returns ""
// for unassigned tasks.
func AssigneeName(t model.Task, users []model.User) string {
	if !t.IsAssigned() {
		return ""
	}
	for _, u := range users {
		if u.ID == *t.AssigneeID {
			return u.DisplayName()
		}
	}
	return t.AssigneeLabel()
}

// ProjectLabel returns "icon name" for the task's project, "" when the task
// has none, or "#id" when the project is not known locally.
func ProjectLabel(t model.Task, projects []model.Project) string {
	if !t.HasProject() {
		return ""
	}
	for _, p := range projects {
		if p.ID == *t.ProjectID {
			return p.Icon() + " " + p.Name
		}
	}
	return model.DefaultProjectIcon + " #" + t.ProjectID.String()
}

// DueLabel formats a due date relative to now.
func DueLabel(due *time.Time, now time.Time) string {
	if due == nil {
		return ""
	}
	y1, m1, d1 := due.Local().Date()
	y2, m2, d2 := now.Local().Date()
	switch {
	case y1 == y2 && m1 == m2 && d1 == d2:
		return "today"
	case y1 == y2 && m1 == m2 && d1 == d2+1:
		return "tomorrow"
	case y1 == y2:
		return due.Local().Format("Jan 02")
	default:
		return due.Local().Format("Jan 02 2006")
	}
}

// RelativeTime returns a human-friendly relative time string.
func RelativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	}
}
