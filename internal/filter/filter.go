package filter

import (
	"github.com/nhle/teamflow/internal/model"
)

// Unassigned matches tasks without a project (or assignee) reference.
const Unassigned = "unassigned"

// Criteria narrows a task list. Empty fields do not constrain; set fields
// are combined with AND.
type Criteria struct {
	Status     model.TaskStatus
	ProjectID  string
	AssigneeID string
}

// IsZero reports whether no constraint is set.
func (c Criteria) IsZero() bool {
	return c.Status == "" && c.ProjectID == "" && c.AssigneeID == ""
}

// Match reports whether t satisfies every constraint.
func (c Criteria) Match(t model.Task) bool {
	if c.Status != "" && t.Status != c.Status {
		return false
	}
	if !matchRef(c.ProjectID, t.ProjectID) {
		return false
	}
	return matchRef(c.AssigneeID, t.AssigneeID)
}

func matchRef(want string, ref *model.ID) bool {
	switch want {
	case "":
		return true
	case Unassigned:
		return ref == nil || ref.IsZero()
	default:
		return ref != nil && string(*ref) == want
	}
}

// Apply returns the tasks matching c, preserving order. The input is not
// modified.
func Apply(tasks []model.Task, c Criteria) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if c.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Option is one selectable value of a filter, with its label.
type Option struct {
	Value string
	Label string
}

// StatusOptions lists "all" followed by every status.
func StatusOptions() []Option {
	opts := []Option{{Value: "", Label: "All"}}
	for _, s := range model.Statuses {
		opts = append(opts, Option{Value: string(s), Label: s.Label()})
	}
	return opts
}

// ProjectOptions lists "all", "unassigned", then each project.
func ProjectOptions(projects []model.Project) []Option {
	opts := []Option{{Value: "", Label: "All projects"}, {Value: Unassigned, Label: "No project"}}
	for _, p := range projects {
		opts = append(opts, Option{Value: p.ID.String(), Label: p.Icon() + " " + p.Name})
	}
	return opts
}

// AssigneeOptions lists "all", "unassigned", then each user.
func AssigneeOptions(users []model.User) []Option {
	opts := []Option{{Value: "", Label: "Anyone"}, {Value: Unassigned, Label: "Unassigned"}}
	for _, u := range users {
		opts = append(opts, Option{Value: u.ID.String(), Label: u.DisplayName()})
	}
	return opts
}

// Next returns the value following current in opts, wrapping around. An
// unknown current value restarts at the first option.
func Next(opts []Option, current string) string {
	if len(opts) == 0 {
		return ""
	}
	for i, o := range opts {
		if o.Value == current {
			return opts[(i+1)%len(opts)].Value
		}
	}
	return opts[0].Value
}

// LabelOf returns the label for value, or value itself when unknown.
func LabelOf(opts []Option, value string) string {
	for _, o := range opts {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}
