package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TaskStatus is the workflow state of a task. Any status may follow any
// other; there are no transition restrictions.
type TaskStatus string

const (
	StatusTodo    TaskStatus = "TODO"
	StatusDoing   TaskStatus = "DOING"
	StatusDone    TaskStatus = "DONE"
	StatusBlocked TaskStatus = "BLOCKED"
)

// Statuses lists every status in display order.
var Statuses = []TaskStatus{StatusTodo, StatusDoing, StatusDone, StatusBlocked}

// statusAliases maps every spelling seen on the wire onto the canonical enum.
var statusAliases = map[string]TaskStatus{
	"todo":        StatusTodo,
	"doing":       StatusDoing,
	"in_progress": StatusDoing,
	"in-progress": StatusDoing,
	"inprogress":  StatusDoing,
	"done":        StatusDone,
	"blocked":     StatusBlocked,
}

// ParseStatus normalises a status string. It accepts both the
// TODO/DOING/DONE/BLOCKED and todo/in_progress/done spellings.
func ParseStatus(s string) (TaskStatus, error) {
	st, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown task status %q", s)
	}
	return st, nil
}

// Valid reports whether s is one of the canonical statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusDoing, StatusDone, StatusBlocked:
		return true
	}
	return false
}

// Label returns a short human label.
func (s TaskStatus) Label() string {
	switch s {
	case StatusTodo:
		return "To do"
	case StatusDoing:
		return "In progress"
	case StatusDone:
		return "Done"
	case StatusBlocked:
		return "Blocked"
	default:
		return string(s)
	}
}

// UnmarshalJSON normalises drifted spellings on decode.
func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding task status: %w", err)
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// TaskPriority is optional; the zero value means the backend did not send one.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
	PriorityUrgent TaskPriority = "URGENT"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// ParsePriority normalises a priority string. An empty string is allowed.
func ParsePriority(s string) (TaskPriority, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	p := TaskPriority(s)
	for _, known := range Priorities {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown task priority %q", s)
}

// UnmarshalJSON accepts lower or upper case priorities.
func (p *TaskPriority) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding task priority: %w", err)
	}
	parsed, err := ParsePriority(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Task is a unit of work as returned by the backend.
type Task struct {
	ID          ID           `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority,omitempty"`
	CreatorID   ID           `json:"creator_id,omitempty"`
	AssigneeID  *ID          `json:"assignee_id"`
	ProjectID   *ID          `json:"project_id"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Assignee and AssigneeName are optional denormalised fields; which one
	// is present depends on the backend version.
	Assignee     *UserShort `json:"assignee,omitempty"`
	AssigneeName string     `json:"assignee_name,omitempty"`
}

// IsAssigned reports whether the task has an assignee reference.
func (t Task) IsAssigned() bool {
	return t.AssigneeID != nil && *t.AssigneeID != ""
}

// HasProject reports whether the task references a project.
func (t Task) HasProject() bool {
	return t.ProjectID != nil && *t.ProjectID != ""
}

// AssigneeLabel returns the best available display name for the assignee,
// or an empty string when the task is unassigned.
func (t Task) AssigneeLabel() string {
	if t.Assignee != nil {
		return t.Assignee.DisplayName()
	}
	if t.AssigneeName != "" {
		return t.AssigneeName
	}
	if t.IsAssigned() {
		return string(*t.AssigneeID)
	}
	return ""
}

// IsOverdue reports whether the due date has passed on an unfinished task.
func (t Task) IsOverdue() bool {
	return t.DueDate != nil && t.DueDate.Before(time.Now()) && t.Status != StatusDone
}

// TaskInput is the full body sent on create (POST) and replace (PUT).
type TaskInput struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status,omitempty"`
	Priority    TaskPriority `json:"priority,omitempty"`
	AssigneeID  *ID          `json:"assignee_id,omitempty"`
	ProjectID   *ID          `json:"project_id,omitempty"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
}

// TaskPatch is a partial update; nil fields are left untouched by the server.
type TaskPatch struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Status      *TaskStatus   `json:"status,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.DueDate == nil
}

// TaskQuery holds the server-side list parameters for GET /tasks.
type TaskQuery struct {
	Status     TaskStatus
	Priority   TaskPriority
	AssigneeID ID
	CreatorID  ID
	Skip       int
	Limit      int
}
