package api

import (
	"strings"

	"github.com/nhle/teamflow/internal/model"
)

// WithLowercaseEnums sends statuses and priorities in the lower-case
// spelling (todo, in_progress, low). Responses are accepted in either.
func WithLowercaseEnums(on bool) Option {
	return func(c *Client) { c.lowerEnums = on }
}

var lowerStatus = map[model.TaskStatus]string{
	model.StatusTodo:    "todo",
	model.StatusDoing:   "in_progress",
	model.StatusDone:    "done",
	model.StatusBlocked: "blocked",
}

func (c *Client) wireStatus(s model.TaskStatus) string {
	if !c.lowerEnums {
		return string(s)
	}
	if w, ok := lowerStatus[s]; ok {
		return w
	}
	return strings.ToLower(string(s))
}

func (c *Client) wirePriority(p model.TaskPriority) string {
	if !c.lowerEnums {
		return string(p)
	}
	return strings.ToLower(string(p))
}

func (c *Client) wireInput(in model.TaskInput) model.TaskInput {
	in.Status = model.TaskStatus(c.wireStatus(in.Status))
	in.Priority = model.TaskPriority(c.wirePriority(in.Priority))
	return in
}

func (c *Client) wirePatch(p model.TaskPatch) model.TaskPatch {
	if p.Status != nil {
		s := model.TaskStatus(c.wireStatus(*p.Status))
		p.Status = &s
	}
	if p.Priority != nil {
		pr := model.TaskPriority(c.wirePriority(*p.Priority))
		p.Priority = &pr
	}
	return p
}
