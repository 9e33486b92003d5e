package model

import (
	"encoding/json"
	"fmt"
)

// Stats is the server-computed aggregate of task counts by status.
type Stats struct {
	Total   int `json:"total"`
	Todo    int `json:"todo"`
	Doing   int `json:"doing"`
	Done    int `json:"done"`
	Blocked int `json:"blocked"`
}

// UnmarshalJSON also accepts "in_progress" for the DOING bucket.
func (s *Stats) UnmarshalJSON(data []byte) error {
	var raw struct {
		Total      int  `json:"total"`
		Todo       int  `json:"todo"`
		Doing      *int `json:"doing"`
		InProgress *int `json:"in_progress"`
		Done       int  `json:"done"`
		Blocked    int  `json:"blocked"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding stats: %w", err)
	}

	*s = Stats{
		Total:   raw.Total,
		Todo:    raw.Todo,
		Done:    raw.Done,
		Blocked: raw.Blocked,
	}
	switch {
	case raw.Doing != nil:
		s.Doing = *raw.Doing
	case raw.InProgress != nil:
		s.Doing = *raw.InProgress
	}
	return nil
}

// Count returns the bucket for a status.
func (s Stats) Count(status TaskStatus) int {
	switch status {
	case StatusTodo:
		return s.Todo
	case StatusDoing:
		return s.Doing
	case StatusDone:
		return s.Done
	case StatusBlocked:
		return s.Blocked
	default:
		return 0
	}
}
