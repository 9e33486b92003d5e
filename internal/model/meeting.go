package model

import "time"

// Meeting is a freestanding meeting note. It has no relation to tasks or
// projects.
type Meeting struct {
	ID          ID        `json:"id"`
	Summary     string    `json:"summary"`
	MeetingDate time.Time `json:"meeting_date"`
	CreatedAt   time.Time `json:"created_at"`
}

// MeetingInput is the body of meeting create and update requests.
type MeetingInput struct {
	Summary     string    `json:"summary"`
	MeetingDate time.Time `json:"meeting_date"`
}
