package api

import (
	"context"
	"fmt"

	"github.com/nhle/teamflow/internal/model"
)

// ListMeetings returns every meeting note.
func (c *Client) ListMeetings(ctx context.Context) ([]model.Meeting, error) {
	var meetings []model.Meeting
	if err := c.get(ctx, "/meetings", nil, &meetings); err != nil {
		return nil, fmt.Errorf("listing meetings: %w", err)
	}
	return meetings, nil
}

// CreateMeeting creates a meeting note.
func (c *Client) CreateMeeting(ctx context.Context, in model.MeetingInput) (model.Meeting, error) {
	var m model.Meeting
	if err := c.post(ctx, "/meetings", in, &m); err != nil {
		return model.Meeting{}, fmt.Errorf("creating meeting: %w", err)
	}
	return m, nil
}

// UpdateMeeting patches a meeting note.
func (c *Client) UpdateMeeting(ctx context.Context, id model.ID, in model.MeetingInput) (model.Meeting, error) {
	var m model.Meeting
	if err := c.patch(ctx, idPath("meetings", id), in, &m); err != nil {
		return model.Meeting{}, fmt.Errorf("updating meeting %s: %w", id, err)
	}
	return m, nil
}

// DeleteMeeting removes a meeting note.
func (c *Client) DeleteMeeting(ctx context.Context, id model.ID) error {
	if err := c.delete(ctx, idPath("meetings", id)); err != nil {
		return fmt.Errorf("deleting meeting %s: %w", id, err)
	}
	return nil
}
