package service

import (
	"context"
	"strings"

	"github.com/nhle/teamflow/internal/model"
)

func normaliseMeetingInput(in model.MeetingInput) (model.MeetingInput, error) {
	in.Summary = strings.TrimSpace(in.Summary)
	if in.Summary == "" {
		return in, invalid("meeting summary is required")
	}
	if in.MeetingDate.IsZero() {
		return in, invalid("meeting date is required")
	}
	return in, nil
}

// CreateMeeting records a meeting note. Summary and date are required.
func (s *Service) CreateMeeting(ctx context.Context, in model.MeetingInput) (model.Meeting, error) {
	in, err := normaliseMeetingInput(in)
	if err != nil {
		return model.Meeting{}, err
	}

	m, err := s.api.CreateMeeting(ctx, in)
	s.mutated(ctx, KindMeeting, "create", m.ID, err)
	return m, err
}

// UpdateMeeting edits a meeting note.
func (s *Service) UpdateMeeting(ctx context.Context, id model.ID, in model.MeetingInput) (model.Meeting, error) {
	if err := requireID(KindMeeting, id); err != nil {
		return model.Meeting{}, err
	}
	in, err := normaliseMeetingInput(in)
	if err != nil {
		return model.Meeting{}, err
	}

	m, err := s.api.UpdateMeeting(ctx, id, in)
	s.mutated(ctx, KindMeeting, "update", id, err)
	return m, err
}
