package service

import (
	"context"
	"fmt"

	"github.com/nhle/teamflow/internal/model"
)

// Kind names an entity type that can be deleted.
type Kind int

const (
	KindTask Kind = iota
	KindProject
	KindMeeting
)

func (k Kind) String() string {
	switch k {
	case KindTask:
		return "task"
	case KindProject:
		return "project"
	case KindMeeting:
		return "meeting"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Deletion is a pending delete awaiting confirmation. Creating one has no
// effect on the backend.
type Deletion struct {
	Kind  Kind
	ID    model.ID
	Label string
}

// Prompt is the confirmation question naming the entity type and id.
func (d Deletion) Prompt() string {
	if d.Label != "" {
		return fmt.Sprintf("Delete %s #%s (%s)?", d.Kind, d.ID, d.Label)
	}
	return fmt.Sprintf("Delete %s #%s?", d.Kind, d.ID)
}

// RequestDelete stages a deletion. Nothing is sent until ConfirmDelete.
func (s *Service) RequestDelete(kind Kind, id model.ID, label string) Deletion {
	return Deletion{Kind: kind, ID: id, Label: label}
}

// ConfirmDelete issues the DELETE for a staged deletion.
func (s *Service) ConfirmDelete(ctx context.Context, d Deletion) error {
	if err := requireID(d.Kind, d.ID); err != nil {
		return err
	}

	var err error
	switch d.Kind {
	case KindTask:
		err = s.api.DeleteTask(ctx, d.ID)
	case KindProject:
		err = s.api.DeleteProject(ctx, d.ID)
	case KindMeeting:
		err = s.api.DeleteMeeting(ctx, d.ID)
	default:
		return invalid("cannot delete %s", d.Kind)
	}

	s.mutated(ctx, d.Kind, "delete", d.ID, err)
	return err
}
