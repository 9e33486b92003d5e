package ui

import (
	"context"
	"time"

	"github.com/nhle/teamflow/internal/keys"
	"github.com/nhle/teamflow/internal/model"
	"github.com/nhle/teamflow/internal/service"
	"github.com/nhle/teamflow/internal/session"
)

// defaultTimeout bounds requests issued from views when none is configured.
const defaultTimeout = 30 * time.Second

// Env is what every view needs to talk to the backend.
type Env struct {
	Service *service.Service
	Session *session.Session
	Keys    *keys.KeyMap
	Timeout time.Duration

	// Config and ConfigPath back the settings view. Both may be zero in
	// tests that never open it.
	Config     *model.AppConfig
	ConfigPath string
}

// Context returns a request context bounded by the configured timeout.
func (e Env) Context() (context.Context, context.CancelFunc) {
	t := e.Timeout
	if t <= 0 {
		t = defaultTimeout
	}
	return context.WithTimeout(context.Background(), t)
}

// CurrentUserID returns the signed-in user's id, or "".
func (e Env) CurrentUserID() string {
	if e.Session == nil {
		return ""
	}
	if u := e.Session.User(); u != nil {
		return u.ID.String()
	}
	return ""
}
