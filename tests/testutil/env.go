package testutil

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/teamflow/internal/api"
	"github.com/nhle/teamflow/internal/credential"
	"github.com/nhle/teamflow/internal/keys"
	"github.com/nhle/teamflow/internal/service"
	"github.com/nhle/teamflow/internal/session"
	"github.com/nhle/teamflow/internal/ui"
)

// NewEnv wires a view environment against b using tokens. When tokens
// already hold a valid access token the session is initialised.
func NewEnv(t *testing.T, b *Backend, tokens *credential.TokenStore) ui.Env {
	t.Helper()

	client := api.New(b.URL(), tokens)
	sess := session.New(client, tokens, zap.NewNop())
	if err := sess.Init(context.Background()); err != nil {
		t.Fatalf("initialising test session: %v", err)
	}

	return ui.Env{
		Service: service.New(client, NewTestCache(t)),
		Session: sess,
		Keys:    keys.DefaultKeyMap(),
		Timeout: 5 * time.Second,
	}
}
