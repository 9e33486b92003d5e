package testutil

import (
	"testing"

	"github.com/99designs/keyring"

	"github.com/nhle/teamflow/internal/credential"
	"github.com/nhle/teamflow/internal/model"
)

// NewTokenStore returns a token store backed by an in-memory keyring.
func NewTokenStore(t *testing.T) *credential.TokenStore {
	t.Helper()
	return credential.NewTokenStore(keyring.NewArrayKeyring(nil))
}

// NewLoggedInTokenStore returns a token store already holding an access
// token for a freshly added user of b.
func NewLoggedInTokenStore(t *testing.T, b *Backend, username string) (*credential.TokenStore, model.User) {
	t.Helper()

	user := b.AddUser(username, "secret")
	tokens := NewTokenStore(t)
	if err := tokens.Save(model.TokenPair{
		AccessToken:  b.IssueToken(user.ID),
		RefreshToken: b.IssueRefreshToken(user.ID),
		TokenType:    "bearer",
	}); err != nil {
		t.Fatalf("saving test tokens: %v", err)
	}
	return tokens, user
}
