package login

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/teamflow/tests/testutil"
)

func TestLogin_Success(t *testing.T) {
	b := testutil.NewBackend(t)
	b.AddUser("alice", "secret")
	env := testutil.NewEnv(t, b, testutil.NewTokenStore(t))
	m := New(env, 80, 24)

	msg := m.login("alice", "secret")()
	loggedIn, ok := msg.(LoggedInMsg)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, "alice", loggedIn.User.Username)
	assert.True(t, env.Session.State().IsAuthenticated)
}

func TestLogin_BadCredentialsShowInlineError(t *testing.T) {
	b := testutil.NewBackend(t)
	b.AddUser("alice", "secret")
	env := testutil.NewEnv(t, b, testutil.NewTokenStore(t))
	m := New(env, 80, 24)
	m.fb.password = "wrong"
	m.pending = true

	msg := m.login("alice", "wrong")()
	m, _ = m.Update(msg)

	assert.Equal(t, "Incorrect username or password", m.Error())
	assert.False(t, m.pending)
	assert.Empty(t, m.fb.password)
	assert.False(t, env.Session.State().IsAuthenticated)
}

func TestRegister_ThenSignsIn(t *testing.T) {
	b := testutil.NewBackend(t)
	env := testutil.NewEnv(t, b, testutil.NewTokenStore(t))
	m := New(env, 80, 24)
	m.mode = modeRegister
	m.fb.username = " bob "
	m.fb.email = "bob@example.com"
	m.fb.password = "pw"

	msg := m.register()()
	require.Equal(t, registeredMsg{username: "bob", password: "pw"}, msg)

	m, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	assert.Contains(t, m.notice, "bob")
	loggedIn, ok := cmd().(LoggedInMsg)
	require.True(t, ok)
	assert.Equal(t, "bob", loggedIn.User.Username)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	b := testutil.NewBackend(t)
	b.AddUser("alice", "secret")
	env := testutil.NewEnv(t, b, testutil.NewTokenStore(t))
	m := New(env, 80, 24)
	m.mode = modeRegister
	m.fb.username = "alice"
	m.fb.email = "alice2@example.com"
	m.fb.password = "pw"

	m, _ = m.Update(m.register()())
	assert.Equal(t, "Username already registered", m.Error())
	assert.Equal(t, modeRegister, m.mode)
}

func TestReset_ShowsReason(t *testing.T) {
	b := testutil.NewBackend(t)
	env := testutil.NewEnv(t, b, testutil.NewTokenStore(t))
	m := New(env, 80, 24)
	m.mode = modeRegister

	m.Reset("session expired, please log in again")
	assert.Equal(t, modeLogin, m.mode)
	assert.Equal(t, "session expired, please log in again", m.Error())
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, validateEmail("a@example.com"))
	assert.Error(t, validateEmail("not-an-email"))
}
