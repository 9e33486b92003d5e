package session

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/nhle/teamflow/internal/model"
)

// ErrExpired is reported when the backend rejected the current token.
var ErrExpired = errors.New("session expired, please log in again")

// AuthAPI is the subset of the API client the session needs.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (model.TokenPair, error)
	Register(ctx context.Context, reg model.Registration) (model.User, error)
	Me(ctx context.Context) (model.User, error)
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error)
}

// Tokens is the durable token storage.
type Tokens interface {
	AccessToken() (string, error)
	RefreshToken() (string, error)
	Save(pair model.TokenPair) error
	Clear() error
}

// State is a snapshot of the session. IsAuthenticated is true exactly when
// User is non-nil.
type State struct {
	User            *model.User
	IsAuthenticated bool
	IsLoading       bool
}

// Session owns the authenticated identity for the lifetime of the process.
type Session struct {
	api    AuthAPI
	tokens Tokens
	logger *zap.Logger
	now    func() time.Time

	mu    gosync.RWMutex
	state State
}

// New creates a session in the loading state; call Init to resolve it.
func New(api AuthAPI, tokens Tokens, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		api:    api,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
		state:  State{IsLoading: true},
	}
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// User returns the authenticated user, or nil.
func (s *Session) User() *model.User {
	return s.State().User
}

// Init resolves the session from a stored token. Without a token the
// session becomes unauthenticated. With one, an expired access token is
// refreshed first, then the user is fetched. Any failure clears the stored
// tokens.
func (s *Session) Init(ctx context.Context) error {
	s.setLoading()

	access, err := s.tokens.AccessToken()
	if err != nil {
		s.reset()
		return fmt.Errorf("reading stored token: %w", err)
	}
	if access == "" {
		s.reset()
		return nil
	}

	if s.expired(access) {
		if err := s.refresh(ctx); err != nil {
			s.logger.Info("token refresh failed", zap.Error(err))
			s.clear()
			return err
		}
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		s.logger.Info("stored token rejected", zap.Error(err))
		s.clear()
		return err
	}

	s.setUser(user)
	s.logger.Info("session restored", zap.String("user", user.Username))
	return nil
}

// Login exchanges credentials, persists the token pair and loads the user.
// Nothing is persisted when the exchange fails.
func (s *Session) Login(ctx context.Context, username, password string) error {
	s.setLoading()

	pair, err := s.api.Login(ctx, username, password)
	if err != nil {
		s.reset()
		return err
	}
	if err := s.tokens.Save(pair); err != nil {
		s.reset()
		return fmt.Errorf("storing tokens: %w", err)
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		s.clear()
		return err
	}

	s.setUser(user)
	s.logger.Info("logged in", zap.String("user", user.Username))
	return nil
}

// Register creates an account. It does not log in.
func (s *Session) Register(ctx context.Context, reg model.Registration) (model.User, error) {
	user, err := s.api.Register(ctx, reg)
	if err != nil {
		return model.User{}, err
	}
	s.logger.Info("registered", zap.String("user", user.Username))
	return user, nil
}

// Logout clears the stored tokens and the user.
func (s *Session) Logout() error {
	err := s.tokens.Clear()
	s.reset()
	s.logger.Info("logged out")
	if err != nil {
		return fmt.Errorf("clearing tokens: %w", err)
	}
	return nil
}

// Expire is called when any request came back 401. It logs out and
// returns ErrExpired for the caller to surface.
func (s *Session) Expire() error {
	s.logger.Warn("session expired")
	s.clear()
	return ErrExpired
}

// expired reports whether access is a JWT whose exp claim has passed.
// Opaque tokens are never considered expired locally.
func (s *Session) expired(access string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(s.now())
}

func (s *Session) refresh(ctx context.Context) error {
	refreshToken, err := s.tokens.RefreshToken()
	if err != nil {
		return fmt.Errorf("reading refresh token: %w", err)
	}
	if refreshToken == "" {
		return ErrExpired
	}

	pair, err := s.api.Refresh(ctx, refreshToken)
	if err != nil {
		return err
	}
	if pair.RefreshToken == "" {
		pair.RefreshToken = refreshToken
	}
	if err := s.tokens.Save(pair); err != nil {
		return fmt.Errorf("storing refreshed tokens: %w", err)
	}
	return nil
}

func (s *Session) clear() {
	if err := s.tokens.Clear(); err != nil {
		s.logger.Warn("clearing tokens", zap.Error(err))
	}
	s.reset()
}

func (s *Session) setLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsLoading = true
}

func (s *Session) setUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{User: &u, IsAuthenticated: true}
}

func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{}
}
