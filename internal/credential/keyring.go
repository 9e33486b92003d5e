package credential

import (
	"errors"
	"fmt"
	gosync "sync"

	"github.com/99designs/keyring"

	"github.com/nhle/teamflow/internal/model"
)

const serviceName = "teamflow"

// Keys under which the two tokens are stored.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// defaultBackends is the probing order when no backend is configured.
var defaultBackends = []keyring.BackendType{
	keyring.KeychainBackend,
	keyring.SecretServiceBackend,
	keyring.WinCredBackend,
	keyring.PassBackend,
	keyring.FileBackend,
}

// openKeyring returns a configured keyring instance.
func openKeyring(cfg model.CredentialConfig) (keyring.Keyring, error) {
	backends := defaultBackends
	if cfg.Backend != "" {
		backends = []keyring.BackendType{keyring.BackendType(cfg.Backend)}
	}

	fileDir := cfg.FileDir
	if fileDir == "" {
		fileDir = "~/.config/teamflow/credentials"
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName:              serviceName,
		AllowedBackends:          backends,
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt("teamflow-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// TokenStore is the durable home of the access and refresh tokens. It is
// shared by the session (writes on login/logout) and the API client (reads
// on every request).
type TokenStore struct {
	mu   gosync.RWMutex
	ring keyring.Keyring
}

// Open opens the system keyring described by cfg.
func Open(cfg model.CredentialConfig) (*TokenStore, error) {
	ring, err := openKeyring(cfg)
	if err != nil {
		return nil, err
	}
	return NewTokenStore(ring), nil
}

// NewTokenStore wraps an already opened keyring.
func NewTokenStore(ring keyring.Keyring) *TokenStore {
	return &TokenStore{ring: ring}
}

// AccessToken returns the stored access token, or "" when none is stored.
func (s *TokenStore) AccessToken() (string, error) {
	return s.get(AccessTokenKey)
}

// RefreshToken returns the stored refresh token, or "" when none is stored.
func (s *TokenStore) RefreshToken() (string, error) {
	return s.get(RefreshTokenKey)
}

// Save persists both tokens of a pair. An empty refresh token removes any
// previously stored one.
func (s *TokenStore) Save(pair model.TokenPair) error {
	if pair.AccessToken == "" {
		return fmt.Errorf("saving tokens: access token is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.set(AccessTokenKey, pair.AccessToken); err != nil {
		return err
	}
	if pair.RefreshToken == "" {
		return s.remove(RefreshTokenKey)
	}
	return s.set(RefreshTokenKey, pair.RefreshToken)
}

// Clear removes both tokens. Missing keys are not an error.
func (s *TokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return errors.Join(s.remove(AccessTokenKey), s.remove(RefreshTokenKey))
}

func (s *TokenStore) get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, err := s.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

func (s *TokenStore) set(key, value string) error {
	err := s.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: "TeamFlow " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

func (s *TokenStore) remove(key string) error {
	err := s.ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}
