// Package auth holds the session store: the single source of truth for who is
// logged in within one browser context.
package auth

import (
	"log/slog"
	"strings"
	"sync"

	"agency/internal/domain/entity"
	domainerrors "agency/internal/domain/errors"
	"agency/internal/domain/service"

	"github.com/pkg/errors"
)

// DefaultTokenKey is the storage key the token is mirrored under.
const DefaultTokenKey = "token"

// Store owns the Session. All mutation goes through Login and Logout.
type Store struct {
	storage  service.Storage
	decoder  service.TokenDecoder
	tokenKey string
	logger   *slog.Logger

	mu      sync.RWMutex
	session *entity.Session
}

// Option configures a Store.
type Option func(*Store)

// WithTokenKey overrides the storage key of the token.
func WithTokenKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.tokenKey = key
		}
	}
}

// WithLogger sets the logger used for decode diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns a logged-out store. Call Hydrate to restore a persisted session.
func New(storage service.Storage, decoder service.TokenDecoder, opts ...Option) *Store {
	s := &Store{
		storage:  storage,
		decoder:  decoder,
		tokenKey: DefaultTokenKey,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Hydrate restores the session from durable storage. The token is trusted as
// is: neither signature nor expiry is checked. A missing token leaves the
// store logged out.
func (s *Store) Hydrate() {
	token, ok := s.storage.Get(s.tokenKey)
	token = strings.TrimSpace(token)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !ok || token == "" {
		s.session = nil

		return
	}

	s.session = s.newSession(token)
}

// Login persists token and makes it the current session.
func (s *Store) Login(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.WithStack(domainerrors.ErrEmptyToken)
	}

	if err := s.storage.Set(s.tokenKey, token); err != nil {
		return errors.Wrap(err, "persist token")
	}

	s.mu.Lock()
	s.session = s.newSession(token)
	s.mu.Unlock()

	return nil
}

// Logout clears durable storage and the in-memory session.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()

	return errors.Wrap(s.storage.Remove(s.tokenKey), "remove token")
}

// Session returns a copy of the current session.
func (s *Store) Session() (entity.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return entity.Session{}, false
	}

	return *s.session, true
}

// Token returns the current token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return ""
	}

	return s.session.Token
}

// IsAuthenticated reports whether a session is present.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

func (s *Store) newSession(token string) *entity.Session {
	session := &entity.Session{Token: token}
	if s.decoder == nil {
		return session
	}

	user, err := s.decoder.Decode(token)
	if err != nil {
		s.logger.Debug("Session token carries no readable identity", slog.Any("error", err))

		return session
	}
	session.User = user

	return session
}
