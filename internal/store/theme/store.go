// Package theme tracks the dark/light preference and the class it puts on the
// document root.
package theme

import (
	"sync"

	"agency/internal/domain/entity"
	"agency/internal/domain/service"

	"github.com/pkg/errors"
)

// DefaultKey is the storage key of the preference.
const DefaultKey = "theme"

// Store owns the ThemePreference.
type Store struct {
	storage service.Storage
	key     string

	mu   sync.RWMutex
	pref entity.ThemePreference
}

// New returns a store holding the default (dark) preference.
func New(storage service.Storage, key string) *Store {
	if key == "" {
		key = DefaultKey
	}

	return &Store{
		storage: storage,
		key:     key,
		pref:    entity.ThemePreference{DarkMode: true},
	}
}

// Hydrate reads the persisted preference; absent means dark.
func (s *Store) Hydrate() {
	v, ok := s.storage.Get(s.key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !ok {
		s.pref = entity.ThemePreference{DarkMode: true}

		return
	}
	s.pref = entity.ThemeFromValue(v)
}

// Toggle flips the preference and persists it.
func (s *Store) Toggle() error {
	s.mu.Lock()
	s.pref.DarkMode = !s.pref.DarkMode
	value := s.pref.Value()
	s.mu.Unlock()

	return errors.Wrap(s.storage.Set(s.key, value), "persist theme")
}

// DarkMode reports the current preference.
func (s *Store) DarkMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.pref.DarkMode
}

// Preference returns the current preference.
func (s *Store) Preference() entity.ThemePreference {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.pref
}

// RootClass is the class rendered on the document root.
func (s *Store) RootClass() string {
	return s.Preference().Value()
}
