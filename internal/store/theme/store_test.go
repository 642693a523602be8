package theme

import (
	"testing"

	"agency/internal/infra/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_DefaultsToDark(t *testing.T) {
	s := New(storage.NewMemory(), "")
	s.Hydrate()

	assert.True(t, s.DarkMode())
	assert.Equal(t, "dark", s.RootClass())
}

func TestStore_HydrateReadsPersistedValue(t *testing.T) {
	durable := storage.NewMemory()
	require.NoError(t, durable.Set(DefaultKey, "light"))

	s := New(durable, DefaultKey)
	s.Hydrate()

	assert.False(t, s.DarkMode())
	assert.Equal(t, "light", s.RootClass())
}

func TestStore_TogglePersists(t *testing.T) {
	durable := storage.NewMemory()
	s := New(durable, "theme")
	s.Hydrate()

	require.NoError(t, s.Toggle())
	assert.Equal(t, "light", s.RootClass())

	v, ok := durable.Get("theme")
	require.True(t, ok)
	assert.Equal(t, "light", v)

	reloaded := New(durable, "theme")
	reloaded.Hydrate()
	assert.False(t, reloaded.DarkMode())
}

func TestStore_EvenTogglesRestoreOriginalState(t *testing.T) {
	for _, initial := range []string{"dark", "light"} {
		for _, n := range []int{2, 4, 10} {
			durable := storage.NewMemory()
			require.NoError(t, durable.Set(DefaultKey, initial))

			s := New(durable, DefaultKey)
			s.Hydrate()
			for range n {
				require.NoError(t, s.Toggle())
			}

			assert.Equal(t, initial, s.RootClass())
			v, _ := durable.Get(DefaultKey)
			assert.Equal(t, initial, v)
		}
	}
}
