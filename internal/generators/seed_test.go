package generators

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeeder_SeedFor_deterministic(t *testing.T) {
	s, err := NewSeeder(Sha256Engine, "global")
	require.NoError(t, err)

	first, err := s.SeedFor("", "John")
	require.NoError(t, err)
	second, err := s.SeedFor("", "John")
	require.NoError(t, err)
	require.Equal(t, first, second)

	other, err := s.SeedFor("", "Jane")
	require.NoError(t, err)
	require.NotEqual(t, first, other)
}

func TestSeeder_SeedFor_custom_seed_isolates(t *testing.T) {
	s, err := NewSeeder(Sha256Engine, "global")
	require.NoError(t, err)

	plain, err := s.SeedFor("", "John")
	require.NoError(t, err)
	custom, err := s.SeedFor("tenant-a", "John")
	require.NoError(t, err)
	require.NotEqual(t, plain, custom)
}

func TestSeeder_SeedFor_global_seed_isolates(t *testing.T) {
	a, err := NewSeeder(Sha256Engine, "global-a")
	require.NoError(t, err)
	b, err := NewSeeder(Sha256Engine, "global-b")
	require.NoError(t, err)

	seedA, err := a.SeedFor("", "John")
	require.NoError(t, err)
	seedB, err := b.SeedFor("", "John")
	require.NoError(t, err)
	require.NotEqual(t, seedA, seedB)
}

func TestSeeder_Rand_reproducible_sequence(t *testing.T) {
	s, err := NewSeeder(SipHashEngine, "global")
	require.NoError(t, err)

	first, err := s.Rand("", "value")
	require.NoError(t, err)
	second, err := s.Rand("", "value")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		require.Equal(t, first.Int63(), second.Int63())
	}
}

func TestNewSeeder_unknown_engine(t *testing.T) {
	_, err := NewSeeder("crc32", "global")
	require.Error(t, err)
}
