package generators

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewEngine_known_engines(t *testing.T) {
	for _, name := range []string{Sha256Engine, Sha3Engine, SipHashEngine, Murmur3Engine} {
		t.Run(name, func(t *testing.T) {
			eng, err := NewEngine(name, []byte("salt"))
			require.NoError(t, err)
			res, err := eng.Generate([]byte("data"))
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(res), 8)
		})
	}
}

func TestNewEngine_unknown_engine(t *testing.T) {
	_, err := NewEngine("md5", []byte("salt"))
	require.Error(t, err)
	require.False(t, KnownEngine("md5"))
}

func TestHashEngine_deterministic(t *testing.T) {
	eng, err := NewEngine(Sha256Engine, []byte("salt"))
	require.NoError(t, err)
	first, err := eng.Generate([]byte("data"))
	require.NoError(t, err)
	second, err := eng.Generate([]byte("data"))
	require.NoError(t, err)
	require.Equal(t, first, second)

	fresh, err := NewEngine(Sha256Engine, []byte("salt"))
	require.NoError(t, err)
	third, err := fresh.Generate([]byte("data"))
	require.NoError(t, err)
	require.Equal(t, first, third)
}

func TestHashEngine_salt_changes_output(t *testing.T) {
	salted, err := NewEngine(Sha256Engine, []byte("salt"))
	require.NoError(t, err)
	other, err := NewEngine(Sha256Engine, []byte("other"))
	require.NoError(t, err)

	first, err := salted.Generate([]byte("data"))
	require.NoError(t, err)
	second, err := other.Generate([]byte("data"))
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestNewEngine_siphash_uses_full_salt(t *testing.T) {
	// long salts sharing a 16 byte prefix must still key siphash differently
	salted, err := NewEngine(SipHashEngine, []byte("0123456789abcdef-one"))
	require.NoError(t, err)
	other, err := NewEngine(SipHashEngine, []byte("0123456789abcdef-two"))
	require.NoError(t, err)

	first, err := salted.Generate([]byte("data"))
	require.NoError(t, err)
	second, err := other.Generate([]byte("data"))
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestBuildInt64FromBytes_short_input(t *testing.T) {
	require.Equal(t, int64(1), BuildInt64FromBytes([]byte{0x1}))
}

func TestBuildBytesFromInt64_round_trip(t *testing.T) {
	value := int64(-7463847412)
	require.Equal(t, value, BuildInt64FromBytes(BuildBytesFromInt64(value)))
}
