package transformers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbmasq/dbmasq/internal/generators"
)

func newTestRequest(t *testing.T, original string, maxLength int) *Request {
	t.Helper()
	seeder, err := generators.NewSeeder(generators.Sha256Engine, "test-global-seed")
	require.NoError(t, err)
	return &Request{
		Seeder:    seeder,
		Original:  original,
		MaxLength: maxLength,
	}
}

// generate runs a registered tag against a fresh request.
func generate(t *testing.T, tag, original string, maxLength int) string {
	t.Helper()
	def, ok := Get(tag)
	require.True(t, ok, "tag %s is not registered", tag)
	res, err := def.Generate(newTestRequest(t, original, maxLength))
	require.NoError(t, err)
	return res
}

func TestRegistry_contains_builtin_tags(t *testing.T) {
	tags := Tags()
	for _, tag := range []string{
		"FirstName", "LastName", "FullName",
		"AddressLine", "City", "State", "PostCode", "Country", "GPSCoordinate",
		"Email", "UserName", "Phone", "URL", "IPAddress", "FreeText",
		"Date", "DateOfBirth", "Amount", "CreditCard",
		"CompanyName", "NationalID", "UUID",
	} {
		require.Contains(t, tags, tag)
	}
	require.IsIncreasing(t, tags)
}

func TestRegistry_unknown_tag(t *testing.T) {
	_, ok := Get("SocialGraph")
	require.False(t, ok)
}

func TestCachePolicy_String(t *testing.T) {
	require.Equal(t, "always", CacheAlways.String())
	require.Equal(t, "never", CacheNever.String())
	require.Equal(t, "default", CacheDefault.String())
}

// Every registered family must be a pure function of (seed, original).
func TestRegistry_all_tags_deterministic(t *testing.T) {
	for _, tag := range Tags() {
		t.Run(tag, func(t *testing.T) {
			original := "4111111111111111"
			if tag == "Date" || tag == "DateOfBirth" {
				original = "1987-06-05"
			}
			first := generate(t, tag, original, 0)
			second := generate(t, tag, original, 0)
			require.Equal(t, first, second)
			require.NotEqual(t, original, first)
		})
	}
}
