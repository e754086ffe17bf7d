package transformers

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestGenerateCompanyName_composition(t *testing.T) {
	res := generate(t, "CompanyName", "Acme Corp", 0)
	idx := strings.LastIndex(res, " ")
	require.Greater(t, idx, 0)
	require.Contains(t, DefaultCompanyNames, res[:idx])
	require.Contains(t, DefaultCompanySuffixes, res[idx+1:])
}

func TestGenerateCompanyName_drops_suffix_on_tight_limit(t *testing.T) {
	full := generate(t, "CompanyName", "Acme Corp", 0)
	if len(full) <= 14 {
		t.Skipf("generated value %q already fits", full)
	}
	res := generate(t, "CompanyName", "Acme Corp", 14)
	require.LessOrEqual(t, len(res), 14)
}

func TestGenerateNationalID_shape(t *testing.T) {
	res := generate(t, "NationalID", "078-05-1120", 0)
	require.Len(t, res, 11)
	parts := strings.Split(res, "-")
	require.Len(t, parts, 3)
	require.Len(t, parts[0], 3)
	require.Len(t, parts[1], 2)
	require.Len(t, parts[2], 4)
}

func TestGenerateUUID_rfc4122(t *testing.T) {
	res := generate(t, "UUID", "d9b7a2e0-7f4c-4f7e-9c8a-2f3c1d5e6a7b", 0)
	id, err := uuid.Parse(res)
	require.NoError(t, err)
	require.Equal(t, uuid.Version(4), id.Version())
	require.Equal(t, uuid.RFC4122, id.Variant())
}

func TestGenerateUUID_distinct_per_original(t *testing.T) {
	first := generate(t, "UUID", "id-1", 0)
	second := generate(t, "UUID", "id-2", 0)
	require.NotEqual(t, first, second)
}
