package transformers

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func luhnValid(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func TestGenerateCreditCard_luhn_valid(t *testing.T) {
	res := generate(t, "CreditCard", "4111111111111111", 0)
	require.Len(t, res, 16)
	require.Equal(t, byte('4'), res[0])
	require.True(t, luhnValid(res), "card number %q fails the Luhn check", res)
}

func TestGenerateAmount_preserves_shape(t *testing.T) {
	cases := []struct {
		original  string
		negative  bool
		scale     int32
		intDigits int
	}{
		{original: "1234.56", scale: 2, intDigits: 4},
		{original: "-99.9", negative: true, scale: 1, intDigits: 2},
		{original: "7", scale: 0, intDigits: 1},
		{original: "0.125", scale: 3, intDigits: 1},
	}
	for _, c := range cases {
		t.Run(c.original, func(t *testing.T) {
			res := generate(t, "Amount", c.original, 0)
			d, err := decimal.NewFromString(res)
			require.NoError(t, err)
			require.Equal(t, c.negative, d.IsNegative())
			require.Equal(t, -c.scale, d.Exponent())
			intPart := d.Abs().Truncate(0).String()
			if intPart != "0" {
				require.Len(t, intPart, c.intDigits)
			}
		})
	}
}

func TestGenerateAmount_unparsable_original(t *testing.T) {
	res := generate(t, "Amount", "n/a", 0)
	d, err := decimal.NewFromString(res)
	require.NoError(t, err)
	require.True(t, d.IsPositive())
	require.Len(t, strings.Split(res, ".")[0], 3)
}
