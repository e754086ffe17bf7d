package transformers

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

const creditCardLength = 16

// luhnCheckDigit computes the final digit making the number pass the Luhn
// check, so generated card numbers survive format validation downstream.
func luhnCheckDigit(digits string) byte {
	sum := 0
	double := true
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		double = !double
		sum += d
	}
	return byte('0' + (10-sum%10)%10)
}

func generateCreditCard(req *Request) (string, error) {
	r, err := req.Rand()
	if err != nil {
		return "", err
	}
	body := "4" + r.digits(creditCardLength-2)
	return fitLength(body+string(luhnCheckDigit(body)), req.MaxLength), nil
}

// generateAmount keeps the sign and the integer-digit magnitude of the
// original value, replacing all digits deterministically. Unparsable originals
// fall back to a small positive amount.
func generateAmount(req *Request) (string, error) {
	r, err := req.Rand()
	if err != nil {
		return "", err
	}

	intDigits := 3
	negative := false
	scale := int32(2)
	if orig, err := decimal.NewFromString(strings.TrimSpace(req.Original)); err == nil {
		negative = orig.IsNegative()
		scale = -orig.Exponent()
		if scale < 0 {
			scale = 0
		}
		abs := orig.Abs().Truncate(0)
		if s := abs.String(); s != "0" {
			intDigits = len(s)
		} else {
			intDigits = 0
		}
	} else if _, err := cast.ToFloat64E(req.Original); err == nil {
		// numeric but not decimal-parsable (e.g. exponent forms); keep defaults
		intDigits = 3
	}

	body := "0"
	if intDigits > 0 {
		head := byte('1' + r.Intn(9))
		body = string(head) + r.digits(intDigits-1)
	}
	res := decimal.RequireFromString(body + "." + r.digits(int(scale)+1)).Round(scale)
	if negative {
		res = res.Neg()
	}
	return fitLength(res.StringFixed(scale), req.MaxLength), nil
}

func init() {
	register("CreditCard", &Definition{
		Generate:    generateCreditCard,
		CachePolicy: CacheNever,
		Description: "Replaces a credit card number with a deterministic Luhn-valid one.",
	})
	register("Amount", &Definition{
		Generate:    generateAmount,
		CachePolicy: CacheDefault,
		Description: "Replaces a monetary amount, preserving sign, scale and magnitude.",
	})
}
