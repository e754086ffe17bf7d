package transformers

import (
	"math/rand"
	"strings"
)

type randSource struct {
	*rand.Rand
}

func (r *randSource) pick(items []string) string {
	return items[r.Intn(len(items))]
}

func (r *randSource) digits(n int) string {
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		sb.WriteByte(byte('0' + r.Intn(10)))
	}
	return sb.String()
}

func (r *randSource) chance(p float64) bool {
	return r.Float64() < p
}

// fitLength hard-truncates a value to the column limit. Callers degrade
// gracefully before reaching for this: optional parts are dropped and variable
// parts shortened first.
func fitLength(s string, maxLength int) string {
	if maxLength <= 0 || len(s) <= maxLength {
		return s
	}
	return s[:maxLength]
}
