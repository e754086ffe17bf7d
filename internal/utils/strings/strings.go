package strings

import (
	"strings"

	"github.com/mitchellh/go-wordwrap"
)

// WrapString wraps v at word boundaries and hard-splits any remaining line
// longer than maxLength (long tokens such as keys or URLs).
func WrapString(v string, maxLength int) string {
	lines := strings.Split(wordwrap.WrapString(v, uint(maxLength)), "\n")
	res := make([]string, 0, len(lines))
	for _, s := range lines {
		for len(s) > maxLength {
			res = append(res, s[:maxLength])
			s = s[maxLength:]
		}
		res = append(res, s)
	}
	return strings.Join(res, "\n")
}
