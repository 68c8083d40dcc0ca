package extract

import "strings"

// Sanitize strips control characters below 0x20 except \n, \r and \t.
// The storage layer rejects NUL bytes, so nothing below this range may
// leave the extraction stage. Idempotent.
func Sanitize(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' || r >= 0x20 {
			return r
		}
		return -1
	}, text)
}
