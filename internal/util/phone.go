package util

import (
	"regexp"
	"strings"
)

var phoneJunk = regexp.MustCompile(`[^\d\+]+`)

// NormalizePhone strips separators and keeps at most one leading "+".
// Customer phone is optional free-form input; we tidy it, we never reject it.
func NormalizePhone(raw string) string {
	s := phoneJunk.ReplaceAllString(strings.TrimSpace(raw), "")
	if strings.HasPrefix(s, "00") {
		s = "+" + s[2:]
	}
	if strings.Count(s, "+") > 0 {
		s = "+" + strings.ReplaceAll(s, "+", "")
	}

	return s
}
