package slug

import (
	"regexp"
	"strings"
)

var nonAlphaNum = regexp.MustCompile(`[^A-Z0-9]+`)

// Code turns a display name into an upper snake case identifier,
// "4-7-8 Breathing" becomes "4_7_8_BREATHING". It returns "" when
// nothing alphanumeric is left.
func Code(input string) string {
	s := strings.ToUpper(strings.TrimSpace(input))
	s = nonAlphaNum.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
