package util

import (
	"regexp"
	"strconv"
	"strings"
)

var reSpaces = regexp.MustCompile(`\s+`)

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// Truncate shortens a string to at most n runes, for note messages that
// embed user data.
func Truncate(input string, n int) string {
	runes := []rune(input)
	if len(runes) <= n {
		return input
	}
	return string(runes[:n])
}

// FormatFloat renders a float the way it appears in the output dataset:
// shortest exact decimal form.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func StringPtr(v string) *string { return &v }

func FloatPtr(v float64) *float64 { return &v }

func DerefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
