package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`[\s\x{00a0}]+`)

// CollapseSpace trims `s` and replaces every run of whitespace (including
// non-breaking spaces) with a single space.
func CollapseSpace(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

func IsBlank(s string) bool {
	return CollapseSpace(s) == ""
}

// FirstNonBlank returns the first value that is not blank, or "".
func FirstNonBlank(values ...string) string {
	for _, v := range values {
		if !IsBlank(v) {
			return v
		}
	}
	return ""
}

// JoinNonBlank joins the values that are not blank with `sep`.
func JoinNonBlank(sep string, values ...string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if IsBlank(v) {
			continue
		}
		parts = append(parts, strings.TrimSpace(v))
	}
	return strings.Join(parts, sep)
}
