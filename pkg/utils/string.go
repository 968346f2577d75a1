// Package utils provides common utility functions.
package utils

import "strings"

// CollapseWhitespace trims a string and squeezes internal whitespace runs
// down to single spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate shortens a string to maxLength, appending an ellipsis.
func Truncate(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}

	return s[:maxLength] + "..."
}
