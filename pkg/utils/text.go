// Package utils provides shared utilities for text and logging.
package utils

import "unicode/utf8"

const ellipsis = "..."

// Truncate returns s cut to at most maxLen runes, the "..." marker included.
// When maxLen leaves no room for the marker, s is cut without it.
// If maxLen is 0 or negative, returns s unchanged. Multi-byte characters are never split.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || RuneLen(s) <= maxLen {
		return s
	}
	if maxLen <= len(ellipsis) {
		return cutRunes(s, maxLen)
	}
	return cutRunes(s, maxLen-len(ellipsis)) + ellipsis
}

func cutRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// RuneLen returns the number of runes in s.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
