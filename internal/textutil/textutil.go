package textutil

import (
	"strings"
	"unicode/utf8"
)

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Normalize unifies line endings to LF and trims outer whitespace.
func Normalize(s string) string {
	return strings.TrimSpace(lineEndings.Replace(s))
}

// Len counts characters (code points), not bytes.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// Prefix returns at most the first n characters of s.
func Prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
