package util

import (
	"path/filepath"
	"strings"
	"unicode"
)

// SanitizeString trims whitespace and removes control characters from s.
func SanitizeString(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// SanitizeFilename reduces a client-supplied filename to its base name with
// control characters, quotes, and path separators removed. An empty result
// becomes "upload".
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(SanitizeString(name))
	name = strings.Map(func(r rune) rune {
		switch r {
		case '"', '/', '\\':
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "upload"
	}
	return name
}

// Ext returns the lowercased extension of name including the leading dot,
// or "" when there is none.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(SanitizeFilename(name)))
}
