package translation

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DisplayLanguage expands a BCP 47 tag to its English name ("fr" gives
// "French", "pt-BR" gives "Brazilian Portuguese"). Only tag-shaped input is
// expanded: a lowercase two or three letter primary subtag followed by
// optional alphanumeric subtags. Names such as "Ga" or "Twi" are returned
// trimmed but otherwise unchanged.
func DisplayLanguage(s string) string {
	s = strings.TrimSpace(s)
	if !tagShaped(s) {
		return s
	}
	tag, err := language.Parse(s)
	if err != nil {
		return s
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return s
}

func tagShaped(s string) bool {
	primary, rest, _ := strings.Cut(s, "-")
	if len(primary) < 2 || len(primary) > 3 {
		return false
	}
	for _, r := range primary {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	if rest == "" {
		return true
	}
	for _, sub := range strings.Split(rest, "-") {
		if sub == "" || len(sub) > 8 {
			return false
		}
		for _, r := range sub {
			if !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9') {
				return false
			}
		}
	}
	return true
}
