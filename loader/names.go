package loader

import (
	"unicode"
)

const (
	hyphen     = '-'
	underscore = '_'
	space      = ' '
)

// kebab rewrites camel, pascal and snake case keys to the lowercase hyphenated
// names used by metaschema models: publishedAt and published_at both become
// published-at.
func kebab(str string) string {
	var (
		chars []rune
		last  rune
	)
	for _, r := range str {
		switch {
		case r == space || r == underscore:
			if last != 0 && last != hyphen {
				chars = append(chars, hyphen)
			}
			r = hyphen
		case unicode.IsUpper(r):
			if last != 0 && last != hyphen && !unicode.IsUpper(last) {
				chars = append(chars, hyphen)
			}
			chars = append(chars, unicode.ToLower(r))
		default:
			chars = append(chars, r)
		}
		last = r
	}
	if z := len(chars); z > 0 && chars[z-1] == hyphen {
		chars = chars[:z-1]
	}
	return string(chars)
}
