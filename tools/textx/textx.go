package textx

import (
	"regexp"
	"strings"
)

var (
	mentionRe = regexp.MustCompile(`@([A-Za-z0-9_.]{2,30})`)
	hashtagRe = regexp.MustCompile(`^#[A-Za-z0-9_]{1,50}$`)
)

// ExtractMentions returns the distinct @usernames referenced in s, in order
// of first appearance.
func ExtractMentions(s string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range mentionRe.FindAllStringSubmatch(s, -1) {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// WellFormedHashtag reports whether tok is a usable `#hashtag` token.
func WellFormedHashtag(tok string) bool {
	return hashtagRe.MatchString(tok)
}

// NormalizeHashtag lowers and prefixes a raw word into hashtag form, or
// returns "" when nothing usable remains.
func NormalizeHashtag(raw string) string {
	w := strings.TrimSpace(strings.TrimPrefix(raw, "#"))
	w = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return -1
		}
	}, w)
	if w == "" {
		return ""
	}
	tag := "#" + w
	if !WellFormedHashtag(tag) {
		return ""
	}
	return tag
}
