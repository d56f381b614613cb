package profile

import (
	"strings"
	"unicode"
)

// flavorDenylist drops tokens that describe process or clarifying-agent
// ingredients rather than flavors. These show up constantly in tasting notes
// and brewery descriptions but say nothing about taste.
var flavorDenylist = map[string]bool{
	"gelatin":   true,
	"isinglass": true,
	"finings":   true,
	"biofine":   true,
	"whirlfloc": true,
	"campden":   true,
	"pectin":    true,
	"yeast":     true,
	"enzyme":    true,
	"enzymes":   true,
}

// stopwords are generic tokens with no flavor content.
var stopwords = map[string]bool{
	"the": true, "and": true, "with": true, "this": true, "that": true,
	"very": true, "really": true, "beer": true, "taste": true, "tastes": true,
	"notes": true, "note": true, "some": true, "hint": true, "hints": true,
	"nice": true, "good": true, "great": true, "slight": true, "slightly": true,
	"finish": true, "aroma": true, "flavor": true, "flavour": true, "like": true,
	"bit": true, "little": true, "lots": true, "touch": true,
}

// TokenizeNotes splits free-text tasting notes into flavor candidate tokens.
// Tokens are lowercased; stopwords, denylisted ingredient tokens, and tokens
// shorter than three characters are dropped.
func TokenizeNotes(notes string) []string {
	fields := strings.FieldsFunc(strings.ToLower(notes), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 3 || stopwords[f] || flavorDenylist[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// FilterFlavorTags drops denylisted entries from an explicit flavor list.
func FilterFlavorTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" && !flavorDenylist[tag] {
			out = append(out, tag)
		}
	}
	return out
}
