package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// nonWordRe matches anything that is neither a word character nor whitespace.
// Marks are kept so accented letters in decomposed form survive.
var nonWordRe = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s]`)

// Normalize canonicalizes text for comparison: punctuation is removed,
// surrounding whitespace trimmed and the result lowercased.
// Word order and inner spacing are left alone.
func Normalize(text string) string {
	text = norm.NFC.String(text)
	text = nonWordRe.ReplaceAllString(text, "")
	return strings.ToLower(strings.TrimSpace(text))
}

// NormalizeAny is Normalize for values of unknown type, such as fields
// decoded from a catalog response. Anything but a string yields "".
func NormalizeAny(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return Normalize(s)
}

// PreprocessTitle cuts a title at the first "(" or ":" so that subtitles
// ("Title: A Novel") and annotations ("Title (2019)") are ignored.
func PreprocessTitle(title string) string {
	if idx := strings.IndexAny(title, "(:"); idx >= 0 {
		title = title[:idx]
	}
	return strings.TrimSpace(title)
}

// Key is the comparison key for a title: preprocessed, then normalized.
func Key(title string) string {
	return Normalize(PreprocessTitle(title))
}
