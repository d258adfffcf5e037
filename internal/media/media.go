package media

import "strings"

// Type is the lending media type of a catalog format.
type Type string

const (
	Ebook     Type = "Ebook"
	Audiobook Type = "Audiobook"
	Unknown   Type = "Unknown"
)

// Order is the order media types appear in output.
var Order = []Type{Ebook, Audiobook, Unknown}

type rule struct {
	substrings []string
	mediaType  Type
}

// rules are checked in order. Audiobook comes first so formats such as
// "Audiobook (via OverDrive Read)" are not mistaken for ebooks.
var rules = []rule{
	{substrings: []string{"audiobook"}, mediaType: Audiobook},
	{substrings: []string{"ebook", "read", "kobo", "kindle"}, mediaType: Ebook},
}

// Classify maps a list of catalog format names to a media type.
func Classify(formatNames []string) Type {
	joined := strings.ToLower(strings.Join(formatNames, " | "))
	for _, r := range rules {
		for _, sub := range r.substrings {
			if strings.Contains(joined, sub) {
				return r.mediaType
			}
		}
	}
	return Unknown
}

// Distinct classifies each format on its own and returns the media types
// present, in Order. A record without formats is Unknown.
func Distinct(formatNames []string) []Type {
	if len(formatNames) == 0 {
		return []Type{Unknown}
	}

	seen := make(map[Type]bool, len(Order))
	for _, name := range formatNames {
		seen[Classify([]string{name})] = true
	}

	types := make([]Type, 0, len(seen))
	for _, t := range Order {
		if seen[t] {
			types = append(types, t)
		}
	}
	return types
}
