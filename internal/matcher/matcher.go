package matcher

import (
	"strings"

	"github.com/lehigh-university-libraries/libbycheck/internal/catalog"
	"github.com/lehigh-university-libraries/libbycheck/internal/normalize"
)

// Request is a normalized requested book, computed once per search.
type Request struct {
	TitleKey  string
	AuthorKey string
}

// NewRequest normalizes a requested title and author.
func NewRequest(title, author string) Request {
	return Request{
		TitleKey:  normalize.Key(title),
		AuthorKey: normalize.Normalize(author),
	}
}

// Matches reports whether a catalog record is the requested book: the
// normalized titles must be equal and the requested author must appear
// somewhere in the record's creators. An empty author matches any record
// with the right title.
func (q Request) Matches(r catalog.Record) bool {
	if normalize.Key(r.Title()) != q.TitleKey {
		return false
	}
	creators := normalize.Normalize(strings.Join(r.Authors(), " "))
	return strings.Contains(creators, q.AuthorKey)
}

// Match returns the records corresponding to the requested book, in their
// original order.
func Match(records []catalog.Record, title, author string) []catalog.Record {
	q := NewRequest(title, author)

	matched := make([]catalog.Record, 0, len(records))
	for _, r := range records {
		if q.Matches(r) {
			matched = append(matched, r)
		}
	}
	return matched
}
