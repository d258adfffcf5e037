package models

import (
	"github.com/lehigh-university-libraries/libbycheck/internal/availability"
	"github.com/lehigh-university-libraries/libbycheck/internal/media"
)

// NotFound marks every column of a row for a book the catalog did not have.
const NotFound = "Not found"

// RequestedBook is one entry of the reading list
type RequestedBook struct {
	Title  string `json:"Title" parquet:"Title"`
	Author string `json:"Author" parquet:"Author"`
	Shelf  string `json:"Exclusive Shelf,omitempty" parquet:"Exclusive Shelf,optional"`
}

// ResultRow is the outcome for one matched book and media type. Found is
// false only for the single placeholder row of a book with no match.
type ResultRow struct {
	Title     string               `json:"title"`
	Author    string               `json:"author,omitempty"`
	MediaType media.Type           `json:"media_type,omitempty"`
	Verdict   availability.Verdict `json:"-"`
	Found     bool                 `json:"found"`
}

// NotFoundRow is the placeholder row for a book without matches.
func NotFoundRow(book RequestedBook) ResultRow {
	return ResultRow{Title: book.Title, Author: book.Author}
}

// DisplayTitle is the title annotated with the catalog author when known.
func (r ResultRow) DisplayTitle() string {
	if !r.Found || r.Author == "" {
		return r.Title
	}
	return r.Title + " (" + r.Author + ")"
}

// Availability is the Yes/No column, or NotFound.
func (r ResultRow) Availability() string {
	if !r.Found {
		return NotFound
	}
	return r.Verdict.Marker()
}

// MediaTypeText is the media type column, or NotFound.
func (r ResultRow) MediaTypeText() string {
	if !r.Found {
		return NotFound
	}
	return string(r.MediaType)
}

// WaitStatus is the human-readable verdict, or NotFound.
func (r ResultRow) WaitStatus() string {
	if !r.Found {
		return NotFound
	}
	return r.Verdict.String()
}
