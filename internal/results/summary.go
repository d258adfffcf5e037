package results

import (
	"fmt"
	"io"

	"github.com/lehigh-university-libraries/libbycheck/internal/availability"
	"github.com/lehigh-university-libraries/libbycheck/internal/models"
)

// Summary counts rows by outcome
type Summary struct {
	TotalRows     int `json:"total_rows" yaml:"totalrows"`
	AvailableNow  int `json:"available_now" yaml:"availablenow"`
	Waitlisted    int `json:"waitlisted" yaml:"waitlisted"`
	NotBorrowable int `json:"not_borrowable" yaml:"notborrowable"`
	NotFound      int `json:"not_found" yaml:"notfound"`
}

// Summarize counts the outcomes in rows
func Summarize(rows []models.ResultRow) Summary {
	s := Summary{TotalRows: len(rows)}
	for _, r := range rows {
		if !r.Found {
			s.NotFound++
			continue
		}
		switch r.Verdict.Kind {
		case availability.AvailableNow:
			s.AvailableNow++
		case availability.Waitlisted:
			s.Waitlisted++
		default:
			s.NotBorrowable++
		}
	}
	return s
}

// Print writes a human readable summary
func (s Summary) Print(w io.Writer) {
	fmt.Fprintln(w, "\n========================================")
	fmt.Fprintln(w, "Availability Summary")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Result Rows:        %d\n", s.TotalRows)
	fmt.Fprintf(w, "Available Now:      %d\n", s.AvailableNow)
	fmt.Fprintf(w, "Waitlisted:         %d\n", s.Waitlisted)
	fmt.Fprintf(w, "Not Borrowable:     %d\n", s.NotBorrowable)
	fmt.Fprintf(w, "Not Found:          %d\n", s.NotFound)
	fmt.Fprintln(w, "========================================")
}
