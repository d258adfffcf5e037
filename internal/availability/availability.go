package availability

import (
	"fmt"
	"math"
)

// Fields is the normalized view of a catalog record's availability data.
// Missing integers are 0, IsHoldable defaults to true and IsAvailable to false.
type Fields struct {
	CopiesOwned             int          `json:"copies_owned"`
	CopiesAvailable         int          `json:"copies_available"`
	NumberOfHolds           int          `json:"number_of_holds"`
	EstimatedWaitDays       WaitEstimate `json:"estimated_wait_days"`
	IsAvailable             bool         `json:"is_available"`
	IsHoldable              bool         `json:"is_holdable"`
	LuckyDayAvailableCopies int          `json:"lucky_day_available_copies"`
	AvailabilityType        string       `json:"availability_type,omitempty"`
}

// WaitEstimate is an optional estimate in days. Present reports whether the
// catalog supplied a value at all; Valid reports whether it was numeric.
type WaitEstimate struct {
	Present bool    `json:"present"`
	Valid   bool    `json:"valid"`
	Days    float64 `json:"days"`
}

// NoWaitEstimate is the zero estimate: the field was absent.
var NoWaitEstimate = WaitEstimate{}

// WaitDays returns a present, numeric estimate.
func WaitDays(days float64) WaitEstimate {
	return WaitEstimate{Present: true, Valid: true, Days: days}
}

// InvalidWaitEstimate is a present estimate that could not be read as a number.
var InvalidWaitEstimate = WaitEstimate{Present: true}

// Kind enumerates the verdicts.
type Kind int

const (
	NotBorrowable Kind = iota
	Waitlisted
	AvailableNow
)

// Verdict is the availability outcome for one record.
// Weeks is only meaningful for Waitlisted and is always >= 1 there.
type Verdict struct {
	Kind  Kind
	Weeks int
}

// Verdict constructors.
func Available() Verdict     { return Verdict{Kind: AvailableNow} }
func NotOffered() Verdict    { return Verdict{Kind: NotBorrowable} }
func Wait(weeks int) Verdict { return Verdict{Kind: Waitlisted, Weeks: max(1, weeks)} }

// String is the wait-status text written to the output table.
func (v Verdict) String() string {
	switch v.Kind {
	case AvailableNow:
		return "Available now"
	case Waitlisted:
		if v.Weeks == 1 {
			return "Wait about 1 week"
		}
		return fmt.Sprintf("Wait about %d weeks", v.Weeks)
	default:
		return "Not borrowable"
	}
}

// Marker is the yes/no availability column.
func (v Verdict) Marker() string {
	if v.Kind == AvailableNow {
		return "Yes"
	}
	return "No"
}

// Better reports whether v is a more useful outcome than other: available
// beats any wait, a shorter wait beats a longer one, any wait beats not
// borrowable.
func (v Verdict) Better(other Verdict) bool {
	if v.Kind != other.Kind {
		return v.Kind > other.Kind
	}
	return v.Kind == Waitlisted && v.Weeks < other.Weeks
}

type rule struct {
	name    string
	applies func(Fields) bool
	verdict func(Fields) Verdict
}

// rules are evaluated in order; the first that applies decides.
var rules = []rule{
	{
		name: "available now",
		applies: func(f Fields) bool {
			return f.IsAvailable || f.CopiesAvailable > 0 || f.LuckyDayAvailableCopies > 0
		},
		verdict: func(Fields) Verdict { return Available() },
	},
	{
		name:    "not holdable",
		applies: func(f Fields) bool { return !f.IsHoldable },
		verdict: func(Fields) Verdict { return NotOffered() },
	},
	{
		name:    "wait estimate",
		applies: func(f Fields) bool { return f.EstimatedWaitDays.Present },
		verdict: func(f Fields) Verdict {
			weeks, ok := weeksFromDays(f.EstimatedWaitDays)
			if !ok {
				return NotOffered()
			}
			return Wait(weeks)
		},
	},
}

// Resolve derives the verdict for a record's availability fields.
func Resolve(f Fields) Verdict {
	for _, r := range rules {
		if r.applies(f) {
			return r.verdict(f)
		}
	}
	return NotOffered()
}

// weeksFromDays converts a wait estimate to whole weeks, rounding half to
// even, never less than one.
func weeksFromDays(w WaitEstimate) (int, bool) {
	if !w.Valid || math.IsNaN(w.Days) || math.IsInf(w.Days, 0) {
		return 0, false
	}
	weeks := math.RoundToEven(w.Days / 7)
	if weeks > math.MaxInt32 {
		return math.MaxInt32, true
	}
	return max(1, int(weeks)), true
}
