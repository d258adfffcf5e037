package catalog

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/libbycheck/internal/availability"
)

// Record is one item from a catalog search response, kept exactly as
// decoded. Fields may be missing, null, strings or nested objects, so all
// access goes through the accessors below.
type Record map[string]any

// Normalized is the uniform view of a Record.
type Normalized struct {
	Title        string              `json:"title"`
	Authors      []string            `json:"authors"`
	Formats      []string            `json:"formats"`
	Availability availability.Fields `json:"availability"`
}

// Normalize builds the uniform view of r. It is recomputed on every call.
func (r Record) Normalize() Normalized {
	return Normalized{
		Title:        r.Title(),
		Authors:      r.Authors(),
		Formats:      r.FormatNames(),
		Availability: r.Availability(),
	}
}

// Title returns the record title, which is either a string or an object
// with a "main" string.
func (r Record) Title() string {
	switch t := r["title"].(type) {
	case string:
		return t
	case map[string]any:
		if main, ok := t["main"].(string); ok {
			return main
		}
	}
	return ""
}

// Authors returns the names of all creators, in catalog order. This
// includes narrators and illustrators.
func (r Record) Authors() []string {
	creators, _ := r["creators"].([]any)
	names := make([]string, 0, len(creators))
	for _, c := range creators {
		creator, ok := c.(map[string]any)
		if !ok {
			continue
		}
		name, _ := creator["name"].(string)
		names = append(names, name)
	}
	return names
}

// FirstCreatorName is the catalog's own display author, used only for
// diagnostics when creators are missing.
func (r Record) FirstCreatorName() string {
	name, _ := r["firstCreatorName"].(string)
	return name
}

// FormatNames returns the names of the record's formats. Entries are
// either strings or objects with a "name"; anything else is skipped.
func (r Record) FormatNames() []string {
	formats, _ := r["formats"].([]any)
	names := make([]string, 0, len(formats))
	for _, f := range formats {
		switch v := f.(type) {
		case string:
			names = append(names, v)
		case map[string]any:
			name, _ := v["name"].(string)
			names = append(names, name)
		}
	}
	return names
}

// HasNestedAvailability reports whether the record carries an
// "availability" object.
func (r Record) HasNestedAvailability() bool {
	_, ok := r["availability"].(map[string]any)
	return ok
}

// NestedAvailabilityKeys lists the keys of the "availability" object.
func (r Record) NestedAvailabilityKeys() []string {
	nested, _ := r["availability"].(map[string]any)
	keys := make([]string, 0, len(nested))
	for k := range nested {
		keys = append(keys, k)
	}
	return keys
}

// Keys lists the record's top-level keys.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	return keys
}

// pick looks a field up in the nested "availability" object first and
// then at the top level. A null value counts as absent.
func (r Record) pick(key string) (any, bool) {
	if nested, ok := r["availability"].(map[string]any); ok {
		if v, ok := nested[key]; ok && v != nil {
			return v, true
		}
	}
	if v, ok := r[key]; ok && v != nil {
		return v, true
	}
	return nil, false
}

// Availability extracts the availability fields, defaulting anything
// missing or unreadable.
func (r Record) Availability() availability.Fields {
	return availability.Fields{
		CopiesOwned:             r.pickCount("copiesOwned"),
		CopiesAvailable:         r.pickCount("copiesAvailable"),
		NumberOfHolds:           r.pickCount("numberOfHolds"),
		EstimatedWaitDays:       r.pickWait("estimatedWaitDays"),
		IsAvailable:             r.pickBool("isAvailable", false),
		IsHoldable:              r.pickBool("isHoldable", true),
		LuckyDayAvailableCopies: r.pickCount("luckyDayAvailableCopies"),
		AvailabilityType:        r.pickString("availabilityType"),
	}
}

func (r Record) pickCount(key string) int {
	v, ok := r.pick(key)
	if !ok {
		return 0
	}
	n, ok := toFloat(v)
	if !ok || n <= 0 || math.IsNaN(n) {
		return 0
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

func (r Record) pickBool(key string, def bool) bool {
	v, ok := r.pick(key)
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
			return parsed
		}
	case float64:
		return b != 0
	case json.Number:
		if f, err := b.Float64(); err == nil {
			return f != 0
		}
	}
	return def
}

func (r Record) pickString(key string) string {
	v, ok := r.pick(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func (r Record) pickWait(key string) availability.WaitEstimate {
	v, ok := r.pick(key)
	if !ok {
		return availability.NoWaitEstimate
	}
	days, ok := toFloat(v)
	if !ok {
		return availability.InvalidWaitEstimate
	}
	return availability.WaitDays(days)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
