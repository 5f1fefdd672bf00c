// Package daterange resolves publication-date windows and tests candidate
// dates against them.
package daterange

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DefaultMonthsBack is the lookback applied when no explicit lower bound
// is given.
const DefaultMonthsBack = 6

// daysPerMonth approximates one month of lookback.
const daysPerMonth = 30

// Window is an inclusive date range.
type Window struct {
	From time.Time
	To   time.Time
}

// Resolve builds the effective window from optional bounds. The upper bound
// defaults to now, the lower bound to monthsBack months before now. Inverted
// bounds are swapped rather than rejected.
func Resolve(from, to *time.Time, monthsBack int) Window {
	if monthsBack <= 0 {
		monthsBack = DefaultMonthsBack
	}

	now := time.Now()

	effectiveTo := now
	if to != nil {
		effectiveTo = *to
	}

	effectiveFrom := now.AddDate(0, 0, -monthsBack*daysPerMonth)
	if from != nil {
		effectiveFrom = *from
	}

	if effectiveFrom.After(effectiveTo) {
		effectiveFrom, effectiveTo = effectiveTo, effectiveFrom
	}

	return Window{From: effectiveFrom, To: effectiveTo}
}

// Contains tests a raw publication-date string against the window. Missing
// or unparsable dates are included: the pipeline prefers a false positive
// over silently dropping an undated source. Both bounds are inclusive.
func (w Window) Contains(dateStr string) bool {
	parsed, ok := Parse(dateStr)
	if !ok {
		return true
	}

	if parsed.Before(w.From) || parsed.After(w.To) {
		return false
	}
	return true
}

// Parse attempts flexible multi-format date parsing. Timezone-aware values
// are normalized to naive local time so they compare consistently with the
// window bounds.
func Parse(dateStr string) (time.Time, bool) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, false
	}

	parsed, err := dateparse.ParseAny(dateStr)
	if err != nil {
		return time.Time{}, false
	}

	return stripZone(parsed), true
}

// stripZone drops the zone offset, keeping the wall-clock reading.
func stripZone(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.Local)
}
