package daterange_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vigialabs/vigia/internal/daterange"
)

func TestResolve_Defaults(t *testing.T) {
	t.Parallel()

	w := daterange.Resolve(nil, nil, 0)
	assert.WithinDuration(t, time.Now(), w.To, time.Minute)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -180), w.From, time.Minute)
}

func TestResolve_ExplicitBounds(t *testing.T) {
	t.Parallel()

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local)

	w := daterange.Resolve(&from, &to, 0)
	assert.Equal(t, from, w.From)
	assert.Equal(t, to, w.To)
}

func TestResolve_SwapsInvertedBounds(t *testing.T) {
	t.Parallel()

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)

	w := daterange.Resolve(&from, &to, 0)
	assert.True(t, w.From.Before(w.To))
}

func TestContains(t *testing.T) {
	t.Parallel()

	w := daterange.Window{
		From: time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local),
		To:   time.Date(2025, 6, 30, 23, 59, 59, 0, time.Local),
	}

	tests := []struct {
		name    string
		dateStr string
		want    bool
	}{
		{"inside", "2025-03-15", true},
		{"lower bound inclusive", "2025-01-01", true},
		{"upper bound inclusive", "2025-06-30", true},
		{"before window", "2024-12-31", false},
		{"after window", "2025-07-01", false},
		{"empty string included", "", true},
		{"unparsable included", "hace dos semanas", true},
		{"rfc3339 with zone", "2025-03-10T08:00:00-05:00", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, w.Contains(tt.dateStr))
		})
	}
}

func TestContains_UpperBoundEqual(t *testing.T) {
	t.Parallel()

	// The parsed date lands exactly on the upper bound.
	w := daterange.Window{
		From: time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local),
		To:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.Local),
	}
	assert.True(t, w.Contains("2025-06-30"))
	assert.False(t, w.Contains("2025-07-01"))
}

func TestParse(t *testing.T) {
	t.Parallel()

	parsed, ok := daterange.Parse("2025-03-10T08:00:00-05:00")
	assert.True(t, ok)
	assert.Equal(t, 2025, parsed.Year())
	assert.Equal(t, time.March, parsed.Month())
	assert.Equal(t, 10, parsed.Day())
	assert.Equal(t, 8, parsed.Hour())

	_, ok = daterange.Parse("")
	assert.False(t, ok)
}
