package rental

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDurationDays(t *testing.T) {
	assert.Equal(t, 3, DurationDays(day("2024-01-01"), day("2024-01-03")))
	assert.Equal(t, 1, DurationDays(day("2024-01-01"), day("2024-01-01")))
	assert.Equal(t, 2, DurationDays(day("2024-02-28"), day("2024-02-29"))) // leap year
	assert.Equal(t, 0, DurationDays(day("2024-01-03"), day("2024-01-01")))
}

func TestTotalAmount(t *testing.T) {
	// 3 inclusive days at 50/day
	assert.InDelta(t, 150, TotalAmount(day("2024-01-01"), day("2024-01-03"), 50), 1e-9)
	// 1-day rental still bills one day
	assert.InDelta(t, 75.5, TotalAmount(day("2024-01-10"), day("2024-01-10"), 75.5), 1e-9)
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name           string
		s1, e1, s2, e2 string
		want           bool
	}{
		{"contained", "2024-01-10", "2024-01-15", "2024-01-12", "2024-01-13", true},
		{"containing", "2024-01-12", "2024-01-13", "2024-01-10", "2024-01-15", true},
		{"partial left", "2024-01-08", "2024-01-11", "2024-01-10", "2024-01-15", true},
		{"partial right", "2024-01-14", "2024-01-20", "2024-01-10", "2024-01-15", true},
		{"identical", "2024-01-10", "2024-01-15", "2024-01-10", "2024-01-15", true},
		{"back to back is a conflict", "2024-01-01", "2024-01-10", "2024-01-10", "2024-01-20", true},
		{"one day gap", "2024-01-01", "2024-01-09", "2024-01-10", "2024-01-20", false},
		{"disjoint", "2024-01-01", "2024-01-05", "2024-02-01", "2024-02-05", false},
		{"single day inside", "2024-01-12", "2024-01-12", "2024-01-10", "2024-01-15", true},
		{"single day outside", "2024-01-16", "2024-01-16", "2024-01-10", "2024-01-15", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Overlaps(day(c.s1), day(c.e1), day(c.s2), day(c.e2))
			assert.Equal(t, c.want, got)
			// symmetry
			assert.Equal(t, c.want, Overlaps(day(c.s2), day(c.e2), day(c.s1), day(c.e1)))
		})
	}
}
