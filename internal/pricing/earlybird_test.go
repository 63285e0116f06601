package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestIsEligibleCalendarMonthBoundary(t *testing.T) {
	tests := []struct {
		name     string
		today    string
		start    string
		eligible bool
	}{
		{"exactly three months ahead", "2026-03-01", "2026-06-01", true},
		{"three months minus one day", "2026-03-01", "2026-05-31", false},
		{"one day past the boundary", "2026-03-15", "2026-06-16", true},
		{"same day of month, three months", "2026-03-15", "2026-06-15", true},
		{"day before, three months", "2026-03-15", "2026-06-14", false},
		{"across year end", "2025-11-10", "2026-02-10", true},
		{"across year end, short", "2025-11-10", "2026-02-09", false},
		{"month-end today, shorter target month", "2026-01-31", "2026-04-30", false},
		{"well past the window", "2026-03-01", "2026-12-01", true},
		{"event in the past", "2026-06-01", "2026-03-01", false},
		{"event tomorrow", "2026-06-01", "2026-06-02", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.eligible, IsEligible(tt.start, day(tt.today)))
		})
	}
}

func TestIsEligibleMalformedDate(t *testing.T) {
	assert.False(t, IsEligible("", day("2026-01-01")))
	assert.False(t, IsEligible("06/01/2026", day("2026-01-01")))
}

func TestDiscountForCapacityBoundary(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int
		committed int
		want      float64
	}{
		{"first seat", 1, 0, 100},
		{"pair on empty pool", 2, 0, 200},
		{"fifth seat fits", 1, 4, 100},
		{"pair over the cap", 2, 4, 0},
		{"pool already full", 1, 5, 0},
		{"pool overfull", 2, 6, 0},
		{"three seats on two committed", 3, 2, 200},
		{"three seats on three committed", 3, 3, 0},
		{"zero quantity", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DiscountFor(tt.quantity, tt.committed))
		})
	}
}

func TestDiscountIsAllOrNothing(t *testing.T) {
	// Four committed, two requested: one seat would still fall inside the
	// pool, but there is no pro-rating.
	require.Equal(t, float64(0), DiscountFor(2, 4))
}

func TestRemainingSpots(t *testing.T) {
	for committed, want := range map[int]int{0: 5, 1: 4, 4: 1, 5: 0, 9: 0} {
		assert.Equal(t, want, RemainingSpots(committed), "committed=%d", committed)
	}
}
