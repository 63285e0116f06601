package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBasePriceByDuration(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		currency string
		want     float64
	}{
		{"one day EUR", "2026-06-01", "2026-06-01", "EUR", 690},
		{"two days EUR", "2026-06-01", "2026-06-02", "EUR", 1190},
		{"three days EUR", "2026-06-01", "2026-06-03", "EUR", 1490},
		{"five days catches all", "2026-06-01", "2026-06-05", "EUR", 1790},
		{"three days USD", "2026-06-01", "2026-06-03", "USD", 1690},
		{"euro symbol", "2026-06-01", "2026-06-03", "€", 1490},
		{"dollar symbol", "2026-06-01", "2026-06-03", "$", 1690},
		{"unknown currency falls back to EUR", "2026-06-01", "2026-06-03", "GBP", 1490},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BasePrice(tt.start, tt.end, tt.currency))
		})
	}
}

func TestBasePriceIsTotal(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
	}{
		{"missing start", "", "2026-06-03"},
		{"missing end", "2026-06-01", ""},
		{"malformed start", "01.06.2026", "2026-06-03"},
		{"malformed end", "2026-06-01", "June 3rd"},
		{"end before start", "2026-06-03", "2026-06-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, float64(0), BasePrice(tt.start, tt.end, "EUR"))
		})
	}
}

func TestBasePriceDeterministic(t *testing.T) {
	first := BasePrice("2026-06-01", "2026-06-03", "EUR")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, BasePrice("2026-06-01", "2026-06-03", "EUR"))
	}
	assert.GreaterOrEqual(t, first, float64(0))
}
