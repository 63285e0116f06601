package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceForQuantityInvariants(t *testing.T) {
	start, end := "2026-06-01", "2026-06-03"
	base := BasePrice(start, end, "EUR")

	assert.Equal(t, base, PriceForQuantity(start, end, 1, "EUR"), "quantity 1 equals base price")
	assert.Equal(t, 2*base, PriceForQuantity(start, end, 3, "EUR"), "three for two")

	pair := PriceForQuantity(start, end, 2, "EUR")
	assert.Less(t, pair, 2*base, "pair costs less than two singles")
	assert.Greater(t, pair, base, "pair costs more than one seat")
}

func TestPriceForQuantityLargeOrders(t *testing.T) {
	start, end := "2026-06-01", "2026-06-03"
	base := BasePrice(start, end, "EUR")

	// Beyond three seats: 3-for-2 on the first three, unit price after.
	assert.Equal(t, 2*base+base, PriceForQuantity(start, end, 4, "EUR"))
	assert.Equal(t, 2*base+2*base, PriceForQuantity(start, end, 5, "EUR"))
}

func TestPriceForQuantityEdgeInputs(t *testing.T) {
	assert.Equal(t, float64(0), PriceForQuantity("2026-06-01", "2026-06-03", 0, "EUR"))
	assert.Equal(t, float64(0), PriceForQuantity("2026-06-01", "2026-06-03", -1, "EUR"))
	assert.Equal(t, float64(0), PriceForQuantity("", "", 2, "EUR"), "malformed dates stay total")
}
