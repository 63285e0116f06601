package pricing

// pairDiscountRate is the group discount applied to a two-seat order,
// expressed as a share of the pair total. It is derived from the current
// base price rather than kept as a second static table so the two never
// drift apart.
const pairDiscountRate = 0.10

// PriceForQuantity returns the total pre-discount price for quantity seats.
//
//	1 seat:  base price
//	2 seats: pair total with the group rate off (lower cost per head)
//	3 seats: two times the base price (third participant free)
//
// The UI only offers quantities 1-3. Larger orders price the first three
// seats as 3-for-2 and every further seat at the unit price.
func PriceForQuantity(startDate, endDate string, quantity int, currency string) float64 {
	if quantity < 1 {
		return 0
	}
	base := BasePrice(startDate, endDate, currency)
	switch quantity {
	case 1:
		return base
	case 2:
		return round2(2 * base * (1 - pairDiscountRate))
	default:
		return round2(2*base + float64(quantity-3)*base)
	}
}
