package pricing

import "time"

const (
	// earlyBirdPoolSize is the hard cap of discounted seats per distinct
	// (event, start date, end date) instance.
	earlyBirdPoolSize = 5
	// earlyBirdMonths is the minimum number of calendar months between
	// today and the event start for the discount window to be open.
	earlyBirdMonths = 3

	earlyBirdSingleDiscount = 100
	earlyBirdGroupDiscount  = 200
)

// IsEligible reports whether startDate is at least three calendar months
// ahead of today. This is calendar-month arithmetic with a day-of-month
// adjustment, not a flat 90-day window: June 1 is exactly three months
// ahead of March 1, regardless of how many days the months in between have.
func IsEligible(startDate string, today time.Time) bool {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return false
	}
	months := (start.Year()-today.Year())*12 + int(start.Month()) - int(today.Month())
	if start.Day() < today.Day() {
		months--
	}
	return months >= earlyBirdMonths
}

// DiscountFor returns the early-bird discount for an order of quantity seats
// given the committed participant count for the date range. The discount is
// all-or-nothing: if the purchase would push the committed count past the
// pool of five, no part of it is discounted. One seat gets the flat single
// discount, two or more get the flat group discount.
func DiscountFor(quantity, committedCount int) float64 {
	if quantity < 1 {
		return 0
	}
	if committedCount+quantity > earlyBirdPoolSize {
		return 0
	}
	if quantity == 1 {
		return earlyBirdSingleDiscount
	}
	return earlyBirdGroupDiscount
}

// RemainingSpots returns how many early-bird seats are left for a date range.
// Informational only (scarcity messaging); per-purchase eligibility goes
// through DiscountFor.
func RemainingSpots(committedCount int) int {
	left := earlyBirdPoolSize - committedCount
	if left < 0 {
		return 0
	}
	return left
}
