package pricing

import (
	"math"
	"strings"
	"time"
)

// dateLayout is the ISO date format used across the API and the orders table.
const dateLayout = "2006-01-02"

// priceTier maps a course length bucket to per-currency base prices.
// maxDays is the inclusive upper bound on course length; the last entry
// with maxDays 0 is the catch-all for anything longer.
type priceTier struct {
	maxDays int
	eur     float64
	usd     float64
}

// tiers is ordered by maxDays ascending. New tiers are added here only;
// resolution below never needs to change.
var tiers = []priceTier{
	{maxDays: 1, eur: 690, usd: 790},
	{maxDays: 2, eur: 1190, usd: 1290},
	{maxDays: 3, eur: 1490, usd: 1690},
	{maxDays: 0, eur: 1790, usd: 1990},
}

// BasePrice returns the per-participant base price for a course running from
// startDate to endDate (inclusive). It is a total function: malformed or
// missing dates, or an end date before the start date, price at 0 rather
// than erroring, so callers rendering a page never have to branch.
func BasePrice(startDate, endDate, currency string) float64 {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return 0
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return 0
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		return 0
	}

	tier := tiers[len(tiers)-1]
	for _, t := range tiers {
		if t.maxDays != 0 && days <= t.maxDays {
			tier = t
			break
		}
	}
	if normalizeCurrency(currency) == "USD" {
		return tier.usd
	}
	return tier.eur
}

// normalizeCurrency maps currency symbols and codes to "EUR" or "USD".
// Anything unrecognized falls back to EUR, the site's default currency.
func normalizeCurrency(currency string) string {
	switch strings.ToUpper(strings.TrimSpace(currency)) {
	case "USD", "$", "US$":
		return "USD"
	default:
		return "EUR"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
