package checkout

import (
	"context"

	"go.uber.org/zap"
)

// euVATRate is the VAT percentage applied to EU customers.
const euVATRate = 20.0

// vatRateFor returns the VAT rate for a customer country. Missing country
// information and codebook lookup failures both fall back to non-EU (0%) —
// an explicit default, so a broken external lookup can never silently apply
// a wrong positive rate.
func (s *Service) vatRateFor(ctx context.Context, countryCode string) float64 {
	if countryCode == "" {
		return 0
	}
	isEU, err := s.countries.IsEUMember(ctx, countryCode)
	if err != nil {
		s.logger.Warn("country lookup failed, defaulting to non-EU",
			zap.Error(err), zap.String("country", countryCode))
		return 0
	}
	if isEU {
		return euVATRate
	}
	return 0
}
