package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/pharma-academy/backend/internal/models"
)

// Validation errors returned by Service.Quote.
var (
	ErrMissingDates    = errors.New("start and end date are required")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// ParticipantCounter reads the committed participant count for one date
// range instance. Implemented by the orders repository.
type ParticipantCounter interface {
	CommittedCount(ctx context.Context, eventSlug, startDate, endDate string) (int, error)
}

// Service composes the tier table, group pricing, early-bird calculator and
// participant counter into quotes. It holds no state besides its
// collaborators; every quote is a fresh capacity read.
type Service struct {
	counter ParticipantCounter
	now     func() time.Time
}

// NewService creates a pricing service.
func NewService(counter ParticipantCounter) *Service {
	return &Service{counter: counter, now: time.Now}
}

// Quote computes the authoritative price for one (event, date range,
// quantity, currency) combination. Eligibility and capacity are independent
// axes: an event far enough out with an exhausted pool quotes as eligible
// with discount 0.
func (s *Service) Quote(ctx context.Context, slug, startDate, endDate string, quantity int, currency string) (*models.Quote, error) {
	if startDate == "" || endDate == "" {
		return nil, ErrMissingDates
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	count, err := s.counter.CommittedCount(ctx, slug, startDate, endDate)
	if err != nil {
		return nil, err
	}

	base := PriceForQuantity(startDate, endDate, quantity, currency)
	eligible := IsEligible(startDate, s.now())

	var discount float64
	if eligible {
		discount = DiscountFor(quantity, count)
	}
	final := base - discount
	if final < 0 {
		final = 0
	}

	return &models.Quote{
		Slug:                    slug,
		StartDate:               startDate,
		EndDate:                 endDate,
		Quantity:                quantity,
		Currency:                currency,
		BasePrice:               base,
		EarlyBirdEligible:       eligible,
		EarlyBirdDiscount:       discount,
		FinalPrice:              final,
		ParticipantCount:        count,
		RemainingEarlyBirdSpots: RemainingSpots(count),
		WouldGetEarlyBird:       eligible && discount > 0,
	}, nil
}
