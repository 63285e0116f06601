package orders

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pharma-academy/backend/internal/models"
)

// Draft mutation errors.
var (
	ErrMissingSession = errors.New("session id is required")
	ErrUnknownField   = errors.New("field is not allowed")
	ErrBadValue       = errors.New("invalid value for field")
	ErrEventNotFound  = errors.New("event not found")
)

// textColumns maps allow-listed simple draft fields to their columns. Only
// names present here (or handled explicitly below) can be mutated through
// ApplyField; everything else is rejected without touching the draft.
var textColumns = map[string]string{
	"start_date": "start_date",
	"end_date":   "end_date",
	"currency":   "currency",
	"first_name": "first_name",
	"last_name":  "last_name",
	"email":      "email",
	"phone":      "phone",
	"company":    "company",
	"vat_number": "vat_number",
}

// addressFields are draft fields that merge into the address jsonb instead
// of owning a column of their own.
var addressFields = map[string]bool{
	"street":  true,
	"city":    true,
	"zip":     true,
	"country": true,
}

// EventSource looks up events for draft initialization.
type EventSource interface {
	GetBySlug(ctx context.Context, slug string) (*models.Event, error)
}

// Quoter derives a price for an event selection. Draft totals computed this
// way are optimistic display values; checkout re-derives the authoritative
// price.
type Quoter interface {
	Quote(ctx context.Context, slug, startDate, endDate string, quantity int, currency string) (*models.Quote, error)
}

// Store is the slice of the orders repository the draft state machine needs.
type Store interface {
	CreateOrReplaceDraft(ctx context.Context, o *models.Order) error
	UpdateDraftText(ctx context.Context, sessionID, column, value string) (uuid.UUID, error)
	UpdateDraftQuantity(ctx context.Context, sessionID string, quantity int) (uuid.UUID, error)
	MergeDraftAddress(ctx context.Context, sessionID string, patch map[string]string) (uuid.UUID, error)
	SetDraftParticipants(ctx context.Context, sessionID string, participants []models.Participant) (uuid.UUID, error)
}

// DraftService is the draft order state machine: a session-scoped cart
// mutated one field at a time. Writing "event_slug" initializes the draft;
// every other field is a narrow partial update requiring an existing draft.
type DraftService struct {
	store   Store
	events  EventSource
	pricing Quoter
	logger  *zap.Logger
}

// NewDraftService creates a draft order service.
func NewDraftService(store Store, events EventSource, pricing Quoter, logger *zap.Logger) *DraftService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftService{store: store, events: events, pricing: pricing, logger: logger}
}

// ApplyField applies one field update to the session's draft and returns the
// draft's order ID. Field updates are idempotent: the same field/value pair
// applied twice leaves the same stored state and never a second row.
func (s *DraftService) ApplyField(ctx context.Context, sessionID, field string, value json.RawMessage) (uuid.UUID, error) {
	if sessionID == "" {
		return uuid.Nil, ErrMissingSession
	}

	switch {
	case field == "event_slug":
		return s.initDraft(ctx, sessionID, value)

	case field == "quantity":
		var quantity int
		if err := json.Unmarshal(value, &quantity); err != nil || quantity < 1 {
			return uuid.Nil, ErrBadValue
		}
		return s.store.UpdateDraftQuantity(ctx, sessionID, quantity)

	case field == "participants":
		var participants []models.Participant
		if err := json.Unmarshal(value, &participants); err != nil {
			return uuid.Nil, ErrBadValue
		}
		return s.store.SetDraftParticipants(ctx, sessionID, participants)

	case addressFields[field]:
		var v string
		if err := json.Unmarshal(value, &v); err != nil {
			return uuid.Nil, ErrBadValue
		}
		return s.store.MergeDraftAddress(ctx, sessionID, map[string]string{field: v})

	default:
		column, ok := textColumns[field]
		if !ok {
			return uuid.Nil, ErrUnknownField
		}
		var v string
		if err := json.Unmarshal(value, &v); err != nil {
			return uuid.Nil, ErrBadValue
		}
		return s.store.UpdateDraftText(ctx, sessionID, column, v)
	}
}

// initDraft handles the event_slug write: look up the event, default to its
// first date range at quantity 1, price the selection and create or
// overwrite the session's draft.
func (s *DraftService) initDraft(ctx context.Context, sessionID string, value json.RawMessage) (uuid.UUID, error) {
	var slug string
	if err := json.Unmarshal(value, &slug); err != nil || slug == "" {
		return uuid.Nil, ErrBadValue
	}

	event, err := s.events.GetBySlug(ctx, slug)
	if err != nil {
		return uuid.Nil, err
	}
	if event == nil {
		return uuid.Nil, ErrEventNotFound
	}

	o := &models.Order{
		SessionID: sessionID,
		Status:    models.OrderStatusDraft,
		EventSlug: slug,
		Quantity:  1,
		Currency:  "EUR",
	}
	if len(event.DateRanges) > 0 {
		o.StartDate = event.DateRanges[0].StartDate
		o.EndDate = event.DateRanges[0].EndDate

		quote, err := s.pricing.Quote(ctx, slug, o.StartDate, o.EndDate, 1, o.Currency)
		if err != nil {
			// The draft total is display-only; a pricing failure must not
			// block draft creation.
			s.logger.Warn("default quote failed", zap.Error(err), zap.String("slug", slug))
		} else {
			o.TotalAmount = quote.FinalPrice
		}
	}

	if err := s.store.CreateOrReplaceDraft(ctx, o); err != nil {
		return uuid.Nil, err
	}
	return o.ID, nil
}
