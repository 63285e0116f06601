package orders

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharma-academy/backend/internal/models"
)

// fakeStore keeps at most one draft per session, like the partial unique
// index in Postgres does.
type fakeStore struct {
	drafts map[string]*models.Order
}

func newFakeStore() *fakeStore {
	return &fakeStore{drafts: map[string]*models.Order{}}
}

func (f *fakeStore) CreateOrReplaceDraft(ctx context.Context, o *models.Order) error {
	if existing, ok := f.drafts[o.SessionID]; ok {
		o.ID = existing.ID
	} else {
		o.ID = uuid.New()
	}
	clone := *o
	f.drafts[o.SessionID] = &clone
	return nil
}

func (f *fakeStore) draft(sessionID string) (*models.Order, error) {
	o, ok := f.drafts[sessionID]
	if !ok {
		return nil, ErrDraftNotFound
	}
	return o, nil
}

func (f *fakeStore) UpdateDraftText(ctx context.Context, sessionID, column, value string) (uuid.UUID, error) {
	o, err := f.draft(sessionID)
	if err != nil {
		return uuid.Nil, err
	}
	switch column {
	case "start_date":
		o.StartDate = value
	case "end_date":
		o.EndDate = value
	case "currency":
		o.Currency = value
	case "email":
		o.Email = value
	case "first_name":
		o.FirstName = value
	}
	return o.ID, nil
}

func (f *fakeStore) UpdateDraftQuantity(ctx context.Context, sessionID string, quantity int) (uuid.UUID, error) {
	o, err := f.draft(sessionID)
	if err != nil {
		return uuid.Nil, err
	}
	o.Quantity = quantity
	return o.ID, nil
}

func (f *fakeStore) MergeDraftAddress(ctx context.Context, sessionID string, patch map[string]string) (uuid.UUID, error) {
	o, err := f.draft(sessionID)
	if err != nil {
		return uuid.Nil, err
	}
	for k, v := range patch {
		switch k {
		case "street":
			o.Address.Street = v
		case "city":
			o.Address.City = v
		case "zip":
			o.Address.Zip = v
		case "country":
			o.Address.Country = v
		}
	}
	return o.ID, nil
}

func (f *fakeStore) SetDraftParticipants(ctx context.Context, sessionID string, participants []models.Participant) (uuid.UUID, error) {
	o, err := f.draft(sessionID)
	if err != nil {
		return uuid.Nil, err
	}
	o.Participants = participants
	return o.ID, nil
}

type fakeEvents struct {
	events map[string]*models.Event
}

func (f *fakeEvents) GetBySlug(ctx context.Context, slug string) (*models.Event, error) {
	return f.events[slug], nil
}

type fakeQuoter struct {
	finalPrice float64
	calls      []int
}

func (f *fakeQuoter) Quote(ctx context.Context, slug, start, end string, quantity int, currency string) (*models.Quote, error) {
	f.calls = append(f.calls, quantity)
	return &models.Quote{Slug: slug, StartDate: start, EndDate: end, Quantity: quantity, Currency: currency, FinalPrice: f.finalPrice}, nil
}

func raw(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func testEvent() *models.Event {
	return &models.Event{
		Slug:  "gmp-basics",
		Title: "GMP Basics",
		DateRanges: []models.DateRange{
			{StartDate: "2026-06-01", EndDate: "2026-06-03"},
			{StartDate: "2026-09-07", EndDate: "2026-09-09"},
		},
		Published: true,
	}
}

func newDraftService() (*DraftService, *fakeStore, *fakeQuoter) {
	store := newFakeStore()
	quoter := &fakeQuoter{finalPrice: 1390}
	events := &fakeEvents{events: map[string]*models.Event{"gmp-basics": testEvent()}}
	return NewDraftService(store, events, quoter, nil), store, quoter
}

func TestApplyFieldInitializesDraft(t *testing.T) {
	svc, store, quoter := newDraftService()

	id, err := svc.ApplyField(context.Background(), "sess-1", "event_slug", raw(t, "gmp-basics"))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	o := store.drafts["sess-1"]
	require.NotNil(t, o)
	assert.Equal(t, models.OrderStatusDraft, o.Status)
	assert.Equal(t, "gmp-basics", o.EventSlug)
	assert.Equal(t, "2026-06-01", o.StartDate, "defaults to first date range")
	assert.Equal(t, "2026-06-03", o.EndDate)
	assert.Equal(t, 1, o.Quantity)
	assert.Equal(t, "EUR", o.Currency)
	assert.Equal(t, float64(1390), o.TotalAmount)
	assert.Equal(t, []int{1}, quoter.calls, "default quote at quantity 1")
}

func TestApplyFieldInitIsIdempotent(t *testing.T) {
	svc, store, _ := newDraftService()

	first, err := svc.ApplyField(context.Background(), "sess-1", "event_slug", raw(t, "gmp-basics"))
	require.NoError(t, err)
	second, err := svc.ApplyField(context.Background(), "sess-1", "event_slug", raw(t, "gmp-basics"))
	require.NoError(t, err)

	assert.Equal(t, first, second, "same session keeps the same draft row")
	assert.Len(t, store.drafts, 1)
}

func TestApplyFieldUnknownEvent(t *testing.T) {
	svc, _, _ := newDraftService()
	_, err := svc.ApplyField(context.Background(), "sess-1", "event_slug", raw(t, "nope"))
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestApplyFieldRequiresSession(t *testing.T) {
	svc, _, _ := newDraftService()
	_, err := svc.ApplyField(context.Background(), "", "quantity", raw(t, 2))
	assert.ErrorIs(t, err, ErrMissingSession)
}

func TestApplyFieldRejectsUnknownField(t *testing.T) {
	svc, _, _ := newDraftService()
	_, _ = svc.ApplyField(context.Background(), "sess-1", "event_slug", raw(t, "gmp-basics"))

	_, err := svc.ApplyField(context.Background(), "sess-1", "total_amount", raw(t, 1))
	assert.ErrorIs(t, err, ErrUnknownField)
	_, err = svc.ApplyField(context.Background(), "sess-1", "status", raw(t, "paid"))
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestApplyFieldWithoutDraft(t *testing.T) {
	svc, _, _ := newDraftService()
	_, err := svc.ApplyField(context.Background(), "sess-1", "quantity", raw(t, 2))
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestApplyFieldQuantityValidation(t *testing.T) {
	svc, store, _ := newDraftService()
	_, _ = svc.ApplyField(context.Background(), "sess-1", "event_slug", raw(t, "gmp-basics"))

	_, err := svc.ApplyField(context.Background(), "sess-1", "quantity", raw(t, 0))
	assert.ErrorIs(t, err, ErrBadValue)
	_, err = svc.ApplyField(context.Background(), "sess-1", "quantity", raw(t, "two"))
	assert.ErrorIs(t, err, ErrBadValue)

	_, err = svc.ApplyField(context.Background(), "sess-1", "quantity", raw(t, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, store.drafts["sess-1"].Quantity)
}

func TestApplyFieldDateOverridesAreIndependent(t *testing.T) {
	svc, store, _ := newDraftService()
	_, _ = svc.ApplyField(context.Background(), "sess-1", "event_slug", raw(t, "gmp-basics"))
	_, _ = svc.ApplyField(context.Background(), "sess-1", "quantity", raw(t, 2))

	// Switching to the second date range leaves the quantity alone.
	_, err := svc.ApplyField(context.Background(), "sess-1", "start_date", raw(t, "2026-09-07"))
	require.NoError(t, err)
	_, err = svc.ApplyField(context.Background(), "sess-1", "end_date", raw(t, "2026-09-09"))
	require.NoError(t, err)

	o := store.drafts["sess-1"]
	assert.Equal(t, "2026-09-07", o.StartDate)
	assert.Equal(t, "2026-09-09", o.EndDate)
	assert.Equal(t, 2, o.Quantity)
}

func TestApplyFieldAddressMerges(t *testing.T) {
	svc, store, _ := newDraftService()
	_, _ = svc.ApplyField(context.Background(), "sess-1", "event_slug", raw(t, "gmp-basics"))

	_, err := svc.ApplyField(context.Background(), "sess-1", "street", raw(t, "Hauptstrasse 1"))
	require.NoError(t, err)
	_, err = svc.ApplyField(context.Background(), "sess-1", "city", raw(t, "Vienna"))
	require.NoError(t, err)
	_, err = svc.ApplyField(context.Background(), "sess-1", "country", raw(t, "AT"))
	require.NoError(t, err)

	addr := store.drafts["sess-1"].Address
	assert.Equal(t, "Hauptstrasse 1", addr.Street, "earlier sub-fields survive later merges")
	assert.Equal(t, "Vienna", addr.City)
	assert.Equal(t, "AT", addr.Country)
}

func TestApplyFieldParticipants(t *testing.T) {
	svc, store, _ := newDraftService()
	_, _ = svc.ApplyField(context.Background(), "sess-1", "event_slug", raw(t, "gmp-basics"))

	participants := []models.Participant{
		{Name: "Ana Novak", Email: "ana@example.com", JobPosition: "QA Lead"},
		{Name: "Jan Kovac", Email: "jan@example.com"},
	}
	_, err := svc.ApplyField(context.Background(), "sess-1", "participants", raw(t, participants))
	require.NoError(t, err)
	assert.Equal(t, participants, store.drafts["sess-1"].Participants)

	_, err = svc.ApplyField(context.Background(), "sess-1", "participants", raw(t, "not a list"))
	assert.ErrorIs(t, err, ErrBadValue)
}
