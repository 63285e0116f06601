package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharma-academy/backend/internal/models"
)

type fakeOrderStore struct {
	draft       *models.Order
	updated     *models.Order
	transitions []string
}

func (f *fakeOrderStore) GetDraftBySession(ctx context.Context, sessionID string) (*models.Order, error) {
	return f.draft, nil
}

func (f *fakeOrderStore) UpdateCheckout(ctx context.Context, o *models.Order) error {
	clone := *o
	f.updated = &clone
	return nil
}

func (f *fakeOrderStore) Transition(ctx context.Context, id uuid.UUID, from []string, to string) error {
	f.transitions = append(f.transitions, to)
	return nil
}

type stubQuoter struct {
	finalPrice float64
}

func (s *stubQuoter) Quote(ctx context.Context, slug, start, end string, quantity int, currency string) (*models.Quote, error) {
	return &models.Quote{
		Slug: slug, StartDate: start, EndDate: end, Quantity: quantity, Currency: currency,
		BasePrice: s.finalPrice, FinalPrice: s.finalPrice,
	}, nil
}

type fakePayments struct {
	lines []SessionLine
	url   string
	err   error
}

func (f *fakePayments) CreateSession(ctx context.Context, orderID uuid.UUID, email string, lines []SessionLine) (string, error) {
	f.lines = lines
	return f.url, f.err
}

type fakeInvoicing struct {
	contact Contact
	lines   []InvoiceLine
	invoice *Invoice
	err     error
}

func (f *fakeInvoicing) ResolveContact(ctx context.Context, contact Contact) (string, error) {
	f.contact = contact
	return "contact-1", nil
}

func (f *fakeInvoicing) CreateInvoice(ctx context.Context, contactID, currency string, lines []InvoiceLine) (*Invoice, error) {
	f.lines = lines
	return f.invoice, f.err
}

type fakeCountries struct {
	eu     map[string]bool
	err    error
	called bool
}

func (f *fakeCountries) IsEUMember(ctx context.Context, code string) (bool, error) {
	f.called = true
	if f.err != nil {
		return false, f.err
	}
	return f.eu[code], nil
}

type fakeNotifier struct {
	orders []*models.Order
}

func (f *fakeNotifier) OrderConfirmed(ctx context.Context, order *models.Order) {
	f.orders = append(f.orders, order)
}

type fixture struct {
	service   *Service
	store     *fakeOrderStore
	payments  *fakePayments
	invoicing *fakeInvoicing
	countries *fakeCountries
	notifier  *fakeNotifier
}

func newFixture() *fixture {
	f := &fixture{
		store: &fakeOrderStore{draft: &models.Order{
			ID: uuid.New(), SessionID: "sess-1", Status: models.OrderStatusDraft,
			EventSlug: "gmp-basics", StartDate: "2026-06-01", EndDate: "2026-06-03",
			Quantity: 1, Currency: "EUR", TotalAmount: 999, // stale optimistic total
		}},
		payments:  &fakePayments{url: "https://pay.example/session/cs_123"},
		invoicing: &fakeInvoicing{invoice: &Invoice{ID: "inv-1", Number: "2026-0042", PDFURL: "https://inv.example/inv-1.pdf"}},
		countries: &fakeCountries{eu: map[string]bool{"AT": true, "DE": true}},
		notifier:  &fakeNotifier{},
	}
	f.service = NewService(f.store, &stubQuoter{finalPrice: 1390}, f.payments, f.invoicing, f.countries, f.notifier, nil)
	return f
}

func baseRequest(method string) *Request {
	return &Request{
		SessionID:     "sess-1",
		PaymentMethod: method,
		Currency:      "EUR",
		Items: []Item{
			{Slug: "gmp-basics", StartDate: "2026-06-01", EndDate: "2026-06-03", Quantity: 1, Title: "GMP Basics"},
		},
		FirstName: "Ana", LastName: "Novak", Email: "ana@example.com",
		Address: models.Address{Street: "Hauptstrasse 1", City: "Vienna", Zip: "1010", Country: "AT"},
	}
}

func TestCheckoutCardWithEUVAT(t *testing.T) {
	f := newFixture()
	result, err := f.service.Checkout(context.Background(), baseRequest("card"))
	require.NoError(t, err)

	assert.Equal(t, "https://pay.example/session/cs_123", result.URL)
	assert.Equal(t, f.store.draft.ID, result.OrderID)
	assert.Equal(t, []string{models.OrderStatusPending}, f.store.transitions)

	// 1390 + 20% VAT, server-derived; the stale draft total is discarded.
	require.Len(t, f.payments.lines, 1)
	assert.Equal(t, 1668.0, f.payments.lines[0].UnitAmount)
	require.NotNil(t, f.store.updated)
	assert.Equal(t, 1668.0, f.store.updated.TotalAmount)
	assert.Equal(t, "Ana", f.store.updated.FirstName)

	require.Len(t, f.notifier.orders, 1)
	assert.Equal(t, models.OrderStatusPending, f.notifier.orders[0].Status)
}

func TestCheckoutCardNonEU(t *testing.T) {
	f := newFixture()
	req := baseRequest("card")
	req.Address.Country = "CH"
	_, err := f.service.Checkout(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1390.0, f.payments.lines[0].UnitAmount, "no VAT outside the EU")
}

func TestCheckoutVATFallbacks(t *testing.T) {
	t.Run("missing country skips the lookup", func(t *testing.T) {
		f := newFixture()
		req := baseRequest("card")
		req.Address.Country = ""
		_, err := f.service.Checkout(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, f.countries.called)
		assert.Equal(t, 1390.0, f.payments.lines[0].UnitAmount)
	})

	t.Run("lookup failure defaults to non-EU", func(t *testing.T) {
		f := newFixture()
		f.countries.err = errors.New("codebook unavailable")
		_, err := f.service.Checkout(context.Background(), baseRequest("card"))
		require.NoError(t, err, "a broken lookup must not fail checkout")
		assert.Equal(t, 1390.0, f.payments.lines[0].UnitAmount)
	})
}

func TestCheckoutInvoice(t *testing.T) {
	f := newFixture()
	result, err := f.service.Checkout(context.Background(), baseRequest("invoice"))
	require.NoError(t, err)

	assert.Equal(t, "2026-0042", result.InvoiceNumber)
	assert.Equal(t, "https://inv.example/inv-1.pdf", result.InvoicePDFURL)
	assert.Empty(t, result.URL)
	assert.Equal(t, []string{models.OrderStatusPendingInvoice}, f.store.transitions)
	assert.Equal(t, "2026-0042", f.store.updated.InvoiceNumber)

	// Invoice lines are VAT-exclusive with the rate attached per line.
	require.Len(t, f.invoicing.lines, 1)
	assert.Equal(t, 1390.0, f.invoicing.lines[0].UnitAmount)
	assert.Equal(t, 20.0, f.invoicing.lines[0].VATRate)
	assert.Equal(t, "AT", f.invoicing.contact.Country)
}

func TestCheckoutPaymentFailureLeavesDraft(t *testing.T) {
	f := newFixture()
	f.payments.err = errors.New("gateway down")
	_, err := f.service.Checkout(context.Background(), baseRequest("card"))
	require.Error(t, err)
	assert.Empty(t, f.store.transitions, "order stays draft on payment failure")
	assert.Empty(t, f.notifier.orders)
}

func TestCheckoutValidation(t *testing.T) {
	f := newFixture()

	req := baseRequest("card")
	req.Items = nil
	_, err := f.service.Checkout(context.Background(), req)
	assert.ErrorIs(t, err, ErrNoItems)

	req = baseRequest("paypal")
	_, err = f.service.Checkout(context.Background(), req)
	assert.ErrorIs(t, err, ErrBadMethod)

	f.store.draft = nil
	_, err = f.service.Checkout(context.Background(), baseRequest("card"))
	assert.ErrorIs(t, err, ErrDraftNotFound)
}
