package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pharma-academy/backend/internal/models"
)

// Checkout errors.
var (
	ErrDraftNotFound = errors.New("no draft order for session")
	ErrNoItems       = errors.New("at least one item is required")
	ErrBadMethod     = errors.New("unsupported payment method")
)

// Quoter re-derives the authoritative price for an item. Client-supplied
// prices are never trusted.
type Quoter interface {
	Quote(ctx context.Context, slug, startDate, endDate string, quantity int, currency string) (*models.Quote, error)
}

// OrderStore is the slice of the orders repository checkout needs.
type OrderStore interface {
	GetDraftBySession(ctx context.Context, sessionID string) (*models.Order, error)
	UpdateCheckout(ctx context.Context, o *models.Order) error
	Transition(ctx context.Context, id uuid.UUID, from []string, to string) error
}

// SessionLine is one line of a hosted payment session. UnitAmount is
// VAT-inclusive.
type SessionLine struct {
	Name       string
	Quantity   int
	UnitAmount float64
	Currency   string
}

// PaymentGateway creates hosted payment sessions (card path).
type PaymentGateway interface {
	CreateSession(ctx context.Context, orderID uuid.UUID, customerEmail string, lines []SessionLine) (url string, err error)
}

// Contact identifies a billing contact in the invoicing system.
type Contact struct {
	Company   string
	FirstName string
	LastName  string
	Email     string
	Street    string
	City      string
	Zip       string
	Country   string
	VATNumber string
}

// InvoiceLine is one line of a draft invoice. UnitAmount is VAT-exclusive;
// VATRate selects the rate type per line.
type InvoiceLine struct {
	Description string
	Quantity    int
	UnitAmount  float64
	VATRate     float64
}

// Invoice is the created invoicing-system document.
type Invoice struct {
	ID     string
	Number string
	PDFURL string
}

// InvoicingGateway resolves contacts and creates draft invoices (bank
// transfer path).
type InvoicingGateway interface {
	ResolveContact(ctx context.Context, contact Contact) (contactID string, err error)
	CreateInvoice(ctx context.Context, contactID, currency string, lines []InvoiceLine) (*Invoice, error)
}

// CountryResolver answers EU membership for a country code, backed by the
// invoicing system's country codebook.
type CountryResolver interface {
	IsEUMember(ctx context.Context, countryCode string) (bool, error)
}

// Notifier delivers best-effort notifications. Implementations swallow their
// own failures; nothing here may fail a checkout.
type Notifier interface {
	OrderConfirmed(ctx context.Context, order *models.Order)
}

// Item is one event registration being checked out.
type Item struct {
	Slug      string `json:"slug" binding:"required"`
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Title     string `json:"title"`
}

// Request is a finalized checkout submission.
type Request struct {
	SessionID     string               `json:"sessionId" binding:"required"`
	PaymentMethod string               `json:"paymentMethod" binding:"required"`
	Currency      string               `json:"currency"`
	Items         []Item               `json:"items" binding:"required,dive"`
	FirstName     string               `json:"firstName" binding:"required"`
	LastName      string               `json:"lastName" binding:"required"`
	Email         string               `json:"email" binding:"required,email"`
	Phone         string               `json:"phone"`
	Company       string               `json:"company"`
	VATNumber     string               `json:"vatNumber"`
	Address       models.Address       `json:"address"`
	Participants  []models.Participant `json:"participants"`
}

// Result is the outcome of a dispatched checkout.
type Result struct {
	OrderID       uuid.UUID `json:"order_id"`
	URL           string    `json:"url,omitempty"`
	InvoiceID     string    `json:"invoice_id,omitempty"`
	InvoiceNumber string    `json:"invoice_number,omitempty"`
	InvoicePDFURL string    `json:"invoice_pdf_url,omitempty"`
}

// Service is the checkout dispatcher: re-verifies pricing server-side,
// attaches country-conditional VAT and branches to the payment processor or
// the invoicing system.
type Service struct {
	orders    OrderStore
	quoter    Quoter
	payments  PaymentGateway
	invoicing InvoicingGateway
	countries CountryResolver
	notifier  Notifier
	logger    *zap.Logger
}

// NewService creates a checkout service.
func NewService(orders OrderStore, quoter Quoter, payments PaymentGateway, invoicing InvoicingGateway, countries CountryResolver, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		orders:    orders,
		quoter:    quoter,
		payments:  payments,
		invoicing: invoicing,
		countries: countries,
		notifier:  notifier,
		logger:    logger,
	}
}

// Checkout dispatches a finalized draft. The draft's optimistic total is
// discarded: every item is re-quoted against current capacity before money
// amounts leave the server.
func (s *Service) Checkout(ctx context.Context, req *Request) (*Result, error) {
	if len(req.Items) == 0 {
		return nil, ErrNoItems
	}
	if req.PaymentMethod != models.PaymentMethodCard && req.PaymentMethod != models.PaymentMethodInvoice {
		return nil, ErrBadMethod
	}

	order, err := s.orders.GetDraftBySession(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	if order == nil {
		return nil, ErrDraftNotFound
	}

	currency := req.Currency
	if currency == "" {
		currency = order.Currency
	}
	vatRate := s.vatRateFor(ctx, req.Address.Country)

	var total float64
	quotes := make([]*models.Quote, 0, len(req.Items))
	for _, item := range req.Items {
		quote, err := s.quoter.Quote(ctx, item.Slug, item.StartDate, item.EndDate, item.Quantity, currency)
		if err != nil {
			return nil, fmt.Errorf("quote %s: %w", item.Slug, err)
		}
		quotes = append(quotes, quote)
		total += withVAT(quote.FinalPrice, vatRate)
	}

	order.FirstName = req.FirstName
	order.LastName = req.LastName
	order.Email = req.Email
	order.Phone = req.Phone
	order.Company = req.Company
	order.VATNumber = req.VATNumber
	order.Address = req.Address
	order.Participants = req.Participants
	order.PaymentMethod = req.PaymentMethod
	order.TotalAmount = round2(total)

	var result *Result
	switch req.PaymentMethod {
	case models.PaymentMethodCard:
		result, err = s.cardCheckout(ctx, order, req, quotes, vatRate, currency)
	case models.PaymentMethodInvoice:
		result, err = s.invoiceCheckout(ctx, order, req, quotes, vatRate, currency)
	}
	if err != nil {
		return nil, err
	}

	if err := s.orders.UpdateCheckout(ctx, order); err != nil {
		return nil, fmt.Errorf("store checkout result: %w", err)
	}
	targetStatus := models.OrderStatusPending
	if req.PaymentMethod == models.PaymentMethodInvoice {
		targetStatus = models.OrderStatusPendingInvoice
	}
	if err := s.orders.Transition(ctx, order.ID, []string{models.OrderStatusDraft}, targetStatus); err != nil {
		return nil, fmt.Errorf("transition order: %w", err)
	}
	order.Status = targetStatus

	// Best effort only; the notifier handles its own failures.
	s.notifier.OrderConfirmed(ctx, order)

	result.OrderID = order.ID
	return result, nil
}

func (s *Service) cardCheckout(ctx context.Context, order *models.Order, req *Request, quotes []*models.Quote, vatRate float64, currency string) (*Result, error) {
	lines := make([]SessionLine, 0, len(quotes))
	for i, quote := range quotes {
		lines = append(lines, SessionLine{
			Name:       lineName(req.Items[i], quote),
			Quantity:   1,
			UnitAmount: withVAT(quote.FinalPrice, vatRate),
			Currency:   currency,
		})
	}
	url, err := s.payments.CreateSession(ctx, order.ID, req.Email, lines)
	if err != nil {
		return nil, fmt.Errorf("create payment session: %w", err)
	}
	return &Result{URL: url}, nil
}

func (s *Service) invoiceCheckout(ctx context.Context, order *models.Order, req *Request, quotes []*models.Quote, vatRate float64, currency string) (*Result, error) {
	contactID, err := s.invoicing.ResolveContact(ctx, Contact{
		Company:   req.Company,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Street:    req.Address.Street,
		City:      req.Address.City,
		Zip:       req.Address.Zip,
		Country:   req.Address.Country,
		VATNumber: req.VATNumber,
	})
	if err != nil {
		return nil, fmt.Errorf("resolve contact: %w", err)
	}

	lines := make([]InvoiceLine, 0, len(quotes))
	for i, quote := range quotes {
		lines = append(lines, InvoiceLine{
			Description: lineName(req.Items[i], quote),
			Quantity:    1,
			UnitAmount:  quote.FinalPrice,
			VATRate:     vatRate,
		})
	}
	invoice, err := s.invoicing.CreateInvoice(ctx, contactID, currency, lines)
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	order.InvoiceNumber = invoice.Number
	return &Result{InvoiceID: invoice.ID, InvoiceNumber: invoice.Number, InvoicePDFURL: invoice.PDFURL}, nil
}

// lineName labels a payment or invoice line. Group pricing is not linear per
// seat, so each item is one line carrying its full quoted amount.
func lineName(item Item, quote *models.Quote) string {
	name := item.Title
	if name == "" {
		name = item.Slug
	}
	return fmt.Sprintf("%s (%s - %s, %d participant(s))", name, quote.StartDate, quote.EndDate, quote.Quantity)
}

func withVAT(amount, rate float64) float64 {
	return round2(amount * (1 + rate/100))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
