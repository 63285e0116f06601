package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pharma-academy/backend/config"
	"github.com/pharma-academy/backend/internal/checkout"
)

// StripeGateway creates hosted Stripe Checkout sessions. It talks to the
// form-encoded REST API directly; only the session-creation surface is
// needed, payment confirmation arrives out of band.
type StripeGateway struct {
	cfg    config.StripeConfig
	client *http.Client
	logger *zap.Logger
}

// NewStripeGateway creates a Stripe payment gateway.
func NewStripeGateway(cfg config.StripeConfig, logger *zap.Logger) *StripeGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StripeGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

type stripeSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type stripeError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateSession creates a hosted checkout session and returns its redirect
// URL. Line amounts are VAT-inclusive and converted to minor units here.
func (g *StripeGateway) CreateSession(ctx context.Context, orderID uuid.UUID, customerEmail string, lines []checkout.SessionLine) (string, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("client_reference_id", orderID.String())
	form.Set("customer_email", customerEmail)
	form.Set("success_url", g.cfg.SuccessURL)
	form.Set("cancel_url", g.cfg.CancelURL)
	for i, line := range lines {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[quantity]", strconv.Itoa(line.Quantity))
		form.Set(prefix+"[price_data][currency]", strings.ToLower(line.Currency))
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(minorUnits(line.UnitAmount), 10))
		form.Set(prefix+"[price_data][product_data][name]", line.Name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.cfg.APIBaseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("stripe request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr stripeError
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		g.logger.Error("stripe session failed",
			zap.Int("status", resp.StatusCode), zap.String("message", apiErr.Error.Message))
		return "", fmt.Errorf("stripe session: status %d", resp.StatusCode)
	}

	var session stripeSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", fmt.Errorf("decode session: %w", err)
	}
	g.logger.Info("stripe session created",
		zap.String("session_id", session.ID), zap.String("order_id", orderID.String()))
	return session.URL, nil
}

func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
