package invoicing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pharma-academy/backend/config"
	"github.com/pharma-academy/backend/internal/checkout"
)

const (
	countriesCacheKey = "invoicing:countries"
	countriesCacheTTL = 24 * time.Hour
)

// VAT rate types understood by the invoicing API.
const (
	vatRateTypeZero  = 0
	vatRateTypeBasic = 1
)

// Client talks to the invoicing API: billing contacts, draft invoice
// documents and the country codebook used for EU VAT decisions. It
// implements both checkout.InvoicingGateway and checkout.CountryResolver.
type Client struct {
	cfg    config.InvoicingConfig
	http   *http.Client
	redis  *goredis.Client
	logger *zap.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates an invoicing API client. redis is optional; without it
// the country codebook is fetched on every lookup.
func NewClient(cfg config.InvoicingConfig, redis *goredis.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 15 * time.Second},
		redis:  redis,
		logger: logger,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// token returns a valid access token, refreshing via the OAuth
// client-credentials flow when the cached one is near expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-30*time.Second)) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("scope", "idoklad_api")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request: status %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

// do issues an authenticated JSON request and decodes the response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.APIBaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("invoicing request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("invoicing request %s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Country is one codebook entry.
type Country struct {
	ID         int    `json:"Id"`
	Code       string `json:"Code"`
	Name       string `json:"Name"`
	IsEUMember bool   `json:"IsEuMember"`
}

type countriesResponse struct {
	Items []Country `json:"Items"`
}

// countries returns the country codebook, from Redis when fresh.
func (c *Client) countries(ctx context.Context) ([]Country, error) {
	if c.redis != nil {
		if cached, err := c.redis.Get(ctx, countriesCacheKey).Bytes(); err == nil {
			var list []Country
			if err := json.Unmarshal(cached, &list); err == nil {
				return list, nil
			}
		}
	}

	var resp countriesResponse
	if err := c.do(ctx, http.MethodGet, "/Countries", nil, &resp); err != nil {
		return nil, err
	}

	if c.redis != nil {
		if raw, err := json.Marshal(resp.Items); err == nil {
			if err := c.redis.Set(ctx, countriesCacheKey, raw, countriesCacheTTL).Err(); err != nil {
				c.logger.Warn("country codebook cache write failed", zap.Error(err))
			}
		}
	}
	return resp.Items, nil
}

// IsEUMember reports EU membership for a country code. Unknown codes are
// non-EU; only a codebook fetch failure is an error.
func (c *Client) IsEUMember(ctx context.Context, countryCode string) (bool, error) {
	list, err := c.countries(ctx)
	if err != nil {
		return false, err
	}
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	for _, country := range list {
		if strings.ToUpper(country.Code) == code {
			return country.IsEUMember, nil
		}
	}
	return false, nil
}

type contact struct {
	ID          json.Number `json:"Id"`
	CompanyName string      `json:"CompanyName"`
	Email       string      `json:"Email"`
}

type contactsResponse struct {
	Items []contact `json:"Items"`
}

// ResolveContact finds the billing contact by email or creates it.
func (c *Client) ResolveContact(ctx context.Context, in checkout.Contact) (string, error) {
	filter := url.QueryEscape(fmt.Sprintf("Email~eq~%s", in.Email))
	var existing contactsResponse
	if err := c.do(ctx, http.MethodGet, "/Contacts?filter="+filter, nil, &existing); err != nil {
		return "", fmt.Errorf("search contact: %w", err)
	}
	if len(existing.Items) > 0 {
		return existing.Items[0].ID.String(), nil
	}

	companyName := in.Company
	if companyName == "" {
		companyName = strings.TrimSpace(in.FirstName + " " + in.LastName)
	}
	body := map[string]interface{}{
		"CompanyName":             companyName,
		"Firstname":               in.FirstName,
		"Surname":                 in.LastName,
		"Email":                   in.Email,
		"Street":                  in.Street,
		"City":                    in.City,
		"PostalCode":              in.Zip,
		"CountryCode":             strings.ToUpper(in.Country),
		"VatIdentificationNumber": in.VATNumber,
	}
	var created contact
	if err := c.do(ctx, http.MethodPost, "/Contacts", body, &created); err != nil {
		return "", fmt.Errorf("create contact: %w", err)
	}
	return created.ID.String(), nil
}

type invoiceResponse struct {
	ID             json.Number `json:"Id"`
	DocumentNumber string      `json:"DocumentNumber"`
}

// CreateInvoice creates a draft issued invoice. Line VAT rate types are
// chosen per line from the rate checkout computed (basic for EU, zero
// otherwise).
func (c *Client) CreateInvoice(ctx context.Context, contactID, currency string, lines []checkout.InvoiceLine) (*checkout.Invoice, error) {
	partnerID, err := strconv.ParseInt(contactID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid contact id %q: %w", contactID, err)
	}

	items := make([]map[string]interface{}, 0, len(lines))
	for _, line := range lines {
		rateType := vatRateTypeZero
		if line.VATRate > 0 {
			rateType = vatRateTypeBasic
		}
		items = append(items, map[string]interface{}{
			"Name":        line.Description,
			"Amount":      line.Quantity,
			"UnitPrice":   line.UnitAmount,
			"VatRateType": rateType,
		})
	}
	body := map[string]interface{}{
		"PartnerId":    partnerID,
		"CurrencyCode": strings.ToUpper(currency),
		"Items":        items,
	}

	var created invoiceResponse
	if err := c.do(ctx, http.MethodPost, "/IssuedInvoices", body, &created); err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	id := created.ID.String()
	return &checkout.Invoice{
		ID:     id,
		Number: created.DocumentNumber,
		PDFURL: c.cfg.APIBaseURL + "/IssuedInvoices/" + id + "/pdf",
	}, nil
}
