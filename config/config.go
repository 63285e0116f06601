package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Stripe    StripeConfig
	Invoicing InvoicingConfig
	Email     EmailConfig
	Notify    NotifyConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
	PublicBaseURL      string // used for payment success/cancel redirect URLs
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/academy?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// StripeConfig holds hosted checkout-session API credentials.
type StripeConfig struct {
	SecretKey  string
	APIBaseURL string
	SuccessURL string
	CancelURL  string
}

// InvoicingConfig holds the invoicing API (contacts, invoices, country
// codebook) credentials. OAuth client-credentials flow.
type InvoicingConfig struct {
	APIBaseURL   string
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// EmailConfig holds SMTP settings for transactional mail.
type EmailConfig struct {
	FromAddress string
	FromName    string
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
	SalesInbox  string // internal recipient for order/agenda notifications
}

// NotifyConfig holds best-effort CRM webhook targets.
type NotifyConfig struct {
	OrderWebhookURL  string
	AgendaWebhookURL string
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			PublicBaseURL:      strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", "postgres://localhost:5432/academy?sslmode=disable"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "academy"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Stripe: StripeConfig{
			SecretKey:  getEnv("STRIPE_SECRET_KEY", ""),
			APIBaseURL: getEnv("STRIPE_API_BASE_URL", "https://api.stripe.com"),
			SuccessURL: getEnv("STRIPE_SUCCESS_URL", ""),
			CancelURL:  getEnv("STRIPE_CANCEL_URL", ""),
		},
		Invoicing: InvoicingConfig{
			APIBaseURL:   getEnv("INVOICING_API_BASE_URL", "https://api.idoklad.cz/v3"),
			TokenURL:     getEnv("INVOICING_TOKEN_URL", "https://identity.idoklad.cz/server/connect/token"),
			ClientID:     getEnv("INVOICING_CLIENT_ID", ""),
			ClientSecret: getEnv("INVOICING_CLIENT_SECRET", ""),
		},
		Email: EmailConfig{
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", "noreply@example.com"),
			FromName:    getEnv("EMAIL_FROM_NAME", "Pharma Academy"),
			SMTPHost:    getEnv("SMTP_HOST", ""),
			SMTPPort:    getEnvInt("SMTP_PORT", 587),
			SMTPUser:    getEnv("SMTP_USER", ""),
			SMTPPass:    getEnv("SMTP_PASS", ""),
			SalesInbox:  getEnv("SALES_INBOX", ""),
		},
		Notify: NotifyConfig{
			OrderWebhookURL:  getEnv("ORDER_WEBHOOK_URL", ""),
			AgendaWebhookURL: getEnv("AGENDA_WEBHOOK_URL", ""),
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
