package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/pharma-academy/backend/config"
	"github.com/pharma-academy/backend/internal/models"
	"github.com/pharma-academy/backend/pkg/queue"
)

// Notifier fans out best-effort notifications to the job queue: customer and
// sales emails plus CRM webhooks. Every failure is logged and swallowed here;
// a notification can never fail the operation that triggered it.
type Notifier struct {
	queue  *queue.Queue
	email  config.EmailConfig
	cfg    config.NotifyConfig
	logger *zap.Logger
}

// NewNotifier creates a notifier.
func NewNotifier(q *queue.Queue, email config.EmailConfig, cfg config.NotifyConfig, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{queue: q, email: email, cfg: cfg, logger: logger}
}

// OrderConfirmed queues the order confirmation email for the customer, a
// copy for the sales inbox and the CRM webhook.
func (n *Notifier) OrderConfirmed(ctx context.Context, order *models.Order) {
	subject := fmt.Sprintf("Registration received: %s (%s - %s)", order.EventSlug, order.StartDate, order.EndDate)
	body := fmt.Sprintf(
		"Hello %s,\n\nwe received your registration for %s (%s - %s), %d participant(s).\nTotal: %.2f %s, payment method: %s.\n\nYou will hear from us once the payment is confirmed.\n",
		order.FirstName, order.EventSlug, order.StartDate, order.EndDate,
		order.Quantity, order.TotalAmount, order.Currency, order.PaymentMethod)

	if order.Email != "" {
		n.enqueueEmail(ctx, queue.EmailPayload{To: order.Email, Subject: subject, BodyText: body})
	}
	if n.email.SalesInbox != "" {
		n.enqueueEmail(ctx, queue.EmailPayload{To: n.email.SalesInbox, Subject: "[sales] " + subject, BodyText: body})
	}
	n.enqueueWebhook(ctx, n.cfg.OrderWebhookURL, order)
}

// AgendaRequest is a marketing-form submission asking for a course agenda.
type AgendaRequest struct {
	EventSlug string `json:"event_slug"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Company   string `json:"company,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// AgendaRequested queues the sales notification and the CRM webhook for an
// agenda request.
func (n *Notifier) AgendaRequested(ctx context.Context, req *AgendaRequest) {
	if n.email.SalesInbox != "" {
		n.enqueueEmail(ctx, queue.EmailPayload{
			To:       n.email.SalesInbox,
			Subject:  "Agenda request: " + req.EventSlug,
			BodyText: fmt.Sprintf("Agenda requested for %s.\n\nName: %s\nEmail: %s\nCompany: %s\nPhone: %s\n",
				req.EventSlug, req.Name, req.Email, req.Company, req.Phone),
		})
	}
	n.enqueueWebhook(ctx, n.cfg.AgendaWebhookURL, req)
}

func (n *Notifier) enqueueEmail(ctx context.Context, payload queue.EmailPayload) {
	if err := n.queue.EnqueueEmail(ctx, payload); err != nil {
		n.logger.Warn("email enqueue failed", zap.Error(err), zap.String("to", payload.To))
	}
}

func (n *Notifier) enqueueWebhook(ctx context.Context, url string, body interface{}) {
	if url == "" {
		return
	}
	raw, err := json.Marshal(body)
	if err != nil {
		n.logger.Warn("webhook payload marshal failed", zap.Error(err))
		return
	}
	if err := n.queue.EnqueueWebhook(ctx, queue.WebhookPayload{URL: url, Body: raw}); err != nil {
		n.logger.Warn("webhook enqueue failed", zap.Error(err), zap.String("url", url))
	}
}
