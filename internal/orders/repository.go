package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharma-academy/backend/internal/models"
)

// Repository errors.
var (
	ErrDraftNotFound = errors.New("no draft order for session")
	ErrBadTransition = errors.New("order status transition not allowed")
)

// Repository handles order persistence. A session has at most one draft
// order (enforced by a partial unique index); committed-participant counts
// scope by exact (event_slug, start_date, end_date) string equality.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an orders repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const orderColumns = `id, session_id, status, event_slug, start_date, end_date, quantity, currency,
	total_amount, first_name, last_name, email, phone, company, vat_number,
	address, participants, payment_method, invoice_number, created_at, updated_at`

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	var address, participants []byte
	err := row.Scan(&o.ID, &o.SessionID, &o.Status, &o.EventSlug, &o.StartDate, &o.EndDate, &o.Quantity, &o.Currency,
		&o.TotalAmount, &o.FirstName, &o.LastName, &o.Email, &o.Phone, &o.Company, &o.VATNumber,
		&address, &participants, &o.PaymentMethod, &o.InvoiceNumber, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(address) > 0 {
		if err := json.Unmarshal(address, &o.Address); err != nil {
			return nil, fmt.Errorf("unmarshal address: %w", err)
		}
	}
	if len(participants) > 0 {
		if err := json.Unmarshal(participants, &o.Participants); err != nil {
			return nil, fmt.Errorf("unmarshal participants: %w", err)
		}
	}
	return &o, nil
}

// CreateOrReplaceDraft creates the draft order for a session, or overwrites
// the event selection of the existing one. Contact fields already entered
// by the visitor survive an event change.
func (r *Repository) CreateOrReplaceDraft(ctx context.Context, o *models.Order) error {
	const q = `INSERT INTO orders (id, session_id, status, event_slug, start_date, end_date, quantity, currency, total_amount)
		VALUES (gen_random_uuid(), $1, 'draft', $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id) WHERE status = 'draft' DO UPDATE SET
			event_slug = EXCLUDED.event_slug, start_date = EXCLUDED.start_date, end_date = EXCLUDED.end_date,
			quantity = EXCLUDED.quantity, currency = EXCLUDED.currency, total_amount = EXCLUDED.total_amount,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, o.SessionID, o.EventSlug, o.StartDate, o.EndDate, o.Quantity, o.Currency, o.TotalAmount).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

// GetDraftBySession returns the draft order for a session, or nil when none.
func (r *Repository) GetDraftBySession(ctx context.Context, sessionID string) (*models.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE session_id = $1 AND status = 'draft'`
	o, err := scanOrder(r.pool.QueryRow(ctx, q, sessionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return o, err
}

// GetByID returns an order by ID, or nil when unknown.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return o, err
}

// CommittedCount sums quantities of paid and pending orders for one exact
// date range instance. Draft and abandoned orders never count.
func (r *Repository) CommittedCount(ctx context.Context, eventSlug, startDate, endDate string) (int, error) {
	const q = `SELECT COALESCE(SUM(quantity), 0) FROM orders
		WHERE event_slug = $1 AND start_date = $2 AND end_date = $3 AND status IN ('paid', 'pending')`
	var count int
	err := r.pool.QueryRow(ctx, q, eventSlug, startDate, endDate).Scan(&count)
	return count, err
}

// UpdateDraftText sets one text column on the session's draft. The column
// name comes from the field allow-list, never from request input.
func (r *Repository) UpdateDraftText(ctx context.Context, sessionID, column, value string) (uuid.UUID, error) {
	q := fmt.Sprintf(`UPDATE orders SET %s = $1, updated_at = NOW()
		WHERE session_id = $2 AND status = 'draft' RETURNING id`, column)
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, q, value, sessionID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrDraftNotFound
	}
	return id, err
}

// UpdateDraftQuantity sets the seat count on the session's draft.
func (r *Repository) UpdateDraftQuantity(ctx context.Context, sessionID string, quantity int) (uuid.UUID, error) {
	const q = `UPDATE orders SET quantity = $1, updated_at = NOW()
		WHERE session_id = $2 AND status = 'draft' RETURNING id`
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, q, quantity, sessionID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrDraftNotFound
	}
	return id, err
}

// MergeDraftAddress merges a partial address into the draft's address jsonb.
// Sub-fields not present in the patch are left untouched.
func (r *Repository) MergeDraftAddress(ctx context.Context, sessionID string, patch map[string]string) (uuid.UUID, error) {
	raw, err := json.Marshal(patch)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal address patch: %w", err)
	}
	const q = `UPDATE orders SET address = address || $1::jsonb, updated_at = NOW()
		WHERE session_id = $2 AND status = 'draft' RETURNING id`
	var id uuid.UUID
	err = r.pool.QueryRow(ctx, q, raw, sessionID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrDraftNotFound
	}
	return id, err
}

// SetDraftParticipants replaces the participant list on the session's draft.
func (r *Repository) SetDraftParticipants(ctx context.Context, sessionID string, participants []models.Participant) (uuid.UUID, error) {
	raw, err := json.Marshal(participants)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal participants: %w", err)
	}
	const q = `UPDATE orders SET participants = $1, updated_at = NOW()
		WHERE session_id = $2 AND status = 'draft' RETURNING id`
	var id uuid.UUID
	err = r.pool.QueryRow(ctx, q, raw, sessionID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrDraftNotFound
	}
	return id, err
}

// UpdateCheckout writes the authoritative checkout result onto an order:
// customer data, server-derived total and the payment branch taken.
func (r *Repository) UpdateCheckout(ctx context.Context, o *models.Order) error {
	address, err := json.Marshal(o.Address)
	if err != nil {
		return fmt.Errorf("marshal address: %w", err)
	}
	participants, err := json.Marshal(o.Participants)
	if err != nil {
		return fmt.Errorf("marshal participants: %w", err)
	}
	const q = `UPDATE orders SET
			total_amount = $1, first_name = $2, last_name = $3, email = $4, phone = $5,
			company = $6, vat_number = $7, address = $8, participants = $9,
			payment_method = $10, invoice_number = $11, updated_at = NOW()
		WHERE id = $12`
	_, err = r.pool.Exec(ctx, q, o.TotalAmount, o.FirstName, o.LastName, o.Email, o.Phone,
		o.Company, o.VATNumber, address, participants, o.PaymentMethod, o.InvoiceNumber, o.ID)
	return err
}

// Transition moves an order from one of the given statuses to another.
// Returns ErrBadTransition when the order is not in an allowed source state.
func (r *Repository) Transition(ctx context.Context, id uuid.UUID, from []string, to string) error {
	const q = `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = ANY($3)`
	tag, err := r.pool.Exec(ctx, q, to, id, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBadTransition
	}
	return nil
}
