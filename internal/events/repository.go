package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharma-academy/backend/internal/models"
)

// Repository handles event catalog persistence. Events mirror CMS documents;
// date ranges are kept as a jsonb array in document order, so "first date
// range" is stable for draft initialization.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Upsert inserts or replaces an event by slug (CMS sync).
func (r *Repository) Upsert(ctx context.Context, e *models.Event) error {
	ranges, err := json.Marshal(e.DateRanges)
	if err != nil {
		return fmt.Errorf("marshal date ranges: %w", err)
	}
	const q = `INSERT INTO events (id, slug, title, description, date_ranges, published)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		ON CONFLICT (slug) DO UPDATE SET title = EXCLUDED.title, description = EXCLUDED.description,
			date_ranges = EXCLUDED.date_ranges, published = EXCLUDED.published, updated_at = NOW()
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, e.Slug, e.Title, e.Description, ranges, e.Published).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// GetBySlug returns an event by slug, or nil when unknown.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.Event, error) {
	const q = `SELECT id, slug, title, description, date_ranges, published, created_at, updated_at
		FROM events WHERE slug = $1`
	var e models.Event
	var ranges []byte
	err := r.pool.QueryRow(ctx, q, slug).
		Scan(&e.ID, &e.Slug, &e.Title, &e.Description, &ranges, &e.Published, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(ranges, &e.DateRanges); err != nil {
		return nil, fmt.Errorf("unmarshal date ranges: %w", err)
	}
	return &e, nil
}

// ListPublished returns all published events ordered by slug.
func (r *Repository) ListPublished(ctx context.Context) ([]models.Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, slug, title, description, date_ranges, published, created_at, updated_at
		FROM events WHERE published ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Event
	for rows.Next() {
		var e models.Event
		var ranges []byte
		if err := rows.Scan(&e.ID, &e.Slug, &e.Title, &e.Description, &ranges, &e.Published, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(ranges, &e.DateRanges); err != nil {
			return nil, fmt.Errorf("unmarshal date ranges: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
