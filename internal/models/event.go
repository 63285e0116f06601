package models

import (
	"time"

	"github.com/google/uuid"
)

// DateRange is one concrete offering of an event. Pricing and early-bird
// capacity are scoped per (event slug, start date, end date), not per event,
// so the dates are kept as ISO strings and compared by exact equality.
type DateRange struct {
	StartDate string `json:"start_date"` // ISO date, e.g. "2026-06-01"
	EndDate   string `json:"end_date"`
	Location  string `json:"location,omitempty"`
}

// Event is a training course synced from the CMS. It is referenced by slug
// from orders; the CMS remains the source of truth for its content.
type Event struct {
	ID          uuid.UUID   `json:"id"`
	Slug        string      `json:"slug"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	DateRanges  []DateRange `json:"date_ranges"`
	Published   bool        `json:"published"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
