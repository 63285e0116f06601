package models

// Quote is a server-computed price for one (event, date range, quantity,
// currency) combination. It is derived on every request and never persisted;
// checkout discards client-supplied prices and re-derives a fresh Quote.
type Quote struct {
	Slug      string  `json:"slug"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Quantity  int     `json:"quantity"`
	Currency  string  `json:"currency"`
	BasePrice float64 `json:"base_price"`

	// EarlyBirdEligible reports the date axis (start date at least three
	// calendar months out); WouldGetEarlyBird additionally requires free
	// capacity. Both are surfaced so the UI can tell "too late" apart from
	// "sold out".
	EarlyBirdEligible       bool    `json:"early_bird_eligible"`
	EarlyBirdDiscount       float64 `json:"early_bird_discount"`
	FinalPrice              float64 `json:"final_price"`
	ParticipantCount        int     `json:"participant_count"`
	RemainingEarlyBirdSpots int     `json:"remaining_early_bird_spots"`
	WouldGetEarlyBird       bool    `json:"would_get_early_bird"`
}
