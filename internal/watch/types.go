// Package watch defines core types shared across subsystems.
package watch

import (
	"fmt"
	"time"
)

// Listing is one ticket offer scraped from the event page. Descriptive
// fields are empty when the page did not expose them.
type Listing struct {
	Section    string   `json:"section"`
	Row        string   `json:"row"`
	Quantity   string   `json:"quantity"`
	Price      string   `json:"price"`
	AllIn      string   `json:"all_in,omitempty"`
	ValueScore *float64 `json:"value_score,omitempty"`
	URL        string   `json:"url"`
}

// Fingerprint derives the identifier used for de-duplication. No stable
// listing ID exists in the page, so identity is the hash of the visible
// fields: a price or score change yields a new identity on purpose.
func (l Listing) Fingerprint(h Hasher) (string, error) {
	score := ""
	if l.ValueScore != nil {
		score = fmt.Sprintf("%.2f", *l.ValueScore)
	}
	raw := fmt.Sprintf("%s|%s|%s|%s|%s|%s", l.Section, l.Row, l.Quantity, l.Price, score, l.URL)
	digest, err := h.Hash([]byte(raw))
	if err != nil {
		return "", fmt.Errorf("fingerprint listing: %w", err)
	}
	return digest, nil
}

// Score returns the value score, or 0 and false when the page showed none.
func (l Listing) Score() (float64, bool) {
	if l.ValueScore == nil {
		return 0, false
	}
	return *l.ValueScore, true
}

// FetchResult is the rendered page returned by a Fetcher implementation.
type FetchResult struct {
	URL          string
	StatusCode   int
	Body         []byte
	Duration     time.Duration
	UsedHeadless bool
}

// Alert is one notification about a qualifying listing.
type Alert struct {
	Title       string
	Message     string
	Priority    int
	Fingerprint string
}

// CycleStatus summarizes the most recent poll cycle for the ops surface.
type CycleStatus struct {
	CycleID      string    `json:"cycle_id"`
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at"`
	ListingCount int       `json:"listing_count"`
	AlertsSent   int       `json:"alerts_sent"`
	SeenCount    int       `json:"seen_count"`
	Error        string    `json:"error,omitempty"`
}
