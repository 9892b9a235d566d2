package watch

import (
	"context"
	"time"
)

// Fetcher produces the rendered markup of the configured event page.
type Fetcher interface {
	Fetch(ctx context.Context) (FetchResult, error)
}

// Parser extracts listings from rendered markup. It is total: malformed
// cards are skipped, never fatal.
type Parser interface {
	Parse(ctx context.Context, body []byte) ([]Listing, error)
}

// Notifier delivers one alert. A nil error means the alert was dispatched
// and the listing may be marked seen.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

// Detector decides whether statically fetched markup still needs a
// JavaScript render before parsing.
type Detector interface {
	NeedsRender(body []byte) bool
}

// SnapshotSink persists raw page bytes for offline diagnosis.
type SnapshotSink interface {
	Put(ctx context.Context, name string, body []byte) (string, error)
}

// Hasher computes digests for listing fingerprints.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces cycle IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
