package watch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeenSetLifecycle(t *testing.T) {
	t.Parallel()

	seen := NewSeenSet()
	require.Zero(t, seen.Len())
	require.False(t, seen.Seen("a"))

	seen.Add("a")
	require.True(t, seen.Seen("a"))
	require.False(t, seen.Seen("b"))
	require.Equal(t, 1, seen.Len())

	// Adds are idempotent.
	seen.Add("a")
	require.Equal(t, 1, seen.Len())

	seen.Add("b")
	require.Equal(t, 2, seen.Len())
}

func TestListingFingerprintStableAndScoreSensitive(t *testing.T) {
	t.Parallel()

	h := staticHasher{}
	score := 9.7
	listing := Listing{
		Section:    "104",
		Row:        "F",
		Quantity:   "2",
		Price:      "$145",
		ValueScore: &score,
		URL:        "https://example.com/event",
	}

	fp1, err := listing.Fingerprint(h)
	require.NoError(t, err)
	fp2, err := listing.Fingerprint(h)
	require.NoError(t, err)
	require.Equal(t, fp1, fp2)

	// A score change produces a new identity, so a listing that climbs
	// past the threshold later is alertable.
	updated := listing
	newScore := 9.9
	updated.ValueScore = &newScore
	fp3, err := updated.Fingerprint(h)
	require.NoError(t, err)
	require.NotEqual(t, fp1, fp3)

	// No score hashes differently from any scored variant.
	unscored := listing
	unscored.ValueScore = nil
	fp4, err := unscored.Fingerprint(h)
	require.NoError(t, err)
	require.NotEqual(t, fp1, fp4)
}

// staticHasher is an identity hasher so fingerprints stay readable in tests.
type staticHasher struct{}

func (staticHasher) Hash(data []byte) (string, error) {
	return string(data), nil
}
