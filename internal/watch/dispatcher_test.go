package watch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeNotifier struct {
	mu     sync.Mutex
	err    error
	alerts []Alert
}

func (n *fakeNotifier) Notify(_ context.Context, alert Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.alerts = append(n.alerts, alert)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.alerts)
}

func scored(section, row, price string, score float64) Listing {
	s := score
	return Listing{
		Section:    section,
		Row:        row,
		Quantity:   "2",
		Price:      price,
		ValueScore: &s,
		URL:        "https://example.com/event",
	}
}

func newTestDispatcher(n Notifier, threshold float64) *Dispatcher {
	return NewDispatcher(n, staticHasher{}, threshold, zap.NewNop())
}

func TestDispatchAlertsOnceAboveThreshold(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{}
	d := newTestDispatcher(notifier, 9.5)
	seen := NewSeenSet()
	listings := []Listing{scored("104", "F", "$145", 9.7)}

	stats := d.Dispatch(context.Background(), listings, seen)
	require.Equal(t, 1, stats.Alerted)
	require.Len(t, notifier.alerts, 1)
	require.Equal(t, 1, seen.Len())

	// Second cycle with the same listing: suppressed.
	stats = d.Dispatch(context.Background(), listings, seen)
	require.Zero(t, stats.Alerted)
	require.Equal(t, 1, stats.Suppressed)
	require.Len(t, notifier.alerts, 1)
}

func TestDispatchBelowThresholdNeverMarkedSeen(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{}
	d := newTestDispatcher(notifier, 9.5)
	seen := NewSeenSet()

	// First cycle: listing B scores 9.0, no alert and no seen entry.
	stats := d.Dispatch(context.Background(), []Listing{scored("201", "B", "$99", 9.0)}, seen)
	require.Zero(t, stats.Alerted)
	require.Equal(t, 1, stats.BelowThreshold)
	require.Zero(t, seen.Len())

	// Later cycle: B updates to 9.6 and alerts.
	stats = d.Dispatch(context.Background(), []Listing{scored("201", "B", "$99", 9.6)}, seen)
	require.Equal(t, 1, stats.Alerted)
	require.Len(t, notifier.alerts, 1)
}

func TestDispatchUnscoredListingsExcluded(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{}
	d := newTestDispatcher(notifier, 9.5)
	seen := NewSeenSet()

	listings := []Listing{{Section: "104", Row: "F", Price: "$145", URL: "https://example.com/event"}}
	stats := d.Dispatch(context.Background(), listings, seen)
	require.Zero(t, stats.Alerted)
	require.Equal(t, 1, stats.Unscored)
	require.Zero(t, seen.Len())
	require.Empty(t, notifier.alerts)
}

func TestDispatchFailedSendStaysEligible(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{err: errors.New("pushover down")}
	d := newTestDispatcher(notifier, 9.5)
	seen := NewSeenSet()
	listings := []Listing{scored("104", "F", "$145", 9.7)}

	stats := d.Dispatch(context.Background(), listings, seen)
	require.Zero(t, stats.Alerted)
	require.Equal(t, 1, stats.Failed)
	require.Zero(t, seen.Len())

	// Next cycle the send succeeds and the listing is recorded.
	notifier.err = nil
	stats = d.Dispatch(context.Background(), listings, seen)
	require.Equal(t, 1, stats.Alerted)
	require.Equal(t, 1, seen.Len())
}

func TestDispatchAlertContent(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{}
	d := newTestDispatcher(notifier, 9.5)
	seen := NewSeenSet()

	listing := scored("104", "F", "$145", 9.7)
	listing.AllIn = "All-in $172"
	d.Dispatch(context.Background(), []Listing{listing}, seen)

	require.Len(t, notifier.alerts, 1)
	alert := notifier.alerts[0]
	require.Contains(t, alert.Title, "9.5")
	require.Contains(t, alert.Message, "Score 9.7")
	require.Contains(t, alert.Message, "104/F")
	require.Contains(t, alert.Message, "$145")
	require.Contains(t, alert.Message, "All-in $172")
	require.Contains(t, alert.Message, "https://example.com/event")
	require.NotEmpty(t, alert.Fingerprint)
}

func TestDispatchMissingFieldsRenderAsUnknown(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{}
	d := newTestDispatcher(notifier, 9.5)
	seen := NewSeenSet()

	score := 9.8
	listing := Listing{ValueScore: &score, URL: "https://example.com/event"}
	d.Dispatch(context.Background(), []Listing{listing}, seen)

	require.Len(t, notifier.alerts, 1)
	require.Contains(t, notifier.alerts[0].Message, "Unknown/Unknown")
}
