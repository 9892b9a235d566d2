package watch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CyclesTotal tracks completed poll cycles, labeled by outcome.
	CyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ticketwatch_cycles_total",
		Help: "The total number of poll cycles, labeled by outcome.",
	}, []string{"status"})
	// ListingsParsedTotal tracks listings successfully extracted from the page.
	ListingsParsedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ticketwatch_listings_parsed_total",
		Help: "The total number of listings parsed from the event page.",
	})
	// ListingsSkippedTotal tracks cards the parser could not extract.
	ListingsSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ticketwatch_listings_skipped_total",
		Help: "The total number of listing cards skipped as unparsable.",
	})
	// AlertsTotal tracks notification attempts, labeled by outcome.
	AlertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ticketwatch_alerts_total",
		Help: "The total number of alert dispatch attempts, labeled by outcome.",
	}, []string{"status"})
	// FetchErrorsTotal tracks cycles aborted by a fetch failure.
	FetchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ticketwatch_fetch_errors_total",
		Help: "The total number of fetch failures.",
	})
)
