package watch

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Dispatcher filters listings by score threshold, suppresses repeats via
// the SeenSet, and sends one notification per new qualifying listing.
type Dispatcher struct {
	notifier  Notifier
	hasher    Hasher
	threshold float64
	logger    *zap.Logger
}

// DispatchStats counts outcomes of one dispatch pass.
type DispatchStats struct {
	Alerted        int
	Suppressed     int
	BelowThreshold int
	Unscored       int
	Failed         int
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(notifier Notifier, hasher Hasher, threshold float64, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		notifier:  notifier,
		hasher:    hasher,
		threshold: threshold,
		logger:    logger,
	}
}

// Dispatch processes the current cycle's listings against the seen set.
// Listings below threshold or without a score are ignored and never
// marked seen, so a later score change can still trigger an alert. A
// failed send leaves the listing eligible for retry next cycle.
func (d *Dispatcher) Dispatch(ctx context.Context, listings []Listing, seen *SeenSet) DispatchStats {
	var stats DispatchStats
	for _, listing := range listings {
		score, ok := listing.Score()
		if !ok {
			stats.Unscored++
			continue
		}
		if score < d.threshold {
			stats.BelowThreshold++
			continue
		}

		fingerprint, err := listing.Fingerprint(d.hasher)
		if err != nil {
			stats.Failed++
			d.logger.Error("fingerprint listing failed", zap.Error(err))
			continue
		}
		if seen.Seen(fingerprint) {
			stats.Suppressed++
			continue
		}

		alert := d.buildAlert(listing, score, fingerprint)
		if err := d.notifier.Notify(ctx, alert); err != nil {
			stats.Failed++
			AlertsTotal.WithLabelValues("failed").Inc()
			d.logger.Warn("alert dispatch failed; listing stays eligible",
				zap.String("fingerprint", fingerprint),
				zap.Float64("score", score),
				zap.Error(err),
			)
			continue
		}

		seen.Add(fingerprint)
		stats.Alerted++
		AlertsTotal.WithLabelValues("sent").Inc()
		d.logger.Info("alert dispatched",
			zap.String("fingerprint", fingerprint),
			zap.Float64("score", score),
			zap.String("section", listing.Section),
			zap.String("row", listing.Row),
			zap.String("price", listing.Price),
		)
	}
	return stats
}

func (d *Dispatcher) buildAlert(listing Listing, score float64, fingerprint string) Alert {
	message := fmt.Sprintf("Score %.1f | %s/%s | Qty %s | %s",
		score,
		orUnknown(listing.Section),
		orUnknown(listing.Row),
		orUnknown(listing.Quantity),
		orUnknown(listing.Price),
	)
	if listing.AllIn != "" {
		message += " | " + listing.AllIn
	}
	message += "\n\nEvent: " + listing.URL

	return Alert{
		Title:       fmt.Sprintf("Ticket value >= %.1f", d.threshold),
		Message:     message,
		Priority:    0,
		Fingerprint: fingerprint,
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
