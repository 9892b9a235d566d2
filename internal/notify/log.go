package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/JakeFAU/ticketwatch/internal/watch"
)

// LogOnly implements watch.Notifier by writing the alert to the log.
// Used when no Pushover credentials are configured; the alert counts as
// dispatched so the listing is not re-alerted every cycle.
type LogOnly struct {
	logger *zap.Logger
}

// NewLogOnly constructs a log-only notifier.
func NewLogOnly(logger *zap.Logger) *LogOnly {
	return &LogOnly{logger: logger}
}

// Notify logs the alert and reports success.
func (n *LogOnly) Notify(_ context.Context, alert watch.Alert) error {
	n.logger.Info("alert (log-only mode; configure Pushover credentials to push)",
		zap.String("title", alert.Title),
		zap.String("message", alert.Message),
		zap.String("fingerprint", alert.Fingerprint),
	)
	return nil
}
