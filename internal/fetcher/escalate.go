// Package fetcher composes the probe and headless fetch paths.
package fetcher

import (
	"context"

	"go.uber.org/zap"

	"github.com/JakeFAU/ticketwatch/internal/watch"
)

// Escalating tries the cheap static probe first and promotes to the
// headless renderer when the probe fails or its markup still needs a
// JavaScript render. With a nil probe it always goes headless.
type Escalating struct {
	probe    watch.Fetcher
	headless watch.Fetcher
	detector watch.Detector
	logger   *zap.Logger
}

// NewEscalating constructs the composite fetcher.
func NewEscalating(probe, headless watch.Fetcher, detector watch.Detector, logger *zap.Logger) *Escalating {
	return &Escalating{
		probe:    probe,
		headless: headless,
		detector: detector,
		logger:   logger,
	}
}

// Fetch implements watch.Fetcher.
func (f *Escalating) Fetch(ctx context.Context) (watch.FetchResult, error) {
	if f.probe == nil {
		return f.headless.Fetch(ctx)
	}

	result, err := f.probe.Fetch(ctx)
	if err != nil {
		f.logger.Debug("probe fetch failed; promoting to headless", zap.Error(err))
		return f.headless.Fetch(ctx)
	}
	if f.detector != nil && f.detector.NeedsRender(result.Body) {
		f.logger.Debug("probe markup needs render; promoting to headless",
			zap.Int("probe_bytes", len(result.Body)),
		)
		return f.headless.Fetch(ctx)
	}
	return result, nil
}
