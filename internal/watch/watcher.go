package watch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Watcher runs the poll loop: fetch, parse, dispatch, idle, repeat. Only
// one cycle runs at a time; the loop does not start cycle N+1 until
// cycle N finishes.
type Watcher struct {
	fetcher    Fetcher
	parser     Parser
	dispatcher *Dispatcher
	seen       *SeenSet
	snapshots  SnapshotSink
	clock      Clock
	ids        IDGenerator
	interval   time.Duration
	logger     *zap.Logger

	statusMu sync.RWMutex
	last     CycleStatus
}

// NewWatcher constructs a Watcher. The snapshot sink may be nil.
func NewWatcher(
	fetcher Fetcher,
	parser Parser,
	dispatcher *Dispatcher,
	seen *SeenSet,
	snapshots SnapshotSink,
	clock Clock,
	ids IDGenerator,
	interval time.Duration,
	logger *zap.Logger,
) *Watcher {
	return &Watcher{
		fetcher:    fetcher,
		parser:     parser,
		dispatcher: dispatcher,
		seen:       seen,
		snapshots:  snapshots,
		clock:      clock,
		ids:        ids,
		interval:   interval,
		logger:     logger,
	}
}

// Run polls immediately, then once per interval until the context ends.
// Cancellation interrupts the idle wait promptly; an in-progress cycle
// is abandoned via the same context.
func (w *Watcher) Run(ctx context.Context) error {
	w.runCycle(ctx)

	timer := time.NewTimer(w.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch loop stopping", zap.Int("seen", w.seen.Len()))
			return nil
		case <-timer.C:
		}
		w.runCycle(ctx)
		timer.Reset(w.interval)
	}
}

// Status returns a copy of the most recent cycle summary.
func (w *Watcher) Status() CycleStatus {
	w.statusMu.RLock()
	defer w.statusMu.RUnlock()
	return w.last
}

func (w *Watcher) runCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	cycleID, err := w.ids.NewID()
	if err != nil {
		cycleID = "unknown"
	}
	logger := w.logger.With(zap.String("cycle_id", cycleID))
	status := CycleStatus{CycleID: cycleID, StartedAt: w.clock.Now()}

	listings, cycleErr := w.fetchAndParse(ctx, logger)
	if cycleErr != nil {
		var fetchErr *FetchError
		if errors.As(cycleErr, &fetchErr) {
			FetchErrorsTotal.Inc()
			CyclesTotal.WithLabelValues("fetch_error").Inc()
		} else {
			CyclesTotal.WithLabelValues("parse_error").Inc()
		}
		logger.Error("poll cycle aborted; retrying next interval",
			zap.Duration("interval", w.interval),
			zap.Error(cycleErr),
		)
		status.Error = cycleErr.Error()
		w.finishCycle(status)
		return
	}

	stats := w.dispatcher.Dispatch(ctx, listings, w.seen)
	CyclesTotal.WithLabelValues("ok").Inc()

	status.ListingCount = len(listings)
	status.AlertsSent = stats.Alerted
	w.finishCycle(status)

	logger.Info("poll cycle complete",
		zap.Int("listings", len(listings)),
		zap.Int("alerted", stats.Alerted),
		zap.Int("suppressed", stats.Suppressed),
		zap.Int("below_threshold", stats.BelowThreshold),
		zap.Int("unscored", stats.Unscored),
		zap.Int("notify_failed", stats.Failed),
		zap.Int("seen", w.seen.Len()),
	)
}

func (w *Watcher) fetchAndParse(ctx context.Context, logger *zap.Logger) ([]Listing, error) {
	result, err := w.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug("page fetched",
		zap.String("url", result.URL),
		zap.Int("status", result.StatusCode),
		zap.Int("bytes", len(result.Body)),
		zap.Duration("duration", result.Duration),
		zap.Bool("headless", result.UsedHeadless),
	)

	listings, err := w.parser.Parse(ctx, result.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	ListingsParsedTotal.Add(float64(len(listings)))

	if len(listings) == 0 {
		// Selector drift is the expected failure mode for this page;
		// keep the markup around so it can be diagnosed offline.
		w.snapshotEmptyPage(ctx, logger, result.Body)
	}
	return listings, nil
}

func (w *Watcher) snapshotEmptyPage(ctx context.Context, logger *zap.Logger, body []byte) {
	if w.snapshots == nil || len(body) == 0 {
		return
	}
	name := fmt.Sprintf("empty-parse-%s.html", w.clock.Now().Format("20060102T150405Z"))
	uri, err := w.snapshots.Put(ctx, name, body)
	if err != nil {
		logger.Warn("page snapshot failed", zap.Error(err))
		return
	}
	logger.Warn("no listings parsed; page snapshot saved", zap.String("snapshot", uri))
}

func (w *Watcher) finishCycle(status CycleStatus) {
	status.CompletedAt = w.clock.Now()
	status.SeenCount = w.seen.Len()
	w.statusMu.Lock()
	w.last = status
	w.statusMu.Unlock()
}
