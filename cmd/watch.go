package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/ticketwatch/internal/clock/system"
	"github.com/JakeFAU/ticketwatch/internal/config"
	"github.com/JakeFAU/ticketwatch/internal/fetcher"
	"github.com/JakeFAU/ticketwatch/internal/fetcher/detect"
	headlessfetcher "github.com/JakeFAU/ticketwatch/internal/fetcher/headless"
	staticfetcher "github.com/JakeFAU/ticketwatch/internal/fetcher/static"
	"github.com/JakeFAU/ticketwatch/internal/hash/sha256"
	"github.com/JakeFAU/ticketwatch/internal/id/uuid"
	"github.com/JakeFAU/ticketwatch/internal/logging"
	"github.com/JakeFAU/ticketwatch/internal/notify"
	"github.com/JakeFAU/ticketwatch/internal/ops"
	"github.com/JakeFAU/ticketwatch/internal/parser"
	localstorage "github.com/JakeFAU/ticketwatch/internal/storage/local"
	"github.com/JakeFAU/ticketwatch/internal/watch"
)

// newWatchCmd creates and configures the 'watch' subcommand.
func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Starts the poll/parse/alert loop",
		Long: `Polls the configured event page on a fixed interval until the
process receives SIGINT or SIGTERM. Transient fetch, parse, and notify
failures are logged and retried on the next interval; only invalid
configuration or a missing browser engine is fatal.`,

		RunE: runWatchCommand,
	}
	return cmd
}

func runWatchCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pageFetcher, closeFetcher, err := buildFetcher(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFetcher()

	watcher, err := buildWatcher(cfg, pageFetcher, logger)
	if err != nil {
		return err
	}

	opsSrv := startOpsServer(cfg, watcher, logger, stop)

	logger.Info("watch loop starting",
		zap.String("url", cfg.Event.URL),
		zap.Float64("threshold", cfg.Alert.MinValueScore),
		zap.Duration("interval", cfg.PollInterval()),
		zap.Bool("notify_configured", cfg.NotifyConfigured()),
	)

	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run watcher: %w", err)
	}

	shutdownOpsServer(opsSrv, logger)
	logger.Info("shutdown complete")
	return nil
}

func buildFetcher(cfg config.Config, logger *zap.Logger) (watch.Fetcher, func(), error) {
	headless, err := headlessfetcher.New(headlessfetcher.Config{
		URL:               cfg.Event.URL,
		UserAgent:         cfg.Fetch.UserAgent,
		NavigationTimeout: cfg.NavTimeout(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init headless fetcher: %w", err)
	}

	if cfg.Fetch.HeadlessAlways {
		return headless, headless.Close, nil
	}

	probe, err := staticfetcher.New(staticfetcher.Config{
		URL:       cfg.Event.URL,
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.ProbeTimeout(),
	})
	if err != nil {
		headless.Close()
		return nil, nil, fmt.Errorf("init probe fetcher: %w", err)
	}

	combined := fetcher.NewEscalating(probe, headless, detect.NewHeuristic(0), logger.Named("fetcher"))
	return combined, headless.Close, nil
}

func buildWatcher(cfg config.Config, pageFetcher watch.Fetcher, logger *zap.Logger) (*watch.Watcher, error) {
	notifier := buildNotifier(cfg, logger)
	hasher := sha256.New()
	dispatcher := watch.NewDispatcher(notifier, hasher, cfg.Alert.MinValueScore, logger.Named("dispatcher"))

	var snapshots watch.SnapshotSink
	if cfg.Snapshot.Dir != "" {
		sink, err := localstorage.New(localstorage.Config{BaseDir: cfg.Snapshot.Dir})
		if err != nil {
			return nil, fmt.Errorf("init snapshot sink: %w", err)
		}
		snapshots = sink
	}

	return watch.NewWatcher(
		pageFetcher,
		parser.New(cfg.Event.URL, logger.Named("parser")),
		dispatcher,
		watch.NewSeenSet(),
		snapshots,
		system.New(),
		uuid.New(),
		cfg.PollInterval(),
		logger.Named("watcher"),
	), nil
}

func buildNotifier(cfg config.Config, logger *zap.Logger) watch.Notifier {
	if !cfg.NotifyConfigured() {
		logger.Warn("Pushover not configured; alerts will be logged only")
		return notify.NewLogOnly(logger.Named("notify"))
	}
	pushover, err := notify.NewPushover(notify.Config{
		UserKey:  cfg.Notify.UserKey,
		APIToken: cfg.Notify.APIToken,
	}, logger.Named("notify"))
	if err != nil {
		// Credentials were present but unusable; fall back rather than crash.
		logger.Warn("Pushover init failed; alerts will be logged only", zap.Error(err))
		return notify.NewLogOnly(logger.Named("notify"))
	}
	return pushover
}

func startOpsServer(cfg config.Config, watcher *watch.Watcher, logger *zap.Logger, stop func()) *http.Server {
	if !cfg.Ops.Enabled {
		return nil
	}

	opsServer := ops.NewServer(watcher.Status, system.New(), logger.Named("ops"))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Ops.Port),
		Handler:           opsServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("ops server started", zap.Int("port", cfg.Ops.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ops server error", zap.Error(err))
			stop()
		}
	}()
	return srv
}

func shutdownOpsServer(srv *http.Server, logger *zap.Logger) {
	if srv == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("ops server shutdown error", zap.Error(err))
	}
}
