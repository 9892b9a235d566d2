// Package notify delivers alerts through Pushover.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/ticketwatch/internal/watch"
)

// DefaultEndpoint is the Pushover message API.
const DefaultEndpoint = "https://api.pushover.net/1/messages.json"

// ErrNotConfigured indicates missing Pushover credentials; callers fall
// back to the log-only notifier.
var ErrNotConfigured = errors.New("pushover user key and api token are required")

// Config holds Pushover credentials and client knobs.
type Config struct {
	UserKey  string
	APIToken string
	Endpoint string
	Timeout  time.Duration
}

// Pushover implements watch.Notifier against the Pushover message API.
type Pushover struct {
	cfg    Config
	client *resty.Client
	logger *zap.Logger
}

// NewPushover constructs a Pushover notifier.
func NewPushover(cfg Config, logger *zap.Logger) (*Pushover, error) {
	if strings.TrimSpace(cfg.UserKey) == "" || strings.TrimSpace(cfg.APIToken) == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}

	client := resty.New().SetTimeout(cfg.Timeout)

	return &Pushover{
		cfg:    cfg,
		client: client,
		logger: logger,
	}, nil
}

// Notify posts one alert. Any transport error or non-2xx response is a
// dispatch failure; the caller keeps the listing eligible for retry.
func (p *Pushover) Notify(ctx context.Context, alert watch.Alert) error {
	resp, err := p.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"token":    p.cfg.APIToken,
			"user":     p.cfg.UserKey,
			"title":    alert.Title,
			"message":  alert.Message,
			"priority": strconv.Itoa(alert.Priority),
		}).
		Post(p.cfg.Endpoint)
	if err != nil {
		return fmt.Errorf("pushover post: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("pushover response: %s", resp.Status())
	}

	p.logger.Debug("pushover alert delivered",
		zap.String("fingerprint", alert.Fingerprint),
		zap.Int("status", resp.StatusCode()),
	)
	return nil
}
