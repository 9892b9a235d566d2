// Package config loads and validates ticketwatch configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Event    EventConfig    `mapstructure:"event"`
	Alert    AlertConfig    `mapstructure:"alert"`
	Poll     PollConfig     `mapstructure:"poll"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Ops      OpsConfig      `mapstructure:"ops"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// EventConfig identifies the page being watched.
type EventConfig struct {
	URL string `mapstructure:"url"`
}

// AlertConfig controls which listings trigger notifications.
type AlertConfig struct {
	MinValueScore float64 `mapstructure:"min_value_score"`
}

// PollConfig governs the watch loop cadence.
type PollConfig struct {
	IntervalSeconds int `mapstructure:"interval_seconds"`
}

// NotifyConfig holds Pushover credentials. Both empty means log-only mode.
type NotifyConfig struct {
	UserKey  string `mapstructure:"user_key"`
	APIToken string `mapstructure:"api_token"`
}

// FetchConfig configures the probe and headless fetch paths.
type FetchConfig struct {
	NavTimeoutSeconds   int    `mapstructure:"nav_timeout_seconds"`
	ProbeTimeoutSeconds int    `mapstructure:"probe_timeout_seconds"`
	HeadlessAlways      bool   `mapstructure:"headless_always"`
	UserAgent           string `mapstructure:"user_agent"`
}

// SnapshotConfig enables writing fetched HTML to disk when parsing
// finds no listings. Empty Dir disables the sink.
type SnapshotConfig struct {
	Dir string `mapstructure:"dir"`
}

// OpsConfig controls the healthz/metrics listener.
type OpsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TICKETWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindLegacyEnv(v)
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// bindLegacyEnv wires the unprefixed variable names the bot has always
// been configured with, alongside the prefixed forms AutomaticEnv covers.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("event.url", "TICKETWATCH_EVENT_URL", "EVENT_URL")
	_ = v.BindEnv("alert.min_value_score", "TICKETWATCH_ALERT_MIN_VALUE_SCORE", "MIN_VALUE_SCORE")
	_ = v.BindEnv("poll.interval_seconds", "TICKETWATCH_POLL_INTERVAL_SECONDS", "CHECK_INTERVAL_SECONDS")
	_ = v.BindEnv("notify.user_key", "TICKETWATCH_NOTIFY_USER_KEY", "NOTIFY_USER_KEY")
	_ = v.BindEnv("notify.api_token", "TICKETWATCH_NOTIFY_API_TOKEN", "NOTIFY_API_TOKEN")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("alert.min_value_score", 9.5)
	v.SetDefault("poll.interval_seconds", 300)
	v.SetDefault("fetch.nav_timeout_seconds", 45)
	v.SetDefault("fetch.probe_timeout_seconds", 15)
	v.SetDefault("fetch.headless_always", false)
	v.SetDefault("fetch.user_agent", "ticketwatch/1.0 (+https://github.com/JakeFAU/ticketwatch)")
	v.SetDefault("snapshot.dir", "")
	v.SetDefault("ops.enabled", true)
	v.SetDefault("ops.port", 9090)
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Event.URL) == "" {
		return fmt.Errorf("event.url is required (set EVENT_URL)")
	}
	parsed, err := url.Parse(c.Event.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("event.url %q is not an absolute URL", c.Event.URL)
	}
	if c.Alert.MinValueScore <= 0 {
		return fmt.Errorf("alert.min_value_score must be > 0")
	}
	if c.Poll.IntervalSeconds <= 0 {
		return fmt.Errorf("poll.interval_seconds must be > 0")
	}
	if c.Fetch.NavTimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.nav_timeout_seconds must be > 0")
	}
	if c.Fetch.ProbeTimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.probe_timeout_seconds must be > 0")
	}
	if c.Ops.Enabled && c.Ops.Port <= 0 {
		return fmt.Errorf("ops.port must be > 0 when ops is enabled")
	}
	return nil
}

// NotifyConfigured reports whether both Pushover credentials are present.
func (c Config) NotifyConfigured() bool {
	return strings.TrimSpace(c.Notify.UserKey) != "" && strings.TrimSpace(c.Notify.APIToken) != ""
}

// PollInterval converts the poll cadence into a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalSeconds) * time.Second
}

// NavTimeout converts the headless navigation budget into a duration.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Fetch.NavTimeoutSeconds) * time.Second
}

// ProbeTimeout converts the probe fetch budget into a duration.
func (c Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Fetch.ProbeTimeoutSeconds) * time.Second
}
