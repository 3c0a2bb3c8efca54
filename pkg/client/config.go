package client

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Transport strategy names.
const (
	TransportPolling = "poll"
	TransportPush    = "push"
)

// Config is the unified client configuration.
type Config struct {
	// DataDir holds the config file and logs.
	DataDir string `mapstructure:"datadir"`

	// ServerURL is the REST base URL for the polling strategy,
	// e.g. "http://localhost:8080".
	ServerURL string `mapstructure:"serverurl"`

	// PushAddr is the host:port of the persistent push endpoint.
	PushAddr string `mapstructure:"pushaddr"`

	// Transport selects the strategy: "poll" or "push".
	Transport string `mapstructure:"transport"`

	TableID  int64  `mapstructure:"tableid"`
	PlayerID string `mapstructure:"playerid"`
	Nickname string `mapstructure:"nickname"`
	BuyIn    int64  `mapstructure:"buyin"`

	// PollInterval is the snapshot refresh cadence.
	PollInterval time.Duration `mapstructure:"pollinterval"`

	// EstablishTimeout bounds push connection establishment, dial through
	// handshake acknowledgment.
	EstablishTimeout time.Duration `mapstructure:"establishtimeout"`

	// ReconnectDelay is the fixed wait between push reconnect attempts.
	ReconnectDelay time.Duration `mapstructure:"reconnectdelay"`

	// MaxReconnectAttempts bounds push reconnects before degraded mode.
	MaxReconnectAttempts int `mapstructure:"maxreconnectattempts"`

	// Debug is the log level (trace, debug, info, warn, error).
	Debug string `mapstructure:"debug"`

	// DiagInterval is the cadence of process diagnostics logging at debug
	// level; zero disables it.
	DiagInterval time.Duration `mapstructure:"diaginterval"`
}

// LoadConfig reads tablecli.yml from datadir (if present) over built-in
// defaults, with TABLESYNC_* environment overrides.
func LoadConfig(datadir string) (*Config, error) {
	v := viper.New()
	v.SetDefault("datadir", datadir)
	v.SetDefault("serverurl", "http://localhost:8080")
	v.SetDefault("pushaddr", "localhost:9090")
	v.SetDefault("transport", TransportPolling)
	v.SetDefault("buyin", 100000)
	v.SetDefault("pollinterval", 900*time.Millisecond)
	v.SetDefault("establishtimeout", 5*time.Second)
	v.SetDefault("reconnectdelay", 3*time.Second)
	v.SetDefault("maxreconnectattempts", 5)
	v.SetDefault("debug", "info")
	v.SetDefault("diaginterval", 30*time.Second)

	v.SetConfigName("tablecli")
	v.SetConfigType("yaml")
	v.AddConfigPath(datadir)
	v.SetEnvPrefix("tablesync")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the values a session cannot start without.
func (cfg *Config) Validate() error {
	var missing []string
	if cfg.PlayerID == "" {
		missing = append(missing, "playerid")
	}
	if cfg.Nickname == "" {
		missing = append(missing, "nickname")
	}
	if cfg.TableID <= 0 {
		missing = append(missing, "tableid")
	}
	switch cfg.Transport {
	case TransportPolling:
		if cfg.ServerURL == "" {
			missing = append(missing, "serverurl")
		}
	case TransportPush:
		if cfg.PushAddr == "" {
			missing = append(missing, "pushaddr")
		}
	default:
		return fmt.Errorf("unknown transport %q (want %q or %q)",
			cfg.Transport, TransportPolling, TransportPush)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration values: %v", missing)
	}
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("pollinterval must be positive")
	}
	if cfg.MaxReconnectAttempts <= 0 {
		return fmt.Errorf("maxreconnectattempts must be positive")
	}
	return nil
}
