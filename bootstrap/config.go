package bootstrap

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"time"

	"github.com/kbukum/vimeonet/cache"
	"github.com/kbukum/vimeonet/client"
	"github.com/kbukum/vimeonet/config"
	"github.com/kbukum/vimeonet/logger"
	"github.com/kbukum/vimeonet/observability"
	"github.com/kbukum/vimeonet/transport"
	"github.com/kbukum/vimeonet/version"
)

const (
	defaultName            = "vimeonet"
	defaultReachInterval   = 30 * time.Second
	defaultBreakerFailures = 5
	defaultBreakerTimeout  = 30 * time.Second

	// TransportHTTP selects the net/http session.
	TransportHTTP = "http"
	// TransportResty selects the resty session.
	TransportResty = "resty"
)

// Config is the complete configuration of an App.
type Config struct {
	Name         string               `yaml:"name" mapstructure:"name" validate:"required"`
	Logging      logger.Config        `yaml:"logging" mapstructure:"logging"`
	API          APIConfig            `yaml:"api" mapstructure:"api"`
	Transport    TransportConfig      `yaml:"transport" mapstructure:"transport"`
	Cache        CacheConfig          `yaml:"cache" mapstructure:"cache"`
	Keychain     KeychainConfig       `yaml:"keychain" mapstructure:"keychain"`
	Reachability ReachabilityConfig   `yaml:"reachability" mapstructure:"reachability"`
	Telemetry    observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// APIConfig locates the API and identifies the application to it.
type APIConfig struct {
	client.Config `yaml:",inline" mapstructure:",squash"`

	// ClientID and ClientSecret enable Basic authentication while no token
	// is installed.
	ClientID     string `yaml:"client_id" mapstructure:"client_id" validate:"required_with=ClientSecret"`
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret" validate:"required_with=ClientID"`
}

// TransportConfig selects and tunes the session adapter.
type TransportConfig struct {
	transport.Config `yaml:",inline" mapstructure:",squash"`

	// Kind is "http" (default) or "resty".
	Kind string `yaml:"kind" mapstructure:"kind" validate:"oneof=http resty"`
	// Rate limits requests per second. Zero disables limiting.
	Rate float64 `yaml:"rate" mapstructure:"rate" validate:"gte=0"`
	// Burst is the limiter bucket size. Defaults to twice the rate.
	Burst int `yaml:"burst" mapstructure:"burst" validate:"gte=0"`
	// BreakerFailures opens the circuit after that many consecutive
	// failures. Negative disables the breaker.
	BreakerFailures int `yaml:"breaker_failures" mapstructure:"breaker_failures"`
	// BreakerTimeout is how long the circuit stays open.
	BreakerTimeout time.Duration `yaml:"breaker_timeout" mapstructure:"breaker_timeout" validate:"gte=0"`
}

// CacheConfig configures the response cache.
type CacheConfig struct {
	cache.Config `yaml:",inline" mapstructure:",squash"`

	// Disabled turns the cache off entirely. Cache-only requests then miss.
	Disabled bool `yaml:"disabled" mapstructure:"disabled"`
}

// KeychainConfig configures where the account is persisted.
type KeychainConfig struct {
	// Service scopes stored items. Defaults to the app name.
	Service     string `yaml:"service" mapstructure:"service"`
	AccessGroup string `yaml:"access_group" mapstructure:"access_group"`
	// Dir holds the encrypted items. Defaults to <user config dir>/<name>/keychain.
	Dir string `yaml:"dir" mapstructure:"dir"`
	// EncryptionKey seals items at rest. Without it the account is kept in
	// memory only and is lost on exit.
	EncryptionKey string `yaml:"encryption_key" mapstructure:"encryption_key"`
	// Algorithm is "aes-256-gcm" (default) or "chacha20-poly1305".
	Algorithm string `yaml:"algorithm" mapstructure:"algorithm" validate:"omitempty,oneof=aes-256-gcm chacha20-poly1305"`
}

// Persistent reports whether accounts survive a restart.
func (c KeychainConfig) Persistent() bool { return c.EncryptionKey != "" }

// ReachabilityConfig configures network monitoring.
type ReachabilityConfig struct {
	Disabled bool `yaml:"disabled" mapstructure:"disabled"`
	// Host is the host:port probed. Defaults to the API host on 443.
	Host     string        `yaml:"host" mapstructure:"host" validate:"omitempty,hostname_port"`
	Interval time.Duration `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = defaultName
	}
	c.Logging.ApplyDefaults()
	c.API.ApplyDefaults()

	if c.Transport.Kind == "" {
		c.Transport.Kind = TransportHTTP
	}
	if c.Transport.Name == "" {
		c.Transport.Name = c.Name
	}
	if c.Transport.UserAgent == "" {
		c.Transport.UserAgent = version.UserAgent(c.Name)
	}
	c.Transport.Config.ApplyDefaults()
	if c.Transport.Rate > 0 && c.Transport.Burst == 0 {
		c.Transport.Burst = int(2 * c.Transport.Rate)
		if c.Transport.Burst < 1 {
			c.Transport.Burst = 1
		}
	}
	if c.Transport.BreakerFailures == 0 {
		c.Transport.BreakerFailures = defaultBreakerFailures
	}
	if c.Transport.BreakerTimeout == 0 {
		c.Transport.BreakerTimeout = defaultBreakerTimeout
	}

	if c.Cache.Name == "" {
		c.Cache.Name = c.Name
	}
	c.Cache.Config.ApplyDefaults()

	if c.Keychain.Service == "" {
		c.Keychain.Service = c.Name
	}

	if c.Reachability.Host == "" {
		c.Reachability.Host = apiHost(c.API.BaseURL)
	}
	if c.Reachability.Interval == 0 {
		c.Reachability.Interval = defaultReachInterval
	}

	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = c.Name
	}
	if c.Telemetry.ServiceVersion == "" {
		c.Telemetry.ServiceVersion = version.Get().Short()
	}
	c.Telemetry.ApplyDefaults()
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := config.Validate(c); err != nil {
		return err
	}
	return errors.Join(
		c.Logging.Validate(),
		c.API.Validate(),
		c.Transport.Config.Validate(),
		c.Cache.Config.Validate(),
		c.Telemetry.Validate(),
	)
}

// LoadConfig reads the configuration for name from files and VIMEONET_*
// environment variables, then applies defaults and validates it.
func LoadConfig(name string, opts ...config.LoaderOption) (*Config, error) {
	cfg := &Config{Name: name}
	if err := config.Load(name, cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// keychainDir resolves the directory holding persisted items.
func (c KeychainConfig) keychainDir(fs config.FileSystem, name string) (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	base, err := fs.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("keychain: %w", err)
	}
	return filepath.Join(base, name, "keychain"), nil
}

// apiHost returns host:port for the API base URL, defaulting the port from
// the scheme.
func apiHost(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	if u.Port() != "" {
		return u.Host
	}
	port := "443"
	if u.Scheme == "http" {
		port = "80"
	}
	return net.JoinHostPort(u.Hostname(), port)
}
