package client

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultBaseURL is the production API host.
	DefaultBaseURL = "https://api.vimeo.com"
	// DefaultAPIVersion is sent in the Accept header when none is configured.
	DefaultAPIVersion = "3.4"
)

// Config configures a Client.
type Config struct {
	// BaseURL resolves request paths. Defaults to DefaultBaseURL.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// APIVersion selects the API version through the Accept header.
	APIVersion string `yaml:"version" mapstructure:"version"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("client: invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("client: base_url must be http or https, got %q", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("client: base_url has no host")
	}
	if strings.ContainsAny(c.APIVersion, " ;,") {
		return fmt.Errorf("client: invalid version %q", c.APIVersion)
	}
	return nil
}

// Accept returns the Accept header value selecting the configured version.
func (c *Config) Accept() string {
	return "application/vnd.vimeo.*+json; version=" + c.APIVersion
}
