package observability

import (
	"fmt"
	"time"
)

const (
	defaultServiceName    = "vimeonet"
	defaultEndpoint       = "localhost:4318"
	defaultMetricInterval = 15 * time.Second
)

// Config configures OTLP/HTTP export of traces and metrics.
type Config struct {
	// Enabled turns export on. When false Setup returns no-op providers.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// ServiceName is reported as service.name.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
	// ServiceVersion is reported as service.version.
	ServiceVersion string `yaml:"service_version" mapstructure:"service_version"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure allows plain HTTP (for development).
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// SampleRate is the sampling rate (0.0 to 1.0).
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
	// MetricInterval is the metric export interval.
	MetricInterval time.Duration `yaml:"metric_interval" mapstructure:"metric_interval"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = defaultServiceName
	}
	if c.Endpoint == "" {
		c.Endpoint = defaultEndpoint
	}
	if c.MetricInterval <= 0 {
		c.MetricInterval = defaultMetricInterval
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("observability: sample_rate must be between 0 and 1 (got: %v)", c.SampleRate)
	}
	if c.Enabled && c.Endpoint == "" {
		return fmt.Errorf("observability: endpoint is required when enabled")
	}
	return nil
}
