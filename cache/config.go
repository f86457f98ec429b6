package cache

import (
	"fmt"
	"time"

	"github.com/kbukum/vimeonet/storage"
)

const (
	defaultName          = "vimeonet"
	defaultMemoryEntries = 256
	defaultDiskWriters   = 4
)

// Config configures a ResponseCache.
type Config struct {
	// Name is the directory name under the user's caches location.
	Name string `yaml:"name" mapstructure:"name"`
	// Dir overrides the full disk tier path.
	Dir string `yaml:"dir" mapstructure:"dir"`
	// MemoryEntries bounds the memory tier.
	MemoryEntries int `yaml:"memory_entries" mapstructure:"memory_entries"`
	// MaxAge treats older entries as absent. Zero keeps entries until cleared.
	MaxAge time.Duration `yaml:"max_age" mapstructure:"max_age"`
	// DiskWriters bounds concurrent background disk writes.
	DiskWriters int `yaml:"disk_writers" mapstructure:"disk_writers"`
	// DisableDisk keeps the cache in memory only.
	DisableDisk bool `yaml:"disable_disk" mapstructure:"disable_disk"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = defaultName
	}
	if c.MemoryEntries <= 0 {
		c.MemoryEntries = defaultMemoryEntries
	}
	if c.DiskWriters <= 0 {
		c.DiskWriters = defaultDiskWriters
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.MaxAge < 0 {
		return fmt.Errorf("cache: max_age must not be negative")
	}
	return nil
}

func (c *Config) directory() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	return storage.CachesDir(c.Name)
}
