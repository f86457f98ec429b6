package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/golang/snappy"
	lru "github.com/hashicorp/golang-lru"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/kbukum/vimeonet/component"
	"github.com/kbukum/vimeonet/logger"
	"github.com/kbukum/vimeonet/resilience"
	"github.com/kbukum/vimeonet/storage"
)

const instrumentationName = "github.com/kbukum/vimeonet/cache"

// maxFileName bounds disk tier file names well below the 255-byte limit of
// common filesystems.
const maxFileName = 160

// Entry is one cached response payload.
type Entry struct {
	Key      string
	Payload  []byte
	StoredAt time.Time
}

// Expired reports whether the entry is older than maxAge. A zero maxAge
// never expires.
func (e Entry) Expired(now time.Time, maxAge time.Duration) bool {
	return maxAge > 0 && now.Sub(e.StoredAt) > maxAge
}

// envelope is the on-disk form of an Entry, before compression.
type envelope struct {
	Key      string    `json:"key"`
	StoredAt time.Time `json:"stored_at"`
	Payload  []byte    `json:"payload"`
}

// ResponseCache is a memory and disk cache keyed by request fingerprint.
type ResponseCache struct {
	cfg     Config
	mem     *lru.Cache
	disk    *storage.Dir
	writers *resilience.Bulkhead
	now     func() time.Time
	log     *logger.Logger

	// generation increments on every Clear so writes queued before it are
	// skipped when they reach the disk.
	generation atomic.Uint64

	mu        sync.Mutex
	lastError error

	lookups metric.Int64Counter
	writes  metric.Int64Counter
}

var _ component.Component = (*ResponseCache)(nil)

// Option configures a ResponseCache.
type Option func(*ResponseCache)

// WithLogger sets the cache logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *ResponseCache) { c.log = l }
}

// WithClock overrides the time source used for StoredAt and MaxAge.
func WithClock(now func() time.Time) Option {
	return func(c *ResponseCache) { c.now = now }
}

// WithMeterProvider records lookup and write counters on mp instead of the
// global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *ResponseCache) { c.initMetrics(mp) }
}

// New creates a cache. The disk directory is created on the first write.
func New(cfg Config, opts ...Option) (*ResponseCache, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mem, err := lru.New(cfg.MemoryEntries)
	if err != nil {
		return nil, fmt.Errorf("cache: create memory tier: %w", err)
	}

	c := &ResponseCache{
		cfg: cfg,
		mem: mem,
		writers: resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          cfg.Name + "-writers",
			MaxConcurrent: cfg.DiskWriters,
		}),
		now: time.Now,
	}
	if !cfg.DisableDisk {
		dir, err := cfg.directory()
		if err != nil {
			return nil, err
		}
		if c.disk, err = storage.NewDir(dir); err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.lookups == nil {
		c.initMetrics(otel.GetMeterProvider())
	}
	c.log = logger.OrNop(c.log).WithComponent("cache")
	return c, nil
}

func (c *ResponseCache) initMetrics(mp metric.MeterProvider) {
	meter := mp.Meter(instrumentationName)
	c.lookups, _ = meter.Int64Counter("vimeonet.cache.lookups",
		metric.WithDescription("Response cache lookups by tier and outcome"))
	c.writes, _ = meter.Int64Counter("vimeonet.cache.writes",
		metric.WithDescription("Response cache disk writes by outcome"))
}

// Dir returns the disk tier directory, or "" when the disk tier is disabled.
func (c *ResponseCache) Dir() string {
	if c.disk == nil {
		return ""
	}
	return c.disk.Path()
}

// Get returns the live entry stored under key.
func (c *ResponseCache) Get(key string) (Entry, bool) {
	now := c.now()
	if v, ok := c.mem.Get(key); ok {
		e := v.(Entry)
		if !e.Expired(now, c.cfg.MaxAge) {
			c.count("memory", "hit")
			return e, true
		}
		c.mem.Remove(key)
	}

	if c.disk == nil {
		c.count("memory", "miss")
		return Entry{}, false
	}
	e, err := c.readDisk(key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.log.Warn("disk cache read failed", logger.Fields(logger.FieldCacheKey, key, logger.FieldError, err.Error()))
		}
		c.count("disk", "miss")
		return Entry{}, false
	}
	if e.Expired(now, c.cfg.MaxAge) {
		c.count("disk", "expired")
		return Entry{}, false
	}
	c.mem.Add(key, e)
	c.count("disk", "hit")
	return e, true
}

// Put stores payload under key: in memory immediately, on disk in the
// background.
func (c *ResponseCache) Put(key string, payload []byte) {
	e := Entry{Key: key, Payload: append([]byte(nil), payload...), StoredAt: c.now()}
	c.mem.Add(key, e)
	if c.disk == nil {
		return
	}

	gen := c.generation.Load()
	c.writers.Go(func() {
		if c.generation.Load() != gen {
			c.recordWrite("dropped")
			return
		}
		if err := c.writeDisk(e); err != nil {
			c.setError(err)
			c.recordWrite("failed")
			c.log.Warn("disk cache write failed", logger.Fields(logger.FieldCacheKey, key, logger.FieldError, err.Error()))
			return
		}
		c.setError(nil)
		c.recordWrite("stored")
	})
}

// Remove deletes key from both tiers.
func (c *ResponseCache) Remove(key string) error {
	c.mem.Remove(key)
	if c.disk == nil {
		return nil
	}
	return c.disk.Delete(fileName(key))
}

// Clear empties the memory tier and removes the disk directory. A missing
// directory is not an error.
func (c *ResponseCache) Clear() error {
	c.generation.Add(1)
	c.mem.Purge()
	if c.disk == nil {
		return nil
	}
	if err := c.disk.RemoveAll(); err != nil {
		c.setError(err)
		return fmt.Errorf("cache: clear: %w", err)
	}
	c.log.Debug("cache cleared", logger.Fields("dir", c.disk.Path()))
	return nil
}

// Len returns the number of entries in the memory tier.
func (c *ResponseCache) Len() int { return c.mem.Len() }

// Wait blocks until queued disk writes have finished.
func (c *ResponseCache) Wait() { c.writers.Wait() }

// Name implements component.Component.
func (c *ResponseCache) Name() string { return "cache:" + c.cfg.Name }

// Start implements component.Component.
func (c *ResponseCache) Start(context.Context) error { return nil }

// Stop waits for queued disk writes, or for ctx to end.
func (c *ResponseCache) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("cache: waiting for disk writes: %w", ctx.Err())
	}
}

// Health reports degraded while the most recent disk operation failed.
// Otherwise the message carries the number of busy disk writers.
func (c *ResponseCache) Health(context.Context) component.Health {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if c.lastError != nil {
		h.Status = component.StatusDegraded
		h.Message = c.lastError.Error()
		return h
	}
	if c.disk != nil {
		h.Message = fmt.Sprintf("%d/%d disk writers busy", c.writers.InUse(), c.cfg.DiskWriters)
	}
	return h
}

// fileName maps key to its disk tier file. Long keys keep a readable prefix
// and end with the hash of the whole key; the envelope key check rejects
// any collision.
func fileName(key string) string {
	if len(key) <= maxFileName {
		return key
	}
	return fmt.Sprintf("%s.%016x", key[:maxFileName-17], xxhash.Sum64String(key))
}

func (c *ResponseCache) readDisk(key string) (Entry, error) {
	compressed, err := c.disk.Read(fileName(key))
	if err != nil {
		return Entry{}, err
	}
	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return Entry{}, fmt.Errorf("decompress %s: %w", key, err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Entry{}, fmt.Errorf("decode %s: %w", key, err)
	}
	if env.Key != key {
		return Entry{}, fmt.Errorf("decode %s: entry belongs to %s", key, env.Key)
	}
	return Entry{Key: env.Key, Payload: env.Payload, StoredAt: env.StoredAt}, nil
}

func (c *ResponseCache) writeDisk(e Entry) error {
	raw, err := json.Marshal(envelope{Key: e.Key, StoredAt: e.StoredAt, Payload: e.Payload})
	if err != nil {
		return err
	}
	return c.disk.Write(fileName(e.Key), snappy.Encode(nil, raw))
}

func (c *ResponseCache) setError(err error) {
	c.mu.Lock()
	c.lastError = err
	c.mu.Unlock()
}

func (c *ResponseCache) count(tier, outcome string) {
	c.lookups.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("cache", c.cfg.Name),
		attribute.String("tier", tier),
		attribute.String("outcome", outcome),
	))
}

func (c *ResponseCache) recordWrite(outcome string) {
	c.writes.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("cache", c.cfg.Name),
		attribute.String("outcome", outcome),
	))
}
