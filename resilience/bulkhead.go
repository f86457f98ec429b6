package resilience

import "sync"

// BulkheadConfig configures a bulkhead.
type BulkheadConfig struct {
	// Name identifies this bulkhead in logs.
	Name string
	// MaxConcurrent is the maximum number of concurrent tasks.
	MaxConcurrent int
}

// Bulkhead limits concurrency of background work.
type Bulkhead struct {
	cfg BulkheadConfig
	sem chan struct{}
	wg  sync.WaitGroup
}

// NewBulkhead creates a bulkhead.
func NewBulkhead(cfg BulkheadConfig) *Bulkhead {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 10
	}
	return &Bulkhead{cfg: cfg, sem: make(chan struct{}, cfg.MaxConcurrent)}
}

// Go runs fn on a new goroutine once a slot is free. It never blocks the
// caller; queued work waits for a slot in the background.
func (b *Bulkhead) Go(fn func()) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.sem <- struct{}{}
		defer func() { <-b.sem }()
		fn()
	}()
}

// Wait blocks until all work started with Go has finished.
func (b *Bulkhead) Wait() { b.wg.Wait() }

// InUse returns the number of occupied slots.
func (b *Bulkhead) InUse() int { return len(b.sem) }
