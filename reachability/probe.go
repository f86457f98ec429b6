package reachability

import (
	"context"
	"net"
	"sync"
	"time"
)

// DialFunc opens a connection; it matches net.Dialer.DialContext.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// ProbeSource derives flags from periodic TCP dials to a host. A successful
// dial reports the host reachable; anything else reports no flags. It cannot
// tell cellular from other interfaces.
type ProbeSource struct {
	addr     string
	interval time.Duration
	timeout  time.Duration
	dial     DialFunc

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// ProbeOption configures a ProbeSource.
type ProbeOption func(*ProbeSource)

// WithDialer overrides how connections are opened.
func WithDialer(dial DialFunc) ProbeOption {
	return func(p *ProbeSource) { p.dial = dial }
}

// WithTimeout bounds each dial. Defaults to 5s.
func WithTimeout(d time.Duration) ProbeOption {
	return func(p *ProbeSource) { p.timeout = d }
}

// NewProbeSource probes addr (host:port) every interval.
func NewProbeSource(addr string, interval time.Duration, opts ...ProbeOption) *ProbeSource {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	d := &net.Dialer{}
	p := &ProbeSource{addr: addr, interval: interval, timeout: 5 * time.Second, dial: d.DialContext}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Flags dials once and reports the result. It always succeeds.
func (p *ProbeSource) Flags() (Flags, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	conn, err := p.dial(ctx, "tcp", p.addr)
	if err != nil {
		return 0, true
	}
	_ = conn.Close()
	return FlagReachable, true
}

// SetCallback starts polling into fn, or stops polling when fn is nil.
func (p *ProbeSource) SetCallback(fn func(Flags)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stop != nil {
		close(p.stop)
		<-p.done
		p.stop, p.done = nil, nil
	}
	if fn == nil {
		return nil
	}

	stop, done := make(chan struct{}), make(chan struct{})
	p.stop, p.done = stop, done
	go p.poll(fn, stop, done)
	return nil
}

func (p *ProbeSource) poll(fn func(Flags), stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			f, _ := p.Flags()
			fn(f)
		}
	}
}
