package reachability

import (
	"context"
	"sync"

	"github.com/kbukum/vimeonet/component"
	"github.com/kbukum/vimeonet/logger"
)

// Source is the platform boundary: it reads the current flags and reports
// flag changes to a single callback.
type Source interface {
	// Flags returns the current flags; ok is false when they cannot be read.
	Flags() (f Flags, ok bool)
	// SetCallback registers fn for change notifications. A nil fn stops them.
	SetCallback(fn func(Flags)) error
}

// Listener receives status changes.
type Listener func(Status)

// Manager classifies a Source and notifies a listener of status changes.
type Manager struct {
	src      Source
	log      *logger.Logger
	onChange Listener

	// delivery serializes listener calls so statuses arrive in the order
	// they were observed.
	delivery sync.Mutex

	mu        sync.Mutex
	listener  Listener
	previous  *Status
	listening bool
	// changes counts source callbacks; a pending initial notification is
	// dropped once a callback has reported newer flags.
	changes   uint64
}

var _ component.Component = (*Manager)(nil)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(l *logger.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithListener sets the listener installed when the manager is started as a
// component.
func WithListener(fn Listener) Option {
	return func(m *Manager) { m.onChange = fn }
}

// NewManager creates a manager over src.
func NewManager(src Source, opts ...Option) *Manager {
	m := &Manager{src: src}
	for _, opt := range opts {
		opt(m)
	}
	m.log = logger.OrNop(m.log).WithComponent("reachability")
	return m
}

// Status returns the current status, or StatusUnknown when flags are
// unavailable.
func (m *Manager) Status() Status {
	f, ok := m.src.Flags()
	if !ok {
		return StatusUnknown
	}
	return StatusFromFlags(f)
}

// IsReachable reports whether the host is reachable over any interface.
func (m *Manager) IsReachable() bool { return m.Status().IsReachable() }

// IsReachableOnCellular reports whether the host is reachable over cellular.
func (m *Manager) IsReachableOnCellular() bool {
	return m.Status() == Reachable(Cellular)
}

// IsReachableOnEthernetOrWiFi reports whether the host is reachable over
// ethernet or WiFi.
func (m *Manager) IsReachableOnEthernetOrWiFi() bool {
	return m.Status() == Reachable(EthernetOrWiFi)
}

// StartListening replaces any current listener with fn and reports whether
// the source accepted the registration. When the current flags are readable,
// fn is notified of the current status once on a separate goroutine, unless
// a source callback has already reported a change.
func (m *Manager) StartListening(fn Listener) bool {
	m.StopListening()

	m.mu.Lock()
	m.listener = fn
	m.listening = true
	seen := m.changes
	m.mu.Unlock()

	if err := m.src.SetCallback(m.changed); err != nil {
		m.mu.Lock()
		m.listening = false
		m.listener = nil
		m.mu.Unlock()
		m.log.Warn("reachability callback not registered", logger.Fields(logger.FieldError, err.Error()))
		return false
	}
	if f, ok := m.src.Flags(); ok {
		go m.notify(f, func() bool { return m.changes == seen })
	}
	return true
}

// StopListening removes the listener and forgets the last status.
func (m *Manager) StopListening() {
	m.mu.Lock()
	wasListening := m.listening
	m.listening = false
	m.listener = nil
	m.previous = nil
	m.mu.Unlock()

	if wasListening {
		_ = m.src.SetCallback(nil)
	}
}

func (m *Manager) changed(f Flags) {
	m.mu.Lock()
	m.changes++
	m.mu.Unlock()
	m.notify(f, nil)
}

// notify delivers the status of f unless it repeats the previous one. A
// non-nil current is checked under the manager lock and skips delivery
// when it reports false.
func (m *Manager) notify(f Flags, current func() bool) {
	status := StatusFromFlags(f)

	m.delivery.Lock()
	defer m.delivery.Unlock()

	m.mu.Lock()
	if !m.listening || (current != nil && !current()) || (m.previous != nil && *m.previous == status) {
		m.mu.Unlock()
		return
	}
	m.previous = &status
	fn := m.listener
	m.mu.Unlock()

	m.log.Debug("reachability changed", logger.Fields(logger.FieldStatus, status.String(), "flags", f.String()))
	if fn != nil {
		fn(status)
	}
}

// Name implements component.Component.
func (m *Manager) Name() string { return "reachability" }

// Start begins listening with the listener set by WithListener.
func (m *Manager) Start(context.Context) error {
	fn := m.onChange
	if fn == nil {
		fn = func(Status) {}
	}
	m.StartListening(fn)
	return nil
}

// Stop stops listening.
func (m *Manager) Stop(context.Context) error {
	m.StopListening()
	return nil
}

// Health reports degraded while the host is not reachable.
func (m *Manager) Health(context.Context) component.Health {
	s := m.Status()
	h := component.Health{Name: m.Name(), Status: component.StatusHealthy, Message: s.String()}
	if !s.IsReachable() {
		h.Status = component.StatusDegraded
	}
	return h
}
