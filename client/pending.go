package client

import "sync"

// pending counts submissions that have not finished. Unlike a WaitGroup it
// may be incremented from zero while another goroutine waits.
type pending struct {
	mu sync.Mutex
	n  int

	// idle is closed while n is zero.
	idle chan struct{}
}

func newPending() *pending {
	p := &pending{idle: make(chan struct{})}
	close(p.idle)
	return p
}

func (p *pending) add() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.n == 0 {
		p.idle = make(chan struct{})
	}
	p.n++
}

func (p *pending) done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.n--
	if p.n == 0 {
		close(p.idle)
	}
}

// idleCh returns a channel closed once no submission is pending.
func (p *pending) idleCh() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idle
}

func (p *pending) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.n
}
