package promise

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPromise_ResolveOnce(t *testing.T) {
	p := New[int]()
	var calls int32
	p.Then(func(v int, err error) {
		atomic.AddInt32(&calls, 1)
		if v != 7 || err != nil {
			t.Errorf("unexpected outcome %d, %v", v, err)
		}
	})

	if !p.Resolve(7) {
		t.Fatal("first resolve should win")
	}
	if p.Resolve(8) || p.Reject(errors.New("late")) || p.Cancel() {
		t.Error("later transitions must be no-ops")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected one callback, got %d", got)
	}

	v, err := p.Await(context.Background())
	if v != 7 || err != nil {
		t.Errorf("unexpected await result %d, %v", v, err)
	}
}

func TestPromise_Reject(t *testing.T) {
	p := New[string]()
	boom := errors.New("boom")
	p.Reject(boom)
	_, err := p.Await(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestPromise_CancelSuppressesCallbacks(t *testing.T) {
	p := New[int]()
	var called, hook int32
	p.Then(func(int, error) { atomic.AddInt32(&called, 1) })
	p.OnCancel(func() { atomic.AddInt32(&hook, 1) })

	if !p.Cancel() {
		t.Fatal("cancel of a pending promise should succeed")
	}
	if p.Resolve(1) {
		t.Error("resolve after cancel must fail")
	}
	p.Then(func(int, error) { atomic.AddInt32(&called, 1) })

	if atomic.LoadInt32(&called) != 0 {
		t.Error("callbacks must never fire after cancellation")
	}
	if atomic.LoadInt32(&hook) != 1 {
		t.Error("cancel hook should run once")
	}
	if !p.Cancelled() {
		t.Error("expected cancelled")
	}
	if _, err := p.Await(context.Background()); !errors.Is(err, ErrCancelled) {
		t.Errorf("expected ErrCancelled, got %v", err)
	}
}

func TestPromise_CancelAfterCompletionIsNoop(t *testing.T) {
	p := New[int]()
	var hook int32
	p.OnCancel(func() { atomic.AddInt32(&hook, 1) })
	p.Resolve(3)
	if p.Cancel() {
		t.Error("cancel after completion must be a no-op")
	}
	if atomic.LoadInt32(&hook) != 0 {
		t.Error("cancel hook must not run after completion")
	}
	if v, _ := p.Await(context.Background()); v != 3 {
		t.Errorf("original completion should win, got %d", v)
	}
}

func TestPromise_AwaitContext(t *testing.T) {
	p := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := p.Await(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if p.Cancelled() {
		t.Error("await timeout must not cancel the promise")
	}
}

func TestPromise_RaceResolveCancel(t *testing.T) {
	for i := 0; i < 200; i++ {
		p := New[int]()
		var delivered int32
		p.Then(func(int, error) { atomic.AddInt32(&delivered, 1) })

		var wg sync.WaitGroup
		var resolved, cancelled bool
		wg.Add(2)
		go func() { defer wg.Done(); resolved = p.Resolve(1) }()
		go func() { defer wg.Done(); cancelled = p.Cancel() }()
		wg.Wait()

		if resolved == cancelled {
			t.Fatalf("exactly one transition must win (resolved=%v cancelled=%v)", resolved, cancelled)
		}
		want := int32(0)
		if resolved {
			want = 1
		}
		if got := atomic.LoadInt32(&delivered); got != want {
			t.Fatalf("expected %d deliveries, got %d", want, got)
		}
	}
}
