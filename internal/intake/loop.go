package intake

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// Scheduler serialises orchestrator work. Everything posted runs on a single
// goroutine; Go runs blocking work elsewhere, which must Post its result back.
type Scheduler interface {
	Post(fn func())
	AfterFunc(d time.Duration, fn func())
	Go(fn func())
}

// Loop is the production Scheduler: a buffered task channel drained by one
// goroutine.
type Loop struct {
	tasks  chan func()
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup // background calls
	done   chan struct{}  // closed when Run returns
	logger *slog.Logger

	mu     sync.Mutex
	timers map[*time.Timer]struct{}
}

// NewLoop creates a loop with room for queueSize pending tasks.
func NewLoop(queueSize int, logger *slog.Logger) *Loop {
	if queueSize <= 0 {
		queueSize = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Loop{
		tasks:  make(chan func(), queueSize),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		logger: logger,
		timers: make(map[*time.Timer]struct{}),
	}
}

// Run processes tasks until Close is called.
func (l *Loop) Run() {
	defer close(l.done)
	for {
		select {
		case <-l.ctx.Done():
			return
		case fn := <-l.tasks:
			l.exec(fn)
		}
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("intake task panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	fn()
}

// Post queues fn for the loop goroutine. It blocks while the queue is full
// and drops fn once the loop is closed.
func (l *Loop) Post(fn func()) {
	select {
	case l.tasks <- fn:
	case <-l.ctx.Done():
	}
}

// AfterFunc posts fn after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ctx.Err() != nil {
		return
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		l.mu.Lock()
		delete(l.timers, t)
		l.mu.Unlock()
		l.Post(fn)
	})
	l.timers[t] = struct{}{}
}

// Go runs fn on its own goroutine. Close waits for it.
func (l *Loop) Go(fn func()) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		fn()
	}()
}

// Close stops the loop, cancels pending timers and waits up to timeout for
// background calls to return.
func (l *Loop) Close(timeout time.Duration) {
	l.mu.Lock()
	l.cancel()
	for t := range l.timers {
		t.Stop()
		delete(l.timers, t)
	}
	l.mu.Unlock()

	waited := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(timeout):
		l.logger.Warn("intake loop close timed out waiting for background calls")
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
