package relay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/teamcomm/relaybot/internal/concurrency"
	"github.com/teamcomm/relaybot/internal/errors"
	"github.com/teamcomm/relaybot/internal/ingress"
)

// Loop consumes the ingress queue and drives the router, one event at a
// time. Processing is serial, so the per-sender lock is a guard for the day
// this widens into a pool: store mutations for one member never interleave.
type Loop struct {
	mu      sync.Mutex
	started bool
	quit    chan struct{}
	wg      sync.WaitGroup

	events <-chan *ingress.Event
	router *Router
	locks  *concurrency.KeyLockManager

	shutdownTimeout time.Duration
}

func NewLoop(events <-chan *ingress.Event, router *Router, locks *concurrency.KeyLockManager, shutdownTimeout time.Duration) *Loop {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	return &Loop{
		events:          events,
		router:          router,
		locks:           locks,
		shutdownTimeout: shutdownTimeout,
	}
}

func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.started {
		return errors.InvalidInput("relay loop already started")
	}
	l.started = true
	l.quit = make(chan struct{})

	l.wg.Add(1)
	concurrency.SafeGo(func() {
		defer l.wg.Done()

		slog.Info("Relay loop started")
		l.run(ctx)
		slog.Info("Relay loop stopped")
	}, nil)

	return nil
}

func (l *Loop) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.quit:
			return
		case evt, ok := <-l.events:
			if !ok {
				return
			}
			l.process(ctx, evt)
		}
	}
}

func (l *Loop) process(ctx context.Context, evt *ingress.Event) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic while processing event", "event_id", evt.ID, "panic", r)
		}
	}()

	key := fmt.Sprintf("%d", evt.SenderID)
	l.locks.Lock(key)
	defer l.locks.Unlock(key)

	l.router.Handle(ctx, evt)

	slog.Debug("Event processed", "event_id", evt.ID, "duration", time.Since(start))
}

func (l *Loop) Stop(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.started {
		return nil
	}

	close(l.quit)

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		l.started = false
		return nil
	case <-time.After(l.shutdownTimeout):
		slog.Warn("Relay loop shutdown timeout")
		l.started = false
		return errors.Internal("shutdown timeout")
	case <-ctx.Done():
		return ctx.Err()
	}
}
