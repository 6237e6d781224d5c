package ingress

import (
	"context"
	"log/slog"
	"time"

	"github.com/teamcomm/relaybot/internal/config"
	"github.com/teamcomm/relaybot/internal/errors"
)

type RuntimeConfig struct {
	SubmitTimeout time.Duration
}

// Ingress is the bounded queue between the transport adapter and the relay
// loop. Events are consumed serially so per-message processing runs to
// completion before the next event is observed.
type Ingress struct {
	queue         chan *Event
	submitTimeout time.Duration
}

func NewIngress(queueSize int, runtimeCfg RuntimeConfig) *Ingress {
	if queueSize <= 0 {
		queueSize = config.DefaultIngressQueueSize
	}
	if runtimeCfg.SubmitTimeout <= 0 {
		d, err := config.DurationOrDefault("", config.DefaultIngressSubmitTimeout)
		if err == nil {
			runtimeCfg.SubmitTimeout = d
		}
	}

	return &Ingress{
		queue:         make(chan *Event, queueSize),
		submitTimeout: runtimeCfg.SubmitTimeout,
	}
}

// Submit enqueues an event. It returns an error when the queue stays full
// past the submit timeout (backpressure) rather than blocking the transport.
func (i *Ingress) Submit(ctx context.Context, evt *Event) error {
	if evt == nil {
		return errors.InvalidInput("event is nil")
	}

	select {
	case i.queue <- evt:
		slog.Debug("Event queued", "id", evt.ID, "kind", evt.Kind, "sender", evt.SenderID)
		return nil
	case <-time.After(i.submitTimeout):
		slog.Warn("Ingress queue full, dropping event", "id", evt.ID)
		return errors.Transient("ingress queue full")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Queue exposes the consumer side for the relay loop.
func (i *Ingress) Queue() <-chan *Event {
	return i.queue
}

// Close closes the queue; the relay loop drains whatever is buffered.
func (i *Ingress) Close() {
	close(i.queue)
}
