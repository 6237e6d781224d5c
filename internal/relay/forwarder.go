package relay

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/teamcomm/relaybot/internal/adapter"
	"github.com/teamcomm/relaybot/internal/ingress"
)

// Result is the outcome of delivering one copy to one recipient.
type Result struct {
	Recipient int64
	Err       error
}

// Forwarder fans a message out to independent recipients. Delivery is best
// effort: recipients are contacted concurrently, each under its own timeout,
// and one slow or failing recipient never blocks or aborts the rest.
type Forwarder struct {
	transport adapter.Transport
	timeout   time.Duration
}

func NewForwarder(transport adapter.Transport, timeout time.Duration) *Forwarder {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Forwarder{transport: transport, timeout: timeout}
}

// Forward delivers the annotated payload of evt to every recipient and
// returns per-recipient results in recipient order.
func (f *Forwarder) Forward(ctx context.Context, recipients []int64, header string, evt *ingress.Event) []Result {
	results := make([]Result, len(recipients))

	var wg sync.WaitGroup
	for i, recipient := range recipients {
		wg.Add(1)
		go func(i int, recipient int64) {
			defer wg.Done()

			sendCtx, cancel := context.WithTimeout(ctx, f.timeout)
			defer cancel()

			err := f.deliver(sendCtx, recipient, header, evt)
			if err != nil {
				slog.Error("Failed to forward message", "recipient", recipient, "error", err)
			}
			results[i] = Result{Recipient: recipient, Err: err}
		}(i, recipient)
	}
	wg.Wait()

	ok, failed := Summarize(results)
	slog.Info("Fan-out complete", "recipients", len(recipients), "delivered", ok, "failed", failed)
	return results
}

func (f *Forwarder) deliver(ctx context.Context, recipient int64, header string, evt *ingress.Event) error {
	switch {
	case evt.Document != nil:
		caption := header
		if evt.Caption != "" {
			caption += "\n\n" + evt.Caption
		}
		return f.transport.SendDocument(ctx, recipient, evt.Document.FileID, caption)
	case evt.Text != "":
		return f.transport.SendText(ctx, recipient, header+"\n\n"+evt.Text)
	default:
		return f.transport.ForwardRaw(ctx, recipient, evt.ChatID, evt.MessageID)
	}
}

// Summarize aggregates fan-out results into success and failure counts.
func Summarize(results []Result) (ok, failed int) {
	for _, r := range results {
		if r.Err != nil {
			failed++
		} else {
			ok++
		}
	}
	return ok, failed
}
