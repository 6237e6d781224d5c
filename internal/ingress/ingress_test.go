package ingress

import (
	"context"
	"testing"
	"time"
)

func TestIngress_SubmitAndConsume(t *testing.T) {
	ing := NewIngress(10, RuntimeConfig{})

	evt := NewEvent("test", KindMessage)
	evt.SenderID = 1
	evt.Text = "hello"

	if err := ing.Submit(context.Background(), evt); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	select {
	case got := <-ing.Queue():
		if got.ID != evt.ID {
			t.Fatalf("queued event id = %s, want %s", got.ID, evt.ID)
		}
	default:
		t.Fatal("queue is empty after submit")
	}
}

func TestIngress_SubmitNil(t *testing.T) {
	ing := NewIngress(10, RuntimeConfig{})

	if err := ing.Submit(context.Background(), nil); err == nil {
		t.Fatal("Submit(nil) should fail")
	}
}

func TestIngress_BackpressureDropsWhenFull(t *testing.T) {
	ing := NewIngress(1, RuntimeConfig{SubmitTimeout: 20 * time.Millisecond})

	first := NewEvent("test", KindMessage)
	first.Text = "a"
	if err := ing.Submit(context.Background(), first); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	second := NewEvent("test", KindMessage)
	second.Text = "b"
	if err := ing.Submit(context.Background(), second); err == nil {
		t.Fatal("second submit should fail with backpressure")
	}
}

func TestNewEvent_AssignsULID(t *testing.T) {
	a := NewEvent("telegram", KindMessage)
	b := NewEvent("telegram", KindCallback)

	if a.ID == "" || b.ID == "" {
		t.Fatal("event id is empty")
	}
	if a.ID == b.ID {
		t.Fatal("event ids are not unique")
	}
	if a.Kind != KindMessage || b.Kind != KindCallback {
		t.Fatal("event kind not preserved")
	}
}

func TestEvent_HasPayload(t *testing.T) {
	evt := NewEvent("telegram", KindMessage)
	if evt.HasPayload() {
		t.Fatal("empty event should have no payload")
	}

	evt.Text = "hi"
	if !evt.HasPayload() {
		t.Fatal("text event should have payload")
	}

	evt.Text = ""
	evt.Document = &Document{FileID: "f1", FileName: "notes.pdf"}
	if !evt.HasPayload() {
		t.Fatal("document event should have payload")
	}
}
