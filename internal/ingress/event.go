package ingress

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type EventKind string

const (
	KindMessage  EventKind = "message"
	KindCallback EventKind = "callback"
)

// Document references an uploaded file on the platform side. Only the
// reference travels through the relay; content is never persisted.
type Document struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
}

// Event is the normalized form of one inbound transport update: either a
// member message or a callback (button press) continuing a pending workflow.
type Event struct {
	ID     string    `json:"id"` // ULID
	Source string    `json:"source"`
	Kind   EventKind `json:"kind"`

	ChatID    int64 `json:"chat_id"`
	MessageID int   `json:"message_id"`

	SenderID     int64  `json:"sender_id"`
	SenderHandle string `json:"sender_handle,omitempty"`
	SenderName   string `json:"sender_name,omitempty"`

	Text     string    `json:"text,omitempty"`
	Document *Document `json:"document,omitempty"`
	Caption  string    `json:"caption,omitempty"`

	// CallbackToken carries the action and correlation id of a button press.
	CallbackToken string `json:"callback_token,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewEvent creates a normalized event with a fresh ULID.
func NewEvent(source string, kind EventKind) *Event {
	return &Event{
		ID:        ulid.Make().String(),
		Source:    source,
		Kind:      kind,
		CreatedAt: time.Now(),
	}
}

// HasPayload reports whether the event carries anything worth routing.
func (e *Event) HasPayload() bool {
	return e.Text != "" || e.Document != nil
}
