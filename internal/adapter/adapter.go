package adapter

import (
	"context"

	"github.com/teamcomm/relaybot/internal/ingress"
)

// EventHandler is the callback adapters invoke for each normalized inbound
// event. It keeps adapters decoupled from the relay loop.
type EventHandler func(ctx context.Context, evt *ingress.Event) error

// Button is one inline keyboard choice; Token round-trips through the
// platform as the callback payload.
type Button struct {
	Text  string
	Token string
}

// InputAdapter receives events from the chat platform.
type InputAdapter interface {
	// Name returns the adapter name (e.g. "telegram").
	Name() string

	// Start begins listening for events. Must respect context cancellation.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the adapter.
	Stop(ctx context.Context) error

	// Health checks if the adapter is connected.
	Health(ctx context.Context) error
}

// Transport sends messages out to the chat platform. The relay core only
// ever talks to this interface; per-recipient failures are the caller's to
// tolerate.
type Transport interface {
	// SendText delivers a plain text message to a chat.
	SendText(ctx context.Context, chatID int64, text string) error

	// SendKeyboard delivers a text message with a one-row inline keyboard.
	SendKeyboard(ctx context.Context, chatID int64, text string, buttons []Button) error

	// SendDocument re-sends a platform document reference with a caption.
	SendDocument(ctx context.Context, chatID int64, fileID string, caption string) error

	// ForwardRaw forwards an original message verbatim.
	ForwardRaw(ctx context.Context, targetChatID, originChatID int64, messageID int) error
}
