package adapter

import (
	"context"
	"sync"
)

// MemoryTransport records outbound traffic instead of hitting the platform.
// Used in tests and as a no-op transport.
type MemoryTransport struct {
	mu sync.Mutex

	Texts     []MemoryText
	Keyboards []MemoryKeyboard
	Documents []MemoryDocument
	Forwards  []MemoryForward

	// FailFor makes sends to these chat ids return an error.
	FailFor map[int64]error
}

type MemoryText struct {
	ChatID int64
	Text   string
}

type MemoryKeyboard struct {
	ChatID  int64
	Text    string
	Buttons []Button
}

type MemoryDocument struct {
	ChatID  int64
	FileID  string
	Caption string
}

type MemoryForward struct {
	TargetChatID int64
	OriginChatID int64
	MessageID    int
}

func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{FailFor: make(map[int64]error)}
}

func (m *MemoryTransport) SendText(ctx context.Context, chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.FailFor[chatID]; ok {
		return err
	}
	m.Texts = append(m.Texts, MemoryText{ChatID: chatID, Text: text})
	return nil
}

func (m *MemoryTransport) SendKeyboard(ctx context.Context, chatID int64, text string, buttons []Button) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.FailFor[chatID]; ok {
		return err
	}
	m.Keyboards = append(m.Keyboards, MemoryKeyboard{ChatID: chatID, Text: text, Buttons: append([]Button(nil), buttons...)})
	return nil
}

func (m *MemoryTransport) SendDocument(ctx context.Context, chatID int64, fileID string, caption string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.FailFor[chatID]; ok {
		return err
	}
	m.Documents = append(m.Documents, MemoryDocument{ChatID: chatID, FileID: fileID, Caption: caption})
	return nil
}

func (m *MemoryTransport) ForwardRaw(ctx context.Context, targetChatID, originChatID int64, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.FailFor[targetChatID]; ok {
		return err
	}
	m.Forwards = append(m.Forwards, MemoryForward{TargetChatID: targetChatID, OriginChatID: originChatID, MessageID: messageID})
	return nil
}

// TextsFor returns the text messages recorded for a chat.
func (m *MemoryTransport) TextsFor(chatID int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, t := range m.Texts {
		if t.ChatID == chatID {
			out = append(out, t.Text)
		}
	}
	return out
}
