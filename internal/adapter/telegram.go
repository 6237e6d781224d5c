package adapter

import (
	"context"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/teamcomm/relaybot/internal/config"
	"github.com/teamcomm/relaybot/internal/errors"
	"github.com/teamcomm/relaybot/internal/ingress"
)

type TelegramAdapter struct {
	token         string
	updateTimeout int
	eventHandler  EventHandler
	bot           *tgbotapi.BotAPI
	updates       tgbotapi.UpdatesChannel
}

func NewTelegramAdapter(token string, eventHandler EventHandler, updateTimeout int) *TelegramAdapter {
	if updateTimeout <= 0 {
		updateTimeout = config.DefaultTelegramUpdateTimeout
	}
	return &TelegramAdapter{
		token:         token,
		updateTimeout: updateTimeout,
		eventHandler:  eventHandler,
	}
}

func (t *TelegramAdapter) Name() string {
	return "telegram"
}

func (t *TelegramAdapter) Start(ctx context.Context) error {
	var err error
	t.bot, err = tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return errors.Wrap(err, "failed to init telegram bot")
	}

	slog.Info("Telegram adapter started", "user", t.bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = t.updateTimeout

	t.updates = t.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case update := <-t.updates:
				t.handleUpdate(ctx, update)
			}
		}
	}()

	return nil
}

func (t *TelegramAdapter) Stop(ctx context.Context) error {
	if t.bot != nil {
		t.bot.StopReceivingUpdates()
	}
	return nil
}

func (t *TelegramAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var evt *ingress.Event

	switch {
	case update.CallbackQuery != nil:
		query := update.CallbackQuery
		// Ack the button press immediately so the client stops its spinner,
		// independent of how the relay resolves the token.
		if _, err := t.bot.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
			slog.Warn("Failed to answer callback query", "error", err)
		}

		evt = ingress.NewEvent(t.Name(), ingress.KindCallback)
		evt.CallbackToken = query.Data
		evt.SenderID = query.From.ID
		evt.SenderHandle = query.From.UserName
		evt.SenderName = displayName(query.From)
		if query.Message != nil {
			evt.ChatID = query.Message.Chat.ID
			evt.MessageID = query.Message.MessageID
		}

	case update.Message != nil:
		msg := update.Message
		if msg.From == nil {
			return
		}

		evt = ingress.NewEvent(t.Name(), ingress.KindMessage)
		evt.ChatID = msg.Chat.ID
		evt.MessageID = msg.MessageID
		evt.SenderID = msg.From.ID
		evt.SenderHandle = msg.From.UserName
		evt.SenderName = displayName(msg.From)
		evt.Text = msg.Text
		evt.Caption = msg.Caption
		if msg.Document != nil {
			evt.Document = &ingress.Document{
				FileID:   msg.Document.FileID,
				FileName: msg.Document.FileName,
			}
		}

		if !evt.HasPayload() && !strings.HasPrefix(msg.Text, "/") {
			return
		}

	default:
		return
	}

	if t.eventHandler != nil {
		if err := t.eventHandler(ctx, evt); err != nil {
			slog.Error("Failed to handle Telegram event", "error", err)
		}
	}
}

func (t *TelegramAdapter) SendText(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := t.bot.Send(msg); err != nil {
		return errors.Wrap(err, "failed to send telegram message")
	}
	slog.Debug("Telegram message sent", "chat_id", chatID)
	return nil
}

func (t *TelegramAdapter) SendKeyboard(ctx context.Context, chatID int64, text string, buttons []Button) error {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Token))
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(row)
	if _, err := t.bot.Send(msg); err != nil {
		return errors.Wrap(err, "failed to send telegram keyboard")
	}
	return nil
}

func (t *TelegramAdapter) SendDocument(ctx context.Context, chatID int64, fileID string, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileID(fileID))
	doc.Caption = caption
	doc.ParseMode = tgbotapi.ModeMarkdown
	if _, err := t.bot.Send(doc); err != nil {
		return errors.Wrap(err, "failed to send telegram document")
	}
	return nil
}

func (t *TelegramAdapter) ForwardRaw(ctx context.Context, targetChatID, originChatID int64, messageID int) error {
	fwd := tgbotapi.NewForward(targetChatID, originChatID, messageID)
	if _, err := t.bot.Send(fwd); err != nil {
		return errors.Wrap(err, "failed to forward telegram message")
	}
	return nil
}

func (t *TelegramAdapter) Health(ctx context.Context) error {
	if t.bot == nil {
		return errors.Transient("Telegram bot not initialized")
	}
	if _, err := t.bot.GetMe(); err != nil {
		return errors.Transient("Telegram connection failed: " + err.Error())
	}
	return nil
}

func displayName(user *tgbotapi.User) string {
	if user == nil {
		return ""
	}
	if user.UserName != "" {
		return "@" + user.UserName
	}
	name := user.FirstName
	if user.LastName != "" {
		name += " " + user.LastName
	}
	return name
}
