package alert

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// telegramMaxText is the Bot API limit for one message.
const telegramMaxText = 4096

// messageAPI is the part of the Telegram bot used to send messages.
type messageAPI interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TelegramSender delivers alerts to a Telegram chat.
type TelegramSender struct {
	bot    messageAPI
	chatID int64
}

// NewTelegramSender creates a [TelegramSender] for the bot identified by
// token. The token is not verified until the first message is sent.
func NewTelegramSender(token string, chatID int64, opts ...bot.Option) (*TelegramSender, error) {
	if token == "" {
		return nil, errors.New("telegram token is required")
	}
	if chatID == 0 {
		return nil, errors.New("telegram chat id is required")
	}

	b, err := bot.New(token, append([]bot.Option{bot.WithSkipGetMe()}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &TelegramSender{bot: b, chatID: chatID}, nil
}

// Name implements [Sender].
func (s *TelegramSender) Name() string {
	return "telegram"
}

// Send implements [Sender]. The plain-text body is used, truncated to the
// Bot API message limit.
func (s *TelegramSender) Send(ctx context.Context, msg Message) error {
	text := msg.Subject + "\n\n" + msg.Text
	if r := []rune(text); len(r) > telegramMaxText {
		text = string(r[:telegramMaxText-1]) + "…"
	}

	if _, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: s.chatID,
		Text:   text,
	}); err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	return nil
}
