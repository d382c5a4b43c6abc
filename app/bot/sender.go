package bot

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var _ MessageSender = (*TelegramSender)(nil)

// TelegramSender sends Markdown messages through the Telegram Bot API
// with link previews disabled.
type TelegramSender struct {
	api *tgbotapi.BotAPI
}

func NewTelegramSender(api *tgbotapi.BotAPI) *TelegramSender {
	return &TelegramSender{api: api}
}

func (s *TelegramSender) Send(userID string, text string) error {
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", userID, err)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message to %s: %w", userID, err)
	}
	return nil
}
