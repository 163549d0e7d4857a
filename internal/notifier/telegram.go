package notifier

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pillarlog/pillarlog/internal/logger"
)

// Telegram delivers reminders as bot messages. Useful when the tray app is
// not installed or the user wants reminders on their phone.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram dials the bot API. An empty token or zero chat id yields an
// unavailable notifier rather than an error: reminders simply stay silent.
func NewTelegram(token string, chatID int64) *Telegram {
	t := &Telegram{chatID: chatID}
	if token == "" || chatID == 0 {
		return t
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Warn("telegram bot unavailable", "err", err)
		return t
	}
	t.bot = bot
	return t
}

func (t *Telegram) Available() bool {
	return t.bot != nil && t.chatID != 0
}

func (t *Telegram) Request() bool {
	return t.Available()
}

func (t *Telegram) Raise(title, body, tag string) error {
	if !t.Available() {
		return fmt.Errorf("telegram notifier not configured")
	}

	text := fmt.Sprintf("<b>%s</b>\n%s", title, body)
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// Cancel is a no-op: sent messages cannot be recalled.
func (t *Telegram) Cancel(_ string) {}
