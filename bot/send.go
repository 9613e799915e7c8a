package bot

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// messageLimit is Telegram's maximum message length in characters.
const messageLimit = 4096

// sender is the slice of the Telegram client the handlers need, split
// out so tests can substitute a recording fake.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// send delivers one message, retrying once when Telegram asks the bot
// to slow down.
func (b *Bot) send(ctx context.Context, c tgbotapi.Chattable) error {
	_, err := b.sender.Send(c)
	var tgErr *tgbotapi.Error
	if err != nil && errors.As(err, &tgErr) && tgErr.RetryAfter > 0 {
		wait := time.Duration(tgErr.RetryAfter) * time.Second
		b.logger.Warn("rate limited by Telegram", "wait", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		_, err = b.sender.Send(c)
	}
	return err
}

// reply sends text to a chat, splitting it when it exceeds Telegram's
// message limit. Delivery failures are logged, not propagated, so a
// failed send never derails a session.
func (b *Bot) reply(ctx context.Context, chatID int64, text, parseMode string, markup any) {
	for _, chunk := range splitMessage(text, messageLimit) {
		msg := tgbotapi.NewMessage(chatID, chunk)
		msg.ParseMode = parseMode
		if markup != nil {
			msg.ReplyMarkup = markup
		}
		if err := b.send(ctx, msg); err != nil {
			b.logger.Error("send message", "chat_id", chatID, "error", err)
			return
		}
	}
}

// splitMessage breaks text into chunks of at most limit runes,
// preferring to split at a newline, then at whitespace, and only then
// mid-word.
func splitMessage(text string, limit int) []string {
	text = strings.TrimSpace(text)

	var chunks []string
	for text != "" {
		if utf8.RuneCountInString(text) <= limit {
			chunks = append(chunks, text)
			break
		}
		at := splitPoint(text, limit)
		if chunk := strings.TrimSpace(text[:at]); chunk != "" {
			chunks = append(chunks, chunk)
		}
		text = strings.TrimSpace(text[at:])
	}
	return chunks
}

// splitPoint returns the byte offset at which to cut text so that the
// first chunk stays within limit runes.
func splitPoint(text string, limit int) int {
	lastNewline := -1
	lastSpace := -1
	count := 0
	for i, r := range text {
		if count == limit {
			switch {
			case lastNewline > 0:
				return lastNewline
			case lastSpace > 0:
				return lastSpace
			default:
				return i
			}
		}
		count++
		if r == '\n' {
			lastNewline = i
		} else if unicode.IsSpace(r) {
			lastSpace = i
		}
	}
	return len(text)
}
