package notify

import (
	"context"
	"fmt"
	"html"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// telegram rejects messages above 4096 characters
const telegramLimit = 4000

type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return newTelegram(bot, chatID), nil
}

func newTelegram(bot *tgbotapi.BotAPI, chatID int64) *Telegram {
	//turn this on in case of debug
	//bot.Debug = true
	return &Telegram{bot: bot, chatID: chatID}
}

func (t *Telegram) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "HTML" //use HTML for bold/pre
	_, err := t.bot.Send(msg)
	return err
}

// Notify posts the subject in bold followed by the body as preformatted chunks.
func (t *Telegram) Notify(ctx context.Context, subject, body string) error {
	chunks := splitText(body, telegramLimit)
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		text := "<pre>" + html.EscapeString(chunk) + "</pre>"
		if i == 0 {
			text = fmt.Sprintf("📣 <b>%s</b>\n%s", html.EscapeString(subject), text)
		}
		if err := t.SendMessage(text); err != nil {
			return fmt.Errorf("telegram send: %w", err)
		}
	}
	return nil
}

// splitText cuts s into pieces of at most limit runes, preferring line breaks.
func splitText(s string, limit int) []string {
	if utf8.RuneCountInString(s) <= limit {
		return []string{s}
	}
	var out []string
	runes := []rune(s)
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		out = append(out, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}
