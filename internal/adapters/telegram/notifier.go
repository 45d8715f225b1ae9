package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Verdenroz/buff-ai/internal/adapters/config"
	"github.com/Verdenroz/buff-ai/internal/domain/post"
)

// Telegram rejects messages over 4096 characters; leave room for the header
const maxContentRunes = 3500

// Sender delivers one message to a chat. *Bot implements it.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Notifier announces newly ingested posts to a single chat
type Notifier struct {
	sender Sender
	chatID int64
}

// NewNotifier creates a notifier that posts to chatID
func NewNotifier(sender Sender, chatID int64) *Notifier {
	return &Notifier{sender: sender, chatID: chatID}
}

// NewNotifierFromConfig connects the bot when alerts are configured. It
// returns nil when they are not, which callers treat as disabled.
func NewNotifierFromConfig(cfg config.TelegramConfig) (*Notifier, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	bot, err := NewBot(Config{Token: cfg.BotToken})
	if err != nil {
		return nil, err
	}
	return NewNotifier(bot, cfg.ChatID), nil
}

// NotifyPost sends the post text, its time and the audio link if there is one
func (n *Notifier) NotifyPost(ctx context.Context, p post.Post, audioURL string) error {
	return n.sender.SendMessage(ctx, n.chatID, FormatPost(p, audioURL))
}

// FormatPost renders a post as a Telegram Markdown message
func FormatPost(p post.Post, audioURL string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*New post from %s*\n", tgbotapi.EscapeText(tgbotapi.ModeMarkdown, p.Author))
	fmt.Fprintf(&b, "_%s_\n\n", p.Time().UTC().Format(time.RFC1123))
	b.WriteString(tgbotapi.EscapeText(tgbotapi.ModeMarkdown, truncateRunes(p.Content, maxContentRunes)))
	if audioURL != "" {
		fmt.Fprintf(&b, "\n\n[Listen](%s)", audioURL)
	}

	return b.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
