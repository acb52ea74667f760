// Package telegram pushes generated posts to a Telegram channel.
package telegram

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/cryptopulse/cryptopulse/internal/models"
)

// Publisher sends posts through the Telegram Bot API.
type Publisher struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// New creates a Publisher for the given bot token and channel chat id.
func New(botToken, chatID string) (*Publisher, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram: create bot: %w", err)
	}
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("telegram: invalid chat id: %w", err)
	}
	return &Publisher{bot: bot, chatID: chatIDInt}, nil
}

// Publish sends the post, attaching the generated image as a photo
// when present. Hashtags are appended on their own line with a "#"
// normalized onto each tag.
func (p *Publisher) Publish(_ context.Context, post *models.GeneratedPost) error {
	text := post.Content
	if tags := renderHashtags(post.Hashtags); tags != "" {
		text += "\n\n" + tags
	}

	if post.ImageURL != "" {
		photo, err := decodeDataURI(post.ImageURL)
		if err != nil {
			return fmt.Errorf("telegram: decode image: %w", err)
		}
		msg := tgbotapi.NewPhoto(p.chatID, tgbotapi.FileBytes{Name: "chart.png", Bytes: photo})
		msg.Caption = text
		if _, err := p.bot.Send(msg); err != nil {
			return fmt.Errorf("telegram: send photo: %w", err)
		}
		return nil
	}

	msg := tgbotapi.NewMessage(p.chatID, text)
	if _, err := p.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram: send message: %w", err)
	}
	return nil
}

// renderHashtags joins tags, adding the leading marker the model may
// or may not have included.
func renderHashtags(tags []string) string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !strings.HasPrefix(t, "#") {
			t = "#" + t
		}
		out = append(out, t)
	}
	return strings.Join(out, " ")
}

// decodeDataURI extracts the payload of a base64 data URI.
func decodeDataURI(uri string) ([]byte, error) {
	_, payload, found := strings.Cut(uri, ";base64,")
	if !found {
		return nil, fmt.Errorf("not a base64 data URI")
	}
	return base64.StdEncoding.DecodeString(payload)
}
