package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

var ErrNoBotToken = errors.New("telegram bot token is not configured")

// SoundPreferences reports whether an owner's alerts should make a sound.
type SoundPreferences interface {
	SoundEnabled(ctx context.Context, ownerID string) (bool, error)
}

// TelegramAlerter sends alerts through the Bot API sendMessage method. The
// owner id is the chat id.
type TelegramAlerter struct {
	bot   *bot.Bot
	sound SoundPreferences
}

// NewTelegramAlerter returns an alerter for the bot. baseURL and timeout
// fall back to the public Bot API and 10s; sound may be nil.
func NewTelegramAlerter(token, baseURL string, timeout time.Duration, sound SoundPreferences) (*TelegramAlerter, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrNoBotToken
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := []bot.Option{
		bot.WithSkipGetMe(),
		bot.WithHTTPClient(timeout, &http.Client{Timeout: timeout}),
	}
	if baseURL != "" {
		opts = append(opts, bot.WithServerURL(strings.TrimRight(baseURL, "/")))
	}

	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", hideToken(err))
	}
	return &TelegramAlerter{bot: b, sound: sound}, nil
}

func (a *TelegramAlerter) Alert(ctx context.Context, ownerID string, msg Message) error {
	if ownerID == "" {
		return errors.New("chat id is required")
	}
	if strings.TrimSpace(msg.Text) == "" {
		return errors.New("message text is required")
	}

	params := &bot.SendMessageParams{
		ChatID:    ownerID,
		Text:      msg.Text,
		ParseMode: models.ParseModeHTML,
	}
	if a.sound != nil {
		if on, err := a.sound.SoundEnabled(ctx, ownerID); err == nil && !on {
			params.DisableNotification = true
		}
	}

	if _, err := a.bot.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("telegram sendMessage: %w", hideToken(err))
	}
	return nil
}

// hideToken drops the request url from transport errors; it carries the
// bot token.
func hideToken(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}

// LogAlerter writes alerts to the log. It stands in when no bot is set up.
type LogAlerter struct {
	Logger *slog.Logger
}

func (a LogAlerter) Alert(_ context.Context, ownerID string, msg Message) error {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("reminder alert", "component", "notify", "owner_id", ownerID,
		"reminder_id", msg.ReminderID, "client", msg.ClientName, "text", msg.Text)
	return nil
}
