package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/story2video/internal/logging"
)

// pollTimeout is the long-polling timeout in seconds.
const pollTimeout = 60

// TelegramMessenger talks to the Telegram Bot API by long polling.
type TelegramMessenger struct {
	api    *tgbotapi.BotAPI
	logger zerolog.Logger
}

func NewTelegramMessenger(token string) (*TelegramMessenger, error) {
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	return &TelegramMessenger{
		api:    api,
		logger: logging.WithComponent("telegram"),
	}, nil
}

func (t *TelegramMessenger) Reply(ctx context.Context, chatID int64, text string, html bool) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if html {
		msg.ParseMode = tgbotapi.ModeHTML
	}
	sent, err := t.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (t *TelegramMessenger) Edit(ctx context.Context, chatID int64, messageID int, text string) error {
	_, err := t.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text))
	return err
}

func (t *TelegramMessenger) SendVideo(ctx context.Context, chatID int64, path string) error {
	_, err := t.api.Send(tgbotapi.NewVideo(chatID, tgbotapi.FilePath(path)))
	return err
}

// Run polls for updates until ctx is done. Every /video message is handled
// on its own goroutine; Run returns after all of them have finished.
func (t *TelegramMessenger) Run(ctx context.Context, h *Handler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := t.api.GetUpdatesChan(u)

	t.logger.Info().Str("bot", t.api.Self.UserName).Msg("polling for updates")

	var g errgroup.Group

	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			t.logger.Info().Msg("stopping, waiting for running jobs")
			return g.Wait()
		case update, ok := <-updates:
			if !ok {
				return g.Wait()
			}
			msg := update.Message
			if msg == nil || !msg.IsCommand() || msg.Command() != VideoCommand {
				continue
			}

			chatID := msg.Chat.ID
			text := msg.Text
			g.Go(func() error {
				// Failures were already reported to the chat; keep serving others.
				if err := h.HandleVideo(ctx, chatID, text); err != nil {
					t.logger.Debug().Err(err).Int64("chat_id", chatID).Msg("request finished with error")
				}
				return nil
			})
		}
	}
}
