package notify

import (
	"context"
	"fmt"

	"eventhub/internal/config"
	"eventhub/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramNotifier pushes short booking alerts to the admin chat. It is
// optional: a nil notifier is a no-op.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zerolog.Logger
}

func NewTelegramNotifier(cfg config.TelegramConfig, logger *zerolog.Logger) (*TelegramNotifier, error) {
	if cfg.BotToken == "" || cfg.AdminChatID == 0 {
		return nil, nil
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info().Str("bot", bot.Self.UserName).Msg("Telegram notifier ready")

	return &TelegramNotifier{
		bot:    bot,
		chatID: cfg.AdminChatID,
		logger: logger,
	}, nil
}

func (n *TelegramNotifier) NotifyBooking(ctx context.Context, details *models.BookingDetails, headline string) error {
	if n == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	text := fmt.Sprintf("%s\n\n%s\n%s, %s\n%d attendees, %.2f total\n#%s",
		headline,
		details.EventTitle,
		details.EventDate.Format("02.01.2006 15:04"),
		details.EventLocation,
		details.Attendees,
		details.TotalAmount,
		details.ConfirmationNumber,
	)

	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram notification: %w", err)
	}
	return nil
}
