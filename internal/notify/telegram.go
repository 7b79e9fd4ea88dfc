package notify

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

// Telegram posts approval notifications to the transport desk chat. The desk
// forwards to requesters over whatever channel they reach them on; the core
// only hands the message off.
type Telegram struct {
	bot    *bot.Bot
	chatID int64
	logger *zap.Logger
}

func NewTelegram(token string, chatID int64, logger *zap.Logger) (*Telegram, error) {
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &Telegram{bot: b, chatID: chatID, logger: logger}, nil
}

// TripApproved sends the approval message to the configured chat.
func (t *Telegram) TripApproved(ctx context.Context, approval TripApproval) error {
	_, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: t.chatID,
		Text:   approval.Message(),
	})
	if err != nil {
		return fmt.Errorf("send approval notification: %w", err)
	}

	t.logger.Info("Approval notification sent",
		zap.String("vehicle", approval.VehicleName),
		zap.String("driver", approval.DriverName),
	)
	return nil
}
