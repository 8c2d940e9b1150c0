// Package notifier delivers the AI trading decision to Telegram.
package notifier

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"forex-trader/models"
)

// Telegram sends decision summaries to a single chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

// NewTelegram creates a Telegram notifier for the given bot token and chat.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating Telegram bot: %w", err)
	}

	return &Telegram{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "telegram_notifier").Logger(),
	}, nil
}

// NotifyDecision sends a formatted decision summary.
func (t *Telegram) NotifyDecision(symbol string, decision *models.TradeDecision) error {
	msg := tgbotapi.NewMessage(t.chatID, FormatDecision(symbol, decision))
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("sending Telegram message: %w", err)
	}

	t.logger.Info().Str("symbol", symbol).Str("action", decision.Action).Msg("Decision sent to Telegram")
	return nil
}

// FormatDecision renders a decision into a readable message.
func FormatDecision(symbol string, decision *models.TradeDecision) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s decision: %s", symbol, decision.Action))
	if decision.Direction != "" {
		b.WriteString(fmt.Sprintf(" (%s)", decision.Direction))
	}
	b.WriteByte('\n')

	if decision.EntryPrice != 0 {
		b.WriteString(fmt.Sprintf("Entry: %v\n", decision.EntryPrice))
	}
	if decision.StopLoss != 0 {
		b.WriteString(fmt.Sprintf("Stop loss: %v\n", decision.StopLoss))
	}
	if decision.TakeProfit != 0 {
		b.WriteString(fmt.Sprintf("Take profit: %v\n", decision.TakeProfit))
	}
	if decision.Confidence != "" {
		b.WriteString(fmt.Sprintf("Confidence: %s\n", decision.Confidence))
	}
	if decision.Reason != "" {
		b.WriteString(fmt.Sprintf("Reason: %s\n", decision.Reason))
	}

	return strings.TrimRight(b.String(), "\n")
}
