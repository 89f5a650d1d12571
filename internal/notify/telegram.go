// Package notify delivers run summaries via the Telegram Bot API. It formats
// the statistics summary into a MarkdownV2 message and retries delivery on
// transient failures.
package notify

import (
	"fmt"
	"math"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/populytics/populytics/internal/models"
)

// Notifier sends pipeline run summaries to a Telegram chat.
type Notifier struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// New creates a Notifier for the given bot token and chat ID.
func New(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Notifier{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// SendSummary sends a formatted run summary with retry.
func (n *Notifier) SendSummary(summary *models.StatisticsSummary, forecasts []*models.ForecastResult) error {
	msg := tgbotapi.NewMessage(n.chatID, formatSummary(summary, forecasts))
	msg.ParseMode = "MarkdownV2"

	var lastErr error
	for i := 0; i < n.maxRetries; i++ {
		_, err := n.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		time.Sleep(n.retryDelayBase * time.Duration(i+1))
	}
	return fmt.Errorf("failed to send message after %d retries: %w", n.maxRetries, lastErr)
}

func formatSummary(summary *models.StatisticsSummary, forecasts []*models.ForecastResult) string {
	message := "\U0001F4CA *Population Analysis Complete*\n\n"

	message += fmt.Sprintf("\U0001F30D Countries: %s\n", escapeMarkdownV2(strconv.Itoa(summary.TotalCountries)))
	message += fmt.Sprintf("\U0001F4C5 Years: %s\n",
		escapeMarkdownV2(fmt.Sprintf("%d-%d", summary.YearStart, summary.YearEnd)))
	message += fmt.Sprintf("\U0001F4C8 Total growth: *%s*\n", escapeMarkdownV2(formatPct(summary.TotalGrowthPercentage)))
	message += fmt.Sprintf("\U0001F3C6 Largest: %s \\(%s\\)\n",
		escapeMarkdownV2(summary.LargestPopulationCountry),
		escapeMarkdownV2(formatCount(summary.LargestPopulationValue)))
	if summary.HighestGrowthCountry != "" {
		message += fmt.Sprintf("\U0001F680 Fastest growing: %s \\(%s\\)\n",
			escapeMarkdownV2(summary.HighestGrowthCountry),
			escapeMarkdownV2(formatPct(summary.HighestGrowthPercentage)))
	}

	if len(forecasts) > 0 {
		message += "\n\U0001F52E *Forecasts*\n"
		for _, f := range forecasts {
			predicted := f.Predicted()
			if len(predicted) == 0 {
				continue
			}
			last := predicted[len(predicted)-1]
			message += fmt.Sprintf("%s: %s by %s\n",
				escapeMarkdownV2(f.Country),
				escapeMarkdownV2(formatCount(last.Value)),
				escapeMarkdownV2(strconv.Itoa(last.Year)))
		}
	}

	return message
}

func formatPct(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", v)
}

func formatCount(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	switch {
	case math.Abs(v) >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case math.Abs(v) >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	result := ""
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			result += "\\" + string(char)
		default:
			result += string(char)
		}
	}
	return result
}
