package main

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier pushes recommendation digests to a Telegram chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *Logger
	sleep  func(time.Duration)
}

func NewTelegramNotifier(botToken string, chatID int64, logger *Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		log:    logger,
		sleep:  time.Sleep,
	}, nil
}

// SendRecommendations sends a header message followed by one message per
// issue, pausing a second between sends to stay under Telegram's rate
// limits.
func (n *TelegramNotifier) SendRecommendations(repository string, issues []Issue) error {
	if len(issues) == 0 {
		return nil
	}

	messages := make([]string, 0, len(issues)+1)
	messages = append(messages, fmt.Sprintf("🔔 *Recommended issues in %s*\n\n", repository))
	for _, issue := range issues {
		messages = append(messages, buildRecommendationMessage(issue))
	}

	for _, msg := range messages {
		tgMsg := tgbotapi.NewMessage(n.chatID, msg)
		tgMsg.ParseMode = "Markdown"

		if _, err := n.bot.Send(tgMsg); err != nil {
			n.log.Error("Error sending Telegram message: %v", err)
			return err
		}

		n.sleep(1 * time.Second)
	}

	return nil
}

func buildRecommendationMessage(issue Issue) string {
	scoreEmoji := "✨"
	if issue.PriorityScore >= 30 {
		scoreEmoji = "🔥"
	} else if issue.PriorityScore >= 15 {
		scoreEmoji = "⭐"
	}

	labelsText := ""
	if len(issue.Labels) > 0 {
		labelsText = fmt.Sprintf("\nLabels: %s", strings.Join(issue.Labels, ", "))
	}

	return fmt.Sprintf(
		"%s *#%d %s* (%.2f)\n%s%s\n\n",
		scoreEmoji,
		issue.Number,
		truncateString(issue.Title, 80),
		issue.PriorityScore,
		issue.HTMLURL,
		labelsText,
	)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
