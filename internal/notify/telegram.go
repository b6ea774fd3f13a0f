package notify

import (
	"fmt"
	"strings"

	"github.com/JPrier/JobSearch/internal/config"
	"github.com/JPrier/JobSearch/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier sends a Telegram digest of the top-ranked postings after each run.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	topN   int
}

func NewNotifier(cfg *config.Config) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	return &Notifier{
		bot:    bot,
		chatID: cfg.Telegram.ChatID,
		topN:   cfg.Telegram.TopN,
	}, nil
}

func (n *Notifier) SendDigest(postings []models.Posting) error {
	if len(postings) == 0 {
		return n.sendMessage("No matching postings this run.")
	}

	top := postings
	if n.topN > 0 && len(top) > n.topN {
		top = top[:n.topN]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>Top %d of %d matching postings</b>\n\n", len(top), len(postings))
	for i, p := range top {
		fmt.Fprintf(&b,
			"%d. <b>%s</b>\n%s — %s\nscore %.0f\n<a href=\"%s\">Apply</a>\n\n",
			i+1, p.Title, p.Company, p.Location, p.Score, p.JobURL)
	}

	return n.sendMessage(b.String())
}

func (n *Notifier) sendMessage(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = "HTML"
	_, err := n.bot.Send(msg)
	return err
}
