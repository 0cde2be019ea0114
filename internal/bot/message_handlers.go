package bot

import (
	"context"
	"fmt"
	"strings"

	"newsbrief/internal/domain"
	"newsbrief/internal/presenter"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const welcomeText = `📝 *News Article Summarizer*

Send me a link to a news article and I will reply with its title, a short summary and a few numbers about it\.

Feed links work too: I summarise the newest item\.

Model: %s`

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	text := strings.TrimSpace(message.Text)

	switch {
	case strings.HasPrefix(text, "/start"), strings.HasPrefix(text, "/help"):
		return b.sendMessageWithKeyboard(
			message.Chat.ID,
			0,
			fmt.Sprintf(welcomeText, presenter.EscapeMarkdownV2(b.modelName)),
			nil,
		)
	default:
		return b.withSpinner(ctx, message.Chat.ID, func() error {
			return b.handleSummarize(ctx, text, message)
		})
	}
}

func (b *Bot) handleSummarize(ctx context.Context, text string, message *tgbotapi.Message) error {
	out := b.runner.Run(ctx, domain.ArticleRequest{URL: text})
	view := presenter.Render(out)

	var keyboard [][]tgbotapi.InlineKeyboardButton
	if out.Err == nil {
		keyboard = articleKeyboard(out.Article.URL)
	}

	if err := b.sendMessageWithKeyboard(
		message.Chat.ID,
		message.MessageID,
		presenter.Markdown(view),
		keyboard,
	); err != nil {
		return fmt.Errorf("send message with keyboard: %w", err)
	}

	return nil
}
