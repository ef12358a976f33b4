package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/hray3182/daybook/internal/models"
	"github.com/hray3182/daybook/internal/recurrence"
)

const (
	// previewDays bounds the summary window and the occurrence search.
	previewDays        = 365
	previewOccurrences = 5
)

func (h *Handlers) handleRule(ctx context.Context, msg *tgbotapi.Message, settings *models.UserSettings) {
	text := strings.TrimSpace(msg.CommandArguments())
	if text == "" {
		h.sendMessage(msg.Chat.ID, "Usage: /rule WEEKLY:MONDAY,THURSDAY or /rule second tuesday of each month")
		return
	}
	h.describeRule(ctx, msg.Chat.ID, text, settings)
}

// describeRule explains text as a rule. Text that is not an encoding goes to
// the AI client when one is configured; its answer is parsed again before
// use.
func (h *Handlers) describeRule(ctx context.Context, chatID int64, text string, settings *models.UserSettings) {
	rule, err := recurrence.Parse(text)
	note := ""
	if err != nil && h.ai != nil {
		encoded, suggestion, aiErr := h.ai.SuggestRule(ctx, text)
		switch {
		case aiErr == nil:
			rule, err = recurrence.Parse(encoded)
			note = suggestion.Explanation
		case suggestion != nil && suggestion.Explanation != "":
			h.sendMessage(chatID, "🤔 "+suggestion.Explanation)
			return
		default:
			h.logger.Warn("rule suggestion failed", zap.Error(aiErr))
		}
	}
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	h.sendMessage(chatID, ruleReply(rule, localToday(settings, h.now()), note))
}

func ruleReply(rule recurrence.Rule, today civil.Date, note string) string {
	until := today.AddDays(previewDays - 1)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔁 `%s`\n", rule.String()))
	sb.WriteString(recurrence.Summarize(rule, today, until))
	sb.WriteString("\n\n")

	next := recurrence.Expand(rule, today, until, nil)
	if len(next) == 0 {
		sb.WriteString("No occurrences in the next year")
	} else {
		if len(next) > previewOccurrences {
			next = next[:previewOccurrences]
		}
		days := make([]string, len(next))
		for i, d := range next {
			days[i] = d.In(time.UTC).Format("Mon Jan 2")
		}
		sb.WriteString("Next: " + strings.Join(days, ", "))
	}

	if note != "" {
		sb.WriteString("\n💡 " + note)
	}
	return sb.String()
}
