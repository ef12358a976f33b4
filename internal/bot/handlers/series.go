package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hray3182/daybook/internal/models"
	"github.com/hray3182/daybook/internal/recurrence"
)

// parseRepeatArgs reads "rule from to title [#label]".
func parseRepeatArgs(args string, userID int64) (*models.RecurringEvent, string, error) {
	fields := strings.Fields(args)
	if len(fields) < 4 {
		return nil, "", usage("expected rule YYYY-MM-DD YYYY-MM-DD title [#label]")
	}

	rule, err := recurrence.Parse(fields[0])
	if err != nil {
		return nil, "", err
	}
	from, err := parseDate(fields[1])
	if err != nil {
		return nil, "", err
	}
	to, err := parseDate(fields[2])
	if err != nil {
		return nil, "", err
	}
	if to.Before(from) {
		return nil, "", usage("the series ends on %s, before it starts on %s", to, from)
	}

	title, label := splitLabel(fields[3:])
	return &models.RecurringEvent{
		UserID:         userID,
		Title:          title,
		RecurrenceRule: rule.String(),
		ValidFrom:      from,
		ValidTo:        to,
	}, label, nil
}

func (h *Handlers) handleRepeat(ctx context.Context, msg *tgbotapi.Message) {
	series, label, err := parseRepeatArgs(msg.CommandArguments(), msg.From.ID)
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	if label != "" {
		l, err := h.repos.Label.GetOrCreateByName(ctx, msg.From.ID, label)
		if err != nil {
			h.replyError(msg.Chat.ID, err)
			return
		}
		series.LabelID = &l.LabelID
	}

	if err := h.repos.Recurring.Create(ctx, series); err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	window := series.Window()
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("🔁 Series **%d** created\n%s",
		series.RecurringEventID, recurrence.Summarize(window.Rule, series.ValidFrom, series.ValidTo)))
}

func (h *Handlers) handleSeries(ctx context.Context, msg *tgbotapi.Message, settings *models.UserSettings) {
	list, err := h.repos.Recurring.GetByUserID(ctx, msg.From.ID)
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	if len(list) == 0 {
		h.sendMessage(msg.Chat.ID, "🔁 No series yet, add one with /repeat")
		return
	}

	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		loc = time.UTC
	}

	var sb strings.Builder
	sb.WriteString("🔁 **Series**\n\n")
	for _, series := range list {
		sb.WriteString(seriesEntry(series, loc))
		sb.WriteString("\n\n")
	}
	h.sendMessage(msg.Chat.ID, sb.String())
}

func (h *Handlers) handleSkip(ctx context.Context, msg *tgbotapi.Message) {
	fields := strings.Fields(msg.CommandArguments())
	if len(fields) != 2 {
		h.replyError(msg.Chat.ID, usage("expected a series id and a YYYY-MM-DD date"))
		return
	}
	seriesID, err := parseID(fields[0], "series")
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	date, err := parseDate(fields[1])
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}

	if err := h.repos.Recurring.Skip(ctx, seriesID, msg.From.ID, date); err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("⏭ Series %d skips %s", seriesID, date))
}

func (h *Handlers) handleSeriesDelete(ctx context.Context, msg *tgbotapi.Message) {
	seriesID, err := parseID(msg.CommandArguments(), "series")
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	if err := h.repos.Recurring.Delete(ctx, seriesID, msg.From.ID); err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("🗑 Series %d deleted", seriesID))
}

// seriesEntry shows the stored encoding, its summary and the RFC 5545 form.
// A stored rule that no longer parses is reported rather than hidden.
func seriesEntry(series *models.RecurringEvent, loc *time.Location) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**%d.** %s · `%s`\n", series.RecurringEventID, series.Title, series.RecurrenceRule))

	window := series.Window()
	if window.Rule == nil {
		sb.WriteString("This rule can no longer be read and has no occurrences")
		return sb.String()
	}
	sb.WriteString(recurrence.Summarize(window.Rule, series.ValidFrom, series.ValidTo))

	if len(series.SkipDates) > 0 {
		skipped := make([]string, len(series.SkipDates))
		for i, d := range series.SkipDates {
			skipped[i] = d.String()
		}
		sb.WriteString("\nSkipping " + strings.Join(skipped, ", "))
	}

	if set, err := recurrence.ToRRuleSet(window.Rule, series.ValidFrom, series.ValidTo, series.SkipDates, loc); err == nil {
		sb.WriteString("\n```\n" + strings.Join(set.Recurrence(), "\n") + "\n```")
	}
	return sb.String()
}
