package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/mo"

	"github.com/hray3182/daybook/internal/format"
	"github.com/hray3182/daybook/internal/models"
)

func (h *Handlers) handleMonth(ctx context.Context, msg *tgbotapi.Message, settings *models.UserSettings) {
	year, month, err := monthOrCurrent(msg.CommandArguments(), settings, h.now())
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}

	dates, err := h.calendar.DatesWithEvents(ctx, mo.Some(year), mo.Some(int(month)))
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	h.sendMessage(msg.Chat.ID, monthReply("📅 **"+format.MonthTitle(year, month)+"**", year, month, dates))
}

func (h *Handlers) handleLabelDates(ctx context.Context, msg *tgbotapi.Message, settings *models.UserSettings) {
	labelID, year, month, err := h.labelMonthArgs(msg.CommandArguments(), settings)
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}

	dates, err := h.calendar.DatesForLabel(ctx, labelID, mo.Some(year), mo.Some(int(month)))
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	title := fmt.Sprintf("🏷 **Label #%d** · %s", labelID, format.MonthTitle(year, month))
	h.sendMessage(msg.Chat.ID, monthReply(title, year, month, dates))
}

func (h *Handlers) handleStats(ctx context.Context, msg *tgbotapi.Message, settings *models.UserSettings) {
	labelID, year, month, err := h.labelMonthArgs(msg.CommandArguments(), settings)
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}

	stats, err := h.calendar.MonthlyStats(ctx, labelID, mo.Some(year), mo.Some(int(month)))
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	h.sendMessage(msg.Chat.ID, statsReply(stats))
}

func (h *Handlers) labelMonthArgs(args string, settings *models.UserSettings) (int, int, time.Month, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 || len(fields) > 2 {
		return 0, 0, 0, usage("expected a label id and an optional YYYY-MM")
	}
	labelID, err := parseID(fields[0], "label")
	if err != nil {
		return 0, 0, 0, err
	}
	var monthArg string
	if len(fields) == 2 {
		monthArg = fields[1]
	}
	year, month, err := monthOrCurrent(monthArg, settings, h.now())
	if err != nil {
		return 0, 0, 0, err
	}
	return labelID, year, month, nil
}

func monthReply(title string, year int, month time.Month, dates []civil.Date) string {
	inMonth := 0
	for _, d := range dates {
		if d.Year == year && d.Month == month {
			inMonth++
		}
	}
	if inMonth == 0 {
		return title + "\nNothing scheduled"
	}

	days := "days"
	if inMonth == 1 {
		days = "day"
	}
	return fmt.Sprintf("%s\n```\n%s\n```\n%d %s with events", title, format.MonthGrid(year, month, dates), inMonth, days)
}

func statsReply(stats *models.LabelMonthStats) string {
	return fmt.Sprintf("🏷 **%s** · %s\nCompleted events: %d\nTotal time: %s",
		stats.LabelName,
		format.MonthTitle(stats.Year, time.Month(stats.Month)),
		stats.TotalEvents,
		format.Minutes(stats.TotalDurationMinutes),
	)
}
