package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/hray3182/daybook/internal/calendar"
	"github.com/hray3182/daybook/internal/format"
	"github.com/hray3182/daybook/internal/models"
)

// eventDraft is a parsed /event command.
type eventDraft struct {
	Start   time.Time
	Minutes int
	Title   string
	Label   string
}

// parseEventArgs reads "YYYY-MM-DD HH:MM [minutes] title [#label]" with the
// time taken in loc.
func parseEventArgs(args string, loc *time.Location) (*eventDraft, error) {
	fields := strings.Fields(args)
	if len(fields) < 3 {
		return nil, usage("expected YYYY-MM-DD HH:MM [minutes] title [#label]")
	}

	start, err := time.ParseInLocation("2006-01-02 15:04", fields[0]+" "+fields[1], loc)
	if err != nil {
		return nil, usage("expected a start like 2025-06-10 18:30, got %q", fields[0]+" "+fields[1])
	}

	draft := &eventDraft{Start: start}
	rest := fields[2:]
	if minutes, err := strconv.Atoi(rest[0]); err == nil && len(rest) > 1 {
		if minutes < 0 {
			return nil, usage("duration %d is negative", minutes)
		}
		draft.Minutes = minutes
		rest = rest[1:]
	}

	draft.Title, draft.Label = splitLabel(rest)
	if draft.Title == "" {
		return nil, usage("the event needs a title")
	}
	return draft, nil
}

func (h *Handlers) handleEvent(ctx context.Context, msg *tgbotapi.Message, settings *models.UserSettings) {
	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		h.replyError(msg.Chat.ID, calendar.ErrInvalidCalendarParameter.Wrap(err))
		return
	}
	draft, err := parseEventArgs(msg.CommandArguments(), loc)
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}

	event := &models.Event{
		UserID:    msg.From.ID,
		Title:     draft.Title,
		StartTime: draft.Start,
		Confirmed: true,
	}
	if draft.Minutes > 0 {
		end := draft.Start.Add(time.Duration(draft.Minutes) * time.Minute)
		event.EndTime = &end
	}
	if draft.Label != "" {
		label, err := h.repos.Label.GetOrCreateByName(ctx, msg.From.ID, draft.Label)
		if err != nil {
			h.replyError(msg.Chat.ID, err)
			return
		}
		event.LabelID = &label.LabelID
	}

	if err := h.repos.Event.Create(ctx, event); err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	h.sendMessage(msg.Chat.ID, "📅 Event created\n"+eventLine(event, loc))
}

func (h *Handlers) handleEventList(ctx context.Context, msg *tgbotapi.Message, settings *models.UserSettings) {
	year, month, err := monthOrCurrent(msg.CommandArguments(), settings, h.now())
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		h.replyError(msg.Chat.ID, calendar.ErrInvalidCalendarParameter.Wrap(err))
		return
	}
	if month < time.January || month > time.December {
		h.replyError(msg.Chat.ID, calendar.ErrInvalidCalendarParameter.Wrap(fmt.Errorf("month %d", month)))
		return
	}

	window := calendar.NewMonthWindow(loc, year, month)
	events, err := h.repos.Event.GetByDateRange(ctx, msg.From.ID, window.Start, window.End)
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	if len(events) == 0 {
		h.sendMessage(msg.Chat.ID, "📅 No events in "+format.MonthTitle(year, month))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 **Events in %s**\n\n", format.MonthTitle(year, month)))
	for _, event := range events {
		sb.WriteString(eventLine(event, loc))
		sb.WriteString("\n")
	}
	h.sendMessage(msg.Chat.ID, sb.String())
}

func (h *Handlers) handleDone(ctx context.Context, msg *tgbotapi.Message) {
	eventID, err := parseID(msg.CommandArguments(), "event")
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	event, err := h.repos.Event.GetByID(ctx, eventID, msg.From.ID)
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	if err := h.repos.Event.SetCompleted(ctx, eventID, msg.From.ID, true); err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}

	if event.LabelID != nil && h.scheduler != nil {
		h.scheduler.Notify()
	}
	h.logger.Debug("event completed", zap.Int64("user_id", msg.From.ID), zap.Int("event_id", eventID))
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ %s is done", event.Title))
}

func (h *Handlers) handleConfirm(ctx context.Context, msg *tgbotapi.Message, confirmed bool) {
	eventID, err := parseID(msg.CommandArguments(), "event")
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	if err := h.repos.Event.SetConfirmed(ctx, eventID, msg.From.ID, confirmed); err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	if h.scheduler != nil {
		h.scheduler.Notify()
	}
	if confirmed {
		h.sendMessage(msg.Chat.ID, fmt.Sprintf("📌 Event %d confirmed", eventID))
	} else {
		h.sendMessage(msg.Chat.ID, fmt.Sprintf("✏️ Event %d is tentative and no longer shows in /month", eventID))
	}
}

func (h *Handlers) handleEventDelete(ctx context.Context, msg *tgbotapi.Message) {
	eventID, err := parseID(msg.CommandArguments(), "event")
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	if err := h.repos.Event.Delete(ctx, eventID, msg.From.ID); err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	if h.scheduler != nil {
		h.scheduler.Notify()
	}
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("🗑 Event %d deleted", eventID))
}

func eventLine(event *models.Event, loc *time.Location) string {
	start := event.StartTime.In(loc)
	when := start.Format("Mon Jan 2 15:04")
	if event.EndTime != nil {
		when += "-" + event.EndTime.In(loc).Format("15:04")
		if minutes := int(event.Span().Duration() / time.Minute); minutes > 0 {
			when += " (" + format.Minutes(minutes) + ")"
		}
	}

	status := ""
	switch {
	case event.Completed:
		status = " ✅"
	case !event.Confirmed:
		status = " (tentative)"
	}
	return fmt.Sprintf("**%d.** %s · %s%s", event.EventID, event.Title, when, status)
}
