package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/mo"
	"go.uber.org/zap"

	"github.com/hray3182/daybook/internal/ai"
	"github.com/hray3182/daybook/internal/apperr"
	"github.com/hray3182/daybook/internal/format"
	"github.com/hray3182/daybook/internal/identity"
	"github.com/hray3182/daybook/internal/models"
	"github.com/hray3182/daybook/internal/repository"
)

type Repositories struct {
	User         *repository.UserRepository
	UserSettings *repository.UserSettingsRepository
	Label        *repository.LabelRepository
	Event        *repository.EventRepository
	Recurring    *repository.RecurringEventRepository
}

// Sender is the part of the bot API replies go through.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type CalendarService interface {
	DatesWithEvents(ctx context.Context, year, month mo.Option[int]) ([]civil.Date, error)
	DatesForLabel(ctx context.Context, labelID int, year, month mo.Option[int]) ([]civil.Date, error)
	MonthlyStats(ctx context.Context, labelID int, year, month mo.Option[int]) (*models.LabelMonthStats, error)
}

type RuleSuggester interface {
	SuggestRule(ctx context.Context, text string) (string, *ai.Suggestion, error)
}

// Notifier is poked after writes that change completed durations.
type Notifier interface {
	Notify()
}

type Handlers struct {
	api       Sender
	repos     *Repositories
	calendar  CalendarService
	ai        RuleSuggester
	scheduler Notifier
	logger    *zap.Logger
	now       func() time.Time
}

// New wires the handlers. suggester and scheduler may be nil.
func New(api Sender, repos *Repositories, calendar CalendarService, suggester RuleSuggester, scheduler Notifier, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		api:       api,
		repos:     repos,
		calendar:  calendar,
		ai:        suggester,
		scheduler: scheduler,
		logger:    logger,
		now:       time.Now,
	}
}

func (h *Handlers) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	settings, err := h.ensureUser(ctx, msg.From)
	if err != nil {
		h.logger.Error("failed to ensure user", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		h.replyError(msg.Chat.ID, err)
		return
	}
	ctx = identity.WithUserID(ctx, msg.From.ID)

	switch msg.Command() {
	case "start":
		h.handleStart(msg)
	case "help":
		h.handleHelp(msg)
	case "tz":
		h.handleTimezone(ctx, msg, settings)
	case "month":
		h.handleMonth(ctx, msg, settings)
	case "labels":
		h.handleLabelList(ctx, msg)
	case "label":
		h.handleLabel(ctx, msg)
	case "rmlabel":
		h.handleLabelDelete(ctx, msg)
	case "labeldates":
		h.handleLabelDates(ctx, msg, settings)
	case "stats":
		h.handleStats(ctx, msg, settings)
	case "event":
		h.handleEvent(ctx, msg, settings)
	case "events":
		h.handleEventList(ctx, msg, settings)
	case "done":
		h.handleDone(ctx, msg)
	case "confirm":
		h.handleConfirm(ctx, msg, true)
	case "tentative":
		h.handleConfirm(ctx, msg, false)
	case "rmevent":
		h.handleEventDelete(ctx, msg)
	case "rule":
		h.handleRule(ctx, msg, settings)
	case "repeat":
		h.handleRepeat(ctx, msg)
	case "series":
		h.handleSeries(ctx, msg, settings)
	case "skip":
		h.handleSkip(ctx, msg)
	case "rmseries":
		h.handleSeriesDelete(ctx, msg)
	default:
		h.sendMessage(msg.Chat.ID, "Unknown command, see /help")
	}
}

// HandleMessage treats free text as a recurrence description when an AI
// client is configured.
func (h *Handlers) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	settings, err := h.ensureUser(ctx, msg.From)
	if err != nil {
		h.logger.Error("failed to ensure user", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		return
	}
	if h.ai == nil {
		h.sendMessage(msg.Chat.ID, "Send /help to see what I can do")
		return
	}
	h.describeRule(identity.WithUserID(ctx, msg.From.ID), msg.Chat.ID, msg.Text, settings)
}

// ensureUser upserts the user row and their settings, returning the
// settings so handlers know the user's timezone.
func (h *Handlers) ensureUser(ctx context.Context, from *tgbotapi.User) (*models.UserSettings, error) {
	if _, err := h.repos.User.GetOrCreate(ctx, from.ID, from.UserName); err != nil {
		return nil, err
	}
	return h.repos.UserSettings.GetOrCreate(ctx, from.ID)
}

func (h *Handlers) sendMessage(chatID int64, text string) {
	parsed := format.ParseMarkdown(text)
	reply := tgbotapi.NewMessage(chatID, parsed.Text)
	reply.Entities = parsed.Entities
	if _, err := h.api.Send(reply); err != nil {
		h.logger.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// replyError explains classified errors to the user and logs the rest.
func (h *Handlers) replyError(chatID int64, err error) {
	var text string
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		text = "⚠️ " + userMessage(err)
	case apperr.KindNotFound:
		text = "🔍 " + userMessage(err)
	case apperr.KindForbidden:
		text = "🚫 " + userMessage(err)
	default:
		h.logger.Error("command failed", zap.Int64("chat_id", chatID), zap.Error(err))
		text = "Something went wrong, please try again later"
	}
	h.sendMessage(chatID, text)
}

// userMessage is the message of the outermost classified error plus its
// immediate cause, without the kind prefix.
func userMessage(err error) string {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		return err.Error()
	}
	if appErr.Cause != nil {
		return fmt.Sprintf("%s: %v", appErr.Message, appErr.Cause)
	}
	return appErr.Message
}

func (h *Handlers) handleStart(msg *tgbotapi.Message) {
	text := fmt.Sprintf(`👋 Hi %s!

I'm daybook. I keep your events and repeating series and show you which days of a month are busy.

• /month shows this month at a glance
• /event adds a one-off event
• /repeat sets up a series such as "2nd Tuesday"

Use /help to see every command`, msg.From.FirstName)
	h.sendMessage(msg.Chat.ID, text)
}

func (h *Handlers) handleHelp(msg *tgbotapi.Message) {
	text := "📖 **Commands**\n\n" +
		"**Calendar**\n" +
		"/month [YYYY-MM] - days with events\n" +
		"/tz [zone] - show or set your time zone\n\n" +
		"**Events**\n" +
		"/event YYYY-MM-DD HH:MM [minutes] title [#label] - add an event\n" +
		"/events [YYYY-MM] - list events\n" +
		"/done id - mark an event completed\n" +
		"/confirm id, /tentative id - toggle confirmation\n" +
		"/rmevent id - delete an event\n\n" +
		"**Series**\n" +
		"/rule text - explain a rule such as MONTHLY:2:TUESDAY\n" +
		"/repeat rule from to title [#label] - add a series\n" +
		"/series - list series\n" +
		"/skip id YYYY-MM-DD - skip one occurrence\n" +
		"/rmseries id - delete a series\n\n" +
		"**Labels**\n" +
		"/labels - list labels\n" +
		"/label name - create a label\n" +
		"/rmlabel id - delete a label\n" +
		"/labeldates id [YYYY-MM] - days with completed work\n" +
		"/stats id [YYYY-MM] - monthly totals"
	h.sendMessage(msg.Chat.ID, text)
}

func localToday(settings *models.UserSettings, now time.Time) civil.Date {
	return civil.DateOf(settings.LocalNow(now))
}
