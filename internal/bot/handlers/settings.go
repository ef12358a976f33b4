package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hray3182/daybook/internal/models"
)

// handleTimezone shows the user's zone, or changes it when an IANA name is
// given.
func (h *Handlers) handleTimezone(ctx context.Context, msg *tgbotapi.Message, settings *models.UserSettings) {
	zone := strings.TrimSpace(msg.CommandArguments())
	if zone == "" {
		local := settings.LocalNow(h.now())
		h.sendMessage(msg.Chat.ID, fmt.Sprintf("🌐 Your time zone is `%s` (local time %s)\nChange it with /tz Area/City",
			settings.Timezone, local.Format("2006-01-02 15:04")))
		return
	}

	if err := h.repos.UserSettings.SetTimezone(ctx, msg.From.ID, zone); err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("🌐 Time zone set to `%s`", zone))
}
