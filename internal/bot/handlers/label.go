package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handlers) handleLabelList(ctx context.Context, msg *tgbotapi.Message) {
	labels, err := h.repos.Label.GetByUserID(ctx, msg.From.ID)
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	if len(labels) == 0 {
		h.sendMessage(msg.Chat.ID, "🏷 No labels yet, create one with /label name")
		return
	}

	var sb strings.Builder
	sb.WriteString("🏷 **Labels**\n\n")
	for _, label := range labels {
		sb.WriteString(fmt.Sprintf("**%d.** %s\n", label.LabelID, label.LabelName))
	}
	h.sendMessage(msg.Chat.ID, sb.String())
}

func (h *Handlers) handleLabel(ctx context.Context, msg *tgbotapi.Message) {
	name := strings.TrimPrefix(strings.TrimSpace(msg.CommandArguments()), "#")
	if name == "" {
		h.sendMessage(msg.Chat.ID, "Usage: /label name")
		return
	}

	label, err := h.repos.Label.GetOrCreateByName(ctx, msg.From.ID, name)
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("🏷 Label **%d** is %s", label.LabelID, label.LabelName))
}

func (h *Handlers) handleLabelDelete(ctx context.Context, msg *tgbotapi.Message) {
	labelID, err := parseID(msg.CommandArguments(), "label")
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	if err := h.repos.Label.ValidateOwnership(ctx, labelID, msg.From.ID); err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	if err := h.repos.Label.Delete(ctx, labelID, msg.From.ID); err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("🗑 Label %d deleted", labelID))
}
