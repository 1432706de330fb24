package services

import (
	"fmt"

	"github.com/ad/go-telegram-lessons/internal/models"
	tgmodels "github.com/go-telegram/bot/models"
)

// ResolveConversation classifies an inbound message's chat as group-like or
// individual and extracts the sender, when Telegram provides one.
func ResolveConversation(msg *tgmodels.Message) (models.Conversation, *models.Sender) {
	conv := models.Conversation{
		Kind:  models.ChatIndividual,
		ID:    msg.Chat.ID,
		Title: msg.Chat.Title,
	}
	switch msg.Chat.Type {
	case tgmodels.ChatTypeGroup, tgmodels.ChatTypeSupergroup, tgmodels.ChatTypeChannel:
		conv.Kind = models.ChatGroup
	}

	if msg.From == nil {
		return conv, nil
	}
	return conv, &models.Sender{
		ID:        msg.From.ID,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
		Username:  msg.From.Username,
	}
}

// StudentLabel derives the display label for a report. It reflects the
// latest message: group title for group-like chats, "<name> (@<handle>)" for
// individuals, a synthesized chat_<id> label when neither resolves.
func StudentLabel(conv models.Conversation, sender *models.Sender) string {
	if conv.Kind == models.ChatGroup {
		if conv.Title != "" {
			return conv.Title
		}
		return fmt.Sprintf("chat_%d", conv.ID)
	}

	if sender == nil {
		return fmt.Sprintf("chat_%d", conv.ID)
	}
	name := sender.FullName()
	if name == "" {
		return fmt.Sprintf("chat_%d", conv.ID)
	}
	if sender.Username != "" {
		return fmt.Sprintf("%s (@%s)", name, sender.Username)
	}
	return name
}
