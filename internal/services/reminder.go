package services

import (
	"context"
	"fmt"
	"log"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// MessageSender is the slice of the Telegram bot API the services need.
// *bot.Bot satisfies it.
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error)
}

// Reminder alerts the teacher when a student is one lesson from finishing.
type Reminder struct {
	sender    MessageSender
	teacherID int64
}

func NewReminder(sender MessageSender, teacherID int64) *Reminder {
	return &Reminder{sender: sender, teacherID: teacherID}
}

// Notify is best-effort: a delivery failure is logged and swallowed, it
// never reaches the reporting chat and never unwinds the stored update.
func (r *Reminder) Notify(ctx context.Context, student string, total int, chatID string) {
	text := fmt.Sprintf("🔔 Напоминание: у %s осталось 1 занятие из %d (чат id %s).", student, total, chatID)
	if _, err := r.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: r.teacherID,
		Text:   text,
	}); err != nil {
		log.Printf("[REMINDER] failed to notify teacher: %v", err)
	}
}
