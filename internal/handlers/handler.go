package handlers

import (
	"context"
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/ad/go-telegram-lessons/internal/services"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

type BotHandler struct {
	sender    services.MessageSender
	teacherID int64
	tracker   *services.Tracker
	reminder  *services.Reminder
	stats     *services.StatisticsService
}

func NewBotHandler(
	sender services.MessageSender,
	teacherID int64,
	tracker *services.Tracker,
	reminder *services.Reminder,
	stats *services.StatisticsService,
) *BotHandler {
	return &BotHandler{
		sender:    sender,
		teacherID: teacherID,
		tracker:   tracker,
		reminder:  reminder,
		stats:     stats,
	}
}

func (h *BotHandler) HandleUpdate(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	defer h.recoverPanic(ctx)

	if update.Message != nil {
		h.handleMessage(ctx, update.Message)
	}
}

func (h *BotHandler) recoverPanic(ctx context.Context) {
	if r := recover(); r != nil {
		msg := fmt.Sprintf("🚨 Panic in handler\nError: %v\n\nStack trace:\n%s", r, debug.Stack())
		if len(msg) > 4000 {
			msg = msg[:4000] + "\n... (truncated)"
		}
		_, _ = h.sender.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: h.teacherID,
			Text:   msg,
		})
	}
}

func (h *BotHandler) handleMessage(ctx context.Context, msg *tgmodels.Message) {
	if msg.Text == "" {
		return
	}

	switch command(msg.Text) {
	case "/start":
		h.reply(ctx, msg.Chat.ID, "✅ Бот запущен и готов к работе!")
	case "/id":
		if msg.From == nil {
			return
		}
		h.reply(ctx, msg.Chat.ID, fmt.Sprintf("Твой Telegram ID: %d", msg.From.ID))
	case "/stats", "/статистика":
		h.handleStats(ctx, msg)
	default:
		h.handleReport(ctx, msg)
	}
}

// command extracts the leading slash-command, tolerating the @botname
// suffix Telegram appends in group chats.
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := strings.Fields(text)[0]
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd)
}

func (h *BotHandler) handleStats(ctx context.Context, msg *tgmodels.Message) {
	if msg.From == nil || msg.From.ID != h.teacherID {
		h.reply(ctx, msg.Chat.ID, "⛔ Команда доступна только преподавателю.")
		return
	}

	report, err := h.stats.Report(ctx)
	if err != nil {
		h.reply(ctx, msg.Chat.ID, "❌ Ошибка при чтении данных.")
		return
	}
	if report == "" {
		h.reply(ctx, msg.Chat.ID, "Нет данных по ученикам.")
		return
	}

	_, _ = h.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    msg.Chat.ID,
		Text:      "<pre>" + report + "</pre>",
		ParseMode: tgmodels.ParseModeHTML,
	})
}

func (h *BotHandler) handleReport(ctx context.Context, msg *tgmodels.Message) {
	done, total, ok := services.ParseReport(msg.Text)
	if !ok {
		return
	}

	conv, sender := services.ResolveConversation(msg)
	student := services.StudentLabel(conv, sender)
	chatID := strconv.FormatInt(msg.Chat.ID, 10)

	crossed, err := h.tracker.Record(ctx, chatID, student, done, total)
	if err != nil {
		h.reply(ctx, msg.Chat.ID, "Ошибка при сохранении данных.")
		return
	}

	if crossed {
		h.reminder.Notify(ctx, student, total, chatID)
	}

	h.reply(ctx, msg.Chat.ID, fmt.Sprintf("✅ Записал: %d из %d", done, total))
}

func (h *BotHandler) reply(ctx context.Context, chatID int64, text string) {
	_, _ = h.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
}
