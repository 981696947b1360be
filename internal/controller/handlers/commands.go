package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/lesson_scheduler/internal/controller/state"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const helpText = "📚 Справка по командам:\n\n" +
	"Для студентов:\n" +
	"/week - Свободные слоты на неделю\n" +
	"/mybookings - Мои записи, отмена и перенос\n" +
	"/homework - Мои домашние задания\n" +
	"/cancel - Прервать текущее действие\n\n" +
	"Для учителя:\n" +
	"/schedule - Неделя со всеми записями\n" +
	"/addslots - Добавить слоты\n" +
	"/rate - Изменить ставку\n" +
	"/students - Список студентов\n" +
	"/assign - Выдать домашнее задание\n" +
	"/earnings - Заработок"

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	user, err := h.userFor(ctx, update.Message.From)
	if err != nil {
		h.logger.Error("Failed to register user", zap.Error(err))
		h.sendError(ctx, b, chatID, err)
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf(
		"👋 Привет, %s!\n\nЗдесь можно записаться на урок, перенести или отменить запись.\n\n%s",
		user.FirstName, helpText), nil)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText, nil)
}

// HandleCancel обрабатывает команду /cancel - отмена текущего диалога
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	telegramID := update.Message.From.ID
	if d := h.dialogs.Get(telegramID); d.State == state.StateNone && len(d.Selected) == 0 {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "❌ Нет активных операций для отмены.", nil)
		return
	}

	h.dialogs.ClearState(telegramID)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Операция отменена.\n\nИспользуйте /help для просмотра доступных команд.", nil)
}

// HandleTextMessage обрабатывает ответы внутри диалога
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}
	h.handleText(ctx, b, update.Message)
}

func (h *Handlers) handleText(ctx context.Context, b sender, msg *models.Message) {
	telegramID := msg.From.ID
	text := strings.TrimSpace(msg.Text)

	current := h.dialogs.GetState(telegramID)
	switch current {
	case state.StateEnterRate, state.StateEnterSlots, state.StateEnterHomework:
		// диалоги учителя: роль проверяется на каждом вводе
		if _, ok := h.requireTeacher(ctx, b, msg.Chat.ID, msg.From); !ok {
			h.dialogs.ClearState(telegramID)
			return
		}
	}

	switch current {
	case state.StateEnterRate:
		h.handleRateInput(ctx, b, msg.Chat.ID, telegramID, text)
	case state.StateEnterSlots:
		h.handleSlotsInput(ctx, b, msg.Chat.ID, telegramID, text)
	case state.StateEnterHomework:
		h.handleHomeworkInput(ctx, b, msg.Chat.ID, telegramID, text)
	default:
		h.sendMessage(ctx, b, msg.Chat.ID, "Не понимаю сообщение. Используйте /help.", nil)
	}
}
