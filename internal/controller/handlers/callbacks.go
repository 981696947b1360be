package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleCallbackQuery распределяет нажатия inline кнопок по обработчикам
func (h *Handlers) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	h.route(ctx, b, update.CallbackQuery)
}

func (h *Handlers) route(ctx context.Context, b sender, cb *models.CallbackQuery) {
	data := cb.Data
	h.logger.Debug("Routing callback", zap.String("data", data), zap.Int64("user_id", cb.From.ID))

	msg := cb.Message.Message
	if msg == nil {
		h.answer(ctx, b, cb.ID, "❌ Сообщение устарело", true)
		return
	}

	switch {
	case data == cbNoop:
		h.answer(ctx, b, cb.ID, "", false)
	case strings.HasPrefix(data, cbWeek):
		h.handleWeekNav(ctx, b, cb, msg, false)
	case strings.HasPrefix(data, cbTeachWeek):
		h.handleWeekNav(ctx, b, cb, msg, true)
	case strings.HasPrefix(data, cbPick):
		h.handlePick(ctx, b, cb, msg)
	case data == cbBook:
		h.handleBook(ctx, b, cb, msg)
	case data == cbClear:
		h.dialogs.ClearSelection(cb.From.ID)
		h.answer(ctx, b, cb.ID, "Выбор сброшен", false)
	case strings.HasPrefix(data, cbCancel):
		h.handleCancelBooking(ctx, b, cb, msg)
	case strings.HasPrefix(data, cbReschedule):
		h.handleStartReschedule(ctx, b, cb, msg)
	case strings.HasPrefix(data, cbMoveTo):
		h.handleMoveTo(ctx, b, cb, msg)
	case strings.HasPrefix(data, cbHomework):
		h.handleToggleHomework(ctx, b, cb, msg)
	case strings.HasPrefix(data, cbDeleteSlot):
		h.handleDeleteSlot(ctx, b, cb, msg, false)
	case strings.HasPrefix(data, cbForceSlot):
		h.handleDeleteSlot(ctx, b, cb, msg, true)
	case strings.HasPrefix(data, cbAssign):
		h.handleChooseAssignee(ctx, b, cb, msg)
	default:
		h.logger.Warn("Unknown callback", zap.String("data", data))
		h.answer(ctx, b, cb.ID, "❌ Неизвестная команда", true)
	}
}

func (h *Handlers) handleWeekNav(ctx context.Context, b sender, cb *models.CallbackQuery, msg *models.Message, teacher bool) {
	prefix := cbWeek
	if teacher {
		prefix = cbTeachWeek
	}

	week, err := h.Availability.ParseWeek(strings.TrimPrefix(cb.Data, prefix))
	if err != nil {
		h.answer(ctx, b, cb.ID, "❌ Неверный формат данных", true)
		return
	}
	h.answer(ctx, b, cb.ID, "", false)

	if teacher {
		if _, ok := h.requireTeacher(ctx, b, msg.Chat.ID, &cb.From); !ok {
			return
		}
		h.showTeacherWeek(ctx, b, msg.Chat.ID, week)
		return
	}
	h.showOpenWeek(ctx, b, msg.Chat.ID, &cb.From, week)
}
