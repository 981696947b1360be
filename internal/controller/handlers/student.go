package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/lesson_scheduler/internal/controller/render"
	"github.com/Freeeeeet/lesson_scheduler/internal/controller/state"
	"github.com/Freeeeeet/lesson_scheduler/internal/schedule"
	"github.com/Freeeeeet/lesson_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxSlotButtons ограничивает клавиатуру выбора слотов
const maxSlotButtons = 42

// HandleWeek обрабатывает команду /week
func (h *Handlers) HandleWeek(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.showOpenWeek(ctx, b, update.Message.Chat.ID, update.Message.From, h.Availability.CurrentWeek())
}

func (h *Handlers) showOpenWeek(ctx context.Context, b sender, chatID int64, from *models.User, week schedule.Week) {
	if _, err := h.userFor(ctx, from); err != nil {
		h.sendError(ctx, b, chatID, err)
		return
	}

	days, err := h.Availability.OpenWeek(ctx, week)
	if err != nil {
		h.sendError(ctx, b, chatID, err)
		return
	}

	var views []schedule.SlotView
	for _, day := range days {
		for _, slot := range day.Slots {
			views = append(views, schedule.SlotView{Slot: slot})
		}
	}

	img, err := render.WeekImage(week, views, render.Options{Now: h.Availability.Now()})
	if err != nil {
		h.logger.Error("Failed to render week", zap.Error(err))
	} else {
		h.sendPhoto(ctx, b, chatID, img, week.Label(), nil)
	}

	selected := h.dialogs.Get(from.ID).Selected
	h.sendMessage(ctx, b, chatID, formatOpenWeek(week.Label(), days), h.openWeekKeyboard(week, views, selected))
}

func (h *Handlers) openWeekKeyboard(week schedule.Week, views []schedule.SlotView, selected []uuid.UUID) *models.InlineKeyboardMarkup {
	picked := make(map[uuid.UUID]bool, len(selected))
	for _, id := range selected {
		picked[id] = true
	}

	buttons := make([]models.InlineKeyboardButton, 0, len(views))
	for _, v := range views {
		if len(buttons) == maxSlotButtons {
			break
		}
		label := formatDate(v.Slot.Date) + " " + v.Slot.Time
		if picked[v.Slot.ID] {
			label = "✅ " + label
		}
		buttons = append(buttons, idButton(label, cbPick, v.Slot.ID))
	}

	kb := newKeyboard().Grid(buttons, 3)
	kb.Row(
		button("◀️", cbWeek+schedule.FormatDate(week.Prev().Start)),
		button("▶️", cbWeek+schedule.FormatDate(week.Next().Start)),
	)
	if len(selected) > 0 {
		kb.Row(
			button(fmt.Sprintf("📝 Записаться (%d)", len(selected)), cbBook),
			button("✖️ Сбросить", cbClear),
		)
	}
	return kb.Build()
}

// handlePick добавляет слот в выбор или убирает его и показывает итоговую цену
func (h *Handlers) handlePick(ctx context.Context, b sender, cb *models.CallbackQuery, msg *models.Message) {
	slotID, err := parseID(cb.Data, cbPick)
	if err != nil {
		h.answer(ctx, b, cb.ID, "❌ Неверный формат данных", true)
		return
	}

	selected := h.dialogs.ToggleSlot(cb.From.ID, slotID)
	if len(selected) == 0 {
		h.answer(ctx, b, cb.ID, "Выбор пуст", false)
		return
	}

	quote, err := h.Rates.Quote(ctx, selected)
	if err != nil {
		h.answer(ctx, b, cb.ID, ErrorMessage(err), true)
		return
	}

	kb := newKeyboard().Row(
		button(fmt.Sprintf("📝 Записаться (%d)", quote.Count), cbBook),
		button("✖️ Сбросить", cbClear),
	).Build()
	h.answer(ctx, b, cb.ID, fmt.Sprintf("Выбрано %d %s", quote.Count, PluralizeSlots(quote.Count)), false)
	h.sendMessage(ctx, b, msg.Chat.ID, fmt.Sprintf("🧾 %d %s × %s = %s",
		quote.Count, PluralizeLessons(quote.Count), formatRate(quote.Rate), "$"+quote.Formatted), kb)
}

// handleBook записывает на все выбранные слоты
func (h *Handlers) handleBook(ctx context.Context, b sender, cb *models.CallbackQuery, msg *models.Message) {
	selected := h.dialogs.Get(cb.From.ID).Selected
	if len(selected) == 0 {
		h.answer(ctx, b, cb.ID, "Сначала выберите слоты в /week", true)
		return
	}

	user, err := h.userFor(ctx, &cb.From)
	if err != nil {
		h.answer(ctx, b, cb.ID, ErrorMessage(err), true)
		return
	}

	rate, err := h.Rates.Current(ctx)
	if err != nil {
		h.answer(ctx, b, cb.ID, ErrorMessage(err), true)
		return
	}

	booked, err := h.Bookings.Book(ctx, service.ActorOf(user), selected, rate)
	h.dialogs.ClearSelection(cb.From.ID)

	var partial *service.PartialBookingFailure
	if err != nil && !errors.As(err, &partial) {
		h.answer(ctx, b, cb.ID, ErrorMessage(err), true)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Вы записаны: %d %s\n", len(booked), PluralizeLessons(len(booked)))
	for _, bk := range booked {
		sb.WriteString("\n" + formatBooking(bk))
	}
	if partial != nil {
		fmt.Fprintf(&sb, "\n\n%s (%d)", ErrorMessage(err), len(partial.Failed))
	}

	h.answer(ctx, b, cb.ID, "✅ Запись создана", false)
	h.editMessage(ctx, b, msg, sb.String(), nil)
}

// HandleMyBookings обрабатывает команду /mybookings
func (h *Handlers) HandleMyBookings(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.showMyBookings(ctx, b, update.Message.Chat.ID, update.Message.From)
}

func (h *Handlers) showMyBookings(ctx context.Context, b sender, chatID int64, from *models.User) {
	user, err := h.userFor(ctx, from)
	if err != nil {
		h.sendError(ctx, b, chatID, err)
		return
	}

	upcoming, err := h.Bookings.Upcoming(ctx, user.ID)
	if err != nil {
		h.sendError(ctx, b, chatID, err)
		return
	}
	if len(upcoming) == 0 {
		h.sendMessage(ctx, b, chatID, "📭 У вас нет предстоящих уроков. Запишитесь через /week", nil)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 У вас %d %s\n", len(upcoming), PluralizeBookings(len(upcoming)))
	kb := newKeyboard()
	for i, bk := range upcoming {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, formatBooking(bk))

		row := []models.InlineKeyboardButton{idButton(fmt.Sprintf("❌ %d", i+1), cbCancel, bk.ID)}
		if h.Bookings.CanReschedule(bk) {
			row = append(row, idButton(fmt.Sprintf("🔁 %d", i+1), cbReschedule, bk.ID))
		}
		kb.Row(row...)
	}
	fmt.Fprintf(&sb, "\n\nБлижайший урок: %s %s", formatDate(upcoming[0].Date), upcoming[0].Time)

	h.sendMessage(ctx, b, chatID, sb.String(), kb.Build())
}

func (h *Handlers) handleCancelBooking(ctx context.Context, b sender, cb *models.CallbackQuery, msg *models.Message) {
	bookingID, err := parseID(cb.Data, cbCancel)
	if err != nil {
		h.answer(ctx, b, cb.ID, "❌ Неверный формат данных", true)
		return
	}

	user, err := h.userFor(ctx, &cb.From)
	if err != nil {
		h.answer(ctx, b, cb.ID, ErrorMessage(err), true)
		return
	}

	if err := h.Bookings.Cancel(ctx, service.ActorOf(user), bookingID); err != nil {
		h.answer(ctx, b, cb.ID, ErrorMessage(err), true)
		return
	}

	h.answer(ctx, b, cb.ID, "✅ Запись отменена", false)
	h.showMyBookings(ctx, b, msg.Chat.ID, &cb.From)
}

// handleStartReschedule показывает свободные слоты этой и следующей недели
func (h *Handlers) handleStartReschedule(ctx context.Context, b sender, cb *models.CallbackQuery, msg *models.Message) {
	bookingID, err := parseID(cb.Data, cbReschedule)
	if err != nil {
		h.answer(ctx, b, cb.ID, "❌ Неверный формат данных", true)
		return
	}

	week := h.Availability.CurrentWeek()
	var buttons []models.InlineKeyboardButton
	for _, w := range []schedule.Week{week, week.Next()} {
		days, err := h.Availability.OpenWeek(ctx, w)
		if err != nil {
			h.answer(ctx, b, cb.ID, ErrorMessage(err), true)
			return
		}
		for _, day := range days {
			for _, slot := range day.Slots {
				if len(buttons) < maxSlotButtons {
					buttons = append(buttons, idButton(formatDate(slot.Date)+" "+slot.Time, cbMoveTo, slot.ID))
				}
			}
		}
	}
	if len(buttons) == 0 {
		h.answer(ctx, b, cb.ID, "Свободных слотов на ближайшие две недели нет", true)
		return
	}

	h.dialogs.Update(cb.From.ID, func(d *state.Dialog) {
		d.State = state.StateChooseReschedule
		d.BookingID = bookingID
	})

	h.answer(ctx, b, cb.ID, "", false)
	h.sendMessage(ctx, b, msg.Chat.ID, "🔁 Выберите новое время:", newKeyboard().Grid(buttons, 3).Build())
}

func (h *Handlers) handleMoveTo(ctx context.Context, b sender, cb *models.CallbackQuery, msg *models.Message) {
	slotID, err := parseID(cb.Data, cbMoveTo)
	if err != nil {
		h.answer(ctx, b, cb.ID, "❌ Неверный формат данных", true)
		return
	}

	d := h.dialogs.Get(cb.From.ID)
	if d.State != state.StateChooseReschedule || d.BookingID == uuid.Nil {
		h.answer(ctx, b, cb.ID, "Сначала выберите запись в /mybookings", true)
		return
	}

	user, err := h.userFor(ctx, &cb.From)
	if err != nil {
		h.answer(ctx, b, cb.ID, ErrorMessage(err), true)
		return
	}

	moved, err := h.Bookings.Reschedule(ctx, service.ActorOf(user), d.BookingID, slotID)
	if err != nil {
		h.answer(ctx, b, cb.ID, ErrorMessage(err), true)
		return
	}
	h.dialogs.SetState(cb.From.ID, state.StateNone)

	h.answer(ctx, b, cb.ID, "✅ Перенесено", false)
	h.editMessage(ctx, b, msg, "✅ Урок перенесён\n\n"+formatBooking(moved), nil)
}

// HandleHomework обрабатывает команду /homework
func (h *Handlers) HandleHomework(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.showHomework(ctx, b, update.Message.Chat.ID, update.Message.From)
}

func (h *Handlers) showHomework(ctx context.Context, b sender, chatID int64, from *models.User) {
	user, err := h.userFor(ctx, from)
	if err != nil {
		h.sendError(ctx, b, chatID, err)
		return
	}

	items, err := h.Homework.ListForStudent(ctx, user.ID)
	if err != nil {
		h.sendError(ctx, b, chatID, err)
		return
	}
	if len(items) == 0 {
		h.sendMessage(ctx, b, chatID, "📭 Домашних заданий нет", nil)
		return
	}

	var sb strings.Builder
	kb := newKeyboard()
	for i, hw := range items {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(formatHomework(hw, h.Homework.DaysLeft(hw)))

		label := "✅ " + hw.Title
		if hw.Done {
			label = "↩️ " + hw.Title
		}
		kb.Row(idButton(label, cbHomework, hw.ID))
	}
	h.sendMessage(ctx, b, chatID, sb.String(), kb.Build())
}

func (h *Handlers) handleToggleHomework(ctx context.Context, b sender, cb *models.CallbackQuery, msg *models.Message) {
	id, err := parseID(cb.Data, cbHomework)
	if err != nil {
		h.answer(ctx, b, cb.ID, "❌ Неверный формат данных", true)
		return
	}

	user, err := h.userFor(ctx, &cb.From)
	if err != nil {
		h.answer(ctx, b, cb.ID, ErrorMessage(err), true)
		return
	}

	hw, err := h.Homework.Toggle(ctx, service.ActorOf(user), id)
	if err != nil {
		h.answer(ctx, b, cb.ID, ErrorMessage(err), true)
		return
	}

	status := "Отмечено как выполненное"
	if !hw.Done {
		status = "Снова в работе"
	}
	h.answer(ctx, b, cb.ID, status, false)
	h.showHomework(ctx, b, msg.Chat.ID, &cb.From)
}
