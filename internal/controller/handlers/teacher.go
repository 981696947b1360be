package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Freeeeeet/lesson_scheduler/internal/controller/render"
	"github.com/Freeeeeet/lesson_scheduler/internal/controller/state"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/schedule"
	"github.com/Freeeeeet/lesson_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const cbAssign = "assign:" // assign:<student_id>

const addSlotsHelp = "➕ Введите доступность одной строкой:\n\n" +
	"<с> [по] <время> <дни>\n\n" +
	"Например:\n" +
	"2024-06-03 2024-06-30 09:00-12:00 пн,ср,пт\n" +
	"2024-06-04 18:00-20:00 вт\n\n" +
	"Слоты создаются по часу. /cancel - отмена"

// HandleSchedule обрабатывает команду /schedule
func (h *Handlers) HandleSchedule(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	if _, ok := h.requireTeacher(ctx, b, update.Message.Chat.ID, update.Message.From); !ok {
		return
	}
	h.showTeacherWeek(ctx, b, update.Message.Chat.ID, h.Availability.CurrentWeek())
}

func (h *Handlers) showTeacherWeek(ctx context.Context, b sender, chatID int64, week schedule.Week) {
	views, err := h.Availability.TeacherWeek(ctx, week)
	if err != nil {
		h.sendError(ctx, b, chatID, err)
		return
	}

	img, err := render.WeekImage(week, views, render.Options{Now: h.Availability.Now(), ShowNames: true})
	if err != nil {
		h.logger.Error("Failed to render week", zap.Error(err))
	} else {
		h.sendPhoto(ctx, b, chatID, img, week.Label(), nil)
	}

	booked := 0
	buttons := make([]models.InlineKeyboardButton, 0, len(views))
	for _, v := range views {
		label := "🗑 " + formatDate(v.Slot.Date) + " " + v.Slot.Time
		if v.Booked {
			booked++
			label = "👤 " + formatDate(v.Slot.Date) + " " + v.Slot.Time
		}
		if len(buttons) < maxSlotButtons {
			buttons = append(buttons, idButton(label, cbDeleteSlot, v.Slot.ID))
		}
	}

	text := fmt.Sprintf("🗓 %s\n%d %s, занято %d", week.Label(), len(views), PluralizeSlots(len(views)), booked)
	if len(views) > 0 {
		text += "\n\nНажмите на слот, чтобы удалить его."
	}

	kb := newKeyboard().Grid(buttons, 3).Row(
		button("◀️", cbTeachWeek+schedule.FormatDate(week.Prev().Start)),
		button("▶️", cbTeachWeek+schedule.FormatDate(week.Next().Start)),
	)
	h.sendMessage(ctx, b, chatID, text, kb.Build())
}

// handleDeleteSlot удаляет слот; для занятого предлагает удалить вместе с записями
func (h *Handlers) handleDeleteSlot(ctx context.Context, b sender, cb *models.CallbackQuery, msg *models.Message, cascade bool) {
	prefix := cbDeleteSlot
	if cascade {
		prefix = cbForceSlot
	}
	slotID, err := parseID(cb.Data, prefix)
	if err != nil {
		h.answer(ctx, b, cb.ID, "❌ Неверный формат данных", true)
		return
	}
	if _, ok := h.requireTeacher(ctx, b, msg.Chat.ID, &cb.From); !ok {
		h.answer(ctx, b, cb.ID, "", false)
		return
	}

	canceled, err := h.Teacher.DeleteSlot(ctx, slotID, cascade)
	if errors.Is(err, service.ErrSlotBooked) {
		h.answer(ctx, b, cb.ID, "", false)
		h.sendMessage(ctx, b, msg.Chat.ID, "⚠️ На слот есть записи. Удалить вместе с ними?",
			newKeyboard().Row(idButton("🗑 Удалить с записями", cbForceSlot, slotID)).Build())
		return
	}
	if err != nil {
		h.answer(ctx, b, cb.ID, ErrorMessage(err), true)
		return
	}

	text := "✅ Слот удалён"
	if canceled > 0 {
		text = fmt.Sprintf("✅ Слот удалён, отменено %d %s", canceled, PluralizeBookings(canceled))
	}
	h.answer(ctx, b, cb.ID, text, false)
}

// HandleAddSlots обрабатывает команду /addslots
func (h *Handlers) HandleAddSlots(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	if _, ok := h.requireTeacher(ctx, b, update.Message.Chat.ID, update.Message.From); !ok {
		return
	}
	h.dialogs.SetState(update.Message.From.ID, state.StateEnterSlots)
	h.sendMessage(ctx, b, update.Message.Chat.ID, addSlotsHelp, nil)
}

func (h *Handlers) handleSlotsInput(ctx context.Context, b sender, chatID, telegramID int64, text string) {
	spec, err := ParseAvailability(text)
	if err != nil {
		h.sendError(ctx, b, chatID, err)
		return
	}

	created, err := h.Teacher.PublishAvailability(ctx, spec)
	if err != nil {
		h.sendError(ctx, b, chatID, err)
		return
	}
	h.dialogs.SetState(telegramID, state.StateNone)

	h.sendMessage(ctx, b, chatID, fmt.Sprintf("✅ Добавлено %d %s. Посмотреть: /schedule", len(created), PluralizeSlots(len(created))), nil)
}

// HandleRate обрабатывает команду /rate
func (h *Handlers) HandleRate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	if _, ok := h.requireTeacher(ctx, b, update.Message.Chat.ID, update.Message.From); !ok {
		return
	}

	rate, err := h.Rates.Current(ctx)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, err)
		return
	}

	h.dialogs.SetState(update.Message.From.ID, state.StateEnterRate)
	h.sendMessage(ctx, b, update.Message.Chat.ID,
		fmt.Sprintf("💵 Текущая ставка: %s за урок\n\nВведите новую ставку, например 65 или 62.50", formatRate(rate)), nil)
}

func (h *Handlers) handleRateInput(ctx context.Context, b sender, chatID, telegramID int64, text string) {
	rate, err := h.Teacher.SetRateText(ctx, text)
	if err != nil {
		h.sendError(ctx, b, chatID, err)
		return
	}
	h.dialogs.SetState(telegramID, state.StateNone)
	h.sendMessage(ctx, b, chatID, fmt.Sprintf("✅ Новая ставка: %s. Уже созданные записи сохраняют прежнюю.", formatRate(rate)), nil)
}

// HandleStudents обрабатывает команду /students
func (h *Handlers) HandleStudents(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	if _, ok := h.requireTeacher(ctx, b, chatID, update.Message.From); !ok {
		return
	}

	sortBy := strings.TrimSpace(strings.TrimPrefix(update.Message.Text, "/students"))
	if sortBy == "" {
		sortBy = schedule.SortByName
	}

	students, err := h.Teacher.Roster(ctx, sortBy)
	if err != nil {
		h.sendError(ctx, b, chatID, err)
		return
	}
	if len(students) == 0 {
		h.sendMessage(ctx, b, chatID, "📭 Студентов пока нет", nil)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "👥 Студенты (%d):\n", len(students))
	for i, u := range students {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, u.FullName())
		if u.SkillLevel != "" {
			fmt.Fprintf(&sb, " · %s", u.SkillLevel)
		}
		fmt.Fprintf(&sb, " · %d%%", u.Progress)
	}
	sb.WriteString("\n\nСортировка: /students az | progress | age | level")
	h.sendMessage(ctx, b, chatID, sb.String(), nil)
}

// HandleAssign обрабатывает команду /assign
func (h *Handlers) HandleAssign(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	if _, ok := h.requireTeacher(ctx, b, chatID, update.Message.From); !ok {
		return
	}

	students, err := h.Teacher.Roster(ctx, schedule.SortByName)
	if err != nil {
		h.sendError(ctx, b, chatID, err)
		return
	}

	kb := newKeyboard()
	for _, u := range students {
		data := cbAssign + u.ID
		if len(data) > 64 {
			continue
		}
		kb.Row(button(u.FullName(), data))
	}
	h.sendMessage(ctx, b, chatID, "📝 Кому выдать задание?", kb.Build())
}

func (h *Handlers) handleChooseAssignee(ctx context.Context, b sender, cb *models.CallbackQuery, msg *models.Message) {
	if _, ok := h.requireTeacher(ctx, b, msg.Chat.ID, &cb.From); !ok {
		h.answer(ctx, b, cb.ID, "", false)
		return
	}
	studentID := strings.TrimPrefix(cb.Data, cbAssign)

	h.dialogs.Update(cb.From.ID, func(d *state.Dialog) {
		d.State = state.StateEnterHomework
		d.StudentID = studentID
	})
	h.answer(ctx, b, cb.ID, "", false)
	h.sendMessage(ctx, b, msg.Chat.ID,
		"Введите задание через «;»:\nназвание; описание; yyyy-mm-dd\n\n/cancel - отмена", nil)
}

func (h *Handlers) handleHomeworkInput(ctx context.Context, b sender, chatID, telegramID int64, text string) {
	parts := strings.SplitN(text, ";", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}

	hw, err := h.Homework.Assign(ctx, service.HomeworkInput{
		StudentID:   h.dialogs.Get(telegramID).StudentID,
		Title:       strings.TrimSpace(parts[0]),
		Description: strings.TrimSpace(parts[1]),
		DueDate:     strings.TrimSpace(parts[2]),
	})
	if err != nil {
		h.sendError(ctx, b, chatID, err)
		return
	}
	h.dialogs.ClearState(telegramID)
	h.sendMessage(ctx, b, chatID, "✅ Задание выдано\n\n"+formatHomework(hw, h.Homework.DaysLeft(hw)), nil)
}

// HandleEarnings обрабатывает команду /earnings
func (h *Handlers) HandleEarnings(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	if _, ok := h.requireTeacher(ctx, b, chatID, update.Message.From); !ok {
		return
	}

	summary, err := h.Teacher.Earnings(ctx)
	if err != nil {
		h.sendError(ctx, b, chatID, err)
		return
	}
	h.sendMessage(ctx, b, chatID, fmt.Sprintf("💰 %d %s на сумму $%s\nПредстоящих: %d",
		summary.Lessons, PluralizeLessons(summary.Lessons), summary.Formatted, summary.Upcoming), nil)
}

var weekdayNames = map[string]int{
	"вс": 0, "пн": 1, "вт": 2, "ср": 3, "чт": 4, "пт": 5, "сб": 6,
	"sun": 0, "mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5, "sat": 6,
}

// ParseAvailability разбирает строку "с [по] HH:MM-HH:MM дни".
// Дни задаются номерами 0-6 (0 = воскресенье) или сокращения через запятую.
func ParseAvailability(text string) (model.AvailabilitySpec, error) {
	fields := strings.Fields(text)
	if len(fields) < 3 || len(fields) > 4 {
		return model.AvailabilitySpec{}, &schedule.ValidationError{Field: "availability", Message: "please fill all fields"}
	}

	spec := model.AvailabilitySpec{StartDate: fields[0]}
	rest := fields[1:]
	if len(fields) == 4 {
		spec.EndDate = fields[1]
		rest = fields[2:]
	}

	from, to, ok := strings.Cut(rest[0], "-")
	if !ok {
		return model.AvailabilitySpec{}, &schedule.ValidationError{Field: "time", Message: "time range must be HH:MM-HH:MM"}
	}
	spec.StartTime, spec.EndTime = from, to

	for _, raw := range strings.Split(rest[1], ",") {
		raw = strings.ToLower(strings.TrimSpace(raw))
		if raw == "" {
			continue
		}
		day, ok := weekdayNames[raw]
		if !ok {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 || n > 6 {
				return model.AvailabilitySpec{}, &schedule.ValidationError{Field: "days_of_week", Message: fmt.Sprintf("unknown day %q", raw)}
			}
			day = n
		}
		spec.DaysOfWeek = append(spec.DaysOfWeek, day)
	}

	return spec, nil
}
