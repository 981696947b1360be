package handlers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/controller/state"
	"github.com/Freeeeeet/lesson_scheduler/internal/feed"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/repository/memory"
	"github.com/Freeeeeet/lesson_scheduler/internal/schedule"
	"github.com/Freeeeeet/lesson_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	teacherTG int64 = 1
	studentTG int64 = 2
)

// fakeSender запоминает всё, что обработчики отправили в чат
type fakeSender struct {
	mu       sync.Mutex
	messages []string
	edits    []string
	answers  []string
	photos   int
}

func (f *fakeSender) SendMessage(_ context.Context, p *bot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, p.Text)
	return &models.Message{}, nil
}

func (f *fakeSender) SendPhoto(context.Context, *bot.SendPhotoParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.photos++
	return &models.Message{}, nil
}

func (f *fakeSender) EditMessageText(_ context.Context, p *bot.EditMessageTextParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, p.Text)
	return &models.Message{}, nil
}

func (f *fakeSender) AnswerCallbackQuery(_ context.Context, p *bot.AnswerCallbackQueryParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, p.Text)
	return true, nil
}

func (f *fakeSender) lastMessage() string {
	if len(f.messages) == 0 {
		return ""
	}
	return f.messages[len(f.messages)-1]
}

func newTestHandlers(t *testing.T) (*Handlers, *memory.Store) {
	t.Helper()

	store := memory.New()
	changes := feed.NewInMemory(8)
	t.Cleanup(func() { _ = changes.Close() })

	settings := service.Settings{
		TeacherID:   service.TelegramUserID(teacherTG),
		DefaultRate: 60,
		Location:    time.UTC,
	}
	logger := zap.NewNop()

	rates := service.NewRateResolver(store.Users, settings, changes, logger)
	return NewHandlers(Services{
		Users:        service.NewUserService(store.Users, changes, settings, logger),
		Bookings:     service.NewBookingService(store.Slots, store.Bookings, rates, changes, settings, nil, logger),
		Teacher:      service.NewTeacherService(store.Slots, store.Bookings, store.Users, rates, changes, settings, nil, logger),
		Availability: service.NewAvailabilityService(store.Slots, store.Bookings, rates, changes, settings, logger),
		Rates:        rates,
		Homework:     service.NewHomeworkService(store.Homework, store.Users, rates, changes, settings, logger),
	}, state.NewManager(), logger), store
}

func textMessage(tgID int64, text string) *models.Message {
	return &models.Message{
		ID:   10,
		Chat: models.Chat{ID: tgID},
		From: &models.User{ID: tgID, FirstName: fmt.Sprintf("user%d", tgID)},
		Text: text,
	}
}

func callback(tgID int64, data string) *models.CallbackQuery {
	return &models.CallbackQuery{
		ID:      "cb",
		From:    models.User{ID: tgID, FirstName: fmt.Sprintf("user%d", tgID)},
		Data:    data,
		Message: models.MaybeInaccessibleMessage{Message: textMessage(tgID, "")},
	}
}

// publishFuture создаёт слоты 09:00 и 10:00 в далёком понедельнике от имени учителя
func publishFuture(t *testing.T, h *Handlers, out *fakeSender) []*model.LessonSlot {
	t.Helper()
	ctx := context.Background()

	_, err := h.userFor(ctx, &models.User{ID: teacherTG, FirstName: "Teacher"})
	require.NoError(t, err)

	h.dialogs.SetState(teacherTG, state.StateEnterSlots)
	h.handleText(ctx, out, textMessage(teacherTG, "2099-01-05 09:00-11:00 пн"))
	require.Contains(t, out.lastMessage(), "Добавлено 2 слота")
	assert.Equal(t, state.StateNone, h.dialogs.GetState(teacherTG))

	views, err := h.Availability.TeacherWeek(ctx, schedule.WeekOf(time.Date(2099, 1, 5, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	require.Len(t, views, 2)
	return []*model.LessonSlot{views[0].Slot, views[1].Slot}
}

func TestPickAndBook(t *testing.T) {
	h, store := newTestHandlers(t)
	out := &fakeSender{}
	ctx := context.Background()
	slots := publishFuture(t, h, out)

	h.route(ctx, out, callback(studentTG, cbPick+slots[0].ID.String()))
	h.route(ctx, out, callback(studentTG, cbPick+slots[1].ID.String()))
	assert.Contains(t, out.lastMessage(), "2 урока × $60.00 = $120.00")

	// повторное нажатие снимает выбор
	h.route(ctx, out, callback(studentTG, cbPick+slots[1].ID.String()))
	assert.Equal(t, []uuid.UUID{slots[0].ID}, h.dialogs.Get(studentTG).Selected)

	h.route(ctx, out, callback(studentTG, cbBook))
	require.NotEmpty(t, out.edits)
	assert.Contains(t, out.edits[len(out.edits)-1], "Вы записаны: 1 урок")
	assert.Empty(t, h.dialogs.Get(studentTG).Selected)

	bookings, err := store.Bookings.ListByStudent(ctx, service.TelegramUserID(studentTG))
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, slots[0].ID, bookings[0].SlotID)
	assert.Equal(t, 60.0, bookings[0].Rate)
}

func TestBookWithoutSelection(t *testing.T) {
	h, _ := newTestHandlers(t)
	out := &fakeSender{}

	h.route(context.Background(), out, callback(studentTG, cbBook))
	assert.Equal(t, []string{"Сначала выберите слоты в /week"}, out.answers)
}

func TestMoveTo(t *testing.T) {
	h, store := newTestHandlers(t)
	out := &fakeSender{}
	ctx := context.Background()
	slots := publishFuture(t, h, out)

	h.route(ctx, out, callback(studentTG, cbPick+slots[0].ID.String()))
	h.route(ctx, out, callback(studentTG, cbBook))

	bookings, err := store.Bookings.ListByStudent(ctx, service.TelegramUserID(studentTG))
	require.NoError(t, err)
	require.Len(t, bookings, 1)

	// без выбранной записи перенос не начинается
	h.route(ctx, out, callback(studentTG, cbMoveTo+slots[1].ID.String()))
	assert.Equal(t, "Сначала выберите запись в /mybookings", out.answers[len(out.answers)-1])

	h.dialogs.Update(studentTG, func(d *state.Dialog) {
		d.State = state.StateChooseReschedule
		d.BookingID = bookings[0].ID
	})
	h.route(ctx, out, callback(studentTG, cbMoveTo+slots[1].ID.String()))
	assert.Contains(t, out.edits[len(out.edits)-1], "Урок перенесён")
	assert.Equal(t, state.StateNone, h.dialogs.GetState(studentTG))

	bookings, err = store.Bookings.ListByStudent(ctx, service.TelegramUserID(studentTG))
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "10:00", bookings[0].Time)
}

func TestRateDialog(t *testing.T) {
	h, _ := newTestHandlers(t)
	out := &fakeSender{}
	ctx := context.Background()

	_, err := h.userFor(ctx, &models.User{ID: teacherTG, FirstName: "Teacher"})
	require.NoError(t, err)

	h.dialogs.SetState(teacherTG, state.StateEnterRate)
	h.handleText(ctx, out, textMessage(teacherTG, "abc"))
	assert.Equal(t, state.StateEnterRate, h.dialogs.GetState(teacherTG))

	h.handleText(ctx, out, textMessage(teacherTG, "75"))
	assert.Contains(t, out.lastMessage(), "$75.00")
	assert.Equal(t, state.StateNone, h.dialogs.GetState(teacherTG))

	rate, err := h.Rates.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 75.0, rate)
}

func TestTeacherCallbacksRejectStudents(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"delete slot", cbDeleteSlot + uuid.NewString()},
		{"force delete slot", cbForceSlot + uuid.NewString()},
		{"teacher week", cbTeachWeek + "2099-01-04"},
		{"assign homework", cbAssign + service.TelegramUserID(studentTG)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandlers(t)
			out := &fakeSender{}

			h.route(context.Background(), out, callback(studentTG, tt.data))
			assert.Equal(t, ErrorMessage(service.ErrTeacherOnly), out.lastMessage())
			assert.Equal(t, state.StateNone, h.dialogs.GetState(studentTG))
		})
	}
}

func TestStudentCannotAssignHomework(t *testing.T) {
	h, store := newTestHandlers(t)
	out := &fakeSender{}
	ctx := context.Background()
	studentID := service.TelegramUserID(studentTG)

	h.route(ctx, out, callback(studentTG, cbAssign+studentID))

	// даже если диалог каким-то образом открыт, ввод студента не создаёт задание
	h.dialogs.Update(studentTG, func(d *state.Dialog) {
		d.State = state.StateEnterHomework
		d.StudentID = studentID
	})
	h.handleText(ctx, out, textMessage(studentTG, "self-assigned; by a student; 2099-01-01"))
	assert.Equal(t, ErrorMessage(service.ErrTeacherOnly), out.lastMessage())
	assert.Equal(t, state.StateNone, h.dialogs.GetState(studentTG))

	items, err := store.Homework.ListByStudent(ctx, studentID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestBookWhenEverySelectedSlotIsTaken(t *testing.T) {
	h, store := newTestHandlers(t)
	out := &fakeSender{}
	ctx := context.Background()
	slots := publishFuture(t, h, out)
	const otherTG int64 = 3

	h.route(ctx, out, callback(studentTG, cbPick+slots[0].ID.String()))
	h.route(ctx, out, callback(studentTG, cbPick+slots[1].ID.String()))

	h.route(ctx, out, callback(otherTG, cbPick+slots[0].ID.String()))
	h.route(ctx, out, callback(otherTG, cbPick+slots[1].ID.String()))
	h.route(ctx, out, callback(otherTG, cbBook))

	edits := len(out.edits)
	h.route(ctx, out, callback(studentTG, cbBook))
	assert.Equal(t, ErrorMessage(service.ErrSlotUnavailable), out.answers[len(out.answers)-1])
	assert.Len(t, out.edits, edits)

	mine, err := store.Bookings.ListByStudent(ctx, service.TelegramUserID(studentTG))
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestDeleteBookedSlotAsksForCascade(t *testing.T) {
	h, store := newTestHandlers(t)
	out := &fakeSender{}
	ctx := context.Background()
	slots := publishFuture(t, h, out)

	h.route(ctx, out, callback(studentTG, cbPick+slots[0].ID.String()))
	h.route(ctx, out, callback(studentTG, cbBook))

	h.route(ctx, out, callback(teacherTG, cbDeleteSlot+slots[0].ID.String()))
	assert.Contains(t, out.lastMessage(), "Удалить вместе с ними?")

	h.route(ctx, out, callback(teacherTG, cbForceSlot+slots[0].ID.String()))
	assert.Contains(t, out.answers[len(out.answers)-1], "отменено 1 запись")

	slot, err := store.Slots.GetByID(ctx, slots[0].ID)
	require.NoError(t, err)
	assert.Nil(t, slot)
}

func TestInaccessibleCallbackMessage(t *testing.T) {
	h, _ := newTestHandlers(t)
	out := &fakeSender{}

	cb := callback(studentTG, cbBook)
	cb.Message = models.MaybeInaccessibleMessage{}
	h.route(context.Background(), out, cb)
	assert.Equal(t, []string{"❌ Сообщение устарело"}, out.answers)
}

func TestParseAvailability(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    model.AvailabilitySpec
		wantErr bool
	}{
		{
			name:  "single day",
			input: "2024-06-04 18:00-20:00 вт",
			want:  model.AvailabilitySpec{StartDate: "2024-06-04", StartTime: "18:00", EndTime: "20:00", DaysOfWeek: []int{2}},
		},
		{
			name:  "range with mixed day names",
			input: "2024-06-03 2024-06-30 09:00-12:00 Пн,3,fri",
			want: model.AvailabilitySpec{
				StartDate: "2024-06-03", EndDate: "2024-06-30",
				StartTime: "09:00", EndTime: "12:00", DaysOfWeek: []int{1, 3, 5},
			},
		},
		{name: "too few fields", input: "2024-06-03 09:00-12:00", wantErr: true},
		{name: "missing dash", input: "2024-06-03 09:00 пн", wantErr: true},
		{name: "unknown day", input: "2024-06-03 09:00-12:00 funday", wantErr: true},
		{name: "day out of range", input: "2024-06-03 09:00-12:00 7", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAvailability(tt.input)
			if tt.wantErr {
				assert.True(t, schedule.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{service.ErrSlotUnavailable, "❌ Этот слот уже занят. Выберите другое время."},
		{fmt.Errorf("wrap: %w", service.ErrBookingNotFound), "❌ Запись не найдена"},
		{&schedule.ValidationError{Message: "please select at least one slot"}, "❌ please select at least one slot"},
		{&schedule.ValidationError{Message: "x", Err: schedule.ErrCollisionExhaustion}, "❌ Нет новых слотов: все уже добавлены или окно слишком короткое"},
		{errors.New("boom"), "❌ Произошла ошибка"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorMessage(tt.err), tt.err.Error())
	}
}

func TestPluralize(t *testing.T) {
	assert.Equal(t, "слот", PluralizeSlots(1))
	assert.Equal(t, "слота", PluralizeSlots(3))
	assert.Equal(t, "слотов", PluralizeSlots(11))
	assert.Equal(t, "слот", PluralizeSlots(21))
	assert.Equal(t, "записей", PluralizeBookings(0))
	assert.Equal(t, "урока", PluralizeLessons(22))
}
