package state

import "github.com/google/uuid"

// UserState текущий шаг диалога с пользователем
type UserState string

const (
	StateNone UserState = "" // Нет активного диалога

	StateEnterRate        UserState = "enter_rate"
	StateEnterSlots       UserState = "enter_slots"
	StateEnterHomework    UserState = "enter_homework"
	StateChooseReschedule UserState = "choose_reschedule"
)

// Dialog хранит данные пользователя между сообщениями
type Dialog struct {
	State     UserState
	Selected  []uuid.UUID // выбранные для записи слоты, в порядке выбора
	BookingID uuid.UUID   // переносимая запись
	StudentID string      // получатель домашнего задания
}
