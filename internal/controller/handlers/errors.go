package handlers

import (
	"errors"

	"github.com/Freeeeeet/lesson_scheduler/internal/schedule"
	"github.com/Freeeeeet/lesson_scheduler/internal/service"
)

// ErrorMessage возвращает текст ошибки для пользователя
func ErrorMessage(err error) string {
	var (
		validation *schedule.ValidationError
		partial    *service.PartialBookingFailure
	)

	switch {
	case errors.As(err, &partial):
		return "⚠️ Часть слотов уже заняли, записали только на свободные"
	case errors.Is(err, schedule.ErrCollisionExhaustion):
		return "❌ Нет новых слотов: все уже добавлены или окно слишком короткое"
	case errors.As(err, &validation):
		return "❌ " + validation.Message
	case errors.Is(err, service.ErrSlotUnavailable):
		return "❌ Этот слот уже занят. Выберите другое время."
	case errors.Is(err, service.ErrSlotInPast):
		return "❌ Этот слот в прошлом. Выберите другое время."
	case errors.Is(err, service.ErrSlotNotFound):
		return "❌ Слот не найден"
	case errors.Is(err, service.ErrSlotBooked):
		return "❌ На слот есть записи. Удалите его вместе с записями."
	case errors.Is(err, service.ErrBookingNotFound):
		return "❌ Запись не найдена"
	case errors.Is(err, service.ErrRescheduleTooLate):
		return "❌ Перенос уже недоступен, до урока слишком мало времени"
	case errors.Is(err, service.ErrNotOwner):
		return "❌ Это не ваша запись"
	case errors.Is(err, service.ErrTeacherOnly):
		return "❌ Эта функция доступна только учителю"
	case errors.Is(err, service.ErrTeacherNotFound):
		return "❌ Учитель ещё не настроен"
	case errors.Is(err, service.ErrStudentNotFound):
		return "❌ Студент не найден"
	case errors.Is(err, service.ErrHomeworkNotFound):
		return "❌ Задание не найдено"
	case service.IsStoreError(err):
		return "❌ Не удалось сохранить изменения, попробуйте ещё раз"
	default:
		return "❌ Произошла ошибка"
	}
}
