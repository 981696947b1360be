package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
)

// RescheduleLead минимальный запас времени до урока для переноса
const RescheduleLead = 7 * Day

// IsPastDate сравнивает только даты: сегодняшняя дата не считается прошедшей
func IsPastDate(date string, now time.Time) bool {
	return date < Today(now)
}

// CanReschedule перенос доступен, если до урока осталось не меньше lead.
// Для lead, кратного суткам, это то же самое, что floor(дни) >= lead/сутки.
func CanReschedule(lessonStart, now time.Time, lead time.Duration) bool {
	return lessonStart.Sub(now) >= lead
}

// CalendarDaysBetween разница в календарных днях между датами yyyy-mm-dd (to - from)
func CalendarDaysBetween(from, to string) (int, error) {
	f, err := ParseDate(from)
	if err != nil {
		return 0, err
	}
	t, err := ParseDate(to)
	if err != nil {
		return 0, err
	}
	return int(t.Sub(f) / Day), nil
}

// DaysLeft подпись срока сдачи домашнего задания относительно сегодняшнего дня
func DaysLeft(dueDate string, now time.Time) string {
	if dueDate == "" {
		return ""
	}

	diff, err := CalendarDaysBetween(Today(now), dueDate)
	if err != nil {
		return ""
	}

	switch {
	case diff > 1:
		return fmt.Sprintf("%d days left", diff)
	case diff == 1:
		return "1 day left"
	case diff == 0:
		return "Due today"
	case diff == -1:
		return "Overdue by 1 day"
	default:
		return fmt.Sprintf("Overdue by %d days", -diff)
	}
}

// Upcoming возвращает записи, начинающиеся после now, по возрастанию времени
func Upcoming(bookings []*model.Booking, now time.Time) []*model.Booking {
	type dated struct {
		booking *model.Booking
		start   time.Time
	}

	var upcoming []dated
	for _, b := range bookings {
		start, err := LessonStart(b.Date, b.Time, now.Location())
		if err != nil || !start.After(now) {
			continue
		}
		upcoming = append(upcoming, dated{booking: b, start: start})
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].start.Before(upcoming[j].start)
	})

	result := make([]*model.Booking, len(upcoming))
	for i, u := range upcoming {
		result[i] = u.booking
	}
	return result
}

// NextLesson ближайшая будущая запись или nil
func NextLesson(bookings []*model.Booking, now time.Time) *model.Booking {
	upcoming := Upcoming(bookings, now)
	if len(upcoming) == 0 {
		return nil
	}
	return upcoming[0]
}
