package handlers

import (
	"fmt"
	"strings"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/schedule"
)

func pluralize(count int, one, few, many string) string {
	switch {
	case count%10 == 1 && count%100 != 11:
		return one
	case count%10 >= 2 && count%10 <= 4 && (count%100 < 10 || count%100 >= 20):
		return few
	default:
		return many
	}
}

// PluralizeSlots возвращает правильное склонение слова "слот"
func PluralizeSlots(count int) string {
	return pluralize(count, "слот", "слота", "слотов")
}

// PluralizeBookings возвращает правильное склонение слова "запись"
func PluralizeBookings(count int) string {
	return pluralize(count, "запись", "записи", "записей")
}

// PluralizeLessons возвращает правильное склонение слова "урок"
func PluralizeLessons(count int) string {
	return pluralize(count, "урок", "урока", "уроков")
}

var weekdayShort = [...]string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}

// formatDate "yyyy-mm-dd" -> "Пн 03.06"
func formatDate(date string) string {
	d, err := schedule.ParseDate(date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s %s", weekdayShort[d.Weekday()], d.Format("02.01"))
}

func formatRate(rate float64) string {
	return "$" + schedule.FormatAmount(rate)
}

func formatBooking(b *model.Booking) string {
	return fmt.Sprintf("📅 %s %s · %s", formatDate(b.Date), b.Time, formatRate(b.Rate))
}

func formatOpenWeek(label string, days []schedule.DaySlots) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🗓 Свободные слоты, %s\n", label)

	total := 0
	for _, day := range days {
		if len(day.Slots) == 0 {
			continue
		}
		times := make([]string, 0, len(day.Slots))
		for _, slot := range day.Slots {
			times = append(times, slot.Time)
		}
		total += len(day.Slots)
		fmt.Fprintf(&sb, "\n%s: %s", formatDate(day.Date), strings.Join(times, ", "))
	}

	if total == 0 {
		sb.WriteString("\nНа этой неделе свободных слотов нет.")
	}
	return sb.String()
}

func formatHomework(hw *model.Homework, daysLeft string) string {
	mark := "⬜️"
	if hw.Done {
		mark = "✅"
	}
	return fmt.Sprintf("%s %s\n%s\nСдать: %s (%s)", mark, hw.Title, hw.Description, hw.DueDate, daysLeft)
}
