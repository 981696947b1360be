package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"

	Day = 24 * time.Hour
)

// ParseDate разбирает yyyy-mm-dd как календарную дату.
// Результат это полночь UTC и годится только для арифметики по дням.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate форматирует календарную дату без сдвига часового пояса
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// ParseClock разбирает HH:MM (или HH:MM:SS) в минуты от полуночи.
// Все поля строго из двух цифр.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("parse time %q: expected HH:MM", s)
	}
	for _, p := range parts {
		if !twoDigits(p) {
			return 0, fmt.Errorf("parse time %q: expected HH:MM", s)
		}
	}

	hour, _ := strconv.Atoi(parts[0])
	if hour > 23 {
		return 0, fmt.Errorf("parse time %q: invalid hour", s)
	}
	minute, _ := strconv.Atoi(parts[1])
	if minute > 59 {
		return 0, fmt.Errorf("parse time %q: invalid minute", s)
	}
	if len(parts) == 3 {
		if second, _ := strconv.Atoi(parts[2]); second > 59 {
			return 0, fmt.Errorf("parse time %q: invalid second", s)
		}
	}

	return hour*60 + minute, nil
}

// ParseEndClock как ParseClock, но ещё принимает 24:00 как конец дня
func ParseEndClock(s string) (int, error) {
	if v := strings.TrimSpace(s); v == "24:00" || v == "24:00:00" {
		return 24 * 60, nil
	}
	return ParseClock(s)
}

func twoDigits(s string) bool {
	return len(s) == 2 && s[0] >= '0' && s[0] <= '9' && s[1] >= '0' && s[1] <= '9'
}

// FormatClock форматирует минуты от полуночи в HH:MM
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// LessonStart возвращает момент начала урока в заданной локации
func LessonStart(date, clock string, loc *time.Location) (time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}

	minutes, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(d.Year(), d.Month(), d.Day(), minutes/60, minutes%60, 0, 0, loc), nil
}

// Today возвращает текущую локальную дату в формате yyyy-mm-dd
func Today(now time.Time) string {
	return FormatDate(now)
}
