package schedule

import (
	"fmt"
	"time"
)

// Week неделя с воскресенья по субботу
type Week struct {
	Start time.Time // воскресенье, 00:00 в локации исходной даты
}

// WeekOf возвращает неделю, содержащую t
func WeekOf(t time.Time) Week {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return Week{Start: midnight.AddDate(0, 0, -int(midnight.Weekday()))}
}

// ParseWeek возвращает неделю, содержащую дату yyyy-mm-dd.
// Пустая строка означает текущую неделю.
func ParseWeek(s string, now time.Time) (Week, error) {
	if s == "" {
		return WeekOf(now), nil
	}

	d, err := ParseDate(s)
	if err != nil {
		return Week{}, invalid("week", "week must be yyyy-mm-dd")
	}

	return WeekOf(time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, now.Location())), nil
}

func (w Week) Next() Week {
	return Week{Start: w.Start.AddDate(0, 0, 7)}
}

func (w Week) Prev() Week {
	return Week{Start: w.Start.AddDate(0, 0, -7)}
}

// End возвращает субботу недели
func (w Week) End() time.Time {
	return w.Start.AddDate(0, 0, 6)
}

// Dates возвращает семь дат недели в формате yyyy-mm-dd
func (w Week) Dates() []string {
	dates := make([]string, 7)
	for i := range dates {
		dates[i] = FormatDate(w.Start.AddDate(0, 0, i))
	}
	return dates
}

// Contains проверяет, попадает ли дата yyyy-mm-dd в неделю
func (w Week) Contains(date string) bool {
	return date >= FormatDate(w.Start) && date <= FormatDate(w.End())
}

// IsCurrent проверяет, является ли неделя текущей
func (w Week) IsCurrent(now time.Time) bool {
	return w.Start.Equal(WeekOf(now).Start)
}

// Label форматирует диапазон: "June 2-8" или "Jun 30 - Jul 6"
func (w Week) Label() string {
	end := w.End()
	if w.Start.Month() == end.Month() {
		return fmt.Sprintf("%s %d-%d", w.Start.Month(), w.Start.Day(), end.Day())
	}
	return fmt.Sprintf("%s - %s", w.Start.Format("Jan 2"), end.Format("Jan 2"))
}
