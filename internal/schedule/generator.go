package schedule

import (
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
)

// SlotLength длительность генерируемого слота в минутах
const SlotLength = model.DefaultLessonLength

// Generate разворачивает спецификацию доступности в новые часовые слоты.
// existing должен содержать только слоты этого учителя; пары (дата, время),
// которые уже есть в existing, пропускаются. Функция ничего не сохраняет.
func Generate(existing []*model.LessonSlot, spec model.AvailabilitySpec, teacherID string, now time.Time) ([]*model.LessonSlot, error) {
	if spec.StartDate == "" || spec.StartTime == "" || spec.EndTime == "" || len(spec.DaysOfWeek) == 0 {
		return nil, invalid("", "please fill all fields and select at least one day")
	}

	start, err := ParseDate(spec.StartDate)
	if err != nil {
		return nil, invalid("start_date", "start date must be yyyy-mm-dd")
	}

	end := start
	if spec.EndDate != "" {
		end, err = ParseDate(spec.EndDate)
		if err != nil {
			return nil, invalid("end_date", "end date must be yyyy-mm-dd")
		}
		if end.Before(start) {
			return nil, invalid("end_date", "end date is before start date")
		}
	}

	fromMin, err := ParseClock(spec.StartTime)
	if err != nil {
		return nil, invalid("start_time", "start time must be HH:MM")
	}
	toMin, err := ParseEndClock(spec.EndTime)
	if err != nil {
		return nil, invalid("end_time", "end time must be HH:MM")
	}

	days := make(map[time.Weekday]bool, len(spec.DaysOfWeek))
	for _, d := range spec.DaysOfWeek {
		if d < 0 || d > 6 {
			return nil, invalid("days_of_week", "days of week must be between 0 (Sunday) and 6 (Saturday)")
		}
		days[time.Weekday(d)] = true
	}

	taken := make(map[string]bool, len(existing))
	for _, slot := range existing {
		taken[slot.Key()] = true
	}

	var slots []*model.LessonSlot
	candidates := 0

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if !days[d.Weekday()] {
			continue
		}
		date := FormatDate(d)

		for t := fromMin; t+SlotLength <= toMin; t += SlotLength {
			candidates++
			clock := FormatClock(t)
			key := model.SlotKey(date, clock)
			if taken[key] {
				continue
			}
			taken[key] = true

			slots = append(slots, &model.LessonSlot{
				Date:             date,
				Time:             clock,
				TeacherID:        teacherID,
				BookedStudentIDs: []string{},
				CreatedAt:        now,
			})
		}
	}

	if len(slots) == 0 {
		ve := invalid("", "no valid slots to add (possible overlap, no days selected, or time range too short)")
		if candidates > 0 {
			ve.Err = ErrCollisionExhaustion
		}
		return nil, ve
	}

	return slots, nil
}
