package schedule

import (
	"sort"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
)

// DaySlots слоты одного календарного дня, отсортированные по времени
type DaySlots struct {
	Date    string              `json:"date"`
	Weekday time.Weekday        `json:"weekday"`
	Slots   []*model.LessonSlot `json:"slots"`
}

// SlotView слот для учителя вместе с записями на него
type SlotView struct {
	Slot     *model.LessonSlot `json:"slot"`
	Booked   bool              `json:"booked"`
	Bookings []*model.Booking  `json:"bookings,omitempty"`
}

// SortSlots сортирует слоты по дате, затем по времени.
// Строковое сравнение корректно, т.к. оба поля дополнены нулями.
func SortSlots(slots []*model.LessonSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Date != slots[j].Date {
			return slots[i].Date < slots[j].Date
		}
		return slots[i].Time < slots[j].Time
	})
}

// OpenSlotsByDay группирует свободные слоты по дате.
// Занятые слоты никогда не попадают в студенческую выдачу.
func OpenSlotsByDay(slots []*model.LessonSlot) map[string][]*model.LessonSlot {
	byDay := make(map[string][]*model.LessonSlot)
	for _, slot := range slots {
		if !slot.IsOpen() {
			continue
		}
		byDay[slot.Date] = append(byDay[slot.Date], slot)
	}
	for _, daySlots := range byDay {
		SortSlots(daySlots)
	}
	return byDay
}

// OpenWeek возвращает семь дней недели со свободными слотами (дни без слотов тоже включены)
func OpenWeek(week Week, slots []*model.LessonSlot) []DaySlots {
	byDay := OpenSlotsByDay(slots)

	days := make([]DaySlots, 0, 7)
	for i, date := range week.Dates() {
		days = append(days, DaySlots{
			Date:    date,
			Weekday: time.Weekday(i),
			Slots:   byDay[date],
		})
	}
	return days
}

// MergeTeacherView объединяет все слоты с записями по slot id
func MergeTeacherView(slots []*model.LessonSlot, bookings []*model.Booking) []SlotView {
	bySlot := make(map[string][]*model.Booking, len(bookings))
	for _, b := range bookings {
		bySlot[b.SlotID.String()] = append(bySlot[b.SlotID.String()], b)
	}

	sorted := make([]*model.LessonSlot, len(slots))
	copy(sorted, slots)
	SortSlots(sorted)

	views := make([]SlotView, 0, len(sorted))
	for _, slot := range sorted {
		views = append(views, SlotView{
			Slot:     slot,
			Booked:   !slot.IsOpen(),
			Bookings: bySlot[slot.ID.String()],
		})
	}
	return views
}

// TeacherWeek то же, что MergeTeacherView, но только для слотов недели
func TeacherWeek(week Week, slots []*model.LessonSlot, bookings []*model.Booking) []SlotView {
	inWeek := make([]*model.LessonSlot, 0, len(slots))
	for _, slot := range slots {
		if week.Contains(slot.Date) {
			inWeek = append(inWeek, slot)
		}
	}
	return MergeTeacherView(inWeek, bookings)
}

// FindOrphans возвращает записи, чей слот больше не существует
func FindOrphans(slots []*model.LessonSlot, bookings []*model.Booking) []*model.Booking {
	known := make(map[string]bool, len(slots))
	for _, slot := range slots {
		known[slot.ID.String()] = true
	}

	var orphans []*model.Booking
	for _, b := range bookings {
		if !known[b.SlotID.String()] {
			orphans = append(orphans, b)
		}
	}
	return orphans
}
