// Package memory хранит данные в памяти процесса. Используется при STORE=memory
// и в тестах сервисов; семантика совпадает с pgx-репозиториями.
package memory

import (
	"sort"
	"sync"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/google/uuid"
)

type Store struct {
	mu       sync.Mutex
	slots    map[uuid.UUID]*model.LessonSlot
	bookings map[uuid.UUID]*model.Booking
	users    map[string]*model.User
	homework map[uuid.UUID]*model.Homework
	seq      int64

	Slots    *SlotRepository
	Bookings *BookingRepository
	Users    *UserRepository
	Homework *HomeworkRepository
}

func New() *Store {
	s := &Store{
		slots:    make(map[uuid.UUID]*model.LessonSlot),
		bookings: make(map[uuid.UUID]*model.Booking),
		users:    make(map[string]*model.User),
		homework: make(map[uuid.UUID]*model.Homework),
	}
	s.Slots = &SlotRepository{s: s}
	s.Bookings = &BookingRepository{s: s}
	s.Users = &UserRepository{s: s}
	s.Homework = &HomeworkRepository{s: s}
	return s
}

func cloneSlot(slot *model.LessonSlot) *model.LessonSlot {
	c := *slot
	c.BookedStudentIDs = append([]string{}, slot.BookedStudentIDs...)
	return &c
}

func cloneBooking(b *model.Booking) *model.Booking {
	c := *b
	return &c
}

func cloneUser(u *model.User) *model.User {
	c := *u
	return &c
}

func cloneHomework(hw *model.Homework) *model.Homework {
	c := *hw
	return &c
}

func sortBookings(items []*model.Booking) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Date != items[j].Date {
			return items[i].Date < items[j].Date
		}
		return items[i].Time < items[j].Time
	})
}

func sortSlots(items []*model.LessonSlot) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Date != items[j].Date {
			return items[i].Date < items[j].Date
		}
		return items[i].Time < items[j].Time
	})
}
