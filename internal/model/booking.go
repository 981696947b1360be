package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusBooked BookingStatus = "booked" // единственный статус, который создаёт система
)

// DefaultLessonLength длительность урока в минутах
const DefaultLessonLength = 60

// Booking подтверждённая запись студента на слот.
// Date, Time, StudentName и Rate это снимок на момент записи и не пересчитываются.
type Booking struct {
	ID          uuid.UUID     `json:"id"`
	StudentID   string        `json:"student_id"`
	StudentName string        `json:"student_name"`
	SlotID      uuid.UUID     `json:"slot_id"`
	Date        string        `json:"date"`
	Time        string        `json:"time"`
	Length      int           `json:"length"`
	Status      BookingStatus `json:"status"`
	Rate        float64       `json:"rate"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Key возвращает ключ дата+время урока
func (b *Booking) Key() string {
	return SlotKey(b.Date, b.Time)
}
