package model

import (
	"time"

	"github.com/google/uuid"
)

// LessonSlot один часовой слот, который может забронировать студент
type LessonSlot struct {
	ID               uuid.UUID `json:"id"`
	Date             string    `json:"date"` // yyyy-mm-dd, локальная дата без часового пояса
	Time             string    `json:"time"` // HH:MM, 24 часа
	TeacherID        string    `json:"teacher_id"`
	BookedStudentIDs []string  `json:"booked_student_ids"`
	CreatedAt        time.Time `json:"created_at"`
}

// IsOpen слот свободен, если в нём нет ни одного студента
func (s *LessonSlot) IsOpen() bool {
	return len(s.BookedStudentIDs) == 0
}

// HasStudent проверяет, занят ли слот указанным студентом
func (s *LessonSlot) HasStudent(studentID string) bool {
	for _, id := range s.BookedStudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// Key возвращает ключ коллизии (дата + время)
func (s *LessonSlot) Key() string {
	return SlotKey(s.Date, s.Time)
}

// SlotKey строит ключ коллизии для пары дата/время
func SlotKey(date, clock string) string {
	return date + " " + clock
}
