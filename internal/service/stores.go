package service

import (
	"context"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/google/uuid"
)

// Хранилища, от которых зависят сервисы. Реализуются pgx-репозиториями
// и in-memory хранилищем с одинаковой семантикой.

type SlotStore interface {
	CreateBatch(ctx context.Context, slots []*model.LessonSlot) ([]*model.LessonSlot, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.LessonSlot, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]*model.LessonSlot, error)
	ListOpenByTeacher(ctx context.Context, teacherID, from string) ([]*model.LessonSlot, error)
	Delete(ctx context.Context, id uuid.UUID, cascade bool) ([]uuid.UUID, error)
}

type BookingStore interface {
	Create(ctx context.Context, booking *model.Booking) error
	Delete(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	Reschedule(ctx context.Context, oldID uuid.UUID, next *model.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	ListByStudent(ctx context.Context, studentID string) ([]*model.Booking, error)
	ListAll(ctx context.Context) ([]*model.Booking, error)
	CountOrphans(ctx context.Context) (int, error)
}

type UserStore interface {
	Upsert(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	GetFirstTeacher(ctx context.Context) (*model.User, error)
	UpdateRate(ctx context.Context, teacherID string, rate float64) error
	ListStudents(ctx context.Context) ([]*model.User, error)
	SoftDelete(ctx context.Context, studentID string) error
}

type HomeworkStore interface {
	Create(ctx context.Context, hw *model.Homework) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Homework, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]*model.Homework, error)
	ListByStudent(ctx context.Context, studentID string) ([]*model.Homework, error)
	SetDone(ctx context.Context, id uuid.UUID, done bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}
