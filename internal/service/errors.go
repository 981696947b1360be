package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/google/uuid"
)

var (
	ErrSlotUnavailable   = errors.New("slot is no longer available")
	ErrSlotNotFound      = errors.New("slot not found")
	ErrSlotInPast        = errors.New("cannot book a slot in the past")
	ErrSlotBooked        = errors.New("slot has bookings, delete with cascade to cancel them")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrRescheduleTooLate = errors.New("lessons can only be rescheduled at least 7 days in advance")
	ErrNotOwner          = errors.New("this record belongs to another user")
	ErrTeacherOnly       = errors.New("only the teacher can do this")
	ErrTeacherNotFound   = errors.New("teacher profile not found")
	ErrStudentNotFound   = errors.New("student not found")
	ErrHomeworkNotFound  = errors.New("homework not found")
)

// StoreError сбой хранилища при выполнении операции Op
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// UserMessage текст для пользователя без технических деталей
func (e *StoreError) UserMessage() string {
	return fmt.Sprintf("failed to %s, please try again", e.Op)
}

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// IsStoreError проверяет, является ли ошибка сбоем хранилища
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// PartialBookingFailure часть слотов пакета записана, часть нет.
// Успешные записи остаются в силе.
type PartialBookingFailure struct {
	Booked []*model.Booking
	Failed map[uuid.UUID]error
}

func (e *PartialBookingFailure) Error() string {
	total := len(e.Booked) + len(e.Failed)
	reasons := make([]string, 0, len(e.Failed))
	for id, err := range e.Failed {
		reasons = append(reasons, id.String()+": "+err.Error())
	}
	return fmt.Sprintf("%d of %d slots could not be booked (%s)", len(e.Failed), total, strings.Join(reasons, "; "))
}

// Unwrap позволяет проверять причины через errors.Is
func (e *PartialBookingFailure) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, err := range e.Failed {
		errs = append(errs, err)
	}
	return errs
}
