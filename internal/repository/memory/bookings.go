package memory

import (
	"context"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/repository"
	"github.com/Freeeeeet/lesson_scheduler/internal/schedule"
	"github.com/google/uuid"
)

type BookingRepository struct {
	s *Store
}

// occupy вызывается под мьютексом
func (r *BookingRepository) occupy(slotID uuid.UUID, studentID string) error {
	slot, ok := r.s.slots[slotID]
	if !ok {
		return repository.ErrNotFound
	}
	if !slot.IsOpen() {
		return repository.ErrSlotTaken
	}
	slot.BookedStudentIDs = append(slot.BookedStudentIDs, studentID)
	return nil
}

// release вызывается под мьютексом
func (r *BookingRepository) release(slotID uuid.UUID, studentID string) {
	slot, ok := r.s.slots[slotID]
	if !ok {
		return
	}
	kept := slot.BookedStudentIDs[:0]
	for _, id := range slot.BookedStudentIDs {
		if id != studentID {
			kept = append(kept, id)
		}
	}
	slot.BookedStudentIDs = kept
}

func (r *BookingRepository) insert(booking *model.Booking) {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}
	r.s.bookings[booking.ID] = cloneBooking(booking)
}

func (r *BookingRepository) Create(_ context.Context, booking *model.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.occupy(booking.SlotID, booking.StudentID); err != nil {
		return err
	}
	r.insert(booking)
	return nil
}

func (r *BookingRepository) Delete(_ context.Context, id uuid.UUID) (*model.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	booking, ok := r.s.bookings[id]
	if !ok {
		return nil, nil
	}
	delete(r.s.bookings, id)
	r.release(booking.SlotID, booking.StudentID)
	return cloneBooking(booking), nil
}

func (r *BookingRepository) Reschedule(_ context.Context, oldID uuid.UUID, next *model.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	old, hadOld := r.s.bookings[oldID]
	if hadOld {
		r.release(old.SlotID, old.StudentID)
	}

	if err := r.occupy(next.SlotID, next.StudentID); err != nil {
		if hadOld {
			// откат: старый слот был освобождён только что, занимаем его обратно
			if slot, ok := r.s.slots[old.SlotID]; ok {
				slot.BookedStudentIDs = append(slot.BookedStudentIDs, old.StudentID)
			}
		}
		return err
	}

	if hadOld {
		delete(r.s.bookings, oldID)
	}
	r.insert(next)
	return nil
}

func (r *BookingRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	booking, ok := r.s.bookings[id]
	if !ok {
		return nil, nil
	}
	return cloneBooking(booking), nil
}

func (r *BookingRepository) ListByStudent(_ context.Context, studentID string) ([]*model.Booking, error) {
	return r.filter(func(b *model.Booking) bool { return b.StudentID == studentID }), nil
}

func (r *BookingRepository) ListAll(_ context.Context) ([]*model.Booking, error) {
	return r.filter(func(*model.Booking) bool { return true }), nil
}

func (r *BookingRepository) filter(keep func(*model.Booking) bool) []*model.Booking {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*model.Booking
	for _, b := range r.s.bookings {
		if keep(b) {
			out = append(out, cloneBooking(b))
		}
	}
	sortBookings(out)
	return out
}

func (r *BookingRepository) CountOrphans(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	slots := make([]*model.LessonSlot, 0, len(r.s.slots))
	for _, slot := range r.s.slots {
		slots = append(slots, slot)
	}
	bookings := make([]*model.Booking, 0, len(r.s.bookings))
	for _, b := range r.s.bookings {
		bookings = append(bookings, b)
	}
	return len(schedule.FindOrphans(slots, bookings)), nil
}
