package memory

import (
	"context"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/repository"
	"github.com/google/uuid"
)

type SlotRepository struct {
	s *Store
}

func (r *SlotRepository) CreateBatch(_ context.Context, slots []*model.LessonSlot) ([]*model.LessonSlot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	taken := make(map[string]bool, len(r.s.slots))
	for _, existing := range r.s.slots {
		taken[existing.TeacherID+"|"+existing.Key()] = true
	}

	created := make([]*model.LessonSlot, 0, len(slots))
	for _, slot := range slots {
		key := slot.TeacherID + "|" + slot.Key()
		if taken[key] {
			continue
		}
		if slot.ID == uuid.Nil {
			slot.ID = uuid.New()
		}
		if slot.CreatedAt.IsZero() {
			slot.CreatedAt = time.Now()
		}
		if slot.BookedStudentIDs == nil {
			slot.BookedStudentIDs = []string{}
		}
		taken[key] = true
		r.s.slots[slot.ID] = cloneSlot(slot)
		created = append(created, slot)
	}
	return created, nil
}

func (r *SlotRepository) GetByID(_ context.Context, id uuid.UUID) (*model.LessonSlot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	slot, ok := r.s.slots[id]
	if !ok {
		return nil, nil
	}
	return cloneSlot(slot), nil
}

func (r *SlotRepository) ListByTeacher(_ context.Context, teacherID string) ([]*model.LessonSlot, error) {
	return r.filter(func(slot *model.LessonSlot) bool {
		return slot.TeacherID == teacherID
	}), nil
}

func (r *SlotRepository) ListOpenByTeacher(_ context.Context, teacherID, from string) ([]*model.LessonSlot, error) {
	return r.filter(func(slot *model.LessonSlot) bool {
		return slot.TeacherID == teacherID && slot.IsOpen() && slot.Date >= from
	}), nil
}

func (r *SlotRepository) filter(keep func(*model.LessonSlot) bool) []*model.LessonSlot {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*model.LessonSlot
	for _, slot := range r.s.slots {
		if keep(slot) {
			out = append(out, cloneSlot(slot))
		}
	}
	sortSlots(out)
	return out
}

func (r *SlotRepository) Delete(_ context.Context, id uuid.UUID, cascade bool) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	slot, ok := r.s.slots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !slot.IsOpen() && !cascade {
		return nil, repository.ErrSlotOccupied
	}

	var removed []uuid.UUID
	if cascade {
		for bookingID, booking := range r.s.bookings {
			if booking.SlotID == id {
				removed = append(removed, bookingID)
				delete(r.s.bookings, bookingID)
			}
		}
	}
	delete(r.s.slots, id)
	return removed, nil
}

// Remove удаляет слот без проверок и без каскада, оставляя записи сиротами.
// Нужен для проверки аудита сирот.
func (r *SlotRepository) Remove(id uuid.UUID) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.slots, id)
}
