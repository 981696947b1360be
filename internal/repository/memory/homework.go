package memory

import (
	"context"
	"sort"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/repository"
	"github.com/google/uuid"
)

type HomeworkRepository struct {
	s *Store
}

func (r *HomeworkRepository) Create(_ context.Context, hw *model.Homework) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if hw.ID == uuid.Nil {
		hw.ID = uuid.New()
	}
	if hw.CreatedAt.IsZero() {
		hw.CreatedAt = time.Now()
	}
	r.s.homework[hw.ID] = cloneHomework(hw)
	return nil
}

func (r *HomeworkRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Homework, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	hw, ok := r.s.homework[id]
	if !ok {
		return nil, nil
	}
	return cloneHomework(hw), nil
}

func (r *HomeworkRepository) ListByTeacher(_ context.Context, teacherID string) ([]*model.Homework, error) {
	items := r.filter(func(hw *model.Homework) bool { return hw.TeacherID == teacherID })
	sort.SliceStable(items, func(i, j int) bool { return items[i].AssignedDate > items[j].AssignedDate })
	return items, nil
}

func (r *HomeworkRepository) ListByStudent(_ context.Context, studentID string) ([]*model.Homework, error) {
	items := r.filter(func(hw *model.Homework) bool { return hw.StudentID == studentID })
	sort.SliceStable(items, func(i, j int) bool { return items[i].DueDate < items[j].DueDate })
	return items, nil
}

func (r *HomeworkRepository) filter(keep func(*model.Homework) bool) []*model.Homework {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*model.Homework
	for _, hw := range r.s.homework {
		if keep(hw) {
			out = append(out, cloneHomework(hw))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *HomeworkRepository) SetDone(_ context.Context, id uuid.UUID, done bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	hw, ok := r.s.homework[id]
	if !ok {
		return repository.ErrNotFound
	}
	hw.Done = done
	return nil
}

func (r *HomeworkRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.homework[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.homework, id)
	return nil
}
