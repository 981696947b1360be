package memory

import (
	"context"
	"sort"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/repository"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Upsert(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.users[user.ID]
	if !ok {
		if user.CreatedAt.IsZero() {
			// монотонный сдвиг, чтобы порядок создания был однозначным
			r.s.seq++
			user.CreatedAt = time.Now().Add(time.Duration(r.s.seq))
		}
		r.s.users[user.ID] = cloneUser(user)
		return nil
	}

	existing.Role = user.Role
	existing.FirstName = user.FirstName
	existing.LastName = user.LastName
	if user.Email != "" {
		existing.Email = user.Email
	}
	if user.TelegramID != nil {
		existing.TelegramID = user.TelegramID
	}

	user.Rate = existing.Rate
	user.Progress = existing.Progress
	user.Deleted = existing.Deleted
	user.CreatedAt = existing.CreatedAt
	return nil
}

// Put сохраняет профиль целиком, включая поля, которые Upsert не трогает
func (r *UserRepository) Put(user *model.User) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if user.CreatedAt.IsZero() {
		r.s.seq++
		user.CreatedAt = time.Now().Add(time.Duration(r.s.seq))
	}
	r.s.users[user.ID] = cloneUser(user)
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(user), nil
}

func (r *UserRepository) GetByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, user := range r.s.users {
		if user.TelegramID != nil && *user.TelegramID == telegramID {
			return cloneUser(user), nil
		}
	}
	return nil, nil
}

func (r *UserRepository) GetFirstTeacher(_ context.Context) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var first *model.User
	for _, user := range r.s.users {
		if !user.IsTeacher() {
			continue
		}
		if first == nil || user.CreatedAt.Before(first.CreatedAt) {
			first = user
		}
	}
	if first == nil {
		return nil, nil
	}
	return cloneUser(first), nil
}

func (r *UserRepository) UpdateRate(_ context.Context, teacherID string, rate float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[teacherID]
	if !ok || !user.IsTeacher() {
		return repository.ErrNotFound
	}
	user.Rate = &rate
	return nil
}

func (r *UserRepository) ListStudents(_ context.Context) ([]*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*model.User
	for _, user := range r.s.users {
		if user.Role == model.RoleStudent {
			out = append(out, cloneUser(user))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName() < out[j].FullName() })
	return out, nil
}

func (r *UserRepository) SoftDelete(_ context.Context, studentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[studentID]
	if !ok || user.Role != model.RoleStudent {
		return repository.ErrNotFound
	}
	user.Deleted = true
	return nil
}
