package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/feed"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/repository"
	"github.com/Freeeeeet/lesson_scheduler/internal/schedule"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HomeworkInput данные нового задания
type HomeworkInput struct {
	StudentID   string `json:"student_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
}

type HomeworkService struct {
	homework HomeworkStore
	users    UserStore
	rates    *RateResolver
	settings Settings
	logger   *zap.Logger
	publisher
	now func() time.Time
}

func NewHomeworkService(
	homework HomeworkStore,
	users UserStore,
	rates *RateResolver,
	changes feed.Feed,
	settings Settings,
	logger *zap.Logger,
) *HomeworkService {
	return &HomeworkService{
		homework:  homework,
		users:     users,
		rates:     rates,
		settings:  settings.withDefaults(),
		logger:    logger,
		publisher: publisher{feed: changes, logger: logger},
		now:       time.Now,
	}
}

func (s *HomeworkService) localNow() time.Time {
	return s.now().In(s.settings.Location)
}

// Assign выдаёт задание активному студенту
func (s *HomeworkService) Assign(ctx context.Context, input HomeworkInput) (*model.Homework, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.DueDate = strings.TrimSpace(input.DueDate)
	if input.StudentID == "" || input.Title == "" || input.DueDate == "" {
		return nil, &schedule.ValidationError{Message: "please fill all fields"}
	}
	if _, err := schedule.ParseDate(input.DueDate); err != nil {
		return nil, &schedule.ValidationError{Field: "due_date", Message: "due date must be yyyy-mm-dd"}
	}
	now := s.localNow()
	if schedule.IsPastDate(input.DueDate, now) {
		return nil, &schedule.ValidationError{Field: "due_date", Message: "due date cannot be in the past"}
	}

	student, err := s.users.GetByID(ctx, input.StudentID)
	if err != nil {
		return nil, storeErr("assign homework", err)
	}
	if student == nil || student.Role != model.RoleStudent || student.Deleted {
		return nil, ErrStudentNotFound
	}

	teacherID, err := s.rates.TeacherID(ctx)
	if err != nil {
		return nil, err
	}

	hw := &model.Homework{
		ID:           uuid.New(),
		Title:        input.Title,
		Description:  strings.TrimSpace(input.Description),
		AssignedDate: schedule.Today(now),
		DueDate:      input.DueDate,
		StudentID:    student.ID,
		TeacherID:    teacherID,
	}
	if err := s.homework.Create(ctx, hw); err != nil {
		s.logger.Error("Failed to assign homework", zap.String("student_id", student.ID), zap.Error(err))
		return nil, storeErr("assign homework", err)
	}

	s.logger.Info("Homework assigned",
		zap.String("homework_id", hw.ID.String()),
		zap.String("student_id", student.ID),
		zap.String("due_date", hw.DueDate))
	s.publish(ctx, homeworkChange(model.ChangeAdded, hw.ID))
	return hw, nil
}

// ListForTeacher задания учителя, новые первыми
func (s *HomeworkService) ListForTeacher(ctx context.Context) ([]*model.Homework, error) {
	teacherID, err := s.rates.TeacherID(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.homework.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, storeErr("load homework", err)
	}
	return items, nil
}

// ListForStudent задания студента по сроку сдачи
func (s *HomeworkService) ListForStudent(ctx context.Context, studentID string) ([]*model.Homework, error) {
	items, err := s.homework.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, storeErr("load homework", err)
	}
	return items, nil
}

// Toggle переключает отметку о выполнении. Студент может менять только свои задания.
func (s *HomeworkService) Toggle(ctx context.Context, actor Actor, id uuid.UUID) (*model.Homework, error) {
	hw, err := s.homework.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("update homework", err)
	}
	if hw == nil {
		return nil, ErrHomeworkNotFound
	}
	if !actor.IsTeacher() && hw.StudentID != actor.ID {
		return nil, ErrNotOwner
	}

	hw.Done = !hw.Done
	if err := s.homework.SetDone(ctx, id, hw.Done); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrHomeworkNotFound
		}
		return nil, storeErr("update homework", err)
	}

	s.logger.Info("Homework toggled", zap.String("homework_id", id.String()), zap.Bool("done", hw.Done))
	s.publish(ctx, homeworkChange(model.ChangeModified, id))
	return hw, nil
}

// Delete удаляет задание
func (s *HomeworkService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.homework.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrHomeworkNotFound
		}
		return storeErr("delete homework", err)
	}

	s.logger.Info("Homework deleted", zap.String("homework_id", id.String()))
	s.publish(ctx, homeworkChange(model.ChangeRemoved, id))
	return nil
}

// DaysLeft подпись срока сдачи относительно сегодняшнего дня
func (s *HomeworkService) DaysLeft(hw *model.Homework) string {
	return schedule.DaysLeft(hw.DueDate, s.localNow())
}

func homeworkChange(kind model.ChangeKind, id uuid.UUID) model.Change {
	return model.Change{Collection: model.CollectionHomework, Kind: kind, ID: id.String()}
}
