package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const homeworkColumns = `id, title, description, to_char(assigned_date, 'YYYY-MM-DD'), to_char(due_date, 'YYYY-MM-DD'), student_id, teacher_id, done, created_at`

type HomeworkRepository struct {
	*base.Repository
}

func NewHomeworkRepository(pool *pgxpool.Pool) *HomeworkRepository {
	return &HomeworkRepository{Repository: base.NewRepository(pool)}
}

func scanHomework(row pgx.Row) (*model.Homework, error) {
	var hw model.Homework
	err := row.Scan(
		&hw.ID,
		&hw.Title,
		&hw.Description,
		&hw.AssignedDate,
		&hw.DueDate,
		&hw.StudentID,
		&hw.TeacherID,
		&hw.Done,
		&hw.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &hw, nil
}

func (r *HomeworkRepository) list(ctx context.Context, where, order string, arg any) ([]*model.Homework, error) {
	rows, err := r.Query(ctx, `SELECT `+homeworkColumns+` FROM homework WHERE `+where+` ORDER BY `+order, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*model.Homework
	for rows.Next() {
		hw, err := scanHomework(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, hw)
	}
	return items, rows.Err()
}

// Create создаёт домашнее задание
func (r *HomeworkRepository) Create(ctx context.Context, hw *model.Homework) error {
	if hw.ID == uuid.Nil {
		hw.ID = uuid.New()
	}
	if hw.CreatedAt.IsZero() {
		hw.CreatedAt = time.Now()
	}

	_, err := r.Exec(ctx, `
		INSERT INTO homework (id, title, description, assigned_date, due_date, student_id, teacher_id, done, created_at)
		VALUES ($1, $2, $3, $4::date, $5::date, $6, $7, $8, $9)
	`, hw.ID, hw.Title, hw.Description, hw.AssignedDate, hw.DueDate, hw.StudentID, hw.TeacherID, hw.Done, hw.CreatedAt)
	if err != nil {
		return fmt.Errorf("create homework: %w", err)
	}
	return nil
}

// GetByID получает задание по ID
func (r *HomeworkRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Homework, error) {
	hw, err := scanHomework(r.QueryRow(ctx, `SELECT `+homeworkColumns+` FROM homework WHERE id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get homework by id: %w", err)
	}
	return hw, nil
}

// ListByTeacher получает задания учителя, новые первыми
func (r *HomeworkRepository) ListByTeacher(ctx context.Context, teacherID string) ([]*model.Homework, error) {
	items, err := r.list(ctx, `teacher_id = $1`, `assigned_date DESC, created_at DESC`, teacherID)
	if err != nil {
		return nil, fmt.Errorf("get homework by teacher: %w", err)
	}
	return items, nil
}

// ListByStudent получает задания студента по сроку сдачи
func (r *HomeworkRepository) ListByStudent(ctx context.Context, studentID string) ([]*model.Homework, error) {
	items, err := r.list(ctx, `student_id = $1`, `due_date, created_at`, studentID)
	if err != nil {
		return nil, fmt.Errorf("get homework by student: %w", err)
	}
	return items, nil
}

// SetDone отмечает задание выполненным или снимает отметку
func (r *HomeworkRepository) SetDone(ctx context.Context, id uuid.UUID, done bool) error {
	affected, err := r.ExecAffected(ctx, `UPDATE homework SET done = $1 WHERE id = $2`, done, id)
	if err != nil {
		return fmt.Errorf("set homework done: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет задание
func (r *HomeworkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM homework WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete homework: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
