package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, role, first_name, last_name, email, telegram_id, rate, bio, site_title, site_tagline, phone, skill_level, dob, progress, deleted, created_at`

type UserRepository struct {
	*base.Repository
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(pool)}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Role,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.TelegramID,
		&user.Rate,
		&user.Bio,
		&user.SiteTitle,
		&user.SiteTagline,
		&user.Phone,
		&user.SkillLevel,
		&user.DOB,
		&user.Progress,
		&user.Deleted,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) getOne(ctx context.Context, op, where string, args ...any) (*model.User, error) {
	user, err := scanUser(r.QueryRow(ctx, `SELECT `+userColumns+` FROM users `+where, args...))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil // Пользователь не найден
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// Upsert создаёт пользователя или обновляет имя, email и роль существующего.
// Пустой email и отсутствующий telegram_id не затирают сохранённые значения.
func (r *UserRepository) Upsert(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, role, first_name, last_name, email, telegram_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			role = EXCLUDED.role,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			email = COALESCE(NULLIF(EXCLUDED.email, ''), users.email),
			telegram_id = COALESCE(EXCLUDED.telegram_id, users.telegram_id)
		RETURNING rate, progress, deleted, created_at
	`

	err := r.QueryRow(ctx, query,
		user.ID,
		user.Role,
		user.FirstName,
		user.LastName,
		user.Email,
		user.TelegramID,
	).Scan(&user.Rate, &user.Progress, &user.Deleted, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}

	return nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getOne(ctx, "get user by id", `WHERE id = $1`, id)
}

// GetByTelegramID получает пользователя по Telegram ID
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	return r.getOne(ctx, "get user by telegram id", `WHERE telegram_id = $1`, telegramID)
}

// GetFirstTeacher возвращает самого раннего пользователя с ролью учителя
func (r *UserRepository) GetFirstTeacher(ctx context.Context) (*model.User, error) {
	return r.getOne(ctx, "get first teacher", `WHERE role = $1 ORDER BY created_at LIMIT 1`, model.RoleTeacher)
}

// UpdateRate меняет ставку учителя
func (r *UserRepository) UpdateRate(ctx context.Context, teacherID string, rate float64) error {
	affected, err := r.ExecAffected(ctx,
		`UPDATE users SET rate = $1 WHERE id = $2 AND role = $3`,
		rate, teacherID, model.RoleTeacher,
	)
	if err != nil {
		return fmt.Errorf("update rate: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListStudents получает всех студентов, включая удалённых
func (r *UserRepository) ListStudents(ctx context.Context) ([]*model.User, error) {
	rows, err := r.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY first_name, last_name`,
		model.RoleStudent,
	)
	if err != nil {
		return nil, fmt.Errorf("get students: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}

	return users, nil
}

// SoftDelete помечает студента удалённым
func (r *UserRepository) SoftDelete(ctx context.Context, studentID string) error {
	affected, err := r.ExecAffected(ctx,
		`UPDATE users SET deleted = true WHERE id = $1 AND role = $2`,
		studentID, model.RoleStudent,
	)
	if err != nil {
		return fmt.Errorf("soft delete student: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
