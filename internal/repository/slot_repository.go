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

const slotColumns = `id, to_char(date, 'YYYY-MM-DD'), to_char(time, 'HH24:MI'), teacher_id, booked_student_ids, created_at`

type SlotRepository struct {
	*base.Repository
}

func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{Repository: base.NewRepository(pool)}
}

func scanSlot(row pgx.Row) (*model.LessonSlot, error) {
	var slot model.LessonSlot
	err := row.Scan(
		&slot.ID,
		&slot.Date,
		&slot.Time,
		&slot.TeacherID,
		&slot.BookedStudentIDs,
		&slot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if slot.BookedStudentIDs == nil {
		slot.BookedStudentIDs = []string{}
	}
	return &slot, nil
}

func collectSlots(rows pgx.Rows) ([]*model.LessonSlot, error) {
	defer rows.Close()

	var slots []*model.LessonSlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}
	return slots, nil
}

// CreateBatch создаёт слоты одним батчем и возвращает реально созданные.
// Пары (teacher, date, time), которые уже есть в базе, молча пропускаются.
func (r *SlotRepository) CreateBatch(ctx context.Context, slots []*model.LessonSlot) ([]*model.LessonSlot, error) {
	if len(slots) == 0 {
		return nil, nil
	}

	query := `
		INSERT INTO lesson_slots (id, date, time, teacher_id, booked_student_ids, created_at)
		VALUES ($1, $2::date, $3::time, $4, $5, $6)
		ON CONFLICT (teacher_id, date, time) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, slot := range slots {
		if slot.ID == uuid.Nil {
			slot.ID = uuid.New()
		}
		if slot.CreatedAt.IsZero() {
			slot.CreatedAt = time.Now()
		}
		if slot.BookedStudentIDs == nil {
			slot.BookedStudentIDs = []string{}
		}
		batch.Queue(query, slot.ID, slot.Date, slot.Time, slot.TeacherID, slot.BookedStudentIDs, slot.CreatedAt)
	}

	results := r.SendBatch(ctx, batch)
	defer results.Close()

	created := make([]*model.LessonSlot, 0, len(slots))
	for _, slot := range slots {
		tag, err := results.Exec()
		if err != nil {
			return created, fmt.Errorf("create slot %s %s: %w", slot.Date, slot.Time, err)
		}
		if tag.RowsAffected() == 1 {
			created = append(created, slot)
		}
	}

	return created, nil
}

// GetByID получает слот по ID
func (r *SlotRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.LessonSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM lesson_slots WHERE id = $1`

	slot, err := scanSlot(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return slot, nil
}

// ListByTeacher получает все слоты учителя
func (r *SlotRepository) ListByTeacher(ctx context.Context, teacherID string) ([]*model.LessonSlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM lesson_slots
		WHERE teacher_id = $1
		ORDER BY date, time
	`

	rows, err := r.Query(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("get slots by teacher: %w", err)
	}

	return collectSlots(rows)
}

// ListOpenByTeacher получает свободные слоты учителя начиная с даты from
func (r *SlotRepository) ListOpenByTeacher(ctx context.Context, teacherID, from string) ([]*model.LessonSlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM lesson_slots
		WHERE teacher_id = $1
		  AND cardinality(booked_student_ids) = 0
		  AND date >= $2::date
		ORDER BY date, time
	`

	rows, err := r.Query(ctx, query, teacherID, from)
	if err != nil {
		return nil, fmt.Errorf("get open slots: %w", err)
	}

	return collectSlots(rows)
}

// Delete удаляет слот. Занятый слот удаляется только при cascade,
// тогда его записи удаляются в той же транзакции. Возвращает ID удалённых записей.
func (r *SlotRepository) Delete(ctx context.Context, id uuid.UUID, cascade bool) ([]uuid.UUID, error) {
	var removed []uuid.UUID

	err := r.InTx(ctx, func(tx pgx.Tx) error {
		var occupants int
		err := tx.QueryRow(ctx,
			`SELECT cardinality(booked_student_ids) FROM lesson_slots WHERE id = $1 FOR UPDATE`,
			id,
		).Scan(&occupants)
		if err != nil {
			if base.IsNotFound(err) {
				return ErrNotFound
			}
			return fmt.Errorf("lock slot: %w", err)
		}

		if occupants > 0 && !cascade {
			return ErrSlotOccupied
		}

		if cascade {
			rows, err := tx.Query(ctx, `DELETE FROM bookings WHERE slot_id = $1 RETURNING id`, id)
			if err != nil {
				return fmt.Errorf("delete slot bookings: %w", err)
			}
			removed, err = pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
			if err != nil {
				return fmt.Errorf("collect deleted bookings: %w", err)
			}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM lesson_slots WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete slot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return removed, nil
}
