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

const bookingColumns = `id, student_id, student_name, slot_id, to_char(date, 'YYYY-MM-DD'), to_char(time, 'HH24:MI'), length, status, rate, created_at`

type BookingRepository struct {
	*base.Repository
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{Repository: base.NewRepository(pool)}
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var booking model.Booking
	err := row.Scan(
		&booking.ID,
		&booking.StudentID,
		&booking.StudentName,
		&booking.SlotID,
		&booking.Date,
		&booking.Time,
		&booking.Length,
		&booking.Status,
		&booking.Rate,
		&booking.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func collectBookings(rows pgx.Rows) ([]*model.Booking, error) {
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return bookings, nil
}

// occupy добавляет студента в слот, только если слот сейчас свободен
func occupy(ctx context.Context, q base.Querier, slotID uuid.UUID, studentID string) error {
	tag, err := q.Exec(ctx, `
		UPDATE lesson_slots
		SET booked_student_ids = array_append(booked_student_ids, $1)
		WHERE id = $2 AND cardinality(booked_student_ids) = 0
	`, studentID, slotID)
	if err != nil {
		return fmt.Errorf("occupy slot: %w", err)
	}

	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM lesson_slots WHERE id = $1)`, slotID).Scan(&exists); err != nil {
		return fmt.Errorf("check slot exists: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrSlotTaken
}

// release убирает студента из слота; отсутствие слота не ошибка
func release(ctx context.Context, q base.Querier, slotID uuid.UUID, studentID string) error {
	_, err := q.Exec(ctx, `
		UPDATE lesson_slots
		SET booked_student_ids = array_remove(booked_student_ids, $1)
		WHERE id = $2
	`, studentID, slotID)
	if err != nil {
		return fmt.Errorf("release slot: %w", err)
	}
	return nil
}

func insertBooking(ctx context.Context, q base.Querier, booking *model.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}

	_, err := q.Exec(ctx, `
		INSERT INTO bookings (id, student_id, student_name, slot_id, date, time, length, status, rate, created_at)
		VALUES ($1, $2, $3, $4, $5::date, $6::time, $7, $8, $9, $10)
	`,
		booking.ID,
		booking.StudentID,
		booking.StudentName,
		booking.SlotID,
		booking.Date,
		booking.Time,
		booking.Length,
		booking.Status,
		booking.Rate,
		booking.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func deleteBooking(ctx context.Context, q base.Querier, id uuid.UUID) (*model.Booking, error) {
	booking, err := scanBooking(q.QueryRow(ctx, `DELETE FROM bookings WHERE id = $1 RETURNING `+bookingColumns, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("delete booking: %w", err)
	}

	if err := release(ctx, q, booking.SlotID, booking.StudentID); err != nil {
		return nil, err
	}
	return booking, nil
}

// Create занимает слот и создаёт запись в одной транзакции.
// ErrSlotTaken если слот уже занят, ErrNotFound если слота нет.
func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return r.InTx(ctx, func(tx pgx.Tx) error {
		if err := occupy(ctx, tx, booking.SlotID, booking.StudentID); err != nil {
			return err
		}
		return insertBooking(ctx, tx, booking)
	})
}

// Delete удаляет запись и освобождает слот. Возвращает удалённую запись
// или nil, если её уже не было.
func (r *BookingRepository) Delete(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var deleted *model.Booking
	err := r.InTx(ctx, func(tx pgx.Tx) error {
		var err error
		deleted, err = deleteBooking(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// Reschedule отменяет старую запись и создаёт новую в одной транзакции.
// При ошибке на новом слоте старая запись остаётся на месте.
func (r *BookingRepository) Reschedule(ctx context.Context, oldID uuid.UUID, next *model.Booking) error {
	return r.InTx(ctx, func(tx pgx.Tx) error {
		if _, err := deleteBooking(ctx, tx, oldID); err != nil {
			return err
		}
		if err := occupy(ctx, tx, next.SlotID, next.StudentID); err != nil {
			return err
		}
		return insertBooking(ctx, tx, next)
	})
}

// GetByID получает запись по ID
func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	booking, err := scanBooking(r.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}
	return booking, nil
}

// ListByStudent получает все записи студента
func (r *BookingRepository) ListByStudent(ctx context.Context, studentID string) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE student_id = $1
		ORDER BY date, time
	`

	rows, err := r.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("get bookings by student: %w", err)
	}
	return collectBookings(rows)
}

// ListAll получает все записи (в системе один учитель)
func (r *BookingRepository) ListAll(ctx context.Context) ([]*model.Booking, error) {
	rows, err := r.Query(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY date, time`)
	if err != nil {
		return nil, fmt.Errorf("get bookings: %w", err)
	}
	return collectBookings(rows)
}

// CountOrphans считает записи, чей слот уже удалён
func (r *BookingRepository) CountOrphans(ctx context.Context) (int, error) {
	query := `
		SELECT count(*)
		FROM bookings b
		WHERE NOT EXISTS (SELECT 1 FROM lesson_slots s WHERE s.id = b.slot_id)
	`

	var count int
	if err := r.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count orphan bookings: %w", err)
	}
	return count, nil
}
