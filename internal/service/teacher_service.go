package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/feed"
	"github.com/Freeeeeet/lesson_scheduler/internal/metrics"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/repository"
	"github.com/Freeeeeet/lesson_scheduler/internal/schedule"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentDeletes = 4

// EarningsSummary сводка по снимкам ставок в записях
type EarningsSummary struct {
	Lessons   int     `json:"lessons"`
	Total     float64 `json:"total"`
	Formatted string  `json:"formatted"`
	Upcoming  int     `json:"upcoming"`
}

type TeacherService struct {
	slots    SlotStore
	bookings BookingStore
	users    UserStore
	rates    *RateResolver
	settings Settings
	metrics  *metrics.Metrics
	logger   *zap.Logger
	publisher
	now func() time.Time
}

func NewTeacherService(
	slots SlotStore,
	bookings BookingStore,
	users UserStore,
	rates *RateResolver,
	changes feed.Feed,
	settings Settings,
	m *metrics.Metrics,
	logger *zap.Logger,
) *TeacherService {
	return &TeacherService{
		slots:     slots,
		bookings:  bookings,
		users:     users,
		rates:     rates,
		settings:  settings.withDefaults(),
		metrics:   m,
		logger:    logger,
		publisher: publisher{feed: changes, logger: logger},
		now:       time.Now,
	}
}

// PublishAvailability разворачивает спецификацию доступности в слоты и сохраняет их
func (s *TeacherService) PublishAvailability(ctx context.Context, spec model.AvailabilitySpec) ([]*model.LessonSlot, error) {
	teacherID, err := s.rates.TeacherID(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.slots.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, storeErr("load slots", err)
	}

	candidates, err := schedule.Generate(existing, spec, teacherID, s.now())
	if err != nil {
		return nil, err
	}

	created, err := s.slots.CreateBatch(ctx, candidates)
	if err != nil {
		s.logger.Error("Failed to create slots", zap.Int("count", len(candidates)), zap.Error(err))
		return nil, storeErr("add slots", err)
	}
	if len(created) == 0 {
		// все кандидаты успели появиться в базе параллельно
		return nil, &schedule.ValidationError{
			Message: "no valid slots to add (possible overlap, no days selected, or time range too short)",
			Err:     schedule.ErrCollisionExhaustion,
		}
	}

	s.metrics.SlotsPublished(len(created))
	s.logger.Info("Slots published",
		zap.String("teacher_id", teacherID),
		zap.Int("count", len(created)),
		zap.String("start_date", spec.StartDate),
		zap.String("end_date", spec.EndDate))

	for _, slot := range created {
		s.publish(ctx, slotChange(model.ChangeAdded, slot.ID.String()))
	}
	return created, nil
}

// DeleteSlot удаляет слот. Занятый слот удаляется только с cascade,
// тогда его записи отменяются. Возвращает число отменённых записей.
func (s *TeacherService) DeleteSlot(ctx context.Context, slotID uuid.UUID, cascade bool) (int, error) {
	removed, err := s.slots.Delete(ctx, slotID, cascade)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return 0, ErrSlotNotFound
		case errors.Is(err, repository.ErrSlotOccupied):
			return 0, ErrSlotBooked
		default:
			s.logger.Error("Failed to delete slot", zap.String("slot_id", slotID.String()), zap.Error(err))
			return 0, storeErr("delete slot", err)
		}
	}

	s.metrics.SlotsDeleted(1)
	s.logger.Info("Slot deleted",
		zap.String("slot_id", slotID.String()),
		zap.Bool("cascade", cascade),
		zap.Int("canceled_bookings", len(removed)))

	s.publish(ctx, slotChange(model.ChangeRemoved, slotID.String()))
	for _, id := range removed {
		s.publish(ctx, bookingChange(model.ChangeRemoved, id.String()))
	}
	return len(removed), nil
}

// DeleteSlots удаляет слоты параллельно и дожидается всех.
// Ошибки по отдельным слотам объединяются, удалённые слоты не восстанавливаются.
func (s *TeacherService) DeleteSlots(ctx context.Context, slotIDs []uuid.UUID, cascade bool) (int, error) {
	ids := uniqueIDs(slotIDs)
	if len(ids) == 0 {
		return 0, &schedule.ValidationError{Field: "ids", Message: "please select at least one slot"}
	}

	canceled := make([]int, len(ids))
	errs := make([]error, len(ids))

	g := &errgroup.Group{}
	g.SetLimit(maxConcurrentDeletes)
	for i, id := range ids {
		g.Go(func() error {
			n, err := s.DeleteSlot(ctx, id, cascade)
			canceled[i] = n
			if err != nil {
				errs[i] = fmt.Errorf("slot %s: %w", id, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, n := range canceled {
		total += n
	}
	return total, errors.Join(errs...)
}

// SetRate меняет ставку учителя; уже созданные записи сохраняют свои ставки
func (s *TeacherService) SetRate(ctx context.Context, rate float64) error {
	if err := schedule.ValidateRate(rate); err != nil {
		return err
	}

	teacherID, err := s.rates.TeacherID(ctx)
	if err != nil {
		return err
	}

	if err := s.users.UpdateRate(ctx, teacherID, rate); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTeacherNotFound
		}
		return storeErr("update rate", err)
	}

	s.logger.Info("Rate updated", zap.String("teacher_id", teacherID), zap.Float64("rate", rate))
	s.publish(ctx, model.Change{Collection: model.CollectionUsers, Kind: model.ChangeModified, ID: teacherID})
	return nil
}

// SetRateText разбирает ставку, введённую текстом
func (s *TeacherService) SetRateText(ctx context.Context, input string) (float64, error) {
	rate, err := schedule.ParseRate(input)
	if err != nil {
		return 0, err
	}
	if err := s.SetRate(ctx, rate); err != nil {
		return 0, err
	}
	return rate, nil
}

// Roster активные студенты в заданном порядке
func (s *TeacherService) Roster(ctx context.Context, sortBy string) ([]*model.User, error) {
	students, err := s.users.ListStudents(ctx)
	if err != nil {
		return nil, storeErr("load students", err)
	}
	return schedule.ActiveStudents(students, sortBy), nil
}

// RemoveStudent мягко удаляет студента; его записи не трогаются
func (s *TeacherService) RemoveStudent(ctx context.Context, studentID string) error {
	if err := s.users.SoftDelete(ctx, studentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrStudentNotFound
		}
		return storeErr("remove student", err)
	}

	s.logger.Info("Student removed", zap.String("student_id", studentID))
	s.publish(ctx, model.Change{Collection: model.CollectionUsers, Kind: model.ChangeModified, ID: studentID})
	return nil
}

// Earnings суммирует ставки всех записей
func (s *TeacherService) Earnings(ctx context.Context) (*EarningsSummary, error) {
	bookings, err := s.bookings.ListAll(ctx)
	if err != nil {
		return nil, storeErr("load bookings", err)
	}

	total := schedule.Earnings(bookings)
	return &EarningsSummary{
		Lessons:   len(bookings),
		Total:     total,
		Formatted: schedule.FormatAmount(total),
		Upcoming:  len(schedule.Upcoming(bookings, s.now().In(s.settings.Location))),
	}, nil
}

// AuditOrphans считает записи без слота и предупреждает о них в логе
func (s *TeacherService) AuditOrphans(ctx context.Context) (int, error) {
	count, err := s.bookings.CountOrphans(ctx)
	if err != nil {
		return 0, storeErr("audit bookings", err)
	}

	s.metrics.Orphans(count)
	if count > 0 {
		s.logger.Warn("Found bookings without a slot", zap.Int("count", count))
	}
	return count, nil
}
