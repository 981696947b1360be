package service

import (
	"context"
	"errors"
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

// maxConcurrentBookings ограничивает число одновременных транзакций одного пакета
const maxConcurrentBookings = 8

type BookingService struct {
	slots    SlotStore
	bookings BookingStore
	rates    *RateResolver
	settings Settings
	metrics  *metrics.Metrics
	logger   *zap.Logger
	publisher
	now func() time.Time
}

func NewBookingService(
	slots SlotStore,
	bookings BookingStore,
	rates *RateResolver,
	changes feed.Feed,
	settings Settings,
	m *metrics.Metrics,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		slots:     slots,
		bookings:  bookings,
		rates:     rates,
		settings:  settings.withDefaults(),
		metrics:   m,
		logger:    logger,
		publisher: publisher{feed: changes, logger: logger},
		now:       time.Now,
	}
}

func (s *BookingService) localNow() time.Time {
	return s.now().In(s.settings.Location)
}

// Book записывает студента на каждый из слотов. Слоты обрабатываются
// независимо и параллельно, каждый в своей транзакции. Если часть слотов
// не удалось записать, возвращается *PartialBookingFailure, успешные записи сохраняются.
// Если не записан ни один слот, возвращается сама причина отказа.
func (s *BookingService) Book(ctx context.Context, student Actor, slotIDs []uuid.UUID, rate float64) ([]*model.Booking, error) {
	ids := uniqueIDs(slotIDs)
	if len(ids) == 0 {
		return nil, &schedule.ValidationError{Field: "slot_ids", Message: "please select at least one slot"}
	}
	if err := schedule.ValidateRate(rate); err != nil {
		return nil, err
	}

	results := make([]*model.Booking, len(ids))
	failures := make([]error, len(ids))

	g := &errgroup.Group{}
	g.SetLimit(maxConcurrentBookings)
	for i, id := range ids {
		g.Go(func() error {
			results[i], failures[i] = s.bookOne(ctx, student, id, rate)
			return nil
		})
	}
	_ = g.Wait()

	var (
		booked []*model.Booking
		failed = make(map[uuid.UUID]error)
	)
	for i, id := range ids {
		if failures[i] != nil {
			failed[id] = failures[i]
			continue
		}
		booked = append(booked, results[i])
	}

	if len(failed) == 0 {
		return booked, nil
	}
	if len(booked) == 0 {
		return nil, joinFailures(failures)
	}
	return booked, &PartialBookingFailure{Booked: booked, Failed: failed}
}

// joinFailures сворачивает одинаковые причины, чтобы пакет из занятых
// слотов отдавал просто ErrSlotUnavailable
func joinFailures(failures []error) error {
	var distinct []error
	for _, err := range failures {
		dup := false
		for _, seen := range distinct {
			if seen == err {
				dup = true
				break
			}
		}
		if !dup {
			distinct = append(distinct, err)
		}
	}
	if len(distinct) == 1 {
		return distinct[0]
	}
	return errors.Join(distinct...)
}

func (s *BookingService) bookOne(ctx context.Context, student Actor, slotID uuid.UUID, rate float64) (*model.Booking, error) {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		s.logger.Error("Failed to load slot", zap.String("slot_id", slotID.String()), zap.Error(err))
		s.metrics.Booking(metrics.OutcomeError)
		return nil, storeErr("book slot", err)
	}
	if slot == nil {
		s.metrics.Booking(metrics.OutcomeNotFound)
		return nil, ErrSlotNotFound
	}
	if schedule.IsPastDate(slot.Date, s.localNow()) {
		s.metrics.Booking(metrics.OutcomeInvalid)
		return nil, ErrSlotInPast
	}

	booking := newBooking(student, slot, rate)
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, s.bookingFailure(slotID, err)
	}

	s.metrics.Booking(metrics.OutcomeOK)
	s.logger.Info("Slot booked",
		zap.String("booking_id", booking.ID.String()),
		zap.String("student_id", student.ID),
		zap.String("slot_id", slotID.String()),
		zap.String("date", slot.Date),
		zap.String("time", slot.Time),
		zap.Float64("rate", rate))

	s.publish(ctx,
		bookingChange(model.ChangeAdded, booking.ID.String()),
		slotChange(model.ChangeModified, slotID.String()))

	return booking, nil
}

// bookingFailure переводит ошибку хранилища в ошибку сервиса
func (s *BookingService) bookingFailure(slotID uuid.UUID, err error) error {
	switch {
	case errors.Is(err, repository.ErrSlotTaken):
		s.metrics.Booking(metrics.OutcomeUnavailable)
		s.logger.Info("Slot already taken", zap.String("slot_id", slotID.String()))
		return ErrSlotUnavailable
	case errors.Is(err, repository.ErrNotFound):
		s.metrics.Booking(metrics.OutcomeNotFound)
		return ErrSlotNotFound
	default:
		s.metrics.Booking(metrics.OutcomeError)
		s.logger.Error("Failed to book slot", zap.String("slot_id", slotID.String()), zap.Error(err))
		return storeErr("book slot", err)
	}
}

func newBooking(student Actor, slot *model.LessonSlot, rate float64) *model.Booking {
	return &model.Booking{
		ID:          uuid.New(),
		StudentID:   student.ID,
		StudentName: student.Name,
		SlotID:      slot.ID,
		Date:        slot.Date,
		Time:        slot.Time,
		Length:      model.DefaultLessonLength,
		Status:      model.BookingStatusBooked,
		Rate:        rate,
	}
}

// Cancel удаляет запись и освобождает слот. Отмена уже удалённой записи не ошибка.
// Студент может отменить только свою запись, учитель любую.
func (s *BookingService) Cancel(ctx context.Context, actor Actor, bookingID uuid.UUID) error {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		s.metrics.Cancellation(metrics.OutcomeError)
		return storeErr("cancel booking", err)
	}
	if booking == nil {
		s.metrics.Cancellation(metrics.OutcomeNotFound)
		return nil
	}
	if !actor.IsTeacher() && booking.StudentID != actor.ID {
		return ErrNotOwner
	}

	deleted, err := s.bookings.Delete(ctx, bookingID)
	if err != nil {
		s.metrics.Cancellation(metrics.OutcomeError)
		s.logger.Error("Failed to cancel booking", zap.String("booking_id", bookingID.String()), zap.Error(err))
		return storeErr("cancel booking", err)
	}
	if deleted == nil {
		return nil
	}

	s.metrics.Cancellation(metrics.OutcomeOK)
	s.logger.Info("Booking canceled",
		zap.String("booking_id", bookingID.String()),
		zap.String("student_id", deleted.StudentID),
		zap.String("slot_id", deleted.SlotID.String()),
		zap.String("by", actor.ID))

	s.publish(ctx,
		bookingChange(model.ChangeRemoved, bookingID.String()),
		slotChange(model.ChangeModified, deleted.SlotID.String()))
	return nil
}

// CanReschedule проверяет, достаточно ли времени до урока для переноса
func (s *BookingService) CanReschedule(booking *model.Booking) bool {
	start, err := schedule.LessonStart(booking.Date, booking.Time, s.settings.Location)
	if err != nil {
		return false
	}
	return schedule.CanReschedule(start, s.now(), s.settings.RescheduleLead)
}

// Reschedule переносит запись на другой свободный слот в одной транзакции.
// Ставка сохраняется из старой записи, если она была положительной.
func (s *BookingService) Reschedule(ctx context.Context, actor Actor, bookingID, newSlotID uuid.UUID) (*model.Booking, error) {
	old, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		s.metrics.Reschedule(metrics.OutcomeError)
		return nil, storeErr("reschedule booking", err)
	}
	if old == nil {
		s.metrics.Reschedule(metrics.OutcomeNotFound)
		return nil, ErrBookingNotFound
	}
	if !actor.IsTeacher() && old.StudentID != actor.ID {
		return nil, ErrNotOwner
	}
	if !s.CanReschedule(old) {
		s.metrics.Reschedule(metrics.OutcomeTooLate)
		return nil, ErrRescheduleTooLate
	}

	slot, err := s.slots.GetByID(ctx, newSlotID)
	if err != nil {
		s.metrics.Reschedule(metrics.OutcomeError)
		return nil, storeErr("reschedule booking", err)
	}
	if slot == nil {
		s.metrics.Reschedule(metrics.OutcomeNotFound)
		return nil, ErrSlotNotFound
	}
	if !slot.IsOpen() {
		s.metrics.Reschedule(metrics.OutcomeUnavailable)
		return nil, ErrSlotUnavailable
	}
	if schedule.IsPastDate(slot.Date, s.localNow()) {
		s.metrics.Reschedule(metrics.OutcomeInvalid)
		return nil, ErrSlotInPast
	}

	rate := old.Rate
	if rate <= 0 {
		if rate, err = s.rates.Current(ctx); err != nil {
			return nil, err
		}
	}

	owner := Actor{ID: old.StudentID, Name: old.StudentName, Role: model.RoleStudent}
	next := newBooking(owner, slot, rate)

	if err := s.bookings.Reschedule(ctx, old.ID, next); err != nil {
		switch {
		case errors.Is(err, repository.ErrSlotTaken):
			s.metrics.Reschedule(metrics.OutcomeUnavailable)
			return nil, ErrSlotUnavailable
		case errors.Is(err, repository.ErrNotFound):
			s.metrics.Reschedule(metrics.OutcomeNotFound)
			return nil, ErrSlotNotFound
		default:
			s.metrics.Reschedule(metrics.OutcomeError)
			s.logger.Error("Failed to reschedule booking",
				zap.String("booking_id", bookingID.String()),
				zap.String("slot_id", newSlotID.String()),
				zap.Error(err))
			return nil, storeErr("reschedule booking", err)
		}
	}

	s.metrics.Reschedule(metrics.OutcomeOK)
	s.logger.Info("Booking rescheduled",
		zap.String("old_booking_id", old.ID.String()),
		zap.String("new_booking_id", next.ID.String()),
		zap.String("from_slot_id", old.SlotID.String()),
		zap.String("to_slot_id", newSlotID.String()))

	s.publish(ctx,
		bookingChange(model.ChangeRemoved, old.ID.String()),
		bookingChange(model.ChangeAdded, next.ID.String()),
		slotChange(model.ChangeModified, old.SlotID.String()),
		slotChange(model.ChangeModified, newSlotID.String()))

	return next, nil
}

// StudentBookings все записи студента по дате и времени
func (s *BookingService) StudentBookings(ctx context.Context, studentID string) ([]*model.Booking, error) {
	bookings, err := s.bookings.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, storeErr("load bookings", err)
	}
	return bookings, nil
}

// Upcoming будущие записи студента, ближайшая первой
func (s *BookingService) Upcoming(ctx context.Context, studentID string) ([]*model.Booking, error) {
	bookings, err := s.StudentBookings(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return schedule.Upcoming(bookings, s.localNow()), nil
}

// NextLesson ближайший урок студента или nil
func (s *BookingService) NextLesson(ctx context.Context, studentID string) (*model.Booking, error) {
	upcoming, err := s.Upcoming(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if len(upcoming) == 0 {
		return nil, nil
	}
	return upcoming[0], nil
}
