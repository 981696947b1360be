package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/feed"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/schedule"
	"go.uber.org/zap"
)

// AvailabilityService строит представления расписания для студента и учителя
type AvailabilityService struct {
	slots    SlotStore
	bookings BookingStore
	rates    *RateResolver
	feed     feed.Feed
	settings Settings
	logger   *zap.Logger
	now      func() time.Time
}

func NewAvailabilityService(
	slots SlotStore,
	bookings BookingStore,
	rates *RateResolver,
	changes feed.Feed,
	settings Settings,
	logger *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		slots:    slots,
		bookings: bookings,
		rates:    rates,
		feed:     changes,
		settings: settings.withDefaults(),
		logger:   logger,
		now:      time.Now,
	}
}

// Now текущее время в часовом поясе расписания
func (s *AvailabilityService) Now() time.Time {
	return s.now().In(s.settings.Location)
}

// CurrentWeek неделя, содержащая сегодняшний день
func (s *AvailabilityService) CurrentWeek() schedule.Week {
	return schedule.WeekOf(s.Now())
}

// ParseWeek неделя по дате yyyy-mm-dd, пустая строка означает текущую
func (s *AvailabilityService) ParseWeek(value string) (schedule.Week, error) {
	return schedule.ParseWeek(value, s.Now())
}

// OpenWeek свободные слоты недели по дням. Прошедшие дни остаются пустыми.
func (s *AvailabilityService) OpenWeek(ctx context.Context, week schedule.Week) ([]schedule.DaySlots, error) {
	teacherID, err := s.rates.TeacherID(ctx)
	if err != nil {
		return nil, err
	}

	from := week.Dates()[0]
	if today := schedule.Today(s.Now()); today > from {
		from = today
	}

	open, err := s.slots.ListOpenByTeacher(ctx, teacherID, from)
	if err != nil {
		return nil, storeErr("load open slots", err)
	}

	inWeek := make([]*model.LessonSlot, 0, len(open))
	for _, slot := range open {
		if week.Contains(slot.Date) {
			inWeek = append(inWeek, slot)
		}
	}
	return schedule.OpenWeek(week, inWeek), nil
}

// TeacherWeek все слоты недели вместе с записями на них
func (s *AvailabilityService) TeacherWeek(ctx context.Context, week schedule.Week) ([]schedule.SlotView, error) {
	teacherID, err := s.rates.TeacherID(ctx)
	if err != nil {
		return nil, err
	}

	slots, err := s.slots.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, storeErr("load slots", err)
	}

	bookings, err := s.bookings.ListAll(ctx)
	if err != nil {
		return nil, storeErr("load bookings", err)
	}

	return schedule.TeacherWeek(week, slots, bookings), nil
}

// WatchOpen отдаёт снимок свободных слотов недели сразу и после каждого
// изменения слотов или записей. Канал закрывается при отмене ctx.
func (s *AvailabilityService) WatchOpen(ctx context.Context, week schedule.Week) (<-chan []schedule.DaySlots, error) {
	changes, err := s.feed.Subscribe(ctx)
	if err != nil {
		return nil, err
	}

	initial, err := s.OpenWeek(ctx, week)
	if err != nil {
		return nil, err
	}

	out := make(chan []schedule.DaySlots, 1)
	out <- initial

	go func() {
		defer close(out)
		for change := range changes {
			if change.Collection != model.CollectionSlots && change.Collection != model.CollectionBookings {
				continue
			}

			snapshot, err := s.OpenWeek(ctx, week)
			if err != nil {
				s.logger.Warn("Failed to refresh open slots", zap.Error(err))
				continue
			}

			select {
			case out <- snapshot:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
