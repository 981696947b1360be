package service

import (
	"context"
	"sync"

	"github.com/Freeeeeet/lesson_scheduler/internal/feed"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/schedule"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Quote предварительная стоимость выбранных слотов
type Quote struct {
	Count     int     `json:"count"`
	Rate      float64 `json:"rate"`
	Total     float64 `json:"total"`
	Formatted string  `json:"formatted"`
}

// RateResolver находит учителя и его текущую ставку
type RateResolver struct {
	users       UserStore
	teacherID   string
	defaultRate float64
	feed        feed.Feed
	logger      *zap.Logger

	mu         sync.Mutex
	resolvedID string
}

func NewRateResolver(users UserStore, settings Settings, changes feed.Feed, logger *zap.Logger) *RateResolver {
	return &RateResolver{
		users:       users,
		teacherID:   settings.TeacherID,
		defaultRate: settings.DefaultRate,
		feed:        changes,
		logger:      logger,
	}
}

// Teacher возвращает профиль учителя: заданного явно, иначе первого с ролью teacher
func (r *RateResolver) Teacher(ctx context.Context) (*model.User, error) {
	var (
		teacher *model.User
		err     error
	)
	if r.teacherID != "" {
		teacher, err = r.users.GetByID(ctx, r.teacherID)
	} else {
		teacher, err = r.users.GetFirstTeacher(ctx)
	}
	if err != nil {
		return nil, storeErr("load teacher profile", err)
	}
	if teacher == nil || !teacher.IsTeacher() {
		return nil, ErrTeacherNotFound
	}
	return teacher, nil
}

// TeacherID возвращает идентификатор учителя. Найденный через поиск ID кэшируется.
func (r *RateResolver) TeacherID(ctx context.Context) (string, error) {
	if r.teacherID != "" {
		return r.teacherID, nil
	}

	r.mu.Lock()
	cached := r.resolvedID
	r.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	teacher, err := r.Teacher(ctx)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	r.resolvedID = teacher.ID
	r.mu.Unlock()
	return teacher.ID, nil
}

// Current текущая ставка учителя; если она не задана, используется ставка по умолчанию
func (r *RateResolver) Current(ctx context.Context) (float64, error) {
	teacher, err := r.Teacher(ctx)
	if err != nil {
		return 0, err
	}
	if teacher.Rate == nil || *teacher.Rate <= 0 {
		return r.defaultRate, nil
	}
	return *teacher.Rate, nil
}

// Quote считает стоимость выбранных слотов по текущей ставке.
// Повторяющиеся ID считаются один раз.
func (r *RateResolver) Quote(ctx context.Context, slotIDs []uuid.UUID) (*Quote, error) {
	rate, err := r.Current(ctx)
	if err != nil {
		return nil, err
	}

	count := len(uniqueIDs(slotIDs))
	total := schedule.Total(count, rate)
	return &Quote{
		Count:     count,
		Rate:      rate,
		Total:     total,
		Formatted: schedule.FormatAmount(total),
	}, nil
}

// Watch отдаёт текущую ставку и каждое её изменение до отмены ctx
func (r *RateResolver) Watch(ctx context.Context) (<-chan float64, error) {
	rate, err := r.Current(ctx)
	if err != nil {
		return nil, err
	}

	changes, err := r.feed.Subscribe(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan float64, 1)
	out <- rate

	go func() {
		defer close(out)
		last := rate
		for change := range changes {
			if change.Collection != model.CollectionUsers {
				continue
			}
			current, err := r.Current(ctx)
			if err != nil {
				r.logger.Warn("Failed to refresh rate", zap.Error(err))
				continue
			}
			if current == last {
				continue
			}
			last = current
			select {
			case out <- current:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	return unique
}
