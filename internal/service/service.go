package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/feed"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/schedule"
	"go.uber.org/zap"
)

// Settings общие параметры сервисов
type Settings struct {
	TeacherID      string
	DefaultRate    float64
	RescheduleLead time.Duration
	Location       *time.Location
}

func (s Settings) withDefaults() Settings {
	if s.RescheduleLead <= 0 {
		s.RescheduleLead = schedule.RescheduleLead
	}
	if s.Location == nil {
		s.Location = time.Local
	}
	return s
}

// Actor пользователь, от имени которого выполняется операция
type Actor struct {
	ID   string
	Name string
	Role model.Role
}

func (a Actor) IsTeacher() bool {
	return a.Role == model.RoleTeacher
}

// publisher публикует изменения в ленту; ошибки ленты не ломают операцию
type publisher struct {
	feed   feed.Feed
	logger *zap.Logger
}

func (p publisher) publish(ctx context.Context, changes ...model.Change) {
	if p.feed == nil {
		return
	}
	for _, change := range changes {
		if err := p.feed.Publish(ctx, change); err != nil {
			p.logger.Warn("Failed to publish change",
				zap.String("collection", change.Collection),
				zap.String("id", change.ID),
				zap.Error(err))
		}
	}
}

func slotChange(kind model.ChangeKind, id string) model.Change {
	return model.Change{Collection: model.CollectionSlots, Kind: kind, ID: id}
}

func bookingChange(kind model.ChangeKind, id string) model.Change {
	return model.Change{Collection: model.CollectionBookings, Kind: kind, ID: id}
}
