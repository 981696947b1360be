package handlers

import (
	"github.com/Freeeeeet/lesson_scheduler/internal/controller/state"
	"github.com/Freeeeeet/lesson_scheduler/internal/service"
	"go.uber.org/zap"
)

// Services сервисы, которые использует бот
type Services struct {
	Users        *service.UserService
	Bookings     *service.BookingService
	Teacher      *service.TeacherService
	Availability *service.AvailabilityService
	Rates        *service.RateResolver
	Homework     *service.HomeworkService
}

// Handlers содержит все зависимости для обработки команд и кнопок
type Handlers struct {
	Services
	dialogs *state.Manager
	logger  *zap.Logger
}

func NewHandlers(services Services, dialogs *state.Manager, logger *zap.Logger) *Handlers {
	return &Handlers{
		Services: services,
		dialogs:  dialogs,
		logger:   logger,
	}
}
