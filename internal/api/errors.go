package api

import (
	"errors"
	"net/http"

	"github.com/Freeeeeet/lesson_scheduler/internal/schedule"
	"github.com/Freeeeeet/lesson_scheduler/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor сопоставляет ошибку сервиса с HTTP-кодом
func statusFor(err error) int {
	var (
		partial *service.PartialBookingFailure
		store   *service.StoreError
	)

	switch {
	case errors.As(err, &partial):
		return http.StatusConflict
	case schedule.IsValidation(err), errors.Is(err, service.ErrSlotInPast):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotOwner), errors.Is(err, service.ErrTeacherOnly):
		return http.StatusForbidden
	case errors.Is(err, service.ErrSlotNotFound),
		errors.Is(err, service.ErrBookingNotFound),
		errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, service.ErrHomeworkNotFound),
		errors.Is(err, service.ErrTeacherNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSlotUnavailable),
		errors.Is(err, service.ErrSlotBooked),
		errors.Is(err, service.ErrRescheduleTooLate):
		return http.StatusConflict
	case errors.As(err, &store):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)

	var partial *service.PartialBookingFailure
	if errors.As(err, &partial) {
		failed := make(map[string]string, len(partial.Failed))
		for id, reason := range partial.Failed {
			failed[id.String()] = reason.Error()
		}
		c.JSON(status, gin.H{
			"error":    err.Error(),
			"bookings": partial.Booked,
			"failed":   failed,
		})
		return
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))

		var store *service.StoreError
		if errors.As(err, &store) {
			message = store.UserMessage()
		} else {
			message = "internal error"
		}
	}

	c.JSON(status, gin.H{"error": message})
}
