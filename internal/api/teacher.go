package api

import (
	"net/http"
	"strconv"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/schedule"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) publishSlots(c *gin.Context) {
	var spec model.AvailabilitySpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slots, err := h.Teacher.PublishAvailability(c.Request.Context(), spec)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": len(slots), "slots": slots})
}

func (h *Handler) teacherSlots(c *gin.Context) {
	week, err := h.Availability.ParseWeek(c.Query("week"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	views, err := h.Availability.TeacherWeek(c.Request.Context(), week)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"week": h.describeWeek(week), "slots": views})
}

func (h *Handler) deleteSlot(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cascade, _ := strconv.ParseBool(c.Query("cascade"))

	canceled, err := h.Teacher.DeleteSlot(c.Request.Context(), id, cascade)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"canceled_bookings": canceled})
}

func (h *Handler) deleteSlots(c *gin.Context) {
	var req struct {
		IDs     []uuid.UUID `json:"ids"`
		Cascade bool        `json:"cascade"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids must be a list of ids"})
		return
	}

	canceled, err := h.Teacher.DeleteSlots(c.Request.Context(), req.IDs, req.Cascade)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"canceled_bookings": canceled})
}

func (h *Handler) setRate(c *gin.Context) {
	var req struct {
		Rate float64 `json:"rate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please enter a valid rate"})
		return
	}

	if err := h.Teacher.SetRate(c.Request.Context(), req.Rate); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rate": req.Rate, "formatted": schedule.FormatAmount(req.Rate)})
}

func (h *Handler) roster(c *gin.Context) {
	students, err := h.Teacher.Roster(c.Request.Context(), c.DefaultQuery("sort", schedule.SortByName))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": students})
}

func (h *Handler) removeStudent(c *gin.Context) {
	if err := h.Teacher.RemoveStudent(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) earnings(c *gin.Context) {
	summary, err := h.Teacher.Earnings(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
