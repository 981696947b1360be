package api

import (
	"net/http"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type bookingView struct {
	*model.Booking
	CanReschedule bool `json:"can_reschedule"`
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) book(c *gin.Context) {
	var req slotIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slot_ids must be a list of ids"})
		return
	}

	ctx := c.Request.Context()
	rate, err := h.Rates.Current(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}

	bookings, err := h.Bookings.Book(ctx, actorFrom(c), req.SlotIDs, rate)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"bookings": bookings})
}

func (h *Handler) myBookings(c *gin.Context) {
	actor := actorFrom(c)
	ctx := c.Request.Context()

	bookings, err := h.Bookings.StudentBookings(ctx, actor.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	views := make([]bookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, bookingView{Booking: b, CanReschedule: h.Bookings.CanReschedule(b)})
	}

	next, err := h.Bookings.NextLesson(ctx, actor.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": views, "next": next})
}

func (h *Handler) cancelBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Bookings.Cancel(c.Request.Context(), actorFrom(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) reschedule(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		SlotID uuid.UUID `json:"slot_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slot_id is required"})
		return
	}

	booking, err := h.Bookings.Reschedule(c.Request.Context(), actorFrom(c), id, req.SlotID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}
