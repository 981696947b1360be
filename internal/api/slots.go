package api

import (
	"io"
	"net/http"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/schedule"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type weekResponse struct {
	Start   string `json:"start"`
	Label   string `json:"label"`
	Current bool   `json:"current"`
	Prev    string `json:"prev"`
	Next    string `json:"next"`
}

func (h *Handler) describeWeek(week schedule.Week) weekResponse {
	return weekResponse{
		Start:   schedule.FormatDate(week.Start),
		Label:   week.Label(),
		Current: week.IsCurrent(h.Availability.Now()),
		Prev:    schedule.FormatDate(week.Prev().Start),
		Next:    schedule.FormatDate(week.Next().Start),
	}
}

func (h *Handler) openSlots(c *gin.Context) {
	week, err := h.Availability.ParseWeek(c.Query("week"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	days, err := h.Availability.OpenWeek(c.Request.Context(), week)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"week": h.describeWeek(week), "days": days})
}

func (h *Handler) currentRate(c *gin.Context) {
	rate, err := h.Rates.Current(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rate": rate, "formatted": schedule.FormatAmount(rate)})
}

type slotIDsRequest struct {
	SlotIDs []uuid.UUID `json:"slot_ids"`
}

func (h *Handler) quote(c *gin.Context) {
	var req slotIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slot_ids must be a list of ids"})
		return
	}

	quote, err := h.Rates.Quote(c.Request.Context(), req.SlotIDs)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// streamSlots отдаёт снимки свободных слотов недели и изменения ставки как server-sent events
func (h *Handler) streamSlots(c *gin.Context) {
	week, err := h.Availability.ParseWeek(c.Query("week"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	snapshots, err := h.Availability.WatchOpen(ctx, week)
	if err != nil {
		h.respondError(c, err)
		return
	}

	rates, err := h.Rates.Watch(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	keepAlive := time.NewTicker(h.opts.StreamPeriod)
	defer keepAlive.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case days, ok := <-snapshots:
			if !ok {
				return false
			}
			c.SSEvent("slots", gin.H{"week": h.describeWeek(week), "days": days})
			return true
		case rate, ok := <-rates:
			if !ok {
				// ставка больше не обновляется, слоты продолжают идти
				rates = nil
				return true
			}
			c.SSEvent("rate", gin.H{"rate": rate, "formatted": schedule.FormatAmount(rate)})
			return true
		case <-keepAlive.C:
			c.SSEvent("ping", "")
			return true
		case <-ctx.Done():
			return false
		}
	})
}
