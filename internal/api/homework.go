package api

import (
	"net/http"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/service"
	"github.com/gin-gonic/gin"
)

type homeworkView struct {
	*model.Homework
	DaysLeft string `json:"days_left"`
}

func (h *Handler) homeworkViews(items []*model.Homework) []homeworkView {
	views := make([]homeworkView, 0, len(items))
	for _, hw := range items {
		views = append(views, homeworkView{Homework: hw, DaysLeft: h.Homework.DaysLeft(hw)})
	}
	return views
}

func (h *Handler) myHomework(c *gin.Context) {
	items, err := h.Homework.ListForStudent(c.Request.Context(), actorFrom(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"homework": h.homeworkViews(items)})
}

func (h *Handler) toggleHomework(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	hw, err := h.Homework.Toggle(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"homework": homeworkView{Homework: hw, DaysLeft: h.Homework.DaysLeft(hw)}})
}

func (h *Handler) assignHomework(c *gin.Context) {
	var req service.HomeworkInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hw, err := h.Homework.Assign(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"homework": homeworkView{Homework: hw, DaysLeft: h.Homework.DaysLeft(hw)}})
}

func (h *Handler) teacherHomework(c *gin.Context) {
	items, err := h.Homework.ListForTeacher(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"homework": h.homeworkViews(items)})
}

func (h *Handler) deleteHomework(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Homework.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
