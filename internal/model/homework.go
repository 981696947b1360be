package model

import (
	"time"

	"github.com/google/uuid"
)

// Homework домашнее задание, выданное учителем студенту
type Homework struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	AssignedDate string    `json:"assigned_date"` // yyyy-mm-dd
	DueDate      string    `json:"due_date"`      // yyyy-mm-dd
	StudentID    string    `json:"student_id"`
	TeacherID    string    `json:"teacher_id"`
	Done         bool      `json:"done"`
	CreatedAt    time.Time `json:"created_at"`
}
