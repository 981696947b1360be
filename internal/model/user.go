package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// User профиль учителя или студента.
// Rate используется только у учителя, SkillLevel/DOB/Progress/Deleted только у студента.
type User struct {
	ID          string     `json:"id"`
	Role        Role       `json:"role"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	TelegramID  *int64     `json:"telegram_id,omitempty"`
	Rate        *float64   `json:"rate,omitempty"`
	Bio         string     `json:"bio,omitempty"`
	SiteTitle   string     `json:"site_title,omitempty"`
	SiteTagline string     `json:"site_tagline,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	SkillLevel  string     `json:"skill_level,omitempty"` // beginner, intermediate, advanced
	DOB         *time.Time `json:"dob,omitempty"`
	Progress    int        `json:"progress"` // 0-100
	Deleted     bool       `json:"deleted"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsTeacher проверяет роль учителя
func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

// FullName возвращает "Имя Фамилия" без лишних пробелов
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
