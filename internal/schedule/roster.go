package schedule

import (
	"sort"
	"strings"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
)

// Варианты сортировки списка студентов
const (
	SortByName     = "az"
	SortByProgress = "progress"
	SortByAge      = "age"
	SortByLevel    = "level"
)

var levelRank = map[string]int{
	"beginner":     1,
	"intermediate": 2,
	"advanced":     3,
}

// ActiveStudents отбрасывает мягко удалённых студентов и сортирует остальных
func ActiveStudents(users []*model.User, sortBy string) []*model.User {
	students := make([]*model.User, 0, len(users))
	for _, u := range users {
		if u.Deleted || u.Role != model.RoleStudent {
			continue
		}
		students = append(students, u)
	}

	sort.SliceStable(students, func(i, j int) bool {
		a, b := students[i], students[j]
		switch sortBy {
		case SortByProgress:
			return a.Progress > b.Progress
		case SortByAge:
			return olderFirst(a.DOB, b.DOB)
		case SortByLevel:
			return levelRank[strings.ToLower(a.SkillLevel)] > levelRank[strings.ToLower(b.SkillLevel)]
		case SortByName:
			return strings.ToLower(a.FirstName) < strings.ToLower(b.FirstName)
		default:
			return false
		}
	})

	return students
}

// olderFirst студенты без даты рождения идут в конце
func olderFirst(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.Before(*b)
}
