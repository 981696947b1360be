package schedule

import (
	"testing"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slot(date, clock string, students ...string) *model.LessonSlot {
	if students == nil {
		students = []string{}
	}
	return &model.LessonSlot{ID: uuid.New(), Date: date, Time: clock, TeacherID: "t", BookedStudentIDs: students}
}

func TestOpenSlotsByDay_ExcludesBookedAndSorts(t *testing.T) {
	slots := []*model.LessonSlot{
		slot("2024-06-03", "11:00"),
		slot("2024-06-03", "09:00"),
		slot("2024-06-03", "10:00", "s1"),
		slot("2024-06-04", "08:00"),
	}

	byDay := OpenSlotsByDay(slots)
	require.Len(t, byDay, 2)
	require.Len(t, byDay["2024-06-03"], 2)
	assert.Equal(t, "09:00", byDay["2024-06-03"][0].Time)
	assert.Equal(t, "11:00", byDay["2024-06-03"][1].Time)
	assert.Len(t, byDay["2024-06-04"], 1)
}

func TestOpenWeek_IncludesEmptyDays(t *testing.T) {
	now := time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC)
	slots := []*model.LessonSlot{
		slot("2024-06-03", "09:00"),
		slot("2024-06-12", "09:00"),
	}

	days := OpenWeek(WeekOf(now), slots)
	require.Len(t, days, 7)
	assert.Equal(t, "2024-06-02", days[0].Date)
	assert.Equal(t, time.Sunday, days[0].Weekday)
	assert.Empty(t, days[0].Slots)
	assert.Len(t, days[1].Slots, 1)
	assert.Equal(t, time.Monday, days[1].Weekday)
	for _, d := range days[2:] {
		assert.Empty(t, d.Slots)
	}
}

func TestMergeTeacherView(t *testing.T) {
	open := slot("2024-06-03", "10:00")
	booked := slot("2024-06-03", "09:00", "s1")
	bookings := []*model.Booking{
		{ID: uuid.New(), StudentID: "s1", SlotID: booked.ID},
		{ID: uuid.New(), StudentID: "ghost", SlotID: uuid.New()},
	}

	views := MergeTeacherView([]*model.LessonSlot{open, booked}, bookings)
	require.Len(t, views, 2)

	assert.Equal(t, booked.ID, views[0].Slot.ID)
	assert.True(t, views[0].Booked)
	require.Len(t, views[0].Bookings, 1)
	assert.Equal(t, "s1", views[0].Bookings[0].StudentID)

	assert.Equal(t, open.ID, views[1].Slot.ID)
	assert.False(t, views[1].Booked)
	assert.Empty(t, views[1].Bookings)
}

func TestTeacherWeek_FiltersByWeek(t *testing.T) {
	now := time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC)
	views := TeacherWeek(WeekOf(now), []*model.LessonSlot{
		slot("2024-06-01", "09:00"),
		slot("2024-06-08", "09:00"),
		slot("2024-06-09", "09:00"),
	}, nil)

	require.Len(t, views, 1)
	assert.Equal(t, "2024-06-08", views[0].Slot.Date)
}

func TestFindOrphans(t *testing.T) {
	live := slot("2024-06-03", "09:00", "s1")
	orphan := &model.Booking{ID: uuid.New(), SlotID: uuid.New()}
	bookings := []*model.Booking{{ID: uuid.New(), SlotID: live.ID}, orphan}

	orphans := FindOrphans([]*model.LessonSlot{live}, bookings)
	require.Len(t, orphans, 1)
	assert.Equal(t, orphan.ID, orphans[0].ID)
}
