package schedule

import (
	"testing"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanReschedule_Boundary(t *testing.T) {
	now := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

	exactly := now.Add(7 * 24 * time.Hour)
	assert.True(t, CanReschedule(exactly, now, RescheduleLead))

	justShort := exactly.Add(-time.Second)
	assert.False(t, CanReschedule(justShort, now, RescheduleLead))

	assert.False(t, CanReschedule(now.Add(-time.Hour), now, RescheduleLead))
}

func TestIsPastDate_IgnoresTimeOfDay(t *testing.T) {
	now := time.Date(2024, 6, 3, 23, 59, 0, 0, time.UTC)

	assert.False(t, IsPastDate("2024-06-03", now))
	assert.False(t, IsPastDate("2024-06-04", now))
	assert.True(t, IsPastDate("2024-06-02", now))
}

func TestDaysLeft(t *testing.T) {
	now := time.Date(2024, 6, 3, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		due  string
		want string
	}{
		{due: "2024-06-10", want: "7 days left"},
		{due: "2024-06-04", want: "1 day left"},
		{due: "2024-06-03", want: "Due today"},
		{due: "2024-06-02", want: "Overdue by 1 day"},
		{due: "2024-05-30", want: "Overdue by 4 days"},
		{due: "", want: ""},
		{due: "garbage", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.due, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysLeft(tt.due, now))
		})
	}
}

func TestUpcomingAndNextLesson(t *testing.T) {
	now := time.Date(2024, 6, 3, 10, 30, 0, 0, time.UTC)
	bookings := []*model.Booking{
		{StudentID: "late", Date: "2024-06-10", Time: "09:00"},
		{StudentID: "past", Date: "2024-06-03", Time: "10:00"},
		{StudentID: "soon", Date: "2024-06-03", Time: "11:00"},
		{StudentID: "broken", Date: "bad", Time: "11:00"},
	}

	upcoming := Upcoming(bookings, now)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "soon", upcoming[0].StudentID)
	assert.Equal(t, "late", upcoming[1].StudentID)

	next := NextLesson(bookings, now)
	require.NotNil(t, next)
	assert.Equal(t, "soon", next.StudentID)

	assert.Nil(t, NextLesson(nil, now))
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("09:00")
	require.NoError(t, err)
	assert.Equal(t, 540, m)

	m, err = ParseClock("14:15:00")
	require.NoError(t, err)
	assert.Equal(t, 855, m)

	for _, bad := range []string{"", "9", "24:00", "12:60", "ab:cd", "+9:0", "9:00", "09:5", "09:00:6", "09:00:60"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}

	m, err = ParseEndClock("24:00")
	require.NoError(t, err)
	assert.Equal(t, 24*60, m)

	m, err = ParseEndClock("18:00")
	require.NoError(t, err)
	assert.Equal(t, 18*60, m)

	_, err = ParseEndClock("24:30")
	assert.Error(t, err)

	assert.Equal(t, "09:05", FormatClock(545))
}
