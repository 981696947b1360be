package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var genNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestGenerate_SingleMondayMorning(t *testing.T) {
	spec := model.AvailabilitySpec{
		StartDate:  "2024-06-03",
		EndDate:    "2024-06-03",
		StartTime:  "09:00",
		EndTime:    "11:00",
		DaysOfWeek: []int{1},
	}

	slots, err := Generate(nil, spec, "teacher-1", genNow)
	require.NoError(t, err)
	require.Len(t, slots, 2)

	assert.Equal(t, "2024-06-03", slots[0].Date)
	assert.Equal(t, "09:00", slots[0].Time)
	assert.Equal(t, "2024-06-03", slots[1].Date)
	assert.Equal(t, "10:00", slots[1].Time)

	for _, s := range slots {
		assert.Equal(t, "teacher-1", s.TeacherID)
		assert.True(t, s.IsOpen())
		assert.NotNil(t, s.BookedStudentIDs)
		assert.Equal(t, genNow, s.CreatedAt)
	}
}

func TestGenerate_EndDateDefaultsToStartDate(t *testing.T) {
	spec := model.AvailabilitySpec{
		StartDate:  "2024-06-03",
		StartTime:  "09:00",
		EndTime:    "10:00",
		DaysOfWeek: []int{0, 1, 2, 3, 4, 5, 6},
	}

	slots, err := Generate(nil, spec, "t", genNow)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "2024-06-03", slots[0].Date)
}

func TestGenerate_SecondRunFullyCollides(t *testing.T) {
	spec := model.AvailabilitySpec{
		StartDate:  "2024-06-01",
		EndDate:    "2024-06-30",
		StartTime:  "08:00",
		EndTime:    "12:00",
		DaysOfWeek: []int{0, 1, 2, 3, 4, 5, 6},
	}

	first, err := Generate(nil, spec, "t", genNow)
	require.NoError(t, err)
	assert.Len(t, first, 30*4)

	second, err := Generate(first, spec, "t", genNow)
	assert.Nil(t, second)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.True(t, errors.Is(err, ErrCollisionExhaustion))
}

func TestGenerate_SkipsOnlyCollidingPairs(t *testing.T) {
	existing := []*model.LessonSlot{{Date: "2024-06-03", Time: "10:00", TeacherID: "t"}}
	spec := model.AvailabilitySpec{
		StartDate:  "2024-06-03",
		StartTime:  "09:00",
		EndTime:    "12:00",
		DaysOfWeek: []int{1},
	}

	slots, err := Generate(existing, spec, "t", genNow)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "09:00", slots[0].Time)
	assert.Equal(t, "11:00", slots[1].Time)
}

func TestGenerate_HourAlignmentAndEndBound(t *testing.T) {
	spec := model.AvailabilitySpec{
		StartDate:  "2024-06-02",
		EndDate:    "2024-06-15",
		StartTime:  "13:00",
		EndTime:    "17:00",
		DaysOfWeek: []int{1, 3, 5},
	}

	slots, err := Generate(nil, spec, "t", genNow)
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	endMin, _ := ParseClock(spec.EndTime)
	for _, s := range slots {
		m, err := ParseClock(s.Time)
		require.NoError(t, err)
		assert.Zero(t, m%60, "slot %s is not on the hour", s.Time)
		assert.LessOrEqual(t, m+SlotLength, endMin)

		d, err := ParseDate(s.Date)
		require.NoError(t, err)
		assert.Contains(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, d.Weekday())
	}
}

func TestGenerate_EndOfDay(t *testing.T) {
	spec := model.AvailabilitySpec{
		StartDate:  "2024-06-03",
		StartTime:  "22:00",
		EndTime:    "24:00",
		DaysOfWeek: []int{1},
	}

	slots, err := Generate(nil, spec, "t", genNow)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "22:00", slots[0].Time)
	assert.Equal(t, "23:00", slots[1].Time)

	spec.StartTime = "24:00"
	_, err = Generate(nil, spec, "t", genNow)
	assert.Error(t, err)
}

func TestGenerate_UnalignedWindowStepsFromStart(t *testing.T) {
	spec := model.AvailabilitySpec{
		StartDate:  "2024-06-03",
		StartTime:  "09:30",
		EndTime:    "11:45",
		DaysOfWeek: []int{1},
	}

	slots, err := Generate(nil, spec, "t", genNow)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "09:30", slots[0].Time)
	assert.Equal(t, "10:30", slots[1].Time)
}

func TestGenerate_LocalDatesAcrossMonthBoundary(t *testing.T) {
	spec := model.AvailabilitySpec{
		StartDate:  "2024-03-30",
		EndDate:    "2024-04-01",
		StartTime:  "23:00",
		EndTime:    "23:59",
		DaysOfWeek: []int{0, 1, 2, 3, 4, 5, 6},
	}

	_, err := Generate(nil, spec, "t", genNow)
	require.Error(t, err, "23:00-23:59 is shorter than one hour")

	spec.StartTime = "22:00"
	slots, err := Generate(nil, spec, "t", genNow)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, []string{"2024-03-30", "2024-03-31", "2024-04-01"},
		[]string{slots[0].Date, slots[1].Date, slots[2].Date})
}

func TestGenerate_Validation(t *testing.T) {
	valid := model.AvailabilitySpec{
		StartDate:  "2024-06-03",
		StartTime:  "09:00",
		EndTime:    "10:00",
		DaysOfWeek: []int{1},
	}

	tests := []struct {
		name      string
		mutate    func(*model.AvailabilitySpec)
		collision bool
	}{
		{name: "missing start date", mutate: func(s *model.AvailabilitySpec) { s.StartDate = "" }},
		{name: "missing start time", mutate: func(s *model.AvailabilitySpec) { s.StartTime = "" }},
		{name: "missing end time", mutate: func(s *model.AvailabilitySpec) { s.EndTime = "" }},
		{name: "no days", mutate: func(s *model.AvailabilitySpec) { s.DaysOfWeek = nil }},
		{name: "bad day", mutate: func(s *model.AvailabilitySpec) { s.DaysOfWeek = []int{7} }},
		{name: "bad date", mutate: func(s *model.AvailabilitySpec) { s.StartDate = "03/06/2024" }},
		{name: "bad time", mutate: func(s *model.AvailabilitySpec) { s.EndTime = "25:00" }},
		{name: "end before start", mutate: func(s *model.AvailabilitySpec) { s.EndDate = "2024-06-01" }},
		{name: "window too short", mutate: func(s *model.AvailabilitySpec) { s.EndTime = "09:59" }},
		{name: "no matching weekday", mutate: func(s *model.AvailabilitySpec) { s.DaysOfWeek = []int{2} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := valid
			spec.DaysOfWeek = append([]int(nil), valid.DaysOfWeek...)
			tt.mutate(&spec)

			slots, err := Generate(nil, spec, "t", genNow)
			assert.Nil(t, slots)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.False(t, errors.Is(err, ErrCollisionExhaustion))
		})
	}
}
