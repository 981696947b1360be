package service

import (
	"context"
	"testing"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/schedule"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishAvailabilityValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.teacher.PublishAvailability(context.Background(), model.AvailabilitySpec{
		StartDate: "2024-06-03",
		StartTime: "09:00",
		EndTime:   "11:00",
	})
	require.Error(t, err)
	assert.True(t, schedule.IsValidation(err))
	assert.NotErrorIs(t, err, schedule.ErrCollisionExhaustion)
}

func TestDeleteBookedSlotRequiresCascade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	slot := env.publish(t, "2024-06-04", "09:00", "10:00")[0]

	bookings, err := env.booking.Book(ctx, alice, []uuid.UUID{slot.ID}, 60)
	require.NoError(t, err)

	_, err = env.teacher.DeleteSlot(ctx, slot.ID, false)
	assert.ErrorIs(t, err, ErrSlotBooked)

	canceled, err := env.teacher.DeleteSlot(ctx, slot.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, canceled)

	gone, err := env.store.Bookings.GetByID(ctx, bookings[0].ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	orphans, err := env.teacher.AuditOrphans(ctx)
	require.NoError(t, err)
	assert.Zero(t, orphans)

	_, err = env.teacher.DeleteSlot(ctx, slot.ID, false)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestDeleteSlotsReportsAggregateFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	slots := env.publish(t, "2024-06-04", "09:00", "12:00")

	_, err := env.booking.Book(ctx, alice, []uuid.UUID{slots[1].ID}, 60)
	require.NoError(t, err)

	canceled, err := env.teacher.DeleteSlots(ctx, ids(slots), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSlotBooked)
	assert.Zero(t, canceled)

	left, err := env.store.Slots.ListByTeacher(ctx, testTeacherID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, slots[1].ID, left[0].ID)
}

func TestSetRate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.teacher.SetRate(ctx, 80))
	rate, err := env.rates.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 80.0, rate)

	for _, input := range []string{"abc", "0", "-5", ""} {
		_, err := env.teacher.SetRateText(ctx, input)
		require.Error(t, err, input)
		assert.Equal(t, "please enter a valid rate", err.Error())
	}

	rate, err = env.teacher.SetRateText(ctx, " 72.5 ")
	require.NoError(t, err)
	assert.Equal(t, 72.5, rate)
}

func TestRateChangeDoesNotTouchExistingBookings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	slot := env.publish(t, "2024-06-04", "09:00", "10:00")[0]

	bookings, err := env.booking.Book(ctx, alice, []uuid.UUID{slot.ID}, 60)
	require.NoError(t, err)
	require.NoError(t, env.teacher.SetRate(ctx, 90))

	stored, err := env.store.Bookings.GetByID(ctx, bookings[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 60.0, stored.Rate)
}

func TestRosterAndRemoveStudent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	roster, err := env.teacher.Roster(ctx, schedule.SortByName)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "alice", roster[0].ID)

	require.NoError(t, env.teacher.RemoveStudent(ctx, "alice"))

	roster, err = env.teacher.Roster(ctx, schedule.SortByName)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "bob", roster[0].ID)

	assert.ErrorIs(t, env.teacher.RemoveStudent(ctx, "nobody"), ErrStudentNotFound)
	assert.ErrorIs(t, env.teacher.RemoveStudent(ctx, testTeacherID), ErrStudentNotFound)
}

func TestEarnings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	slots := env.publish(t, "2024-06-04", "09:00", "11:00")

	_, err := env.booking.Book(ctx, alice, []uuid.UUID{slots[0].ID}, 60)
	require.NoError(t, err)
	_, err = env.booking.Book(ctx, bob, []uuid.UUID{slots[1].ID}, 45.5)
	require.NoError(t, err)

	summary, err := env.teacher.Earnings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Lessons)
	assert.Equal(t, 105.5, summary.Total)
	assert.Equal(t, "105.50", summary.Formatted)
	assert.Equal(t, 2, summary.Upcoming)
}

func TestAuditOrphans(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	slot := env.publish(t, "2024-06-04", "09:00", "10:00")[0]

	_, err := env.booking.Book(ctx, alice, []uuid.UUID{slot.ID}, 60)
	require.NoError(t, err)
	env.store.Slots.Remove(slot.ID)

	count, err := env.teacher.AuditOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
