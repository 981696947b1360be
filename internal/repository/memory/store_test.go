package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSlot(t *testing.T, s *Store, date, clock string) *model.LessonSlot {
	t.Helper()
	created, err := s.Slots.CreateBatch(context.Background(), []*model.LessonSlot{
		{Date: date, Time: clock, TeacherID: "teacher"},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	return created[0]
}

func booking(slot *model.LessonSlot, student string) *model.Booking {
	return &model.Booking{
		StudentID: student,
		SlotID:    slot.ID,
		Date:      slot.Date,
		Time:      slot.Time,
		Length:    model.DefaultLessonLength,
		Status:    model.BookingStatusBooked,
		Rate:      60,
	}
}

func TestCreateBatchSkipsDuplicates(t *testing.T) {
	s := New()
	ctx := context.Background()

	seedSlot(t, s, "2025-06-02", "09:00")

	created, err := s.Slots.CreateBatch(ctx, []*model.LessonSlot{
		{Date: "2025-06-02", Time: "09:00", TeacherID: "teacher"},
		{Date: "2025-06-02", Time: "10:00", TeacherID: "teacher"},
		{Date: "2025-06-02", Time: "10:00", TeacherID: "teacher"},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "10:00", created[0].Time)
	assert.NotEqual(t, uuid.Nil, created[0].ID)

	all, err := s.Slots.ListByTeacher(ctx, "teacher")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCreateBookingFirstWriteWins(t *testing.T) {
	s := New()
	ctx := context.Background()
	slot := seedSlot(t, s, "2025-06-02", "09:00")

	require.NoError(t, s.Bookings.Create(ctx, booking(slot, "alice")))
	err := s.Bookings.Create(ctx, booking(slot, "bob"))
	assert.ErrorIs(t, err, repository.ErrSlotTaken)

	stored, err := s.Slots.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, stored.BookedStudentIDs)
}

func TestCreateBookingConcurrent(t *testing.T) {
	s := New()
	ctx := context.Background()
	slot := seedSlot(t, s, "2025-06-02", "09:00")

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		wins  int
		taken int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.Bookings.Create(ctx, booking(slot, uuid.NewString()))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else if assert.ErrorIs(t, err, repository.ErrSlotTaken) {
				taken++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 19, taken)
}

func TestCreateBookingMissingSlot(t *testing.T) {
	s := New()
	err := s.Bookings.Create(context.Background(), &model.Booking{SlotID: uuid.New(), StudentID: "alice"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteBookingReleasesSlot(t *testing.T) {
	s := New()
	ctx := context.Background()
	slot := seedSlot(t, s, "2025-06-02", "09:00")
	b := booking(slot, "alice")
	require.NoError(t, s.Bookings.Create(ctx, b))

	deleted, err := s.Bookings.Delete(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Equal(t, b.ID, deleted.ID)

	stored, _ := s.Slots.GetByID(ctx, slot.ID)
	assert.True(t, stored.IsOpen())

	again, err := s.Bookings.Delete(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestRescheduleKeepsOldBookingOnFailure(t *testing.T) {
	s := New()
	ctx := context.Background()
	from := seedSlot(t, s, "2025-06-02", "09:00")
	to := seedSlot(t, s, "2025-06-03", "09:00")

	old := booking(from, "alice")
	require.NoError(t, s.Bookings.Create(ctx, old))
	require.NoError(t, s.Bookings.Create(ctx, booking(to, "bob")))

	err := s.Bookings.Reschedule(ctx, old.ID, booking(to, "alice"))
	assert.ErrorIs(t, err, repository.ErrSlotTaken)

	kept, err := s.Bookings.GetByID(ctx, old.ID)
	require.NoError(t, err)
	assert.NotNil(t, kept)

	stored, _ := s.Slots.GetByID(ctx, from.ID)
	assert.Equal(t, []string{"alice"}, stored.BookedStudentIDs)
}

func TestRescheduleMovesBooking(t *testing.T) {
	s := New()
	ctx := context.Background()
	from := seedSlot(t, s, "2025-06-02", "09:00")
	to := seedSlot(t, s, "2025-06-03", "09:00")

	old := booking(from, "alice")
	require.NoError(t, s.Bookings.Create(ctx, old))

	next := booking(to, "alice")
	require.NoError(t, s.Bookings.Reschedule(ctx, old.ID, next))

	gone, _ := s.Bookings.GetByID(ctx, old.ID)
	assert.Nil(t, gone)

	freed, _ := s.Slots.GetByID(ctx, from.ID)
	assert.True(t, freed.IsOpen())

	taken, _ := s.Slots.GetByID(ctx, to.ID)
	assert.True(t, taken.HasStudent("alice"))
}

func TestDeleteSlot(t *testing.T) {
	s := New()
	ctx := context.Background()
	slot := seedSlot(t, s, "2025-06-02", "09:00")
	b := booking(slot, "alice")
	require.NoError(t, s.Bookings.Create(ctx, b))

	_, err := s.Slots.Delete(ctx, slot.ID, false)
	assert.ErrorIs(t, err, repository.ErrSlotOccupied)

	removed, err := s.Slots.Delete(ctx, slot.ID, true)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{b.ID}, removed)

	count, err := s.Bookings.CountOrphans(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = s.Slots.Delete(ctx, slot.ID, false)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCountOrphans(t *testing.T) {
	s := New()
	ctx := context.Background()
	slot := seedSlot(t, s, "2025-06-02", "09:00")
	require.NoError(t, s.Bookings.Create(ctx, booking(slot, "alice")))

	s.Slots.Remove(slot.ID)

	count, err := s.Bookings.CountOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFirstTeacher(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Users.Upsert(ctx, &model.User{ID: "s1", Role: model.RoleStudent}))
	require.NoError(t, s.Users.Upsert(ctx, &model.User{ID: "t1", Role: model.RoleTeacher}))
	require.NoError(t, s.Users.Upsert(ctx, &model.User{ID: "t2", Role: model.RoleTeacher}))

	teacher, err := s.Users.GetFirstTeacher(ctx)
	require.NoError(t, err)
	require.NotNil(t, teacher)
	assert.Equal(t, "t1", teacher.ID)
}
