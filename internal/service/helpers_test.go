package service

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/feed"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/repository/memory"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testTeacherID = "teacher-1"

var (
	alice = Actor{ID: "alice", Name: "Alice Smith", Role: model.RoleStudent}
	bob   = Actor{ID: "bob", Name: "Bob Jones", Role: model.RoleStudent}
	owner = Actor{ID: testTeacherID, Name: "Teacher", Role: model.RoleTeacher}
)

type testEnv struct {
	store    *memory.Store
	feed     *feed.InMemory
	rates    *RateResolver
	booking  *BookingService
	teacher  *TeacherService
	avail    *AvailabilityService
	homework *HomeworkService
	users    *UserService
	now      time.Time
}

// newTestEnv собирает сервисы над in-memory хранилищем.
// Часы по умолчанию: суббота 2024-06-01 12:00 UTC.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store: memory.New(),
		feed:  feed.NewInMemory(8),
		now:   time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return env.now }

	settings := Settings{
		TeacherID:   testTeacherID,
		DefaultRate: 60,
		Location:    time.UTC,
	}
	logger := zap.NewNop()

	rate := 60.0
	env.store.Users.Put(&model.User{ID: testTeacherID, Role: model.RoleTeacher, FirstName: "Teacher", Rate: &rate})
	env.store.Users.Put(&model.User{ID: alice.ID, Role: model.RoleStudent, FirstName: "Alice", LastName: "Smith"})
	env.store.Users.Put(&model.User{ID: bob.ID, Role: model.RoleStudent, FirstName: "Bob", LastName: "Jones"})

	env.rates = NewRateResolver(env.store.Users, settings, env.feed, logger)
	env.booking = NewBookingService(env.store.Slots, env.store.Bookings, env.rates, env.feed, settings, nil, logger)
	env.booking.now = clock
	env.teacher = NewTeacherService(env.store.Slots, env.store.Bookings, env.store.Users, env.rates, env.feed, settings, nil, logger)
	env.teacher.now = clock
	env.avail = NewAvailabilityService(env.store.Slots, env.store.Bookings, env.rates, env.feed, settings, logger)
	env.avail.now = clock
	env.homework = NewHomeworkService(env.store.Homework, env.store.Users, env.rates, env.feed, settings, logger)
	env.homework.now = clock
	env.users = NewUserService(env.store.Users, env.feed, settings, logger)

	t.Cleanup(func() { _ = env.feed.Close() })
	return env
}

// publish создаёт слоты одного дня с from по to
func (e *testEnv) publish(t *testing.T, date, from, to string) []*model.LessonSlot {
	t.Helper()

	d, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)

	slots, err := e.teacher.PublishAvailability(context.Background(), model.AvailabilitySpec{
		StartDate:  date,
		EndDate:    date,
		StartTime:  from,
		EndTime:    to,
		DaysOfWeek: []int{int(d.Weekday())},
	})
	require.NoError(t, err)
	return slots
}
