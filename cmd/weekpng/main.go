// Команда weekpng рисует пример недели, чтобы проверить вид картинки без бота
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/controller/render"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/schedule"
	"github.com/google/uuid"
)

func main() {
	out := flag.String("out", "week.png", "output file")
	flag.Parse()

	now := time.Now()
	week := schedule.WeekOf(now)
	dates := week.Dates()

	slot := func(day int, clock string, students ...string) schedule.SlotView {
		s := &model.LessonSlot{ID: uuid.New(), Date: dates[day], Time: clock, BookedStudentIDs: students}
		view := schedule.SlotView{Slot: s, Booked: len(students) > 0}
		for _, id := range students {
			view.Bookings = append(view.Bookings, &model.Booking{StudentID: id, StudentName: "Student " + id})
		}
		return view
	}

	views := []schedule.SlotView{
		slot(1, "09:00"),
		slot(1, "10:00", "alice"),
		slot(2, "14:00"),
		slot(3, "09:00", "bob"),
		slot(3, "10:00"),
		slot(5, "18:00", "alice"),
		slot(6, "11:00"),
	}

	img, err := render.WeekImage(week, views, render.Options{Now: now, ViewerID: "alice", ShowNames: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "render week: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, img, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("Week %s written to %s\n", week.Label(), *out)
}
