// Package render рисует неделю слотов в PNG для отправки в чат
package render

import (
	"bytes"
	"image/color"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/schedule"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

const (
	imageWidth       = 1120
	imageHeight      = 720
	headerHeight     = 70
	leftLabelsWidth  = 64
	legendWidth      = 110
	dayPaddingX      = 6
	slotBorderRadius = 5.0
	shadowOffset     = 2.0
	daysInWeek       = 7
	hourPadding      = 1
	defaultMinHour   = 8
	defaultMaxHour   = 20
)

var (
	bgColor        = color.RGBA{245, 246, 248, 255}
	textColor      = color.RGBA{80, 85, 90, 230}
	hourLabelColor = color.RGBA{110, 115, 120, 210}
	hourLineColor  = color.NRGBA{150, 150, 150, 255}
	todayBgColor   = color.NRGBA{255, 99, 71, 90}
	pastBgColor    = color.NRGBA{200, 200, 200, 255}
	evenDayColor   = color.NRGBA{240, 240, 240, 255}
	oddDayColor    = color.NRGBA{228, 228, 228, 255}

	slotOpenColor   = color.RGBA{133, 193, 85, 220}
	slotBookedColor = color.RGBA{255, 182, 193, 255}
	slotMineColor   = color.RGBA{100, 149, 237, 230}
	slotTextColor   = color.RGBA{20, 24, 28, 230}
	slotShadowColor = color.RGBA{0, 0, 0, 20}
)

// Options параметры отрисовки
type Options struct {
	Now       time.Time // в локации учителя
	ViewerID  string    // слоты этого студента подсвечиваются отдельно
	ShowNames bool      // подписывать занятые слоты именем студента
}

type hourRange struct {
	start int
	total int
}

// WeekImage рисует неделю с воскресенья по субботу
func WeekImage(week schedule.Week, views []schedule.SlotView, opts Options) ([]byte, error) {
	byDay := make(map[string][]schedule.SlotView, daysInWeek)
	for _, v := range views {
		byDay[v.Slot.Date] = append(byDay[v.Slot.Date], v)
	}
	hours := hourSpan(views)

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dayWidth := float64(imageWidth-leftLabelsWidth-legendWidth) / daysInWeek
	dayHeight := float64(imageHeight - headerHeight)
	cellHeight := dayHeight / float64(hours.total)

	dc.SetColor(textColor)
	dc.DrawStringAnchored(week.Label(), float64(imageWidth)/2, float64(headerHeight)/4, 0.5, 0.5)

	drawHourLabels(dc, hours, cellHeight)

	today := schedule.Today(opts.Now)
	for i, date := range week.Dates() {
		x := float64(leftLabelsWidth) + float64(i)*dayWidth
		drawDay(dc, i, date, today, x, dayWidth, dayHeight)
		drawHourLines(dc, x, dayWidth, hours, cellHeight)
		for _, v := range byDay[date] {
			drawSlot(dc, v, opts, x, dayWidth, hours, cellHeight)
		}
	}

	drawLegend(dc, float64(leftLabelsWidth)+daysInWeek*dayWidth+10)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// hourSpan диапазон часов с запасом по краям; без слотов показывается рабочий день
func hourSpan(views []schedule.SlotView) hourRange {
	minHour, maxHour := 24, -1
	for _, v := range views {
		start, err := schedule.ParseClock(v.Slot.Time)
		if err != nil {
			continue
		}
		if h := start / 60; h < minHour {
			minHour = h
		}
		if h := (start + schedule.SlotLength + 59) / 60; h > maxHour {
			maxHour = h
		}
	}
	if maxHour < 0 {
		minHour, maxHour = defaultMinHour, defaultMaxHour
	}

	minHour = max(minHour-hourPadding, 0)
	maxHour = min(maxHour+hourPadding, 24)
	return hourRange{start: minHour, total: max(maxHour-minHour, 1)}
}

func drawHourLabels(dc *gg.Context, hours hourRange, cellHeight float64) {
	dc.SetColor(hourLabelColor)
	for i := 0; i < hours.total; i++ {
		y := float64(headerHeight) + float64(i)*cellHeight
		dc.DrawStringAnchored(schedule.FormatClock((hours.start+i)*60), float64(leftLabelsWidth)-8, y, 1, 0.5)
	}
}

func drawDay(dc *gg.Context, index int, date, today string, x, dayWidth, dayHeight float64) {
	switch {
	case date == today:
		dc.SetColor(todayBgColor)
	case date < today:
		dc.SetColor(pastBgColor)
	case index%2 == 0:
		dc.SetColor(evenDayColor)
	default:
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, float64(headerHeight), dayWidth, dayHeight)
	dc.Fill()

	label := date
	if d, err := schedule.ParseDate(date); err == nil {
		label = d.Format("Mon 02.01")
	}
	dc.SetColor(textColor)
	dc.DrawStringAnchored(label, x+dayWidth/2, float64(headerHeight)-12, 0.5, 0.5)
}

func drawHourLines(dc *gg.Context, x, dayWidth float64, hours hourRange, cellHeight float64) {
	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)
	for i := 0; i <= hours.total; i++ {
		y := float64(headerHeight) + float64(i)*cellHeight
		dc.DrawLine(x, y, x+dayWidth, y)
		dc.Stroke()
	}
}

func drawSlot(dc *gg.Context, v schedule.SlotView, opts Options, x, dayWidth float64, hours hourRange, cellHeight float64) {
	start, err := schedule.ParseClock(v.Slot.Time)
	if err != nil {
		return
	}

	top := float64(headerHeight) + (float64(start)/60-float64(hours.start))*cellHeight
	height := float64(schedule.SlotLength) / 60 * cellHeight
	width := dayWidth - dayPaddingX*2

	fill := slotOpenColor
	switch {
	case opts.ViewerID != "" && v.Slot.HasStudent(opts.ViewerID):
		fill = slotMineColor
	case v.Booked:
		fill = slotBookedColor
	}

	dc.SetColor(slotShadowColor)
	dc.DrawRoundedRectangle(x+dayPaddingX+shadowOffset, top+2+shadowOffset, width, height-4, slotBorderRadius)
	dc.Fill()

	dc.SetColor(fill)
	dc.DrawRoundedRectangle(x+dayPaddingX, top+2, width, height-4, slotBorderRadius)
	dc.Fill()

	dc.SetColor(darken(fill, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x+dayPaddingX, top+2, width, height-4, slotBorderRadius)
	dc.Stroke()

	dc.SetColor(slotTextColor)
	dc.DrawString(v.Slot.Time, x+dayPaddingX+6, top+16)

	if opts.ShowNames && len(v.Bookings) > 0 && height > 34 {
		name := v.Bookings[0].StudentName
		if r := []rune(name); len(r) > 14 {
			name = string(r[:13]) + "."
		}
		dc.DrawString(name, x+dayPaddingX+6, top+30)
	}
}

func drawLegend(dc *gg.Context, x float64) {
	items := []struct {
		label string
		clr   color.Color
	}{
		{"Open", slotOpenColor},
		{"Booked", slotBookedColor},
		{"Yours", slotMineColor},
	}

	y := float64(imageHeight) - 90
	for _, item := range items {
		dc.SetColor(item.clr)
		dc.DrawRoundedRectangle(x, y, 18, 12, 3)
		dc.Fill()

		dc.SetColor(textColor)
		dc.DrawStringAnchored(item.label, x+26, y+6, 0, 0.5)
		y += 24
	}
}

func darken(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}
