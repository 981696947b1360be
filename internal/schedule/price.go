package schedule

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
)

// Total стоимость пакета из count уроков по ставке rate, округлённая до центов
func Total(count int, rate float64) float64 {
	return roundCents(float64(count) * rate)
}

// FormatAmount форматирует сумму с двумя знаками после точки
func FormatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// ParseRate разбирает ставку, введённую учителем
func ParseRate(input string) (float64, error) {
	rate, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil {
		return 0, invalid("rate", "please enter a valid rate")
	}
	if err := ValidateRate(rate); err != nil {
		return 0, err
	}
	return roundCents(rate), nil
}

// ValidateRate ставка должна быть положительным конечным числом
func ValidateRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return invalid("rate", "please enter a valid rate")
	}
	return nil
}

// Earnings сумма снимков ставок по записям
func Earnings(bookings []*model.Booking) float64 {
	var sum float64
	for _, b := range bookings {
		sum += b.Rate
	}
	return roundCents(sum)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
