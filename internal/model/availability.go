package model

// AvailabilitySpec описывает регулярную доступность учителя,
// из которой генерируются часовые слоты
type AvailabilitySpec struct {
	StartDate  string `json:"start_date"`         // yyyy-mm-dd
	EndDate    string `json:"end_date,omitempty"` // пусто = один день
	StartTime  string `json:"start_time"`         // HH:MM
	EndTime    string `json:"end_time"`           // HH:MM
	DaysOfWeek []int  `json:"days_of_week"`       // 0 = Sunday, 6 = Saturday
}
