package models

import "time"

// BarberAvailability is one row of a barber's recurring weekly template.
// Several rows per weekday are allowed (split shifts).
type BarberAvailability struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	BarberID uint `gorm:"index:idx_availability_barber_day" json:"barber_id"`

	DayOfWeek int `gorm:"index:idx_availability_barber_day" json:"day_of_week"`

	StartTime   string `gorm:"size:5;not null" json:"start_time"`
	EndTime     string `gorm:"size:5;not null" json:"end_time"`
	IsAvailable bool   `gorm:"default:true" json:"is_available"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BarberBreak removes a window from the computed open slots.
// BreakDate set: one-off for that date. DayOfWeek set: every such weekday.
// Neither set: every day.
type BarberBreak struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	BarberID uint `gorm:"index" json:"barber_id"`

	BreakDate *time.Time `gorm:"type:date" json:"break_date,omitempty"`
	DayOfWeek *int       `json:"day_of_week,omitempty"`

	StartTime string `gorm:"size:5;not null" json:"start_time"`
	EndTime   string `gorm:"size:5;not null" json:"end_time"`
	Label     string `gorm:"size:100" json:"label"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
