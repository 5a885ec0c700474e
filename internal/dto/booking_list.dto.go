package dto

import "time"

type BookingListDTO struct {
	ID            uint      `json:"id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	CustomerName  string    `json:"customer_name"`
	ServiceName   string    `json:"service_name"`
	Notes         string    `json:"notes,omitempty"`
}
