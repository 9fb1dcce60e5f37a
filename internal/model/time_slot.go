package model

import "time"

// TimeSlot конкретный интервал для записи, принадлежит одной Availability.
// Пересоздаётся при каждом применении шаблона.
type TimeSlot struct {
	ID             int64     `json:"id"`
	AvailabilityID int64     `json:"availability_id"`
	HourBlockID    int64     `json:"hour_block_id"`
	Position       int       `json:"position"`
	StartTime      string    `json:"start_time"`
	EndTime        string    `json:"end_time"`
	ReservationID  *int64    `json:"reservation_id"` // заполняется внешней системой бронирования
	CreatedAt      time.Time `json:"created_at"`
}

// IsReserved проверяет, занят ли слот бронированием
func (s *TimeSlot) IsReserved() bool {
	return s.ReservationID != nil
}
