package model

import "time"

// StandingSchedule постоянное назначение шаблона сотруднику.
// Фоновая задача регулярно применяет его на несколько недель вперёд.
type StandingSchedule struct {
	ID         int64        `json:"id"`
	EmployeeID int64        `json:"employee_id"`
	TemplateID int64        `json:"template_id"`
	Days       WeekdayFlags `json:"days"`
	IsActive   bool         `json:"is_active"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}
