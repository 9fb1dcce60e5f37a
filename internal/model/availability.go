package model

import "time"

// Availability рабочее окно сотрудника на конкретную дату.
// На пару (сотрудник, дата) существует не больше одной записи.
type Availability struct {
	ID         int64       `json:"id"`
	EmployeeID int64       `json:"employee_id"`
	Date       time.Time   `json:"date"` // полночь UTC, время не используется
	StartTime  string      `json:"start_time"`
	EndTime    string      `json:"end_time"`
	Slots      []*TimeSlot `json:"slots"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// DateString возвращает дату в формате ISO
func (a *Availability) DateString() string {
	return a.Date.Format(DateLayout)
}
