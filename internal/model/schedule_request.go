package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout формат календарной даты (ISO 8601)
const DateLayout = "2006-01-02"

var ErrInvalidScheduleRequest = errors.New("invalid schedule request")

// WeekdayFlags семь независимых флагов дней недели
type WeekdayFlags struct {
	Monday    bool `json:"monday"`
	Tuesday   bool `json:"tuesday"`
	Wednesday bool `json:"wednesday"`
	Thursday  bool `json:"thursday"`
	Friday    bool `json:"friday"`
	Saturday  bool `json:"saturday"`
	Sunday    bool `json:"sunday"`
}

// ScheduleRequest запрос на применение шаблона к диапазону дат
type ScheduleRequest struct {
	EmployeeID int64        `json:"employee_id"`
	TemplateID int64        `json:"template_id"`
	StartDate  time.Time    `json:"start_date"`
	EndDate    time.Time    `json:"end_date"`
	Days       WeekdayFlags `json:"days"`
}

// NewScheduleRequest собирает запрос поле за полем с проверкой каждого значения
func NewScheduleRequest(employeeID, templateID int64, startDate, endDate string, days WeekdayFlags) (ScheduleRequest, error) {
	var problems []string

	if employeeID <= 0 {
		problems = append(problems, "employee id must be positive")
	}
	if templateID <= 0 {
		problems = append(problems, "template id must be positive")
	}

	start, err := ParseDate(startDate)
	if err != nil {
		problems = append(problems, "start date: "+err.Error())
	}
	end, err := ParseDate(endDate)
	if err != nil {
		problems = append(problems, "end date: "+err.Error())
	}

	if len(problems) > 0 {
		return ScheduleRequest{}, fmt.Errorf("%w: %s", ErrInvalidScheduleRequest, strings.Join(problems, "; "))
	}

	return ScheduleRequest{
		EmployeeID: employeeID,
		TemplateID: templateID,
		StartDate:  start,
		EndDate:    end,
		Days:       days,
	}, nil
}

// Validate проверяет запрос, собранный не через NewScheduleRequest
func (r ScheduleRequest) Validate() error {
	switch {
	case r.EmployeeID <= 0:
		return fmt.Errorf("%w: employee id must be positive", ErrInvalidScheduleRequest)
	case r.TemplateID <= 0:
		return fmt.Errorf("%w: template id must be positive", ErrInvalidScheduleRequest)
	case r.StartDate.IsZero():
		return fmt.Errorf("%w: start date is required", ErrInvalidScheduleRequest)
	case r.EndDate.IsZero():
		return fmt.Errorf("%w: end date is required", ErrInvalidScheduleRequest)
	}
	return nil
}

// ParseDate разбирает дату ISO и возвращает полночь UTC
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("date is required")
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

// ApplySummary результат применения шаблона
type ApplySummary struct {
	RunID             uuid.UUID       `json:"run_id"`
	Message           string          `json:"message"`
	AvailabilityCount int             `json:"created_availability_count"`
	SlotCount         int             `json:"created_slot_count"`
	Availabilities    []*Availability `json:"availabilities"`
	Slots             []*TimeSlot     `json:"slots"`
}
