package state

import "time"

// UserState текущий шаг диалога пользователя
type UserState string

const (
	StateNone UserState = "" // Нет активного диалога

	// Пошаговое применение шаблона (/schedule)
	StateApplyEmployee UserState = "apply_employee"
	StateApplyTemplate UserState = "apply_template"
	StateApplyPeriod   UserState = "apply_period"
	StateApplyDays     UserState = "apply_days"
)

// Draft введённые в диалоге значения запроса
type Draft struct {
	EmployeeID int64
	TemplateID int64
	StartDate  string
	EndDate    string
}

// UserData состояние диалога одного пользователя
type UserData struct {
	State     UserState
	Draft     Draft
	UpdatedAt time.Time
}
