package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/staff_availability/internal/model"
	"github.com/google/uuid"
)

var (
	// ErrScheduleApplicationFailed общая ошибка применения шаблона, оборачивает любую причину
	ErrScheduleApplicationFailed = errors.New("schedule application failed")

	ErrTemplateNotFound      = errors.New("schedule template not found")
	ErrEmployeeNotFound      = errors.New("employee not found")
	ErrInvalidTemplate       = errors.New("invalid schedule template")
	ErrApplicationInProgress = errors.New("schedule application already in progress for employee")
	ErrPersistence           = errors.New("persistence failure")
	ErrInvalidRequest        = model.ErrInvalidScheduleRequest
)

// ErrorKind вид ошибки применения шаблона
type ErrorKind string

const (
	KindInvalidRequest   ErrorKind = "invalid_request"
	KindTemplateNotFound ErrorKind = "template_not_found"
	KindInvalidTemplate  ErrorKind = "invalid_template"
	KindEmployeeNotFound ErrorKind = "employee_not_found"
	KindInProgress       ErrorKind = "in_progress"
	KindPersistence      ErrorKind = "persistence"
)

// Шаги применения, на которых может произойти ошибка
const (
	StepValidate       = "validate"
	StepLookupTemplate = "lookup_template"
	StepLock           = "lock"
	StepBeginTx        = "begin_transaction"
	StepResolve        = "resolve_availability"
	StepRegenerate     = "regenerate_slots"
	StepCommit         = "commit"
)

// ApplyError единственная ошибка, которую возвращает Apply.
// errors.Is работает и с ErrScheduleApplicationFailed, и с исходной причиной.
type ApplyError struct {
	RunID uuid.UUID
	Kind  ErrorKind
	Step  string
	Date  time.Time // нулевая, если ошибка не относится к конкретной дате
	Err   error
}

func (e *ApplyError) Error() string {
	if !e.Date.IsZero() {
		return fmt.Sprintf("%s on %s at %s: %v",
			ErrScheduleApplicationFailed, e.Date.Format(model.DateLayout), e.Step, e.Err)
	}
	return fmt.Sprintf("%s at %s: %v", ErrScheduleApplicationFailed, e.Step, e.Err)
}

func (e *ApplyError) Unwrap() []error {
	return []error{ErrScheduleApplicationFailed, e.Err}
}

// kindOf относит причину к одному из видов; всё неизвестное считается сбоем хранилища
func kindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidRequest
	case errors.Is(err, ErrTemplateNotFound):
		return KindTemplateNotFound
	case errors.Is(err, ErrInvalidTemplate):
		return KindInvalidTemplate
	case errors.Is(err, ErrEmployeeNotFound):
		return KindEmployeeNotFound
	case errors.Is(err, ErrApplicationInProgress):
		return KindInProgress
	default:
		return KindPersistence
	}
}

func newApplyError(runID uuid.UUID, step string, date time.Time, err error) *ApplyError {
	kind := kindOf(err)
	if kind == KindPersistence && !errors.Is(err, ErrPersistence) {
		err = fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return &ApplyError{
		RunID: runID,
		Kind:  kind,
		Step:  step,
		Date:  date,
		Err:   err,
	}
}

// KindOf возвращает вид ошибки применения или пустую строку для посторонних ошибок
func KindOf(err error) ErrorKind {
	var applyErr *ApplyError
	if errors.As(err, &applyErr) {
		return applyErr.Kind
	}
	return ""
}
