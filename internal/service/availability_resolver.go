package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/staff_availability/internal/model"
	"github.com/Freeeeeet/staff_availability/internal/repository/base"
	"go.uber.org/zap"
)

// AvailabilityResolver находит или создаёт запись доступности на (сотрудник, дата)
type AvailabilityResolver struct {
	logger *zap.Logger
}

func NewAvailabilityResolver(logger *zap.Logger) *AvailabilityResolver {
	return &AvailabilityResolver{logger: logger}
}

// Resolve возвращает существующую запись без изменений или создаёт новую.
// created = true, если была вставка.
func (r *AvailabilityResolver) Resolve(
	ctx context.Context,
	stores Stores,
	employeeID int64,
	date time.Time,
	template *model.HourTemplate,
) (*model.Availability, bool, error) {
	existing, err := stores.Availabilities.FindByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if existing != nil {
		r.logger.Debug("Reusing availability",
			zap.Int64("availability_id", existing.ID),
			zap.String("date", date.Format(model.DateLayout)))
		return existing, false, nil
	}

	employee, err := stores.Employees.GetByID(ctx, employeeID)
	if err != nil {
		return nil, false, fmt.Errorf("%w: get employee: %w", ErrPersistence, err)
	}
	if employee == nil {
		return nil, false, fmt.Errorf("%w: id %d", ErrEmployeeNotFound, employeeID)
	}

	availability := &model.Availability{
		EmployeeID: employee.ID,
		Date:       date,
		StartTime:  template.StartTime,
		EndTime:    template.EndTime,
		Slots:      []*model.TimeSlot{},
	}

	if err := stores.Availabilities.Create(ctx, availability); err != nil {
		if errors.Is(err, base.ErrDuplicate) {
			// Запись на эту дату вставил параллельный запуск
			return nil, false, fmt.Errorf("%w: %w", ErrApplicationInProgress, err)
		}
		return nil, false, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	r.logger.Debug("Availability created",
		zap.Int64("availability_id", availability.ID),
		zap.Int64("employee_id", employee.ID),
		zap.String("date", date.Format(model.DateLayout)))

	return availability, true, nil
}
