package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/staff_availability/internal/model"
	"github.com/Freeeeeet/staff_availability/internal/repository/base"
)

type AvailabilityRepository struct {
	db base.DBTX
}

func NewAvailabilityRepository(db base.DBTX) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// Create создаёт запись доступности
func (r *AvailabilityRepository) Create(ctx context.Context, availability *model.Availability) error {
	query := `
		INSERT INTO availabilities (employee_id, date, start_time, end_time)
		VALUES ($1, $2, $3::time, $4::time)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		availability.EmployeeID,
		availability.Date,
		availability.StartTime,
		availability.EndTime,
	).Scan(&availability.ID, &availability.CreatedAt, &availability.UpdatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create availability for employee %d on %s: %w",
				availability.EmployeeID, availability.DateString(), base.ErrDuplicate)
		}
		return fmt.Errorf("create availability: %w", err)
	}

	return nil
}

// FindByEmployeeAndDate ищет запись сотрудника на дату, nil если её нет
func (r *AvailabilityRepository) FindByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) (*model.Availability, error) {
	query := `
		SELECT id, employee_id, date, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), created_at, updated_at
		FROM availabilities
		WHERE employee_id = $1 AND date = $2
	`

	var availability model.Availability
	err := r.db.QueryRow(ctx, query, employeeID, date).Scan(
		&availability.ID,
		&availability.EmployeeID,
		&availability.Date,
		&availability.StartTime,
		&availability.EndTime,
		&availability.CreatedAt,
		&availability.UpdatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find availability: %w", err)
	}

	return &availability, nil
}

// Update сохраняет границы рабочего дня и отметку обновления
func (r *AvailabilityRepository) Update(ctx context.Context, availability *model.Availability) error {
	query := `
		UPDATE availabilities
		SET start_time = $1::time, end_time = $2::time, updated_at = now()
		WHERE id = $3
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		availability.StartTime,
		availability.EndTime,
		availability.ID,
	).Scan(&availability.UpdatedAt)

	if err != nil {
		if base.IsNotFound(err) {
			return fmt.Errorf("availability %d not found", availability.ID)
		}
		return fmt.Errorf("update availability: %w", err)
	}

	return nil
}
