package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/staff_availability/internal/model"
	"github.com/Freeeeeet/staff_availability/internal/repository/base"
	"go.uber.org/zap"
)

// StandingScheduleRepository читает постоянные назначения шаблонов
type StandingScheduleRepository struct {
	db     base.DBTX
	logger *zap.Logger
}

// NewStandingScheduleRepository создаёт новый репозиторий
func NewStandingScheduleRepository(db base.DBTX, logger *zap.Logger) *StandingScheduleRepository {
	return &StandingScheduleRepository{
		db:     db,
		logger: logger,
	}
}

// GetAllActive получает все активные назначения
func (r *StandingScheduleRepository) GetAllActive(ctx context.Context) ([]*model.StandingSchedule, error) {
	query := `
		SELECT id, employee_id, template_id,
		       monday, tuesday, wednesday, thursday, friday, saturday, sunday,
		       is_active, created_at, updated_at
		FROM standing_schedules
		WHERE is_active = true
		ORDER BY employee_id, id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get active standing schedules: %w", err)
	}
	defer rows.Close()

	var schedules []*model.StandingSchedule
	for rows.Next() {
		schedule := &model.StandingSchedule{}
		err := rows.Scan(
			&schedule.ID,
			&schedule.EmployeeID,
			&schedule.TemplateID,
			&schedule.Days.Monday,
			&schedule.Days.Tuesday,
			&schedule.Days.Wednesday,
			&schedule.Days.Thursday,
			&schedule.Days.Friday,
			&schedule.Days.Saturday,
			&schedule.Days.Sunday,
			&schedule.IsActive,
			&schedule.CreatedAt,
			&schedule.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan standing schedule: %w", err)
		}
		schedules = append(schedules, schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate standing schedules: %w", err)
	}

	r.logger.Debug("Loaded active standing schedules", zap.Int("count", len(schedules)))

	return schedules, nil
}
