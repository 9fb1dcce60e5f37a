package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/staff_availability/internal/model"
	"github.com/Freeeeeet/staff_availability/internal/repository/base"
)

type EmployeeRepository struct {
	db base.DBTX
}

func NewEmployeeRepository(db base.DBTX) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// GetByID получает сотрудника по ID
func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*model.Employee, error) {
	query := `
		SELECT id, first_name, last_name, branch_id, is_active, created_at
		FROM employees
		WHERE id = $1
	`

	var employee model.Employee
	err := r.db.QueryRow(ctx, query, id).Scan(
		&employee.ID,
		&employee.FirstName,
		&employee.LastName,
		&employee.BranchID,
		&employee.IsActive,
		&employee.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil // Сотрудник не найден
		}
		return nil, fmt.Errorf("get employee by id: %w", err)
	}

	return &employee, nil
}
