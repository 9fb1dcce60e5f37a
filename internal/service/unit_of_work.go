package service

import (
	"context"

	"github.com/Freeeeeet/staff_availability/internal/repository"
	"github.com/Freeeeeet/staff_availability/internal/repository/base"
)

type pgUnitOfWork struct {
	base *base.Repository
}

// NewUnitOfWork создаёт UnitOfWork поверх транзакций PostgreSQL
func NewUnitOfWork(b *base.Repository) UnitOfWork {
	return &pgUnitOfWork{base: b}
}

func (u *pgUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
	return u.base.WithTx(ctx, func(q base.DBTX) error {
		return fn(ctx, Stores{
			Employees:      repository.NewEmployeeRepository(q),
			Availabilities: repository.NewAvailabilityRepository(q),
			TimeSlots:      repository.NewTimeSlotRepository(q),
		})
	})
}
