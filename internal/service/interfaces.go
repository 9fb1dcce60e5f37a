package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/staff_availability/internal/lock"
	"github.com/Freeeeeet/staff_availability/internal/model"
)

// EmployeeFinder возвращает nil, nil если сотрудника нет
type EmployeeFinder interface {
	GetByID(ctx context.Context, id int64) (*model.Employee, error)
}

// TemplateFinder возвращает nil, nil если шаблона нет
type TemplateFinder interface {
	GetByID(ctx context.Context, id int64) (*model.HourTemplate, error)
}

type AvailabilityStore interface {
	FindByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) (*model.Availability, error)
	Create(ctx context.Context, availability *model.Availability) error
	Update(ctx context.Context, availability *model.Availability) error
}

type TimeSlotStore interface {
	GetByAvailabilityID(ctx context.Context, availabilityID int64) ([]*model.TimeSlot, error)
	CountReservedByAvailability(ctx context.Context, availabilityID int64) (int64, error)
	DeleteByAvailability(ctx context.Context, availabilityID int64) (int64, error)
	Create(ctx context.Context, slot *model.TimeSlot) error
}

type StandingScheduleFinder interface {
	GetAllActive(ctx context.Context) ([]*model.StandingSchedule, error)
}

// Stores хранилища, привязанные к одной транзакции
type Stores struct {
	Employees      EmployeeFinder
	Availabilities AvailabilityStore
	TimeSlots      TimeSlotStore
}

// UnitOfWork выполняет fn в одной транзакции; ошибка fn откатывает все изменения
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}

// Locker сериализует применение расписаний одного сотрудника между процессами
type Locker interface {
	Acquire(ctx context.Context, key string) (lock.Lease, error)
}

type noopLocker struct{}

func (noopLocker) Acquire(context.Context, string) (lock.Lease, error) {
	return noopLease{}, nil
}

type noopLease struct{}

func (noopLease) Extend(context.Context) error  { return nil }
func (noopLease) Release(context.Context) error { return nil }
