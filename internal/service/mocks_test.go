package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/staff_availability/internal/lock"
	"github.com/Freeeeeet/staff_availability/internal/model"
	"github.com/stretchr/testify/mock"
)

type mockTemplateFinder struct {
	mock.Mock
}

func (m *mockTemplateFinder) GetByID(ctx context.Context, id int64) (*model.HourTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.HourTemplate), args.Error(1)
}

type mockEmployeeFinder struct {
	mock.Mock
}

func (m *mockEmployeeFinder) GetByID(ctx context.Context, id int64) (*model.Employee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Employee), args.Error(1)
}

type mockAvailabilityStore struct {
	mock.Mock
}

func (m *mockAvailabilityStore) FindByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) (*model.Availability, error) {
	args := m.Called(ctx, employeeID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Availability), args.Error(1)
}

func (m *mockAvailabilityStore) Create(ctx context.Context, a *model.Availability) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAvailabilityStore) Update(ctx context.Context, a *model.Availability) error {
	return m.Called(ctx, a).Error(0)
}

type mockTimeSlotStore struct {
	mock.Mock
}

func (m *mockTimeSlotStore) GetByAvailabilityID(ctx context.Context, id int64) ([]*model.TimeSlot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TimeSlot), args.Error(1)
}

func (m *mockTimeSlotStore) CountReservedByAvailability(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTimeSlotStore) DeleteByAvailability(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTimeSlotStore) Create(ctx context.Context, slot *model.TimeSlot) error {
	return m.Called(ctx, slot).Error(0)
}

type mockLocker struct {
	mock.Mock
	released int
	extended int
	// extendErr возвращается из Extend начиная с вызова extendFailAt (считая с 1)
	extendErr    error
	extendFailAt int
}

func (m *mockLocker) Acquire(ctx context.Context, key string) (lock.Lease, error) {
	args := m.Called(ctx, key)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return &mockLease{locker: m}, nil
}

type mockLease struct {
	locker *mockLocker
}

func (l *mockLease) Extend(context.Context) error {
	l.locker.extended++
	if l.locker.extendErr != nil && l.locker.extended >= l.locker.extendFailAt {
		return l.locker.extendErr
	}
	return nil
}

func (l *mockLease) Release(context.Context) error {
	l.locker.released++
	return nil
}
