package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Freeeeeet/staff_availability/internal/lock"
	"github.com/Freeeeeet/staff_availability/internal/model"
	"github.com/Freeeeeet/staff_availability/internal/repository/base"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func date(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := model.ParseDate(value)
	require.NoError(t, err)
	return d
}

// seededDB сотрудник 7 и шаблон 3 с двумя получасовыми блоками
func seededDB() *fakeDB {
	db := newFakeDB()
	db.employees[7] = &model.Employee{ID: 7, FirstName: "Anna", LastName: "Petrova", IsActive: true}
	db.templates[3] = &model.HourTemplate{
		ID:        3,
		Name:      "morning",
		StartTime: "09:00",
		EndTime:   "10:00",
		Blocks: []model.HourBlock{
			{ID: 31, TemplateID: 3, Position: 0, StartTime: "09:00", EndTime: "09:30"},
			{ID: 32, TemplateID: 3, Position: 1, StartTime: "09:30", EndTime: "10:00"},
		},
	}
	return db
}

func newTestService(db *fakeDB, locker Locker) *ScheduleService {
	return NewScheduleService(fakeTemplates{db}, db, db, locker, zap.NewNop())
}

func mondaysRequest(t *testing.T) model.ScheduleRequest {
	return model.ScheduleRequest{
		EmployeeID: 7,
		TemplateID: 3,
		StartDate:  date(t, "2024-01-01"),
		EndDate:    date(t, "2024-01-14"),
		Days:       model.WeekdayFlags{Monday: true},
	}
}

func TestApply_MondaysOverTwoWeeks(t *testing.T) {
	db := seededDB()
	svc := newTestService(db, nil)

	summary, err := svc.Apply(context.Background(), mondaysRequest(t))
	require.NoError(t, err)

	assert.Equal(t, SummaryMessage, summary.Message)
	assert.Equal(t, 2, summary.AvailabilityCount)
	assert.Equal(t, 4, summary.SlotCount)
	require.Len(t, summary.Availabilities, 2)
	require.Len(t, summary.Slots, 4)

	assert.Equal(t, "2024-01-01", summary.Availabilities[0].DateString())
	assert.Equal(t, "2024-01-08", summary.Availabilities[1].DateString())

	for _, a := range summary.Availabilities {
		assert.Equal(t, int64(7), a.EmployeeID)
		assert.Equal(t, "09:00", a.StartTime)
		assert.Equal(t, "10:00", a.EndTime)
		require.Len(t, a.Slots, 2)
		assert.Equal(t, "09:00", a.Slots[0].StartTime)
		assert.Equal(t, "09:30", a.Slots[0].EndTime)
		assert.Equal(t, "09:30", a.Slots[1].StartTime)
		assert.Equal(t, "10:00", a.Slots[1].EndTime)
		assert.Equal(t, int64(31), a.Slots[0].HourBlockID)
		assert.Equal(t, int64(32), a.Slots[1].HourBlockID)
	}

	assert.Equal(t, []time.Time{date(t, "2024-01-01"), date(t, "2024-01-08")}, db.availabilityDates(7))
	assert.Len(t, db.slots, 4)
	assert.NotEqual(t, uuid.Nil, summary.RunID)
}

func TestApply_StartAfterEndIsEmpty(t *testing.T) {
	db := seededDB()
	svc := newTestService(db, nil)

	req := mondaysRequest(t)
	req.StartDate, req.EndDate = req.EndDate, req.StartDate

	summary, err := svc.Apply(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.AvailabilityCount)
	assert.Equal(t, 0, summary.SlotCount)
	assert.Empty(t, summary.Availabilities)
	assert.Empty(t, summary.Slots)
	assert.Zero(t, db.writes)
}

func TestApply_NoDaysSelectedIsEmpty(t *testing.T) {
	db := seededDB()
	svc := newTestService(db, nil)

	req := mondaysRequest(t)
	req.Days = model.WeekdayFlags{}

	summary, err := svc.Apply(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.AvailabilityCount)
	assert.Zero(t, db.writes)
}

func TestApply_IsIdempotentPerDate(t *testing.T) {
	db := seededDB()
	svc := newTestService(db, nil)
	ctx := context.Background()

	first, err := svc.Apply(ctx, mondaysRequest(t))
	require.NoError(t, err)
	second, err := svc.Apply(ctx, mondaysRequest(t))
	require.NoError(t, err)

	assert.Equal(t, first.AvailabilityCount, second.AvailabilityCount)
	assert.Equal(t, first.SlotCount, second.SlotCount)

	for i := range first.Availabilities {
		assert.Equal(t, first.Availabilities[i].ID, second.Availabilities[i].ID)
		assert.Equal(t, first.Availabilities[i].Date, second.Availabilities[i].Date)
	}

	firstIDs := map[int64]bool{}
	for _, s := range first.Slots {
		firstIDs[s.ID] = true
	}
	for _, s := range second.Slots {
		assert.False(t, firstIDs[s.ID], "slot %d survived regeneration", s.ID)
	}

	assert.Len(t, db.availabilities, 2)
	assert.Len(t, db.slots, 4)
}

func TestApply_ReplacesPreExistingSlots(t *testing.T) {
	db := seededDB()
	db.templates[3].Blocks = []model.HourBlock{
		{ID: 31, TemplateID: 3, Position: 0, StartTime: "09:00", EndTime: "09:20"},
		{ID: 32, TemplateID: 3, Position: 1, StartTime: "09:20", EndTime: "09:40"},
		{ID: 33, TemplateID: 3, Position: 2, StartTime: "09:40", EndTime: "10:00"},
	}

	existing := model.Availability{ID: 50, EmployeeID: 7, Date: date(t, "2024-01-01"), StartTime: "08:00", EndTime: "18:00"}
	db.availabilities[50] = existing
	db.nextAvailabilityID = 50
	for i := int64(1); i <= 5; i++ {
		db.slots[i] = model.TimeSlot{ID: i, AvailabilityID: 50, Position: int(i - 1)}
	}
	db.nextSlotID = 5

	svc := newTestService(db, nil)
	req := mondaysRequest(t)
	req.EndDate = req.StartDate

	summary, err := svc.Apply(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, summary.Availabilities, 1)
	assert.Equal(t, int64(50), summary.Availabilities[0].ID)
	assert.Equal(t, "09:00", summary.Availabilities[0].StartTime)
	assert.Equal(t, "10:00", summary.Availabilities[0].EndTime)

	slots := db.slotsOf(50)
	require.Len(t, slots, 3)
	for _, s := range slots {
		assert.Greater(t, s.ID, int64(5))
	}

	stored := db.availabilities[50]
	assert.Equal(t, "09:00", stored.StartTime)
	assert.Equal(t, "10:00", stored.EndTime)
}

func TestApply_TemplateNotFoundWritesNothing(t *testing.T) {
	db := seededDB()
	svc := newTestService(db, nil)

	req := mondaysRequest(t)
	req.TemplateID = 999

	summary, err := svc.Apply(context.Background(), req)
	require.Error(t, err)
	assert.Nil(t, summary)

	assert.ErrorIs(t, err, ErrScheduleApplicationFailed)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
	assert.Equal(t, KindTemplateNotFound, KindOf(err))

	var applyErr *ApplyError
	require.ErrorAs(t, err, &applyErr)
	assert.Equal(t, StepLookupTemplate, applyErr.Step)
	assert.True(t, applyErr.Date.IsZero())

	assert.Zero(t, db.writes)
	assert.Empty(t, db.availabilities)
}

func TestApply_TemplateNotFoundEvenForEmptyRange(t *testing.T) {
	db := seededDB()
	svc := newTestService(db, nil)

	req := mondaysRequest(t)
	req.TemplateID = 999
	req.StartDate, req.EndDate = req.EndDate, req.StartDate

	_, err := svc.Apply(context.Background(), req)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestApply_InvalidTemplate(t *testing.T) {
	db := seededDB()
	db.templates[3].Blocks[0].EndTime = "09:07"
	svc := newTestService(db, nil)

	_, err := svc.Apply(context.Background(), mondaysRequest(t))
	assert.ErrorIs(t, err, ErrInvalidTemplate)
	assert.Equal(t, KindInvalidTemplate, KindOf(err))
	assert.Zero(t, db.writes)
}

func TestApply_EmployeeNotFound(t *testing.T) {
	db := seededDB()
	svc := newTestService(db, nil)

	req := mondaysRequest(t)
	req.EmployeeID = 8

	_, err := svc.Apply(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
	assert.ErrorIs(t, err, ErrScheduleApplicationFailed)
	assert.Equal(t, KindEmployeeNotFound, KindOf(err))

	var applyErr *ApplyError
	require.ErrorAs(t, err, &applyErr)
	assert.Equal(t, StepResolve, applyErr.Step)
	assert.Equal(t, date(t, "2024-01-01"), applyErr.Date)
	assert.Empty(t, db.availabilities)
}

func TestApply_InvalidRequest(t *testing.T) {
	db := seededDB()
	svc := newTestService(db, nil)

	req := mondaysRequest(t)
	req.EmployeeID = 0

	_, err := svc.Apply(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Equal(t, KindInvalidRequest, KindOf(err))
	assert.Zero(t, db.calls["template.get"])
}

func TestApply_FailureKeepsEarlierDates(t *testing.T) {
	db := seededDB()
	// Третий слот принадлежит второй дате
	db.failOp = "slot.create"
	db.failAt = 3
	svc := newTestService(db, nil)

	summary, err := svc.Apply(context.Background(), mondaysRequest(t))
	require.Error(t, err)
	assert.Nil(t, summary)

	assert.ErrorIs(t, err, ErrScheduleApplicationFailed)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, errInjected)
	assert.Equal(t, KindPersistence, KindOf(err))

	var applyErr *ApplyError
	require.ErrorAs(t, err, &applyErr)
	assert.Equal(t, StepRegenerate, applyErr.Step)
	assert.Equal(t, date(t, "2024-01-08"), applyErr.Date)

	// Первая дата сохранена целиком, вторая откатана
	assert.Equal(t, []time.Time{date(t, "2024-01-01")}, db.availabilityDates(7))
	assert.Len(t, db.slots, 2)
}

func TestApply_CancelledContextStopsAtCurrentDate(t *testing.T) {
	db := seededDB()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Отмена приходит посреди второй даты, на её первом слоте
	db.onHit = func(op string, n int) {
		if op == "slot.create" && n == 3 {
			cancel()
		}
	}
	svc := newTestService(db, nil)

	req := mondaysRequest(t)
	req.EndDate = date(t, "2024-01-21")

	summary, err := svc.Apply(ctx, req)
	require.Error(t, err)
	assert.Nil(t, summary)

	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, KindPersistence, KindOf(err))

	var applyErr *ApplyError
	require.ErrorAs(t, err, &applyErr)
	assert.Equal(t, StepRegenerate, applyErr.Step)
	assert.Equal(t, date(t, "2024-01-08"), applyErr.Date)

	assert.Equal(t, []time.Time{date(t, "2024-01-01")}, db.availabilityDates(7))
	assert.Len(t, db.slots, 2)
	// 2024-01-15 не начиналась
	assert.Equal(t, 2, db.calls["availability.find"])
}

func TestApply_LostLockStopsBeforeNextDate(t *testing.T) {
	db := seededDB()
	locker := &mockLocker{extendErr: fmt.Errorf("%w: %s", lock.ErrLockLost, lock.EmployeeKey(7)), extendFailAt: 2}
	locker.On("Acquire", mock.Anything, lock.EmployeeKey(7)).Return(nil)
	svc := newTestService(db, locker)

	_, err := svc.Apply(context.Background(), mondaysRequest(t))
	require.Error(t, err)

	assert.ErrorIs(t, err, lock.ErrLockLost)
	assert.ErrorIs(t, err, ErrApplicationInProgress)
	assert.Equal(t, KindInProgress, KindOf(err))

	var applyErr *ApplyError
	require.ErrorAs(t, err, &applyErr)
	assert.Equal(t, StepLock, applyErr.Step)
	assert.Equal(t, date(t, "2024-01-08"), applyErr.Date)

	assert.Equal(t, []time.Time{date(t, "2024-01-01")}, db.availabilityDates(7))
	assert.Equal(t, 1, locker.released)
}

func TestApply_LookupFailureIsPersistence(t *testing.T) {
	db := seededDB()
	db.failOp = "availability.find"
	db.failAt = 1
	svc := newTestService(db, nil)

	_, err := svc.Apply(context.Background(), mondaysRequest(t))
	assert.ErrorIs(t, err, ErrPersistence)

	var applyErr *ApplyError
	require.ErrorAs(t, err, &applyErr)
	assert.Equal(t, StepResolve, applyErr.Step)
	assert.Empty(t, db.availabilities)
}

func TestApply_LockedEmployee(t *testing.T) {
	db := seededDB()
	locker := &mockLocker{}
	locker.On("Acquire", mock.Anything, lock.EmployeeKey(7)).Return(lock.ErrLocked)
	svc := newTestService(db, locker)

	_, err := svc.Apply(context.Background(), mondaysRequest(t))
	assert.ErrorIs(t, err, ErrApplicationInProgress)
	assert.ErrorIs(t, err, lock.ErrLocked)
	assert.Equal(t, KindInProgress, KindOf(err))
	assert.Zero(t, db.writes)
	locker.AssertExpectations(t)
}

func TestApply_ReleasesLock(t *testing.T) {
	db := seededDB()
	locker := &mockLocker{}
	locker.On("Acquire", mock.Anything, lock.EmployeeKey(7)).Return(nil)
	svc := newTestService(db, locker)

	_, err := svc.Apply(context.Background(), mondaysRequest(t))
	require.NoError(t, err)
	assert.Equal(t, 1, locker.released)
	assert.Equal(t, 2, locker.extended)

	db.failOp = "slot.create"
	db.failAt = db.calls["slot.create"] + 1

	_, err = svc.Apply(context.Background(), mondaysRequest(t))
	require.Error(t, err)
	assert.Equal(t, 2, locker.released)
}

func TestApply_SeveralWeekdaysInOrder(t *testing.T) {
	db := seededDB()
	svc := newTestService(db, nil)

	req := mondaysRequest(t)
	req.StartDate = date(t, "2024-01-03")
	req.EndDate = date(t, "2024-01-12")
	req.Days = model.WeekdayFlags{Monday: true, Wednesday: true, Friday: true}

	summary, err := svc.Apply(context.Background(), req)
	require.NoError(t, err)

	var got []string
	for _, a := range summary.Availabilities {
		got = append(got, a.DateString())
	}
	assert.Equal(t, []string{"2024-01-03", "2024-01-05", "2024-01-08", "2024-01-10", "2024-01-12"}, got)
	assert.Equal(t, 10, summary.SlotCount)
}

func TestApplyStandingSchedules(t *testing.T) {
	db := seededDB()
	db.employees[9] = &model.Employee{ID: 9, FirstName: "Ivan", LastName: "Sidorov", IsActive: true}
	db.standing = []*model.StandingSchedule{
		{ID: 1, EmployeeID: 7, TemplateID: 404, Days: model.WeekdayFlags{Monday: true}, IsActive: true},
		{ID: 2, EmployeeID: 9, TemplateID: 3, Days: model.WeekdayFlags{Tuesday: true, Thursday: true}, IsActive: true},
	}
	svc := newTestService(db, nil)

	// Понедельник 2024-01-01 10:15 по Москве
	from := time.Date(2024, 1, 1, 10, 15, 0, 0, time.FixedZone("MSK", 3*60*60))

	result, err := svc.ApplyStandingSchedules(context.Background(), from, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Schedules)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 4, result.Availabilities)
	assert.Equal(t, 8, result.Slots)

	assert.Equal(t, []time.Time{
		date(t, "2024-01-02"), date(t, "2024-01-04"), date(t, "2024-01-09"), date(t, "2024-01-11"),
	}, db.availabilityDates(9))
	assert.Empty(t, db.availabilityDates(7))
}

func TestApplyStandingSchedules_KeepsExistingDates(t *testing.T) {
	db := seededDB()
	db.employees[9] = &model.Employee{ID: 9, FirstName: "Ivan", LastName: "Sidorov", IsActive: true}
	db.standing = []*model.StandingSchedule{
		{ID: 2, EmployeeID: 9, TemplateID: 3, Days: model.WeekdayFlags{Tuesday: true, Thursday: true}, IsActive: true},
	}
	svc := newTestService(db, nil)
	ctx := context.Background()

	first, err := svc.ApplyStandingSchedules(ctx, date(t, "2024-01-01"), 4)
	require.NoError(t, err)
	assert.Equal(t, 8, first.Availabilities)
	require.Len(t, db.slots, 16)

	var bookedID int64
	for id, slot := range db.slots {
		a := db.availabilities[slot.AvailabilityID]
		if a.Date.Equal(date(t, "2024-01-02")) && slot.Position == 0 {
			reservation := int64(501)
			slot.ReservationID = &reservation
			db.slots[id] = slot
			bookedID = id
		}
	}
	require.NotZero(t, bookedID)

	// Следующий запуск сдвигает окно на день и добавляет одну неделю
	second, err := svc.ApplyStandingSchedules(ctx, date(t, "2024-01-02"), 5)
	require.NoError(t, err)
	assert.Zero(t, second.Failed)
	assert.Equal(t, 2, second.Availabilities)
	assert.Equal(t, 4, second.Slots)

	booked, ok := db.slots[bookedID]
	require.True(t, ok)
	require.NotNil(t, booked.ReservationID)
	assert.Equal(t, int64(501), *booked.ReservationID)
	assert.Len(t, db.slots, 20)

	assert.Equal(t, []time.Time{
		date(t, "2024-01-02"), date(t, "2024-01-04"), date(t, "2024-01-09"), date(t, "2024-01-11"),
		date(t, "2024-01-16"), date(t, "2024-01-18"), date(t, "2024-01-23"), date(t, "2024-01-25"),
		date(t, "2024-01-30"), date(t, "2024-02-01"),
	}, db.availabilityDates(9))

	// Явное применение по-прежнему пересоздаёт слоты даты
	_, err = svc.Apply(ctx, model.ScheduleRequest{
		EmployeeID: 9,
		TemplateID: 3,
		StartDate:  date(t, "2024-01-02"),
		EndDate:    date(t, "2024-01-02"),
		Days:       model.WeekdayFlags{Tuesday: true},
	})
	require.NoError(t, err)
	_, ok = db.slots[bookedID]
	assert.False(t, ok)
	assert.Len(t, db.slots, 20)
}

func TestApplyStandingSchedules_ZeroWeeks(t *testing.T) {
	db := seededDB()
	db.standing = []*model.StandingSchedule{{ID: 1, EmployeeID: 7, TemplateID: 3, Days: model.WeekdayFlags{Monday: true}}}
	svc := newTestService(db, nil)

	result, err := svc.ApplyStandingSchedules(context.Background(), time.Now(), 0)
	require.NoError(t, err)
	assert.Zero(t, result.Schedules)
	assert.Zero(t, db.calls["standing.all"])
}

func TestApplyStandingSchedules_LoadFailure(t *testing.T) {
	db := seededDB()
	db.failOp = "standing.all"
	db.failAt = 1
	svc := newTestService(db, nil)

	_, err := svc.ApplyStandingSchedules(context.Background(), time.Now(), 1)
	assert.True(t, errors.Is(err, errInjected))
}

func TestApply_ConcurrentInsertIsInProgress(t *testing.T) {
	db := seededDB()
	db.failOp = "availability.create"
	db.failAt = 1
	db.failErr = fmt.Errorf("create availability: %w", base.ErrDuplicate)
	svc := newTestService(db, nil)

	_, err := svc.Apply(context.Background(), mondaysRequest(t))
	assert.ErrorIs(t, err, ErrApplicationInProgress)
	assert.Equal(t, KindInProgress, KindOf(err))
	assert.Empty(t, db.availabilities)
}

func TestDayAvailability(t *testing.T) {
	db := seededDB()
	svc := newTestService(db, nil)
	ctx := context.Background()

	_, err := svc.Apply(ctx, mondaysRequest(t))
	require.NoError(t, err)

	// Время суток и часовой пояс не влияют на выбор даты
	got, err := svc.DayAvailability(ctx, 7, time.Date(2024, 1, 8, 15, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2024-01-08", got.DateString())
	require.Len(t, got.Slots, 2)
	assert.Equal(t, 0, got.Slots[0].Position)
	assert.Equal(t, 1, got.Slots[1].Position)

	missing, err := svc.DayAvailability(ctx, 7, date(t, "2024-01-09"))
	require.NoError(t, err)
	assert.Nil(t, missing)

	db.failOp = "slot.list"
	db.failAt = db.calls["slot.list"] + 1
	_, err = svc.DayAvailability(ctx, 7, date(t, "2024-01-01"))
	assert.ErrorIs(t, err, ErrPersistence)
}
