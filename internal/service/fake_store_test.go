package service

import (
	"context"
	"errors"
	"maps"
	"sort"
	"time"

	"github.com/Freeeeeet/staff_availability/internal/model"
)

var errInjected = errors.New("injected failure")

// fakeDB хранилище в памяти с транзакциями через снимок состояния
type fakeDB struct {
	employees      map[int64]*model.Employee
	templates      map[int64]*model.HourTemplate
	standing       []*model.StandingSchedule
	availabilities map[int64]model.Availability
	slots          map[int64]model.TimeSlot

	nextAvailabilityID int64
	nextSlotID         int64

	// failOp/failAt: вернуть errInjected на failAt-м вызове операции failOp
	failOp  string
	failAt  int
	failErr error // по умолчанию errInjected
	calls   map[string]int

	// onHit вызывается после подсчёта каждого обращения, до проверки ctx
	onHit func(op string, n int)

	writes int
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		employees:      map[int64]*model.Employee{},
		templates:      map[int64]*model.HourTemplate{},
		availabilities: map[int64]model.Availability{},
		slots:          map[int64]model.TimeSlot{},
		calls:          map[string]int{},
	}
}

// hit считает обращение и возвращает ошибку ctx или заданный сбой
func (db *fakeDB) hit(ctx context.Context, op string) error {
	db.calls[op]++
	if db.onHit != nil {
		db.onHit(op, db.calls[op])
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if db.failOp == op && db.calls[op] == db.failAt {
		if db.failErr != nil {
			return db.failErr
		}
		return errInjected
	}
	return nil
}

func (db *fakeDB) WithinTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
	availabilities := maps.Clone(db.availabilities)
	slots := maps.Clone(db.slots)
	nextAvailabilityID, nextSlotID, writes := db.nextAvailabilityID, db.nextSlotID, db.writes

	err := fn(ctx, Stores{
		Employees:      fakeEmployees{db},
		Availabilities: fakeAvailabilities{db},
		TimeSlots:      fakeSlots{db},
	})
	if err != nil {
		db.availabilities, db.slots = availabilities, slots
		db.nextAvailabilityID, db.nextSlotID, db.writes = nextAvailabilityID, nextSlotID, writes
		return err
	}
	return nil
}

func (db *fakeDB) GetAllActive(ctx context.Context) ([]*model.StandingSchedule, error) {
	if err := db.hit(ctx, "standing.all"); err != nil {
		return nil, err
	}
	return db.standing, nil
}

// availabilityDates даты сохранённых записей сотрудника по возрастанию
func (db *fakeDB) availabilityDates(employeeID int64) []time.Time {
	var dates []time.Time
	for _, a := range db.availabilities {
		if a.EmployeeID == employeeID {
			dates = append(dates, a.Date)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func (db *fakeDB) slotsOf(availabilityID int64) []model.TimeSlot {
	var out []model.TimeSlot
	for _, s := range db.slots {
		if s.AvailabilityID == availabilityID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

type fakeTemplates struct{ db *fakeDB }

func (f fakeTemplates) GetByID(ctx context.Context, id int64) (*model.HourTemplate, error) {
	if err := f.db.hit(ctx, "template.get"); err != nil {
		return nil, err
	}
	return f.db.templates[id], nil
}

type fakeEmployees struct{ db *fakeDB }

func (f fakeEmployees) GetByID(ctx context.Context, id int64) (*model.Employee, error) {
	if err := f.db.hit(ctx, "employee.get"); err != nil {
		return nil, err
	}
	return f.db.employees[id], nil
}

type fakeAvailabilities struct{ db *fakeDB }

func (f fakeAvailabilities) FindByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) (*model.Availability, error) {
	if err := f.db.hit(ctx, "availability.find"); err != nil {
		return nil, err
	}
	for _, a := range f.db.availabilities {
		if a.EmployeeID == employeeID && a.Date.Equal(date) {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (f fakeAvailabilities) Create(ctx context.Context, a *model.Availability) error {
	if err := f.db.hit(ctx, "availability.create"); err != nil {
		return err
	}
	f.db.nextAvailabilityID++
	f.db.writes++
	a.ID = f.db.nextAvailabilityID
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt

	stored := *a
	stored.Slots = nil
	f.db.availabilities[a.ID] = stored
	return nil
}

func (f fakeAvailabilities) Update(ctx context.Context, a *model.Availability) error {
	if err := f.db.hit(ctx, "availability.update"); err != nil {
		return err
	}
	if _, ok := f.db.availabilities[a.ID]; !ok {
		return errors.New("availability not found")
	}
	f.db.writes++
	a.UpdatedAt = time.Now()

	stored := *a
	stored.Slots = nil
	f.db.availabilities[a.ID] = stored
	return nil
}

type fakeSlots struct{ db *fakeDB }

func (f fakeSlots) GetByAvailabilityID(ctx context.Context, availabilityID int64) ([]*model.TimeSlot, error) {
	if err := f.db.hit(ctx, "slot.list"); err != nil {
		return nil, err
	}
	var out []*model.TimeSlot
	for _, s := range f.db.slotsOf(availabilityID) {
		slot := s
		out = append(out, &slot)
	}
	return out, nil
}

func (f fakeSlots) CountReservedByAvailability(ctx context.Context, availabilityID int64) (int64, error) {
	if err := f.db.hit(ctx, "slot.count_reserved"); err != nil {
		return 0, err
	}
	var n int64
	for _, s := range f.db.slots {
		if s.AvailabilityID == availabilityID && s.ReservationID != nil {
			n++
		}
	}
	return n, nil
}

func (f fakeSlots) DeleteByAvailability(ctx context.Context, availabilityID int64) (int64, error) {
	if err := f.db.hit(ctx, "slot.delete"); err != nil {
		return 0, err
	}
	var n int64
	for id, s := range f.db.slots {
		if s.AvailabilityID == availabilityID {
			delete(f.db.slots, id)
			n++
		}
	}
	f.db.writes++
	return n, nil
}

func (f fakeSlots) Create(ctx context.Context, slot *model.TimeSlot) error {
	if err := f.db.hit(ctx, "slot.create"); err != nil {
		return err
	}
	f.db.nextSlotID++
	f.db.writes++
	slot.ID = f.db.nextSlotID
	slot.CreatedAt = time.Now()
	f.db.slots[slot.ID] = *slot
	return nil
}
