package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/staff_availability/internal/lock"
	"github.com/Freeeeeet/staff_availability/internal/metrics"
	"github.com/Freeeeeet/staff_availability/internal/model"
	"github.com/Freeeeeet/staff_availability/internal/schedule"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SummaryMessage сообщение об успешном применении шаблона
const SummaryMessage = "Schedule applied successfully"

// ScheduleService применяет шаблоны рабочего дня к диапазонам дат
type ScheduleService struct {
	templates   *TemplateLookup
	resolver    *AvailabilityResolver
	regenerator *SlotRegenerator
	uow         UnitOfWork
	standing    StandingScheduleFinder
	locker      Locker
	logger      *zap.Logger
}

// NewScheduleService создаёт сервис. locker может быть nil: тогда применения не сериализуются.
func NewScheduleService(
	templates TemplateFinder,
	uow UnitOfWork,
	standing StandingScheduleFinder,
	locker Locker,
	logger *zap.Logger,
) *ScheduleService {
	if locker == nil {
		locker = noopLocker{}
	}

	return &ScheduleService{
		templates:   NewTemplateLookup(templates, logger),
		resolver:    NewAvailabilityResolver(logger),
		regenerator: NewSlotRegenerator(logger),
		uow:         uow,
		standing:    standing,
		locker:      locker,
		logger:      logger,
	}
}

// applyMode что делать с датами, у которых запись доступности уже есть
type applyMode int

const (
	// modeRegenerate пересоздаёт слоты каждой даты по шаблону
	modeRegenerate applyMode = iota
	// modeFillMissing не трогает существующие даты, создаёт только недостающие
	modeFillMissing
)

// Apply раскладывает шаблон по датам запроса и приводит доступность сотрудника к шаблону.
//
// Каждая дата обрабатывается в своей транзакции. Ошибка, в том числе отмена ctx,
// останавливает обработку: уже обработанные даты остаются сохранены, текущая
// откатывается, следующие не трогаются. Возвращаемая ошибка всегда *ApplyError.
func (s *ScheduleService) Apply(ctx context.Context, req model.ScheduleRequest) (*model.ApplySummary, error) {
	return s.run(ctx, req, modeRegenerate)
}

func (s *ScheduleService) run(ctx context.Context, req model.ScheduleRequest, mode applyMode) (*model.ApplySummary, error) {
	started := time.Now()
	runID := uuid.New()

	logger := s.logger.With(
		zap.String("run_id", runID.String()),
		zap.Int64("employee_id", req.EmployeeID),
		zap.Int64("template_id", req.TemplateID),
	)

	logger.Info("Applying schedule",
		zap.String("start_date", req.StartDate.Format(model.DateLayout)),
		zap.String("end_date", req.EndDate.Format(model.DateLayout)),
		zap.Bool("fill_missing_only", mode == modeFillMissing),
	)

	summary, err := s.apply(ctx, runID, req, mode, logger)
	if err != nil {
		metrics.ObserveApplication("failed", started)

		var applyErr *ApplyError
		if errors.As(err, &applyErr) {
			logger.Error("Schedule application failed",
				zap.String("kind", string(applyErr.Kind)),
				zap.String("step", applyErr.Step),
				zap.Time("date", applyErr.Date),
				zap.Error(applyErr.Err),
			)
		}
		return nil, err
	}

	metrics.ObserveApplication("success", started)

	logger.Info("Schedule applied",
		zap.Int("availabilities", summary.AvailabilityCount),
		zap.Int("slots", summary.SlotCount),
		zap.Duration("took", time.Since(started)),
	)

	return summary, nil
}

func (s *ScheduleService) apply(ctx context.Context, runID uuid.UUID, req model.ScheduleRequest, mode applyMode, logger *zap.Logger) (*model.ApplySummary, error) {
	if err := req.Validate(); err != nil {
		return nil, newApplyError(runID, StepValidate, time.Time{}, err)
	}

	weekdays := schedule.ActiveWeekdays(req.Days)

	template, err := s.templates.Lookup(ctx, req.TemplateID)
	if err != nil {
		return nil, newApplyError(runID, StepLookupTemplate, time.Time{}, err)
	}

	lease, err := s.locker.Acquire(ctx, lock.EmployeeKey(req.EmployeeID))
	if err != nil {
		if errors.Is(err, lock.ErrLocked) {
			err = fmt.Errorf("%w: %w", ErrApplicationInProgress, err)
		}
		return nil, newApplyError(runID, StepLock, time.Time{}, err)
	}
	defer func() {
		// Снимаем блокировку даже если ctx уже отменён
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("Failed to release employee lock", zap.Error(err))
		}
	}()

	summary := &model.ApplySummary{
		RunID:          runID,
		Availabilities: []*model.Availability{},
		Slots:          []*model.TimeSlot{},
	}
	skipped := 0

	for day := range schedule.ExpandDates(req.StartDate, req.EndDate, weekdays) {
		if err := ctx.Err(); err != nil {
			return nil, newApplyError(runID, StepBeginTx, day.Date, err)
		}

		// Каждая дата продлевает блокировку на полный TTL
		if err := lease.Extend(ctx); err != nil {
			if errors.Is(err, lock.ErrLockLost) {
				err = fmt.Errorf("%w: %w", ErrApplicationInProgress, err)
			}
			return nil, newApplyError(runID, StepLock, day.Date, err)
		}

		var (
			availability *model.Availability
			slots        []*model.TimeSlot
			created      bool
			deleted      int64
			step         = StepBeginTx
		)

		err := s.uow.WithinTx(ctx, func(ctx context.Context, stores Stores) error {
			var err error

			step = StepResolve
			availability, created, err = s.resolver.Resolve(ctx, stores, req.EmployeeID, day.Date, template)
			if err != nil {
				return err
			}

			if mode == modeFillMissing && !created {
				step = StepCommit
				return nil
			}

			step = StepRegenerate
			slots, deleted, err = s.regenerator.Regenerate(ctx, stores, availability, template)
			if err != nil {
				return err
			}

			step = StepCommit
			return nil
		})
		if err != nil {
			logger.Warn("Stopping at failed date",
				zap.String("date", day.Date.Format(model.DateLayout)),
				zap.Int("processed_dates", len(summary.Availabilities)),
			)
			return nil, newApplyError(runID, step, day.Date, err)
		}

		if mode == modeFillMissing && !created {
			skipped++
			logger.Debug("Date already has availability, left untouched",
				zap.String("date", day.Date.Format(model.DateLayout)),
				zap.Int64("availability_id", availability.ID),
			)
			continue
		}

		metrics.IncAvailability(created)
		metrics.AddSlotsDeleted(deleted)
		metrics.AddSlotsCreated(len(slots))

		summary.Availabilities = append(summary.Availabilities, availability)
		summary.Slots = append(summary.Slots, slots...)

		logger.Debug("Date processed",
			zap.String("date", day.Date.Format(model.DateLayout)),
			zap.String("weekday", day.Weekday.Name),
			zap.Bool("created", created),
			zap.Int64("slots_deleted", deleted),
			zap.Int("slots_created", len(slots)),
		)
	}

	if skipped > 0 {
		logger.Info("Existing dates skipped", zap.Int("skipped", skipped))
	}

	summary.Message = SummaryMessage
	summary.AvailabilityCount = len(summary.Availabilities)
	summary.SlotCount = len(summary.Slots)

	return summary, nil
}

// StandingRunResult итог фонового применения постоянных назначений
type StandingRunResult struct {
	Schedules      int
	Failed         int
	Availabilities int
	Slots          int
}

// ApplyStandingSchedules применяет все активные постоянные назначения к окну
// [from, from + weeks недель). Создаются только даты без записи доступности:
// существующие слоты и их бронирования не трогаются. Ошибка одного назначения
// не останавливает остальные.
func (s *ScheduleService) ApplyStandingSchedules(ctx context.Context, from time.Time, weeks int) (StandingRunResult, error) {
	var result StandingRunResult

	if weeks <= 0 {
		return result, nil
	}

	schedules, err := s.standing.GetAllActive(ctx)
	if err != nil {
		return result, fmt.Errorf("get active standing schedules: %w", err)
	}

	// Календарная дата from, выраженная как полночь UTC, как и все даты доступности
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, weeks*7-1)

	for _, standing := range schedules {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		result.Schedules++

		req := model.ScheduleRequest{
			EmployeeID: standing.EmployeeID,
			TemplateID: standing.TemplateID,
			StartDate:  start,
			EndDate:    end,
			Days:       standing.Days,
		}

		summary, err := s.run(ctx, req, modeFillMissing)
		if err != nil {
			result.Failed++
			s.logger.Error("Failed to apply standing schedule",
				zap.Int64("standing_schedule_id", standing.ID),
				zap.Int64("employee_id", standing.EmployeeID),
				zap.String("kind", string(KindOf(err))),
				zap.Error(err),
			)
			continue
		}

		result.Availabilities += summary.AvailabilityCount
		result.Slots += summary.SlotCount
	}

	s.logger.Info("Applied standing schedules",
		zap.Int("total_schedules", result.Schedules),
		zap.Int("failed", result.Failed),
		zap.Int("availabilities", result.Availabilities),
		zap.Int("slots", result.Slots),
	)

	return result, nil
}

// DayAvailability возвращает запись доступности сотрудника на дату вместе со слотами.
// nil, nil если записи нет.
func (s *ScheduleService) DayAvailability(ctx context.Context, employeeID int64, date time.Time) (*model.Availability, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	var availability *model.Availability
	err := s.uow.WithinTx(ctx, func(ctx context.Context, stores Stores) error {
		found, err := stores.Availabilities.FindByEmployeeAndDate(ctx, employeeID, day)
		if err != nil || found == nil {
			return err
		}

		slots, err := stores.TimeSlots.GetByAvailabilityID(ctx, found.ID)
		if err != nil {
			return err
		}

		found.Slots = slots
		availability = found
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get availability: %w", ErrPersistence, err)
	}

	return availability, nil
}
