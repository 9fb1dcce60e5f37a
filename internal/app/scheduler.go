package app

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/staff_availability/internal/service"
	"go.uber.org/zap"
)

// StandingApplier применяет постоянные назначения к окну дат
type StandingApplier interface {
	ApplyStandingSchedules(ctx context.Context, from time.Time, weeks int) (service.StandingRunResult, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	applier    StandingApplier
	interval   time.Duration
	weeksAhead int
	now        func() time.Time
	logger     *zap.Logger

	mu       sync.Mutex
	started  bool
	stopped  bool
	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// DefaultStandingInterval период прогона, если интервал не задан
const DefaultStandingInterval = 24 * time.Hour

// NewScheduler создаёт новый планировщик
func NewScheduler(applier StandingApplier, interval time.Duration, weeksAhead int, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultStandingInterval
	}

	return &Scheduler{
		applier:    applier,
		interval:   interval,
		weeksAhead: weeksAhead,
		now:        time.Now,
		logger:     logger,
		stopChan:   make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start запускает фоновые задачи. Повторный вызов и вызов после Stop ничего не делают.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.stopped {
		return
	}
	s.started = true

	s.logger.Info("Starting background scheduler",
		zap.Duration("interval", s.interval),
		zap.Int("weeks_ahead", s.weeksAhead))

	go s.runStandingTask(ctx)
}

// Stop останавливает фоновые задачи и ждёт завершения текущего прогона.
// Если Start не вызывался, возвращается сразу.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	started := s.started
	s.mu.Unlock()

	s.stopOnce.Do(func() {
		s.logger.Info("Stopping background scheduler")
		close(s.stopChan)
	})

	if started {
		<-s.done
	}
}

// runStandingTask периодически применяет постоянные назначения
func (s *Scheduler) runStandingTask(ctx context.Context) {
	defer close(s.done)

	// Первый запуск сразу при старте
	s.applyStanding(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.applyStanding(ctx)
		case <-s.stopChan:
			s.logger.Info("Standing schedule task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Standing schedule task cancelled")
			return
		}
	}
}

// applyStanding продлевает доступность на weeksAhead недель вперёд от сегодняшнего дня
func (s *Scheduler) applyStanding(ctx context.Context) {
	s.logger.Info("Starting standing schedule run")

	result, err := s.applier.ApplyStandingSchedules(ctx, s.now(), s.weeksAhead)
	if err != nil {
		s.logger.Error("Failed to apply standing schedules", zap.Error(err))
		return
	}

	if result.Failed > 0 {
		s.logger.Warn("Standing schedule run finished with failures",
			zap.Int("failed", result.Failed),
			zap.Int("total", result.Schedules))
		return
	}

	s.logger.Info("Standing schedule run completed successfully",
		zap.Int("schedules", result.Schedules))
}
