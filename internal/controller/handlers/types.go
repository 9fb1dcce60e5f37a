package handlers

import (
	"context"
	"time"

	"github.com/Freeeeeet/staff_availability/internal/controller/state"
	"github.com/Freeeeeet/staff_availability/internal/model"
	"go.uber.org/zap"
)

// ScheduleUseCase операции расписания, доступные из чата
type ScheduleUseCase interface {
	Apply(ctx context.Context, req model.ScheduleRequest) (*model.ApplySummary, error)
	DayAvailability(ctx context.Context, employeeID int64, date time.Time) (*model.Availability, error)
}

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	scheduleService ScheduleUseCase
	stateManager    *state.Manager
	adminIDs        map[int64]struct{}
	logger          *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	scheduleService ScheduleUseCase,
	stateManager *state.Manager,
	adminIDs []int64,
	logger *zap.Logger,
) *Handlers {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}

	return &Handlers{
		scheduleService: scheduleService,
		stateManager:    stateManager,
		adminIDs:        admins,
		logger:          logger,
	}
}

// IsAdmin проверяет, может ли пользователь применять шаблоны
func (h *Handlers) IsAdmin(telegramID int64) bool {
	_, ok := h.adminIDs[telegramID]
	return ok
}
