package handlers

import (
	"context"
	"strings"

	"github.com/Freeeeeet/staff_availability/internal/controller/state"
	"github.com/Freeeeeet/staff_availability/internal/model"
	"github.com/Freeeeeet/staff_availability/internal/schedule"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleScheduleStart начинает пошаговое применение шаблона (/schedule)
func (h *Handlers) HandleScheduleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, b, update) {
		return
	}

	telegramID := update.Message.From.ID
	h.stateManager.ClearState(telegramID)
	h.stateManager.SetState(telegramID, state.StateApplyEmployee)

	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"👤 Шаг 1/4. Введите ID сотрудника:\n\n(/cancel для отмены)")
}

func (h *Handlers) handleEmployeeStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	employeeID, err := parseID(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ ID сотрудника должен быть положительным числом. Попробуйте ещё раз:")
		return
	}

	if !h.stateManager.UpdateDraft(telegramID, func(d *state.Draft) { d.EmployeeID = employeeID }) {
		h.dialogExpired(ctx, b, chatID)
		return
	}
	h.stateManager.SetState(telegramID, state.StateApplyTemplate)

	h.sendMessage(ctx, b, chatID, "📋 Шаг 2/4. Введите ID шаблона рабочего дня:")
}

func (h *Handlers) handleTemplateStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	templateID, err := parseID(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ ID шаблона должен быть положительным числом. Попробуйте ещё раз:")
		return
	}

	if !h.stateManager.UpdateDraft(telegramID, func(d *state.Draft) { d.TemplateID = templateID }) {
		h.dialogExpired(ctx, b, chatID)
		return
	}
	h.stateManager.SetState(telegramID, state.StateApplyPeriod)

	h.sendMessage(ctx, b, chatID,
		"📅 Шаг 3/4. Введите период: две даты через пробел\n\nПример: 2024-01-01 2024-01-14")
}

func (h *Handlers) handlePeriodStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	start, end, err := parsePeriod(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ Нужны две даты в формате YYYY-MM-DD. Попробуйте ещё раз:")
		return
	}

	if !h.stateManager.UpdateDraft(telegramID, func(d *state.Draft) {
		d.StartDate = start
		d.EndDate = end
	}) {
		h.dialogExpired(ctx, b, chatID)
		return
	}
	h.stateManager.SetState(telegramID, state.StateApplyDays)

	h.sendMessage(ctx, b, chatID,
		"🗓 Шаг 4/4. Введите дни недели\n\nПримеры: mon,wed,fri · 1-5 · all")
}

func (h *Handlers) handleDaysStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	days, err := schedule.ParseWeekdays(strings.TrimSpace(update.Message.Text))
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ Не удалось разобрать дни недели. Попробуйте ещё раз:")
		return
	}

	draft, ok := h.stateManager.Draft(telegramID)
	if !ok {
		h.dialogExpired(ctx, b, chatID)
		return
	}
	h.stateManager.ClearState(telegramID)

	req, err := model.NewScheduleRequest(draft.EmployeeID, draft.TemplateID, draft.StartDate, draft.EndDate, days)
	if err != nil {
		h.logger.Warn("Dialog produced invalid request",
			zap.Int64("telegram_id", telegramID),
			zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ "+err.Error()+"\n\nНачните заново: /schedule")
		return
	}

	h.runApply(ctx, b, chatID, telegramID, req)
}

func (h *Handlers) dialogExpired(ctx context.Context, b *bot.Bot, chatID int64) {
	h.sendError(ctx, b, chatID, "⌛ Диалог устарел. Начните заново: /schedule")
}
