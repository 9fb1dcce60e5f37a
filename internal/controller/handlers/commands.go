package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/staff_availability/internal/controller/state"
	"github.com/Freeeeeet/staff_availability/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	user := update.Message.From

	welcomeText := fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"Этот бот раскладывает шаблоны рабочего дня по календарю сотрудников.\n\n"+
			"Доступные команды:\n"+
			"/apply - Применить шаблон одной командой\n"+
			"/schedule - Применить шаблон по шагам\n"+
			"/day - Слоты сотрудника на дату\n"+
			"/cancel - Отменить текущий диалог\n"+
			"/help - Справка",
		user.FirstName,
	)

	if !h.IsAdmin(user.ID) {
		welcomeText += "\n\n⚠️ Применять шаблоны могут только администраторы. Ваш Telegram ID: " +
			fmt.Sprint(user.ID)
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, welcomeText)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	helpText := "📚 Справка по командам:\n\n" +
		"/apply - Применить шаблон к диапазону дат\n" +
		applyUsage + "\n\n" +
		"/schedule - То же самое, но бот спросит параметры по очереди\n" +
		"/day - Слоты сотрудника на дату\n" +
		dayUsage + "\n\n" +
		"/cancel - Отменить текущий диалог\n\n" +
		"Повторное применение безопасно: слоты каждой даты пересоздаются по шаблону."

	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}

// HandleCancel обрабатывает команду /cancel - отмена текущего диалога
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	telegramID := update.Message.From.ID
	if h.stateManager.GetState(telegramID) == state.StateNone {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "❌ Нет активных операций для отмены.")
		return
	}

	h.stateManager.ClearState(telegramID)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Операция отменена.\n\nИспользуйте /help для просмотра доступных команд.")
}

// HandleApply обрабатывает команду /apply
func (h *Handlers) HandleApply(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, b, update) {
		return
	}

	req, err := ParseApplyArgs(update.Message.Text)
	if err != nil {
		h.logger.Info("Invalid /apply arguments",
			zap.Int64("telegram_id", update.Message.From.ID),
			zap.String("text", update.Message.Text),
			zap.Error(err))

		text := "❌ " + err.Error() + "\n\n" + applyUsage
		if errors.Is(err, errUsage) {
			text = applyUsage
		}
		h.sendError(ctx, b, update.Message.Chat.ID, text)
		return
	}

	h.runApply(ctx, b, update.Message.Chat.ID, update.Message.From.ID, req)
}

// HandleDay обрабатывает команду /day: показывает слоты сотрудника на дату
func (h *Handlers) HandleDay(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, b, update) {
		return
	}

	chatID := update.Message.Chat.ID

	employeeID, day, err := ParseDayArgs(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ "+err.Error()+"\n\n"+dayUsage)
		return
	}

	availability, err := h.scheduleService.DayAvailability(ctx, employeeID, day)
	if err != nil {
		h.logger.Error("Failed to load availability",
			zap.Int64("employee_id", employeeID),
			zap.Time("date", day),
			zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Произошла ошибка. Попробуйте позже.")
		return
	}

	h.sendMessage(ctx, b, chatID, FormatDay(employeeID, day, availability))
}

// HandleTextMessage обрабатывает текстовые сообщения в зависимости от шага диалога
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}

	// Неизвестные команды не прерывают диалог
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	telegramID := update.Message.From.ID
	currentState := h.stateManager.GetState(telegramID)

	if currentState == state.StateNone {
		h.logger.Debug("No active state, ignoring message",
			zap.Int64("telegram_id", telegramID))
		return
	}

	switch currentState {
	case state.StateApplyEmployee:
		h.handleEmployeeStep(ctx, b, update)
	case state.StateApplyTemplate:
		h.handleTemplateStep(ctx, b, update)
	case state.StateApplyPeriod:
		h.handlePeriodStep(ctx, b, update)
	case state.StateApplyDays:
		h.handleDaysStep(ctx, b, update)
	default:
		h.logger.Warn("Unknown state", zap.String("state", string(currentState)))
		h.stateManager.ClearState(telegramID)
	}
}

// runApply вызывает сервис и отвечает сводкой или понятной ошибкой
func (h *Handlers) runApply(ctx context.Context, b *bot.Bot, chatID, telegramID int64, req model.ScheduleRequest) {
	h.logger.Info("Apply requested from chat",
		zap.Int64("telegram_id", telegramID),
		zap.Int64("employee_id", req.EmployeeID),
		zap.Int64("template_id", req.TemplateID))

	summary, err := h.scheduleService.Apply(ctx, req)
	if err != nil {
		h.sendError(ctx, b, chatID, ErrorText(err))
		return
	}

	h.sendMessage(ctx, b, chatID, FormatSummary(req, summary))
}
