package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/staff_availability/internal/controller/handlers"
	"github.com/Freeeeeet/staff_availability/internal/controller/state"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// dialogPruneInterval как часто чистить брошенные диалоги
const dialogPruneInterval = 5 * time.Minute

type BotController struct {
	bot          *bot.Bot
	handlers     *handlers.Handlers
	stateManager *state.Manager
	logger       *zap.Logger
}

// NewBotController создаёт бота. Сообщения без команды уходят в обработчик диалогов.
func NewBotController(
	token string,
	scheduleService handlers.ScheduleUseCase,
	adminIDs []int64,
	logger *zap.Logger,
) (*BotController, error) {
	stateManager := state.NewManager(state.DefaultDialogTTL)

	cmdHandlers := handlers.NewHandlers(
		scheduleService,
		stateManager,
		adminIDs,
		logger,
	)

	botInstance, err := bot.New(token, bot.WithDefaultHandler(cmdHandlers.HandleTextMessage))
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &BotController{
		bot:          botInstance,
		handlers:     cmdHandlers,
		stateManager: stateManager,
		logger:       logger,
	}, nil
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact, c.handlers.HandleCancel)

	// Команды администраторов
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/apply", bot.MatchTypePrefix, c.handlers.HandleApply)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/schedule", bot.MatchTypeExact, c.handlers.HandleScheduleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/day", bot.MatchTypePrefix, c.handlers.HandleDay)

	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "help", Description: "❓ Справка по командам"},
		{Command: "apply", Description: "🗓 Применить шаблон к датам"},
		{Command: "schedule", Description: "🧭 Применить шаблон по шагам"},
		{Command: "day", Description: "🔎 Слоты сотрудника на дату"},
		{Command: "cancel", Description: "✖️ Отменить диалог"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота и блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")

	go c.pruneDialogs(ctx)

	c.bot.Start(ctx)
	return nil
}

func (c *BotController) pruneDialogs(ctx context.Context) {
	ticker := time.NewTicker(dialogPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := c.stateManager.Prune(); n > 0 {
				c.logger.Debug("Pruned stale dialogs", zap.Int("count", n))
			}
		case <-ctx.Done():
			return
		}
	}
}
