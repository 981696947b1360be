package controller

import (
	"context"

	"github.com/Freeeeeet/lesson_scheduler/internal/controller/handlers"
	"github.com/Freeeeeet/lesson_scheduler/internal/controller/state"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot      *bot.Bot
	handlers *handlers.Handlers
	logger   *zap.Logger
}

func NewBotController(botInstance *bot.Bot, services handlers.Services, logger *zap.Logger) *BotController {
	return &BotController{
		bot:      botInstance,
		handlers: handlers.NewHandlers(services, state.NewManager(), logger),
		logger:   logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	h := c.handlers

	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, h.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, h.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/week", bot.MatchTypeExact, h.HandleWeek)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/mybookings", bot.MatchTypeExact, h.HandleMyBookings)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/homework", bot.MatchTypeExact, h.HandleHomework)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact, h.HandleCancel)

	// Команды учителя
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/schedule", bot.MatchTypeExact, h.HandleSchedule)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/addslots", bot.MatchTypeExact, h.HandleAddSlots)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/rate", bot.MatchTypeExact, h.HandleRate)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/students", bot.MatchTypePrefix, h.HandleStudents)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/assign", bot.MatchTypeExact, h.HandleAssign)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/earnings", bot.MatchTypeExact, h.HandleEarnings)

	// Ответы внутри диалогов
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, h.HandleTextMessage)

	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, h.HandleCallbackQuery)

	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "week", Description: "🗓 Свободные слоты"},
		{Command: "mybookings", Description: "📅 Мои записи"},
		{Command: "homework", Description: "📝 Домашние задания"},
		{Command: "help", Description: "❓ Справка по командам"},
		{Command: "schedule", Description: "👩‍🏫 Расписание (учитель)"},
		{Command: "addslots", Description: "➕ Добавить слоты (учитель)"},
		{Command: "rate", Description: "💵 Ставка (учитель)"},
	}

	if _, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: commands}); err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot commands menu set")
	return nil
}

// Start запускает long polling и блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
}
