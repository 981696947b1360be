package handlers

import (
	"bytes"
	"context"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// sender часть *bot.Bot, которой пользуются обработчики
type sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

var _ sender = (*bot.Bot)(nil)

// sendMessage отправляет сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b sender, chatID int64, text string, markup models.ReplyMarkup) {
	params := &bot.SendMessageParams{ChatID: chatID, Text: text}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		h.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// sendError отправляет пользователю текст ошибки; внутренние ошибки пишутся в лог
func (h *Handlers) sendError(ctx context.Context, b sender, chatID int64, err error) {
	if service.IsStoreError(err) {
		h.logger.Error("Operation failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	h.sendMessage(ctx, b, chatID, ErrorMessage(err), nil)
}

func (h *Handlers) sendPhoto(ctx context.Context, b sender, chatID int64, png []byte, caption string, markup models.ReplyMarkup) {
	params := &bot.SendPhotoParams{
		ChatID:  chatID,
		Photo:   &models.InputFileUpload{Filename: "week.png", Data: bytes.NewReader(png)},
		Caption: caption,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := b.SendPhoto(ctx, params); err != nil {
		h.logger.Error("Failed to send photo", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// editMessage заменяет текст сообщения с кнопками
func (h *Handlers) editMessage(ctx context.Context, b sender, msg *models.Message, text string, markup models.ReplyMarkup) {
	params := &bot.EditMessageTextParams{ChatID: msg.Chat.ID, MessageID: msg.ID, Text: text}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := b.EditMessageText(ctx, params); err != nil {
		h.logger.Warn("Failed to edit message", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
	}
}

func (h *Handlers) answer(ctx context.Context, b sender, callbackID, text string, alert bool) {
	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	}); err != nil {
		h.logger.Warn("Failed to answer callback", zap.Error(err))
	}
}

// userFor регистрирует отправителя при первом обращении и возвращает его профиль
func (h *Handlers) userFor(ctx context.Context, from *models.User) (*model.User, error) {
	return h.Users.RegisterTelegramUser(ctx, from.ID, from.FirstName, from.LastName)
}

// requireTeacher проверяет, что отправитель и есть учитель
func (h *Handlers) requireTeacher(ctx context.Context, b sender, chatID int64, from *models.User) (*model.User, bool) {
	user, err := h.userFor(ctx, from)
	if err != nil {
		h.sendError(ctx, b, chatID, err)
		return nil, false
	}
	if !user.IsTeacher() {
		h.sendError(ctx, b, chatID, service.ErrTeacherOnly)
		return nil, false
	}
	return user, true
}
