package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/lesson_scheduler/internal/feed"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"go.uber.org/zap"
)

type UserService struct {
	users    UserStore
	settings Settings
	logger   *zap.Logger
	publisher
}

func NewUserService(users UserStore, changes feed.Feed, settings Settings, logger *zap.Logger) *UserService {
	return &UserService{
		users:     users,
		settings:  settings.withDefaults(),
		logger:    logger,
		publisher: publisher{feed: changes, logger: logger},
	}
}

// TelegramUserID идентификатор пользователя, пришедшего из Telegram
func TelegramUserID(telegramID int64) string {
	return fmt.Sprintf("tg:%d", telegramID)
}

// ActorOf собирает Actor из профиля
func ActorOf(user *model.User) Actor {
	return Actor{ID: user.ID, Name: user.FullName(), Role: user.Role}
}

// RegisterTelegramUser регистрирует или обновляет пользователя по Telegram ID.
// Роль существующего пользователя сохраняется, новый становится студентом,
// если его ID не совпадает с ID учителя.
func (s *UserService) RegisterTelegramUser(ctx context.Context, telegramID int64, firstName, lastName string) (*model.User, error) {
	existing, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, storeErr("check existing user", err)
	}

	user := existing
	if user == nil {
		tgID := telegramID
		user = &model.User{
			ID:         TelegramUserID(telegramID),
			Role:       model.RoleStudent,
			TelegramID: &tgID,
		}
		if user.ID == s.settings.TeacherID {
			user.Role = model.RoleTeacher
		}
	}
	user.FirstName = firstName
	user.LastName = lastName

	if err := s.users.Upsert(ctx, user); err != nil {
		s.logger.Error("Failed to register user", zap.Int64("telegram_id", telegramID), zap.Error(err))
		return nil, storeErr("register user", err)
	}

	if existing == nil {
		s.logger.Info("User registered",
			zap.String("user_id", user.ID),
			zap.Int64("telegram_id", telegramID),
			zap.String("role", string(user.Role)))
		s.publish(ctx, model.Change{Collection: model.CollectionUsers, Kind: model.ChangeAdded, ID: user.ID})
	}
	return user, nil
}

// EnsureFromClaims создаёт или обновляет профиль по данным токена
func (s *UserService) EnsureFromClaims(ctx context.Context, id, name, email string, role model.Role) (*model.User, error) {
	existing, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("load user", err)
	}

	first, last := splitName(name)
	if existing != nil && existing.Role == role && existing.FirstName == first && existing.LastName == last &&
		(email == "" || existing.Email == email) {
		return existing, nil
	}

	user := &model.User{ID: id, Role: role, FirstName: first, LastName: last, Email: email}
	if existing != nil {
		user.TelegramID = existing.TelegramID
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, storeErr("save user", err)
	}

	kind := model.ChangeModified
	if existing == nil {
		kind = model.ChangeAdded
		s.logger.Info("User registered", zap.String("user_id", id), zap.String("role", string(role)))
	}
	s.publish(ctx, model.Change{Collection: model.CollectionUsers, Kind: kind, ID: id})
	return user, nil
}

// EnsureTeacher создаёт профиль учителя, если его ещё нет
func (s *UserService) EnsureTeacher(ctx context.Context, id, name string) (*model.User, error) {
	existing, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("load teacher profile", err)
	}
	if existing != nil && existing.IsTeacher() {
		return existing, nil
	}

	first, last := splitName(name)
	teacher := &model.User{ID: id, Role: model.RoleTeacher, FirstName: first, LastName: last}
	if existing != nil {
		teacher.FirstName, teacher.LastName = existing.FirstName, existing.LastName
		teacher.Email, teacher.TelegramID = existing.Email, existing.TelegramID
	}
	if err := s.users.Upsert(ctx, teacher); err != nil {
		return nil, storeErr("create teacher profile", err)
	}

	s.logger.Info("Teacher profile ensured", zap.String("teacher_id", id))
	return teacher, nil
}

// Get возвращает профиль или nil
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("load user", err)
	}
	return user, nil
}

func splitName(name string) (string, string) {
	name = strings.TrimSpace(name)
	first, last, _ := strings.Cut(name, " ")
	return first, strings.TrimSpace(last)
}
