package schedule

import "errors"

// ErrCollisionExhaustion все кандидаты уже существуют как слоты
var ErrCollisionExhaustion = errors.New("all candidate slots already exist")

// ValidationError некорректный или неполный ввод. Message показывается пользователю как есть.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation проверяет, является ли ошибка ошибкой валидации
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
