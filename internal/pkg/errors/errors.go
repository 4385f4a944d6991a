package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния (например, попытка
	// запустить сессию не из статуса waiting).
	ErrConflict = errors.New("resource state conflict")

	// ErrStoreUnavailable используется при любой ошибке внешнего хранилища.
	// Не фатальна: операция прерывается, пользователь может повторить.
	ErrStoreUnavailable = errors.New("store unavailable")
)
