package service

import "errors"

// Определяем кастомные ошибки для сервисов
var (
	// ErrSessionFull означает, что лобби достигло вместимости max_players.
	ErrSessionFull = errors.New("session is full")
	// ErrPlayerNotJoined означает, что игрок отправляет ответ в сессию,
	// к которой он не присоединялся.
	ErrPlayerNotJoined = errors.New("player has not joined this session")
	// ErrNotCurrentQuestion означает ответ на вопрос, который сейчас не показан.
	ErrNotCurrentQuestion = errors.New("answer targets a non-current question")
)
