package gamemanager

import "errors"

var (
	// ErrEmptyGroup означает попытку запустить сессию с группой без вопросов.
	// Фатальна для start, показывается администратору.
	ErrEmptyGroup = errors.New("question group has no questions")

	// ErrExhausted означает, что непоказанных вопросов не осталось.
	// Это не сбой, а триггер завершения сессии.
	ErrExhausted = errors.New("no unseen questions remain")

	// ErrAlreadyAnswered означает повторную отправку ответа на вопрос,
	// раунд которого уже закрыт. Показывается только отправившему игроку.
	ErrAlreadyAnswered = errors.New("already answered this question")
)
