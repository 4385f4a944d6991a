package repository

import "errors"

var (
	// ErrStaleSession означает, что условное обновление сессии не прошло:
	// версия в базе уже не совпадает с прочитанной вызывающим.
	// Вызывающий должен перечитать сессию и повторить попытку.
	ErrStaleSession = errors.New("session state is stale, re-read and retry")
	// ErrDuplicateAnswer означает, что ответ на эту тройку
	// (session, player, question) уже сохранен.
	ErrDuplicateAnswer = errors.New("answer already recorded for this question")
)
