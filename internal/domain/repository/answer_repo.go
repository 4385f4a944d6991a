package repository

import (
	"github.com/yourusername/quizhub-api/internal/domain/entity"
)

// PlayerAnswerRepository определяет методы для работы с ответами игроков
type PlayerAnswerRepository interface {
	// Save сохраняет ответ. Повторная отправка той же тройки
	// (session, player, question) возвращает ErrDuplicateAnswer
	// (unique constraint на уровне БД).
	Save(answer *entity.PlayerAnswer) error
	GetBySession(sessionID uint) ([]entity.PlayerAnswer, error)
	GetByPlayer(sessionID uint, playerID string) ([]entity.PlayerAnswer, error)
	// DeleteBySession удаляет все ответы сессии (используется при рестарте)
	DeleteBySession(sessionID uint) error
}
