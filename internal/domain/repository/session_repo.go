package repository

import (
	"github.com/yourusername/quizhub-api/internal/domain/entity"
)

// SessionFilters определяет фильтры для поиска игровых сессий
type SessionFilters struct {
	Status  string // Фильтр по статусу (waiting, active, finished)
	GroupID uint   // Фильтр по группе вопросов (0 = все)
	Search  string // Поиск по названию
}

// GameSessionRepository определяет методы для работы с игровыми сессиями
type GameSessionRepository interface {
	Create(session *entity.GameSession) error
	GetByID(id uint) (*entity.GameSession, error)
	List(limit, offset int) ([]entity.GameSession, error)
	ListWithFilters(filters SessionFilters, limit, offset int) ([]entity.GameSession, int64, error) // Возвращает также total count
	Update(session *entity.GameSession) error
	// UpdateStateCAS условно обновляет изменяемое состояние сессии
	// (status, asked_question_ids, current_question_id, player_ids),
	// только если version в базе совпадает с expectedVersion.
	// При несовпадении возвращает ErrStaleSession - вызывающий обязан
	// перечитать сессию и повторить переход.
	UpdateStateCAS(session *entity.GameSession, expectedVersion int) error
	Delete(id uint) error
}
