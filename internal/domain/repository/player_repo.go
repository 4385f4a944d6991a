package repository

import (
	"github.com/yourusername/quizhub-api/internal/domain/entity"
)

// PlayerRepository определяет методы для работы с игроками
type PlayerRepository interface {
	Create(player *entity.Player) error
	GetByID(id string) (*entity.Player, error)
	GetByName(name string) (*entity.Player, error)
	GetByIDs(ids []string) ([]entity.Player, error)
	Delete(id string) error
}
