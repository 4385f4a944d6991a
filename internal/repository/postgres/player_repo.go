package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/quizhub-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizhub-api/internal/pkg/errors"
)

// PlayerRepo реализует repository.PlayerRepository
type PlayerRepo struct {
	db *gorm.DB
}

// NewPlayerRepo создает новый репозиторий игроков
func NewPlayerRepo(db *gorm.DB) *PlayerRepo {
	return &PlayerRepo{db: db}
}

// Create создает нового игрока.
// Имя уникально: конфликт по имени возвращается как ErrConflict.
func (r *PlayerRepo) Create(player *entity.Player) error {
	err := r.db.Create(player).Error
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return err
	}
	return nil
}

// GetByID возвращает игрока по ID
func (r *PlayerRepo) GetByID(id string) (*entity.Player, error) {
	var player entity.Player
	err := r.db.First(&player, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &player, nil
}

// GetByName возвращает игрока по имени
func (r *PlayerRepo) GetByName(name string) (*entity.Player, error) {
	var player entity.Player
	err := r.db.First(&player, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &player, nil
}

// GetByIDs возвращает игроков по списку ID
func (r *PlayerRepo) GetByIDs(ids []string) ([]entity.Player, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var players []entity.Player
	err := r.db.Where("id IN ?", ids).Find(&players).Error
	return players, err
}

// Delete удаляет игрока
func (r *PlayerRepo) Delete(id string) error {
	return r.db.Delete(&entity.Player{}, "id = ?", id).Error
}
