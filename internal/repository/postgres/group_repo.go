package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/quizhub-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizhub-api/internal/pkg/errors"
)

// GroupRepo реализует repository.QuestionGroupRepository
type GroupRepo struct {
	db *gorm.DB
}

// NewGroupRepo создает новый репозиторий групп вопросов
func NewGroupRepo(db *gorm.DB) *GroupRepo {
	return &GroupRepo{db: db}
}

// Create создает новую группу вопросов
func (r *GroupRepo) Create(group *entity.QuestionGroup) error {
	return r.db.Create(group).Error
}

// GetByID возвращает группу по ID
func (r *GroupRepo) GetByID(id uint) (*entity.QuestionGroup, error) {
	var group entity.QuestionGroup
	err := r.db.First(&group, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &group, nil
}

// GetWithQuestions возвращает группу вместе с вопросами
func (r *GroupRepo) GetWithQuestions(id uint) (*entity.QuestionGroup, error) {
	var group entity.QuestionGroup
	err := r.db.Preload("Questions").First(&group, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &group, nil
}

// List возвращает список групп с пагинацией
func (r *GroupRepo) List(limit, offset int) ([]entity.QuestionGroup, error) {
	var groups []entity.QuestionGroup
	err := r.db.Limit(limit).Offset(offset).Order("id DESC").Find(&groups).Error
	return groups, err
}

// Update обновляет группу
func (r *GroupRepo) Update(group *entity.QuestionGroup) error {
	return r.db.Save(group).Error
}

// Delete удаляет группу
func (r *GroupRepo) Delete(id uint) error {
	return r.db.Delete(&entity.QuestionGroup{}, id).Error
}
