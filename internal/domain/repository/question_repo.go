package repository

import (
	"github.com/yourusername/quizhub-api/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с вопросами
type QuestionRepository interface {
	Create(question *entity.Question) error
	CreateBatch(questions []entity.Question) error
	GetByID(id uint) (*entity.Question, error)
	GetByGroupID(groupID uint) ([]entity.Question, error)
	CountByGroupID(groupID uint) (int64, error)
	Update(question *entity.Question) error
	Delete(id uint) error
}
