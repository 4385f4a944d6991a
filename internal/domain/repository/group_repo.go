package repository

import (
	"github.com/yourusername/quizhub-api/internal/domain/entity"
)

// QuestionGroupRepository определяет методы для работы с группами вопросов
type QuestionGroupRepository interface {
	Create(group *entity.QuestionGroup) error
	GetByID(id uint) (*entity.QuestionGroup, error)
	GetWithQuestions(id uint) (*entity.QuestionGroup, error)
	List(limit, offset int) ([]entity.QuestionGroup, error)
	Update(group *entity.QuestionGroup) error
	Delete(id uint) error
}
