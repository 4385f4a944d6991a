package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/quizhub-api/internal/domain/entity"
	"github.com/yourusername/quizhub-api/internal/domain/repository"
)

// AnswerRepo реализует repository.PlayerAnswerRepository
type AnswerRepo struct {
	db *gorm.DB
}

// NewAnswerRepo создает новый репозиторий ответов игроков
func NewAnswerRepo(db *gorm.DB) *AnswerRepo {
	return &AnswerRepo{db: db}
}

// Save сохраняет ответ игрока.
// Unique constraint на (session_id, player_id, question_id) превращает
// повторную отправку в ErrDuplicateAnswer (23505 от драйвера).
func (r *AnswerRepo) Save(answer *entity.PlayerAnswer) error {
	err := r.db.Create(answer).Error
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: session #%d, player %s, question #%d",
				repository.ErrDuplicateAnswer, answer.SessionID, answer.PlayerID, answer.QuestionID)
		}
		return err
	}
	return nil
}

// GetBySession возвращает все ответы сессии в порядке отправки
func (r *AnswerRepo) GetBySession(sessionID uint) ([]entity.PlayerAnswer, error) {
	var answers []entity.PlayerAnswer
	err := r.db.Where("session_id = ?", sessionID).Order("submitted_at").Find(&answers).Error
	return answers, err
}

// GetByPlayer возвращает ответы одного игрока в рамках сессии
func (r *AnswerRepo) GetByPlayer(sessionID uint, playerID string) ([]entity.PlayerAnswer, error) {
	var answers []entity.PlayerAnswer
	err := r.db.Where("session_id = ? AND player_id = ?", sessionID, playerID).
		Order("submitted_at").
		Find(&answers).Error
	return answers, err
}

// DeleteBySession удаляет все ответы сессии (рестарт)
func (r *AnswerRepo) DeleteBySession(sessionID uint) error {
	return r.db.Where("session_id = ?", sessionID).Delete(&entity.PlayerAnswer{}).Error
}
