package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/yourusername/quizhub-api/internal/domain/entity"
	"github.com/yourusername/quizhub-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizhub-api/internal/pkg/errors"
)

// SessionRepo реализует repository.GameSessionRepository
type SessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo создает новый репозиторий игровых сессий
func NewSessionRepo(db *gorm.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create создает новую игровую сессию
func (r *SessionRepo) Create(session *entity.GameSession) error {
	return r.db.Create(session).Error
}

// GetByID возвращает сессию по ID
func (r *SessionRepo) GetByID(id uint) (*entity.GameSession, error) {
	var session entity.GameSession
	err := r.db.First(&session, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// List возвращает список сессий с пагинацией
func (r *SessionRepo) List(limit, offset int) ([]entity.GameSession, error) {
	var sessions []entity.GameSession
	err := r.db.Limit(limit).Offset(offset).Order("id DESC").Find(&sessions).Error
	return sessions, err
}

// ListWithFilters возвращает список сессий с фильтрами и total count
func (r *SessionRepo) ListWithFilters(filters repository.SessionFilters, limit, offset int) ([]entity.GameSession, int64, error) {
	var sessions []entity.GameSession
	var total int64

	query := r.db.Model(&entity.GameSession{})

	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	if filters.GroupID != 0 {
		query = query.Where("group_id = ?", filters.GroupID)
	}

	if filters.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filters.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Limit(limit).Offset(offset).Order("id DESC").Find(&sessions).Error
	if err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

// Update обновляет информацию о сессии
func (r *SessionRepo) Update(session *entity.GameSession) error {
	return r.db.Save(session).Error
}

// UpdateStateCAS условно обновляет изменяемое состояние сессии.
// WHERE id = ? AND version = expectedVersion - проигравший гонку получает
// RowsAffected == 0 и ErrStaleSession.
// version инкрементируется в том же UPDATE, поэтому каждый переход
// попадает в базу ровно один раз.
func (r *SessionRepo) UpdateStateCAS(session *entity.GameSession, expectedVersion int) error {
	result := r.db.Model(&entity.GameSession{}).
		Where("id = ? AND version = ?", session.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":              session.Status,
			"asked_question_ids":  session.AskedQuestionIDs,
			"current_question_id": session.CurrentQuestionID,
			"player_ids":          session.PlayerIDs,
			"version":             gorm.Expr("version + 1"),
		})

	if result.Error != nil {
		return fmt.Errorf("conditional update of session #%d failed: %w", session.ID, result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: session #%d", repository.ErrStaleSession, session.ID)
	}

	session.Version = expectedVersion + 1
	return nil
}

// Delete удаляет сессию
func (r *SessionRepo) Delete(id uint) error {
	return r.db.Delete(&entity.GameSession{}, id).Error
}

// isUniqueViolation проверяет Postgres unique violation (23505) для pgconn и lib/pq драйверов
func isUniqueViolation(err error) bool {
	// pgx/v5 driver (pgconn.PgError)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// lib/pq driver
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}
