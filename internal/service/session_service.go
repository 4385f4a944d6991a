package service

import (
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/quizhub-api/internal/domain/entity"
	"github.com/yourusername/quizhub-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizhub-api/internal/pkg/errors"
	"github.com/yourusername/quizhub-api/internal/service/gamemanager"
)

const maxSessionNameLen = 100

// SessionService предоставляет админские методы для работы с игровыми сессиями:
// создание, настройка, списки. Игровой цикл сессии ведет GameManager.
type SessionService struct {
	sessionRepo repository.GameSessionRepository
	groupRepo   repository.QuestionGroupRepository
	config      *gamemanager.Config
}

// NewSessionService создает новый сервис игровых сессий
func NewSessionService(
	sessionRepo repository.GameSessionRepository,
	groupRepo repository.QuestionGroupRepository,
	config *gamemanager.Config,
) *SessionService {
	if config == nil {
		config = gamemanager.DefaultConfig()
	}
	return &SessionService{
		sessionRepo: sessionRepo,
		groupRepo:   groupRepo,
		config:      config,
	}
}

// CreateSession создает новую игровую сессию в статусе waiting.
// Группа вопросов должна существовать; пустая группа допустима -
// запуск такой сессии вернет ошибку.
func (s *SessionService) CreateSession(name string, groupID uint, maxPlayers, timePerQuestionSec int) (*entity.GameSession, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: session name is required", apperrors.ErrValidation)
	}
	if runeName := []rune(name); len(runeName) > maxSessionNameLen {
		return nil, fmt.Errorf("%w: session name is longer than %d characters", apperrors.ErrValidation, maxSessionNameLen)
	}
	if timePerQuestionSec < 0 {
		return nil, fmt.Errorf("%w: time per question cannot be negative", apperrors.ErrValidation)
	}

	// Используем дефолт если maxPlayers не указан или <= 0
	if maxPlayers <= 0 {
		maxPlayers = s.config.DefaultMaxPlayers
	}

	// Проверяем, что группа вопросов существует
	if _, err := s.groupRepo.GetByID(groupID); err != nil {
		return nil, err
	}

	session := &entity.GameSession{
		Name:               name,
		GroupID:            groupID,
		MaxPlayers:         maxPlayers,
		TimePerQuestionSec: timePerQuestionSec,
		Status:             entity.SessionStatusWaiting,
		AskedQuestionIDs:   entity.UintArray{},
		PlayerIDs:          entity.StringArray{},
	}

	if err := s.sessionRepo.Create(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Printf("[SessionService] Создана сессия #%d '%s' (группа #%d)", session.ID, session.Name, groupID)
	return session, nil
}

// GetSessionByID возвращает сессию по ID
func (s *SessionService) GetSessionByID(sessionID uint) (*entity.GameSession, error) {
	return s.sessionRepo.GetByID(sessionID)
}

// ListSessions возвращает список сессий с пагинацией
func (s *SessionService) ListSessions(page, pageSize int) ([]entity.GameSession, error) {
	offset := (page - 1) * pageSize
	return s.sessionRepo.List(pageSize, offset)
}

// ListSessionsWithFilters возвращает список сессий с фильтрацией и пагинацией
func (s *SessionService) ListSessionsWithFilters(page, pageSize int, filters repository.SessionFilters) ([]entity.GameSession, int64, error) {
	offset := (page - 1) * pageSize
	return s.sessionRepo.ListWithFilters(filters, pageSize, offset)
}

// UpdateSessionConfig обновляет настройки сессии.
// Разрешено только в waiting: менять правила посреди игры нельзя.
func (s *SessionService) UpdateSessionConfig(sessionID uint, name string, maxPlayers, timePerQuestionSec int) (*entity.GameSession, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}

	if !session.IsWaiting() {
		return nil, fmt.Errorf("%w: session #%d is %s, config can only change while waiting", apperrors.ErrConflict, sessionID, session.Status)
	}

	name = strings.TrimSpace(name)
	if name != "" {
		if runeName := []rune(name); len(runeName) > maxSessionNameLen {
			return nil, fmt.Errorf("%w: session name is longer than %d characters", apperrors.ErrValidation, maxSessionNameLen)
		}
		session.Name = name
	}
	if timePerQuestionSec < 0 {
		return nil, fmt.Errorf("%w: time per question cannot be negative", apperrors.ErrValidation)
	}
	session.TimePerQuestionSec = timePerQuestionSec

	if maxPlayers > 0 {
		// Лобби нельзя ужимать ниже числа уже присоединившихся
		if maxPlayers < len(session.PlayerIDs) {
			return nil, fmt.Errorf("%w: %d players already joined, max_players cannot be %d", apperrors.ErrValidation, len(session.PlayerIDs), maxPlayers)
		}
		session.MaxPlayers = maxPlayers
	}

	if err := s.sessionRepo.Update(session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return session, nil
}

// DeleteSession удаляет сессию. Активную сессию удалить нельзя -
// сначала ее нужно завершить.
func (s *SessionService) DeleteSession(sessionID uint) error {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return err
	}

	if session.IsActive() {
		return fmt.Errorf("%w: cannot delete an active session", apperrors.ErrConflict)
	}

	if err := s.sessionRepo.Delete(sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	log.Printf("[SessionService] Сессия #%d удалена", sessionID)
	return nil
}
