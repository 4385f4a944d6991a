package gamemanager

import (
	"sync"
	"time"

	"github.com/yourusername/quizhub-api/internal/domain/entity"
	"github.com/yourusername/quizhub-api/internal/domain/repository"
)

// Значения по умолчанию
const (
	DefaultMaxPlayers    = 10
	DefaultScoreboardTTL = 24 * time.Hour
)

// Config содержит настройки для всех компонентов GameManager
type Config struct {
	// Максимальное количество попыток условного обновления сессии
	// при проигрыше гонки (StaleSession) в авто-переходах
	MaxRetries int
	// Интервал между повторными попытками
	RetryInterval time.Duration

	// Время жизни ephemeral-ключей сессии в Redis
	ScoreboardTTL time.Duration
	LobbyTTL      time.Duration
	RoundFlagTTL  time.Duration

	// Максимальное количество тем, передаваемых сервису фактов
	MaxFactTopics int

	// Размер лобби, если при создании сессии не указан свой
	DefaultMaxPlayers int
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:        3,
		RetryInterval:     200 * time.Millisecond,
		ScoreboardTTL:     DefaultScoreboardTTL,
		LobbyTTL:          DefaultScoreboardTTL,
		RoundFlagTTL:      DefaultScoreboardTTL,
		MaxFactTopics:     10,
		DefaultMaxPlayers: DefaultMaxPlayers,
	}
}

// Dependencies содержит зависимости для компонентов GameManager
type Dependencies struct {
	SessionRepo  repository.GameSessionRepository
	QuestionRepo repository.QuestionRepository
	GroupRepo    repository.QuestionGroupRepository
	AnswerRepo   repository.PlayerAnswerRepository
	PlayerRepo   repository.PlayerRepository
	CacheRepo    repository.CacheRepository
	Config       *Config
}

// ActiveSessionState хранит in-memory состояние одной активной сессии:
// текущий вопрос и момент его показа. Ходит рядом с персистентной записью
// GameSession, которая остается единственным источником истины о статусе.
type ActiveSessionState struct {
	SessionID       uint
	CurrentQuestion *entity.Question
	QuestionStart   time.Time
	Mu              sync.RWMutex
}

// NewActiveSessionState создает состояние активной сессии
func NewActiveSessionState(sessionID uint) *ActiveSessionState {
	return &ActiveSessionState{SessionID: sessionID}
}

// SetCurrentQuestion устанавливает текущий вопрос и время его показа
func (s *ActiveSessionState) SetCurrentQuestion(question *entity.Question, start time.Time) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.CurrentQuestion = question
	s.QuestionStart = start
}

// GetCurrentQuestion возвращает текущий вопрос и время его показа
func (s *ActiveSessionState) GetCurrentQuestion() (*entity.Question, time.Time) {
	s.Mu.RLock()
	defer s.Mu.RUnlock()
	return s.CurrentQuestion, s.QuestionStart
}

// Clear очищает текущий вопрос
func (s *ActiveSessionState) Clear() {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.CurrentQuestion = nil
	s.QuestionStart = time.Time{}
}
