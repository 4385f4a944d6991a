package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/quizhub-api/internal/domain/entity"
	"github.com/yourusername/quizhub-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizhub-api/internal/pkg/errors"
	"github.com/yourusername/quizhub-api/internal/service/gamemanager"
)

// Создаем мок-объекты для интерфейсов репозиториев.
// Моки общие для всех тестов пакета service.
type MockGameSessionRepository struct {
	mock.Mock
}

func (m *MockGameSessionRepository) Create(session *entity.GameSession) error {
	args := m.Called(session)
	return args.Error(0)
}

func (m *MockGameSessionRepository) GetByID(id uint) (*entity.GameSession, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.GameSession), args.Error(1)
}

func (m *MockGameSessionRepository) List(limit, offset int) ([]entity.GameSession, error) {
	args := m.Called(limit, offset)
	return args.Get(0).([]entity.GameSession), args.Error(1)
}

func (m *MockGameSessionRepository) ListWithFilters(filters repository.SessionFilters, limit, offset int) ([]entity.GameSession, int64, error) {
	args := m.Called(filters, limit, offset)
	return args.Get(0).([]entity.GameSession), args.Get(1).(int64), args.Error(2)
}

func (m *MockGameSessionRepository) Update(session *entity.GameSession) error {
	args := m.Called(session)
	return args.Error(0)
}

func (m *MockGameSessionRepository) UpdateStateCAS(session *entity.GameSession, expectedVersion int) error {
	args := m.Called(session, expectedVersion)
	return args.Error(0)
}

func (m *MockGameSessionRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// Мок для вопросов
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(question *entity.Question) error {
	args := m.Called(question)
	return args.Error(0)
}

func (m *MockQuestionRepository) CreateBatch(questions []entity.Question) error {
	args := m.Called(questions)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(id uint) (*entity.Question, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByGroupID(groupID uint) ([]entity.Question, error) {
	args := m.Called(groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) CountByGroupID(groupID uint) (int64, error) {
	args := m.Called(groupID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuestionRepository) Update(question *entity.Question) error {
	args := m.Called(question)
	return args.Error(0)
}

func (m *MockQuestionRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// Мок для групп вопросов
type MockQuestionGroupRepository struct {
	mock.Mock
}

func (m *MockQuestionGroupRepository) Create(group *entity.QuestionGroup) error {
	args := m.Called(group)
	return args.Error(0)
}

func (m *MockQuestionGroupRepository) GetByID(id uint) (*entity.QuestionGroup, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuestionGroup), args.Error(1)
}

func (m *MockQuestionGroupRepository) GetWithQuestions(id uint) (*entity.QuestionGroup, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuestionGroup), args.Error(1)
}

func (m *MockQuestionGroupRepository) List(limit, offset int) ([]entity.QuestionGroup, error) {
	args := m.Called(limit, offset)
	return args.Get(0).([]entity.QuestionGroup), args.Error(1)
}

func (m *MockQuestionGroupRepository) Update(group *entity.QuestionGroup) error {
	args := m.Called(group)
	return args.Error(0)
}

func (m *MockQuestionGroupRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// Мок для ответов игроков
type MockPlayerAnswerRepository struct {
	mock.Mock
}

func (m *MockPlayerAnswerRepository) Save(answer *entity.PlayerAnswer) error {
	args := m.Called(answer)
	return args.Error(0)
}

func (m *MockPlayerAnswerRepository) GetBySession(sessionID uint) ([]entity.PlayerAnswer, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.PlayerAnswer), args.Error(1)
}

func (m *MockPlayerAnswerRepository) GetByPlayer(sessionID uint, playerID string) ([]entity.PlayerAnswer, error) {
	args := m.Called(sessionID, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.PlayerAnswer), args.Error(1)
}

func (m *MockPlayerAnswerRepository) DeleteBySession(sessionID uint) error {
	args := m.Called(sessionID)
	return args.Error(0)
}

// Мок для игроков
type MockPlayerRepository struct {
	mock.Mock
}

func (m *MockPlayerRepository) Create(player *entity.Player) error {
	args := m.Called(player)
	return args.Error(0)
}

func (m *MockPlayerRepository) GetByID(id string) (*entity.Player, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Player), args.Error(1)
}

func (m *MockPlayerRepository) GetByName(name string) (*entity.Player, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Player), args.Error(1)
}

func (m *MockPlayerRepository) GetByIDs(ids []string) ([]entity.Player, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Player), args.Error(1)
}

func (m *MockPlayerRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// Мок для cache repository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Set(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepository) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepository) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) ExpireAt(key string, expireTime time.Time) error {
	args := m.Called(key, expireTime)
	return args.Error(0)
}

func (m *MockCacheRepository) SAdd(key string, members ...interface{}) error {
	callArgs := append([]interface{}{key}, members...)
	args := m.Called(callArgs...)
	return args.Error(0)
}

func (m *MockCacheRepository) SRem(key string, members ...interface{}) error {
	callArgs := append([]interface{}{key}, members...)
	args := m.Called(callArgs...)
	return args.Error(0)
}

func (m *MockCacheRepository) SCard(key string) (int64, error) {
	args := m.Called(key)
	return args.Get(0).(int64), args.Error(1)
}

// newTestGameManager создает менеджер с моками и отключенными фактами
func newTestGameManager(
	sessionRepo *MockGameSessionRepository,
	questionRepo *MockQuestionRepository,
	answerRepo *MockPlayerAnswerRepository,
	playerRepo *MockPlayerRepository,
	cacheRepo *MockCacheRepository,
) *GameManager {
	config := gamemanager.DefaultConfig()
	config.RetryInterval = time.Millisecond
	return NewGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo, nil, config)
}

func waitingSession() *entity.GameSession {
	return &entity.GameSession{
		ID:                 1,
		Name:               "Пятничная викторина",
		GroupID:            10,
		MaxPlayers:         4,
		TimePerQuestionSec: 0,
		Status:             entity.SessionStatusWaiting,
		AskedQuestionIDs:   entity.UintArray{},
		PlayerIDs:          entity.StringArray{},
		Version:            1,
	}
}

func TestGameManager_JoinSession_Success(t *testing.T) {
	// Arrange
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	session := waitingSession()
	playerRepo.On("GetByID", "player-1").Return(&entity.Player{ID: "player-1", Name: "Алиса"}, nil)
	sessionRepo.On("GetByID", uint(1)).Return(session, nil)
	sessionRepo.On("UpdateStateCAS", mock.AnythingOfType("*entity.GameSession"), 1).Return(nil)
	cacheRepo.On("SAdd", "session:1:players", "player-1").Return(nil)
	cacheRepo.On("ExpireAt", "session:1:players", mock.AnythingOfType("time.Time")).Return(nil)

	// Act
	err := gm.JoinSession(1, "player-1")

	// Assert
	require.NoError(t, err)
	assert.True(t, session.HasPlayer("player-1"), "Игрок должен появиться в списке сессии")
	sessionRepo.AssertExpectations(t)
	cacheRepo.AssertExpectations(t)
}

func TestGameManager_JoinSession_Idempotent(t *testing.T) {
	// Arrange: игрок уже в лобби, повторный join не должен менять сессию
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	session := waitingSession()
	session.PlayerIDs = entity.StringArray{"player-1"}
	playerRepo.On("GetByID", "player-1").Return(&entity.Player{ID: "player-1"}, nil)
	sessionRepo.On("GetByID", uint(1)).Return(session, nil)

	// Act
	err := gm.JoinSession(1, "player-1")

	// Assert
	require.NoError(t, err)
	assert.Len(t, session.PlayerIDs, 1, "Список игроков не должен измениться")
	sessionRepo.AssertNotCalled(t, "UpdateStateCAS", mock.Anything, mock.Anything)
}

func TestGameManager_JoinSession_Full(t *testing.T) {
	// Arrange: лобби заполнено до MaxPlayers
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	session := waitingSession()
	session.MaxPlayers = 2
	session.PlayerIDs = entity.StringArray{"p1", "p2"}
	playerRepo.On("GetByID", "p3").Return(&entity.Player{ID: "p3"}, nil)
	sessionRepo.On("GetByID", uint(1)).Return(session, nil)

	// Act
	err := gm.JoinSession(1, "p3")

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSessionFull), "Ожидалась ошибка ErrSessionFull, получена: %v", err)
}

func TestGameManager_JoinSession_LobbyClosed(t *testing.T) {
	// Arrange: присоединение к активной сессии запрещено
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	session := waitingSession()
	session.Status = entity.SessionStatusActive
	playerRepo.On("GetByID", "player-1").Return(&entity.Player{ID: "player-1"}, nil)
	sessionRepo.On("GetByID", uint(1)).Return(session, nil)

	// Act
	err := gm.JoinSession(1, "player-1")

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
}

func TestGameManager_StartSession_Success(t *testing.T) {
	// Arrange
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	session := waitingSession()
	questions := []entity.Question{
		{ID: 100, GroupID: 10, Kind: entity.QuestionKindMultipleChoice, Text: "Столица Франции?", Options: entity.StringArray{"Париж", "Лион"}, CorrectOption: "Париж"},
	}
	sessionRepo.On("GetByID", uint(1)).Return(session, nil)
	questionRepo.On("GetByGroupID", uint(10)).Return(questions, nil)
	sessionRepo.On("UpdateStateCAS", mock.AnythingOfType("*entity.GameSession"), 1).Return(nil)
	cacheRepo.On("SetJSON", "session:1:scoreboard", mock.Anything, mock.Anything).Return(nil)

	// Act
	err := gm.StartSession(1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusActive, session.Status)
	require.NotNil(t, session.CurrentQuestionID)
	assert.Equal(t, uint(100), *session.CurrentQuestionID, "Единственный вопрос группы должен стать текущим")
	sessionRepo.AssertExpectations(t)
}

func TestGameManager_StartSession_EmptyGroup(t *testing.T) {
	// Arrange: группа без вопросов
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	session := waitingSession()
	sessionRepo.On("GetByID", uint(1)).Return(session, nil)
	questionRepo.On("GetByGroupID", uint(10)).Return([]entity.Question{}, nil)

	// Act
	err := gm.StartSession(1)

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, gamemanager.ErrEmptyGroup))
	assert.Equal(t, entity.SessionStatusWaiting, session.Status, "Статус не должен измениться")
	sessionRepo.AssertNotCalled(t, "UpdateStateCAS", mock.Anything, mock.Anything)
}

func TestGameManager_StartSession_WrongStatus(t *testing.T) {
	// Arrange: запуск уже завершенной сессии
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	session := waitingSession()
	session.Status = entity.SessionStatusFinished
	sessionRepo.On("GetByID", uint(1)).Return(session, nil)

	// Act
	err := gm.StartSession(1)

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
}

func TestGameManager_AdvanceSession_MovesToNextQuestion(t *testing.T) {
	// Arrange: два вопроса, первый текущий - advance должен выбрать второй
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	currentID := uint(100)
	session := waitingSession()
	session.Status = entity.SessionStatusActive
	session.CurrentQuestionID = &currentID
	questions := []entity.Question{
		{ID: 100, GroupID: 10, Kind: entity.QuestionKindMultipleChoice, Options: entity.StringArray{"a", "b"}, CorrectOption: "a"},
		{ID: 101, GroupID: 10, Kind: entity.QuestionKindNumerical, CorrectNumber: 42},
	}
	sessionRepo.On("GetByID", uint(1)).Return(session, nil)
	questionRepo.On("GetByGroupID", uint(10)).Return(questions, nil)
	sessionRepo.On("UpdateStateCAS", mock.AnythingOfType("*entity.GameSession"), 1).Return(nil)
	cacheRepo.On("Set", "session:1:closed:100", mock.Anything, mock.Anything).Return(nil)

	// Act
	err := gm.AdvanceSession(1)

	// Assert
	require.NoError(t, err)
	assert.True(t, session.AskedQuestionIDs.Contains(100), "Показанный вопрос должен попасть в asked")
	require.NotNil(t, session.CurrentQuestionID)
	assert.Equal(t, uint(101), *session.CurrentQuestionID, "Единственный непоказанный вопрос должен стать текущим")
	assert.Equal(t, entity.SessionStatusActive, session.Status)
}

func TestGameManager_AdvanceSession_ExhaustedFinishes(t *testing.T) {
	// Arrange: все вопросы показаны - advance завершает сессию
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	currentID := uint(100)
	session := waitingSession()
	session.Status = entity.SessionStatusActive
	session.CurrentQuestionID = &currentID
	questions := []entity.Question{
		{ID: 100, GroupID: 10, Kind: entity.QuestionKindMultipleChoice, Options: entity.StringArray{"a", "b"}, CorrectOption: "a"},
	}
	sessionRepo.On("GetByID", uint(1)).Return(session, nil)
	questionRepo.On("GetByGroupID", uint(10)).Return(questions, nil)
	sessionRepo.On("UpdateStateCAS", mock.AnythingOfType("*entity.GameSession"), 1).Return(nil)
	cacheRepo.On("Set", "session:1:closed:100", mock.Anything, mock.Anything).Return(nil)

	// Act
	err := gm.AdvanceSession(1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusFinished, session.Status)
	assert.Nil(t, session.CurrentQuestionID, "У завершенной сессии нет текущего вопроса")
}

func TestGameManager_AdvanceSession_FinishedNoOp(t *testing.T) {
	// Arrange: advance завершенной сессии - no-op без ошибки
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	session := waitingSession()
	session.Status = entity.SessionStatusFinished
	sessionRepo.On("GetByID", uint(1)).Return(session, nil)

	// Act
	err := gm.AdvanceSession(1)

	// Assert
	require.NoError(t, err)
	sessionRepo.AssertNotCalled(t, "UpdateStateCAS", mock.Anything, mock.Anything)
}

func TestGameManager_AutoAdvance_SkipsWhenQuestionAlreadyChanged(t *testing.T) {
	// Arrange: таймер отсчитывал вопрос #100, но ручной advance уже
	// перевел сессию на #200 - авто-переход обязан быть no-op
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	currentID := uint(200)
	session := waitingSession()
	session.Status = entity.SessionStatusActive
	session.CurrentQuestionID = &currentID
	session.AskedQuestionIDs = entity.UintArray{100}
	session.Version = 2
	sessionRepo.On("GetByID", uint(1)).Return(session, nil)

	// Act
	gm.autoAdvance(1, 100)

	// Assert: раунд вопроса #200 не закрыт и переход не выполнен
	sessionRepo.AssertNotCalled(t, "UpdateStateCAS", mock.Anything, mock.Anything)
	cacheRepo.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, uint(200), *session.CurrentQuestionID)
	assert.Equal(t, entity.UintArray{100}, session.AskedQuestionIDs)
}

func TestGameManager_AutoAdvance_LostRaceDoesNotAdvanceForeignRound(t *testing.T) {
	// Arrange: истечение раунда вопроса #100 проигрывает CAS-гонку ручному
	// advance. Повтор перечитывает сессию, видит текущим уже #200 и
	// останавливается - иначе таймер закрыл бы чужой раунд на нуле секунд
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	staleID := uint(100)
	stale := waitingSession()
	stale.Status = entity.SessionStatusActive
	stale.CurrentQuestionID = &staleID

	freshID := uint(200)
	fresh := waitingSession()
	fresh.Status = entity.SessionStatusActive
	fresh.CurrentQuestionID = &freshID
	fresh.AskedQuestionIDs = entity.UintArray{100}
	fresh.Version = 2

	questions := []entity.Question{
		{ID: 100, GroupID: 10, Kind: entity.QuestionKindMultipleChoice, Options: entity.StringArray{"a", "b"}, CorrectOption: "a"},
		{ID: 200, GroupID: 10, Kind: entity.QuestionKindMultipleChoice, Options: entity.StringArray{"a", "b"}, CorrectOption: "a"},
		{ID: 300, GroupID: 10, Kind: entity.QuestionKindNumerical, CorrectNumber: 42},
	}
	sessionRepo.On("GetByID", uint(1)).Return(stale, nil).Once()
	sessionRepo.On("GetByID", uint(1)).Return(fresh, nil).Once()
	questionRepo.On("GetByGroupID", uint(10)).Return(questions, nil)
	cacheRepo.On("Set", "session:1:closed:100", mock.Anything, mock.Anything).Return(nil)
	sessionRepo.On("UpdateStateCAS", mock.AnythingOfType("*entity.GameSession"), 1).Return(repository.ErrStaleSession).Once()

	// Act
	gm.autoAdvance(1, 100)

	// Assert: единственный CAS - проигранный; вопрос #200 остался текущим
	sessionRepo.AssertNumberOfCalls(t, "UpdateStateCAS", 1)
	sessionRepo.AssertNumberOfCalls(t, "GetByID", 2)
	assert.Equal(t, uint(200), *fresh.CurrentQuestionID)
	assert.Equal(t, entity.UintArray{100}, fresh.AskedQuestionIDs, "Раунд вопроса #200 не должен закрываться таймером вопроса #100")
}

func TestGameManager_LeaveSession_RemovesPlayer(t *testing.T) {
	// Arrange
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	session := waitingSession()
	session.PlayerIDs = entity.StringArray{"p1", "p2"}
	sessionRepo.On("GetByID", uint(1)).Return(session, nil)
	sessionRepo.On("UpdateStateCAS", mock.AnythingOfType("*entity.GameSession"), 1).Return(nil)
	cacheRepo.On("SRem", "session:1:players", "p1").Return(nil)

	// Act
	err := gm.LeaveSession(1, "p1")

	// Assert
	require.NoError(t, err)
	assert.False(t, session.HasPlayer("p1"), "Игрок должен исчезнуть из списка сессии")
	assert.True(t, session.HasPlayer("p2"), "Остальные игроки остаются")
	cacheRepo.AssertExpectations(t)
}

func TestGameManager_LeaveSession_LobbyClosed(t *testing.T) {
	// Arrange: после старта состав фиксирован
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	session := waitingSession()
	session.Status = entity.SessionStatusActive
	session.PlayerIDs = entity.StringArray{"p1"}
	sessionRepo.On("GetByID", uint(1)).Return(session, nil)

	// Act
	err := gm.LeaveSession(1, "p1")

	// Assert
	assert.True(t, errors.Is(err, apperrors.ErrConflict), "Выход из активной сессии должен давать конфликт")
	sessionRepo.AssertNotCalled(t, "UpdateStateCAS", mock.Anything, mock.Anything)
}

func TestGameManager_LeaveSession_NotJoined_NoOp(t *testing.T) {
	// Arrange
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	session := waitingSession()
	sessionRepo.On("GetByID", uint(1)).Return(session, nil)

	// Act
	err := gm.LeaveSession(1, "ghost")

	// Assert
	require.NoError(t, err)
	sessionRepo.AssertNotCalled(t, "UpdateStateCAS", mock.Anything, mock.Anything)
}

func TestGameManager_GetState_RebuildsLobbyCache(t *testing.T) {
	// Arrange: Redis-множество лобби потеряно - счетчик берется из
	// авторитетной записи сессии, кеш пересобирается
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	session := waitingSession()
	session.PlayerIDs = entity.StringArray{"p1", "p2"}
	sessionRepo.On("GetByID", uint(1)).Return(session, nil)
	cacheRepo.On("SCard", "session:1:players").Return(int64(0), nil)
	cacheRepo.On("Delete", "session:1:players").Return(nil)
	cacheRepo.On("SAdd", "session:1:players", "p1", "p2").Return(nil)
	cacheRepo.On("ExpireAt", "session:1:players", mock.AnythingOfType("time.Time")).Return(nil)

	// Act
	state, err := gm.GetState(1, "")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, state.PlayerCount, "Счетчик должен идти из записи сессии")
	cacheRepo.AssertExpectations(t)
}

func TestGameManager_FinishSession_Force(t *testing.T) {
	// Arrange: принудительное завершение при непоказанных вопросах
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	currentID := uint(100)
	session := waitingSession()
	session.Status = entity.SessionStatusActive
	session.CurrentQuestionID = &currentID
	sessionRepo.On("GetByID", uint(1)).Return(session, nil)
	sessionRepo.On("UpdateStateCAS", mock.AnythingOfType("*entity.GameSession"), 1).Return(nil)
	cacheRepo.On("Set", "session:1:closed:100", mock.Anything, mock.Anything).Return(nil)

	// Act
	err := gm.FinishSession(1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusFinished, session.Status)
	assert.True(t, session.AskedQuestionIDs.Contains(100))
}

func TestGameManager_RestartSession_ResetsState(t *testing.T) {
	// Arrange: рестарт завершенной сессии с накопленной историей
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	session := waitingSession()
	session.Status = entity.SessionStatusFinished
	session.AskedQuestionIDs = entity.UintArray{100, 101}
	session.PlayerIDs = entity.StringArray{"p1", "p2"}
	sessionRepo.On("GetByID", uint(1)).Return(session, nil)
	sessionRepo.On("UpdateStateCAS", mock.AnythingOfType("*entity.GameSession"), 1).Return(nil)
	answerRepo.On("DeleteBySession", uint(1)).Return(nil)
	cacheRepo.On("Delete", "session:1:closed:100").Return(nil)
	cacheRepo.On("Delete", "session:1:closed:101").Return(nil)
	cacheRepo.On("Delete", "session:1:scoreboard").Return(nil)
	cacheRepo.On("Delete", "session:1:facts").Return(nil)

	// Act
	err := gm.RestartSession(1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusWaiting, session.Status)
	assert.Empty(t, session.AskedQuestionIDs, "История показанных вопросов должна очиститься")
	assert.Nil(t, session.CurrentQuestionID)
	assert.Equal(t, entity.StringArray{"p1", "p2"}, session.PlayerIDs, "Состав лобби должен сохраниться")
	answerRepo.AssertExpectations(t)
	cacheRepo.AssertExpectations(t)
}

func TestGameManager_SubmitAnswer_Success(t *testing.T) {
	// Arrange: активная сессия, игрок в лобби, верный ответ на текущий вопрос
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	currentID := uint(100)
	session := waitingSession()
	session.Status = entity.SessionStatusActive
	session.CurrentQuestionID = &currentID
	session.PlayerIDs = entity.StringArray{"player-1"}
	question := &entity.Question{ID: 100, Kind: entity.QuestionKindMultipleChoice, Options: entity.StringArray{"Париж", "Лион"}, CorrectOption: "Париж"}

	state := gamemanager.NewActiveSessionState(1)
	state.SetCurrentQuestion(question, time.Now())
	gm.activeStates.Store(uint(1), state)

	sessionRepo.On("GetByID", uint(1)).Return(session, nil)
	cacheRepo.On("Exists", "session:1:closed:100").Return(false, nil)
	answerRepo.On("Save", mock.AnythingOfType("*entity.PlayerAnswer")).Return(nil)
	cacheRepo.On("GetJSON", "session:1:scoreboard", mock.Anything).Return(apperrors.ErrNotFound)
	cacheRepo.On("SetJSON", "session:1:scoreboard", mock.Anything, mock.Anything).Return(nil)

	// Act
	result, err := gm.SubmitAnswer(1, "player-1", 100, "Париж")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsCorrect)
	assert.Equal(t, 100, result.Points, "При лимите 0 начисляется только база")
	assert.Equal(t, 100, result.Total)
	answerRepo.AssertExpectations(t)
}

func TestGameManager_SubmitAnswer_Duplicate(t *testing.T) {
	// Arrange: повторная отправка - unique constraint отлавливает дубликат
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	currentID := uint(100)
	session := waitingSession()
	session.Status = entity.SessionStatusActive
	session.CurrentQuestionID = &currentID
	session.PlayerIDs = entity.StringArray{"player-1"}
	question := &entity.Question{ID: 100, Kind: entity.QuestionKindMultipleChoice, Options: entity.StringArray{"a", "b"}, CorrectOption: "a"}

	state := gamemanager.NewActiveSessionState(1)
	state.SetCurrentQuestion(question, time.Now())
	gm.activeStates.Store(uint(1), state)

	sessionRepo.On("GetByID", uint(1)).Return(session, nil)
	cacheRepo.On("Exists", "session:1:closed:100").Return(false, nil)
	answerRepo.On("Save", mock.AnythingOfType("*entity.PlayerAnswer")).Return(repository.ErrDuplicateAnswer)

	// Act
	result, err := gm.SubmitAnswer(1, "player-1", 100, "b")

	// Assert
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, gamemanager.ErrAlreadyAnswered))
	// Сумма игрока не должна меняться при дубликате
	cacheRepo.AssertNotCalled(t, "SetJSON", mock.Anything, mock.Anything, mock.Anything)
}

func TestGameManager_SubmitAnswer_RoundClosed(t *testing.T) {
	// Arrange: раунд закрыт флагом - поздняя отправка отклоняется
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	currentID := uint(101)
	session := waitingSession()
	session.Status = entity.SessionStatusActive
	session.CurrentQuestionID = &currentID
	session.PlayerIDs = entity.StringArray{"player-1"}
	sessionRepo.On("GetByID", uint(1)).Return(session, nil)
	cacheRepo.On("Exists", "session:1:closed:100").Return(true, nil)

	// Act
	result, err := gm.SubmitAnswer(1, "player-1", 100, "a")

	// Assert
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, gamemanager.ErrAlreadyAnswered))
	answerRepo.AssertNotCalled(t, "Save", mock.Anything)
}

func TestGameManager_SubmitAnswer_NotJoined(t *testing.T) {
	// Arrange: игрок не присоединялся к сессии
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	currentID := uint(100)
	session := waitingSession()
	session.Status = entity.SessionStatusActive
	session.CurrentQuestionID = &currentID
	sessionRepo.On("GetByID", uint(1)).Return(session, nil)

	// Act
	result, err := gm.SubmitAnswer(1, "stranger", 100, "a")

	// Assert
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrPlayerNotJoined))
}

func TestGameManager_SubmitAnswer_WrongQuestion(t *testing.T) {
	// Arrange: ответ на вопрос, который не является текущим
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	currentID := uint(100)
	session := waitingSession()
	session.Status = entity.SessionStatusActive
	session.CurrentQuestionID = &currentID
	session.PlayerIDs = entity.StringArray{"player-1"}
	sessionRepo.On("GetByID", uint(1)).Return(session, nil)
	cacheRepo.On("Exists", "session:1:closed:999").Return(false, nil)

	// Act
	result, err := gm.SubmitAnswer(1, "player-1", 999, "a")

	// Assert
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrNotCurrentQuestion))
}

func TestGameManager_SubmitAnswer_SessionNotActive(t *testing.T) {
	// Arrange: ответы принимаются только в active
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	session := waitingSession()
	session.PlayerIDs = entity.StringArray{"player-1"}
	sessionRepo.On("GetByID", uint(1)).Return(session, nil)

	// Act
	result, err := gm.SubmitAnswer(1, "player-1", 100, "a")

	// Assert
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
}

func TestGameManager_Scoreboard_RebuildFromAnswers(t *testing.T) {
	// Arrange: снапшота в Redis нет - таблица собирается из сохраненных ответов
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	cacheRepo.On("GetJSON", "session:1:scoreboard", mock.Anything).Return(apperrors.ErrNotFound)
	answerRepo.On("GetBySession", uint(1)).Return([]entity.PlayerAnswer{
		{SessionID: 1, PlayerID: "p1", QuestionID: 100, Points: 100},
		{SessionID: 1, PlayerID: "p2", QuestionID: 100, Points: 150},
		{SessionID: 1, PlayerID: "p1", QuestionID: 101, Points: 50},
	}, nil)

	// Act
	board, err := gm.Scoreboard(1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 150, board.Total("p1"))
	assert.Equal(t, 150, board.Total("p2"))
	assert.Equal(t, []string{"p1", "p2"}, board.Order, "Порядок первого набора очков должен сохраниться")
}

func TestGameManager_Rank_UsesSnapshotOrder(t *testing.T) {
	// Arrange: при равенстве очков выше тот, кто набрал первым
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	cacheRepo.On("GetJSON", "session:1:scoreboard", mock.Anything).Return(apperrors.ErrNotFound)
	answerRepo.On("GetBySession", uint(1)).Return([]entity.PlayerAnswer{
		{SessionID: 1, PlayerID: "alice", Points: 100},
		{SessionID: 1, PlayerID: "bob", Points: 150},
		{SessionID: 1, PlayerID: "carol", Points: 100},
	}, nil)

	// Act
	results, err := gm.Rank(1)

	// Assert
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "bob", results[0].PlayerID)
	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, "alice", results[1].PlayerID, "При равных очках alice выше carol - набрала раньше")
	assert.Equal(t, 2, results[1].Rank)
	assert.Equal(t, "carol", results[2].PlayerID)
	assert.Equal(t, 3, results[2].Rank)
}

func TestGameManager_GetState_Waiting(t *testing.T) {
	// Arrange
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	session := waitingSession()
	session.PlayerIDs = entity.StringArray{"p1", "p2"}
	sessionRepo.On("GetByID", uint(1)).Return(session, nil)
	cacheRepo.On("SCard", "session:1:players").Return(int64(2), nil)

	// Act
	state, err := gm.GetState(1, "")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusWaiting, state.Status)
	assert.Equal(t, 2, state.PlayerCount)
	assert.Nil(t, state.CurrentQuestion, "В waiting нет текущего вопроса")
}

func TestGameManager_GetState_ActiveHidesCorrectAnswer(t *testing.T) {
	// Arrange: проекция текущего вопроса не должна содержать правильный ответ
	sessionRepo := new(MockGameSessionRepository)
	questionRepo := new(MockQuestionRepository)
	answerRepo := new(MockPlayerAnswerRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)
	gm := newTestGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo)
	defer gm.Shutdown()

	currentID := uint(100)
	session := waitingSession()
	session.Status = entity.SessionStatusActive
	session.CurrentQuestionID = &currentID
	session.TimePerQuestionSec = 30
	question := &entity.Question{ID: 100, Kind: entity.QuestionKindMultipleChoice, Text: "Столица Франции?", Options: entity.StringArray{"Париж", "Лион"}, CorrectOption: "Париж"}

	state := gamemanager.NewActiveSessionState(1)
	state.SetCurrentQuestion(question, time.Now())
	gm.activeStates.Store(uint(1), state)

	sessionRepo.On("GetByID", uint(1)).Return(session, nil)
	cacheRepo.On("SCard", "session:1:players").Return(int64(0), nil)

	// Act
	view, err := gm.GetState(1, "")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, view.CurrentQuestion)
	assert.Equal(t, uint(100), view.CurrentQuestion.QuestionID)
	assert.Equal(t, 30, view.CurrentQuestion.TimeLimit)
	assert.Greater(t, view.RemainingSec, 0, "До истечения лимита остаток должен быть положительным")
	assert.LessOrEqual(t, view.RemainingSec, 30)
}
