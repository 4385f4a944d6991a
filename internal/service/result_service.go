package service

import (
	"fmt"
	"log"

	"github.com/yourusername/quizhub-api/internal/domain/entity"
	"github.com/yourusername/quizhub-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizhub-api/internal/pkg/errors"
)

// PlayerResult - строка таблицы лидеров сессии
type PlayerResult struct {
	Rank              uint   `json:"rank"`
	PlayerID          string `json:"player_id"`
	PlayerName        string `json:"player_name"`
	Score             int    `json:"score"`
	CorrectAnswers    int    `json:"correct_answers"`
	AnsweredQuestions int    `json:"answered_questions"`
	TotalQuestions    int    `json:"total_questions"`
}

// SessionResults - результаты сессии: таблица лидеров и факты.
// Доступны в любой момент; финальными становятся в finished.
type SessionResults struct {
	SessionID uint           `json:"session_id"`
	Status    string         `json:"status"`
	Final     bool           `json:"final"`
	Results   []PlayerResult `json:"results"`
	Facts     []Fact         `json:"facts,omitempty"`
}

// ResultService строит таблицы лидеров по снапшотам очков GameManager,
// дополняя их именами игроков и статистикой ответов
type ResultService struct {
	gameManager *GameManager
	sessionRepo repository.GameSessionRepository
	answerRepo  repository.PlayerAnswerRepository
	playerRepo  repository.PlayerRepository
}

// NewResultService создает новый сервис результатов
func NewResultService(
	gameManager *GameManager,
	sessionRepo repository.GameSessionRepository,
	answerRepo repository.PlayerAnswerRepository,
	playerRepo repository.PlayerRepository,
) *ResultService {
	return &ResultService{
		gameManager: gameManager,
		sessionRepo: sessionRepo,
		answerRepo:  answerRepo,
		playerRepo:  playerRepo,
	}
}

// GetSessionResults возвращает таблицу лидеров сессии.
// Для завершенной сессии добавляются сгенерированные факты.
func (s *ResultService) GetSessionResults(sessionID uint) (*SessionResults, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}

	ranked, err := s.gameManager.Rank(sessionID)
	if err != nil {
		return nil, err
	}

	// Статистика ответов для каждой строки таблицы
	answers, err := s.answerRepo.GetBySession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	correctByPlayer := make(map[string]int)
	answeredByPlayer := make(map[string]int)
	for _, a := range answers {
		answeredByPlayer[a.PlayerID]++
		if a.IsCorrect {
			correctByPlayer[a.PlayerID]++
		}
	}

	names, err := s.playerNames(ranked)
	if err != nil {
		return nil, err
	}

	totalQuestions := len(session.AskedQuestionIDs)

	results := make([]PlayerResult, 0, len(ranked))
	for _, r := range ranked {
		name := names[r.PlayerID]
		if name == "" {
			// Игрок мог быть удален после игры - строка остается
			name = r.PlayerID
		}
		results = append(results, PlayerResult{
			Rank:              uint(r.Rank),
			PlayerID:          r.PlayerID,
			PlayerName:        name,
			Score:             r.Score,
			CorrectAnswers:    correctByPlayer[r.PlayerID],
			AnsweredQuestions: answeredByPlayer[r.PlayerID],
			TotalQuestions:    totalQuestions,
		})
	}

	out := &SessionResults{
		SessionID: sessionID,
		Status:    session.Status,
		Final:     session.IsFinished(),
		Results:   results,
	}

	if session.IsFinished() {
		out.Facts = s.gameManager.Facts(sessionID)
	}

	return out, nil
}

// GetPlayerResult возвращает строку таблицы лидеров одного игрока
func (s *ResultService) GetPlayerResult(sessionID uint, playerID string) (*PlayerResult, error) {
	results, err := s.GetSessionResults(sessionID)
	if err != nil {
		return nil, err
	}
	for i := range results.Results {
		if results.Results[i].PlayerID == playerID {
			return &results.Results[i], nil
		}
	}
	return nil, fmt.Errorf("%w: player %s has no result in session #%d", apperrors.ErrNotFound, playerID, sessionID)
}

// playerNames резолвит имена игроков одним запросом
func (s *ResultService) playerNames(ranked []entity.RankedResult) (map[string]string, error) {
	ids := make([]string, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.PlayerID)
	}
	players, err := s.playerRepo.GetByIDs(ids)
	if err != nil {
		log.Printf("[ResultService] WARNING: Не удалось получить имена игроков: %v", err)
		return map[string]string{}, nil
	}
	names := make(map[string]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}
	return names, nil
}
