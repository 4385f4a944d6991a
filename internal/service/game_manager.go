package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/yourusername/quizhub-api/internal/domain/entity"
	"github.com/yourusername/quizhub-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizhub-api/internal/pkg/errors"
	"github.com/yourusername/quizhub-api/internal/service/gamemanager"
)

// Ключи ephemeral-состояния сессии в Redis
const (
	lobbyKeyFmt      = "session:%d:players"
	scoreboardKeyFmt = "session:%d:scoreboard"
	roundClosedFmt   = "session:%d:closed:%d"
	factsKeyFmt      = "session:%d:facts"
)

// GameManager владеет жизненным циклом игровых сессий:
// waiting → active → finished, плюс restart из любого состояния.
// Координирует секвенсер вопросов, таймер раундов и подсчет очков.
// Каждый переход попадает в базу ровно один раз через условное
// обновление (CAS по version); проигравший гонку получает StaleSession.
type GameManager struct {
	// Компоненты системы
	sequencer *gamemanager.Sequencer
	timer     *gamemanager.RoundTimer
	scorer    *gamemanager.Scorer
	ranker    *gamemanager.Ranker

	// Репозитории
	sessionRepo  repository.GameSessionRepository
	questionRepo repository.QuestionRepository
	answerRepo   repository.PlayerAnswerRepository
	playerRepo   repository.PlayerRepository
	cacheRepo    repository.CacheRepository

	// Генератор фактов между раундами (может быть nil - факты отключены)
	facts FactGenerator

	config *gamemanager.Config

	// In-memory состояние активных сессий
	activeStates sync.Map // map[uint]*gamemanager.ActiveSessionState

	// Сериализация начислений в ScoreBoard в рамках одной сессии
	boardMu sync.Mutex

	// Контекст для управления жизненным циклом
	ctx    context.Context
	cancel context.CancelFunc
}

// NewGameManager создает новый менеджер игровых сессий
func NewGameManager(
	sessionRepo repository.GameSessionRepository,
	questionRepo repository.QuestionRepository,
	answerRepo repository.PlayerAnswerRepository,
	playerRepo repository.PlayerRepository,
	cacheRepo repository.CacheRepository,
	facts FactGenerator,
	config *gamemanager.Config,
) *GameManager {
	if config == nil {
		config = gamemanager.DefaultConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())

	gm := &GameManager{
		sequencer:    gamemanager.NewSequencer(),
		timer:        gamemanager.NewRoundTimer(),
		scorer:       gamemanager.NewScorer(),
		ranker:       gamemanager.NewRanker(),
		sessionRepo:  sessionRepo,
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		playerRepo:   playerRepo,
		cacheRepo:    cacheRepo,
		facts:        facts,
		config:       config,
		ctx:          ctx,
		cancel:       cancel,
	}

	log.Println("[GameManager] Менеджер игровых сессий успешно инициализирован")
	return gm
}

// JoinSession добавляет игрока в лобби сессии.
// Повторное присоединение идемпотентно. Лобби открыто только в waiting.
func (gm *GameManager) JoinSession(sessionID uint, playerID string) error {
	if _, err := gm.playerRepo.GetByID(playerID); err != nil {
		return err
	}

	session, err := gm.sessionRepo.GetByID(sessionID)
	if err != nil {
		return err
	}

	if !session.IsWaiting() {
		return fmt.Errorf("%w: session #%d is %s, lobby is closed", apperrors.ErrConflict, sessionID, session.Status)
	}

	if session.HasPlayer(playerID) {
		return nil // Уже в лобби
	}

	if session.IsFull() {
		return fmt.Errorf("%w: session #%d (%d/%d)", ErrSessionFull, sessionID, len(session.PlayerIDs), session.MaxPlayers)
	}

	session.PlayerIDs = append(session.PlayerIDs, playerID)
	if err := gm.sessionRepo.UpdateStateCAS(session, session.Version); err != nil {
		return err
	}

	// Запись в сессии авторитетна; Redis-множество - производный кеш
	// присутствия, пересобираемый при расхождении
	lobbyKey := fmt.Sprintf(lobbyKeyFmt, sessionID)
	if errCache := gm.cacheRepo.SAdd(lobbyKey, playerID); errCache != nil {
		log.Printf("[GameManager] WARNING: Не удалось обновить лобби-кеш сессии #%d: %v", sessionID, errCache)
	} else if errCache := gm.cacheRepo.ExpireAt(lobbyKey, time.Now().Add(gm.config.LobbyTTL)); errCache != nil {
		log.Printf("[GameManager] WARNING: Не удалось продлить лобби-кеш сессии #%d: %v", sessionID, errCache)
	}

	log.Printf("[GameManager] Игрок %s присоединился к сессии #%d (%d игроков)", playerID, sessionID, len(session.PlayerIDs))
	return nil
}

// LeaveSession убирает игрока из лобби. Допустимо только пока сессия
// ждет старта: после него состав фиксирован. Выход игрока, которого
// нет в лобби, - no-op.
func (gm *GameManager) LeaveSession(sessionID uint, playerID string) error {
	session, err := gm.sessionRepo.GetByID(sessionID)
	if err != nil {
		return err
	}

	if !session.IsWaiting() {
		return fmt.Errorf("%w: session #%d is %s, lobby is closed", apperrors.ErrConflict, sessionID, session.Status)
	}

	if !session.HasPlayer(playerID) {
		return nil
	}

	remaining := make(entity.StringArray, 0, len(session.PlayerIDs)-1)
	for _, id := range session.PlayerIDs {
		if id != playerID {
			remaining = append(remaining, id)
		}
	}
	session.PlayerIDs = remaining

	if err := gm.sessionRepo.UpdateStateCAS(session, session.Version); err != nil {
		return err
	}

	lobbyKey := fmt.Sprintf(lobbyKeyFmt, sessionID)
	if errCache := gm.cacheRepo.SRem(lobbyKey, playerID); errCache != nil {
		log.Printf("[GameManager] WARNING: Не удалось обновить лобби-кеш сессии #%d: %v", sessionID, errCache)
	}

	log.Printf("[GameManager] Игрок %s покинул сессию #%d (%d игроков)", playerID, sessionID, len(session.PlayerIDs))
	return nil
}

// StartSession запускает сессию: waiting → active.
// Требует хотя бы один вопрос в группе (иначе ErrEmptyGroup).
func (gm *GameManager) StartSession(sessionID uint) error {
	session, err := gm.sessionRepo.GetByID(sessionID)
	if err != nil {
		return err
	}

	if !session.IsWaiting() {
		return fmt.Errorf("%w: session #%d cannot start from status %s", apperrors.ErrConflict, sessionID, session.Status)
	}

	questions, err := gm.questionRepo.GetByGroupID(session.GroupID)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	if len(questions) == 0 {
		return fmt.Errorf("%w: group #%d", gamemanager.ErrEmptyGroup, session.GroupID)
	}

	first, err := gm.sequencer.Next(questions, session.AskedQuestionIDs)
	if err != nil {
		// При непустой группе и пустом asked-списке невозможно
		return err
	}

	session.Status = entity.SessionStatusActive
	session.CurrentQuestionID = &first.ID

	if err := gm.sessionRepo.UpdateStateCAS(session, session.Version); err != nil {
		return err
	}

	// Свежая таблица очков на старте
	boardKey := fmt.Sprintf(scoreboardKeyFmt, sessionID)
	if errCache := gm.cacheRepo.SetJSON(boardKey, entity.NewScoreBoard(sessionID), gm.config.ScoreboardTTL); errCache != nil {
		log.Printf("[GameManager] WARNING: Не удалось инициализировать таблицу очков сессии #%d: %v", sessionID, errCache)
	}

	state := gamemanager.NewActiveSessionState(sessionID)
	state.SetCurrentQuestion(first, time.Now())
	gm.activeStates.Store(sessionID, state)

	firstID := first.ID
	gm.timer.Start(gm.ctx, sessionID, session.TimePerQuestionSec, func() {
		gm.autoAdvance(sessionID, firstID)
	})

	log.Printf("[GameManager] Сессия #%d запущена, первый вопрос #%d", sessionID, first.ID)
	return nil
}

// AdvanceSession переводит сессию к следующему вопросу или завершает ее,
// когда непоказанных вопросов не осталось. Вызов для уже завершенной
// сессии - no-op. Ручной вызов отменяет активный отсчет раунда.
func (gm *GameManager) AdvanceSession(sessionID uint) error {
	// Отсчет снимается до перехода, который он не запускал сам
	gm.timer.Cancel(sessionID)
	return gm.advance(sessionID, nil)
}

// autoAdvance вызывается таймером по истечении времени раунда вопроса
// questionID. Проигрыш CAS-гонки здесь ретраится: у авто-перехода нет
// пользователя, который мог бы повторить запрос. Если при перечитывании
// вопрос уже не текущий (ручной advance выиграл гонку), повтор не нужен.
func (gm *GameManager) autoAdvance(sessionID, questionID uint) {
	var err error
	for attempt := 0; attempt < gm.config.MaxRetries; attempt++ {
		err = gm.advance(sessionID, &questionID)
		if err == nil || !errors.Is(err, repository.ErrStaleSession) {
			return
		}
		log.Printf("[GameManager] Авто-переход сессии #%d проиграл гонку (попытка %d), повтор", sessionID, attempt+1)
		time.Sleep(gm.config.RetryInterval)
	}
	log.Printf("[GameManager] ОШИБКА авто-перехода сессии #%d: %v", sessionID, err)
}

// advance выполняет сам переход без работы с таймером вызывающего.
// timedQuestionID != nil означает переход от таймера: он действителен,
// только пока отсчитанный вопрос все еще текущий.
func (gm *GameManager) advance(sessionID uint, timedQuestionID *uint) error {
	session, err := gm.sessionRepo.GetByID(sessionID)
	if err != nil {
		return err
	}

	if session.IsFinished() {
		return nil // Идемпотентная защита: advance после finish - no-op
	}
	if !session.IsActive() {
		return fmt.Errorf("%w: session #%d cannot advance from status %s", apperrors.ErrConflict, sessionID, session.Status)
	}

	if timedQuestionID != nil {
		if session.CurrentQuestionID == nil || *session.CurrentQuestionID != *timedQuestionID {
			log.Printf("[GameManager] Авто-переход сессии #%d пропущен: вопрос #%d уже не текущий", sessionID, *timedQuestionID)
			return nil
		}
	}

	// Закрываем текущий раунд: поздние отправки получат AlreadyAnswered
	if session.CurrentQuestionID != nil {
		gm.closeRound(sessionID, *session.CurrentQuestionID)
		if !session.AskedQuestionIDs.Contains(*session.CurrentQuestionID) {
			session.AskedQuestionIDs = append(session.AskedQuestionIDs, *session.CurrentQuestionID)
		}
	}

	questions, err := gm.questionRepo.GetByGroupID(session.GroupID)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	next, err := gm.sequencer.Next(questions, session.AskedQuestionIDs)
	if errors.Is(err, gamemanager.ErrExhausted) {
		return gm.finishLocked(session)
	}
	if err != nil {
		return err
	}

	session.CurrentQuestionID = &next.ID
	if err := gm.sessionRepo.UpdateStateCAS(session, session.Version); err != nil {
		return err
	}

	if stateVal, ok := gm.activeStates.Load(sessionID); ok {
		stateVal.(*gamemanager.ActiveSessionState).SetCurrentQuestion(next, time.Now())
	} else {
		state := gamemanager.NewActiveSessionState(sessionID)
		state.SetCurrentQuestion(next, time.Now())
		gm.activeStates.Store(sessionID, state)
	}

	nextID := next.ID
	gm.timer.Start(gm.ctx, sessionID, session.TimePerQuestionSec, func() {
		gm.autoAdvance(sessionID, nextID)
	})

	log.Printf("[GameManager] Сессия #%d: следующий вопрос #%d (%d показано)", sessionID, next.ID, len(session.AskedQuestionIDs))
	return nil
}

// FinishSession принудительно завершает сессию независимо от оставшихся
// вопросов (админ-override). Для уже завершенной сессии - no-op.
func (gm *GameManager) FinishSession(sessionID uint) error {
	gm.timer.Cancel(sessionID)

	session, err := gm.sessionRepo.GetByID(sessionID)
	if err != nil {
		return err
	}

	if session.IsFinished() {
		return nil
	}

	if session.CurrentQuestionID != nil {
		gm.closeRound(sessionID, *session.CurrentQuestionID)
		if !session.AskedQuestionIDs.Contains(*session.CurrentQuestionID) {
			session.AskedQuestionIDs = append(session.AskedQuestionIDs, *session.CurrentQuestionID)
		}
	}

	return gm.finishLocked(session)
}

// finishLocked переводит уже прочитанную сессию в finished и запускает
// генерацию фактов. Таймер к этому моменту снят.
func (gm *GameManager) finishLocked(session *entity.GameSession) error {
	session.Status = entity.SessionStatusFinished
	session.CurrentQuestionID = nil

	if err := gm.sessionRepo.UpdateStateCAS(session, session.Version); err != nil {
		return err
	}

	gm.activeStates.Delete(session.ID)
	log.Printf("[GameManager] Сессия #%d завершена (%d вопросов показано)", session.ID, len(session.AskedQuestionIDs))

	// Факты генерируются в фоне: их отсутствие не блокирует результаты
	go gm.generateFacts(session.ID, session.AskedQuestionIDs)

	return nil
}

// RestartSession возвращает сессию в waiting из любого состояния,
// очищая показанные вопросы, текущий указатель и таблицу очков.
// Состав лобби сохраняется.
func (gm *GameManager) RestartSession(sessionID uint) error {
	gm.timer.Cancel(sessionID)

	session, err := gm.sessionRepo.GetByID(sessionID)
	if err != nil {
		return err
	}

	// Флаги закрытых раундов прошлой игры больше не актуальны
	for _, qid := range session.AskedQuestionIDs {
		gm.deleteRoundFlag(sessionID, qid)
	}
	if session.CurrentQuestionID != nil {
		gm.deleteRoundFlag(sessionID, *session.CurrentQuestionID)
	}

	session.Status = entity.SessionStatusWaiting
	session.AskedQuestionIDs = entity.UintArray{}
	session.CurrentQuestionID = nil

	if err := gm.sessionRepo.UpdateStateCAS(session, session.Version); err != nil {
		return err
	}

	gm.activeStates.Delete(sessionID)

	if err := gm.answerRepo.DeleteBySession(sessionID); err != nil {
		log.Printf("[GameManager] WARNING: Не удалось удалить ответы сессии #%d при рестарте: %v", sessionID, err)
	}

	boardKey := fmt.Sprintf(scoreboardKeyFmt, sessionID)
	if errCache := gm.cacheRepo.Delete(boardKey); errCache != nil {
		log.Printf("[GameManager] WARNING: Не удалось сбросить таблицу очков сессии #%d: %v", sessionID, errCache)
	}
	factsKey := fmt.Sprintf(factsKeyFmt, sessionID)
	if errCache := gm.cacheRepo.Delete(factsKey); errCache != nil {
		log.Printf("[GameManager] WARNING: Не удалось сбросить факты сессии #%d: %v", sessionID, errCache)
	}

	log.Printf("[GameManager] Сессия #%d перезапущена, лобби открыто", sessionID)
	return nil
}

// AnswerResult - итог обработки ответа для отправившего игрока
type AnswerResult struct {
	QuestionID uint `json:"question_id"`
	IsCorrect  bool `json:"is_correct"`
	Points     int  `json:"points"`
	Total      int  `json:"total"`
}

// SubmitAnswer обрабатывает ответ игрока на текущий вопрос сессии.
// Ответы разных игроков независимы и могут приходить параллельно;
// повторная отправка одной тройки (session, player, question)
// отклоняется с ErrAlreadyAnswered, сумма игрока не меняется.
func (gm *GameManager) SubmitAnswer(sessionID uint, playerID string, questionID uint, rawAnswer string) (*AnswerResult, error) {
	session, err := gm.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}

	if !session.IsActive() {
		return nil, fmt.Errorf("%w: session #%d is not accepting answers (status %s)", apperrors.ErrConflict, sessionID, session.Status)
	}
	if !session.HasPlayer(playerID) {
		return nil, fmt.Errorf("%w: player %s, session #%d", ErrPlayerNotJoined, playerID, sessionID)
	}

	// Раунд закрыт - независимо от того, отвечал игрок или нет
	closed, err := gm.isRoundClosed(sessionID, questionID)
	if err != nil {
		log.Printf("[GameManager] WARNING: Ошибка проверки флага раунда сессии #%d: %v", sessionID, err)
	}
	if closed {
		return nil, fmt.Errorf("%w: question #%d round is closed", gamemanager.ErrAlreadyAnswered, questionID)
	}

	if session.CurrentQuestionID == nil || *session.CurrentQuestionID != questionID {
		return nil, fmt.Errorf("%w: question #%d", ErrNotCurrentQuestion, questionID)
	}

	question, startTime, err := gm.currentQuestion(sessionID, questionID)
	if err != nil {
		return nil, err
	}

	elapsedSec := int(time.Since(startTime).Seconds())
	points, isCorrect := gm.scorer.Score(question, rawAnswer, elapsedSec, session.TimePerQuestionSec)

	// DB-first: сначала сохраняем ответ, дубликат ловим по unique constraint
	answer := &entity.PlayerAnswer{
		SessionID:   sessionID,
		PlayerID:    playerID,
		QuestionID:  questionID,
		RawAnswer:   rawAnswer,
		IsCorrect:   isCorrect,
		Points:      points,
		SubmittedAt: time.Now(),
	}
	if err := gm.answerRepo.Save(answer); err != nil {
		if errors.Is(err, repository.ErrDuplicateAnswer) {
			return nil, fmt.Errorf("%w: player %s, question #%d", gamemanager.ErrAlreadyAnswered, playerID, questionID)
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	total := gm.accumulate(sessionID, playerID, points)

	log.Printf("[GameManager] Сессия #%d: игрок %s ответил на вопрос #%d (верно: %t, очки: %d)",
		sessionID, playerID, questionID, isCorrect, points)

	return &AnswerResult{
		QuestionID: questionID,
		IsCorrect:  isCorrect,
		Points:     points,
		Total:      total,
	}, nil
}

// currentQuestion возвращает текущий вопрос из in-memory состояния,
// при его отсутствии (например, после рестарта процесса) - из базы
func (gm *GameManager) currentQuestion(sessionID, questionID uint) (*entity.Question, time.Time, error) {
	if stateVal, ok := gm.activeStates.Load(sessionID); ok {
		question, start := stateVal.(*gamemanager.ActiveSessionState).GetCurrentQuestion()
		if question != nil && question.ID == questionID {
			return question, start, nil
		}
	}

	question, err := gm.questionRepo.GetByID(questionID)
	if err != nil {
		return nil, time.Time{}, err
	}
	// Время показа потеряно - бонус за скорость считаем от "сейчас"
	return question, time.Now(), nil
}

// accumulate добавляет очки в снапшот таблицы очков.
// Начисления сериализуются мьютексом: GetJSON/SetJSON не атомарны.
func (gm *GameManager) accumulate(sessionID uint, playerID string, points int) int {
	gm.boardMu.Lock()
	defer gm.boardMu.Unlock()

	boardKey := fmt.Sprintf(scoreboardKeyFmt, sessionID)
	board := entity.NewScoreBoard(sessionID)
	if err := gm.cacheRepo.GetJSON(boardKey, board); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		log.Printf("[GameManager] WARNING: Не удалось прочитать таблицу очков сессии #%d: %v", sessionID, err)
	}

	board.Add(playerID, points)

	if err := gm.cacheRepo.SetJSON(boardKey, board, gm.config.ScoreboardTTL); err != nil {
		log.Printf("[GameManager] WARNING: Не удалось сохранить таблицу очков сессии #%d: %v", sessionID, err)
	}

	return board.Total(playerID)
}

// Scoreboard возвращает текущий снапшот таблицы очков сессии.
// При отсутствии снапшота в Redis таблица пересобирается из
// сохраненных ответов (в порядке их отправки).
func (gm *GameManager) Scoreboard(sessionID uint) (*entity.ScoreBoard, error) {
	boardKey := fmt.Sprintf(scoreboardKeyFmt, sessionID)
	board := entity.NewScoreBoard(sessionID)
	err := gm.cacheRepo.GetJSON(boardKey, board)
	if err == nil {
		return board, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		log.Printf("[GameManager] WARNING: Снапшот таблицы очков сессии #%d недоступен, пересборка из ответов: %v", sessionID, err)
	}

	answers, err := gm.answerRepo.GetBySession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	board = entity.NewScoreBoard(sessionID)
	for _, a := range answers {
		board.Add(a.PlayerID, a.Points)
	}
	return board, nil
}

// Rank строит таблицу лидеров по текущему снапшоту очков
func (gm *GameManager) Rank(sessionID uint) ([]entity.RankedResult, error) {
	board, err := gm.Scoreboard(sessionID)
	if err != nil {
		return nil, err
	}
	return gm.ranker.Rank(board), nil
}

// SessionState - проекция состояния сессии для опроса клиентами.
// Переходы наблюдаются перечитыванием, а не push-уведомлениями.
type SessionState struct {
	SessionID       uint          `json:"session_id"`
	Status          string        `json:"status"`
	PlayerCount     int           `json:"player_count"`
	AskedCount      int           `json:"asked_count"`
	CurrentQuestion *QuestionView `json:"current_question,omitempty"`
	RemainingSec    int           `json:"remaining_sec"`
	YourTotal       int           `json:"your_total"`
}

// QuestionView - текущий вопрос без правильного ответа
type QuestionView struct {
	QuestionID uint     `json:"question_id"`
	Kind       string   `json:"kind"`
	Text       string   `json:"text"`
	Options    []string `json:"options,omitempty"`
	TimeLimit  int      `json:"time_limit"`
}

// GetState возвращает состояние сессии для игрока (polling)
func (gm *GameManager) GetState(sessionID uint, playerID string) (*SessionState, error) {
	session, err := gm.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}

	state := &SessionState{
		SessionID:   sessionID,
		Status:      session.Status,
		PlayerCount: gm.lobbyPlayerCount(session),
		AskedCount:  len(session.AskedQuestionIDs),
	}

	if playerID != "" {
		board, boardErr := gm.Scoreboard(sessionID)
		if boardErr == nil {
			state.YourTotal = board.Total(playerID)
		}
	}

	if !session.IsActive() || session.CurrentQuestionID == nil {
		return state, nil
	}

	question, startTime, err := gm.currentQuestion(sessionID, *session.CurrentQuestionID)
	if err != nil {
		return nil, err
	}

	state.CurrentQuestion = &QuestionView{
		QuestionID: question.ID,
		Kind:       question.Kind,
		Text:       question.Text,
		Options:    question.Options,
		TimeLimit:  session.TimePerQuestionSec,
	}

	if session.TimePerQuestionSec > 0 {
		remaining := session.TimePerQuestionSec - int(time.Since(startTime).Seconds())
		if remaining < 0 {
			remaining = 0
		}
		state.RemainingSec = remaining
	}

	return state, nil
}

// lobbyPlayerCount возвращает число игроков в лобби. Запись в сессии
// авторитетна; Redis-множество - производный кеш, пересобираемый из нее
// при потере или расхождении.
func (gm *GameManager) lobbyPlayerCount(session *entity.GameSession) int {
	lobbyKey := fmt.Sprintf(lobbyKeyFmt, session.ID)

	count, err := gm.cacheRepo.SCard(lobbyKey)
	if err != nil {
		log.Printf("[GameManager] WARNING: Лобби-кеш сессии #%d недоступен: %v", session.ID, err)
		return len(session.PlayerIDs)
	}
	if int(count) == len(session.PlayerIDs) {
		return int(count)
	}

	log.Printf("[GameManager] Лобби-кеш сессии #%d разошелся (%d в кеше, %d в записи), пересборка", session.ID, count, len(session.PlayerIDs))
	if errCache := gm.cacheRepo.Delete(lobbyKey); errCache != nil {
		log.Printf("[GameManager] WARNING: Не удалось сбросить лобби-кеш сессии #%d: %v", session.ID, errCache)
		return len(session.PlayerIDs)
	}
	if len(session.PlayerIDs) > 0 {
		members := make([]interface{}, len(session.PlayerIDs))
		for i, id := range session.PlayerIDs {
			members[i] = id
		}
		if errCache := gm.cacheRepo.SAdd(lobbyKey, members...); errCache != nil {
			log.Printf("[GameManager] WARNING: Не удалось пересобрать лобби-кеш сессии #%d: %v", session.ID, errCache)
		} else if errCache := gm.cacheRepo.ExpireAt(lobbyKey, time.Now().Add(gm.config.LobbyTTL)); errCache != nil {
			log.Printf("[GameManager] WARNING: Не удалось продлить лобби-кеш сессии #%d: %v", session.ID, errCache)
		}
	}

	return len(session.PlayerIDs)
}

// generateFacts запрашивает факты по темам показанных вопросов и кеширует
// их для выдачи результатов. Любые сбои не фатальны.
func (gm *GameManager) generateFacts(sessionID uint, askedIDs entity.UintArray) {
	if gm.facts == nil {
		return
	}

	topics := make([]string, 0, len(askedIDs))
	for _, qid := range askedIDs {
		if len(topics) >= gm.config.MaxFactTopics {
			break
		}
		question, err := gm.questionRepo.GetByID(qid)
		if err != nil {
			log.Printf("[GameManager] WARNING: Не удалось получить вопрос #%d для тем фактов: %v", qid, err)
			continue
		}
		topics = append(topics, question.Text)
	}

	if len(topics) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(gm.ctx, 15*time.Second)
	defer cancel()

	facts, err := gm.facts.Generate(ctx, topics)
	if err != nil {
		log.Printf("[GameManager] Генерация фактов для сессии #%d не удалась (не фатально): %v", sessionID, err)
		return
	}

	factsKey := fmt.Sprintf(factsKeyFmt, sessionID)
	if errCache := gm.cacheRepo.SetJSON(factsKey, facts, gm.config.ScoreboardTTL); errCache != nil {
		log.Printf("[GameManager] WARNING: Не удалось сохранить факты сессии #%d: %v", sessionID, errCache)
	}
	log.Printf("[GameManager] Для сессии #%d сгенерировано %d фактов", sessionID, len(facts))
}

// Facts возвращает сгенерированные факты завершенной сессии (может быть пусто)
func (gm *GameManager) Facts(sessionID uint) []Fact {
	factsKey := fmt.Sprintf(factsKeyFmt, sessionID)
	var facts []Fact
	if err := gm.cacheRepo.GetJSON(factsKey, &facts); err != nil {
		return nil
	}
	return facts
}

// closeRound помечает раунд вопроса закрытым
func (gm *GameManager) closeRound(sessionID, questionID uint) {
	key := fmt.Sprintf(roundClosedFmt, sessionID, questionID)
	if err := gm.cacheRepo.Set(key, "1", gm.config.RoundFlagTTL); err != nil {
		log.Printf("[GameManager] WARNING: Не удалось закрыть раунд вопроса #%d сессии #%d: %v", questionID, sessionID, err)
	}
}

// deleteRoundFlag снимает флаг закрытого раунда (рестарт)
func (gm *GameManager) deleteRoundFlag(sessionID, questionID uint) {
	key := fmt.Sprintf(roundClosedFmt, sessionID, questionID)
	if err := gm.cacheRepo.Delete(key); err != nil {
		log.Printf("[GameManager] WARNING: Не удалось снять флаг раунда вопроса #%d сессии #%d: %v", questionID, sessionID, err)
	}
}

// isRoundClosed проверяет, закрыт ли раунд вопроса
func (gm *GameManager) isRoundClosed(sessionID, questionID uint) (bool, error) {
	key := fmt.Sprintf(roundClosedFmt, sessionID, questionID)
	return gm.cacheRepo.Exists(key)
}

// Shutdown корректно завершает работу менеджера: снимает все отсчеты
func (gm *GameManager) Shutdown() {
	log.Println("[GameManager] Завершение работы менеджера игровых сессий...")
	gm.cancel()
	log.Println("[GameManager] Менеджер игровых сессий остановлен")
}
