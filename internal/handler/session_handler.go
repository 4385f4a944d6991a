package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"github.com/yourusername/quizhub-api/internal/domain/repository"
	"github.com/yourusername/quizhub-api/internal/handler/dto"
	apperrors "github.com/yourusername/quizhub-api/internal/pkg/errors"
	"github.com/yourusername/quizhub-api/internal/service"
	"github.com/yourusername/quizhub-api/internal/service/gamemanager"
)

// SessionHandler обрабатывает запросы, связанные с игровыми сессиями
type SessionHandler struct {
	sessionService *service.SessionService
	resultService  *service.ResultService
	gameManager    *service.GameManager
}

// NewSessionHandler создает новый обработчик игровых сессий
func NewSessionHandler(
	sessionService *service.SessionService,
	resultService *service.ResultService,
	gameManager *service.GameManager,
) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		resultService:  resultService,
		gameManager:    gameManager,
	}
}

// CreateSessionRequest представляет запрос на создание сессии
type CreateSessionRequest struct {
	Name               string `json:"name" binding:"required,min=3,max=100"`
	GroupID            uint   `json:"group_id" binding:"required"`
	MaxPlayers         int    `json:"max_players"`           // Опционально, 0 = дефолт
	TimePerQuestionSec int    `json:"time_per_question_sec"` // 0 = без отсчета
}

// CreateSession обрабатывает запрос на создание игровой сессии
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessionService.CreateSession(req.Name, req.GroupID, req.MaxPlayers, req.TimePerQuestionSec)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSessionResponse(session))
}

// GetSession возвращает информацию о сессии
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint) // Получаем из контекста

	session, err := h.sessionService.GetSessionByID(sessionID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(session))
}

// ListSessions возвращает список сессий с фильтрацией и пагинацией
func (h *SessionHandler) ListSessions(c *gin.Context) {
	page, pageSize, ok := parsePagination(c)
	if !ok {
		return
	}

	groupID, err := strconv.ParseUint(c.DefaultQuery("group_id", "0"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group_id"})
		return
	}

	filters := repository.SessionFilters{
		Status:  c.Query("status"),
		GroupID: uint(groupID),
		Search:  c.Query("search"),
	}

	sessions, total, err := h.sessionService.ListSessionsWithFilters(page, pageSize, filters)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedSessionResponse(sessions, total, page, pageSize))
}

// UpdateSessionRequest представляет запрос на изменение настроек сессии
type UpdateSessionRequest struct {
	Name               string `json:"name" binding:"omitempty,min=3,max=100"`
	MaxPlayers         int    `json:"max_players"`
	TimePerQuestionSec int    `json:"time_per_question_sec"`
}

// UpdateSession обрабатывает запрос на изменение настроек сессии
func (h *SessionHandler) UpdateSession(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint)

	var req UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessionService.UpdateSessionConfig(sessionID, req.Name, req.MaxPlayers, req.TimePerQuestionSec)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(session))
}

// DeleteSession обрабатывает запрос на удаление сессии
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint)

	if err := h.sessionService.DeleteSession(sessionID); err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session deleted successfully"})
}

// JoinSessionRequest представляет запрос на присоединение к сессии
type JoinSessionRequest struct {
	PlayerID string `json:"player_id" binding:"required,uuid"`
}

// JoinSession обрабатывает присоединение игрока к лобби сессии
func (h *SessionHandler) JoinSession(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint)

	var req JoinSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.gameManager.JoinSession(sessionID, req.PlayerID); err != nil {
		h.handleSessionError(c, err)
		return
	}

	session, err := h.sessionService.GetSessionByID(sessionID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(session))
}

// LeaveSession обрабатывает выход игрока из лобби сессии
func (h *SessionHandler) LeaveSession(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint)

	var req JoinSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.gameManager.LeaveSession(sessionID, req.PlayerID); err != nil {
		h.handleSessionError(c, err)
		return
	}

	session, err := h.sessionService.GetSessionByID(sessionID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(session))
}

// StartSession запускает игровую сессию
func (h *SessionHandler) StartSession(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint)

	if err := h.gameManager.StartSession(sessionID); err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session started"})
}

// AdvanceSession переводит сессию к следующему вопросу
func (h *SessionHandler) AdvanceSession(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint)

	if err := h.gameManager.AdvanceSession(sessionID); err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session advanced"})
}

// FinishSession принудительно завершает сессию
func (h *SessionHandler) FinishSession(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint)

	if err := h.gameManager.FinishSession(sessionID); err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session finished"})
}

// RestartSession возвращает сессию в лобби, сохраняя игроков
func (h *SessionHandler) RestartSession(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint)

	if err := h.gameManager.RestartSession(sessionID); err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session restarted"})
}

// GetState возвращает состояние сессии для опроса клиентом.
// Необязательный query-параметр player_id добавляет в ответ сумму игрока.
func (h *SessionHandler) GetState(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint)
	playerID := c.Query("player_id")

	state, err := h.gameManager.GetState(sessionID, playerID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// SubmitAnswerRequest представляет отправку ответа игроком
type SubmitAnswerRequest struct {
	PlayerID   string `json:"player_id" binding:"required,uuid"`
	QuestionID uint   `json:"question_id" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
}

// SubmitAnswer обрабатывает ответ игрока на текущий вопрос
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint)

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.gameManager.SubmitAnswer(sessionID, req.PlayerID, req.QuestionID, req.Answer)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetResults возвращает таблицу лидеров сессии
func (h *SessionHandler) GetResults(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint)

	results, err := h.resultService.GetSessionResults(sessionID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// GetPlayerResult возвращает строку таблицы лидеров одного игрока
func (h *SessionHandler) GetPlayerResult(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint)
	playerID := c.Param("playerId")

	result, err := h.resultService.GetPlayerResult(sessionID, playerID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportResults экспортирует таблицу лидеров в CSV или XLSX
func (h *SessionHandler) ExportResults(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint)
	format := c.DefaultQuery("format", "csv")

	results, err := h.resultService.GetSessionResults(sessionID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	filename := fmt.Sprintf("session_%d_results", sessionID)

	switch format {
	case "csv":
		h.exportCSV(c, results, filename)
	case "xlsx":
		h.exportXLSX(c, results, filename)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported format. Use 'csv' or 'xlsx'"})
	}
}

// exportCSV экспортирует результаты в CSV
func (h *SessionHandler) exportCSV(c *gin.Context, results *service.SessionResults, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	// BOM для корректного открытия кириллицы в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	// Заголовки
	writer.Write([]string{"Место", "Игрок", "Очки", "Правильных", "Отвечено", "Всего вопросов"})

	// Данные
	for _, r := range results.Results {
		writer.Write([]string{
			strconv.Itoa(int(r.Rank)),
			sanitizeForExcel(r.PlayerName),
			strconv.Itoa(r.Score),
			strconv.Itoa(r.CorrectAnswers),
			strconv.Itoa(r.AnsweredQuestions),
			strconv.Itoa(r.TotalQuestions),
		})
	}
}

// exportXLSX экспортирует результаты в Excel с использованием StreamWriter
func (h *SessionHandler) exportXLSX(c *gin.Context, results *service.SessionResults, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Результаты"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[SessionHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	// Заголовки
	headers := []interface{}{"Место", "Игрок", "Очки", "Правильных", "Отвечено", "Всего вопросов"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[SessionHandler] Ошибка записи заголовков: %v", err)
	}

	// Данные
	for i, r := range results.Results {
		rowNum := i + 2 // Начинаем с 2 строки (1 - заголовки)
		cell := fmt.Sprintf("A%d", rowNum)

		row := []interface{}{r.Rank, sanitizeForExcel(r.PlayerName), r.Score, r.CorrectAnswers, r.AnsweredQuestions, r.TotalQuestions}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[SessionHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[SessionHandler] Ошибка при Flush: %v", err)
	}

	// Записываем в response
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[SessionHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

// parsePagination извлекает page и page_size из query-параметров
func parsePagination(c *gin.Context) (int, int, bool) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page"})
		return 0, 0, false
	}

	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page_size"})
		return 0, 0, false
	}

	return page, pageSize, true
}

// handleSessionError обрабатывает ошибки сервисов сессий и отправляет соответствующий HTTP ответ
func (h *SessionHandler) handleSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrStaleSession):
		// Состояние изменилось под клиентом - перечитать и повторить
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "stale_session"})
	case errors.Is(err, gamemanager.ErrAlreadyAnswered):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "already_answered"})
	case errors.Is(err, service.ErrSessionFull):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "session_full"})
	case errors.Is(err, service.ErrNotCurrentQuestion):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "not_current_question"})
	case errors.Is(err, service.ErrPlayerNotJoined):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, gamemanager.ErrEmptyGroup):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		log.Printf("ERROR: Internal server error in SessionHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
