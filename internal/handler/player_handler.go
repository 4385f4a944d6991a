package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/quizhub-api/internal/handler/dto"
	apperrors "github.com/yourusername/quizhub-api/internal/pkg/errors"
	"github.com/yourusername/quizhub-api/internal/service"
)

// PlayerHandler обрабатывает запросы, связанные с игроками
type PlayerHandler struct {
	playerService *service.PlayerService
}

// NewPlayerHandler создает новый обработчик игроков
func NewPlayerHandler(playerService *service.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: playerService}
}

// SignInRequest представляет запрос на вход по имени
type SignInRequest struct {
	Name string `json:"name" binding:"required,min=1,max=50"`
}

// SignIn обрабатывает вход игрока: создает запись при первом входе,
// повторный вход с тем же именем возвращает ту же запись
func (h *PlayerHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	player, err := h.playerService.SignIn(req.Name)
	if err != nil {
		h.handlePlayerError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPlayerResponse(player))
}

// GetPlayer возвращает игрока по ID
func (h *PlayerHandler) GetPlayer(c *gin.Context) {
	playerID := c.MustGet("playerID").(string) // Получаем из контекста

	player, err := h.playerService.GetPlayerByID(playerID)
	if err != nil {
		h.handlePlayerError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPlayerResponse(player))
}

// handlePlayerError обрабатывает ошибки сервиса игроков
func (h *PlayerHandler) handlePlayerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("ERROR: Internal server error in PlayerHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
