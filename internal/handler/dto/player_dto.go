package dto

import (
	"time"

	"github.com/yourusername/quizhub-api/internal/domain/entity"
)

// PlayerResponse представляет игрока в формате для ответа клиенту
type PlayerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewPlayerResponse создает DTO для игрока
func NewPlayerResponse(player *entity.Player) *PlayerResponse {
	if player == nil {
		return nil
	}
	return &PlayerResponse{
		ID:        player.ID,
		Name:      player.Name,
		CreatedAt: player.CreatedAt,
	}
}
