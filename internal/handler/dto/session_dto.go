package dto

import (
	"time"

	"github.com/yourusername/quizhub-api/internal/domain/entity"
)

// SessionResponse представляет игровую сессию в формате для ответа клиенту
type SessionResponse struct {
	ID                 uint      `json:"id"`
	Name               string    `json:"name"`
	GroupID            uint      `json:"group_id"`
	MaxPlayers         int       `json:"max_players"`
	TimePerQuestionSec int       `json:"time_per_question_sec"`
	Status             string    `json:"status"`
	PlayerCount        int       `json:"player_count"`
	AskedCount         int       `json:"asked_count"`
	CurrentQuestionID  *uint     `json:"current_question_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// PaginatedSessionResponse представляет пагинированный список сессий
type PaginatedSessionResponse struct {
	Sessions []*SessionResponse `json:"sessions"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PerPage  int                `json:"per_page"`
}

// NewSessionResponse создает DTO для игровой сессии
func NewSessionResponse(session *entity.GameSession) *SessionResponse {
	if session == nil {
		return nil
	}
	return &SessionResponse{
		ID:                 session.ID,
		Name:               session.Name,
		GroupID:            session.GroupID,
		MaxPlayers:         session.MaxPlayers,
		TimePerQuestionSec: session.TimePerQuestionSec,
		Status:             session.Status,
		PlayerCount:        len(session.PlayerIDs),
		AskedCount:         len(session.AskedQuestionIDs),
		CurrentQuestionID:  session.CurrentQuestionID,
		CreatedAt:          session.CreatedAt,
		UpdatedAt:          session.UpdatedAt,
	}
}

// NewListSessionResponse создает слайс DTO для списка сессий
func NewListSessionResponse(sessions []entity.GameSession) []*SessionResponse {
	list := make([]*SessionResponse, len(sessions))
	for i := range sessions {
		list[i] = NewSessionResponse(&sessions[i])
	}
	return list
}

// NewPaginatedSessionResponse создает DTO для пагинированного списка сессий
func NewPaginatedSessionResponse(sessions []entity.GameSession, total int64, page, perPage int) *PaginatedSessionResponse {
	return &PaginatedSessionResponse{
		Sessions: NewListSessionResponse(sessions),
		Total:    total,
		Page:     page,
		PerPage:  perPage,
	}
}
