package service

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/yourusername/quizhub-api/internal/domain/entity"
	"github.com/yourusername/quizhub-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizhub-api/internal/pkg/errors"
)

const maxPlayerNameLen = 50

// PlayerService предоставляет методы для работы с игроками.
// Вход без пароля: игрок идентифицируется уникальным именем,
// повторный вход с тем же именем возвращает ту же запись.
type PlayerService struct {
	playerRepo repository.PlayerRepository
}

// NewPlayerService создает новый сервис игроков
func NewPlayerService(playerRepo repository.PlayerRepository) *PlayerService {
	return &PlayerService{playerRepo: playerRepo}
}

// SignIn возвращает игрока с заданным именем, создавая его при первом входе
func (s *PlayerService) SignIn(name string) (*entity.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: player name is required", apperrors.ErrValidation)
	}
	if runeName := []rune(name); len(runeName) > maxPlayerNameLen {
		return nil, fmt.Errorf("%w: player name is longer than %d characters", apperrors.ErrValidation, maxPlayerNameLen)
	}

	player, err := s.playerRepo.GetByName(name)
	if err == nil {
		return player, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	player = &entity.Player{
		ID:   uuid.New().String(),
		Name: name,
	}
	if err := s.playerRepo.Create(player); err != nil {
		// Гонка двух первых входов с одним именем: отдаем запись победителя
		if errors.Is(err, apperrors.ErrConflict) {
			return s.playerRepo.GetByName(name)
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	log.Printf("[PlayerService] Зарегистрирован новый игрок %s '%s'", player.ID, player.Name)
	return player, nil
}

// GetPlayerByID возвращает игрока по ID
func (s *PlayerService) GetPlayerByID(id string) (*entity.Player, error) {
	return s.playerRepo.GetByID(id)
}
