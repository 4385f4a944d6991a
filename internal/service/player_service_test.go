package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/quizhub-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizhub-api/internal/pkg/errors"
)

func TestPlayerService_SignIn_NewPlayer(t *testing.T) {
	// Arrange: первый вход - создается новая запись с UUID
	playerRepo := new(MockPlayerRepository)
	svc := NewPlayerService(playerRepo)

	playerRepo.On("GetByName", "Алиса").Return(nil, apperrors.ErrNotFound)
	playerRepo.On("Create", mock.AnythingOfType("*entity.Player")).Return(nil)

	// Act
	player, err := svc.SignIn("Алиса")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, player)
	assert.Equal(t, "Алиса", player.Name)
	_, parseErr := uuid.Parse(player.ID)
	assert.NoError(t, parseErr, "ID игрока должен быть валидным UUID")
}

func TestPlayerService_SignIn_ExistingPlayer(t *testing.T) {
	// Arrange: повторный вход возвращает ту же запись без Create
	playerRepo := new(MockPlayerRepository)
	svc := NewPlayerService(playerRepo)

	existing := &entity.Player{ID: "11111111-1111-1111-1111-111111111111", Name: "Алиса"}
	playerRepo.On("GetByName", "Алиса").Return(existing, nil)

	// Act
	player, err := svc.SignIn("Алиса")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, existing.ID, player.ID)
	playerRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestPlayerService_SignIn_TrimsWhitespace(t *testing.T) {
	// Arrange
	playerRepo := new(MockPlayerRepository)
	svc := NewPlayerService(playerRepo)

	existing := &entity.Player{ID: "11111111-1111-1111-1111-111111111111", Name: "Алиса"}
	playerRepo.On("GetByName", "Алиса").Return(existing, nil)

	// Act
	player, err := svc.SignIn("  Алиса  ")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Алиса", player.Name)
}

func TestPlayerService_SignIn_EmptyName(t *testing.T) {
	// Arrange
	playerRepo := new(MockPlayerRepository)
	svc := NewPlayerService(playerRepo)

	// Act
	player, err := svc.SignIn("   ")

	// Assert
	require.Error(t, err)
	assert.Nil(t, player)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestPlayerService_SignIn_CreateRace(t *testing.T) {
	// Arrange: два первых входа с одним именем - проигравший гонку
	// получает запись победителя
	playerRepo := new(MockPlayerRepository)
	svc := NewPlayerService(playerRepo)

	winner := &entity.Player{ID: "22222222-2222-2222-2222-222222222222", Name: "Борис"}
	playerRepo.On("GetByName", "Борис").Return(nil, apperrors.ErrNotFound).Once()
	playerRepo.On("Create", mock.AnythingOfType("*entity.Player")).Return(apperrors.ErrConflict)
	playerRepo.On("GetByName", "Борис").Return(winner, nil)

	// Act
	player, err := svc.SignIn("Борис")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, winner.ID, player.ID)
}
