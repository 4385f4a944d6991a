package gamemanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quizhub-api/internal/domain/entity"
)

func TestRanker_Rank_TieBrokenByInsertionOrder(t *testing.T) {
	// Arrange: A набрал очки раньше C, оба по 100, B - 150
	board := entity.NewScoreBoard(1)
	board.Add("A", 100)
	board.Add("B", 150)
	board.Add("C", 100)

	ranker := NewRanker()

	// Act
	results := ranker.Rank(board)

	// Assert: [B:1, A:2, C:3]
	require.Len(t, results, 3)
	assert.Equal(t, entity.RankedResult{PlayerID: "B", Score: 150, Rank: 1}, results[0])
	assert.Equal(t, entity.RankedResult{PlayerID: "A", Score: 100, Rank: 2}, results[1])
	assert.Equal(t, entity.RankedResult{PlayerID: "C", Score: 100, Rank: 3}, results[2])
}

func TestRanker_Rank_Deterministic(t *testing.T) {
	// Arrange
	board := entity.NewScoreBoard(1)
	board.Add("x", 50)
	board.Add("y", 50)
	board.Add("z", 50)

	ranker := NewRanker()

	// Act: повторные вызовы для одного снапшота
	first := ranker.Rank(board)
	second := ranker.Rank(board)

	// Assert: результат пересчитывается заново, но детерминирован
	assert.Equal(t, first, second)
	assert.Equal(t, "x", first[0].PlayerID)
	assert.Equal(t, "y", first[1].PlayerID)
	assert.Equal(t, "z", first[2].PlayerID)
}

func TestRanker_Rank_EmptyBoard(t *testing.T) {
	ranker := NewRanker()

	assert.Nil(t, ranker.Rank(entity.NewScoreBoard(1)))
	assert.Nil(t, ranker.Rank(nil))
}
