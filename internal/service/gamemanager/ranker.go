package gamemanager

import (
	"sort"

	"github.com/yourusername/quizhub-api/internal/domain/entity"
)

// Ranker строит таблицу лидеров из таблицы очков.
// Сортировка по очкам по убыванию; ничьи разрешаются порядком первого
// начисления (кто первым вышел на счет, тот выше). Результат
// детерминирован для одного и того же снапшота ScoreBoard и
// пересчитывается заново при каждом вызове.
type Ranker struct{}

// NewRanker создает ранжировщик результатов
func NewRanker() *Ranker {
	return &Ranker{}
}

// Rank возвращает упорядоченную таблицу лидеров
func (r *Ranker) Rank(board *entity.ScoreBoard) []entity.RankedResult {
	if board == nil || len(board.Order) == 0 {
		return nil
	}

	results := make([]entity.RankedResult, 0, len(board.Order))
	for _, playerID := range board.Order {
		results = append(results, entity.RankedResult{
			PlayerID: playerID,
			Score:    board.Total(playerID),
		})
	}

	// Стабильная сортировка сохраняет insertion order при равных очках
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	for i := range results {
		results[i].Rank = i + 1
	}

	return results
}
