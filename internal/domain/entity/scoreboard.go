package entity

// ScoreBoard хранит накопленные очки игроков одной сессии.
// Живет только в ephemeral-хранилище (Redis snapshot), создается при старте
// сессии и сбрасывается при рестарте.
//
// Order фиксирует порядок, в котором игроки впервые получили очки:
// он нужен ранжированию для детерминированного разрешения ничьих
// (первый достигший счета получает лучший ранг).
type ScoreBoard struct {
	SessionID uint           `json:"session_id"`
	Totals    map[string]int `json:"totals"`
	Order     []string       `json:"order"`
}

// NewScoreBoard создает пустую таблицу очков для сессии
func NewScoreBoard(sessionID uint) *ScoreBoard {
	return &ScoreBoard{
		SessionID: sessionID,
		Totals:    make(map[string]int),
		Order:     nil,
	}
}

// Add прибавляет очки игроку. Сумма игрока никогда не уменьшается:
// отрицательные значения игнорируются.
func (b *ScoreBoard) Add(playerID string, points int) {
	if points < 0 {
		return
	}
	if b.Totals == nil {
		b.Totals = make(map[string]int)
	}
	if _, seen := b.Totals[playerID]; !seen {
		b.Order = append(b.Order, playerID)
	}
	b.Totals[playerID] += points
}

// Total возвращает текущую сумму очков игрока
func (b *ScoreBoard) Total(playerID string) int {
	if b.Totals == nil {
		return 0
	}
	return b.Totals[playerID]
}

// RankedResult представляет одну строку итоговой таблицы лидеров.
// Вычисляется по запросу и нигде не сохраняется отдельно от ScoreBoard.
type RankedResult struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name,omitempty"`
	Score      int    `json:"score"`
	Rank       int    `json:"rank"`
}
