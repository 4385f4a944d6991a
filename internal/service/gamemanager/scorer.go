package gamemanager

import (
	"github.com/yourusername/quizhub-api/internal/domain/entity"
)

// Scorer вычисляет очки за отправленный ответ.
// Базовые очки: 100 за multiple-choice, 200 за числовой вопрос, 0 за
// неправильный ответ. Бонус за скорость начисляется только за правильный
// ответ в раунде с таймером: по одному очку за каждую оставшуюся секунду.
type Scorer struct{}

// NewScorer создает движок подсчета очков
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score возвращает количество очков и признак правильности ответа.
// elapsedSec - сколько секунд прошло с показа вопроса до отправки,
// limitSec - лимит раунда (0 = без таймера, бонус не начисляется).
func (s *Scorer) Score(question *entity.Question, submitted string, elapsedSec, limitSec int) (int, bool) {
	if !question.IsCorrect(submitted) {
		return 0, false
	}

	points := question.BasePoints()

	if limitSec > 0 {
		remaining := limitSec - elapsedSec
		if remaining < 0 {
			remaining = 0
		}
		points += remaining
	}

	return points, true
}
