package gamemanager

import (
	"math/rand"
	"sync"
	"time"

	"github.com/yourusername/quizhub-api/internal/domain/entity"
)

// Sequencer выбирает следующий непоказанный вопрос сессии.
// Выбор равномерно случайный по разности множеств (вопросы группы минус
// уже показанные) и без возвращения: вопрос не повторяется в рамках сессии.
// Sequencer ничего не сохраняет сам - выбор записывает в asked-список
// вызывающий.
type Sequencer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSequencer создает секвенсер со своим источником случайности
func NewSequencer() *Sequencer {
	return &Sequencer{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next возвращает случайный вопрос из непоказанных.
// Возвращает ErrExhausted, когда разность множеств пуста.
func (s *Sequencer) Next(questions []entity.Question, asked entity.UintArray) (*entity.Question, error) {
	unseen := make([]entity.Question, 0, len(questions))
	for _, q := range questions {
		if !asked.Contains(q.ID) {
			unseen = append(unseen, q)
		}
	}

	if len(unseen) == 0 {
		return nil, ErrExhausted
	}

	s.mu.Lock()
	idx := s.rng.Intn(len(unseen))
	s.mu.Unlock()

	picked := unseen[idx]
	return &picked, nil
}
