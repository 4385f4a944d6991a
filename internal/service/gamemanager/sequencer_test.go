package gamemanager

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quizhub-api/internal/domain/entity"
)

func makeGroupQuestions(n int) []entity.Question {
	questions := make([]entity.Question, n)
	for i := range questions {
		questions[i] = entity.Question{
			ID:      uint(i + 1),
			GroupID: 1,
			Kind:    entity.QuestionKindMultipleChoice,
			Text:    "Вопрос",
		}
	}
	return questions
}

func TestSequencer_Next_NeverRepeats(t *testing.T) {
	// Arrange
	sequencer := NewSequencer()
	questions := makeGroupQuestions(5)
	asked := entity.UintArray{}

	// Act: вытягиваем все вопросы по одному, записывая выбор в asked
	seen := make(map[uint]bool)
	for i := 0; i < 5; i++ {
		q, err := sequencer.Next(questions, asked)
		require.NoError(t, err, "Пока есть непоказанные вопросы, ошибки быть не должно")
		assert.False(t, seen[q.ID], "Вопрос #%d не должен повторяться", q.ID)
		seen[q.ID] = true
		asked = append(asked, q.ID)
	}

	// Assert: все 5 вопросов показаны ровно по разу
	assert.Len(t, seen, 5)
	assert.Len(t, asked, 5)
}

func TestSequencer_Next_ExhaustedExactlyWhenEmpty(t *testing.T) {
	// Arrange
	sequencer := NewSequencer()
	questions := makeGroupQuestions(2)

	// Act & Assert: при одном оставшемся вопросе ошибки нет
	q, err := sequencer.Next(questions, entity.UintArray{1})
	require.NoError(t, err)
	assert.Equal(t, uint(2), q.ID, "Должен вернуться единственный непоказанный вопрос")

	// Все показаны - ErrExhausted
	_, err = sequencer.Next(questions, entity.UintArray{1, 2})
	assert.True(t, errors.Is(err, ErrExhausted), "Пустая разность множеств должна давать ErrExhausted")
}

func TestSequencer_Next_EmptyGroup(t *testing.T) {
	sequencer := NewSequencer()

	_, err := sequencer.Next(nil, nil)
	assert.True(t, errors.Is(err, ErrExhausted), "Пустая группа - сразу ErrExhausted")
}

func TestSequencer_Next_DoesNotMutateInputs(t *testing.T) {
	// Arrange
	sequencer := NewSequencer()
	questions := makeGroupQuestions(3)
	asked := entity.UintArray{2}

	// Act
	_, err := sequencer.Next(questions, asked)
	require.NoError(t, err)

	// Assert: секвенсер ничего не записывает сам
	assert.Equal(t, entity.UintArray{2}, asked, "Секвенсер не должен изменять asked-список")
	assert.Len(t, questions, 3)
}
