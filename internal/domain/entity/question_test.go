package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestion_IsCorrect_MultipleChoice(t *testing.T) {
	// Arrange
	question := &Question{
		ID:            1,
		GroupID:       1,
		Kind:          QuestionKindMultipleChoice,
		Text:          "Какой язык используется в Go?",
		Options:       StringArray{"Python", "Go", "Java", "Rust"},
		CorrectOption: "Go",
	}

	// Act & Assert
	assert.True(t, question.IsCorrect("Go"), "Точное совпадение должно засчитываться")
	assert.False(t, question.IsCorrect("go"), "Сравнение должно быть регистрозависимым")
	assert.False(t, question.IsCorrect("Python"), "Неправильный вариант не должен засчитываться")
	assert.False(t, question.IsCorrect(""), "Пустой ответ не должен засчитываться")
}

func TestQuestion_IsCorrect_Numerical(t *testing.T) {
	// Arrange
	question := &Question{
		ID:            2,
		Kind:          QuestionKindNumerical,
		Text:          "Сколько будет 6 x 7?",
		CorrectNumber: 42,
	}

	// Act & Assert
	assert.True(t, question.IsCorrect("42"), "Целое число должно засчитываться")
	assert.True(t, question.IsCorrect("42.0"), "Вещественная запись того же числа должна засчитываться")
	assert.True(t, question.IsCorrect(" 42 "), "Пробелы по краям не должны мешать")
	assert.False(t, question.IsCorrect("41"), "Неверное число не должно засчитываться")
	assert.False(t, question.IsCorrect("сорок два"), "Непарсящийся текст не должен засчитываться")
}

func TestQuestion_BasePoints(t *testing.T) {
	// Arrange
	mc := &Question{Kind: QuestionKindMultipleChoice}
	num := &Question{Kind: QuestionKindNumerical}

	// Act & Assert
	assert.Equal(t, 100, mc.BasePoints(), "Multiple-choice должен давать 100 базовых очков")
	assert.Equal(t, 200, num.BasePoints(), "Числовой вопрос должен давать 200 базовых очков")
}

func TestQuestion_Validate_MultipleChoice(t *testing.T) {
	// Arrange
	valid := &Question{
		Kind:          QuestionKindMultipleChoice,
		Text:          "Столица Казахстана?",
		Options:       StringArray{"Астана", "Алматы"},
		CorrectOption: "Астана",
	}

	// Act & Assert
	require.NoError(t, valid.Validate(), "Вопрос с 2 различными вариантами должен быть валидным")

	// Вариантов меньше двух
	tooFew := &Question{
		Kind:          QuestionKindMultipleChoice,
		Text:          "Вопрос",
		Options:       StringArray{"Единственный"},
		CorrectOption: "Единственный",
	}
	assert.Error(t, tooFew.Validate(), "Один вариант - ошибка валидации")

	// Дубликаты не считаются различными вариантами
	duplicates := &Question{
		Kind:          QuestionKindMultipleChoice,
		Text:          "Вопрос",
		Options:       StringArray{"A", "A"},
		CorrectOption: "A",
	}
	assert.Error(t, duplicates.Validate(), "Дублирующиеся варианты - ошибка валидации")

	// Правильный ответ отсутствует среди вариантов
	missingCorrect := &Question{
		Kind:          QuestionKindMultipleChoice,
		Text:          "Вопрос",
		Options:       StringArray{"A", "B"},
		CorrectOption: "C",
	}
	assert.Error(t, missingCorrect.Validate(), "Правильный ответ должен входить в варианты")
}

func TestQuestion_Validate_UnknownKind(t *testing.T) {
	question := &Question{Kind: "essay", Text: "Вопрос"}
	assert.Error(t, question.Validate(), "Неизвестный тип вопроса должен отклоняться")
}
