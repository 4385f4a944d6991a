package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Константы типов вопросов
const (
	QuestionKindMultipleChoice = "multiple_choice"
	QuestionKindNumerical      = "numerical"
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	// Обработка NULL значений из базы данных
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
func (o StringArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// Question представляет вопрос внутри группы вопросов
type Question struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	GroupID       uint        `gorm:"not null;index" json:"group_id"`
	Kind          string      `gorm:"size:20;not null;default:'multiple_choice'" json:"kind"`
	Text          string      `gorm:"size:500;not null" json:"text"`
	Options       StringArray `gorm:"type:jsonb;not null;default:'[]'" json:"options"`
	CorrectOption string      `gorm:"size:200;not null;default:''" json:"-"` // Скрыто от клиента
	CorrectNumber float64     `gorm:"not null;default:0" json:"-"`           // Для числовых вопросов
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsNumerical проверяет, является ли вопрос числовым
func (q *Question) IsNumerical() bool {
	return q.Kind == QuestionKindNumerical
}

// IsCorrect проверяет правильность сырого текста ответа.
// Для multiple_choice сравнение строгое и регистрозависимое.
// Для numerical текст парсится как вещественное число и сравнивается
// со значением CorrectNumber (поэтому "42.0" засчитывается при ответе 42).
func (q *Question) IsCorrect(submitted string) bool {
	if q.IsNumerical() {
		value, err := strconv.ParseFloat(strings.TrimSpace(submitted), 64)
		if err != nil {
			return false
		}
		return value == q.CorrectNumber
	}
	return submitted == q.CorrectOption
}

// BasePoints возвращает базовые очки за правильный ответ на вопрос
func (q *Question) BasePoints() int {
	if q.IsNumerical() {
		return 200
	}
	return 100
}

// Validate проверяет инварианты вопроса перед сохранением.
// Multiple-choice вопрос обязан иметь минимум 2 различных варианта,
// один из которых совпадает с правильным.
func (q *Question) Validate() error {
	if q.Text == "" {
		return errors.New("question text is required")
	}

	switch q.Kind {
	case QuestionKindNumerical:
		return nil
	case QuestionKindMultipleChoice:
		distinct := make(map[string]struct{}, len(q.Options))
		for _, opt := range q.Options {
			distinct[opt] = struct{}{}
		}
		if len(distinct) < 2 {
			return errors.New("multiple choice question requires at least 2 distinct options")
		}
		if _, ok := distinct[q.CorrectOption]; !ok {
			return errors.New("correct option must be one of the question options")
		}
		return nil
	default:
		return fmt.Errorf("unknown question kind: %s", q.Kind)
	}
}
