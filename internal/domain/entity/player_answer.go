package entity

import "time"

// PlayerAnswer представляет ответ игрока на вопрос в рамках сессии.
// Тройка (session, player, question) уникальна - повторная отправка
// отклоняется на уровне БД (unique constraint).
type PlayerAnswer struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SessionID   uint      `gorm:"not null;uniqueIndex:idx_session_player_question" json:"session_id"`
	PlayerID    string    `gorm:"size:36;not null;uniqueIndex:idx_session_player_question" json:"player_id"`
	QuestionID  uint      `gorm:"not null;uniqueIndex:idx_session_player_question" json:"question_id"`
	RawAnswer   string    `gorm:"size:200;not null" json:"raw_answer"`
	IsCorrect   bool      `gorm:"not null" json:"is_correct"`
	Points      int       `gorm:"not null;default:0" json:"points"`
	SubmittedAt time.Time `gorm:"not null" json:"submitted_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (PlayerAnswer) TableName() string {
	return "player_answers"
}
