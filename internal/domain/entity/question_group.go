package entity

import "time"

// QuestionGroup представляет именованную коллекцию вопросов,
// из которой игровая сессия берет вопросы
type QuestionGroup struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"size:100;not null" json:"name"`
	Questions []Question `gorm:"foreignKey:GroupID" json:"questions,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (QuestionGroup) TableName() string {
	return "question_groups"
}
