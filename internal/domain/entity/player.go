package entity

import "time"

// Player представляет игрока.
// Вход в систему - это create-or-fetch по имени, без паролей:
// усиление аутентификации не входит в задачи сервиса.
type Player struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"` // uuid
	Name      string    `gorm:"size:50;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Player) TableName() string {
	return "players"
}
