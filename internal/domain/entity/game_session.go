package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Константы статусов игровой сессии
const (
	SessionStatusWaiting  = "waiting"
	SessionStatusActive   = "active"
	SessionStatusFinished = "finished"
)

// UintArray - пользовательский тип для хранения списка ID в JSONB
type UintArray []uint

// Scan реализует интерфейс sql.Scanner для UintArray
// Используется GORM для чтения JSONB данных из базы
func (a *UintArray) Scan(value interface{}) error {
	if value == nil {
		*a = UintArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*a = UintArray{}
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Value реализует интерфейс driver.Valuer для UintArray
func (a UintArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(a)
}

// Contains проверяет, присутствует ли id в списке
func (a UintArray) Contains(id uint) bool {
	for _, v := range a {
		if v == id {
			return true
		}
	}
	return false
}

// GameSession представляет одну игровую сессию викторины
type GameSession struct {
	ID                 uint        `gorm:"primaryKey" json:"id"`
	Name               string      `gorm:"size:100;not null" json:"name"`
	GroupID            uint        `gorm:"not null;index" json:"group_id"`
	MaxPlayers         int         `gorm:"not null;default:10" json:"max_players"`
	TimePerQuestionSec int         `gorm:"not null;default:0" json:"time_per_question_sec"` // 0 = без таймера
	Status             string      `gorm:"size:20;not null;default:'waiting';index" json:"status"`
	AskedQuestionIDs   UintArray   `gorm:"type:jsonb;not null;default:'[]'" json:"asked_question_ids"`
	CurrentQuestionID  *uint       `json:"current_question_id,omitempty"`
	PlayerIDs          StringArray `gorm:"type:jsonb;not null;default:'[]'" json:"player_ids"`
	// Version — счетчик версий для условных обновлений (optimistic locking).
	// Инкрементируется при каждом переходе состояния.
	Version   int       `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (GameSession) TableName() string {
	return "game_sessions"
}

// IsWaiting проверяет, открыто ли лобби сессии
func (s *GameSession) IsWaiting() bool {
	return s.Status == SessionStatusWaiting
}

// IsActive проверяет, идет ли в сессии вопрос
func (s *GameSession) IsActive() bool {
	return s.Status == SessionStatusActive
}

// IsFinished проверяет, завершена ли сессия
func (s *GameSession) IsFinished() bool {
	return s.Status == SessionStatusFinished
}

// HasPlayer проверяет, присоединился ли игрок к сессии
func (s *GameSession) HasPlayer(playerID string) bool {
	for _, id := range s.PlayerIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

// IsFull проверяет, достигнута ли вместимость лобби
func (s *GameSession) IsFull() bool {
	return s.MaxPlayers > 0 && len(s.PlayerIDs) >= s.MaxPlayers
}
