package repository

import (
	"time"
)

// CacheRepository определяет методы для работы с ephemeral-хранилищем
// (присутствие в лобби, снапшоты таблицы очков, флаги закрытых раундов)
type CacheRepository interface {
	Set(key string, value interface{}, expiration time.Duration) error
	Get(key string) (string, error)
	Delete(key string) error
	SetJSON(key string, value interface{}, expiration time.Duration) error
	GetJSON(key string, dest interface{}) error
	Exists(key string) (bool, error)
	ExpireAt(key string, expiration time.Time) error
	// Операции над множествами - используются для присутствия игроков в лобби
	SAdd(key string, members ...interface{}) error
	SRem(key string, members ...interface{}) error
	SCard(key string) (int64, error)
}
