package gamemanager

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoundTimer_FiresExactlyOnce(t *testing.T) {
	// Arrange
	timer := NewRoundTimer()
	var fired atomic.Int32

	// Act: отсчет на 1 секунду
	timer.Start(context.Background(), 1, 1, func() {
		fired.Add(1)
	})

	// Assert: ждем с запасом и проверяем единственный вызов
	assert.Eventually(t, func() bool {
		return fired.Load() == 1
	}, 3*time.Second, 50*time.Millisecond, "onExpire должен сработать ровно один раз")

	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load(), "Повторных срабатываний быть не должно")
}

func TestRoundTimer_CancelPreventsExpiry(t *testing.T) {
	// Arrange
	timer := NewRoundTimer()
	var fired atomic.Int32

	timer.Start(context.Background(), 1, 1, func() {
		fired.Add(1)
	})

	// Act: ручная отмена до истечения
	timer.Cancel(1)

	// Assert
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load(), "Отмененный отсчет не должен срабатывать")
}

func TestRoundTimer_RestartCancelsPrevious(t *testing.T) {
	// Arrange
	timer := NewRoundTimer()
	var firstFired, secondFired atomic.Int32

	// Act: второй запуск для той же сессии вытесняет первый
	timer.Start(context.Background(), 1, 1, func() { firstFired.Add(1) })
	timer.Start(context.Background(), 1, 1, func() { secondFired.Add(1) })

	// Assert: срабатывает только второй отсчет
	assert.Eventually(t, func() bool {
		return secondFired.Load() == 1
	}, 3*time.Second, 50*time.Millisecond)
	assert.Equal(t, int32(0), firstFired.Load(), "Вытесненный отсчет не должен срабатывать")
}

func TestRoundTimer_ZeroSecondsMeansNoCountdown(t *testing.T) {
	// Arrange
	timer := NewRoundTimer()
	var fired atomic.Int32

	// Act: лимит 0 - отсчет не стартует
	timer.Start(context.Background(), 1, 0, func() { fired.Add(1) })

	// Assert
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load(), "Без лимита авто-переход не происходит")
}

func TestRoundTimer_CancelIsIdempotent(t *testing.T) {
	timer := NewRoundTimer()

	// Отмена без запущенного отсчета не должна паниковать
	timer.Cancel(42)
	timer.Cancel(42)
}

func TestRoundTimer_ContextCancellationStopsCountdown(t *testing.T) {
	// Arrange
	timer := NewRoundTimer()
	var fired atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	timer.Start(ctx, 1, 1, func() { fired.Add(1) })

	// Act: отмена родительского контекста (shutdown)
	cancel()

	// Assert
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}
