package gamemanager

import (
	"context"
	"log"
	"sync"
	"time"
)

// RoundTimer управляет обратным отсчетом раунда: один активный отсчет
// на сессию. Отсчет тикает раз в секунду и по достижении нуля вызывает
// onExpire ровно один раз. Запуск нового отсчета всегда отменяет предыдущий;
// ручной переход отменяет отсчет без побочных эффектов.
type RoundTimer struct {
	// Внутреннее состояние
	cancels sync.Map // map[uint]context.CancelFunc
}

// NewRoundTimer создает таймер раундов
func NewRoundTimer() *RoundTimer {
	return &RoundTimer{}
}

// Start запускает отсчет для сессии. seconds <= 0 означает раунд без
// таймера: отсчет не стартует и авто-переход не произойдет.
func (t *RoundTimer) Start(ctx context.Context, sessionID uint, seconds int, onExpire func()) {
	// Сначала снимаем предыдущий отсчет, если он есть
	t.Cancel(sessionID)

	if seconds <= 0 {
		return
	}

	roundCtx, cancel := context.WithCancel(ctx)
	t.cancels.Store(sessionID, cancel)

	go t.run(roundCtx, sessionID, seconds, onExpire)
}

// Cancel снимает активный отсчет сессии. Идемпотентна.
func (t *RoundTimer) Cancel(sessionID uint) {
	if cancel, ok := t.cancels.LoadAndDelete(sessionID); ok {
		cancel.(context.CancelFunc)()
		log.Printf("[RoundTimer] Отсчет для сессии #%d отменен", sessionID)
	}
}

// run выполняет сам отсчет. Кооперативный: никаких блокирующих ожиданий,
// выход через ctx.Done().
func (t *RoundTimer) run(ctx context.Context, sessionID uint, seconds int, onExpire func()) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	remaining := seconds
	for {
		select {
		case <-ticker.C:
			remaining--
			if remaining <= 0 {
				// Снимаем свою функцию отмены до вызова onExpire,
				// чтобы переход, который мы сами запускаем, не пытался
				// отменить уже завершившийся отсчет
				t.cancels.Delete(sessionID)
				log.Printf("[RoundTimer] Время раунда сессии #%d истекло, авто-переход", sessionID)
				onExpire()
				return
			}

		case <-ctx.Done():
			return
		}
	}
}
