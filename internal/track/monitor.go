package track

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"cakewalk/internal/domain"
)

// OrderSource источник заказов для периодического пересчёта
type OrderSource interface {
	ByOwner(ctx context.Context, ownerID string) ([]domain.Order, error)
}

// Monitor периодически пересчитывает состояние заказов наблюдаемых
// владельцев. Живёт ровно столько, сколько активен список заказов:
// Start при монтировании, Stop при размонтировании, иначе утечёт таймер.
type Monitor struct {
	tracker  *Tracker
	source   OrderSource
	interval time.Duration

	mu     sync.Mutex
	owners map[string]struct{}

	stop      chan struct{}
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

func NewMonitor(tracker *Tracker, source OrderSource, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Monitor{
		tracker:  tracker,
		source:   source,
		interval: interval,
		owners:   make(map[string]struct{}),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Watch добавляет владельца в список наблюдения
func (m *Monitor) Watch(ownerID string) {
	if ownerID == "" {
		return
	}
	m.mu.Lock()
	m.owners[ownerID] = struct{}{}
	m.mu.Unlock()
}

// Unwatch убирает владельца из списка наблюдения
func (m *Monitor) Unwatch(ownerID string) {
	m.mu.Lock()
	delete(m.owners, ownerID)
	m.mu.Unlock()
}

// Start запускает тикер; горутина завершается по Stop или отмене ctx.
// Монитор одноразовый: повторный Start не порождает вторую горутину.
func (m *Monitor) Start(ctx context.Context) {
	m.startOnce.Do(func() {
		go func() {
			defer close(m.done)

			ticker := time.NewTicker(m.interval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-m.stop:
					return
				case now := <-ticker.C:
					m.refresh(ctx, now)
				}
			}
		}()
	})
}

// Stop останавливает тикер и дожидается выхода горутины. Идемпотентен.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
	<-m.done
}

func (m *Monitor) refresh(ctx context.Context, now time.Time) {
	m.mu.Lock()
	owners := make([]string, 0, len(m.owners))
	for owner := range m.owners {
		owners = append(owners, owner)
	}
	m.mu.Unlock()

	for _, owner := range owners {
		orders, err := m.source.ByOwner(ctx, owner)
		if err != nil {
			slog.Error("monitor: fetch orders", "owner", owner, "error", err)
			continue
		}

		overdue := m.tracker.OverdueOrders(orders, now)
		for _, o := range overdue {
			slog.Warn("order is overdue", "order", o.Number, "owner", owner, "expected", o.DeliveryAt)
		}
		for _, o := range m.tracker.DueSoon(orders, now) {
			slog.Info("order is due soon", "order", o.Number, "owner", owner, "delivery_at", o.DeliveryAt)
		}
	}
}
