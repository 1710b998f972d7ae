package track

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"cakewalk/internal/domain"
)

// DeliveryStats агрегаты по заказам одного владельца.
// Пустая коллекция — валидный результат с нулями, не ошибка.
type DeliveryStats struct {
	Total      int             `json:"total"`
	Pending    int             `json:"pending"`
	Delivered  int             `json:"delivered"`
	Overdue    int             `json:"overdue"`
	DueToday   int             `json:"due_today"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

// Stats простые счётные свёртки без требований к порядку.
// Заказы без канонического момента не попадают в overdue и dueToday.
func (t *Tracker) Stats(orders []domain.Order, now time.Time) DeliveryStats {
	todayStart := t.startOfDay(now)
	tomorrowStart := todayStart.AddDate(0, 0, 1)

	spent := decimal.Zero
	for _, o := range orders {
		spent = spent.Add(o.Amount.Amount)
	}

	return DeliveryStats{
		Total: len(orders),
		Pending: lo.CountBy(orders, func(o domain.Order) bool {
			return o.Status < domain.OrderStatusDelivered
		}),
		Delivered: lo.CountBy(orders, func(o domain.Order) bool {
			return o.Status == domain.OrderStatusDelivered
		}),
		Overdue: len(t.OverdueOrders(orders, now)),
		DueToday: lo.CountBy(orders, func(o domain.Order) bool {
			if o.DeliveryAt == nil {
				return false
			}
			return !o.DeliveryAt.Before(todayStart) && o.DeliveryAt.Before(tomorrowStart)
		}),
		TotalSpent: spent,
	}
}

// OverdueOrders недоставленные заказы, чей момент доставки уже наступил.
// Граница та же, что у классификации: момент, равный "сейчас", просрочен.
func (t *Tracker) OverdueOrders(orders []domain.Order, now time.Time) []domain.Order {
	return lo.Filter(orders, func(o domain.Order, _ int) bool {
		if o.Status == domain.OrderStatusDelivered || o.DeliveryAt == nil {
			return false
		}
		return !o.DeliveryAt.After(now)
	})
}

// DueSoon недоставленные заказы с доставкой в ближайшие два часа
func (t *Tracker) DueSoon(orders []domain.Order, now time.Time) []domain.Order {
	horizon := now.Add(2 * time.Hour)
	return lo.Filter(orders, func(o domain.Order, _ int) bool {
		if o.Status == domain.OrderStatusDelivered || o.DeliveryAt == nil {
			return false
		}
		return o.DeliveryAt.After(now) && !o.DeliveryAt.After(horizon)
	})
}

func (t *Tracker) startOfDay(now time.Time) time.Time {
	local := now.In(t.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, t.loc)
}
