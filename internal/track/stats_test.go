package track_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cakewalk/internal/domain"
	"cakewalk/internal/track"
)

func TestStats_EmptyCollection(t *testing.T) {
	tr := track.NewTracker(kolkata(t))
	got := tr.Stats(nil, time.Now())

	assert.Equal(t, 0, got.Total)
	assert.Equal(t, 0, got.Pending)
	assert.Equal(t, 0, got.Delivered)
	assert.Equal(t, 0, got.Overdue)
	assert.Equal(t, 0, got.DueToday)
	assert.True(t, got.TotalSpent.IsZero())
}

func TestStats_MixedCollection(t *testing.T) {
	loc := kolkata(t)
	tr := track.NewTracker(loc)
	now := time.Date(2025, time.January, 10, 10, 0, 0, 0, loc)

	later := now.Add(90 * time.Minute)        // сегодня, впереди
	past := now.Add(-2 * time.Hour)           // сегодня, просрочен
	tomorrow := now.AddDate(0, 0, 1)          // не сегодня
	deliveredAt := now.Add(-26 * time.Hour)   // вчера, доставлен

	orders := []domain.Order{
		{Status: domain.OrderStatusConfirmed, DeliveryAt: &later, Amount: domain.INR("1299.00")},
		{Status: domain.OrderStatusOutForDelivery, DeliveryAt: &past, Amount: domain.INR("549.50")},
		{Status: domain.OrderStatusBaking, DeliveryAt: &tomorrow, Amount: domain.INR("2000.00")},
		{Status: domain.OrderStatusDelivered, DeliveryAt: &deliveredAt, Amount: domain.INR("151.50")},
		// старый заказ с нечитаемыми строками: не должен ломать свёртку
		{Status: domain.OrderStatusConfirmed, DeliveryDate: "garbage", DeliveryTime: "??", Amount: domain.INR("100.00")},
	}

	got := tr.Stats(orders, now)

	assert.Equal(t, 5, got.Total)
	assert.Equal(t, 4, got.Pending)
	assert.Equal(t, 1, got.Delivered)
	assert.Equal(t, 1, got.Overdue)   // только past; битый заказ исключён
	assert.Equal(t, 2, got.DueToday)  // later и past попадают в сегодня
	assert.True(t, got.TotalSpent.Equal(decimal.RequireFromString("4100.00")),
		"total spent = %s", got.TotalSpent)
}

func TestOverdueOrders(t *testing.T) {
	loc := kolkata(t)
	tr := track.NewTracker(loc)
	now := time.Date(2025, time.January, 10, 10, 0, 0, 0, loc)

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	exact := now

	orders := []domain.Order{
		{Number: "CW2025-001", Status: domain.OrderStatusConfirmed, DeliveryAt: &past},
		{Number: "CW2025-002", Status: domain.OrderStatusDelivered, DeliveryAt: &past},
		{Number: "CW2025-003", Status: domain.OrderStatusConfirmed, DeliveryAt: &future},
		{Number: "CW2025-004", Status: domain.OrderStatusConfirmed}, // без отметки
		// момент ровно "сейчас" просрочен, как и в классификации
		{Number: "CW2025-005", Status: domain.OrderStatusConfirmed, DeliveryAt: &exact},
	}

	got := tr.OverdueOrders(orders, now)
	require.Len(t, got, 2)
	assert.Equal(t, "CW2025-001", got[0].Number)
	assert.Equal(t, "CW2025-005", got[1].Number)
}

func TestDueSoon(t *testing.T) {
	loc := kolkata(t)
	tr := track.NewTracker(loc)
	now := time.Date(2025, time.January, 10, 10, 0, 0, 0, loc)

	in30m := now.Add(30 * time.Minute)
	in90m := now.Add(90 * time.Minute)
	in3h := now.Add(3 * time.Hour)
	past := now.Add(-time.Minute)

	orders := []domain.Order{
		{Number: "CW2025-001", Status: domain.OrderStatusBaking, DeliveryAt: &in30m},
		{Number: "CW2025-002", Status: domain.OrderStatusConfirmed, DeliveryAt: &in90m},
		{Number: "CW2025-003", Status: domain.OrderStatusConfirmed, DeliveryAt: &in3h},
		{Number: "CW2025-004", Status: domain.OrderStatusConfirmed, DeliveryAt: &past},
		{Number: "CW2025-005", Status: domain.OrderStatusDelivered, DeliveryAt: &in30m},
	}

	got := tr.DueSoon(orders, now)
	require.Len(t, got, 2)
	assert.Equal(t, "CW2025-001", got[0].Number)
	assert.Equal(t, "CW2025-002", got[1].Number)
}
