package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cakewalk/internal/domain"
	"cakewalk/internal/repository"
)

func setup(t *testing.T) (*repository.MemoryStore, *repository.MemoryOrders, *repository.MemoryTx) {
	t.Helper()
	store := repository.NewMemoryStore()
	return store, repository.NewMemoryOrders(store), repository.NewMemoryTx(store)
}

func randomOrder(ownerID, amount string) domain.Order {
	at := time.Now().Add(48 * time.Hour).UTC()
	return domain.Order{
		OwnerID:         ownerID,
		CakeName:        gofakeit.ProductName(),
		Amount:          domain.INR(amount),
		PaymentMethod:   "credit-card",
		ShippingAddress: gofakeit.Street(),
		Status:          domain.OrderStatusConfirmed,
		DeliveryAt:      &at,
		DeliveryDate:    at.Format("2006-01-02"),
		DeliveryTime:    "14:00",
		Items: []domain.CartItem{
			{Name: gofakeit.ProductName(), Price: domain.INR(amount), Quantity: 1},
		},
	}
}

func TestMemoryOrders_CreateAssignsIdentity(t *testing.T) {
	ctx := context.Background()
	_, orders, _ := setup(t)

	first := randomOrder("user-1", "1299.00")
	require.NoError(t, orders.Create(ctx, &first))

	second := randomOrder("user-2", "549.00")
	require.NoError(t, orders.Create(ctx, &second))

	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.Equal(t, "CW2025-001", first.Number)
	assert.Equal(t, "CW2025-002", second.Number)
	assert.False(t, first.CreatedAt.IsZero())
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)
}

func TestMemoryOrders_DuplicateGuard(t *testing.T) {
	ctx := context.Background()
	_, orders, _ := setup(t)

	first := randomOrder("user-1", "1299.00")
	require.NoError(t, orders.Create(ctx, &first))

	// та же сумма от того же владельца сразу же — дубль
	dup := randomOrder("user-1", "1299.00")
	require.NoError(t, orders.Create(ctx, &dup))
	assert.Equal(t, first.ID, dup.ID)
	assert.Equal(t, first.Number, dup.Number)

	got, err := orders.ByOwner(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// другая сумма — не дубль
	other := randomOrder("user-1", "750.00")
	require.NoError(t, orders.Create(ctx, &other))
	got, err = orders.ByOwner(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestMemoryOrders_GetByID(t *testing.T) {
	ctx := context.Background()
	_, orders, _ := setup(t)

	o := randomOrder("user-1", "1299.00")
	require.NoError(t, orders.Create(ctx, &o))

	got, err := orders.GetByID(ctx, "user-1", o.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(o, *got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	// чужой владелец не видит заказ
	_, err = orders.GetByID(ctx, "user-2", o.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, err = orders.GetByID(ctx, "user-1", uuid.New())
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMemoryOrders_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	_, orders, _ := setup(t)

	o := randomOrder("user-1", "1299.00")
	require.NoError(t, orders.Create(ctx, &o))

	got, err := orders.ByOwner(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 1)

	// мутация копии не должна просачиваться в хранилище
	got[0].CakeName = "mutated"
	got[0].Items[0].Quantity = 99
	*got[0].DeliveryAt = time.Time{}

	fresh, err := orders.GetByID(ctx, "user-1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.CakeName, fresh.CakeName)
	assert.Equal(t, int64(1), fresh.Items[0].Quantity)
	assert.False(t, fresh.DeliveryAt.IsZero())
}

func TestMemoryOrders_ByStatusAndRecent(t *testing.T) {
	ctx := context.Background()
	_, orders, _ := setup(t)

	a := randomOrder("user-1", "100.00")
	require.NoError(t, orders.Create(ctx, &a))
	b := randomOrder("user-1", "200.00")
	require.NoError(t, orders.Create(ctx, &b))
	c := randomOrder("user-1", "300.00")
	require.NoError(t, orders.Create(ctx, &c))

	_, err := orders.UpdateStatus(ctx, "user-1", b.ID, domain.OrderStatusDelivered)
	require.NoError(t, err)

	delivered, err := orders.ByStatus(ctx, "user-1", domain.OrderStatusDelivered)
	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Equal(t, b.ID, delivered[0].ID)

	recent, err := orders.Recent(ctx, "user-1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, c.ID, recent[0].ID)
}

func TestMemoryOrders_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	_, orders, _ := setup(t)

	o := randomOrder("user-1", "1299.00")
	require.NoError(t, orders.Create(ctx, &o))

	got, err := orders.UpdateStatus(ctx, "user-1", o.ID, domain.OrderStatusBaking)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusBaking, got.Status)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))

	_, err = orders.UpdateStatus(ctx, "user-1", uuid.New(), domain.OrderStatusBaking)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMemoryStore_Addresses(t *testing.T) {
	ctx := context.Background()
	store, _, _ := setup(t)

	a := domain.Address{
		OwnerID: "user-1",
		Street:  gofakeit.Street(),
		City:    gofakeit.City(),
		State:   gofakeit.State(),
		ZipCode: gofakeit.Zip(),
	}
	require.NoError(t, store.Save(ctx, &a))
	assert.False(t, a.UpdatedAt.IsZero())

	got, err := store.ByOwner(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, a.Street, got.Street)

	// повторное сохранение перезаписывает
	a.Street = "New Street 1"
	require.NoError(t, store.Save(ctx, &a))
	got, err = store.ByOwner(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "New Street 1", got.Street)

	_, err = store.ByOwner(ctx, "nobody")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMemoryTx_WithTransaction(t *testing.T) {
	ctx := context.Background()
	store, orders, tx := setup(t)

	err := tx.WithTransaction(ctx, func(ctx context.Context) error {
		o := randomOrder("user-1", "1299.00")
		if err := orders.Create(ctx, &o); err != nil {
			return err
		}
		a := domain.Address{OwnerID: "user-1", Street: "S", City: "C", State: "ST", ZipCode: "Z"}
		return store.Save(ctx, &a)
	})
	require.NoError(t, err)

	got, err := orders.ByOwner(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
