package service

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cakewalk/internal/domain"
	"cakewalk/internal/repository"
	"cakewalk/internal/schedule"
	"cakewalk/internal/track"
)

func setup(t *testing.T) (*CheckoutService, *OrderService, *repository.MemoryOrders, *schedule.Scheduler) {
	t.Helper()
	sched, err := schedule.New(schedule.Config{})
	require.NoError(t, err)

	store := repository.NewMemoryStore()
	orders := repository.NewMemoryOrders(store)
	tx := repository.NewMemoryTx(store)

	checkout := NewCheckoutService(orders, store, sched, tx)
	tracker := track.NewTracker(sched.Location())
	orderSvc := NewOrderService(orders, tracker, tx)
	return checkout, orderSvc, orders, sched
}

func validRequest() CheckoutRequest {
	return CheckoutRequest{
		OwnerID: "user-1",
		Profile: domain.UserProfile{
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			Email:     gofakeit.Email(),
			Phone:     gofakeit.Phone(),
		},
		Shipping: domain.Address{
			OwnerID: "user-1",
			Street:  "12 MG Road",
			City:    "Bengaluru",
			State:   "Karnataka",
			ZipCode: "560001",
		},
		SameAsShipping: true,
		PaymentMethod:  "credit-card",
		Items: []domain.CartItem{
			{Name: "Chocolate Truffle", Price: domain.INR("1299.00"), Quantity: 1},
			{Name: "Red Velvet", Price: domain.INR("850.50"), Quantity: 2},
		},
		DeliveryDate: "2027-06-15",
		DeliveryTime: "14:30",
	}
}

func TestPlaceOrder(t *testing.T) {
	ctx := context.Background()
	checkout, _, _, sched := setup(t)

	o, err := checkout.PlaceOrder(ctx, validRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusConfirmed, o.Status)
	assert.Equal(t, "CW2025-001", o.Number)
	assert.Equal(t, "2 items", o.CakeName)
	assert.True(t, o.Amount.Equal(domain.INR("3000.00")), "amount = %s", o.Amount)

	require.NotNil(t, o.DeliveryAt)
	local := o.DeliveryAt.In(sched.Location())
	assert.Equal(t, "2027-06-15", local.Format(schedule.DateLayout))
	assert.Equal(t, "14:30", local.Format(schedule.TimeLayout))

	assert.Equal(t, "2:30 PM", o.DeliverySlot)
	assert.Contains(t, o.DeliveryDisplay, "15 June 2027 at 2:30 PM")
	assert.Contains(t, o.ShippingAddress, "12 MG Road, Bengaluru, Karnataka 560001")
}

func TestPlaceOrder_Validation(t *testing.T) {
	ctx := context.Background()
	checkout, _, _, _ := setup(t)

	tests := []struct {
		name    string
		mutate  func(*CheckoutRequest)
		wantErr error
	}{
		{
			name:    "missing delivery date blocks submission",
			mutate:  func(r *CheckoutRequest) { r.DeliveryDate = "" },
			wantErr: schedule.ErrIncompleteSelection,
		},
		{
			name:    "missing delivery time blocks submission",
			mutate:  func(r *CheckoutRequest) { r.DeliveryTime = "" },
			wantErr: schedule.ErrIncompleteSelection,
		},
		{
			name:    "missing profile",
			mutate:  func(r *CheckoutRequest) { r.Profile.Email = "" },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "missing shipping",
			mutate:  func(r *CheckoutRequest) { r.Shipping.City = "" },
			wantErr: ErrInvalidInput,
		},
		{
			name: "separate billing must be complete",
			mutate: func(r *CheckoutRequest) {
				r.SameAsShipping = false
				r.Billing = domain.BillingInfo{Name: "Only Name"}
			},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "empty cart",
			mutate:  func(r *CheckoutRequest) { r.Items = nil },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "zero quantity",
			mutate:  func(r *CheckoutRequest) { r.Items[0].Quantity = 0 },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "no owner",
			mutate:  func(r *CheckoutRequest) { r.OwnerID = "" },
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			_, err := checkout.PlaceOrder(ctx, req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPlaceOrder_SeparateBilling(t *testing.T) {
	ctx := context.Background()
	checkout, _, _, _ := setup(t)

	req := validRequest()
	req.SameAsShipping = false
	req.Billing = domain.BillingInfo{
		Name: "Priya Sharma", Email: "priya@example.com", Phone: "+91 98765 43210",
		Street: "4 Park Street", City: "Kolkata", State: "West Bengal", ZipCode: "700016",
	}

	o, err := checkout.PlaceOrder(ctx, req)
	require.NoError(t, err)
	assert.Contains(t, o.BillingAddress, "Priya Sharma")
	assert.Contains(t, o.BillingAddress, "4 Park Street")
}

func TestSaveAddress(t *testing.T) {
	ctx := context.Background()
	checkout, _, _, _ := setup(t)

	a, err := checkout.SaveAddress(ctx, domain.Address{
		OwnerID: "user-1", Street: "12 MG Road", City: "Bengaluru", State: "Karnataka", ZipCode: "560001",
	})
	require.NoError(t, err)
	assert.False(t, a.UpdatedAt.IsZero())

	got, err := checkout.SavedAddress(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "12 MG Road", got.Street)

	_, err = checkout.SavedAddress(ctx, "nobody")
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, err = checkout.SaveAddress(ctx, domain.Address{OwnerID: "user-1"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

// навигация прочь с середины мастера просто бросает несохранённое:
// до последнего шага в хранилище ничего не попадает
func TestAbandonedCheckoutLeavesNoOrder(t *testing.T) {
	ctx := context.Background()
	checkout, _, orders, _ := setup(t)

	req := validRequest()
	req.DeliveryTime = ""
	_, err := checkout.PlaceOrder(ctx, req)
	require.Error(t, err)

	got, err := orders.ByOwner(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}
