package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cakewalk/internal/domain"
	"cakewalk/internal/repository"
	"cakewalk/internal/schedule"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidState = errors.New("invalid state")
)

// CheckoutRequest всё, что собрал мастер оформления к последнему шагу
type CheckoutRequest struct {
	OwnerID        string
	Profile        domain.UserProfile
	Shipping       domain.Address
	Billing        domain.BillingInfo
	SameAsShipping bool
	PaymentMethod  string
	Items          []domain.CartItem
	DeliveryDate   string // YYYY-MM-DD
	DeliveryTime   string // HH:MM

	SpecialInstructions string
}

// CheckoutService реализует оформление заказа: проверка шагов,
// сборка канонического момента доставки, создание заказа
type CheckoutService struct {
	orders    repository.OrderRepository
	addresses repository.AddressRepository
	sched     *schedule.Scheduler
	tx        repository.TxManager
	now       func() time.Time
}

func NewCheckoutService(orders repository.OrderRepository, addresses repository.AddressRepository, sched *schedule.Scheduler, tx repository.TxManager) *CheckoutService {
	return &CheckoutService{orders: orders, addresses: addresses, sched: sched, tx: tx, now: time.Now}
}

// ValidateDetails правило готовности последнего шага: профиль, адреса
// и выбор доставки должны быть заполнены. Недостающая дата или время —
// отдельная ошибка, она блокирует отправку, а не подменяется умолчанием.
func (s *CheckoutService) ValidateDetails(req CheckoutRequest) error {
	if req.OwnerID == "" || len(req.Items) == 0 {
		return ErrInvalidInput
	}
	p := req.Profile
	if p.FirstName == "" || p.LastName == "" || p.Email == "" || p.Phone == "" {
		return ErrInvalidInput
	}
	sh := req.Shipping
	if sh.Street == "" || sh.City == "" || sh.State == "" || sh.ZipCode == "" {
		return ErrInvalidInput
	}
	if !req.SameAsShipping {
		b := req.Billing
		if b.Name == "" || b.Email == "" || b.Phone == "" ||
			b.Street == "" || b.City == "" || b.State == "" || b.ZipCode == "" {
			return ErrInvalidInput
		}
	}
	for _, it := range req.Items {
		if it.Name == "" || it.Quantity <= 0 || it.Price.Negative() {
			return ErrInvalidInput
		}
	}
	if req.DeliveryDate == "" || req.DeliveryTime == "" {
		return schedule.ErrIncompleteSelection
	}
	return nil
}

// PlaceOrder завершает оформление: считает сумму, собирает канонический
// момент доставки и атомарно добавляет заказ владельцу
func (s *CheckoutService) PlaceOrder(ctx context.Context, req CheckoutRequest) (*domain.Order, error) {
	if err := s.ValidateDetails(req); err != nil {
		return nil, err
	}

	deliveryAt, err := s.sched.ResolveInstant(req.DeliveryDate, req.DeliveryTime)
	if err != nil {
		return nil, err
	}

	total, err := cartTotal(req.Items)
	if err != nil {
		return nil, fmt.Errorf("cart total: %w", err)
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "credit-card"
	}

	cakeName := req.Items[0].Name
	if len(req.Items) > 1 {
		cakeName = fmt.Sprintf("%d items", len(req.Items))
	}

	shipping := formatAddress(req.Shipping)
	var billing string
	if !req.SameAsShipping {
		b := req.Billing
		billing = fmt.Sprintf("%s, %s, %s, %s %s", b.Name, b.Street, b.City, b.State, b.ZipCode)
	} else {
		billing = fmt.Sprintf("%s %s, %s", req.Profile.FirstName, req.Profile.LastName, shipping)
	}

	var created *domain.Order
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o := domain.Order{
			OwnerID:             req.OwnerID,
			CakeName:            cakeName,
			Items:               req.Items,
			Amount:              total,
			PaymentMethod:       paymentMethod,
			ShippingAddress:     shipping,
			BillingAddress:      billing,
			Status:              domain.OrderStatusConfirmed,
			DeliveryAt:          &deliveryAt,
			DeliveryDate:        req.DeliveryDate,
			DeliveryTime:        req.DeliveryTime,
			DeliverySlot:        s.sched.SlotLabel(req.DeliveryTime),
			DeliveryDisplay:     s.sched.FormatDisplay(req.DeliveryDate, req.DeliveryTime),
			SpecialInstructions: req.SpecialInstructions,
		}
		if err := s.orders.Create(ctx, &o); err != nil {
			return err
		}
		created = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// SaveAddress сохраняет адрес владельца для следующих оформлений
func (s *CheckoutService) SaveAddress(ctx context.Context, a domain.Address) (*domain.Address, error) {
	if a.OwnerID == "" || a.Street == "" || a.City == "" || a.State == "" || a.ZipCode == "" {
		return nil, ErrInvalidInput
	}
	cp := a
	if err := s.addresses.Save(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

// SavedAddress возвращает сохранённый адрес владельца
func (s *CheckoutService) SavedAddress(ctx context.Context, ownerID string) (*domain.Address, error) {
	if ownerID == "" {
		return nil, ErrInvalidInput
	}
	return s.addresses.ByOwner(ctx, ownerID)
}

func cartTotal(items []domain.CartItem) (domain.Money, error) {
	total := items[0].Price.Mul(items[0].Quantity)
	for _, it := range items[1:] {
		var err error
		total, err = total.Add(it.Price.Mul(it.Quantity))
		if err != nil {
			return domain.Money{}, err
		}
	}
	return total, nil
}

func formatAddress(a domain.Address) string {
	return fmt.Sprintf("%s, %s, %s %s", a.Street, a.City, a.State, a.ZipCode)
}
