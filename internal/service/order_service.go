package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"cakewalk/internal/domain"
	"cakewalk/internal/repository"
	"cakewalk/internal/track"
)

// TrackedOrder заказ вместе с производным состоянием доставки,
// пересчитанным на момент запроса
type TrackedOrder struct {
	Order          domain.Order         `json:"order"`
	Classification track.Classification `json:"classification"`
	StatusText     string               `json:"status_text"`
	Progress       float64              `json:"progress"`
}

// OrderService отдаёт заказы владельца с классификацией, агрегаты
// и продвигает статус. Классификация не хранится: чистая функция от "сейчас".
type OrderService struct {
	orders  repository.OrderRepository
	tracker *track.Tracker
	tx      repository.TxManager
	now     func() time.Time
}

func NewOrderService(orders repository.OrderRepository, tracker *track.Tracker, tx repository.TxManager) *OrderService {
	return &OrderService{orders: orders, tracker: tracker, tx: tx, now: time.Now}
}

func (s *OrderService) ListOrders(ctx context.Context, ownerID string) ([]TrackedOrder, error) {
	if ownerID == "" {
		return nil, ErrInvalidInput
	}
	orders, err := s.orders.ByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	return lo.Map(orders, func(o domain.Order, _ int) TrackedOrder {
		return s.tracked(o, now)
	}), nil
}

func (s *OrderService) GetOrder(ctx context.Context, ownerID string, id uuid.UUID) (*TrackedOrder, error) {
	if ownerID == "" {
		return nil, ErrInvalidInput
	}
	o, err := s.orders.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	t := s.tracked(*o, s.now())
	return &t, nil
}

func (s *OrderService) Recent(ctx context.Context, ownerID string, limit int) ([]TrackedOrder, error) {
	if ownerID == "" {
		return nil, ErrInvalidInput
	}
	orders, err := s.orders.Recent(ctx, ownerID, limit)
	if err != nil {
		return nil, err
	}
	now := s.now()
	return lo.Map(orders, func(o domain.Order, _ int) TrackedOrder {
		return s.tracked(o, now)
	}), nil
}

// UpdateStatus продвигает статус строго вперёд; откат — конфликт.
// Проверка и запись идут под одной транзакцией: параллельные запросы
// не должны читать один и тот же устаревший статус.
func (s *OrderService) UpdateStatus(ctx context.Context, ownerID string, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	if ownerID == "" || !status.Valid() {
		return nil, ErrInvalidInput
	}
	var updated *domain.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		current, err := s.orders.GetByID(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if status <= current.Status {
			return ErrInvalidState
		}
		updated, err = s.orders.UpdateStatus(ctx, ownerID, id, status)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Stats агрегаты владельца; пустая коллекция даёт нули, не ошибку
func (s *OrderService) Stats(ctx context.Context, ownerID string) (track.DeliveryStats, error) {
	if ownerID == "" {
		return track.DeliveryStats{}, ErrInvalidInput
	}
	orders, err := s.orders.ByOwner(ctx, ownerID)
	if err != nil {
		return track.DeliveryStats{}, err
	}
	return s.tracker.Stats(orders, s.now()), nil
}

func (s *OrderService) tracked(o domain.Order, now time.Time) TrackedOrder {
	return TrackedOrder{
		Order:          o,
		Classification: s.tracker.Classify(o, now),
		StatusText:     o.Status.Text(),
		Progress:       o.Status.Progress(),
	}
}
