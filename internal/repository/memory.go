package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"cakewalk/internal/domain"
)

// окно, в котором повторная отправка той же корзины считается дублем
const duplicateWindow = 5 * time.Second

// MemoryStore объединённое in-memory хранилище заказов и адресов
// с генератором номеров заказов
type MemoryStore struct {
	mu            sync.RWMutex
	seq           int64
	ordersByOwner map[string][]domain.Order
	addressByUser map[string]domain.Address
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		ordersByOwner: make(map[string][]domain.Order),
		addressByUser: make(map[string]domain.Address),
	}
}

// transaction-aware locking helpers
type txKey struct{}

func isTx(ctx context.Context) bool {
	v := ctx.Value(txKey{})
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RLock()
	}
}
func (m *MemoryStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RUnlock()
	}
}
func (m *MemoryStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Lock()
	}
}
func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Unlock()
	}
}

// Ensure interfaces
var _ AddressRepository = (*MemoryStore)(nil)

// AddressRepository implementation
func (m *MemoryStore) Save(ctx context.Context, a *domain.Address) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	a.UpdatedAt = time.Now().UTC()
	m.addressByUser[a.OwnerID] = *a
	return nil
}

func (m *MemoryStore) ByOwner(ctx context.Context, ownerID string) (*domain.Address, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	a, ok := m.addressByUser[ownerID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := a
	return &cp, nil
}

// OrderRepository implementation on wrapper type
type MemoryOrders struct{ store *MemoryStore }

func NewMemoryOrders(store *MemoryStore) *MemoryOrders { return &MemoryOrders{store: store} }

var _ OrderRepository = (*MemoryOrders)(nil)

func (mo *MemoryOrders) Create(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)

	now := time.Now().UTC()

	// защита от дублей: та же сумма от того же владельца в коротком окне
	for _, existing := range mo.store.ordersByOwner[o.OwnerID] {
		sameTotal := existing.Amount.Amount.Equal(o.Amount.Amount)
		recent := now.Sub(existing.CreatedAt) < duplicateWindow
		if sameTotal && recent {
			*o = existing
			return nil
		}
	}

	mo.store.seq++
	o.ID = uuid.New()
	o.Number = fmt.Sprintf("CW2025-%03d", mo.store.seq)
	o.CreatedAt = now
	o.UpdatedAt = now
	mo.store.ordersByOwner[o.OwnerID] = append(mo.store.ordersByOwner[o.OwnerID], *o)
	return nil
}

func (mo *MemoryOrders) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	for _, o := range mo.store.ordersByOwner[ownerID] {
		if o.ID == id {
			cp := cloneOrder(o)
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (mo *MemoryOrders) ByOwner(ctx context.Context, ownerID string) ([]domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	orders := mo.store.ordersByOwner[ownerID]
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, cloneOrder(o))
	}
	return out, nil
}

func (mo *MemoryOrders) ByStatus(ctx context.Context, ownerID string, status domain.OrderStatus) ([]domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	out := make([]domain.Order, 0)
	for _, o := range mo.store.ordersByOwner[ownerID] {
		if o.Status == status {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

func (mo *MemoryOrders) Recent(ctx context.Context, ownerID string, limit int) ([]domain.Order, error) {
	orders, err := mo.ByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (mo *MemoryOrders) UpdateStatus(ctx context.Context, ownerID string, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	orders := mo.store.ordersByOwner[ownerID]
	for i := range orders {
		if orders[i].ID == id {
			orders[i].Status = status
			orders[i].UpdatedAt = time.Now().UTC()
			cp := cloneOrder(orders[i])
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// cloneOrder глубокая копия: наружу не должны утекать внутренние срезы
func cloneOrder(o domain.Order) domain.Order {
	cp := o
	if o.DeliveryAt != nil {
		at := *o.DeliveryAt
		cp.DeliveryAt = &at
	}
	cp.Items = append([]domain.CartItem(nil), o.Items...)
	return cp
}

// Tx manager using write lock to emulate transaction boundary
type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

func (tx *MemoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// Для in-memory используем блокировку записи и помечаем контекст, чтобы репозитории пропускали внутренние локи
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	ctx = context.WithValue(ctx, txKey{}, true)
	return fn(ctx)
}
