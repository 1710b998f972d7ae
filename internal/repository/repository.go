package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"cakewalk/internal/domain"
)

// ErrNotFound возвращается, когда сущность не найдена
var ErrNotFound = errors.New("not found")

// OrderRepository интерфейс хранилища заказов. Коллекция ключуется
// владельцем и только пополняется; заказы не удаляются.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*domain.Order, error)
	ByOwner(ctx context.Context, ownerID string) ([]domain.Order, error)
	ByStatus(ctx context.Context, ownerID string, status domain.OrderStatus) ([]domain.Order, error)
	Recent(ctx context.Context, ownerID string, limit int) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, ownerID string, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
}

// AddressRepository адресная книга: один сохранённый адрес на владельца
type AddressRepository interface {
	Save(ctx context.Context, a *domain.Address) error
	ByOwner(ctx context.Context, ownerID string) (*domain.Address, error)
}

// TxManager абстракция транзакции. Для in-memory — глобальная блокировка записи.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
