package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus линейный статус заказа: от подтверждения до доставки
type OrderStatus int

const (
	OrderStatusConfirmed      OrderStatus = 1
	OrderStatusBaking         OrderStatus = 2
	OrderStatusQualityCheck   OrderStatus = 3
	OrderStatusOutForDelivery OrderStatus = 4
	OrderStatusDelivered      OrderStatus = 5
)

var orderStatusText = map[OrderStatus]string{
	OrderStatusConfirmed:      "Order Confirmed",
	OrderStatusBaking:         "Baking in Progress",
	OrderStatusQualityCheck:   "Quality Check",
	OrderStatusOutForDelivery: "Out for Delivery",
	OrderStatusDelivered:      "Delivered",
}

func (s OrderStatus) Valid() bool {
	_, ok := orderStatusText[s]
	return ok
}

func (s OrderStatus) Text() string {
	if t, ok := orderStatusText[s]; ok {
		return t
	}
	return "Unknown"
}

// Progress доля пройденного пути заказа в процентах
func (s OrderStatus) Progress() float64 {
	return float64(s) / float64(OrderStatusDelivered) * 100
}

// CartItem позиция корзины; каталог товаров живёт снаружи, сюда приходят только значения
type CartItem struct {
	Name     string `json:"name"`
	Price    Money  `json:"price"`
	Quantity int64  `json:"quantity"`
}

// UserProfile данные покупателя на шаге оформления
type UserProfile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Address адрес доставки, привязанный к владельцу
type Address struct {
	OwnerID   string    `json:"owner_id"`
	Street    string    `json:"street"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	ZipCode   string    `json:"zip_code"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BillingInfo платёжные реквизиты; при SameAsShipping берётся адрес доставки
type BillingInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
}

// Order сущность заказа. Время доставки хранится в двух представлениях:
// канонический момент DeliveryAt и строки даты/слота для отображения.
// У старых заказов DeliveryAt может отсутствовать.
type Order struct {
	ID      uuid.UUID `json:"id"`
	Number  string    `json:"number"`
	OwnerID string    `json:"owner_id"`

	CakeName string     `json:"cake_name"`
	Items    []CartItem `json:"items"`
	Amount   Money      `json:"amount"`

	PaymentMethod   string `json:"payment_method"`
	ShippingAddress string `json:"shipping_address"`
	BillingAddress  string `json:"billing_address"`

	Status OrderStatus `json:"status"`

	DeliveryAt      *time.Time `json:"delivery_at,omitempty"`
	DeliveryDate    string     `json:"delivery_date"`
	DeliveryTime    string     `json:"delivery_time"`
	DeliverySlot    string     `json:"delivery_slot"`
	DeliveryDisplay string     `json:"delivery_display"`

	SpecialInstructions string `json:"special_instructions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
