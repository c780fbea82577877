package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Статус заказа имеет смысл только после подтверждения оплаты.
type OrderStatus string

const (
	OrderStatusUnset     OrderStatus = ""
	OrderStatusPlaced    OrderStatus = "Order Placed"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// PendingPaymentLabel is what clients see while payment is still false.
const PendingPaymentLabel = "Pending Payment"

var orderStatuses = []OrderStatus{
	OrderStatusPlaced,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// OrderStatuses returns the statuses a paid order may carry.
func OrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(orderStatuses))
	copy(out, orderStatuses)
	return out
}

func (s OrderStatus) Valid() bool {
	for _, st := range orderStatuses {
		if s == st {
			return true
		}
	}
	return false
}

type PaymentMethod string

const PaymentMethodFlutterwave PaymentMethod = "Flutterwave"

// Tag is the lowercase form used in redirect URLs (method=flutterwave).
func (m PaymentMethod) Tag() string { return strings.ToLower(string(m)) }

// Address is a shipping/contact snapshot taken when the order is placed.
type Address struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Street    string `json:"street,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Zipcode   string `json:"zipcode,omitempty"`
	Country   string `json:"country,omitempty"`
}

func (a Address) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// OrderItem is a copy of the catalog entry at order time, never a live reference.
type OrderItem struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int    `json:"quantity"`
	Size       string `json:"size,omitempty"`
	Color      string `json:"color,omitempty"`
	Image      string `json:"image,omitempty"`
}

func (it OrderItem) LineTotalCents() int64 { return it.PriceCents * int64(it.Quantity) }

type Order struct {
	ID            uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        string        `gorm:"type:text;not null;index"`
	Items         []OrderItem   `gorm:"type:jsonb;serializer:json;not null"`
	AmountCents   int64         `gorm:"not null"`
	CurrencyCode  string        `gorm:"type:char(3);not null"`
	Address       Address       `gorm:"type:jsonb;serializer:json;not null"`
	PaymentMethod PaymentMethod `gorm:"type:text;not null"`
	Payment       bool          `gorm:"not null;default:false;index"`
	Status        OrderStatus   `gorm:"type:text;not null;default:''"`
	GatewayRef    *string       `gorm:"type:text"`
	PaidAt        *time.Time

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Order) TableName() string { return "orders" }

// TxRef is the merchant reference sent to the processor; it is the order id.
func (o *Order) TxRef() string { return o.ID.String() }

// DisplayStatus hides the stored status until the order is paid.
func (o *Order) DisplayStatus() string {
	if !o.Payment {
		return PendingPaymentLabel
	}
	return string(o.Status)
}

func (o *Order) SubtotalCents() int64 {
	var total int64
	for _, it := range o.Items {
		total += it.LineTotalCents()
	}
	return total
}
