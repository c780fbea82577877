package dto

import (
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/models"
)

// OrderItemRequest: позиция корзины в том виде, в каком её шлёт витрина.
type OrderItemRequest struct {
	ProductID string   `json:"_id" binding:"required"`
	Name      string   `json:"name"`
	Price     float64  `json:"price" binding:"gte=0"`
	Quantity  int      `json:"quantity" binding:"required,gt=0"`
	Size      string   `json:"size"`
	Color     string   `json:"color"`
	Image     []string `json:"image"`
}

type AddressRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zipcode   string `json:"zipcode"`
	Country   string `json:"country"`
}

func (a AddressRequest) ToModel() models.Address {
	return models.Address{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
		Phone:     a.Phone,
		Street:    a.Street,
		City:      a.City,
		State:     a.State,
		Zipcode:   a.Zipcode,
		Country:   a.Country,
	}
}

type PlaceOrderRequest struct {
	Items   []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Amount  float64            `json:"amount" binding:"required,gt=0"`
	Address AddressRequest     `json:"address" binding:"required"`
}

type OrderIDRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

type VerifyPaymentRequest struct {
	TransactionID string `json:"transaction_id" binding:"required"`
	OrderID       string `json:"orderId" binding:"required"`
}

type CancelPendingRequest struct {
	OrderID string `json:"orderId"`
}

type UpdateStatusRequest struct {
	OrderID string `json:"orderId" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

type ListOrdersRequest struct {
	Status *string `json:"status"`
	Paid   *bool   `json:"paid"`
	Limit  int     `json:"limit" binding:"gte=0"`
	Offset int     `json:"offset" binding:"gte=0"`
}

type LinkResponse struct {
	Success bool   `json:"success"`
	Link    string `json:"link"`
	OrderID string `json:"orderId"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type VerifyResponse struct {
	Success         bool          `json:"success"`
	Message         string        `json:"message"`
	AlreadyVerified bool          `json:"alreadyVerified,omitempty"`
	Order           OrderResponse `json:"order"`
}

type CancelResponse struct {
	Success   bool   `json:"success"`
	Cancelled bool   `json:"cancelled"`
	OrderID   string `json:"orderId,omitempty"`
	Message   string `json:"message"`
}

type OrderItemResponse struct {
	ProductID string  `json:"_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`
	Image     string  `json:"image,omitempty"`
}

// OrderResponse повторяет форму документа заказа витрины; суммы в основных единицах.
type OrderResponse struct {
	ID            string              `json:"_id"`
	UserID        string              `json:"userId"`
	Items         []OrderItemResponse `json:"items"`
	Amount        float64             `json:"amount"`
	Currency      string              `json:"currency"`
	Address       models.Address      `json:"address"`
	Status        string              `json:"status"`
	PaymentMethod string              `json:"paymentMethod"`
	Payment       bool                `json:"payment"`
	GatewayRef    string              `json:"flutterwaveRef,omitempty"`
	Date          int64               `json:"date"`
	PaidAt        *int64              `json:"paidAt,omitempty"`
}

type OrderEnvelope struct {
	Success bool          `json:"success"`
	Order   OrderResponse `json:"order"`
}

type OrdersResponse struct {
	Success bool            `json:"success"`
	Orders  []OrderResponse `json:"orders"`
	Total   int64           `json:"total"`
}

func NewOrderResponse(o *models.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     models.FromCents(it.PriceCents),
			Quantity:  it.Quantity,
			Size:      it.Size,
			Color:     it.Color,
			Image:     it.Image,
		})
	}
	resp := OrderResponse{
		ID:            o.ID.String(),
		UserID:        o.UserID,
		Items:         items,
		Amount:        models.FromCents(o.AmountCents),
		Currency:      o.CurrencyCode,
		Address:       o.Address,
		Status:        o.DisplayStatus(),
		PaymentMethod: string(o.PaymentMethod),
		Payment:       o.Payment,
		Date:          o.CreatedAt.UnixMilli(),
	}
	if o.GatewayRef != nil {
		resp.GatewayRef = *o.GatewayRef
	}
	if o.PaidAt != nil {
		ms := o.PaidAt.UnixMilli()
		resp.PaidAt = &ms
	}
	return resp
}

func NewOrdersResponse(orders []models.Order, total int64) OrdersResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderResponse(&orders[i]))
	}
	return OrdersResponse{Success: true, Orders: out, Total: total}
}
