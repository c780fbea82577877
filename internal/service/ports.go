package service

import (
	"context"
	"strings"

	"github.com/Beliver-cell/Fantasy-luxe-store/internal/repository"
)

// OrderRepo: алиас репозиторного интерфейса, чтобы тесты сервиса
// могли подменять хранилище без БД.
type OrderRepo = repository.OrderRepo

type CheckoutCustomer struct {
	Email string
	Name  string
	Phone string
}

type CheckoutRequest struct {
	TxRef       string
	AmountCents int64
	Currency    string
	RedirectURL string
	Customer    CheckoutCustomer
	Title       string
	LogoURL     string
}

// GatewayTransaction: ответ провайдера на проверку транзакции.
// Amount в основных единицах валюты, как его отдаёт провайдер.
type GatewayTransaction struct {
	ID       string
	TxRef    string
	Status   string
	Amount   float64
	Currency string
	Message  string
}

func (t *GatewayTransaction) Successful() bool {
	return strings.EqualFold(t.Status, "successful")
}

// Gateway: ошибка означает, что окончательного ответа нет (сеть, 5xx, ключ).
// Окончательный отказ провайдера приходит как транзакция с неуспешным статусом.
type Gateway interface {
	Configured() bool
	CreateCheckout(ctx context.Context, req CheckoutRequest) (string, error)
	VerifyTransaction(ctx context.Context, transactionID string) (*GatewayTransaction, error)
}

type CatalogProduct struct {
	ID         string
	Name       string
	PriceCents int64
	Image      string
}

// CatalogReader возвращает только найденные товары; отсутствующие id просто не попадают в map.
type CatalogReader interface {
	GetProducts(ctx context.Context, ids []string) (map[string]CatalogProduct, error)
}

type CartResetter interface {
	ResetCart(ctx context.Context, userID string) error
}
