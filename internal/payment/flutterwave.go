package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Beliver-cell/Fantasy-luxe-store/internal/models"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/service"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.flutterwave.com/v3"
	// demoSecret: заглушка из примеров .env, ключом не считается.
	demoSecret = "demo"

	maxResponseBytes = 1 << 20
)

type Config struct {
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

// APIError: отказ провайдера, без окончательного ответа по транзакции.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("flutterwave: http %d", e.StatusCode)
	}
	return fmt.Sprintf("flutterwave: http %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) ProcessorMessage() string { return e.Message }

var ErrNotConfigured = errors.New("flutterwave secret key is not configured")

type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

func (c *Client) Configured() bool {
	key := strings.TrimSpace(c.cfg.SecretKey)
	return key != "" && key != demoSecret
}

type paymentRequest struct {
	TxRef          string         `json:"tx_ref"`
	Amount         float64        `json:"amount"`
	Currency       string         `json:"currency"`
	RedirectURL    string         `json:"redirect_url"`
	Customer       customer       `json:"customer"`
	Customizations customizations `json:"customizations"`
}

type customer struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phonenumber"`
}

type customizations struct {
	Title string `json:"title,omitempty"`
	Logo  string `json:"logo,omitempty"`
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type paymentData struct {
	Link string `json:"link"`
}

type transactionData struct {
	ID       json.Number `json:"id"`
	TxRef    string      `json:"tx_ref"`
	FlwRef   string      `json:"flw_ref"`
	Amount   float64     `json:"amount"`
	Currency string      `json:"currency"`
	Status   string      `json:"status"`
}

// CreateCheckout создаёт hosted-страницу оплаты и возвращает ссылку на неё.
func (c *Client) CreateCheckout(ctx context.Context, req service.CheckoutRequest) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	body := paymentRequest{
		TxRef:       req.TxRef,
		Amount:      models.FromCents(req.AmountCents),
		Currency:    req.Currency,
		RedirectURL: req.RedirectURL,
		Customer: customer{
			Email:       req.Customer.Email,
			Name:        req.Customer.Name,
			PhoneNumber: req.Customer.Phone,
		},
		Customizations: customizations{Title: req.Title, Logo: req.LogoURL},
	}

	env, status, err := c.do(ctx, http.MethodPost, "/payments", body)
	if err != nil {
		return "", err
	}
	if status >= 300 || env.Status != "success" {
		return "", &APIError{StatusCode: status, Message: env.Message}
	}
	var data paymentData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", fmt.Errorf("flutterwave: decode payment data: %w", err)
	}
	return data.Link, nil
}

// VerifyTransaction запрашивает у провайдера состояние транзакции.
// 400/404: окончательный отказ: транзакция возвращается с неуспешным статусом.
func (c *Client) VerifyTransaction(ctx context.Context, transactionID string) (*service.GatewayTransaction, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	path := "/transactions/" + url.PathEscape(transactionID) + "/verify"
	env, status, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusBadRequest || status == http.StatusNotFound:
		return &service.GatewayTransaction{ID: transactionID, Status: "not_found", Message: env.Message}, nil
	case status >= 300:
		return nil, &APIError{StatusCode: status, Message: env.Message}
	case env.Status != "success":
		return &service.GatewayTransaction{ID: transactionID, Status: env.Status, Message: env.Message}, nil
	}

	var data transactionData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("flutterwave: decode transaction: %w", err)
	}
	id := data.ID.String()
	if id == "" {
		id = transactionID
	}
	return &service.GatewayTransaction{
		ID:       id,
		TxRef:    data.TxRef,
		Status:   data.Status,
		Amount:   data.Amount,
		Currency: data.Currency,
		Message:  env.Message,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (*envelope, int, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("Запрос к Flutterwave не выполнен", zap.String("path", path), zap.Error(err))
		return nil, 0, err
	}
	defer resp.Body.Close()

	c.log.Debug("Ответ Flutterwave",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(started)))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 300 {
			return &envelope{Message: http.StatusText(resp.StatusCode)}, resp.StatusCode, nil
		}
		return nil, resp.StatusCode, fmt.Errorf("flutterwave: decode response (http %s): %w", strconv.Itoa(resp.StatusCode), err)
	}
	return &env, resp.StatusCode, nil
}
