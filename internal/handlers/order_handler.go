package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Beliver-cell/Fantasy-luxe-store/internal/dto"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/models"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders service.OrderService
	log    *zap.Logger
}

func NewOrderHandler(orders service.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, log: log}
}

// PlaceOrder godoc
// @Summary Оформление заказа
// @Description Создаёт неоплаченный заказ и возвращает ссылку на оплату Flutterwave
// @Security BearerAuth
// @Tags order
// @Accept json
// @Produce json
// @Param order body dto.PlaceOrderRequest true "Позиции, сумма и адрес доставки"
// @Success 200 {object} dto.LinkResponse "Ссылка на оплату"
// @Failure 400 {object} dto.ValidationErrorResponse "Неверные данные"
// @Failure 401 {object} dto.UnauthorizedErrorResponse "Не авторизован"
// @Failure 409 {object} dto.ConflictErrorResponse "Уже есть неоплаченный заказ"
// @Failure 429 {object} dto.RateLimitedErrorResponse "Слишком много запросов"
// @Failure 502 {object} dto.GatewayErrorResponse "Ошибка платёжного шлюза"
// @Failure 503 {object} dto.GatewayErrorResponse "Платёжный шлюз не настроен"
// @Failure 500 {object} dto.InternalErrorResponse "Внутренняя ошибка"
// @Router /api/order/flutterwave [post]
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, h.log, "place_order", err)
		return
	}
	amount, err := models.ToCents(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid amount", []dto.FieldError{{Field: "amount", Message: err.Error()}}))
		return
	}

	items := make([]service.CreateOrderItem, 0, len(req.Items))
	for i, it := range req.Items {
		price, err := models.ToCents(it.Price)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid item price", []dto.FieldError{{Field: "items." + strconv.Itoa(i) + ".price", Message: err.Error()}}))
			return
		}
		var image string
		if len(it.Image) > 0 {
			image = it.Image[0]
		}
		items = append(items, service.CreateOrderItem{
			ProductID:  it.ProductID,
			Name:       it.Name,
			PriceCents: price,
			Quantity:   it.Quantity,
			Size:       it.Size,
			Color:      it.Color,
			Image:      image,
		})
	}

	res, err := h.orders.CreateOrder(c.Request.Context(), service.CreateOrderInput{
		Items:       items,
		AmountCents: amount,
		Address:     req.Address.ToModel(),
	})
	if err != nil {
		writeServiceError(c, h.log, "place_order", err)
		return
	}
	c.JSON(http.StatusOK, dto.LinkResponse{Success: true, Link: res.Link, OrderID: res.Order.ID.String()})
}

// ContinuePayment godoc
// @Summary Продолжение оплаты
// @Description Новая ссылка на оплату существующего неоплаченного заказа
// @Security BearerAuth
// @Tags order
// @Accept json
// @Produce json
// @Param order body dto.OrderIDRequest true "ID заказа"
// @Success 200 {object} dto.LinkResponse "Ссылка на оплату"
// @Failure 400 {object} dto.ValidationErrorResponse "Неверный ID"
// @Failure 401 {object} dto.UnauthorizedErrorResponse "Не авторизован"
// @Failure 403 {object} dto.ForbiddenErrorResponse "Чужой заказ"
// @Failure 404 {object} dto.NotFoundErrorResponse "Заказ не найден"
// @Failure 409 {object} dto.ConflictErrorResponse "Заказ уже оплачен"
// @Failure 502 {object} dto.GatewayErrorResponse "Ошибка платёжного шлюза"
// @Failure 500 {object} dto.InternalErrorResponse "Внутренняя ошибка"
// @Router /api/order/continue-payment [post]
func (h *OrderHandler) ContinuePayment(c *gin.Context) {
	var req dto.OrderIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("Order ID is required", nil))
		return
	}
	id, ok := parseOrderID(c, req.OrderID)
	if !ok {
		return
	}
	res, err := h.orders.ContinuePayment(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, "continue_payment", err)
		return
	}
	c.JSON(http.StatusOK, dto.LinkResponse{Success: true, Link: res.Link, OrderID: res.Order.ID.String()})
}

// VerifyPayment godoc
// @Summary Подтверждение оплаты
// @Description Проверяет транзакцию у Flutterwave после редиректа и фиксирует оплату заказа. Повтор с той же транзакцией идемпотентен
// @Security BearerAuth
// @Tags order
// @Accept json
// @Produce json
// @Param verify body dto.VerifyPaymentRequest true "ID транзакции и заказа"
// @Success 200 {object} dto.VerifyResponse "Оплата подтверждена"
// @Failure 400 {object} dto.ValidationErrorResponse "Неверные данные"
// @Failure 401 {object} dto.UnauthorizedErrorResponse "Не авторизован"
// @Failure 402 {object} dto.PaymentErrorResponse "Оплата не прошла или не совпала с заказом"
// @Failure 403 {object} dto.ForbiddenErrorResponse "Чужой заказ"
// @Failure 404 {object} dto.NotFoundErrorResponse "Заказ не найден"
// @Failure 409 {object} dto.ConflictErrorResponse "Заказ оплачен другой транзакцией"
// @Failure 502 {object} dto.GatewayErrorResponse "Ошибка платёжного шлюза"
// @Failure 503 {object} dto.GatewayErrorResponse "Платёжный шлюз не настроен"
// @Failure 500 {object} dto.InternalErrorResponse "Внутренняя ошибка"
// @Router /api/order/verifyFlutterwave [post]
func (h *OrderHandler) VerifyPayment(c *gin.Context) {
	var req dto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, h.log, "verify_payment", err)
		return
	}
	id, ok := parseOrderID(c, req.OrderID)
	if !ok {
		return
	}
	res, err := h.orders.VerifyPayment(c.Request.Context(), service.VerifyPaymentInput{
		TransactionID: req.TransactionID,
		OrderID:       id,
	})
	if err != nil {
		writeServiceError(c, h.log, "verify_payment", err)
		return
	}
	c.JSON(http.StatusOK, dto.VerifyResponse{
		Success:         true,
		Message:         res.Message,
		AlreadyVerified: res.AlreadyVerified,
		Order:           dto.NewOrderResponse(res.Order),
	})
}

// CancelPending godoc
// @Summary Отмена неоплаченного заказа
// @Description Отменяет заказ по ID, а без ID единственный неоплаченный заказ пользователя
// @Security BearerAuth
// @Tags order
// @Accept json
// @Produce json
// @Param cancel body dto.CancelPendingRequest false "ID заказа (необязательно)"
// @Success 200 {object} dto.CancelResponse "Результат отмены"
// @Failure 400 {object} dto.ValidationErrorResponse "Неверный ID"
// @Failure 401 {object} dto.UnauthorizedErrorResponse "Не авторизован"
// @Failure 403 {object} dto.ForbiddenErrorResponse "Чужой заказ"
// @Failure 409 {object} dto.ConflictErrorResponse "Заказ уже оплачен"
// @Failure 500 {object} dto.InternalErrorResponse "Внутренняя ошибка"
// @Router /api/order/cancel-pending [post]
func (h *OrderHandler) CancelPending(c *gin.Context) {
	var req dto.CancelPendingRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, h.log, "cancel_pending", err)
			return
		}
	}
	var idPtr *uuid.UUID
	if strings.TrimSpace(req.OrderID) != "" {
		id, ok := parseOrderID(c, req.OrderID)
		if !ok {
			return
		}
		idPtr = &id
	}
	res, err := h.orders.CancelPendingOrder(c.Request.Context(), idPtr)
	if err != nil {
		writeServiceError(c, h.log, "cancel_pending", err)
		return
	}
	resp := dto.CancelResponse{Success: true, Cancelled: res.Cancelled, Message: res.Message}
	if res.Cancelled {
		resp.OrderID = res.OrderID.String()
	}
	c.JSON(http.StatusOK, resp)
}

// UserOrders godoc
// @Summary Заказы пользователя
// @Description Список заказов текущего пользователя с фильтрами и пагинацией
// @Security BearerAuth
// @Tags order
// @Accept json
// @Produce json
// @Param filter body dto.ListOrdersRequest false "Фильтры"
// @Success 200 {object} dto.OrdersResponse "Список заказов"
// @Failure 400 {object} dto.ValidationErrorResponse "Неверные данные"
// @Failure 401 {object} dto.UnauthorizedErrorResponse "Не авторизован"
// @Failure 500 {object} dto.InternalErrorResponse "Внутренняя ошибка"
// @Router /api/order/userorders [post]
func (h *OrderHandler) UserOrders(c *gin.Context) {
	uid, _ := service.UserIDFromContext(c.Request.Context())
	h.list(c, "user_orders", &uid)
}

// AllOrders godoc
// @Summary Все заказы
// @Description Список всех заказов магазина (только админ)
// @Security BearerAuth
// @Tags admin
// @Accept json
// @Produce json
// @Param filter body dto.ListOrdersRequest false "Фильтры"
// @Success 200 {object} dto.OrdersResponse "Список заказов"
// @Failure 400 {object} dto.ValidationErrorResponse "Неверные данные"
// @Failure 401 {object} dto.UnauthorizedErrorResponse "Не авторизован"
// @Failure 403 {object} dto.ForbiddenErrorResponse "Нет прав"
// @Failure 500 {object} dto.InternalErrorResponse "Внутренняя ошибка"
// @Router /api/order/list [post]
func (h *OrderHandler) AllOrders(c *gin.Context) {
	h.list(c, "all_orders", nil)
}

func (h *OrderHandler) list(c *gin.Context, op string, userID *string) {
	var req dto.ListOrdersRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, h.log, op, err)
			return
		}
	}
	f := service.ListFilter{UserID: userID, Paid: req.Paid, Limit: req.Limit, Offset: req.Offset}
	if req.Status != nil {
		st := models.OrderStatus(*req.Status)
		f.Status = &st
	}
	orders, total, err := h.orders.ListOrders(c.Request.Context(), f)
	if err != nil {
		writeServiceError(c, h.log, op, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrdersResponse(orders, total))
}

// GetOrder godoc
// @Summary Получение заказа
// @Description Один заказ по ID; покупатель видит только свои заказы
// @Security BearerAuth
// @Tags order
// @Produce json
// @Param id path string true "ID заказа"
// @Success 200 {object} dto.OrderEnvelope "Заказ"
// @Failure 400 {object} dto.ValidationErrorResponse "Неверный ID"
// @Failure 401 {object} dto.UnauthorizedErrorResponse "Не авторизован"
// @Failure 403 {object} dto.ForbiddenErrorResponse "Чужой заказ"
// @Failure 404 {object} dto.NotFoundErrorResponse "Заказ не найден"
// @Failure 500 {object} dto.InternalErrorResponse "Внутренняя ошибка"
// @Router /api/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := parseOrderID(c, c.Param("id"))
	if !ok {
		return
	}
	o, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, "get_order", err)
		return
	}
	c.JSON(http.StatusOK, dto.OrderEnvelope{Success: true, Order: dto.NewOrderResponse(o)})
}

// UpdateStatus godoc
// @Summary Смена статуса заказа
// @Description Переводит оплаченный заказ в следующий статус доставки (только админ)
// @Security BearerAuth
// @Tags admin
// @Accept json
// @Produce json
// @Param status body dto.UpdateStatusRequest true "ID заказа и новый статус"
// @Success 200 {object} dto.MessageResponse "Статус обновлён"
// @Failure 400 {object} dto.ValidationErrorResponse "Неверные данные"
// @Failure 401 {object} dto.UnauthorizedErrorResponse "Не авторизован"
// @Failure 403 {object} dto.ForbiddenErrorResponse "Нет прав"
// @Failure 404 {object} dto.NotFoundErrorResponse "Заказ не найден"
// @Failure 409 {object} dto.ConflictErrorResponse "Недопустимый переход статуса"
// @Failure 500 {object} dto.InternalErrorResponse "Внутренняя ошибка"
// @Router /api/order/status [post]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, h.log, "update_status", err)
		return
	}
	id, ok := parseOrderID(c, req.OrderID)
	if !ok {
		return
	}
	if _, err := h.orders.UpdateStatus(c.Request.Context(), id, models.OrderStatus(req.Status)); err != nil {
		writeServiceError(c, h.log, "update_status", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: service.MsgStatusUpdated})
}

func parseOrderID(c *gin.Context, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid order id", []dto.FieldError{{Field: "orderId", Message: "must be a valid order id"}}))
		return uuid.Nil, false
	}
	return id, true
}
