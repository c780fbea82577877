package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Beliver-cell/Fantasy-luxe-store/internal/dto"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeServiceError переводит ошибку сервиса в HTTP-ответ.
func writeServiceError(c *gin.Context, log *zap.Logger, op string, err error) {
	var gerr *service.GatewayError
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, dto.NewValidationError(validationMessage(err), nil))
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("Not Authorized Login Again"))
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusForbidden, dto.NewForbiddenError("Unauthorized"))
	case errors.Is(err, service.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError(err.Error()))
	case errors.Is(err, service.ErrConflictPendingOrder),
		errors.Is(err, service.ErrAlreadyPaid),
		errors.Is(err, service.ErrCannotCancelPaid),
		errors.Is(err, service.ErrOrderNotPaid),
		errors.Is(err, service.ErrInvalidStatusTransition):
		c.JSON(http.StatusConflict, dto.NewConflictError(err.Error()))
	case errors.Is(err, service.ErrAmountMismatch):
		c.JSON(http.StatusPaymentRequired, dto.NewPaymentError("amount_mismatch", "Payment amount mismatch detected"))
	case errors.Is(err, service.ErrReferenceMismatch):
		c.JSON(http.StatusPaymentRequired, dto.NewPaymentError("reference_mismatch", "Transaction reference mismatch"))
	case errors.Is(err, service.ErrVerificationFailed):
		c.JSON(http.StatusPaymentRequired, dto.NewPaymentError("payment_failed", "Payment verification failed"))
	case errors.Is(err, service.ErrGatewayNotConfigured):
		c.JSON(http.StatusServiceUnavailable, dto.NewGatewayError("gateway_not_configured", "Payment service not configured. Please contact support."))
	case errors.As(err, &gerr), errors.Is(err, service.ErrGatewayFailure):
		msg := "Payment initialization failed"
		if gerr != nil && gerr.Message != "" {
			msg = gerr.Message
		}
		log.Warn("payment gateway error", zap.String("op", op), zap.Error(err))
		c.JSON(http.StatusBadGateway, dto.NewGatewayError("gateway_error", msg))
	default:
		log.Error("internal error", zap.String("op", op), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
	}
}

func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": ")
	if msg == "" {
		return service.ErrValidation.Error()
	}
	return msg
}

func bindError(c *gin.Context, log *zap.Logger, op string, err error) {
	log.Warn("invalid request body", zap.String("op", op), zap.Error(err))
	c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", []dto.FieldError{}))
}
