package service

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated         = errors.New("not authenticated")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrValidation              = errors.New("validation error")
	ErrConflictPendingOrder    = errors.New("you already have a pending order; complete or cancel it first")
	ErrAmountMismatch          = errors.New("paid amount or currency does not match the order")
	ErrReferenceMismatch       = errors.New("transaction reference does not match the order")
	ErrGatewayNotConfigured    = errors.New("payment service not configured")
	ErrGatewayFailure          = errors.New("payment gateway error")
	ErrVerificationFailed      = errors.New("payment failed")
	ErrOrderNotFound           = errors.New("order not found")
	ErrAlreadyPaid             = errors.New("this order has already been paid")
	ErrCannotCancelPaid        = errors.New("cannot cancel a paid order")
	ErrOrderNotPaid            = errors.New("order is not paid yet")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// GatewayError несёт сообщение платёжного провайдера, если оно было.
// errors.Is(err, ErrGatewayFailure) == true.
type GatewayError struct {
	Op      string
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("payment gateway %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("payment gateway %s failed", e.Op)
}

func (e *GatewayError) Unwrap() []error { return []error{ErrGatewayFailure, e.Err} }

type processorMessage interface {
	ProcessorMessage() string
}

func newGatewayError(op string, err error) *GatewayError {
	ge := &GatewayError{Op: op, Err: err}
	var pm processorMessage
	if errors.As(err, &pm) {
		ge.Message = pm.ProcessorMessage()
	}
	return ge
}
