package dto

// BaseError универсальный корневой формат ошибки
// Success — всегда false, витрина ориентируется на это поле
// Code — машинно-ориентированный код (snake_case)
// Message — краткое человеко-читаемое описание
// Details — дополнительная строка (пояснение / fragment)
// Fields — для валидационных ошибок (имя поля + текст)
type BaseError struct {
	Success bool         `json:"success"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details string       `json:"details,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// FieldError отдельная ошибка по конкретному полю
// Field: путь к полю (например: "amount" или "address.email")
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag,omitempty"`
}

// Семантические обёртки, совместимые по JSON.

// ValidationErrorResponse 400, Code: "validation_error"
type ValidationErrorResponse BaseError

// ConflictErrorResponse 409, Code: "conflict"
type ConflictErrorResponse BaseError

// UnauthorizedErrorResponse 401, Code: "unauthorized"
type UnauthorizedErrorResponse BaseError

// ForbiddenErrorResponse 403, Code: "forbidden"
type ForbiddenErrorResponse BaseError

// NotFoundErrorResponse 404, Code: "not_found"
type NotFoundErrorResponse BaseError

// PaymentErrorResponse 402, Code: "payment_failed" / "amount_mismatch" / "reference_mismatch"
type PaymentErrorResponse BaseError

// GatewayErrorResponse 502/503, Code: "gateway_error" / "gateway_not_configured"
type GatewayErrorResponse BaseError

// RateLimitedErrorResponse 429, Code: "rate_limited"
type RateLimitedErrorResponse BaseError

// InternalErrorResponse 500, Code: "internal_error"
type InternalErrorResponse BaseError

func NewValidationError(msg string, fields []FieldError) ValidationErrorResponse {
	return ValidationErrorResponse(BaseError{Code: "validation_error", Message: msg, Fields: fields})
}
func NewConflictError(msg string) ConflictErrorResponse {
	return ConflictErrorResponse(BaseError{Code: "conflict", Message: msg})
}
func NewUnauthorizedError(msg string) UnauthorizedErrorResponse {
	return UnauthorizedErrorResponse(BaseError{Code: "unauthorized", Message: msg})
}
func NewForbiddenError(msg string) ForbiddenErrorResponse {
	return ForbiddenErrorResponse(BaseError{Code: "forbidden", Message: msg})
}
func NewNotFoundError(msg string) NotFoundErrorResponse {
	return NotFoundErrorResponse(BaseError{Code: "not_found", Message: msg})
}
func NewPaymentError(code, msg string) PaymentErrorResponse {
	return PaymentErrorResponse(BaseError{Code: code, Message: msg})
}
func NewGatewayError(code, msg string) GatewayErrorResponse {
	return GatewayErrorResponse(BaseError{Code: code, Message: msg})
}
func NewRateLimitedError(msg string) RateLimitedErrorResponse {
	return RateLimitedErrorResponse(BaseError{Code: "rate_limited", Message: msg})
}
func NewInternalError(details string) InternalErrorResponse {
	return InternalErrorResponse(BaseError{Code: "internal_error", Message: "internal server error", Details: details})
}
