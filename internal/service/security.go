package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SecurityEventKind string

const (
	SecurityOwnershipMismatch SecurityEventKind = "ownership_mismatch"
	SecurityAmountMismatch    SecurityEventKind = "amount_mismatch"
	SecurityReferenceMismatch SecurityEventKind = "reference_mismatch"
	SecurityPaidAfterRemoval  SecurityEventKind = "payment_for_missing_order"
)

type SecurityEvent struct {
	Kind          SecurityEventKind
	UserID        string
	OrderID       uuid.UUID
	TransactionID string
	Fields        []zap.Field
}

// SecurityAuditor получает события, требующие внимания эксплуатации.
type SecurityAuditor interface {
	Record(ctx context.Context, ev SecurityEvent)
}

type logAuditor struct{ log *zap.Logger }

// NewLogAuditor пишет события безопасности в отдельный именованный логгер.
func NewLogAuditor(log *zap.Logger) SecurityAuditor {
	return &logAuditor{log: log.Named("security")}
}

func (a *logAuditor) Record(_ context.Context, ev SecurityEvent) {
	fields := append([]zap.Field{
		zap.String("security_event", string(ev.Kind)),
		zap.String("user_id", ev.UserID),
		zap.String("order_id", ev.OrderID.String()),
		zap.String("transaction_id", ev.TransactionID),
	}, ev.Fields...)
	a.log.Error("security event", fields...)
}
