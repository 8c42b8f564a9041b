package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Estevanavelar/naldogas-backend/pkg/enums"
)

// Receivable is an open credit-sale balance. PaidCents and PendingCents are
// cached projections of the append-only payment log; they always satisfy
// paid + pending == total.
type Receivable struct {
	ID           uuid.UUID               `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	SaleID       uuid.UUID               `gorm:"column:sale_id;type:uuid;not null;uniqueIndex"`
	CustomerID   uuid.UUID               `gorm:"column:customer_id;type:uuid;not null;index"`
	TotalCents   int64                   `gorm:"column:total_cents;not null"`
	PaidCents    int64                   `gorm:"column:paid_cents;not null;default:0"`
	PendingCents int64                   `gorm:"column:pending_cents;not null"`
	Status       enums.ReceivableStatus  `gorm:"column:status;type:receivable_status;not null;default:'pending'"`
	CreatedDate  time.Time               `gorm:"column:created_date;not null"`
	DueDate      time.Time               `gorm:"column:due_date;not null"`
	Payments     []ReceivablePayment     `gorm:"foreignKey:ReceivableID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// ReceivablePayment is one settlement against a receivable. Append-only.
type ReceivablePayment struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	ReceivableID   uuid.UUID           `gorm:"column:receivable_id;type:uuid;not null;index"`
	AmountCents    int64               `gorm:"column:amount_cents;not null"`
	Method         enums.PaymentMethod `gorm:"column:method;type:payment_method;not null"`
	PaymentDate    time.Time           `gorm:"column:payment_date;not null"`
	IdempotencyKey *string             `gorm:"column:idempotency_key;uniqueIndex:ux_receivable_payments_idempotency_key"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
}
