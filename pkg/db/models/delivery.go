package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Estevanavelar/naldogas-backend/pkg/enums"
)

// Delivery tracks the fulfillment lifecycle of one sale. It is independent
// of the sale's receivable: a sale may be delivered before or after payment.
type Delivery struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	SaleID      uuid.UUID            `gorm:"column:sale_id;type:uuid;not null;uniqueIndex"`
	DelivererID *uuid.UUID           `gorm:"column:deliverer_id;type:uuid;index"`
	Status      enums.DeliveryStatus `gorm:"column:status;type:delivery_status;not null;default:'pending'"`
	Address     string               `gorm:"column:address;not null"`
	Notes       *string              `gorm:"column:notes"`
	DeliveredAt *time.Time           `gorm:"column:delivered_at"`
	CancelledAt *time.Time           `gorm:"column:cancelled_at"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
