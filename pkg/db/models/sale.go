package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Estevanavelar/naldogas-backend/pkg/enums"
)

// Sale is the finalized sale record, one row per checkout.
type Sale struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	DepotID            uuid.UUID           `gorm:"column:depot_id;type:uuid;not null"`
	CustomerID         *uuid.UUID          `gorm:"column:customer_id;type:uuid"`
	Channel            enums.SalesChannel  `gorm:"column:channel;type:sales_channel;not null"`
	PaymentMethod      enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null"`
	SubtotalCents      int64               `gorm:"column:subtotal_cents;not null"`
	DiscountCents      int64               `gorm:"column:discount_cents;not null;default:0"`
	TotalCents         int64               `gorm:"column:total_cents;not null"`
	ContainerExchanged bool                `gorm:"column:container_exchanged;not null;default:true"`
	ContainerOwed      int                 `gorm:"column:container_owed;not null;default:0"`
	IdempotencyKey     *string             `gorm:"column:idempotency_key;uniqueIndex:ux_sales_idempotency_key"`
	Notes              *string             `gorm:"column:notes"`
	Items              []SaleItem          `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
}

// SaleItem is a priced line within a sale. SubtotalCents is the rounded
// unit price times quantity, frozen at sale time.
type SaleItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	SaleID         uuid.UUID `gorm:"column:sale_id;type:uuid;not null;index"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	ProductName    string    `gorm:"column:product_name;not null"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	SubtotalCents  int64     `gorm:"column:subtotal_cents;not null"`
	IsContainer    bool      `gorm:"column:is_container;not null;default:false"`
}
