package models

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalog entry sold at the counter: a returnable
// container good (gas cylinder, water bottle) or a plain accessory.
type Product struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	SKU         string            `gorm:"column:sku;not null;uniqueIndex"`
	Name        string            `gorm:"column:name;not null"`
	Description *string           `gorm:"column:description"`
	PriceCents  int64             `gorm:"column:price_cents;not null"`
	IsContainer bool              `gorm:"column:is_container;not null;default:false"`
	IsActive    bool              `gorm:"column:is_active;not null;default:true"`
	Inventory   *ProductInventory `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductInventory tracks the sellable count per non-container product.
// Container products are counted by ContainerStock instead.
type ProductInventory struct {
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	AvailableQty int       `gorm:"column:available_qty;not null;default:0"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
