package models

import (
	"time"

	"github.com/google/uuid"
)

// ContainerStock is the per-depot split of returnable units. The three
// buckets (full, empty, customer possession) partition TotalCirculating;
// no mutation may create or destroy a unit.
type ContainerStock struct {
	DepotID          uuid.UUID `gorm:"column:depot_id;type:uuid;primaryKey"`
	FullQty          int       `gorm:"column:full_qty;not null;default:0"`
	EmptyQty         int       `gorm:"column:empty_qty;not null;default:0"`
	TotalCirculating int       `gorm:"column:total_circulating;not null;default:0"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// CustomerPossession is the running count of owed containers per customer
// at one depot. It only decreases through container returns.
type CustomerPossession struct {
	DepotID    uuid.UUID `gorm:"column:depot_id;type:uuid;primaryKey"`
	CustomerID uuid.UUID `gorm:"column:customer_id;type:uuid;primaryKey"`
	OwedQty    int       `gorm:"column:owed_qty;not null;default:0"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
