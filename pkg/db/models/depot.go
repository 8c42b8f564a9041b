package models

import (
	"time"

	"github.com/google/uuid"
)

// Depot is a physical stock location whose container counts the ledger tracks.
type Depot struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
