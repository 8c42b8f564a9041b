package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a back-office customer record. CPF and phone are stored
// digits-only so lookups normalize the same way.
type Customer struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	CPF       *string   `gorm:"column:cpf;uniqueIndex"`
	Phone     *string   `gorm:"column:phone;index"`
	Address   *string   `gorm:"column:address"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
