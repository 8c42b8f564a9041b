package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Estevanavelar/naldogas-backend/pkg/db/models"
	pkgerrors "github.com/Estevanavelar/naldogas-backend/pkg/errors"
)

// Repository wires product catalog and inventory persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the product with its inventory row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Inventory").First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindBySKU loads a product by its catalog SKU.
func (r *Repository) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Inventory").First(&product, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListActive returns the sellable catalog in name order.
func (r *Repository) ListActive(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("Inventory").
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

// UpsertInventory creates or replaces the product's inventory row.
func (r *Repository) UpsertInventory(ctx context.Context, inv *models.ProductInventory) error {
	return r.db.WithContext(ctx).Save(inv).Error
}

// DecrementAvailable atomically takes qty units off the product's inventory,
// failing when fewer than qty units remain. Must run inside the sale's
// transaction so a failed sale leaves no partial mutation.
func (r *Repository) DecrementAvailable(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for inventory decrement")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE product_inventories
		SET available_qty = available_qty - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE product_id = ? AND available_qty >= ?
	`, qty, productID, qty)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "decrement inventory")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for product")
	}
	return nil
}
