package deliveries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Estevanavelar/naldogas-backend/pkg/db/models"
	"github.com/Estevanavelar/naldogas-backend/pkg/enums"
	pkgerrors "github.com/Estevanavelar/naldogas-backend/pkg/errors"
)

// Repository persists delivery rows.
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

func (r *Repository) CreateTx(ctx context.Context, tx *gorm.DB, delivery *models.Delivery) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required to create a delivery")
	}
	return tx.WithContext(ctx).Create(delivery).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	var delivery models.Delivery
	if err := r.db.WithContext(ctx).First(&delivery, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (r *Repository) FindBySaleID(ctx context.Context, saleID uuid.UUID) (*models.Delivery, error) {
	var delivery models.Delivery
	if err := r.db.WithContext(ctx).First(&delivery, "sale_id = ?", saleID).Error; err != nil {
		return nil, err
	}
	return &delivery, nil
}

// TransitionTx moves the delivery from one status to another, guarded on the
// current status so racing updates cannot both win.
func (r *Repository) TransitionTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, from, to enums.DeliveryStatus, updates map[string]any) (bool, error) {
	if tx == nil {
		return false, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for delivery transition")
	}
	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = to
	updates["updated_at"] = time.Now()

	res := tx.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "transition delivery")
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) ListByStatus(ctx context.Context, status enums.DeliveryStatus) ([]models.Delivery, error) {
	var rows []models.Delivery
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) ListByDeliverer(ctx context.Context, delivererID uuid.UUID) ([]models.Delivery, error) {
	var rows []models.Delivery
	err := r.db.WithContext(ctx).
		Where("deliverer_id = ?", delivererID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}
