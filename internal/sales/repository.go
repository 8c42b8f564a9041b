package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Estevanavelar/naldogas-backend/pkg/db/models"
	pkgerrors "github.com/Estevanavelar/naldogas-backend/pkg/errors"
	"github.com/Estevanavelar/naldogas-backend/pkg/pagination"
)

// Repository persists sale rows and their frozen line items.
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

func (r *Repository) CreateTx(ctx context.Context, tx *gorm.DB, sale *models.Sale) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required to record a sale")
	}
	return tx.WithContext(ctx).Create(sale).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	if err := r.db.WithContext(ctx).Preload("Items").First(&sale, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *Repository) FindByIdempotencyKey(ctx context.Context, key string) (*models.Sale, error) {
	var sale models.Sale
	if err := r.db.WithContext(ctx).Preload("Items").First(&sale, "idempotency_key = ?", key).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

// ListByDateRange returns sales created inside [from, to), newest first.
func (r *Repository) ListByDateRange(ctx context.Context, from, to time.Time) ([]models.Sale, error) {
	var rows []models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// ListPage returns up to limit sales before the cursor position, newest
// first. Pass a nil cursor for the first page.
func (r *Repository) ListPage(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Sale, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var rows []models.Sale
	err := query.Find(&rows).Error
	return rows, err
}

// ListByCustomer returns the customer's sales, newest first.
func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Sale, error) {
	var rows []models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}
