package containers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Estevanavelar/naldogas-backend/pkg/db/models"
	pkgerrors "github.com/Estevanavelar/naldogas-backend/pkg/errors"
)

// Repository owns the container_stocks and customer_possessions rows. Every
// mutating helper requires the caller's transaction so a sale either applies
// its whole ledger effect or none of it.
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

// GetStock loads the depot's stock row.
func (r *Repository) GetStock(ctx context.Context, depotID uuid.UUID) (*models.ContainerStock, error) {
	var stock models.ContainerStock
	if err := r.db.WithContext(ctx).First(&stock, "depot_id = ?", depotID).Error; err != nil {
		return nil, err
	}
	return &stock, nil
}

// GetPossession loads the owed count for one customer at one depot. A missing
// row means zero possession.
func (r *Repository) GetPossession(ctx context.Context, depotID, customerID uuid.UUID) (int, error) {
	var row models.CustomerPossession
	err := r.db.WithContext(ctx).
		First(&row, "depot_id = ? AND customer_id = ?", depotID, customerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.OwedQty, nil
}

// EnsureStock creates the depot's stock row when absent.
func (r *Repository) EnsureStock(ctx context.Context, depotID uuid.UUID) error {
	stock := models.ContainerStock{DepotID: depotID}
	return r.db.WithContext(ctx).
		Where("depot_id = ?", depotID).
		FirstOrCreate(&stock).Error
}

// TakeFull atomically removes count units from the depot's full stock,
// failing when fewer than count full units remain.
func (r *Repository) TakeFull(ctx context.Context, tx *gorm.DB, depotID uuid.UUID, count int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock mutation")
	}
	res := tx.WithContext(ctx).Exec(`
		UPDATE container_stocks
		SET full_qty = full_qty - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE depot_id = ? AND full_qty >= ?
	`, count, depotID, count)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "take full stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough full containers in stock")
	}
	return nil
}

// AddEmpty adds count units to the depot's empty stock.
func (r *Repository) AddEmpty(ctx context.Context, tx *gorm.DB, depotID uuid.UUID, count int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock mutation")
	}
	res := tx.WithContext(ctx).Exec(`
		UPDATE container_stocks
		SET empty_qty = empty_qty + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE depot_id = ?
	`, count, depotID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "add empty stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "depot stock row not found")
	}
	return nil
}

// MoveEmptyToFull converts count refilled empties back into full stock,
// failing when fewer than count empties are on hand.
func (r *Repository) MoveEmptyToFull(ctx context.Context, tx *gorm.DB, depotID uuid.UUID, count int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock mutation")
	}
	res := tx.WithContext(ctx).Exec(`
		UPDATE container_stocks
		SET empty_qty = empty_qty - ?,
			full_qty = full_qty + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE depot_id = ? AND empty_qty >= ?
	`, count, count, depotID, count)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "refill empties")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough empty containers to refill")
	}
	return nil
}

// AddCirculating puts count brand-new units into circulation as full stock.
func (r *Repository) AddCirculating(ctx context.Context, tx *gorm.DB, depotID uuid.UUID, count int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock mutation")
	}
	res := tx.WithContext(ctx).Exec(`
		UPDATE container_stocks
		SET full_qty = full_qty + ?,
			total_circulating = total_circulating + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE depot_id = ?
	`, count, count, depotID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "acquire units")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "depot stock row not found")
	}
	return nil
}

// IncrementPossession adds count owed units to the customer, creating the
// possession row on first debt.
func (r *Repository) IncrementPossession(ctx context.Context, tx *gorm.DB, depotID, customerID uuid.UUID, count int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for possession mutation")
	}
	res := tx.WithContext(ctx).Exec(`
		UPDATE customer_possessions
		SET owed_qty = owed_qty + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE depot_id = ? AND customer_id = ?
	`, count, depotID, customerID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "increment possession")
	}
	if res.RowsAffected > 0 {
		return nil
	}
	row := models.CustomerPossession{DepotID: depotID, CustomerID: customerID, OwedQty: count}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create possession row")
	}
	return nil
}

// DecrementPossession removes count owed units from the customer, failing
// when the customer holds fewer than count.
func (r *Repository) DecrementPossession(ctx context.Context, tx *gorm.DB, depotID, customerID uuid.UUID, count int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for possession mutation")
	}
	res := tx.WithContext(ctx).Exec(`
		UPDATE customer_possessions
		SET owed_qty = owed_qty - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE depot_id = ? AND customer_id = ? AND owed_qty >= ?
	`, count, depotID, customerID, count)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "decrement possession")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeExceedsPossession, "return exceeds the customer's owed containers")
	}
	return nil
}

// CheckPartition verifies the closed-system law for the depot inside the
// caller's transaction: full + empty + owed across customers must equal the
// units put into circulation.
func (r *Repository) CheckPartition(ctx context.Context, tx *gorm.DB, depotID uuid.UUID) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for partition check")
	}

	var stock models.ContainerStock
	if err := tx.WithContext(ctx).First(&stock, "depot_id = ?", depotID).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock for partition check")
	}

	var owed int64
	err := tx.WithContext(ctx).
		Model(&models.CustomerPossession{}).
		Where("depot_id = ?", depotID).
		Select("COALESCE(SUM(owed_qty), 0)").
		Scan(&owed).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum possession for partition check")
	}

	if int64(stock.FullQty)+int64(stock.EmptyQty)+owed != int64(stock.TotalCirculating) {
		return pkgerrors.New(pkgerrors.CodeInternal, "container partition does not balance for depot")
	}
	return nil
}
