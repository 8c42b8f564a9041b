package receivables

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Estevanavelar/naldogas-backend/pkg/db/models"
	"github.com/Estevanavelar/naldogas-backend/pkg/enums"
	pkgerrors "github.com/Estevanavelar/naldogas-backend/pkg/errors"
)

// Repository persists receivables and their append-only payment log.
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

func (r *Repository) CreateTx(ctx context.Context, tx *gorm.DB, receivable *models.Receivable) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required to open a receivable")
	}
	return tx.WithContext(ctx).Create(receivable).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Receivable, error) {
	var receivable models.Receivable
	if err := r.db.WithContext(ctx).Preload("Payments").First(&receivable, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &receivable, nil
}

func (r *Repository) FindBySaleID(ctx context.Context, saleID uuid.UUID) (*models.Receivable, error) {
	var receivable models.Receivable
	if err := r.db.WithContext(ctx).Preload("Payments").First(&receivable, "sale_id = ?", saleID).Error; err != nil {
		return nil, err
	}
	return &receivable, nil
}

// ApplyPaymentTx atomically moves amountCents from pending to paid. The
// balance guard makes concurrent overlapping payments serialize: the second
// one sees the reduced pending balance and fails instead of overdrawing.
func (r *Repository) ApplyPaymentTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, amountCents int64) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required to apply a payment")
	}
	res := tx.WithContext(ctx).Exec(`
		UPDATE receivables
		SET paid_cents = paid_cents + ?,
			pending_cents = pending_cents - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND pending_cents >= ?
	`, amountCents, amountCents, id, amountCents)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "apply payment")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeExceedsBalance, "payment exceeds the pending balance")
	}
	return nil
}

// RefreshStatusTx recomputes the cached status from the row's balances.
func (r *Repository) RefreshStatusTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Receivable, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required to refresh status")
	}
	var receivable models.Receivable
	if err := tx.WithContext(ctx).First(&receivable, "id = ?", id).Error; err != nil {
		return nil, err
	}
	status := StatusFor(receivable.PaidCents, receivable.PendingCents)
	if status != receivable.Status {
		if err := tx.WithContext(ctx).
			Model(&models.Receivable{}).
			Where("id = ?", id).
			Update("status", status).Error; err != nil {
			return nil, err
		}
		receivable.Status = status
	}
	return &receivable, nil
}

func (r *Repository) InsertPaymentTx(ctx context.Context, tx *gorm.DB, payment *models.ReceivablePayment) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required to log a payment")
	}
	return tx.WithContext(ctx).Create(payment).Error
}

func (r *Repository) ListByStatus(ctx context.Context, status enums.ReceivableStatus) ([]models.Receivable, error) {
	var rows []models.Receivable
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("due_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Receivable, error) {
	var rows []models.Receivable
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_date DESC").
		Find(&rows).Error
	return rows, err
}

// ListOverdue returns unpaid receivables whose due date has passed.
func (r *Repository) ListOverdue(ctx context.Context, now time.Time) ([]models.Receivable, error) {
	var rows []models.Receivable
	err := r.db.WithContext(ctx).
		Where("status <> ? AND due_date < ?", enums.ReceivableStatusPaid, now).
		Order("due_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) ListAll(ctx context.Context) ([]models.Receivable, error) {
	var rows []models.Receivable
	err := r.db.WithContext(ctx).
		Order("created_date DESC").
		Find(&rows).Error
	return rows, err
}

// StatusFor maps the cached balances to the receivable status. Status is a
// pure function of the pending balance: zero pending is paid, any payment
// with a remainder is partial, untouched is pending.
func StatusFor(paidCents, pendingCents int64) enums.ReceivableStatus {
	switch {
	case pendingCents == 0:
		return enums.ReceivableStatusPaid
	case paidCents > 0:
		return enums.ReceivableStatusPartial
	default:
		return enums.ReceivableStatusPending
	}
}
