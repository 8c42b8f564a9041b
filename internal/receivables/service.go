package receivables

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Estevanavelar/naldogas-backend/internal/money"
	dbpkg "github.com/Estevanavelar/naldogas-backend/pkg/db"
	"github.com/Estevanavelar/naldogas-backend/pkg/db/models"
	"github.com/Estevanavelar/naldogas-backend/pkg/enums"
	pkgerrors "github.com/Estevanavelar/naldogas-backend/pkg/errors"
	"github.com/Estevanavelar/naldogas-backend/pkg/logger"
	"github.com/Estevanavelar/naldogas-backend/pkg/outbox"
	"github.com/Estevanavelar/naldogas-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateInput opens a balance against a credit sale.
type CreateInput struct {
	SaleID     uuid.UUID
	CustomerID uuid.UUID
	Total      money.Money
	DueDate    time.Time
}

// RegisterPaymentInput settles part or all of a receivable.
type RegisterPaymentInput struct {
	Amount         money.Money
	Method         enums.PaymentMethod
	IdempotencyKey *string
}

// Summary aggregates a set of receivables for the financial dashboard.
type Summary struct {
	TotalCents               int64   `json:"total_cents"`
	PaidCents                int64   `json:"paid_cents"`
	PendingCents             int64   `json:"pending_cents"`
	OverdueCents             int64   `json:"overdue_cents"`
	OverdueCount             int     `json:"overdue_count"`
	AveragePaymentWindowDays float64 `json:"average_payment_window_days"`
}

// Service is the receivable state machine: pending through partial payments
// to paid, with overdue classification computed at read time.
type Service interface {
	// CreateTx opens the receivable inside the caller's sale transaction.
	CreateTx(ctx context.Context, tx *gorm.DB, input CreateInput) (*models.Receivable, error)
	RegisterPayment(ctx context.Context, receivableID uuid.UUID, input RegisterPaymentInput) (*models.Receivable, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Receivable, error)
	ListByStatus(ctx context.Context, status enums.ReceivableStatus) ([]models.Receivable, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Receivable, error)
	ListOverdue(ctx context.Context) ([]models.Receivable, error)
	Summarize(ctx context.Context) (*Summary, error)
}

type service struct {
	repo   *Repository
	tx     txRunner
	events *outbox.Service
	logg   *logger.Logger
	now    func() time.Time
}

// NewService builds the receivable service.
func NewService(repo *Repository, tx txRunner, events *outbox.Service, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("receivable repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	return &service{repo: repo, tx: tx, events: events, logg: logg, now: time.Now}, nil
}

func (s *service) CreateTx(ctx context.Context, tx *gorm.DB, input CreateInput) (*models.Receivable, error) {
	if !input.Total.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receivable total must be positive")
	}
	if input.SaleID == uuid.Nil || input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale and customer ids are required")
	}
	if input.DueDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "due date is required")
	}

	receivable := &models.Receivable{
		ID:           uuid.New(),
		SaleID:       input.SaleID,
		CustomerID:   input.CustomerID,
		TotalCents:   input.Total.Cents(),
		PaidCents:    0,
		PendingCents: input.Total.Cents(),
		Status:       enums.ReceivableStatusPending,
		CreatedDate:  s.now(),
		DueDate:      input.DueDate,
	}
	if err := s.repo.CreateTx(ctx, tx, receivable); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create receivable")
	}

	err := s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventReceivableOpened,
		AggregateType: enums.AggregateReceivable,
		AggregateID:   receivable.ID,
		Version:       1,
		Data: payloads.ReceivableOpenedEvent{
			ReceivableID: receivable.ID,
			SaleID:       receivable.SaleID,
			CustomerID:   receivable.CustomerID,
			TotalCents:   receivable.TotalCents,
			DueDate:      receivable.DueDate,
		},
	})
	if err != nil {
		return nil, err
	}
	return receivable, nil
}

func (s *service) RegisterPayment(ctx context.Context, receivableID uuid.UUID, input RegisterPaymentInput) (*models.Receivable, error) {
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if input.Method.IsDeferred() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a receivable cannot be settled on credit")
	}

	// Existence check up front so a missing id reads as 404, not as an
	// exhausted balance.
	if _, err := s.GetByID(ctx, receivableID); err != nil {
		return nil, err
	}

	var updated *models.Receivable
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.ApplyPaymentTx(ctx, tx, receivableID, input.Amount.Cents()); err != nil {
			return err
		}

		payment := &models.ReceivablePayment{
			ID:             uuid.New(),
			ReceivableID:   receivableID,
			AmountCents:    input.Amount.Cents(),
			Method:         input.Method,
			PaymentDate:    s.now(),
			IdempotencyKey: input.IdempotencyKey,
		}
		if err := s.repo.InsertPaymentTx(ctx, tx, payment); err != nil {
			if dbpkg.IsUniqueViolation(err, "ux_receivable_payments_idempotency_key") {
				return pkgerrors.New(pkgerrors.CodeIdempotency, "payment already registered for this idempotency key")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "log payment")
		}

		row, err := s.repo.RefreshStatusTx(ctx, tx, receivableID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh receivable status")
		}
		updated = row

		if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReceivablePaymentTaken,
			AggregateType: enums.AggregateReceivable,
			AggregateID:   receivableID,
			Version:       1,
			Data: payloads.ReceivablePaymentTakenEvent{
				ReceivableID: receivableID,
				PaymentID:    payment.ID,
				AmountCents:  payment.AmountCents,
				Method:       payment.Method,
				Status:       row.Status,
				PendingCents: row.PendingCents,
			},
		}); err != nil {
			return err
		}

		if row.Status == enums.ReceivableStatusPaid {
			// Settlement fires exactly once per receivable.
			return s.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventReceivableSettled,
				AggregateType: enums.AggregateReceivable,
				AggregateID:   receivableID,
				Version:       1,
				Data: payloads.ReceivableSettledEvent{
					ReceivableID: receivableID,
					CustomerID:   row.CustomerID,
					TotalCents:   row.TotalCents,
					SettledAt:    s.now(),
				},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithCustomerID(ctx, updated.CustomerID.String())
		s.logg.Info(logCtx, fmt.Sprintf("payment of %s registered, receivable now %s", input.Amount, updated.Status))
	}
	return updated, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Receivable, error) {
	receivable, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "receivable not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load receivable")
	}
	return receivable, nil
}

func (s *service) ListByStatus(ctx context.Context, status enums.ReceivableStatus) ([]models.Receivable, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid receivable status")
	}
	rows, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list receivables by status")
	}
	return rows, nil
}

func (s *service) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Receivable, error) {
	rows, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list receivables by customer")
	}
	return rows, nil
}

func (s *service) ListOverdue(ctx context.Context) ([]models.Receivable, error) {
	rows, err := s.repo.ListOverdue(ctx, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list overdue receivables")
	}
	return rows, nil
}

func (s *service) Summarize(ctx context.Context) (*Summary, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load receivables for summary")
	}
	summary := Summarize(rows, s.now())
	return &summary, nil
}

// IsOverdue reports whether the receivable is unpaid past its due date.
// Recomputed on every read, never cached.
func IsOverdue(r models.Receivable, now time.Time) bool {
	return r.Status != enums.ReceivableStatusPaid && now.After(r.DueDate)
}

// Summarize aggregates the set. The payment window is averaged over paid
// receivables as dueDate minus createdDate; the back office reads it as the
// credit window granted, not the actual time to payment.
func Summarize(rows []models.Receivable, now time.Time) Summary {
	var summary Summary
	var paidCount int
	var windowDays float64

	for _, r := range rows {
		summary.TotalCents += r.TotalCents
		summary.PaidCents += r.PaidCents
		summary.PendingCents += r.PendingCents
		if IsOverdue(r, now) {
			summary.OverdueCents += r.PendingCents
			summary.OverdueCount++
		}
		if r.Status == enums.ReceivableStatusPaid {
			paidCount++
			windowDays += r.DueDate.Sub(r.CreatedDate).Hours() / 24
		}
	}
	if paidCount > 0 {
		summary.AveragePaymentWindowDays = windowDays / float64(paidCount)
	}
	return summary
}
