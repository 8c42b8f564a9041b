package deliveries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

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

// CreateInput opens a pending delivery against a sale.
type CreateInput struct {
	SaleID  uuid.UUID
	Address string
	Notes   *string
}

// Service is the delivery state machine: pending to in_transit to delivered,
// or pending to cancelled. Dispatch locks the deliverer.
type Service interface {
	// CreateTx opens the delivery inside the caller's sale transaction.
	CreateTx(ctx context.Context, tx *gorm.DB, input CreateInput) (*models.Delivery, error)
	AssignDeliverer(ctx context.Context, deliveryID, delivererID uuid.UUID) (*models.Delivery, error)
	UpdateStatus(ctx context.Context, deliveryID uuid.UUID, newStatus enums.DeliveryStatus) (*models.Delivery, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error)
	ListByStatus(ctx context.Context, status enums.DeliveryStatus) ([]models.Delivery, error)
	ListByDeliverer(ctx context.Context, delivererID uuid.UUID) ([]models.Delivery, error)
}

type service struct {
	repo   *Repository
	tx     txRunner
	events *outbox.Service
	logg   *logger.Logger
}

// NewService builds the delivery service.
func NewService(repo *Repository, tx txRunner, events *outbox.Service, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("delivery repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	return &service{repo: repo, tx: tx, events: events, logg: logg}, nil
}

func (s *service) CreateTx(ctx context.Context, tx *gorm.DB, input CreateInput) (*models.Delivery, error) {
	if input.SaleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id is required")
	}
	if strings.TrimSpace(input.Address) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address is required")
	}

	delivery := &models.Delivery{
		ID:      uuid.New(),
		SaleID:  input.SaleID,
		Status:  enums.DeliveryStatusPending,
		Address: strings.TrimSpace(input.Address),
		Notes:   input.Notes,
	}
	if err := s.repo.CreateTx(ctx, tx, delivery); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery")
	}
	return delivery, nil
}

// AssignDeliverer dispatches a pending delivery: the deliverer is attached
// and the status moves to in_transit in the same update. After dispatch the
// deliverer is immutable.
func (s *service) AssignDeliverer(ctx context.Context, deliveryID, delivererID uuid.UUID) (*models.Delivery, error) {
	if delivererID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deliverer id is required")
	}

	current, err := s.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if current.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyFinalized, fmt.Sprintf("delivery is already %s", current.Status))
	}
	if current.Status == enums.DeliveryStatusInTransit {
		return nil, pkgerrors.New(pkgerrors.CodeDelivererLocked, "deliverer cannot be changed after dispatch")
	}

	var updated *models.Delivery
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		moved, terr := s.repo.TransitionTx(ctx, tx, deliveryID,
			enums.DeliveryStatusPending, enums.DeliveryStatusInTransit,
			map[string]any{"deliverer_id": delivererID})
		if terr != nil {
			return terr
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "delivery is no longer pending")
		}

		if terr := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDeliveryAssigned,
			AggregateType: enums.AggregateDelivery,
			AggregateID:   deliveryID,
			Version:       1,
			Data: payloads.DeliveryAssignedEvent{
				DeliveryID:  deliveryID,
				SaleID:      current.SaleID,
				DelivererID: delivererID,
			},
		}); terr != nil {
			return terr
		}
		return s.emitStatusChanged(ctx, tx, current, enums.DeliveryStatusInTransit)
	})
	if err != nil {
		return nil, err
	}

	updated, err = s.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) UpdateStatus(ctx context.Context, deliveryID uuid.UUID, newStatus enums.DeliveryStatus) (*models.Delivery, error) {
	if !newStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery status")
	}

	current, err := s.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if err := validateTransition(current.Status, newStatus); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	now := time.Now()
	switch newStatus {
	case enums.DeliveryStatusDelivered:
		updates["delivered_at"] = now
	case enums.DeliveryStatusCancelled:
		updates["cancelled_at"] = now
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		moved, terr := s.repo.TransitionTx(ctx, tx, deliveryID, current.Status, newStatus, updates)
		if terr != nil {
			return terr
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "delivery status changed concurrently")
		}
		return s.emitStatusChanged(ctx, tx, current, newStatus)
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(ctx, fmt.Sprintf("delivery %s moved %s -> %s", deliveryID, current.Status, newStatus))
	}
	return s.GetByID(ctx, deliveryID)
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	delivery, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery")
	}
	return delivery, nil
}

func (s *service) ListByStatus(ctx context.Context, status enums.DeliveryStatus) ([]models.Delivery, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery status")
	}
	rows, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list deliveries by status")
	}
	return rows, nil
}

func (s *service) ListByDeliverer(ctx context.Context, delivererID uuid.UUID) ([]models.Delivery, error) {
	rows, err := s.repo.ListByDeliverer(ctx, delivererID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list deliveries by deliverer")
	}
	return rows, nil
}

func (s *service) emitStatusChanged(ctx context.Context, tx *gorm.DB, current *models.Delivery, to enums.DeliveryStatus) error {
	return s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventDeliveryStatusChanged,
		AggregateType: enums.AggregateDelivery,
		AggregateID:   current.ID,
		Version:       1,
		Data: payloads.DeliveryStatusChangedEvent{
			DeliveryID: current.ID,
			SaleID:     current.SaleID,
			From:       current.Status,
			To:         to,
		},
	})
}

// validateTransition enforces the lifecycle table. Delivered and cancelled
// are terminal; a dispatched delivery cannot be cancelled.
func validateTransition(from, to enums.DeliveryStatus) error {
	if from.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeAlreadyFinalized, fmt.Sprintf("delivery is already %s", from))
	}
	switch from {
	case enums.DeliveryStatusPending:
		if to == enums.DeliveryStatusInTransit || to == enums.DeliveryStatusCancelled {
			return nil
		}
	case enums.DeliveryStatusInTransit:
		if to == enums.DeliveryStatusDelivered {
			return nil
		}
		if to == enums.DeliveryStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "a dispatched delivery cannot be cancelled")
		}
	}
	return pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("cannot move delivery from %s to %s", from, to))
}
