package containers

import (
	"context"
	"errors"
	"fmt"

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

// SaleOutcome is the exchange result the sale record freezes.
type SaleOutcome struct {
	ContainerExchanged bool
	ContainerOwed      int
}

// RecordSaleInput carries the ledger-relevant slice of a checkout.
type RecordSaleInput struct {
	DepotID               uuid.UUID
	CustomerID            *uuid.UUID
	ContainerCount        int
	CustomerReturnedEmpty bool
}

// Service is the container ledger: the per-depot split of returnable units
// across full stock, empty stock and customer hands.
type Service interface {
	// ApplySale runs the exchange transition inside the caller's sale
	// transaction and returns the outcome to freeze on the sale row.
	ApplySale(ctx context.Context, tx *gorm.DB, input RecordSaleInput) (SaleOutcome, error)
	ReturnContainers(ctx context.Context, depotID, customerID uuid.UUID, count int) error
	AcquireUnits(ctx context.Context, depotID uuid.UUID, count int) error
	RefillEmpties(ctx context.Context, depotID uuid.UUID, count int) error
	GetStock(ctx context.Context, depotID uuid.UUID) (*models.ContainerStock, error)
	GetPossession(ctx context.Context, depotID, customerID uuid.UUID) (int, error)
}

type service struct {
	repo   *Repository
	tx     txRunner
	events *outbox.Service
	logg   *logger.Logger
}

// NewService builds the container ledger service.
func NewService(repo *Repository, tx txRunner, events *outbox.Service, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("container repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	return &service{repo: repo, tx: tx, events: events, logg: logg}, nil
}

func (s *service) ApplySale(ctx context.Context, tx *gorm.DB, input RecordSaleInput) (SaleOutcome, error) {
	if tx == nil {
		return SaleOutcome{}, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for sale ledger effect")
	}
	if input.ContainerCount < 0 {
		return SaleOutcome{}, pkgerrors.New(pkgerrors.CodeValidation, "container count must not be negative")
	}

	// A cart without container products is exchange-irrelevant. The sale
	// still records exchanged=true / owed=0 so nothing spuriously flags an
	// owed unit.
	if input.ContainerCount == 0 {
		return SaleOutcome{ContainerExchanged: true}, nil
	}

	if !input.CustomerReturnedEmpty && input.CustomerID == nil {
		return SaleOutcome{}, pkgerrors.New(pkgerrors.CodeValidation, "walk-in sales cannot owe containers")
	}

	if err := s.repo.TakeFull(ctx, tx, input.DepotID, input.ContainerCount); err != nil {
		return SaleOutcome{}, err
	}

	outcome := SaleOutcome{ContainerExchanged: true}
	if input.CustomerReturnedEmpty {
		if err := s.repo.AddEmpty(ctx, tx, input.DepotID, input.ContainerCount); err != nil {
			return SaleOutcome{}, err
		}
	} else {
		outcome = SaleOutcome{ContainerOwed: input.ContainerCount}
		if err := s.repo.IncrementPossession(ctx, tx, input.DepotID, *input.CustomerID, input.ContainerCount); err != nil {
			return SaleOutcome{}, err
		}
	}

	if err := s.repo.CheckPartition(ctx, tx, input.DepotID); err != nil {
		return SaleOutcome{}, err
	}
	return outcome, nil
}

func (s *service) ReturnContainers(ctx context.Context, depotID, customerID uuid.UUID, count int) error {
	if count <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "return count must be a positive integer")
	}
	if customerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.DecrementPossession(ctx, tx, depotID, customerID, count); err != nil {
			return err
		}
		if err := s.repo.AddEmpty(ctx, tx, depotID, count); err != nil {
			return err
		}
		if err := s.repo.CheckPartition(ctx, tx, depotID); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventContainersReturned,
			AggregateType: enums.AggregateContainerStock,
			AggregateID:   depotID,
			Version:       1,
			Data: payloads.ContainersReturnedEvent{
				DepotID:    depotID,
				CustomerID: customerID,
				Count:      count,
			},
		})
	})
	if err != nil {
		return err
	}

	if s.logg != nil {
		logCtx := s.logg.WithDepotID(ctx, depotID.String())
		logCtx = s.logg.WithCustomerID(logCtx, customerID.String())
		s.logg.Info(logCtx, fmt.Sprintf("customer returned %d containers", count))
	}
	return nil
}

func (s *service) AcquireUnits(ctx context.Context, depotID uuid.UUID, count int) error {
	if count <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "acquired count must be a positive integer")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.AddCirculating(ctx, tx, depotID, count); err != nil {
			return err
		}
		if err := s.repo.CheckPartition(ctx, tx, depotID); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventContainersAcquired,
			AggregateType: enums.AggregateContainerStock,
			AggregateID:   depotID,
			Version:       1,
			Data: payloads.ContainersAcquiredEvent{
				DepotID: depotID,
				Count:   count,
			},
		})
	})
}

func (s *service) RefillEmpties(ctx context.Context, depotID uuid.UUID, count int) error {
	if count <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "refill count must be a positive integer")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.MoveEmptyToFull(ctx, tx, depotID, count); err != nil {
			return err
		}
		if err := s.repo.CheckPartition(ctx, tx, depotID); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventContainersRefilled,
			AggregateType: enums.AggregateContainerStock,
			AggregateID:   depotID,
			Version:       1,
			Data: payloads.ContainersRefilledEvent{
				DepotID: depotID,
				Count:   count,
			},
		})
	})
}

func (s *service) GetStock(ctx context.Context, depotID uuid.UUID) (*models.ContainerStock, error) {
	stock, err := s.repo.GetStock(ctx, depotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "depot stock not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load depot stock")
	}
	return stock, nil
}

func (s *service) GetPossession(ctx context.Context, depotID, customerID uuid.UUID) (int, error) {
	owed, err := s.repo.GetPossession(ctx, depotID, customerID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer possession")
	}
	return owed, nil
}
