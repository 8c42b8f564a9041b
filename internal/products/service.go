package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Estevanavelar/naldogas-backend/internal/cart"
	"github.com/Estevanavelar/naldogas-backend/internal/money"
	"github.com/Estevanavelar/naldogas-backend/pkg/db/models"
	pkgerrors "github.com/Estevanavelar/naldogas-backend/pkg/errors"
)

// Service exposes the read-only catalog surface used at sale time.
type Service interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListCatalog(ctx context.Context) ([]models.Product, error)
	Snapshot(ctx context.Context, id uuid.UUID) (cart.Product, error)
}

type service struct {
	repo *Repository
}

// NewService builds the catalog read service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) ListCatalog(ctx context.Context) ([]models.Product, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list catalog")
	}
	return rows, nil
}

// Snapshot freezes the pricing fields a cart line is built from.
func (s *service) Snapshot(ctx context.Context, id uuid.UUID) (cart.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return cart.Product{}, err
	}
	if !product.IsActive {
		return cart.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product is not sellable")
	}
	return cart.Product{
		ID:          product.ID,
		Name:        product.Name,
		UnitPrice:   money.FromCents(product.PriceCents),
		IsContainer: product.IsContainer,
	}, nil
}
