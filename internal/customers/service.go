package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/Estevanavelar/naldogas-backend/pkg/db"
	"github.com/Estevanavelar/naldogas-backend/pkg/db/models"
	pkgerrors "github.com/Estevanavelar/naldogas-backend/pkg/errors"
)

// Service exposes customer lookup for sale attachment and quick-create for
// counter sales that want a named customer on the record.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	FindByCPF(ctx context.Context, cpf string) (*models.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*models.Customer, error)
	QuickCreate(ctx context.Context, input QuickCreateInput) (*models.Customer, error)
}

// QuickCreateInput is the minimal payload for a counter-sale customer.
type QuickCreateInput struct {
	Name    string
	CPF     string
	Phone   string
	Address string
}

type service struct {
	repo *Repository
}

// NewService builds the customer service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return customer, nil
}

func (s *service) FindByCPF(ctx context.Context, cpf string) (*models.Customer, error) {
	normalized := DigitsOnly(cpf)
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cpf is required")
	}
	customer, err := s.repo.FindByCPF(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer by cpf")
	}
	return customer, nil
}

func (s *service) FindByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	normalized := DigitsOnly(phone)
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}
	customer, err := s.repo.FindByPhone(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer by phone")
	}
	return customer, nil
}

func (s *service) QuickCreate(ctx context.Context, input QuickCreateInput) (*models.Customer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}

	customer := &models.Customer{ID: uuid.New(), Name: name}
	if cpf := DigitsOnly(input.CPF); cpf != "" {
		customer.CPF = &cpf
	}
	if phone := DigitsOnly(input.Phone); phone != "" {
		customer.Phone = &phone
	}
	if address := strings.TrimSpace(input.Address); address != "" {
		customer.Address = &address
	}

	created, err := s.repo.Create(ctx, customer)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "customer with this cpf already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	return created, nil
}

// DigitsOnly strips formatting from CPF and phone values so "529.982.247-25"
// and "52998224725" hit the same row.
func DigitsOnly(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
