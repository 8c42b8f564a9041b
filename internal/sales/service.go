package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Estevanavelar/naldogas-backend/internal/cart"
	"github.com/Estevanavelar/naldogas-backend/internal/containers"
	"github.com/Estevanavelar/naldogas-backend/internal/deliveries"
	"github.com/Estevanavelar/naldogas-backend/internal/money"
	"github.com/Estevanavelar/naldogas-backend/internal/receivables"
	dbpkg "github.com/Estevanavelar/naldogas-backend/pkg/db"
	"github.com/Estevanavelar/naldogas-backend/pkg/db/models"
	"github.com/Estevanavelar/naldogas-backend/pkg/enums"
	pkgerrors "github.com/Estevanavelar/naldogas-backend/pkg/errors"
	"github.com/Estevanavelar/naldogas-backend/pkg/logger"
	"github.com/Estevanavelar/naldogas-backend/pkg/outbox"
	"github.com/Estevanavelar/naldogas-backend/pkg/outbox/payloads"
	"github.com/Estevanavelar/naldogas-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type catalog interface {
	Snapshot(ctx context.Context, id uuid.UUID) (cart.Product, error)
}

type inventoryDecrementer interface {
	DecrementAvailable(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

type containerLedger interface {
	ApplySale(ctx context.Context, tx *gorm.DB, input containers.RecordSaleInput) (containers.SaleOutcome, error)
}

type receivableOpener interface {
	CreateTx(ctx context.Context, tx *gorm.DB, input receivables.CreateInput) (*models.Receivable, error)
}

type deliveryOpener interface {
	CreateTx(ctx context.Context, tx *gorm.DB, input deliveries.CreateInput) (*models.Delivery, error)
}

type customerLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ItemInput selects a product and quantity for the sale.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// RecordInput is the full checkout payload.
type RecordInput struct {
	DepotID               uuid.UUID
	CustomerID            *uuid.UUID
	Channel               enums.SalesChannel
	PaymentMethod         enums.PaymentMethod
	Items                 []ItemInput
	Discount              money.Money
	CustomerReturnedEmpty bool
	DeliveryAddress       *string
	DeliveryNotes         *string
	Notes                 *string
	IdempotencyKey        *string
}

// Result bundles everything one checkout produced.
type Result struct {
	Sale       *models.Sale
	Receivable *models.Receivable
	Delivery   *models.Delivery
}

// Service executes sale orchestration: price the cart, move stock, apply the
// container exchange, open the receivable and delivery, all in one
// transaction.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*Result, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]models.Sale, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Sale, error)
	ListPage(ctx context.Context, params pagination.Params) ([]models.Sale, string, error)
}

type service struct {
	tx          txRunner
	repo        *Repository
	catalog     catalog
	inventory   inventoryDecrementer
	ledger      containerLedger
	receivables receivableOpener
	deliveries  deliveryOpener
	customers   customerLoader
	outbox      outboxPublisher
	logg        *logger.Logger
	creditTerm  time.Duration
	now         func() time.Time
}

// NewService builds the sale orchestration service. creditTerm is the window
// granted to credit sales before the receivable falls due.
func NewService(
	tx txRunner,
	repo *Repository,
	catalogSvc catalog,
	inventory inventoryDecrementer,
	ledger containerLedger,
	receivableSvc receivableOpener,
	deliverySvc deliveryOpener,
	customerSvc customerLoader,
	publisher outboxPublisher,
	logg *logger.Logger,
	creditTerm time.Duration,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory decrementer required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("container ledger required")
	}
	if receivableSvc == nil {
		return nil, fmt.Errorf("receivable service required")
	}
	if deliverySvc == nil {
		return nil, fmt.Errorf("delivery service required")
	}
	if customerSvc == nil {
		return nil, fmt.Errorf("customer service required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if creditTerm <= 0 {
		creditTerm = 30 * 24 * time.Hour
	}
	return &service{
		tx:          tx,
		repo:        repo,
		catalog:     catalogSvc,
		inventory:   inventory,
		ledger:      ledger,
		receivables: receivableSvc,
		deliveries:  deliverySvc,
		customers:   customerSvc,
		outbox:      publisher,
		logg:        logg,
		creditTerm:  creditTerm,
		now:         time.Now,
	}, nil
}

func (s *service) Record(ctx context.Context, input RecordInput) (*Result, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	basket, total, err := s.price(ctx, input)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		// Non-container lines draw on per-product inventory; container
		// lines draw on the depot's full stock via the ledger below.
		for _, line := range basket.Items() {
			if line.IsContainer {
				continue
			}
			if err := s.inventory.DecrementAvailable(ctx, tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		outcome, err := s.ledger.ApplySale(ctx, tx, containers.RecordSaleInput{
			DepotID:               input.DepotID,
			CustomerID:            input.CustomerID,
			ContainerCount:        basket.ContainerCount(),
			CustomerReturnedEmpty: input.CustomerReturnedEmpty,
		})
		if err != nil {
			return err
		}

		sale := &models.Sale{
			ID:                 uuid.New(),
			DepotID:            input.DepotID,
			CustomerID:         input.CustomerID,
			Channel:            input.Channel,
			PaymentMethod:      input.PaymentMethod,
			SubtotalCents:      basket.Subtotal().Cents(),
			DiscountCents:      input.Discount.Cents(),
			TotalCents:         total.Cents(),
			ContainerExchanged: outcome.ContainerExchanged,
			ContainerOwed:      outcome.ContainerOwed,
			IdempotencyKey:     input.IdempotencyKey,
			Notes:              input.Notes,
			Items:              buildItems(basket.Items()),
		}
		if err := s.repo.CreateTx(ctx, tx, sale); err != nil {
			if dbpkg.IsUniqueViolation(err, "ux_sales_idempotency_key") {
				return pkgerrors.New(pkgerrors.CodeIdempotency, "sale already recorded for this idempotency key")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record sale")
		}
		result.Sale = sale

		if input.PaymentMethod.IsDeferred() {
			receivable, err := s.receivables.CreateTx(ctx, tx, receivables.CreateInput{
				SaleID:     sale.ID,
				CustomerID: *input.CustomerID,
				Total:      total,
				DueDate:    s.now().Add(s.creditTerm),
			})
			if err != nil {
				return err
			}
			result.Receivable = receivable
		}

		if input.DeliveryAddress != nil {
			delivery, err := s.deliveries.CreateTx(ctx, tx, deliveries.CreateInput{
				SaleID:  sale.ID,
				Address: *input.DeliveryAddress,
				Notes:   input.DeliveryNotes,
			})
			if err != nil {
				return err
			}
			result.Delivery = delivery
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSaleRecorded,
			AggregateType: enums.AggregateSale,
			AggregateID:   sale.ID,
			Version:       1,
			Data: payloads.SaleRecordedEvent{
				SaleID:             sale.ID,
				DepotID:            sale.DepotID,
				CustomerID:         sale.CustomerID,
				Channel:            sale.Channel,
				PaymentMethod:      sale.PaymentMethod,
				TotalCents:         sale.TotalCents,
				DiscountCents:      sale.DiscountCents,
				ContainerExchanged: sale.ContainerExchanged,
				ContainerOwed:      sale.ContainerOwed,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithSaleID(ctx, result.Sale.ID.String())
		s.logg.Info(logCtx, fmt.Sprintf("sale recorded for %s via %s", total, input.Channel))
	}
	return result, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}
	return sale, nil
}

func (s *service) ListByDateRange(ctx context.Context, from, to time.Time) ([]models.Sale, error) {
	if !to.After(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date range end must be after start")
	}
	rows, err := s.repo.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales by date range")
	}
	return rows, nil
}

// ListPage returns one cursor page of sales plus the cursor for the next
// page, or an empty string on the last page.
func (s *service) ListPage(ctx context.Context, params pagination.Params) ([]models.Sale, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListPage(ctx, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales page")
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}

func (s *service) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Sale, error) {
	rows, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales by customer")
	}
	return rows, nil
}

func (s *service) validate(ctx context.Context, input RecordInput) error {
	if input.DepotID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "depot id is required")
	}
	if !input.Channel.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid sales channel")
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "sale must contain at least one item")
	}
	if input.PaymentMethod.IsDeferred() && input.CustomerID == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "credit sales require an identified customer")
	}
	if input.DeliveryAddress != nil && strings.TrimSpace(*input.DeliveryAddress) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery address must not be blank")
	}
	if input.CustomerID != nil {
		if _, err := s.customers.GetByID(ctx, *input.CustomerID); err != nil {
			return err
		}
	}
	return nil
}

// price rebuilds the cart from catalog snapshots so the totals recorded are
// the catalog's, not the caller's.
func (s *service) price(ctx context.Context, input RecordInput) (*cart.Cart, money.Money, error) {
	basket := cart.New()
	for _, item := range input.Items {
		product, err := s.catalog.Snapshot(ctx, item.ProductID)
		if err != nil {
			return nil, money.Zero, err
		}
		if err := basket.AddItem(product, item.Quantity); err != nil {
			return nil, money.Zero, err
		}
	}
	total, err := basket.Total(input.Discount)
	if err != nil {
		return nil, money.Zero, err
	}
	return basket, total, nil
}

func buildItems(lines []cart.LineItem) []models.SaleItem {
	items := make([]models.SaleItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.SaleItem{
			ID:             uuid.New(),
			ProductID:      line.ProductID,
			ProductName:    line.ProductName,
			UnitPriceCents: line.UnitPrice.Cents(),
			Quantity:       line.Quantity,
			SubtotalCents:  line.Subtotal.Cents(),
			IsContainer:    line.IsContainer,
		})
	}
	return items
}
