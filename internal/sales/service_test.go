package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Estevanavelar/naldogas-backend/internal/containers"
	"github.com/Estevanavelar/naldogas-backend/internal/customers"
	"github.com/Estevanavelar/naldogas-backend/internal/deliveries"
	"github.com/Estevanavelar/naldogas-backend/internal/money"
	"github.com/Estevanavelar/naldogas-backend/internal/products"
	"github.com/Estevanavelar/naldogas-backend/internal/receivables"
	dbpkg "github.com/Estevanavelar/naldogas-backend/pkg/db"
	"github.com/Estevanavelar/naldogas-backend/pkg/db/models"
	"github.com/Estevanavelar/naldogas-backend/pkg/enums"
	pkgerrors "github.com/Estevanavelar/naldogas-backend/pkg/errors"
	"github.com/Estevanavelar/naldogas-backend/pkg/outbox"
)

type fixture struct {
	svc        Service
	db         *gorm.DB
	depotID    uuid.UUID
	customerID uuid.UUID
	glp        *models.Product
	agua       *models.Product
	registro   *models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := "file:sales_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Product{}, &models.ProductInventory{},
		&models.Customer{},
		&models.Sale{}, &models.SaleItem{},
		&models.ContainerStock{}, &models.CustomerPossession{},
		&models.Receivable{}, &models.ReceivablePayment{},
		&models.Delivery{},
		&models.OutboxEvent{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	client := dbpkg.NewWithConn(db)
	events := outbox.NewService(outbox.NewRepository(db), nil)

	productRepo := products.NewRepository(db)
	productSvc, err := products.NewService(productRepo)
	if err != nil {
		t.Fatalf("product service: %v", err)
	}
	customerSvc, err := customers.NewService(customers.NewRepository(db))
	if err != nil {
		t.Fatalf("customer service: %v", err)
	}
	containerSvc, err := containers.NewService(containers.NewRepository(db), client, events, nil)
	if err != nil {
		t.Fatalf("container service: %v", err)
	}
	receivableSvc, err := receivables.NewService(receivables.NewRepository(db), client, events, nil)
	if err != nil {
		t.Fatalf("receivable service: %v", err)
	}
	deliverySvc, err := deliveries.NewService(deliveries.NewRepository(db), client, events, nil)
	if err != nil {
		t.Fatalf("delivery service: %v", err)
	}

	svc, err := NewService(client, NewRepository(db), productSvc, productRepo,
		containerSvc, receivableSvc, deliverySvc, customerSvc, events, nil, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("sales service: %v", err)
	}

	f := &fixture{svc: svc, db: db, depotID: uuid.New()}

	stock := models.ContainerStock{DepotID: f.depotID, FullQty: 50, EmptyQty: 20, TotalCirculating: 70}
	if err := db.Create(&stock).Error; err != nil {
		t.Fatalf("seed stock: %v", err)
	}

	customer := models.Customer{ID: uuid.New(), Name: "Joao Pereira"}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	f.customerID = customer.ID

	f.glp = seedProduct(t, db, "GLP 13Kg", 10000, true, 0)
	f.agua = seedProduct(t, db, "Agua 20L", 850, true, 0)
	f.registro = seedProduct(t, db, "Registro de gas", 3500, false, 10)
	return f
}

func seedProduct(t *testing.T, db *gorm.DB, name string, priceCents int64, container bool, availableQty int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:          uuid.New(),
		SKU:         "SKU-" + uuid.NewString(),
		Name:        name,
		PriceCents:  priceCents,
		IsContainer: container,
		IsActive:    true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if !container {
		if err := db.Create(&models.ProductInventory{ProductID: product.ID, AvailableQty: availableQty}).Error; err != nil {
			t.Fatalf("seed inventory: %v", err)
		}
	}
	return product
}

func mustMoney(t *testing.T, value string) money.Money {
	t.Helper()
	m, err := money.FromDecimalString(value)
	if err != nil {
		t.Fatalf("parse money: %v", err)
	}
	return m
}

func TestRecord_CashExchangeSale(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	result, err := f.svc.Record(ctx, RecordInput{
		DepotID:       f.depotID,
		CustomerID:    &f.customerID,
		Channel:       enums.SalesChannelCounter,
		PaymentMethod: enums.PaymentMethodCash,
		Items: []ItemInput{
			{ProductID: f.glp.ID, Quantity: 2},
			{ProductID: f.agua.ID, Quantity: 3},
		},
		Discount:              mustMoney(t, "10.00"),
		CustomerReturnedEmpty: true,
	})
	if err != nil {
		t.Fatalf("record sale: %v", err)
	}

	sale := result.Sale
	if sale.TotalCents != 21550 {
		t.Fatalf("expected total 21550 cents, got %d", sale.TotalCents)
	}
	if !sale.ContainerExchanged || sale.ContainerOwed != 0 {
		t.Fatalf("expected clean exchange, got %+v", sale)
	}
	if result.Receivable != nil || result.Delivery != nil {
		t.Fatalf("cash counter sale must not open receivable or delivery")
	}

	var stock models.ContainerStock
	if err := f.db.First(&stock, "depot_id = ?", f.depotID).Error; err != nil {
		t.Fatalf("load stock: %v", err)
	}
	if stock.FullQty != 45 || stock.EmptyQty != 25 {
		t.Fatalf("expected stock 45/25, got %d/%d", stock.FullQty, stock.EmptyQty)
	}

	loaded, err := f.svc.GetByID(ctx, sale.ID)
	if err != nil {
		t.Fatalf("reload sale: %v", err)
	}
	if len(loaded.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(loaded.Items))
	}
}

func TestRecord_CreditSaleOpensReceivableAndOwesContainers(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	address := "Av. Principal, 45"

	result, err := f.svc.Record(ctx, RecordInput{
		DepotID:       f.depotID,
		CustomerID:    &f.customerID,
		Channel:       enums.SalesChannelPhoneOrder,
		PaymentMethod: enums.PaymentMethodCredit,
		Items: []ItemInput{
			{ProductID: f.glp.ID, Quantity: 3},
		},
		Discount:              money.Zero,
		CustomerReturnedEmpty: false,
		DeliveryAddress:       &address,
	})
	if err != nil {
		t.Fatalf("record sale: %v", err)
	}

	if result.Sale.ContainerExchanged || result.Sale.ContainerOwed != 3 {
		t.Fatalf("expected 3 owed containers, got %+v", result.Sale)
	}
	if result.Receivable == nil {
		t.Fatal("credit sale must open a receivable")
	}
	if result.Receivable.TotalCents != 30000 || result.Receivable.Status != enums.ReceivableStatusPending {
		t.Fatalf("unexpected receivable: %+v", result.Receivable)
	}
	wantDue := time.Now().Add(30 * 24 * time.Hour)
	if diff := result.Receivable.DueDate.Sub(wantDue); diff < -time.Minute || diff > time.Minute {
		t.Fatalf("expected due date about 30 days out, got %s", result.Receivable.DueDate)
	}
	if result.Delivery == nil || result.Delivery.Status != enums.DeliveryStatusPending {
		t.Fatalf("expected pending delivery, got %+v", result.Delivery)
	}

	var possession models.CustomerPossession
	if err := f.db.First(&possession, "depot_id = ? AND customer_id = ?", f.depotID, f.customerID).Error; err != nil {
		t.Fatalf("load possession: %v", err)
	}
	if possession.OwedQty != 3 {
		t.Fatalf("expected possession 3, got %d", possession.OwedQty)
	}

	var eventCount int64
	if err := f.db.Model(&models.OutboxEvent{}).Count(&eventCount).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	// sale_recorded + receivable_opened.
	if eventCount != 2 {
		t.Fatalf("expected 2 outbox events, got %d", eventCount)
	}
}

func TestRecord_NonContainerInventoryGuard(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Record(ctx, RecordInput{
		DepotID:       f.depotID,
		CustomerID:    &f.customerID,
		Channel:       enums.SalesChannelCounter,
		PaymentMethod: enums.PaymentMethodCash,
		Items: []ItemInput{
			{ProductID: f.registro.ID, Quantity: 11},
		},
		Discount: money.Zero,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	var inv models.ProductInventory
	if err := f.db.First(&inv, "product_id = ?", f.registro.ID).Error; err != nil {
		t.Fatalf("load inventory: %v", err)
	}
	if inv.AvailableQty != 10 {
		t.Fatalf("failed sale must not touch inventory, got %d", inv.AvailableQty)
	}

	var saleCount int64
	if err := f.db.Model(&models.Sale{}).Count(&saleCount).Error; err != nil {
		t.Fatalf("count sales: %v", err)
	}
	if saleCount != 0 {
		t.Fatalf("failed sale must not persist, got %d rows", saleCount)
	}
}

func TestRecord_InsufficientContainersRollsBackEverything(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Record(ctx, RecordInput{
		DepotID:       f.depotID,
		CustomerID:    &f.customerID,
		Channel:       enums.SalesChannelCounter,
		PaymentMethod: enums.PaymentMethodCash,
		Items: []ItemInput{
			{ProductID: f.glp.ID, Quantity: 51},
			{ProductID: f.registro.ID, Quantity: 2},
		},
		Discount:              money.Zero,
		CustomerReturnedEmpty: true,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	var inv models.ProductInventory
	if err := f.db.First(&inv, "product_id = ?", f.registro.ID).Error; err != nil {
		t.Fatalf("load inventory: %v", err)
	}
	if inv.AvailableQty != 10 {
		t.Fatalf("rollback must restore accessory inventory, got %d", inv.AvailableQty)
	}
}

func TestRecord_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input RecordInput
		code  pkgerrors.Code
	}{
		{
			name: "credit requires customer",
			input: RecordInput{
				DepotID:       f.depotID,
				Channel:       enums.SalesChannelCounter,
				PaymentMethod: enums.PaymentMethodCredit,
				Items:         []ItemInput{{ProductID: f.glp.ID, Quantity: 1}},
			},
			code: pkgerrors.CodeValidation,
		},
		{
			name: "empty items",
			input: RecordInput{
				DepotID:       f.depotID,
				Channel:       enums.SalesChannelCounter,
				PaymentMethod: enums.PaymentMethodCash,
			},
			code: pkgerrors.CodeValidation,
		},
		{
			name: "unknown customer",
			input: RecordInput{
				DepotID:               f.depotID,
				CustomerID:            ptr(uuid.New()),
				Channel:               enums.SalesChannelCounter,
				PaymentMethod:         enums.PaymentMethodCash,
				Items:                 []ItemInput{{ProductID: f.glp.ID, Quantity: 1}},
				CustomerReturnedEmpty: true,
			},
			code: pkgerrors.CodeNotFound,
		},
		{
			name: "discount above subtotal",
			input: RecordInput{
				DepotID:               f.depotID,
				CustomerID:            &f.customerID,
				Channel:               enums.SalesChannelCounter,
				PaymentMethod:         enums.PaymentMethodCash,
				Items:                 []ItemInput{{ProductID: f.agua.ID, Quantity: 1}},
				Discount:              mustMoney(t, "9.00"),
				CustomerReturnedEmpty: true,
			},
			code: pkgerrors.CodeDiscountExceedsTotal,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Record(ctx, tc.input)
			if !pkgerrors.HasCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestRecord_IdempotencyKeyBackstop(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	key := uuid.NewString()

	input := RecordInput{
		DepotID:               f.depotID,
		CustomerID:            &f.customerID,
		Channel:               enums.SalesChannelMessagingOrder,
		PaymentMethod:         enums.PaymentMethodPix,
		Items:                 []ItemInput{{ProductID: f.glp.ID, Quantity: 1}},
		Discount:              money.Zero,
		CustomerReturnedEmpty: true,
		IdempotencyKey:        &key,
	}
	if _, err := f.svc.Record(ctx, input); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if _, err := f.svc.Record(ctx, input); !pkgerrors.HasCode(err, pkgerrors.CodeIdempotency) {
		t.Fatalf("expected idempotency error, got %v", err)
	}
}

func ptr[T any](v T) *T {
	return &v
}
