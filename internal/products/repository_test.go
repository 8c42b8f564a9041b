package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Estevanavelar/naldogas-backend/pkg/db/models"
	pkgerrors "github.com/Estevanavelar/naldogas-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:products_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.ProductInventory{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
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
		inv := &models.ProductInventory{ProductID: product.ID, AvailableQty: availableQty}
		if err := db.Create(inv).Error; err != nil {
			t.Fatalf("seed inventory: %v", err)
		}
	}
	return product
}

func TestDecrementAvailable(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Registro de gas", 3500, false, 5)

	err := db.Transaction(func(tx *gorm.DB) error {
		return repo.DecrementAvailable(ctx, tx, product.ID, 3)
	})
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}

	var inv models.ProductInventory
	if err := db.First(&inv, "product_id = ?", product.ID).Error; err != nil {
		t.Fatalf("load inventory: %v", err)
	}
	if inv.AvailableQty != 2 {
		t.Fatalf("expected available 2, got %d", inv.AvailableQty)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return repo.DecrementAvailable(ctx, tx, product.ID, 3)
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	if err := db.First(&inv, "product_id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload inventory: %v", err)
	}
	if inv.AvailableQty != 2 {
		t.Fatalf("failed decrement must not mutate, got %d", inv.AvailableQty)
	}
}

func TestServiceSnapshot(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	product := seedProduct(t, db, "GLP 13Kg", 10000, true, 0)

	snap, err := svc.Snapshot(ctx, product.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.UnitPrice.Cents() != 10000 || !snap.IsContainer {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	if _, err := svc.Snapshot(ctx, uuid.New()); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := svc.Snapshot(ctx, product.ID); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for inactive product, got %v", err)
	}
}
