package containers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbpkg "github.com/Estevanavelar/naldogas-backend/pkg/db"
	"github.com/Estevanavelar/naldogas-backend/pkg/db/models"
	pkgerrors "github.com/Estevanavelar/naldogas-backend/pkg/errors"
	"github.com/Estevanavelar/naldogas-backend/pkg/outbox"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:containers_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.ContainerStock{}, &models.CustomerPossession{}, &models.OutboxEvent{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (Service, *Repository, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	repo := NewRepository(db)
	client := dbpkg.NewWithConn(db)
	events := outbox.NewService(outbox.NewRepository(db), nil)
	svc, err := NewService(repo, client, events, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo, db
}

func seedStock(t *testing.T, db *gorm.DB, full, empty, circulating int) uuid.UUID {
	t.Helper()
	depotID := uuid.New()
	stock := models.ContainerStock{
		DepotID:          depotID,
		FullQty:          full,
		EmptyQty:         empty,
		TotalCirculating: circulating,
	}
	if err := db.Create(&stock).Error; err != nil {
		t.Fatalf("seed stock: %v", err)
	}
	return depotID
}

func loadStock(t *testing.T, db *gorm.DB, depotID uuid.UUID) models.ContainerStock {
	t.Helper()
	var stock models.ContainerStock
	if err := db.First(&stock, "depot_id = ?", depotID).Error; err != nil {
		t.Fatalf("load stock: %v", err)
	}
	return stock
}

func TestApplySale_OwedThenReturned(t *testing.T) {
	t.Parallel()

	svc, _, db := newTestService(t)
	ctx := context.Background()
	depotID := seedStock(t, db, 50, 20, 70)
	customerID := uuid.New()

	var outcome SaleOutcome
	err := db.Transaction(func(tx *gorm.DB) error {
		var terr error
		outcome, terr = svc.ApplySale(ctx, tx, RecordSaleInput{
			DepotID:               depotID,
			CustomerID:            &customerID,
			ContainerCount:        3,
			CustomerReturnedEmpty: false,
		})
		return terr
	})
	if err != nil {
		t.Fatalf("apply sale: %v", err)
	}
	if outcome.ContainerExchanged || outcome.ContainerOwed != 3 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}

	stock := loadStock(t, db, depotID)
	if stock.FullQty != 47 || stock.EmptyQty != 20 {
		t.Fatalf("expected 47/20 after owed sale, got %d/%d", stock.FullQty, stock.EmptyQty)
	}
	owed, err := svc.GetPossession(ctx, depotID, customerID)
	if err != nil {
		t.Fatalf("get possession: %v", err)
	}
	if owed != 3 {
		t.Fatalf("expected possession 3, got %d", owed)
	}

	if err := svc.ReturnContainers(ctx, depotID, customerID, 3); err != nil {
		t.Fatalf("return containers: %v", err)
	}
	stock = loadStock(t, db, depotID)
	if stock.EmptyQty != 23 {
		t.Fatalf("expected empty 23 after return, got %d", stock.EmptyQty)
	}
	owed, err = svc.GetPossession(ctx, depotID, customerID)
	if err != nil {
		t.Fatalf("get possession: %v", err)
	}
	if owed != 0 {
		t.Fatalf("expected possession 0 after return, got %d", owed)
	}
}

func TestApplySale_Exchange(t *testing.T) {
	t.Parallel()

	svc, _, db := newTestService(t)
	ctx := context.Background()
	depotID := seedStock(t, db, 50, 20, 70)
	customerID := uuid.New()

	var outcome SaleOutcome
	err := db.Transaction(func(tx *gorm.DB) error {
		var terr error
		outcome, terr = svc.ApplySale(ctx, tx, RecordSaleInput{
			DepotID:               depotID,
			CustomerID:            &customerID,
			ContainerCount:        2,
			CustomerReturnedEmpty: true,
		})
		return terr
	})
	if err != nil {
		t.Fatalf("apply sale: %v", err)
	}
	if !outcome.ContainerExchanged || outcome.ContainerOwed != 0 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}

	stock := loadStock(t, db, depotID)
	if stock.FullQty != 48 || stock.EmptyQty != 22 {
		t.Fatalf("expected 48/22 after exchange, got %d/%d", stock.FullQty, stock.EmptyQty)
	}
}

func TestApplySale_NoContainers(t *testing.T) {
	t.Parallel()

	svc, _, db := newTestService(t)
	ctx := context.Background()
	depotID := seedStock(t, db, 50, 20, 70)

	var outcome SaleOutcome
	err := db.Transaction(func(tx *gorm.DB) error {
		var terr error
		outcome, terr = svc.ApplySale(ctx, tx, RecordSaleInput{
			DepotID:        depotID,
			ContainerCount: 0,
		})
		return terr
	})
	if err != nil {
		t.Fatalf("apply sale: %v", err)
	}
	if !outcome.ContainerExchanged || outcome.ContainerOwed != 0 {
		t.Fatalf("exchange-irrelevant sale must report exchanged: %+v", outcome)
	}
	stock := loadStock(t, db, depotID)
	if stock.FullQty != 50 || stock.EmptyQty != 20 {
		t.Fatalf("stock must be untouched, got %d/%d", stock.FullQty, stock.EmptyQty)
	}
}

func TestApplySale_InsufficientStockRollsBack(t *testing.T) {
	t.Parallel()

	svc, _, db := newTestService(t)
	ctx := context.Background()
	depotID := seedStock(t, db, 2, 0, 2)
	customerID := uuid.New()

	err := db.Transaction(func(tx *gorm.DB) error {
		_, terr := svc.ApplySale(ctx, tx, RecordSaleInput{
			DepotID:               depotID,
			CustomerID:            &customerID,
			ContainerCount:        3,
			CustomerReturnedEmpty: true,
		})
		return terr
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	stock := loadStock(t, db, depotID)
	if stock.FullQty != 2 || stock.EmptyQty != 0 {
		t.Fatalf("failed sale must not mutate stock, got %d/%d", stock.FullQty, stock.EmptyQty)
	}
}

func TestApplySale_WalkInCannotOwe(t *testing.T) {
	t.Parallel()

	svc, _, db := newTestService(t)
	ctx := context.Background()
	depotID := seedStock(t, db, 10, 0, 10)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, terr := svc.ApplySale(ctx, tx, RecordSaleInput{
			DepotID:               depotID,
			ContainerCount:        1,
			CustomerReturnedEmpty: false,
		})
		return terr
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReturnContainers_ExceedsPossession(t *testing.T) {
	t.Parallel()

	svc, repo, db := newTestService(t)
	ctx := context.Background()
	depotID := seedStock(t, db, 10, 5, 17)
	customerID := uuid.New()

	if err := db.Create(&models.CustomerPossession{DepotID: depotID, CustomerID: customerID, OwedQty: 2}).Error; err != nil {
		t.Fatalf("seed possession: %v", err)
	}

	err := svc.ReturnContainers(ctx, depotID, customerID, 3)
	if !pkgerrors.HasCode(err, pkgerrors.CodeExceedsPossession) {
		t.Fatalf("expected exceeds possession, got %v", err)
	}

	owed, err := repo.GetPossession(ctx, depotID, customerID)
	if err != nil {
		t.Fatalf("get possession: %v", err)
	}
	if owed != 2 {
		t.Fatalf("failed return must not mutate possession, got %d", owed)
	}
}

func TestDepotOperationsKeepPartitionClosed(t *testing.T) {
	t.Parallel()

	svc, _, db := newTestService(t)
	ctx := context.Background()
	depotID := seedStock(t, db, 5, 3, 8)

	if err := svc.AcquireUnits(ctx, depotID, 10); err != nil {
		t.Fatalf("acquire units: %v", err)
	}
	stock := loadStock(t, db, depotID)
	if stock.FullQty != 15 || stock.TotalCirculating != 18 {
		t.Fatalf("unexpected stock after acquire: %+v", stock)
	}

	if err := svc.RefillEmpties(ctx, depotID, 3); err != nil {
		t.Fatalf("refill empties: %v", err)
	}
	stock = loadStock(t, db, depotID)
	if stock.FullQty != 18 || stock.EmptyQty != 0 {
		t.Fatalf("unexpected stock after refill: %+v", stock)
	}

	if err := svc.RefillEmpties(ctx, depotID, 1); !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock refilling with no empties, got %v", err)
	}
}
