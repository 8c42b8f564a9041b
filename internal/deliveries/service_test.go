package deliveries

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbpkg "github.com/Estevanavelar/naldogas-backend/pkg/db"
	"github.com/Estevanavelar/naldogas-backend/pkg/db/models"
	"github.com/Estevanavelar/naldogas-backend/pkg/enums"
	pkgerrors "github.com/Estevanavelar/naldogas-backend/pkg/errors"
	"github.com/Estevanavelar/naldogas-backend/pkg/outbox"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:deliveries_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Delivery{}, &models.OutboxEvent{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc, err := NewService(NewRepository(db), dbpkg.NewWithConn(db), outbox.NewService(outbox.NewRepository(db), nil), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, db
}

func createDelivery(t *testing.T, svc Service, db *gorm.DB) *models.Delivery {
	t.Helper()
	var delivery *models.Delivery
	err := db.Transaction(func(tx *gorm.DB) error {
		var terr error
		delivery, terr = svc.CreateTx(context.Background(), tx, CreateInput{
			SaleID:  uuid.New(),
			Address: "Rua das Flores, 123",
		})
		return terr
	})
	if err != nil {
		t.Fatalf("create delivery: %v", err)
	}
	return delivery
}

func TestLifecycle_DispatchAndDeliver(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	delivery := createDelivery(t, svc, db)
	delivererID := uuid.New()

	dispatched, err := svc.AssignDeliverer(ctx, delivery.ID, delivererID)
	if err != nil {
		t.Fatalf("assign deliverer: %v", err)
	}
	if dispatched.Status != enums.DeliveryStatusInTransit {
		t.Fatalf("expected in_transit, got %s", dispatched.Status)
	}
	if dispatched.DelivererID == nil || *dispatched.DelivererID != delivererID {
		t.Fatalf("expected deliverer attached, got %v", dispatched.DelivererID)
	}

	delivered, err := svc.UpdateStatus(ctx, delivery.ID, enums.DeliveryStatusDelivered)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if delivered.Status != enums.DeliveryStatusDelivered || delivered.DeliveredAt == nil {
		t.Fatalf("expected delivered with timestamp, got %+v", delivered)
	}

	if _, err := svc.UpdateStatus(ctx, delivery.ID, enums.DeliveryStatusCancelled); !pkgerrors.HasCode(err, pkgerrors.CodeAlreadyFinalized) {
		t.Fatalf("expected already finalized, got %v", err)
	}
}

func TestLifecycle_CancelBeforeDispatchOnly(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()

	pending := createDelivery(t, svc, db)
	cancelled, err := svc.UpdateStatus(ctx, pending.ID, enums.DeliveryStatusCancelled)
	if err != nil {
		t.Fatalf("cancel pending: %v", err)
	}
	if cancelled.Status != enums.DeliveryStatusCancelled || cancelled.CancelledAt == nil {
		t.Fatalf("expected cancelled with timestamp, got %+v", cancelled)
	}

	dispatched := createDelivery(t, svc, db)
	if _, err := svc.AssignDeliverer(ctx, dispatched.ID, uuid.New()); err != nil {
		t.Fatalf("assign deliverer: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, dispatched.ID, enums.DeliveryStatusCancelled); !pkgerrors.HasCode(err, pkgerrors.CodeInvalidTransition) {
		t.Fatalf("expected invalid transition cancelling in transit, got %v", err)
	}
}

func TestAssignDeliverer_LockedAfterDispatch(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	delivery := createDelivery(t, svc, db)

	if _, err := svc.AssignDeliverer(ctx, delivery.ID, uuid.New()); err != nil {
		t.Fatalf("assign deliverer: %v", err)
	}
	if _, err := svc.AssignDeliverer(ctx, delivery.ID, uuid.New()); !pkgerrors.HasCode(err, pkgerrors.CodeDelivererLocked) {
		t.Fatalf("expected deliverer locked, got %v", err)
	}
}

func TestUpdateStatus_InvalidTargets(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	delivery := createDelivery(t, svc, db)

	if _, err := svc.UpdateStatus(ctx, delivery.ID, enums.DeliveryStatusDelivered); !pkgerrors.HasCode(err, pkgerrors.CodeInvalidTransition) {
		t.Fatalf("expected invalid transition pending->delivered, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, delivery.ID, enums.DeliveryStatus("lost")); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, uuid.New(), enums.DeliveryStatusCancelled); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
