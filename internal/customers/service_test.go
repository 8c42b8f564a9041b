package customers

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
	dsn := "file:customers_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Customer{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, db
}

func TestDigitsOnly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"529.982.247-25", "52998224725"},
		{"(86) 99999-0000", "86999990000"},
		{"52998224725", "52998224725"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := DigitsOnly(tc.in); got != tc.want {
			t.Fatalf("DigitsOnly(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFindByCPF_NormalizesInput(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.QuickCreate(ctx, QuickCreateInput{
		Name: "Maria Souza",
		CPF:  "529.982.247-25",
	})
	if err != nil {
		t.Fatalf("quick create: %v", err)
	}
	if created.CPF == nil || *created.CPF != "52998224725" {
		t.Fatalf("expected digits-only cpf on the row, got %v", created.CPF)
	}

	found, err := svc.FindByCPF(ctx, "529.982.247-25")
	if err != nil {
		t.Fatalf("find by formatted cpf: %v", err)
	}
	if found.ID != created.ID {
		t.Fatalf("expected same customer, got %s", found.ID)
	}

	if _, err := svc.FindByCPF(ctx, "000.000.000-00"); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.FindByCPF(ctx, "---"); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty cpf, got %v", err)
	}
}

func TestQuickCreate_RequiresName(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	if _, err := svc.QuickCreate(context.Background(), QuickCreateInput{Name: "  "}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
