package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Estevanavelar/naldogas-backend/pkg/db/models"
	"github.com/Estevanavelar/naldogas-backend/pkg/enums"
	"github.com/Estevanavelar/naldogas-backend/pkg/pagination"
)

func setupSalesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:sales_repo_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Sale{}, &models.SaleItem{}))
	return db
}

func seedSale(t *testing.T, db *gorm.DB, depotID uuid.UUID, customerID *uuid.UUID, createdAt time.Time) models.Sale {
	t.Helper()

	sale := models.Sale{
		ID:            uuid.New(),
		DepotID:       depotID,
		CustomerID:    customerID,
		Channel:       enums.SalesChannelCounter,
		PaymentMethod: enums.PaymentMethodCash,
		SubtotalCents: 10000,
		TotalCents:    10000,
		CreatedAt:     createdAt,
		Items: []models.SaleItem{
			{
				ID:             uuid.New(),
				ProductID:      uuid.New(),
				ProductName:    "GLP 13Kg",
				UnitPriceCents: 10000,
				Quantity:       1,
				SubtotalCents:  10000,
				IsContainer:    true,
			},
		},
	}
	require.NoError(t, db.Create(&sale).Error)
	return sale
}

func TestListPageWalksNewestFirst(t *testing.T) {
	db := setupSalesTestDB(t)
	repo := NewRepository(db)
	depotID := uuid.New()
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	var seeded []models.Sale
	for i := 0; i < 5; i++ {
		seeded = append(seeded, seedSale(t, db, depotID, nil, base.Add(time.Duration(i)*time.Hour)))
	}

	first, err := repo.ListPage(context.Background(), nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, seeded[4].ID, first[0].ID)
	assert.Equal(t, seeded[3].ID, first[1].ID)
	require.Len(t, first[0].Items, 1, "page rows must carry preloaded items")

	cursor := &pagination.Cursor{CreatedAt: first[1].CreatedAt, ID: first[1].ID}
	second, err := repo.ListPage(context.Background(), cursor, 2)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, seeded[2].ID, second[0].ID)
	assert.Equal(t, seeded[1].ID, second[1].ID)

	cursor = &pagination.Cursor{CreatedAt: second[1].CreatedAt, ID: second[1].ID}
	last, err := repo.ListPage(context.Background(), cursor, 2)
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, seeded[0].ID, last[0].ID)
}

func TestListByDateRangeIsHalfOpen(t *testing.T) {
	db := setupSalesTestDB(t)
	repo := NewRepository(db)
	depotID := uuid.New()
	dayStart := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	seedSale(t, db, depotID, nil, dayStart.Add(-time.Minute))
	inRange := seedSale(t, db, depotID, nil, dayStart.Add(10*time.Hour))
	seedSale(t, db, depotID, nil, dayStart.Add(24*time.Hour))

	rows, err := repo.ListByDateRange(context.Background(), dayStart, dayStart.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, inRange.ID, rows[0].ID)
}

func TestListByCustomerReturnsOnlyTheirSales(t *testing.T) {
	db := setupSalesTestDB(t)
	repo := NewRepository(db)
	depotID := uuid.New()
	customerID := uuid.New()
	otherID := uuid.New()
	base := time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC)

	older := seedSale(t, db, depotID, &customerID, base)
	newer := seedSale(t, db, depotID, &customerID, base.Add(time.Hour))
	seedSale(t, db, depotID, &otherID, base.Add(2*time.Hour))

	rows, err := repo.ListByCustomer(context.Background(), customerID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newer.ID, rows[0].ID)
	assert.Equal(t, older.ID, rows[1].ID)
}
