package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"flowerShopCRM/internal/events"
	"flowerShopCRM/internal/logging"
	"flowerShopCRM/internal/testutil"
	"flowerShopCRM/models"
	"flowerShopCRM/repository"
)

var t0 = time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC)

func seedProducts(t *testing.T, d *sql.DB, products ...models.Product) {
	t.Helper()
	repo := repository.NewProductRepository(d)
	for i := range products {
		_, err := repo.Create(context.Background(), &products[i])
		require.NoError(t, err)
	}
}

func catalog() []models.Product {
	return []models.Product{
		{ID: "rose", Name: "Rose", Price: decimal.RequireFromString("5.50"), Unit: "pcs", Stock: 12},
		{ID: "tulip", Name: "Tulip", Price: decimal.RequireFromString("3"), Unit: "pcs", Stock: 45},
		{ID: "lily", Name: "Lily", Price: decimal.RequireFromString("7.25"), Unit: "pcs", Stock: 7},
		{ID: "roza", Name: "Роза", Price: decimal.RequireFromString("6"), Unit: "шт", Stock: 3},
	}
}

func testOptions(rec *events.Recorder) Options {
	return Options{Events: rec, Log: logging.Discard(), Now: testutil.NewClock(t0).Now}
}
