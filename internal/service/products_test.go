package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowerShopCRM/internal/events"
	"flowerShopCRM/internal/testutil"
	"flowerShopCRM/models"
)

func TestProductService_CRUD(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "svc_products")
	svc := NewProductService(d, testOptions(&events.Recorder{}))
	ctx := context.Background()

	p, err := svc.Create(ctx, models.Product{ID: "peony", Name: " Peony ", Price: decimal.RequireFromString("8.40"), Unit: "pcs", Stock: 10})
	require.NoError(t, err)
	assert.Equal(t, "Peony", p.Name)
	assert.Equal(t, t0, p.UpdatedAt)

	generated, err := svc.Create(ctx, models.Product{Name: "Ribbon", Price: decimal.RequireFromString("1")})
	require.NoError(t, err)
	assert.NotEmpty(t, generated.ID)

	_, err = svc.Create(ctx, models.Product{ID: "peony", Name: "Other"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Peony", list[0].Name)

	p.Price = decimal.RequireFromString("9")
	p.Stock = 4
	updated, err := svc.Update(ctx, *p)
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("9")))
	assert.Equal(t, 4, updated.Stock)

	_, err = svc.Update(ctx, models.Product{ID: "ghost", Name: "Ghost"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "peony"))
	_, err = svc.Get(ctx, "peony")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "peony"), ErrNotFound)
}

func TestProductService_Validation(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "svc_products_invalid")
	svc := NewProductService(d, testOptions(&events.Recorder{}))
	ctx := context.Background()

	for name, p := range map[string]models.Product{
		"blank name":     {ID: "a", Name: "  "},
		"negative price": {ID: "b", Name: "B", Price: decimal.RequireFromString("-1")},
		"negative stock": {ID: "c", Name: "C", Stock: -2},
	} {
		_, err := svc.Create(ctx, p)
		assert.ErrorIs(t, err, ErrInvalidInput, name)
	}
}
