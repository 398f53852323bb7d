package grpcserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"flowerShopCRM/internal/testutil"
)

func TestProductService_OverTheWire(t *testing.T) {
	deps, _ := newDeps(t, "grpc_products_wire")
	conn := dial(t, deps)
	ctx := context.Background()
	florist := metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+testutil.GenerateJWTHS256(t, testSecret, "fred", "florist"))
	manager := metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+testutil.GenerateJWTHS256(t, testSecret, "mia", "manager"))
	out := &structpb.Struct{}

	peony := mustStruct(t, map[string]any{"id": "peony", "name": "Peony", "price": 8.4, "unit": "pcs", "stock": 10})
	err := conn.Invoke(florist, "/flowercrm.v1.ProductService/CreateProduct", peony, out)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	require.NoError(t, conn.Invoke(manager, "/flowercrm.v1.ProductService/CreateProduct", peony, out))
	created := out.GetFields()["product"].GetStructValue().GetFields()
	assert.Equal(t, "8.4", created["price"].GetStringValue())

	err = conn.Invoke(manager, "/flowercrm.v1.ProductService/CreateProduct", peony, out)
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	require.NoError(t, conn.Invoke(florist, "/flowercrm.v1.ProductService/ListProducts", &structpb.Struct{}, out))
	assert.Len(t, out.GetFields()["products"].GetListValue().GetValues(), 3)

	// The new product can be ordered right away.
	order := mustStruct(t, map[string]any{
		"main_product":  map[string]any{"product_id": "peony", "quantity": 2},
		"delivery_type": "pickup",
		"delivery_date": "today",
		"sender":        map[string]any{"name": "Anna", "phone": "+100"},
	})
	require.NoError(t, conn.Invoke(florist, "/flowercrm.v1.OrderService/CreateOrder", order, out))
	assert.Equal(t, "16.80", out.GetFields()["order"].GetStructValue().GetFields()["total"].GetStringValue())

	update := mustStruct(t, map[string]any{"id": "peony", "name": "Peony", "price": "9", "stock": 4})
	require.NoError(t, conn.Invoke(manager, "/flowercrm.v1.ProductService/UpdateProduct", update, out))
	assert.Equal(t, float64(4), out.GetFields()["product"].GetStructValue().GetFields()["stock"].GetNumberValue())

	bad := mustStruct(t, map[string]any{"id": "peony", "name": "", "price": 1})
	err = conn.Invoke(manager, "/flowercrm.v1.ProductService/UpdateProduct", bad, out)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	byID := mustStruct(t, map[string]any{"id": "peony"})
	require.NoError(t, conn.Invoke(manager, "/flowercrm.v1.ProductService/DeleteProduct", byID, out))
	err = conn.Invoke(florist, "/flowercrm.v1.ProductService/GetProduct", byID, out)
	assert.Equal(t, codes.NotFound, status.Code(err))
	err = conn.Invoke(manager, "/flowercrm.v1.ProductService/DeleteProduct", byID, out)
	assert.Equal(t, codes.NotFound, status.Code(err))
}
