package grpcserver

import (
	"context"
	"database/sql"
	"net"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"flowerShopCRM/internal/auth"
	"flowerShopCRM/internal/events"
	"flowerShopCRM/internal/logging"
	"flowerShopCRM/internal/testutil"
	"flowerShopCRM/models"
	"flowerShopCRM/repository"
)

const testSecret = "grpc-secret"

var t0 = time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC)

// seed creates one florist, one manager and a small catalog.
func seed(t *testing.T, d *sql.DB) {
	t.Helper()
	ctx := context.Background()
	staff := repository.NewStaffRepository(d)
	_, err := staff.Create(ctx, &models.Staff{Username: "fred"})
	require.NoError(t, err)
	_, err = staff.Create(ctx, models.NewManager("mia"))
	require.NoError(t, err)

	products := repository.NewProductRepository(d)
	for _, p := range []models.Product{
		{ID: "rose", Name: "Rose", Price: decimal.RequireFromString("5.50"), Stock: 12},
		{ID: "tulip", Name: "Tulip", Price: decimal.RequireFromString("3"), Stock: 45},
	} {
		p := p
		_, err := products.Create(ctx, &p)
		require.NoError(t, err)
	}
}

func newDeps(t *testing.T, name string) (Deps, *events.Recorder) {
	t.Helper()
	d := testutil.OpenInMemoryDB(t, name)
	seed(t, d)
	rec := &events.Recorder{}
	return Deps{DB: d, Events: rec, Log: logging.Discard(), Now: testutil.NewClock(t0).Now}, rec
}

func principalCtx(name, role string) context.Context {
	return auth.WithPrincipal(context.Background(), &auth.Principal{Name: name, Role: role})
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func dial(t *testing.T, deps Deps) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := NewServer(testSecret, deps)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestServer_OverTheWire(t *testing.T) {
	deps, _ := newDeps(t, "grpc_wire")
	conn := dial(t, deps)
	ctx := context.Background()

	hc, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, hc.GetStatus())

	out := &structpb.Struct{}
	err = conn.Invoke(ctx, "/flowercrm.v1.OrderService/ListStatuses", &structpb.Struct{}, out)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	tok := testutil.GenerateJWTHS256(t, testSecret, "fred", "florist")
	authed := metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+tok)

	require.NoError(t, conn.Invoke(authed, "/flowercrm.v1.OrderService/ListStatuses", &structpb.Struct{}, out))
	statuses := out.GetFields()["statuses"].GetListValue().GetValues()
	require.Len(t, statuses, 6)
	first := statuses[0].GetStructValue().GetFields()
	assert.Equal(t, "new", first["status"].GetStringValue())
	assert.Equal(t, "paid", first["next"].GetStringValue())

	req := mustStruct(t, map[string]any{
		"main_product":  map[string]any{"product_id": "rose", "quantity": 2},
		"delivery_type": "pickup",
		"delivery_date": "today",
		"sender":        map[string]any{"name": "Anna", "phone": "+100"},
	})
	require.NoError(t, conn.Invoke(authed, "/flowercrm.v1.OrderService/CreateOrder", req, out))
	order := out.GetFields()["order"].GetStructValue().GetFields()
	assert.Equal(t, float64(1), order["number"].GetNumberValue())
	assert.Equal(t, "11.00", order["total"].GetStringValue())

	// Florists cannot save audits.
	err = conn.Invoke(authed, "/flowercrm.v1.InventoryAuditService/SaveAudit", mustStruct(t, map[string]any{"id": "x"}), out)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}
