package grpcserver

import (
	"context"
	"database/sql"
	"net"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"flowerShopCRM/internal/auth"
	"flowerShopCRM/internal/config"
	"flowerShopCRM/internal/display"
	"flowerShopCRM/internal/events"
	"flowerShopCRM/internal/lifecycle"
	"flowerShopCRM/internal/service"
	"flowerShopCRM/repository"
)

const healthCheckMethod = "/grpc.health.v1.Health/Check"

// Deps bundles what the services need.
type Deps struct {
	DB     *sql.DB
	Labels *display.Catalog
	Events events.Publisher
	Log    log.FieldLogger
	Now    func() time.Time
}

// NewServer builds a gRPC server with every service registered behind the
// auth interceptor. Only the health check is reachable without a token.
func NewServer(secret string, deps Deps) *grpc.Server {
	if deps.Log == nil {
		deps.Log = log.StandardLogger()
	}
	opts := service.Options{Events: deps.Events, Log: deps.Log, Now: deps.Now}
	staff := repository.NewStaffRepository(deps.DB)

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		logInterceptor(deps.Log),
		auth.NewUnaryAuthInterceptor(secret, healthCheckMethod),
	))
	orders := &OrderServer{
		Orders: service.NewOrderService(deps.DB, lifecycle.NewEngine(deps.Labels), opts),
	}
	srv.RegisterService(&OrderServiceDesc, orders)
	srv.RegisterService(&CustomerServiceDesc, &CustomerServer{
		Customers: service.NewCustomerService(deps.DB),
		Orders:    orders,
	})
	srv.RegisterService(&ProductServiceDesc, &ProductServer{
		Products: service.NewProductService(deps.DB, opts),
		Staff:    staff,
	})
	srv.RegisterService(&InventoryAuditServiceDesc, &AuditServer{
		Audits: service.NewAuditService(deps.DB, deps.Labels, opts),
		Staff:  staff,
		Labels: deps.Labels,
	})
	srv.RegisterService(&StaffServiceDesc, &StaffServer{Staff: staff})

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}

// StartGRPC starts the gRPC server on the configured address and returns a shutdown function.
func StartGRPC(cfg *config.Config, deps Deps) (func(context.Context) error, error) {
	if cfg == nil {
		panic("config is required")
	}

	addr := cfg.GRPC.Address
	if addr == "" {
		addr = ":50051"
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	if deps.Log == nil {
		deps.Log = log.StandardLogger()
	}
	srv := NewServer(cfg.Auth.JWTSecret, deps)
	go func() {
		if err := srv.Serve(lis); err != nil {
			deps.Log.WithError(err).Error("grpc serve")
		}
	}()

	return func(ctx context.Context) error {
		done := make(chan struct{})
		go func() { srv.GracefulStop(); close(done) }()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			srv.Stop()
			return ctx.Err()
		}
	}, nil
}

func logInterceptor(l log.FieldLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		entry := l.WithFields(log.Fields{
			"method":   info.FullMethod,
			"code":     status.Code(err).String(),
			"duration": time.Since(start),
		})
		if err != nil {
			entry.WithError(err).Warn("rpc failed")
		} else {
			entry.Debug("rpc")
		}
		return resp, err
	}
}
