package auth

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"flowerShopCRM/models"
	"flowerShopCRM/repository"
)

// NewUnaryAuthInterceptor returns a gRPC unary interceptor that extracts and validates
// a Bearer JWT from incoming metadata and injects the Principal into the context.
// Methods listed in allowUnauthenticated will bypass authentication (e.g., health checks).
func NewUnaryAuthInterceptor(secret string, allowUnauthenticated ...string) grpc.UnaryServerInterceptor {
	allow := make(map[string]struct{}, len(allowUnauthenticated))
	for _, m := range allowUnauthenticated {
		allow[strings.TrimSpace(m)] = struct{}{}
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := allow[info.FullMethod]; ok {
			return handler(ctx, req)
		}
		p, err := ParseFromMD(ctx, secret)
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "auth error: %v", err)
		}
		return handler(WithPrincipal(ctx, p), req)
	}
}

// RequireStaff ensures a principal is present in context. Any role may proceed.
func RequireStaff(ctx context.Context) (*Principal, error) {
	p, ok := FromContext(ctx)
	if !ok || p == nil {
		return nil, status.Error(codes.Unauthenticated, "missing principal")
	}
	return p, nil
}

// RequireManager ensures the caller carries the manager role AND that the staff
// record agrees. A token minted before a demotion is rejected.
func RequireManager(ctx context.Context, staff *repository.StaffRepository) (*Principal, error) {
	p, err := RequireStaff(ctx)
	if err != nil {
		return nil, err
	}
	if p.Role != models.RoleManager {
		return nil, status.Error(codes.PermissionDenied, "only manager can perform this action")
	}
	if staff == nil {
		return nil, status.Error(codes.Internal, "staff repository not configured")
	}
	s, err := staff.GetByUsername(ctx, p.Name)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "get staff: %v", err)
	}
	if s == nil || strings.ToLower(strings.TrimSpace(s.Role)) != models.RoleManager {
		return nil, status.Error(codes.PermissionDenied, "only manager can perform this action")
	}
	return p, nil
}
