package auth

import (
	"context"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"flowerShopCRM/internal/testutil"
	"flowerShopCRM/models"
	"flowerShopCRM/repository"
)

func TestRequireStaff(t *testing.T) {
	if _, err := RequireStaff(context.Background()); status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}
	ctx := WithPrincipal(context.Background(), &Principal{Name: "f1", Role: "florist"})
	if _, err := RequireStaff(ctx); err != nil {
		t.Fatalf("RequireStaff: %v", err)
	}
}

func TestRequireManager_WithDBRoleCheck(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "authmanager")
	staff := repository.NewStaffRepository(d)
	ctx := context.Background()
	if _, err := staff.Create(ctx, &models.Staff{Username: "alice"}); err != nil {
		t.Fatalf("create alice: %v", err)
	}

	florist := WithPrincipal(ctx, &Principal{Name: "alice", Role: "florist"})
	if _, err := RequireManager(florist, staff); status.Code(err) != codes.PermissionDenied {
		t.Fatalf("expected PermissionDenied for florist token, got %v", err)
	}

	// Token claims manager but the stored role is florist.
	spoofed := WithPrincipal(ctx, &Principal{Name: "alice", Role: "manager"})
	if _, err := RequireManager(spoofed, staff); status.Code(err) != codes.PermissionDenied {
		t.Fatalf("expected PermissionDenied for spoofed role, got %v", err)
	}

	if err := staff.UpdateRoleByUsername(ctx, "alice", models.RoleManager); err != nil {
		t.Fatalf("update role: %v", err)
	}
	if _, err := RequireManager(spoofed, staff); err != nil {
		t.Fatalf("RequireManager real manager: %v", err)
	}
}

func TestUnaryAuthInterceptor(t *testing.T) {
	secret := "s3cr3t"
	interceptor := NewUnaryAuthInterceptor(secret, "/health")

	hCalled := false
	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/health"}, func(ctx context.Context, req any) (any, error) {
		hCalled = true
		if p, ok := FromContext(ctx); ok && p != nil {
			t.Fatalf("expected no principal on allowlisted path")
		}
		return 123, nil
	})
	if err != nil || !hCalled {
		t.Fatalf("allowlisted handler err=%v called=%v", err, hCalled)
	}

	_, err = interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Op"}, func(ctx context.Context, req any) (any, error) {
		t.Fatalf("handler must not run without a token")
		return nil, nil
	})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}

	tok := testutil.GenerateJWTHS256(t, secret, "bob", "manager")
	ctx := testutil.CtxWithBearer(context.Background(), tok)
	_, err = interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Op"}, func(ctx context.Context, req any) (any, error) {
		p, ok := FromContext(ctx)
		if !ok || p == nil || p.Name != "bob" || p.Role != "manager" {
			t.Fatalf("principal not injected: %+v ok=%v", p, ok)
		}
		return nil, nil
	})
	if err != nil {
		t.Fatalf("interceptor auth path: %v", err)
	}
}
