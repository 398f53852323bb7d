package auth

import (
	"context"
	"testing"
	"time"

	"google.golang.org/grpc/metadata"

	"flowerShopCRM/internal/testutil"
)

const testSecret = "test-secret"

func TestParseFromMD_ValidBearer(t *testing.T) {
	tok := testutil.GenerateJWTHS256(t, testSecret, "alice", "Florist")
	ctx := testutil.CtxWithBearer(context.Background(), tok)
	p, err := ParseFromMD(ctx, testSecret)
	if err != nil {
		t.Fatalf("ParseFromMD: %v", err)
	}
	if p.Name != "alice" || p.Role != "florist" {
		t.Fatalf("principal mismatch: %+v", p)
	}
}

func TestParseFromMD_MissingHeader(t *testing.T) {
	if _, err := ParseFromMD(context.Background(), testSecret); err == nil {
		t.Fatalf("expected error for missing metadata")
	}
}

func TestParseFromMD_InvalidScheme(t *testing.T) {
	tok := testutil.GenerateJWTHS256(t, testSecret, "bob", "manager")
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Basic "+tok))
	if _, err := ParseFromMD(ctx, testSecret); err == nil {
		t.Fatalf("expected error for non-Bearer scheme")
	}
	if _, err := parseJWT(tok, "wrong"); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}

func TestParseJWT_ClaimsValidation(t *testing.T) {
	if _, err := parseJWT(testutil.GenerateJWTHS256(t, testSecret, "", "florist"), testSecret); err == nil {
		t.Fatalf("expected invalid claims error for empty name")
	}
	if _, err := parseJWT(testutil.GenerateJWTHS256(t, testSecret, "eve", "owner"), testSecret); err == nil {
		t.Fatalf("expected invalid role error")
	}
}

func TestSign_RoundTrip(t *testing.T) {
	tok, err := Sign(testSecret, "kate", "manager", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	p, err := parseJWT(tok, testSecret)
	if err != nil || p.Name != "kate" || p.Role != "manager" {
		t.Fatalf("round trip: %+v %v", p, err)
	}

	expired, _ := Sign(testSecret, "kate", "manager", time.Minute, time.Now().Add(-time.Hour))
	if _, err := parseJWT(expired, testSecret); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}
