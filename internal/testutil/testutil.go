package testutil

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc/metadata"

	"flowerShopCRM/internal/db"
)

// OpenInMemoryDB opens a named in-memory SQLite database and applies migrations.
// The database is closed when the test ends.
func OpenInMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// GenerateJWTHS256 returns a signed JWT string with the claims used by the app.
func GenerateJWTHS256(t *testing.T, secret, name, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"name": name,
		"role": role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// CtxWithBearer returns a context containing gRPC metadata Authorization header with the given token.
func CtxWithBearer(ctx context.Context, token string) context.Context {
	md := metadata.Pairs("authorization", "Bearer "+token)
	return metadata.NewIncomingContext(ctx, md)
}

// Clock is a manual clock; every call to Now advances it by Step.
type Clock struct {
	mu   sync.Mutex
	now  time.Time
	Step time.Duration
}

// NewClock starts a clock at the given instant, stepping one second per read.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start, Step: time.Second}
}

// Now returns the current instant and moves the clock forward.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.Step)
	return t
}
