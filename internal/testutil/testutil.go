// Package testutil builds throwaway databases and auth components for tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/monocle-dev/taskcalendar/db"
	"github.com/monocle-dev/taskcalendar/internal/auth"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const TestSecret = "test-secret"

// NewDB returns a migrated in-memory SQLite database private to t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	conn, err := db.Connect(db.DriverSQLite, dsn, nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close(conn)
	})

	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return conn
}

// Clock is a settable time source.
type Clock struct {
	Now time.Time
}

func (c *Clock) Func() func() time.Time {
	return func() time.Time { return c.Now }
}

func (c *Clock) Advance(d time.Duration) {
	c.Now = c.Now.Add(d)
}

func NewTokenService(t testing.TB, clock *Clock) *auth.TokenService {
	t.Helper()

	var opts []auth.TokenOption
	if clock != nil {
		opts = append(opts, auth.WithClock(clock.Func()))
	}

	tokens, err := auth.NewTokenService(TestSecret, auth.DefaultTokenTTL, opts...)
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}
	return tokens
}

// NewPasswordHasher uses the minimum bcrypt cost to keep tests fast.
func NewPasswordHasher(t testing.TB) *auth.PasswordHasher {
	t.Helper()

	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("new password hasher: %v", err)
	}
	return hasher
}
