package report

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MikeMC777/cafe/internal/apperr"
	"github.com/MikeMC777/cafe/internal/auth"
	"github.com/MikeMC777/cafe/internal/order"
)

// recordingDB fails every query and remembers what it was asked.
type recordingDB struct {
	sql  string
	args []any
}

func (r *recordingDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("not used")
}

func (r *recordingDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	r.sql, r.args = sql, args
	return nil, errors.New("connection reset")
}

func (r *recordingDB) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func (r *recordingDB) Begin(context.Context) (pgx.Tx, error) { return nil, errors.New("not used") }

var ctx = context.Background()

func TestRecentOrdersVisibility(t *testing.T) {
	db := &recordingDB{}
	p := New(db)
	alice := auth.NewSession("alice", auth.Customer, "h")

	if _, err := p.RecentOrders(ctx, &bytes.Buffer{}, alice, "bob"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("customer peeking: %v", err)
	}
	if db.sql != "" {
		t.Fatalf("query ran before the permission check")
	}

	_, err := p.RecentOrders(ctx, &bytes.Buffer{}, alice, "")
	if !errors.Is(err, apperr.ErrDatabase) {
		t.Fatalf("want database error, got %v", err)
	}
	if db.args[0] != "alice" || db.args[1] != order.RecentLimit {
		t.Fatalf("args=%v", db.args)
	}

	staff := auth.NewSession("barista", auth.Employee, "h")
	_, _ = p.RecentOrders(ctx, &bytes.Buffer{}, staff, "bob")
	if db.args[0] != "bob" {
		t.Fatalf("staff lookup args=%v", db.args)
	}
}

func TestUnpaidOrdersManagerOnly(t *testing.T) {
	db := &recordingDB{}
	p := New(db)
	now := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	if _, err := p.UnpaidOrders(ctx, &bytes.Buffer{}, auth.NewSession("barista", auth.Employee, "h")); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("employee: %v", err)
	}
	_, _ = p.UnpaidOrders(ctx, &bytes.Buffer{}, auth.NewSession("boss", auth.Manager, "h"))
	since, ok := db.args[0].(time.Time)
	if !ok || !since.Equal(now.Add(-24*time.Hour)) {
		t.Fatalf("since=%v", db.args[0])
	}
	if !strings.Contains(db.sql, "NOT paid") {
		t.Fatalf("sql=%s", db.sql)
	}
}
