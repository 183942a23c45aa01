// Package report prints tab separated listings straight from the database
// for the console history views.
package report

import (
	"context"
	"io"
	"time"

	"github.com/MikeMC777/cafe/internal/apperr"
	"github.com/MikeMC777/cafe/internal/auth"
	"github.com/MikeMC777/cafe/internal/database"
	"github.com/MikeMC777/cafe/internal/order"
)

const (
	recentOrdersSQL = `
		SELECT order_id, paid, received_at, total
		FROM orders WHERE login = $1
		ORDER BY received_at DESC, order_id DESC
		LIMIT $2`
	unpaidOrdersSQL = `
		SELECT order_id, login, received_at, total
		FROM orders WHERE NOT paid AND received_at >= $1
		ORDER BY received_at DESC, order_id DESC`
)

type Printer struct {
	db  database.DBTX
	now func() time.Time
}

func New(db database.DBTX) *Printer { return &Printer{db: db, now: time.Now} }

func (p *Printer) print(ctx context.Context, w io.Writer, op, sql string, args ...any) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := database.QueryPrint(ctx, p.db, w, sql, args...)
	return n, apperr.Database(op, err)
}

// RecentOrders prints the five latest orders of login. An empty login is
// the session's own history; staff may print anyone's.
func (p *Printer) RecentOrders(ctx context.Context, w io.Writer, sess auth.Session, login string) (int, error) {
	if login == "" {
		login = sess.Login
	}
	if !sess.Owns(login) && !sess.IsStaff() {
		return 0, apperr.Forbiddenf("you can only see your own orders")
	}
	return p.print(ctx, w, "recent orders", recentOrdersSQL, login, order.RecentLimit)
}

// UnpaidOrders prints every unpaid order received in the last 24 hours.
func (p *Printer) UnpaidOrders(ctx context.Context, w io.Writer, sess auth.Session) (int, error) {
	if !sess.IsManager() {
		return 0, apperr.Forbiddenf("only managers can see unpaid orders")
	}
	return p.print(ctx, w, "unpaid orders", unpaidOrdersSQL, p.now().UTC().Add(-order.UnpaidWindow))
}
