package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/cafe/internal/apperr"
	"github.com/MikeMC777/cafe/internal/database"
)

var (
	ErrNotFound     = fmt.Errorf("order %w", apperr.ErrNotFound)
	ErrItemNotFound = fmt.Errorf("order item %w", apperr.ErrNotFound)
)

type Repository interface {
	ItemPrice(ctx context.Context, item string) (decimal.Decimal, error)
	Create(ctx context.Context, o *Order, items []string) error
	Get(ctx context.Context, id int64) (*Order, error)
	Items(ctx context.Context, id int64) ([]ItemStatus, error)
	AddItem(ctx context.Context, id int64, item string, price decimal.Decimal, at time.Time) error
	RemoveItem(ctx context.Context, id int64, item string, price decimal.Decimal) (orderDeleted bool, err error)
	Delete(ctx context.Context, id int64) (bool, error)
	SetPaid(ctx context.Context, id int64) (bool, error)
	SetItemStatus(ctx context.Context, id int64, item string, st Status, at time.Time) error
	SetComment(ctx context.Context, id int64, item, comment string) error
	ListRecentByUser(ctx context.Context, login string, limit int) ([]Order, error)
	ListUnpaidSince(ctx context.Context, since time.Time) ([]Order, error)
}

type PGRepo struct{ db database.DBTX }

func NewPGRepo(db database.DBTX) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) ItemPrice(ctx context.Context, item string) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var price string
	err := r.db.QueryRow(ctx, `SELECT price::text FROM menu WHERE item_name = $1`, item).Scan(&price)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, apperr.NotFoundf("menu item %q does not exist", item)
	}
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(price)
}

// Create inserts the order and one not-started status row per item in a
// single transaction and fills in o.ID.
func (r *PGRepo) Create(ctx context.Context, o *Order, items []string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO orders (login, paid, received_at, total)
			VALUES ($1, false, $2, $3)
			RETURNING order_id
		`, o.Login, o.ReceivedAt, o.Total.StringFixed(2)).Scan(&o.ID); err != nil {
			return err
		}
		for _, it := range items {
			if _, err := tx.Exec(ctx, `
				INSERT INTO item_status (order_id, item_name, last_updated, status, comments)
				VALUES ($1, $2, $3, $4, NULL)
			`, o.ID, it, o.ReceivedAt, string(NotStarted)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PGRepo) Get(ctx context.Context, id int64) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, `
		SELECT order_id, login, paid, received_at, total::text
		FROM orders WHERE order_id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

func (r *PGRepo) Items(ctx context.Context, id int64) ([]ItemStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT order_id, item_name, last_updated, status, COALESCE(comments, '')
		FROM item_status WHERE order_id = $1
		ORDER BY item_name
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ItemStatus
	for rows.Next() {
		var (
			it ItemStatus
			st string
		)
		if err := rows.Scan(&it.OrderID, &it.ItemName, &it.LastUpdated, &st, &it.Comment); err != nil {
			return nil, err
		}
		it.ItemName = strings.TrimSpace(it.ItemName)
		it.Status = Status(strings.TrimSpace(st))
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *PGRepo) AddItem(ctx context.Context, id int64, item string, price decimal.Decimal, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO item_status (order_id, item_name, last_updated, status, comments)
			VALUES ($1, $2, $3, $4, NULL)
		`, id, item, at, string(NotStarted)); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `UPDATE orders SET total = total + $2 WHERE order_id = $1`, id, price.StringFixed(2))
		return err
	})
}

// RemoveItem drops one item and takes its price off the total. When no
// items remain the order itself is deleted.
func (r *PGRepo) RemoveItem(ctx context.Context, id int64, item string, price decimal.Decimal) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	deleted := false
	err := database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		n, err := database.ExecUpdate(ctx, tx, `DELETE FROM item_status WHERE order_id = $1 AND item_name = $2`, id, item)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrItemNotFound
		}
		if _, err := tx.Exec(ctx, `UPDATE orders SET total = total - $2 WHERE order_id = $1`, id, price.StringFixed(2)); err != nil {
			return err
		}
		left, err := database.QueryCount(ctx, tx, `SELECT 1 FROM item_status WHERE order_id = $1`, id)
		if err != nil {
			return err
		}
		if left == 0 {
			if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE order_id = $1`, id); err != nil {
				return err
			}
			deleted = true
		}
		return nil
	})
	return deleted, err
}

// Delete removes the status rows and then the order.
func (r *PGRepo) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var n int64
	err := database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM item_status WHERE order_id = $1`, id); err != nil {
			return err
		}
		var err error
		n, err = database.ExecUpdate(ctx, tx, `DELETE FROM orders WHERE order_id = $1`, id)
		return err
	})
	return n > 0, err
}

// SetPaid flips paid to true and reports whether anything changed.
func (r *PGRepo) SetPaid(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := database.ExecUpdate(ctx, r.db, `UPDATE orders SET paid = true WHERE order_id = $1 AND NOT paid`, id)
	return n > 0, err
}

func (r *PGRepo) SetItemStatus(ctx context.Context, id int64, item string, st Status, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := database.ExecUpdate(ctx, r.db, `
		UPDATE item_status SET status = $3, last_updated = $4
		WHERE order_id = $1 AND item_name = $2
	`, id, item, string(st), at)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PGRepo) SetComment(ctx context.Context, id int64, item, comment string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := database.ExecUpdate(ctx, r.db, `
		UPDATE item_status SET comments = NULLIF($3, '')
		WHERE order_id = $1 AND item_name = $2
	`, id, item, comment)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PGRepo) ListRecentByUser(ctx context.Context, login string, limit int) ([]Order, error) {
	return r.list(ctx, `
		SELECT order_id, login, paid, received_at, total::text
		FROM orders WHERE login = $1
		ORDER BY received_at DESC, order_id DESC LIMIT $2
	`, login, limit)
}

func (r *PGRepo) ListUnpaidSince(ctx context.Context, since time.Time) ([]Order, error) {
	return r.list(ctx, `
		SELECT order_id, login, paid, received_at, total::text
		FROM orders WHERE NOT paid AND received_at >= $1
		ORDER BY received_at DESC, order_id DESC
	`, since)
}

func (r *PGRepo) list(ctx context.Context, sql string, args ...any) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o     Order
		total string
	)
	if err := row.Scan(&o.ID, &o.Login, &o.Paid, &o.ReceivedAt, &total); err != nil {
		return nil, err
	}
	t, err := decimal.NewFromString(total)
	if err != nil {
		return nil, err
	}
	o.Login = strings.TrimSpace(o.Login)
	o.Total = t
	return &o, nil
}
