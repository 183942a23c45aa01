// Package menu provides the catalog of items the café sells, its
// repository and the manager-only mutations on it.
package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MikeMC777/cafe/internal/apperr"
	"github.com/MikeMC777/cafe/internal/database"
)

var (
	ErrNotFound = fmt.Errorf("menu item %w", apperr.ErrNotFound)
	ErrInUse    = fmt.Errorf("%w: menu item is part of existing orders", apperr.ErrDatabase)
)

type Repository interface {
	Create(ctx context.Context, it *Item) error
	Get(ctx context.Context, name string) (*Item, error)
	Exists(ctx context.Context, name string) (bool, error)
	SearchByName(ctx context.Context, name string) ([]Item, error)
	SearchByType(ctx context.Context, typ string) ([]Item, error)
	List(ctx context.Context) ([]Item, error)
	Update(ctx context.Context, name string, u ItemUpdate) error
	TypeExists(ctx context.Context, typ string) (bool, error)
	ChangeType(ctx context.Context, from, to string) (int64, error)
	Delete(ctx context.Context, name string) (bool, error)
	Existing(ctx context.Context, names []string) ([]string, error)
}

type PGRepo struct{ db database.DBTX }

func NewPGRepo(db database.DBTX) *PGRepo { return &PGRepo{db: db} }

const itemColumns = `item_name, type, price::text, COALESCE(description, ''), COALESCE(image_url, '')`

func (r *PGRepo) Create(ctx context.Context, it *Item) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO menu (item_name, type, price, description, image_url)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''))
	`, it.Name, it.Type, it.Price.StringFixed(2), it.Description, it.ImageURL)
	return err
}

func (r *PGRepo) Get(ctx context.Context, name string) (*Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	it, err := scanItem(r.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM menu WHERE item_name = $1`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return it, err
}

func (r *PGRepo) Exists(ctx context.Context, name string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := database.QueryCount(ctx, r.db, `SELECT 1 FROM menu WHERE item_name = $1`, name)
	return n > 0, err
}

func (r *PGRepo) SearchByName(ctx context.Context, name string) ([]Item, error) {
	return r.list(ctx, `SELECT `+itemColumns+` FROM menu WHERE item_name = $1`, name)
}

func (r *PGRepo) SearchByType(ctx context.Context, typ string) ([]Item, error) {
	return r.list(ctx, `SELECT `+itemColumns+` FROM menu WHERE type = $1 ORDER BY item_name`, typ)
}

func (r *PGRepo) List(ctx context.Context) ([]Item, error) {
	return r.list(ctx, `SELECT `+itemColumns+` FROM menu ORDER BY type, item_name`)
}

func (r *PGRepo) list(ctx context.Context, sql string, args ...any) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

// Update applies the fields in a single transaction. The rename goes last
// so the other statements still match on the old name.
func (r *PGRepo) Update(ctx context.Context, name string, u ItemUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		n, err := database.QueryCount(ctx, tx, `SELECT 1 FROM menu WHERE item_name = $1 FOR UPDATE`, name)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		if u.Type != nil {
			if _, err := tx.Exec(ctx, `UPDATE menu SET type = $2 WHERE item_name = $1`, name, *u.Type); err != nil {
				return err
			}
		}
		if u.Price != nil {
			if _, err := tx.Exec(ctx, `UPDATE menu SET price = $2 WHERE item_name = $1`, name, u.Price.StringFixed(2)); err != nil {
				return err
			}
		}
		if u.Description != nil {
			if _, err := tx.Exec(ctx, `UPDATE menu SET description = NULLIF($2, '') WHERE item_name = $1`, name, *u.Description); err != nil {
				return err
			}
		}
		if u.ImageURL != nil {
			if _, err := tx.Exec(ctx, `UPDATE menu SET image_url = NULLIF($2, '') WHERE item_name = $1`, name, *u.ImageURL); err != nil {
				return err
			}
		}
		if u.Name != nil && *u.Name != name {
			if _, err := tx.Exec(ctx, `UPDATE menu SET item_name = $2 WHERE item_name = $1`, name, *u.Name); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PGRepo) TypeExists(ctx context.Context, typ string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := database.QueryCount(ctx, r.db, `SELECT 1 FROM menu WHERE type = $1 LIMIT 1`, typ)
	return n > 0, err
}

func (r *PGRepo) ChangeType(ctx context.Context, from, to string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return database.ExecUpdate(ctx, r.db, `UPDATE menu SET type = $2 WHERE type = $1`, from, to)
}

func (r *PGRepo) Delete(ctx context.Context, name string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := database.ExecUpdate(ctx, r.db, `DELETE FROM menu WHERE item_name = $1`, name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return false, ErrInUse
		}
		return false, err
	}
	return n > 0, nil
}

// Existing returns the subset of names present in the menu.
func (r *PGRepo) Existing(ctx context.Context, names []string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, rows, err := database.QueryRows(ctx, r.db, `SELECT item_name FROM menu WHERE item_name = ANY($1)`, names)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row[0])
	}
	return out, nil
}

func scanItem(row pgx.Row) (*Item, error) {
	var (
		it    Item
		price string
	)
	if err := row.Scan(&it.Name, &it.Type, &price, &it.Description, &it.ImageURL); err != nil {
		return nil, err
	}
	p, err := ParsePrice(price)
	if err != nil {
		return nil, err
	}
	it.Name = strings.TrimSpace(it.Name)
	it.Type = strings.TrimSpace(it.Type)
	it.Price = p
	return &it, nil
}
