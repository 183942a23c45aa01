package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MikeMC777/cafe/internal/apperr"
	"github.com/MikeMC777/cafe/internal/auth"
	"github.com/MikeMC777/cafe/internal/database"
)

var (
	ErrNotFound     = fmt.Errorf("user %w", apperr.ErrNotFound)
	ErrAlreadyExist = fmt.Errorf("%w: login or phone number already in use", apperr.ErrValidation)
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByLogin(ctx context.Context, login string) (*User, error)
	LoginTaken(ctx context.Context, login string) (bool, error)
	PhoneTaken(ctx context.Context, phone, exceptLogin string) (bool, error)
	Update(ctx context.Context, login string, f Fields) error
	SetFavorites(ctx context.Context, login string, favs *string) error
}

type PGRepo struct{ db database.DBTX }

func NewPGRepo(db database.DBTX) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, u *User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO users (login, password, phone_num, fav_items, type)
		VALUES ($1, $2, $3, NULL, $4)
	`, u.Login, u.PasswordHash, u.Phone, string(u.Role))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyExist
	}
	return err
}

func (r *PGRepo) GetByLogin(ctx context.Context, login string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var (
		u    User
		role string
		favs *string
	)
	err := r.db.QueryRow(ctx, `
		SELECT login, password, phone_num, fav_items, type
		FROM users WHERE login = $1
	`, login).Scan(&u.Login, &u.PasswordHash, &u.Phone, &favs, &role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = auth.Role(role)
	if favs != nil {
		u.Favorites = SplitFavorites(*favs)
	}
	return &u, nil
}

func (r *PGRepo) LoginTaken(ctx context.Context, login string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := database.QueryCount(ctx, r.db, `SELECT 1 FROM users WHERE login = $1`, login)
	return n > 0, err
}

func (r *PGRepo) PhoneTaken(ctx context.Context, phone, exceptLogin string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := database.QueryCount(ctx, r.db,
		`SELECT 1 FROM users WHERE phone_num = $1 AND login <> $2`, phone, exceptLogin)
	return n > 0, err
}

// Update applies role, phone and password by the current login, then the
// login rename. Orders follow the rename through ON UPDATE CASCADE.
func (r *PGRepo) Update(ctx context.Context, login string, f Fields) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		n, err := database.QueryCount(ctx, tx, `SELECT 1 FROM users WHERE login = $1 FOR UPDATE`, login)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		if f.Role != nil {
			if _, err := tx.Exec(ctx, `UPDATE users SET type = $2 WHERE login = $1`, login, string(*f.Role)); err != nil {
				return err
			}
		}
		if f.Phone != nil {
			if _, err := tx.Exec(ctx, `UPDATE users SET phone_num = $2 WHERE login = $1`, login, *f.Phone); err != nil {
				return err
			}
		}
		if f.PasswordHash != nil {
			if _, err := tx.Exec(ctx, `UPDATE users SET password = $2 WHERE login = $1`, login, *f.PasswordHash); err != nil {
				return err
			}
		}
		if f.Login != nil && *f.Login != login {
			if _, err := tx.Exec(ctx, `UPDATE users SET login = $2 WHERE login = $1`, login, *f.Login); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetFavorites stores the joined list, or NULL when favs is nil.
func (r *PGRepo) SetFavorites(ctx context.Context, login string, favs *string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := database.ExecUpdate(ctx, r.db, `UPDATE users SET fav_items = $2 WHERE login = $1`, login, favs)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
