// Package user manages café accounts: sign-up, authentication, session
// revalidation and profile changes.
package user

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/cafe/internal/apperr"
	"github.com/MikeMC777/cafe/internal/auth"
)

const (
	MaxLoginLen     = 50
	MaxPasswordLen  = 50
	MaxPhoneLen     = 16
	MaxFavoritesLen = 400
)

// Catalog answers which item names exist on the menu.
type Catalog interface {
	Existing(ctx context.Context, names []string) ([]string, error)
}

type Service struct {
	repo    Repository
	catalog Catalog
	log     *logrus.Entry
}

func NewService(repo Repository, catalog Catalog) *Service {
	return &Service{repo: repo, catalog: catalog, log: logrus.WithField("component", "user")}
}

func checkLen(field, v string, min, max int) error {
	n := utf8.RuneCountInString(v)
	if n < min {
		return apperr.Validationf("%s cannot be empty", field)
	}
	if n > max {
		return apperr.Validationf("%s must be at most %d characters", field, max)
	}
	return nil
}

func checkPassword(pw string) error {
	return checkLen("password", pw, 1, MaxPasswordLen)
}

// SignUp creates a Customer account with no favorites.
func (s *Service) SignUp(ctx context.Context, login, password, phone string) (*User, error) {
	login = strings.TrimSpace(login)
	phone = strings.TrimSpace(phone)
	if err := checkLen("login", login, 1, MaxLoginLen); err != nil {
		return nil, err
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}
	if err := checkLen("phone number", phone, 1, MaxPhoneLen); err != nil {
		return nil, err
	}

	taken, err := s.repo.LoginTaken(ctx, login)
	if err != nil {
		return nil, apperr.Database("check login", err)
	}
	if taken {
		return nil, apperr.Validationf("login %q is already taken", login)
	}
	taken, err = s.repo.PhoneTaken(ctx, phone, "")
	if err != nil {
		return nil, apperr.Database("check phone", err)
	}
	if taken {
		return nil, apperr.Validationf("phone number %q is already in use", phone)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &User{Login: login, PasswordHash: hash, Phone: phone, Role: auth.Customer}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, apperr.Database("create user", err)
	}
	s.log.WithField("login", login).Info("user created")
	return u, nil
}

// Authenticate returns a new session. An unknown login and a wrong password
// fail the same way.
func (s *Service) Authenticate(ctx context.Context, login, password string) (auth.Session, error) {
	u, err := s.repo.GetByLogin(ctx, login)
	if errors.Is(err, ErrNotFound) {
		return auth.Session{}, apperr.ErrAuthFailed
	}
	if err != nil {
		return auth.Session{}, apperr.Database("authenticate", err)
	}
	if !CheckPassword(u.PasswordHash, password) {
		s.log.WithField("login", login).Warn("failed login")
		return auth.Session{}, apperr.ErrAuthFailed
	}
	role := u.Role
	if !role.Valid() {
		role = auth.Customer
	}
	s.log.WithFields(logrus.Fields{"login": login, "role": role}).Info("logged in")
	return auth.NewSession(u.Login, role, u.PasswordHash), nil
}

// RoleOf reads the role column of login.
func (s *Service) RoleOf(ctx context.Context, login string) (auth.Role, error) {
	u, err := s.repo.GetByLogin(ctx, login)
	if err != nil {
		return "", apperr.Database("role of", err)
	}
	return u.Role, nil
}

// Revalidate checks that the login, password and role the session was
// opened with still match a live row.
func (s *Service) Revalidate(ctx context.Context, sess auth.Session) error {
	u, err := s.repo.GetByLogin(ctx, sess.Login)
	if errors.Is(err, ErrNotFound) {
		return apperr.ErrReauthRequired
	}
	if err != nil {
		return apperr.Database("revalidate", err)
	}
	if u.PasswordHash != sess.Credential || u.Role != sess.Role {
		return apperr.ErrReauthRequired
	}
	return nil
}
