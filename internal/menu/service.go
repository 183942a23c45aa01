package menu

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/cafe/internal/apperr"
	"github.com/MikeMC777/cafe/internal/auth"
)

const (
	MaxNameLen        = 50
	MaxTypeLen        = 20
	MaxDescriptionLen = 400
	MaxImageURLLen    = 256
)

type Service struct {
	repo Repository
	log  *logrus.Entry
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, log: logrus.WithField("component", "menu")}
}

func requireManager(sess auth.Session) error {
	if !sess.IsManager() {
		return apperr.Forbiddenf("only managers can change the menu")
	}
	return nil
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

func (s *Service) CreateItem(ctx context.Context, sess auth.Session, it Item, confirmZero bool) (*Item, error) {
	if err := requireManager(sess); err != nil {
		return nil, err
	}
	it.Name = strings.TrimSpace(it.Name)
	it.Type = strings.TrimSpace(it.Type)
	if err := checkLen("item name", it.Name, 1, MaxNameLen); err != nil {
		return nil, err
	}
	if err := checkLen("item type", it.Type, 1, MaxTypeLen); err != nil {
		return nil, err
	}
	if err := checkLen("description", it.Description, 0, MaxDescriptionLen); err != nil {
		return nil, err
	}
	if err := checkLen("image URL", it.ImageURL, 0, MaxImageURLLen); err != nil {
		return nil, err
	}
	price, err := NormalizePrice(it.Price, confirmZero)
	if err != nil {
		return nil, err
	}
	it.Price = price

	exists, err := s.repo.Exists(ctx, it.Name)
	if err != nil {
		return nil, apperr.Database("check item", err)
	}
	if exists {
		return nil, apperr.Validationf("an item named %q already exists", it.Name)
	}
	if err := s.repo.Create(ctx, &it); err != nil {
		return nil, apperr.Database("create item", err)
	}
	s.log.WithFields(logrus.Fields{"item": it.Name, "by": sess.Login}).Info("menu item created")
	return &it, nil
}

func (s *Service) Get(ctx context.Context, name string) (*Item, error) {
	it, err := s.repo.Get(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, apperr.Database("get item", err)
	}
	return it, nil
}

// SearchByName is an exact match on the item name.
func (s *Service) SearchByName(ctx context.Context, name string) ([]Item, error) {
	if utf8.RuneCountInString(name) > MaxNameLen {
		return nil, apperr.Validationf("item name should not be over %d characters", MaxNameLen)
	}
	out, err := s.repo.SearchByName(ctx, name)
	return out, apperr.Database("search by name", err)
}

func (s *Service) SearchByType(ctx context.Context, typ string) ([]Item, error) {
	if utf8.RuneCountInString(typ) > MaxTypeLen {
		return nil, apperr.Validationf("item type should not be over %d characters", MaxTypeLen)
	}
	out, err := s.repo.SearchByType(ctx, typ)
	return out, apperr.Database("search by type", err)
}

func (s *Service) List(ctx context.Context) ([]Item, error) {
	out, err := s.repo.List(ctx)
	return out, apperr.Database("list menu", err)
}

// UpdateItem changes the given fields of the item currently called name.
func (s *Service) UpdateItem(ctx context.Context, sess auth.Session, name string, u ItemUpdate) (*Item, error) {
	if err := requireManager(sess); err != nil {
		return nil, err
	}
	if u.Empty() {
		return nil, apperr.Validationf("nothing to update")
	}
	if u.Name != nil {
		v := strings.TrimSpace(*u.Name)
		if err := checkLen("item name", v, 1, MaxNameLen); err != nil {
			return nil, err
		}
		u.Name = &v
	}
	if u.Type != nil {
		v := strings.TrimSpace(*u.Type)
		if err := checkLen("item type", v, 1, MaxTypeLen); err != nil {
			return nil, err
		}
		u.Type = &v
	}
	if u.Price != nil {
		p, err := NormalizePrice(*u.Price, u.ConfirmZero)
		if err != nil {
			return nil, err
		}
		u.Price = &p
	}
	if u.Description != nil {
		if err := checkLen("description", *u.Description, 0, MaxDescriptionLen); err != nil {
			return nil, err
		}
	}
	if u.ImageURL != nil {
		if err := checkLen("image URL", *u.ImageURL, 0, MaxImageURLLen); err != nil {
			return nil, err
		}
	}

	exists, err := s.repo.Exists(ctx, name)
	if err != nil {
		return nil, apperr.Database("check item", err)
	}
	if !exists {
		return nil, apperr.NotFoundf("menu item %q does not exist", name)
	}
	if u.Name != nil && *u.Name != name {
		taken, err := s.repo.Exists(ctx, *u.Name)
		if err != nil {
			return nil, apperr.Database("check item", err)
		}
		if taken {
			return nil, apperr.Validationf("an item named %q already exists", *u.Name)
		}
	}

	if err := s.repo.Update(ctx, name, u); err != nil {
		return nil, apperr.Database("update item", err)
	}
	final := name
	if u.Name != nil {
		final = *u.Name
	}
	s.log.WithFields(logrus.Fields{"item": name, "now": final, "by": sess.Login}).Info("menu item updated")
	return s.Get(ctx, final)
}

// ChangeAllOfType renames a type on every item that carries it.
func (s *Service) ChangeAllOfType(ctx context.Context, sess auth.Session, from, to string) (int64, error) {
	if err := requireManager(sess); err != nil {
		return 0, err
	}
	to = strings.TrimSpace(to)
	if err := checkLen("item type", to, 1, MaxTypeLen); err != nil {
		return 0, err
	}
	ok, err := s.repo.TypeExists(ctx, from)
	if err != nil {
		return 0, apperr.Database("check type", err)
	}
	if !ok {
		return 0, apperr.NotFoundf("no items of type %q", from)
	}
	n, err := s.repo.ChangeType(ctx, from, to)
	if err != nil {
		return 0, apperr.Database("change type", err)
	}
	s.log.WithFields(logrus.Fields{"from": from, "to": to, "items": n}).Info("menu type renamed")
	return n, nil
}

func (s *Service) DeleteItem(ctx context.Context, sess auth.Session, name string) error {
	if err := requireManager(sess); err != nil {
		return err
	}
	ok, err := s.repo.Delete(ctx, name)
	if err != nil {
		return apperr.Database("delete item", err)
	}
	if !ok {
		return apperr.NotFoundf("menu item %q does not exist", name)
	}
	s.log.WithFields(logrus.Fields{"item": name, "by": sess.Login}).Info("menu item deleted")
	return nil
}

// Existing reports which of names are on the menu.
func (s *Service) Existing(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out, err := s.repo.Existing(ctx, names)
	return out, apperr.Database("lookup items", err)
}
