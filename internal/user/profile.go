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

// Get returns a profile. Users see their own; managers see anyone's.
func (s *Service) Get(ctx context.Context, sess auth.Session, login string) (*User, error) {
	if !sess.Owns(login) && !sess.IsManager() {
		return nil, apperr.Forbiddenf("you can only view your own profile")
	}
	u, err := s.repo.GetByLogin(ctx, login)
	if err != nil {
		return nil, apperr.Database("get user", err)
	}
	return u, nil
}

// UpdateSelf changes the caller's own profile. Phone and password are open
// to everyone; login and role only to managers. reauth is true when the
// session no longer matches the stored credentials.
func (s *Service) UpdateSelf(ctx context.Context, sess auth.Session, up ProfileUpdate) (reauth bool, err error) {
	if !sess.IsManager() && (up.Login != nil || up.Role != nil) {
		return false, apperr.Forbiddenf("only managers can change a login or role")
	}
	if err := s.apply(ctx, sess.Login, up); err != nil {
		return false, err
	}
	if err := s.Revalidate(ctx, sess); err != nil {
		if errors.Is(err, apperr.ErrReauthRequired) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// UpdateOther lets a manager change any field of another user.
func (s *Service) UpdateOther(ctx context.Context, sess auth.Session, target string, up ProfileUpdate) error {
	if !sess.IsManager() {
		return apperr.Forbiddenf("only managers can edit other users")
	}
	if sess.Owns(target) {
		return apperr.Validationf("use the self-service path to edit your own profile")
	}
	return s.apply(ctx, target, up)
}

func (s *Service) apply(ctx context.Context, login string, up ProfileUpdate) error {
	if up.Empty() {
		return apperr.Validationf("nothing to update")
	}
	f, err := s.validate(ctx, login, up)
	if err != nil {
		return err
	}
	if err := s.repo.Update(ctx, login, f); err != nil {
		return apperr.Database("update user", err)
	}
	s.log.WithFields(logrus.Fields{
		"login":    login,
		"renamed":  f.Login != nil,
		"password": f.PasswordHash != nil,
		"phone":    f.Phone != nil,
		"role":     f.Role != nil,
	}).Info("profile updated")
	return nil
}

func (s *Service) validate(ctx context.Context, login string, up ProfileUpdate) (Fields, error) {
	var f Fields
	exists, err := s.repo.LoginTaken(ctx, login)
	if err != nil {
		return f, apperr.Database("check login", err)
	}
	if !exists {
		return f, apperr.NotFoundf("user %q does not exist", login)
	}

	if up.Role != nil {
		if !up.Role.Valid() {
			return f, apperr.Validationf("role must be one of Customer, Employee or Manager")
		}
		r := *up.Role
		f.Role = &r
	}
	if up.Phone != nil {
		phone := strings.TrimSpace(*up.Phone)
		if err := checkLen("phone number", phone, 1, MaxPhoneLen); err != nil {
			return f, err
		}
		taken, err := s.repo.PhoneTaken(ctx, phone, login)
		if err != nil {
			return f, apperr.Database("check phone", err)
		}
		if taken {
			return f, apperr.Validationf("phone number %q is already in use", phone)
		}
		f.Phone = &phone
	}
	if up.Password != nil {
		if err := checkPassword(*up.Password); err != nil {
			return f, err
		}
		hash, err := HashPassword(*up.Password)
		if err != nil {
			return f, err
		}
		f.PasswordHash = &hash
	}
	if up.Login != nil {
		nl := strings.TrimSpace(*up.Login)
		if err := checkLen("login", nl, 1, MaxLoginLen); err != nil {
			return f, err
		}
		if nl != login {
			taken, err := s.repo.LoginTaken(ctx, nl)
			if err != nil {
				return f, apperr.Database("check login", err)
			}
			if taken {
				return f, apperr.Validationf("login %q is already taken", nl)
			}
			f.Login = &nl
		}
	}
	return f, nil
}

// SetFavorites replaces the whole favorites list of login.
func (s *Service) SetFavorites(ctx context.Context, sess auth.Session, login string, items []string) error {
	if !sess.Owns(login) && !sess.IsManager() {
		return apperr.Forbiddenf("you can only edit your own favorites")
	}
	clean := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		clean = append(clean, it)
	}
	if len(clean) == 0 {
		return apperr.Validationf("favorites list is empty")
	}

	found, err := s.catalog.Existing(ctx, clean)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(found))
	for _, n := range found {
		have[n] = true
	}
	var missing []string
	for _, n := range clean {
		if !have[n] {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return apperr.Validationf("not on the menu: %s", strings.Join(missing, favoritesSep))
	}

	joined := JoinFavorites(clean)
	if utf8.RuneCountInString(joined) > MaxFavoritesLen {
		return apperr.Validationf("favorites list must be at most %d characters", MaxFavoritesLen)
	}
	if err := s.repo.SetFavorites(ctx, login, &joined); err != nil {
		return apperr.Database("set favorites", err)
	}
	s.log.WithFields(logrus.Fields{"login": login, "items": len(clean)}).Info("favorites replaced")
	return nil
}

func (s *Service) ClearFavorites(ctx context.Context, sess auth.Session, login string) error {
	if !sess.Owns(login) && !sess.IsManager() {
		return apperr.Forbiddenf("you can only edit your own favorites")
	}
	if err := s.repo.SetFavorites(ctx, login, nil); err != nil {
		return apperr.Database("clear favorites", err)
	}
	s.log.WithField("login", login).Info("favorites cleared")
	return nil
}
